package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ariefcatur/go-branch-stock.git/internal/checkout"
	"github.com/ariefcatur/go-branch-stock.git/internal/clock"
	"github.com/ariefcatur/go-branch-stock.git/internal/config"
	"github.com/ariefcatur/go-branch-stock.git/internal/httpx"
	kafkax "github.com/ariefcatur/go-branch-stock.git/internal/kafka"
	"github.com/ariefcatur/go-branch-stock.git/internal/postgres"
	"github.com/ariefcatur/go-branch-stock.git/internal/redisx"
	"github.com/ariefcatur/go-branch-stock.git/internal/stock"
	"github.com/ariefcatur/go-branch-stock.git/migrations"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer db.Close()

	if err := migrations.Apply(ctx, db); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Kafka producer for stock.changed
	prod := kafkax.NewProducer(cfg.KafkaBrokers, stock.TopicStockChanged, 1024)
	prod.Start(ctx)

	clk := clock.NewSystem()

	ledgerRepo := &stock.LedgerRepo{DB: db}
	holdRepo := &stock.HoldRepo{DB: db}
	catalogRepo := &stock.CatalogRepo{DB: db}

	holdSvc := &stock.HoldService{Store: holdRepo, Catalog: catalogRepo, Clock: clk}
	availability := &stock.Availability{
		Store: stock.Store{Ledger: ledgerRepo, Holds: holdRepo},
		Clock: clk,
	}
	ledgerSvc := &stock.LedgerService{
		Ledger:      ledgerRepo,
		Catalog:     catalogRepo,
		Producer:    prod,
		ServiceName: cfg.ServiceName,
	}
	checkoutSvc := &checkout.Service{
		Repo:             &checkout.Repo{DB: db},
		Guard:            &redisx.OrderGuard{Client: rdb},
		Producer:         prod,
		Clock:            clk,
		ServiceName:      cfg.ServiceName,
		GuardWindow:      cfg.OrderGuardWindow,
		DeliveryLeadDays: cfg.DeliveryLeadDays,
	}

	// lazy expiry is load-bearing; the sweeper only trims dead rows
	sweeper := &stock.Sweeper{Holds: holdRepo, Clock: clk, Interval: cfg.HoldSweepInterval}
	go sweeper.Run(ctx)

	router := httpx.NewRouter()
	(&httpx.HoldsHandler{Holds: holdSvc}).Register(router)
	(&httpx.OrdersHandler{Checkout: checkoutSvc}).Register(router)
	(&httpx.StockHandler{Avail: availability, Ledger: ledgerSvc, Catalog: catalogRepo}).Register(router)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	// graceful shutdown
	go func() {
		log.Printf("HTTP listening at %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Println("shutting down...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	prod.Close()      // close inbox -> flush & close writer
	cancel()          // stop sweeper + producer loop
	prod.WaitClosed() // drain
}
