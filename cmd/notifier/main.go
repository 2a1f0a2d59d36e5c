package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/ariefcatur/go-branch-stock.git/internal/config"
	kafkax "github.com/ariefcatur/go-branch-stock.git/internal/kafka"
	"github.com/ariefcatur/go-branch-stock.git/internal/notifier"
	"github.com/ariefcatur/go-branch-stock.git/internal/redisx"
	"github.com/ariefcatur/go-branch-stock.git/internal/stock"
	"github.com/joho/godotenv"
)

func atoiOr(s string, def int) int {
	i, err := strconv.Atoi(s)
	if err != nil || i < 1 {
		return def
	}
	return i
}

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Producer for stock.low alerts
	pLow := kafkax.NewProducer(cfg.KafkaBrokers, stock.TopicStockLow, 1024)
	pLow.Start(ctx)

	serviceName := cfg.ServiceName + "-notifier"
	svc := &notifier.Service{
		Store:       &redisx.NotifierStore{Client: rdb, Service: "notifier"},
		ProducerLow: pLow,
		ServiceName: serviceName,
		Threshold:   cfg.LowStockThreshold,
	}

	group := getenv("NOTIFIER_GROUP", "stock-notifier")
	workers := atoiOr(os.Getenv("NOTIFIER_WORKERS"), 8)
	cons := kafkax.NewConsumer(cfg.KafkaBrokers, group, stock.TopicStockChanged, workers)

	go func() {
		log.Printf("notifier consumer started: group=%s topic=%s workers=%d", group, stock.TopicStockChanged, workers)
		if err := cons.Start(ctx, svc.HandleStockChanged); err != nil {
			log.Printf("consumer exit: %v", err)
			cancel()
		}
	}()

	// graceful shutdown
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Println("shutting down consumer...")
	cancel()
	time.Sleep(500 * time.Millisecond)
	pLow.Close()
	pLow.WaitClosed()
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
