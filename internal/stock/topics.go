package stock

const (
	TopicStockChanged = "stock.changed"
	TopicStockLow     = "stock.low"
)

// Partition key = product_id, so all stock events for one product stay ordered.
func PartitionKey(productID string) []byte { return []byte(productID) }
