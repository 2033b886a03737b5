package services

import (
	"encoding/json"
	"fmt"
	"log"

	"pos/internal/models"
)

// HandleStockEvent decodes a stock event from the broker and logs a restock
// alert for every product it reports as low. It returns an error for
// payloads that are not stock events.
func HandleStockEvent(body []byte) error {
	var event models.StockEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return fmt.Errorf("failed to decode stock event: %w", err)
	}
	if event.Type != models.StockEventReserved {
		return fmt.Errorf("unknown stock event type %q", event.Type)
	}
	for _, level := range event.LowStock {
		log.Printf("Low stock: %s (%s) has %d left after transaction %s",
			level.Name, level.ProductID, level.Stock, event.TransactionID)
	}
	return nil
}
