// Package kafka publica eventos de stock bajo en un tópico Kafka (segmentio/kafka-go).
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"github.com/jhoicas/warehouse-api/internal/domain/entity"
)

// Producer es la parte de *kafka.Writer que usa el publicador.
type Producer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// NewWriter crea un writer con batching corto para baja latencia.
func NewWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		BatchTimeout:           10 * time.Millisecond,
		BatchSize:              100,
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}
}

// lowStockMessage payload publicado.
type lowStockMessage struct {
	EventID         string    `json:"event_id"`
	StockID         int64     `json:"stock_id"`
	WarehouseID     int64     `json:"warehouse_id"`
	InventoryItemID int64     `json:"inventory_item_id"`
	WarehouseName   string    `json:"warehouse_name,omitempty"`
	ItemName        string    `json:"item_name,omitempty"`
	SKU             string    `json:"sku,omitempty"`
	Quantity        int64     `json:"quantity"`
	Threshold       int64     `json:"threshold"`
	OccurredAt      time.Time `json:"occurred_at"`
}

// LowStockPublisher sink de notificación que escribe en Kafka.
// La clave del mensaje es el id del stock para conservar el orden por fila.
type LowStockPublisher struct {
	producer Producer
	timeout  time.Duration
}

// NewLowStockPublisher construye el publicador.
func NewLowStockPublisher(producer Producer) *LowStockPublisher {
	return &LowStockPublisher{producer: producer, timeout: 5 * time.Second}
}

func (p *LowStockPublisher) Name() string { return "kafka" }

// Deliver serializa el evento y lo escribe; el contexto de traza viaja en los headers.
func (p *LowStockPublisher) Deliver(ctx context.Context, ev entity.LowStockEvent) error {
	msg := lowStockMessage{
		EventID:         ev.ID,
		StockID:         ev.Stock.ID,
		WarehouseID:     ev.Stock.WarehouseID,
		InventoryItemID: ev.Stock.InventoryItemID,
		Quantity:        ev.Stock.Quantity,
		Threshold:       ev.Threshold,
		OccurredAt:      ev.OccurredAt.UTC(),
	}
	if w := ev.Stock.Warehouse; w != nil {
		msg.WarehouseName = w.Name
	}
	if it := ev.Stock.Item; it != nil {
		msg.ItemName, msg.SKU = it.Name, it.SKU
	}
	value, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal low stock event: %w", err)
	}

	carrier := propagation.MapCarrier{}
	otel.GetTextMapPropagator().Inject(ctx, carrier)
	headers := []kafka.Header{{Key: "event_type", Value: []byte("inventory.low_stock")}}
	for k, v := range carrier {
		headers = append(headers, kafka.Header{Key: k, Value: []byte(v)})
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	err = p.producer.WriteMessages(ctx, kafka.Message{
		Key:     []byte(strconv.FormatInt(ev.Stock.ID, 10)),
		Value:   value,
		Headers: headers,
		Time:    ev.OccurredAt,
	})
	if err != nil {
		return fmt.Errorf("publish low stock event: %w", err)
	}
	return nil
}

// Close cierra el producer.
func (p *LowStockPublisher) Close() error {
	return p.producer.Close()
}
