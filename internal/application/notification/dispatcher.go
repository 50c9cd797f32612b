// Package notification entrega de forma asíncrona los eventos de stock bajo
// a uno o varios destinos (log, Kafka) sin bloquear las mutaciones del ledger.
package notification

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"

	"github.com/jhoicas/warehouse-api/internal/application/inventory"
	"github.com/jhoicas/warehouse-api/internal/domain/entity"
)

var _ inventory.LowStockNotifier = (*Dispatcher)(nil)

// Sink destino de entrega de eventos de stock bajo.
type Sink interface {
	Name() string
	Deliver(ctx context.Context, event entity.LowStockEvent) error
}

// Config parámetros del despachador.
type Config struct {
	QueueSize   int
	Workers     int
	MaxAttempts int
	Backoff     time.Duration // espera base entre intentos (lineal)
}

// queued evento encolado junto con la traza de la mutación que lo originó.
type queued struct {
	event entity.LowStockEvent
	span  trace.SpanContext
}

// ErrClosed se devuelve al cerrar un despachador ya cerrado.
var ErrClosed = errors.New("notification: despachador cerrado")

// Dispatcher implementa inventory.LowStockNotifier con una cola acotada y N workers.
// Si la cola está llena el evento se descarta y queda en el log.
type Dispatcher struct {
	cfg   Config
	sinks []Sink
	log   zerolog.Logger

	queue chan queued
	wg    sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

// NewDispatcher arranca los workers. Valores no positivos en cfg toman defaults.
func NewDispatcher(cfg Config, log zerolog.Logger, sinks ...Sink) *Dispatcher {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 256
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}
	if cfg.Backoff <= 0 {
		cfg.Backoff = 200 * time.Millisecond
	}
	d := &Dispatcher{
		cfg:   cfg,
		sinks: sinks,
		log:   log,
		queue: make(chan queued, cfg.QueueSize),
	}
	for i := 0; i < cfg.Workers; i++ {
		d.wg.Add(1)
		go d.worker()
	}
	return d
}

// NotifyLowStock encola el evento sin bloquear. De ctx solo se conserva la traza:
// la entrega no se cancela cuando termina la petición.
func (d *Dispatcher) NotifyLowStock(ctx context.Context, event entity.LowStockEvent) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		d.log.Warn().Str("event_id", event.ID).Msg("despachador cerrado, evento descartado")
		return
	}
	select {
	case d.queue <- queued{event: event, span: trace.SpanContextFromContext(ctx)}:
	default:
		d.log.Warn().
			Str("event_id", event.ID).
			Int64("stock_id", event.Stock.ID).
			Msg("cola de notificaciones llena, evento descartado")
	}
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()
	for q := range d.queue {
		ctx := trace.ContextWithSpanContext(context.Background(), q.span)
		for _, sink := range d.sinks {
			d.deliver(ctx, sink, q.event)
		}
	}
}

// deliver reintenta con espera lineal; agotados los intentos el evento se pierde para ese sink.
func (d *Dispatcher) deliver(ctx context.Context, sink Sink, event entity.LowStockEvent) {
	var err error
	for attempt := 1; attempt <= d.cfg.MaxAttempts; attempt++ {
		if err = sink.Deliver(ctx, event); err == nil {
			return
		}
		d.log.Debug().Err(err).Str("sink", sink.Name()).Int("attempt", attempt).Msg("fallo entregando notificación")
		if attempt < d.cfg.MaxAttempts {
			time.Sleep(time.Duration(attempt) * d.cfg.Backoff)
		}
	}
	d.log.Error().Err(err).
		Str("sink", sink.Name()).
		Str("event_id", event.ID).
		Int("attempts", d.cfg.MaxAttempts).
		Msg("notificación de stock bajo no entregada")
}

// Close deja de aceptar eventos y espera a que se vacíe la cola o expire ctx.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return ErrClosed
	}
	d.closed = true
	close(d.queue)
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
