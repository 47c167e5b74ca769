package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Simulation event names.
const (
	EventEpisodeStart = "episode:start"
	EventTurn         = "turn:resolved"
	EventShot         = "combat:shot"
	EventKill         = "combat:kill"
	EventEpisodeEnd   = "episode:end"
)

// Event is one simulation occurrence fanned out to subscribers.
type Event struct {
	Name      string
	Episode   string
	Turn      int
	Payload   any
	Timestamp time.Time
}

// HandlerFunc consumes an event.
type HandlerFunc func(Event) error

// Logger interface for pluggable logging.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
}

// Option configures a subscription.
type Option func(*config)

type config struct {
	bufferSize int
	blocking   bool
	logged     bool
}

// Buffered makes the subscriber async with a queue of the given size.
func Buffered(size int) Option {
	return func(c *config) {
		c.bufferSize = size
	}
}

// Blocking makes a buffered subscriber block when the queue is full instead of dropping.
func Blocking() Option {
	return func(c *config) {
		c.blocking = true
	}
}

// Logged adds debug logging around the subscriber.
func Logged() Option {
	return func(c *config) {
		c.logged = true
	}
}

// Dispatcher fans simulation events out to subscribers. The simulation
// loop publishes synchronously; slow sinks opt into a buffer so they
// never stall a turn.
type Dispatcher struct {
	logger Logger

	// OTEL metrics
	queueSize metric.Int64ObservableGauge
	published metric.Int64Counter
	dropped   metric.Int64Counter

	// Track buffers for gauge callback
	mu      sync.RWMutex
	subs    map[string][]HandlerFunc
	buffers map[string]chan Event
}

// New creates a new Dispatcher with the given logger.
// Uses the global OTel meter for metrics (no-op if not configured).
func New(logger Logger) (*Dispatcher, error) {
	d := &Dispatcher{
		subs:    make(map[string][]HandlerFunc),
		buffers: make(map[string]chan Event),
		logger:  logger,
	}

	m := meter()

	var err error

	d.queueSize, err = m.Int64ObservableGauge(
		"sim.dispatcher.queue.size",
		metric.WithDescription("Current number of events in subscriber queues"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating queue size gauge: %w", err)
	}

	_, err = m.RegisterCallback(
		func(ctx context.Context, o metric.Observer) error {
			d.mu.RLock()
			defer d.mu.RUnlock()
			for key, buf := range d.buffers {
				o.ObserveInt64(d.queueSize, int64(len(buf)),
					metric.WithAttributes(attribute.String("subscriber", key)))
			}
			return nil
		},
		d.queueSize,
	)
	if err != nil {
		return nil, fmt.Errorf("registering queue callback: %w", err)
	}

	d.published, err = m.Int64Counter(
		"sim.dispatcher.events.published",
		metric.WithDescription("Total events delivered to subscribers"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating published counter: %w", err)
	}

	d.dropped, err = m.Int64Counter(
		"sim.dispatcher.events.dropped",
		metric.WithDescription("Total events dropped due to full subscriber queues"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating dropped counter: %w", err)
	}

	return d, nil
}

// Subscribe registers a handler for the given event name. An event may
// have any number of subscribers; each receives every published event.
func (d *Dispatcher) Subscribe(name string, h HandlerFunc, opts ...Option) {
	cfg := &config{}
	for _, opt := range opts {
		opt(cfg)
	}

	handler := h

	d.mu.Lock()
	key := fmt.Sprintf("%s#%d", name, len(d.subs[name]))
	d.mu.Unlock()

	if cfg.bufferSize > 0 {
		handler = d.withBuffer(name, key, cfg.bufferSize, cfg.blocking, handler)
	}

	if cfg.logged {
		handler = d.withLogging(name, handler)
	}

	d.mu.Lock()
	d.subs[name] = append(d.subs[name], handler)
	d.mu.Unlock()
}

// Publish delivers the event to every subscriber of its name. Events
// with no subscribers are silently discarded. Synchronous subscriber
// errors are joined and returned.
func (d *Dispatcher) Publish(e Event) error {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}

	d.mu.RLock()
	handlers := d.subs[e.Name]
	d.mu.RUnlock()

	var errs []error
	for _, h := range handlers {
		if err := h(e); err != nil {
			errs = append(errs, err)
		}
	}
	d.published.Add(context.Background(), int64(len(handlers)),
		metric.WithAttributes(attribute.String("event", e.Name)))
	return errors.Join(errs...)
}

// HasSubscribers returns true if at least one handler listens for the event.
func (d *Dispatcher) HasSubscribers(name string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.subs[name]) > 0
}

func (d *Dispatcher) withBuffer(name, key string, size int, blocking bool, h HandlerFunc) HandlerFunc {
	buffer := make(chan Event, size)

	d.mu.Lock()
	d.buffers[key] = buffer
	d.mu.Unlock()

	evAttr := attribute.String("event", name)

	go func() {
		for e := range buffer {
			if err := h(e); err != nil && d.logger != nil {
				d.logger.Error("buffered subscriber failed", "event", name, "error", err)
			}
		}
	}()

	if blocking {
		return func(e Event) error {
			buffer <- e
			return nil
		}
	}

	return func(e Event) error {
		select {
		case buffer <- e:
			return nil
		default:
			d.dropped.Add(context.Background(), 1, metric.WithAttributes(evAttr))
			return fmt.Errorf("subscriber queue full: %s", name)
		}
	}
}

func (d *Dispatcher) withLogging(name string, h HandlerFunc) HandlerFunc {
	return func(e Event) error {
		start := time.Now()
		d.logger.Debug("handling event", "event", name, "turn", e.Turn)

		err := h(e)

		if err != nil {
			d.logger.Error("event failed", "event", name, "duration", time.Since(start), "error", err)
		} else {
			d.logger.Debug("event complete", "event", name, "duration", time.Since(start))
		}

		return err
	}
}
