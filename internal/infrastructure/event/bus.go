package event

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/poscore/backend/internal/domain/shared"
)

const (
	defaultBufferSize     = 256
	defaultHandlerTimeout = 10 * time.Second
)

// InMemoryEventBus implements shared.EventBus with in-process pub/sub.
// Before Start, Publish dispatches synchronously so tests and one-shot
// tools need no lifecycle. After Start, events are queued and handled
// on a background goroutine; command handlers never wait on listeners.
type InMemoryEventBus struct {
	registry       *HandlerRegistry
	logger         *zap.Logger
	handlerTimeout time.Duration

	mu      sync.RWMutex
	queue   chan shared.DomainEvent
	running bool
	wg      sync.WaitGroup
}

// NewInMemoryEventBus creates a new in-memory event bus. bufferSize and
// handlerTimeout come from the event section of the config; zero values
// fall back to defaults.
func NewInMemoryEventBus(logger *zap.Logger, bufferSize int, handlerTimeout time.Duration) *InMemoryEventBus {
	if bufferSize <= 0 {
		bufferSize = defaultBufferSize
	}
	if handlerTimeout <= 0 {
		handlerTimeout = defaultHandlerTimeout
	}
	return &InMemoryEventBus{
		registry:       NewHandlerRegistry(),
		logger:         logger,
		handlerTimeout: handlerTimeout,
		queue:          make(chan shared.DomainEvent, bufferSize),
	}
}

// Publish publishes events to all registered handlers. Handler failures
// are logged, never propagated: a listener must not fail the command
// that emitted the event.
func (b *InMemoryEventBus) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	b.mu.RLock()
	running := b.running
	b.mu.RUnlock()

	for _, event := range events {
		if !running {
			b.dispatch(ctx, event)
			continue
		}
		select {
		case b.queue <- event:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// Subscribe registers a handler for specific event types
func (b *InMemoryEventBus) Subscribe(handler shared.EventHandler, eventTypes ...string) {
	if len(eventTypes) == 0 {
		eventTypes = handler.EventTypes()
	}
	b.registry.Register(handler, eventTypes...)
	b.logger.Debug("handler subscribed",
		zap.Strings("event_types", eventTypes),
	)
}

// Unsubscribe removes a handler
func (b *InMemoryEventBus) Unsubscribe(handler shared.EventHandler) {
	b.registry.Unregister(handler)
	b.logger.Debug("handler unsubscribed")
}

// Start switches the bus to asynchronous delivery
func (b *InMemoryEventBus) Start(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.running {
		return nil
	}
	b.running = true
	b.wg.Add(1)
	go b.run()
	b.logger.Info("event bus started")
	return nil
}

// Stop drains the queue and stops background delivery. Events published
// after Stop are dispatched synchronously again.
func (b *InMemoryEventBus) Stop(ctx context.Context) error {
	b.mu.Lock()
	if !b.running {
		b.mu.Unlock()
		return nil
	}
	b.running = false
	close(b.queue)
	b.mu.Unlock()

	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		b.logger.Info("event bus stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (b *InMemoryEventBus) run() {
	defer b.wg.Done()
	for event := range b.queue {
		b.dispatch(context.Background(), event)
	}
}

// dispatch delivers one event to every subscribed handler
func (b *InMemoryEventBus) dispatch(ctx context.Context, event shared.DomainEvent) {
	handlers := b.registry.GetHandlers(event.EventType())

	for _, handler := range handlers {
		if err := b.dispatchToHandler(ctx, handler, event); err != nil {
			b.logger.Error("handler failed to process event",
				zap.String("event_type", event.EventType()),
				zap.String("event_id", event.EventID().String()),
				zap.Error(err),
			)
		}
	}
}

// dispatchToHandler runs one handler under the configured timeout and
// converts panics into logged errors
func (b *InMemoryEventBus) dispatchToHandler(ctx context.Context, handler shared.EventHandler, event shared.DomainEvent) (err error) {
	hctx, cancel := context.WithTimeout(ctx, b.handlerTimeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("handler panicked",
				zap.String("event_type", event.EventType()),
				zap.Any("panic", r),
			)
		}
	}()

	return handler.Handle(hctx, event)
}

var _ shared.EventBus = (*InMemoryEventBus)(nil)
