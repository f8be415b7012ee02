package event

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/stockledger/backend/internal/domain/shared"
)

// InMemoryEventBus implements shared.EventBus with in-process pub/sub.
// Handler errors are logged and never propagated to the publisher; a posting
// must not fail because an alert handler did.
type InMemoryEventBus struct {
	registry *HandlerRegistry
	logger   *zap.Logger
	async    bool
	wg       sync.WaitGroup
}

// NewInMemoryEventBus creates an event bus that dispatches synchronously.
func NewInMemoryEventBus(logger *zap.Logger) *InMemoryEventBus {
	return &InMemoryEventBus{
		registry: NewHandlerRegistry(),
		logger:   logger,
	}
}

// NewAsyncEventBus creates an event bus that dispatches each event on its own
// goroutine. Wait must be called on shutdown.
func NewAsyncEventBus(logger *zap.Logger) *InMemoryEventBus {
	bus := NewInMemoryEventBus(logger)
	bus.async = true
	return bus
}

// Publish delivers events to every registered handler.
func (b *InMemoryEventBus) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	for _, ev := range events {
		handlers := b.registry.HandlersFor(ev.EventType())
		for _, handler := range handlers {
			if b.async {
				b.wg.Add(1)
				go func(h shared.EventHandler, ev shared.DomainEvent) {
					defer b.wg.Done()
					b.dispatch(context.WithoutCancel(ctx), h, ev)
				}(handler, ev)
				continue
			}
			b.dispatch(ctx, handler, ev)
		}
	}
	return nil
}

// Subscribe registers a handler. With no explicit event types the handler's
// own EventTypes are used.
func (b *InMemoryEventBus) Subscribe(handler shared.EventHandler, eventTypes ...string) {
	if len(eventTypes) == 0 {
		eventTypes = handler.EventTypes()
	}
	b.registry.Register(handler, eventTypes...)
	b.logger.Debug("event handler subscribed", zap.Strings("event_types", eventTypes))
}

// Unsubscribe removes a handler from all event types.
func (b *InMemoryEventBus) Unsubscribe(handler shared.EventHandler) {
	b.registry.Unregister(handler)
}

// Wait blocks until all in-flight async dispatches finish.
func (b *InMemoryEventBus) Wait() {
	b.wg.Wait()
}

// dispatch invokes one handler, recovering panics and logging failures.
func (b *InMemoryEventBus) dispatch(ctx context.Context, handler shared.EventHandler, ev shared.DomainEvent) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("event handler panicked",
				zap.String("event_type", ev.EventType()),
				zap.String("event_id", ev.EventID().String()),
				zap.Any("panic", r),
			)
		}
	}()

	if err := handler.Handle(ctx, ev); err != nil {
		b.logger.Error("event handler failed",
			zap.String("event_type", ev.EventType()),
			zap.String("event_id", ev.EventID().String()),
			zap.Error(err),
		)
	}
}

var _ shared.EventBus = (*InMemoryEventBus)(nil)

// HandlerRegistry maps event types to their subscribed handlers.
type HandlerRegistry struct {
	mu       sync.RWMutex
	handlers map[string][]shared.EventHandler
}

// NewHandlerRegistry creates an empty registry.
func NewHandlerRegistry() *HandlerRegistry {
	return &HandlerRegistry{handlers: make(map[string][]shared.EventHandler)}
}

// Register adds a handler for the given event types.
func (r *HandlerRegistry) Register(handler shared.EventHandler, eventTypes ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range eventTypes {
		r.handlers[t] = append(r.handlers[t], handler)
	}
}

// Unregister removes a handler everywhere it is registered.
func (r *HandlerRegistry) Unregister(handler shared.EventHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for t, list := range r.handlers {
		kept := list[:0]
		for _, h := range list {
			if h != handler {
				kept = append(kept, h)
			}
		}
		r.handlers[t] = kept
	}
}

// HandlersFor returns the handlers subscribed to an event type.
func (r *HandlerRegistry) HandlersFor(eventType string) []shared.EventHandler {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := r.handlers[eventType]
	out := make([]shared.EventHandler, len(list))
	copy(out, list)
	return out
}
