package pubsub

import (
	"context"
	"sync"
	"time"
)

// LocalBus delivers packs to handlers in the same process. It is used when the api and the
// reconciler run in one binary and in tests.
type LocalBus struct {
	mutex    sync.RWMutex
	handlers map[string][]SubscribeHandler
}

func NewLocalBus() *LocalBus {
	return &LocalBus{handlers: make(map[string][]SubscribeHandler)}
}

func (b *LocalBus) Handle(topic string, handler SubscribeHandler) {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	b.handlers[topic] = append(b.handlers[topic], handler)
}

// Publish calls handlers synchronously, so events of one publisher keep their order.
func (b *LocalBus) Publish(ctx context.Context, topic string, pack *Pack) error {
	b.mutex.RLock()
	handlers := append([]SubscribeHandler(nil), b.handlers[topic]...)
	b.mutex.RUnlock()

	now := time.Now()
	for _, h := range handlers {
		h(ctx, pack, now)
	}

	return nil
}
