package application

import "sync"

// keyedLocks serializes work per counterparty. Turns on one key are granted
// in the order they were reserved, so a message admitted first is processed
// first. A key's queue is dropped once its last turn is released.
type keyedLocks struct {
	mu     sync.Mutex
	queues map[string]*turnQueue
}

type turnQueue struct {
	waiting []chan struct{}
}

// turn is one place in a key's queue.
type turn struct {
	locks *keyedLocks
	key   string
	ready chan struct{}
	once  sync.Once
}

// reserve takes the next place in key's queue without blocking.
func (k *keyedLocks) reserve(key string) *turn {
	k.mu.Lock()
	defer k.mu.Unlock()

	if k.queues == nil {
		k.queues = map[string]*turnQueue{}
	}
	t := &turn{locks: k, key: key, ready: make(chan struct{})}

	queue, held := k.queues[key]
	if !held {
		k.queues[key] = &turnQueue{}
		close(t.ready)
		return t
	}
	queue.waiting = append(queue.waiting, t.ready)
	return t
}

// wait blocks until every earlier turn on the key has been released.
func (t *turn) wait() {
	<-t.ready
}

// release hands the key to the next reserved turn. Extra calls are no-ops.
func (t *turn) release() {
	t.once.Do(func() {
		k := t.locks
		k.mu.Lock()
		defer k.mu.Unlock()

		queue := k.queues[t.key]
		if queue == nil {
			return
		}
		if len(queue.waiting) == 0 {
			delete(k.queues, t.key)
			return
		}
		next := queue.waiting[0]
		queue.waiting = queue.waiting[1:]
		close(next)
	})
}

func (k *keyedLocks) size() int {
	k.mu.Lock()
	defer k.mu.Unlock()

	return len(k.queues)
}
