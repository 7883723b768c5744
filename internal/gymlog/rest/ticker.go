package rest

import (
	"sync"
	"time"
)

// Ticker calls fn once per interval on its own goroutine until Stop.
type Ticker struct {
	stopOnce sync.Once
	quit     chan struct{}
	done     chan struct{}
}

func NewTicker(interval time.Duration, fn func()) *Ticker {
	t := &Ticker{
		quit: make(chan struct{}),
		done: make(chan struct{}),
	}

	go func() {
		defer close(t.done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-t.quit:
				return
			case <-ticker.C:
				fn()
			}
		}
	}()

	return t
}

// Stop halts the ticker and waits for an in-flight fn call to return.
// It must not be called from within fn.
func (t *Ticker) Stop() {
	t.stopOnce.Do(func() {
		close(t.quit)
	})
	<-t.done
}
