package main

import (
	"sync"
	"time"
)

/* Debouncer coalesces repeated requests under the same token: each
 * Schedule cancels the token's pending timer, so the callback fires
 * exactly once with the latest argument after the delay elapses
 * without further requests. */
type Debouncer struct {
	mu      sync.Mutex
	pending map[string]*time.Timer
}

func NewDebouncer() *Debouncer {
	return &Debouncer{pending: make(map[string]*time.Timer)}
}

func (d *Debouncer) Schedule(delay time.Duration, token string, fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if t, ok := d.pending[token]; ok {
		t.Stop()
	}
	d.pending[token] = time.AfterFunc(delay, func() {
		d.mu.Lock()
		delete(d.pending, token)
		d.mu.Unlock()
		fn()
	})
}

/* Cancel drops the token's pending callback, if any. */
func (d *Debouncer) Cancel(token string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if t, ok := d.pending[token]; ok {
		t.Stop()
		delete(d.pending, token)
	}
}

/* Pending reports whether the token has an unfired callback. */
func (d *Debouncer) Pending(token string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.pending[token]
	return ok
}
