package modal

import (
	"context"
	"sync"
)

// Result is what a pending Show settles with.
type Result struct {
	// Action is "submit" or "close".
	Action string `json:"action"`
	// Data is the submit handler's return value, or the collected form
	// values when no handler is configured.
	Data any `json:"data,omitempty"`
}

// Pending is the eventual outcome of one Show call. It settles exactly once.
type Pending struct {
	once   sync.Once
	done   chan struct{}
	result Result
	err    error
}

func newPending() *Pending {
	return &Pending{done: make(chan struct{})}
}

// Done is closed when the pending result settles.
func (p *Pending) Done() <-chan struct{} {
	return p.done
}

// Wait blocks until the result settles or ctx is done.
func (p *Pending) Wait(ctx context.Context) (Result, error) {
	select {
	case <-p.done:
		return p.result, p.err
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}

// Settled reports whether the result is available without blocking.
func (p *Pending) Settled() bool {
	select {
	case <-p.done:
		return true
	default:
		return false
	}
}

func (p *Pending) resolve(result Result) {
	if p == nil {
		return
	}
	p.once.Do(func() {
		p.result = result
		close(p.done)
	})
}

func (p *Pending) reject(err error) {
	if p == nil {
		return
	}
	p.once.Do(func() {
		p.err = err
		close(p.done)
	})
}
