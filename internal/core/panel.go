// Package core implements the client-side interaction contract: the
// per-panel request state machine, the session provider, the profile
// editor, and the route guard. Panels own their lifecycle independently;
// nothing here is shared across panel instances except the session.
package core

import (
	"context"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/buddyapp/buddy/internal/domain"
)

var validate = validator.New()

// Panel is one form-plus-result unit bound to a single backend action.
// Its view state moves idle → submitting → succeeded|failed, and any
// state returns to idle on Clear or straight to submitting on a fresh
// Submit.
type Panel[Req, Resp any] struct {
	mu      sync.Mutex
	seq     uint64
	phase   domain.Phase
	result  *Resp
	err     error
	lastReq *Req
	call    func(context.Context, Req) (*Resp, error)
	waiters []chan struct{}
}

// NewPanel binds a panel to one backend action.
func NewPanel[Req, Resp any](call func(context.Context, Req) (*Resp, error)) *Panel[Req, Resp] {
	return &Panel[Req, Resp]{call: call}
}

// Submit validates the request and launches it. While a request is in
// flight further submits return ErrSubmitInFlight without touching the
// network: the single-flight invariant. Validation failures are
// reported before any state change.
func (p *Panel[Req, Resp]) Submit(ctx context.Context, req Req) error {
	if err := validate.Struct(req); err != nil {
		return err
	}

	p.mu.Lock()
	if p.phase == domain.Submitting {
		p.mu.Unlock()
		return domain.ErrSubmitInFlight
	}
	p.seq++
	token := p.seq
	p.phase = domain.Submitting
	reqCopy := req
	p.lastReq = &reqCopy
	p.result = nil
	p.err = nil
	p.notifyLocked()
	p.mu.Unlock()

	go func() {
		resp, err := p.call(ctx, req)
		p.complete(token, resp, err)
	}()
	return nil
}

// complete applies a response only if it belongs to the latest issued
// request; anything older was abandoned by Clear or a re-submit and is
// dropped here instead of overwriting newer state.
func (p *Panel[Req, Resp]) complete(token uint64, resp *Resp, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if token != p.seq {
		return
	}
	if err != nil {
		p.phase = domain.Failed
		p.err = err
	} else {
		p.phase = domain.Succeeded
		p.result = resp
	}
	p.notifyLocked()
}

// Clear resets the panel to idle from any state. An in-flight request
// is abandoned, not cancelled; its late response will miss the token
// check in complete.
func (p *Panel[Req, Resp]) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.seq++
	p.phase = domain.Idle
	p.result = nil
	p.err = nil
	p.lastReq = nil
	p.notifyLocked()
}

// State returns the current phase plus the success payload or failure,
// whichever applies.
func (p *Panel[Req, Resp]) State() (domain.Phase, *Resp, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.phase, p.result, p.err
}

// LastRequest returns the most recently submitted request. Failure does
// not clear it: the user's typed values survive a failed submit.
func (p *Panel[Req, Resp]) LastRequest() *Req {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastReq
}

// Wait blocks until the panel leaves the submitting phase or the
// context ends, and returns the resulting state.
func (p *Panel[Req, Resp]) Wait(ctx context.Context) (domain.Phase, *Resp, error) {
	for {
		p.mu.Lock()
		if p.phase != domain.Submitting {
			phase, result, err := p.phase, p.result, p.err
			p.mu.Unlock()
			return phase, result, err
		}
		ch := make(chan struct{})
		p.waiters = append(p.waiters, ch)
		p.mu.Unlock()

		select {
		case <-ch:
		case <-ctx.Done():
			return domain.Submitting, nil, ctx.Err()
		}
	}
}

func (p *Panel[Req, Resp]) notifyLocked() {
	for _, ch := range p.waiters {
		close(ch)
	}
	p.waiters = nil
}
