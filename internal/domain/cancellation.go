package domain

import "context"

// CancellationToken is a cooperative cancellation handle. It is checked at
// explicit checkpoints and propagated to transports through Context.
type CancellationToken struct {
	ctx    context.Context
	cancel context.CancelFunc
}

// NewCancellationToken creates a token that is also cancelled when parent is.
func NewCancellationToken(parent context.Context) *CancellationToken {
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)
	return &CancellationToken{ctx: ctx, cancel: cancel}
}

// IsCancelled reports whether the token has fired.
func (t *CancellationToken) IsCancelled() bool {
	return t.ctx.Err() != nil
}

// OnCancel runs fn once the token fires. The returned stop function detaches
// fn and reports whether it did so before fn started.
func (t *CancellationToken) OnCancel(fn func()) (stop func() bool) {
	return context.AfterFunc(t.ctx, fn)
}

// Done is closed when the token fires.
func (t *CancellationToken) Done() <-chan struct{} {
	return t.ctx.Done()
}

// Context returns the context carrying this token's cancellation.
func (t *CancellationToken) Context() context.Context {
	return t.ctx
}

// Cancel fires the token. Calling it more than once is harmless.
func (t *CancellationToken) Cancel() {
	t.cancel()
}
