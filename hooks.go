package fanout

import (
	"context"
	"time"
)

// Hooks in batch mode run on the message goroutines and must be safe for
// concurrent use. In direct mode the message id is empty.

// OnDetectFunc is called once per invocation after the shape is known.
// The returned context is used for the rest of the invocation.
type OnDetectFunc func(ctx context.Context, shape Shape) context.Context

// OnDispatchFunc is called just before the function runs for a message.
type OnDispatchFunc func(ctx context.Context, shape Shape, id string)

// OnSuccessFunc is called after the function succeeds for a message.
type OnSuccessFunc func(ctx context.Context, shape Shape, id string, duration time.Duration)

// OnFailureFunc is called after a message fails, whether decoding, the
// function or a panic failed it.
type OnFailureFunc func(ctx context.Context, shape Shape, id string, err error, duration time.Duration)

// OnBatchCompleteFunc is called once every message of a batch settled.
type OnBatchCompleteFunc func(ctx context.Context, shape Shape, total, failed int)

// hooks holds all configured hook functions.
type hooks struct {
	onDetect        []OnDetectFunc
	onDispatch      []OnDispatchFunc
	onSuccess       []OnSuccessFunc
	onFailure       []OnFailureFunc
	onBatchComplete []OnBatchCompleteFunc
}

// WithOnDetect adds a hook called after the payload's shape is detected.
// Multiple hooks are called in order, with context chaining through each.
//
// Example:
//
//	fanout.WithOnDetect(func(ctx context.Context, shape fanout.Shape) context.Context {
//	    return logx.WithCtx(ctx, slog.String("shape", shape.String()))
//	})
func WithOnDetect(fn OnDetectFunc) Option {
	return func(p *Processor) {
		p.hooks.onDetect = append(p.hooks.onDetect, fn)
	}
}

// WithOnDispatch adds a hook called just before the function runs.
// Multiple hooks are called in order.
func WithOnDispatch(fn OnDispatchFunc) Option {
	return func(p *Processor) {
		p.hooks.onDispatch = append(p.hooks.onDispatch, fn)
	}
}

// WithOnSuccess adds a hook called after the function succeeds.
// Multiple hooks are called in order.
//
// Example:
//
//	fanout.WithOnSuccess(func(ctx context.Context, shape fanout.Shape, id string, d time.Duration) {
//	    metrics.Timing("fanout.success", d, "shape:"+shape.String())
//	})
func WithOnSuccess(fn OnSuccessFunc) Option {
	return func(p *Processor) {
		p.hooks.onSuccess = append(p.hooks.onSuccess, fn)
	}
}

// WithOnFailure adds a hook called after a message fails.
// Multiple hooks are called in order.
//
// Example:
//
//	fanout.WithOnFailure(func(ctx context.Context, shape fanout.Shape, id string, err error, d time.Duration) {
//	    metrics.Incr("fanout.failure", "shape:"+shape.String())
//	})
func WithOnFailure(fn OnFailureFunc) Option {
	return func(p *Processor) {
		p.hooks.onFailure = append(p.hooks.onFailure, fn)
	}
}

// WithOnBatchComplete adds a hook called when a batch has settled, before
// its response is written. Multiple hooks are called in order.
func WithOnBatchComplete(fn OnBatchCompleteFunc) Option {
	return func(p *Processor) {
		p.hooks.onBatchComplete = append(p.hooks.onBatchComplete, fn)
	}
}

func (h *hooks) callOnDetect(ctx context.Context, shape Shape) context.Context {
	for _, fn := range h.onDetect {
		ctx = fn(ctx, shape)
	}
	return ctx
}

func (h *hooks) callOnDispatch(ctx context.Context, shape Shape, id string) {
	for _, fn := range h.onDispatch {
		fn(ctx, shape, id)
	}
}

func (h *hooks) callOnSuccess(ctx context.Context, shape Shape, id string, d time.Duration) {
	for _, fn := range h.onSuccess {
		fn(ctx, shape, id, d)
	}
}

func (h *hooks) callOnFailure(ctx context.Context, shape Shape, id string, err error, d time.Duration) {
	for _, fn := range h.onFailure {
		fn(ctx, shape, id, err, d)
	}
}

func (h *hooks) callOnBatchComplete(ctx context.Context, shape Shape, total, failed int) {
	for _, fn := range h.onBatchComplete {
		fn(ctx, shape, total, failed)
	}
}
