package invoker

import (
	"context"
	"time"
)

// OnResolveFunc is called when a resolver produces a value for a
// parameter. Use this to trace where each argument came from.
type OnResolveFunc func(ctx context.Context, handler, param, resolver string)

// OnInvokeFunc is called just before the handler executes, after every
// parameter resolved.
type OnInvokeFunc func(ctx context.Context, handler string)

// OnSuccessFunc is called after the handler returns successfully and its
// result shape validated.
type OnSuccessFunc func(ctx context.Context, handler string, duration time.Duration)

// OnFailureFunc is called when resolution, invocation or result validation
// fails.
type OnFailureFunc func(ctx context.Context, handler string, err error, duration time.Duration)

// hooks holds all configured hook functions.
type hooks struct {
	onResolve []OnResolveFunc
	onInvoke  []OnInvokeFunc
	onSuccess []OnSuccessFunc
	onFailure []OnFailureFunc
}

// Option configures a bridge.
type Option func(*Bridge)

// WithOnResolve adds a hook called for each resolved parameter. Multiple
// hooks are called in order.
//
// Example:
//
//	invoker.WithOnResolve(func(ctx context.Context, handler, param, resolver string) {
//	    slog.DebugContext(ctx, "resolved", "handler", handler, "param", param, "via", resolver)
//	})
func WithOnResolve(fn OnResolveFunc) Option {
	return func(b *Bridge) {
		b.hooks.onResolve = append(b.hooks.onResolve, fn)
	}
}

// WithOnInvoke adds a hook called just before the handler executes.
func WithOnInvoke(fn OnInvokeFunc) Option {
	return func(b *Bridge) {
		b.hooks.onInvoke = append(b.hooks.onInvoke, fn)
	}
}

// WithOnSuccess adds a hook called after the handler succeeds.
//
// Example:
//
//	invoker.WithOnSuccess(func(ctx context.Context, handler string, d time.Duration) {
//	    metrics.Timing("invoke.success", d)
//	})
func WithOnSuccess(fn OnSuccessFunc) Option {
	return func(b *Bridge) {
		b.hooks.onSuccess = append(b.hooks.onSuccess, fn)
	}
}

// WithOnFailure adds a hook called when a call fails at any stage.
func WithOnFailure(fn OnFailureFunc) Option {
	return func(b *Bridge) {
		b.hooks.onFailure = append(b.hooks.onFailure, fn)
	}
}

// WithResolver appends an external resolver after the core chain. Register
// resolvers in the order they should be consulted; ordering across
// external resolvers is configuration.
func WithResolver(r Resolver) Option {
	return func(b *Bridge) {
		b.extra = append(b.extra, r)
	}
}
