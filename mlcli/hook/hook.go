package hook

import (
	"context"
	"time"
)

type LifecycleOutput interface {
	SetDuration(time.Duration)
}

type commandStartHook func(commandPath, environment string) error
type LifecycleHook func(ctx context.Context, f func() (LifecycleOutput, error))

type Hooks struct {
	commandStartHook commandStartHook

	// Lifecycle Hooks
	applyHook  LifecycleHook
	submitHook LifecycleHook
	deployHook LifecycleHook
}

type hookOption func(*Hooks)

func New(opts ...hookOption) *Hooks {
	h := &Hooks{
		applyHook:  track,
		submitHook: track,
		deployHook: track,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func WithCommandStartHook(h commandStartHook) hookOption {
	return func(hooks *Hooks) {
		hooks.commandStartHook = h
	}
}

// WithApplyHook wraps every reconcile of workspace resources.
func WithApplyHook(h LifecycleHook) hookOption {
	return func(hooks *Hooks) {
		hooks.applyHook = h
	}
}

// WithSubmitHook wraps pipeline job submission.
func WithSubmitHook(h LifecycleHook) hookOption {
	return func(hooks *Hooks) {
		hooks.submitHook = h
	}
}

// WithDeployHook wraps infrastructure deployments.
func WithDeployHook(h LifecycleHook) hookOption {
	return func(hooks *Hooks) {
		hooks.deployHook = h
	}
}

func (h *Hooks) CommandStart(commandPath, environment string) error {
	if h == nil || h.commandStartHook == nil {
		return nil
	}
	return h.commandStartHook(commandPath, environment)
}

func (h *Hooks) Apply(ctx context.Context, f func() (LifecycleOutput, error)) {
	run(ctx, h, func(h *Hooks) LifecycleHook { return h.applyHook }, f)
}

func (h *Hooks) Submit(ctx context.Context, f func() (LifecycleOutput, error)) {
	run(ctx, h, func(h *Hooks) LifecycleHook { return h.submitHook }, f)
}

func (h *Hooks) Deploy(ctx context.Context, f func() (LifecycleOutput, error)) {
	run(ctx, h, func(h *Hooks) LifecycleHook { return h.deployHook }, f)
}

func run(
	ctx context.Context,
	h *Hooks,
	pick func(*Hooks) LifecycleHook,
	f func() (LifecycleOutput, error),
) {
	if h == nil || pick(h) == nil {
		track(ctx, f)
		return
	}
	pick(h)(ctx, f)
}

// Track runs f and records how long it took on its output.
func Track(ctx context.Context, f func() (LifecycleOutput, error)) {
	track(ctx, f)
}

func track(ctx context.Context, f func() (LifecycleOutput, error)) {
	st := time.Now()
	out, _ := f()
	duration := time.Since(st)
	if out != nil {
		out.SetDuration(duration)
	}
}
