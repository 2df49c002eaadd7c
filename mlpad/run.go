package mlpad

import (
	"context"

	"go.jetpack.io/mlpad/mlcli/mlconfig"
	"go.jetpack.io/mlpad/pkg/padlog"
	"go.jetpack.io/mlpad/pkg/reconcile"
)

func (p *Pad) load(opts *ApplyOptions) (*mlconfig.Document, error) {
	return mlconfig.Load(p.fs, opts.ConfigPath, opts.Lookup)
}

// record adds o to report and logs it both to the console and to the event
// log.
func record(ctx context.Context, report *reconcile.Report, o reconcile.Outcome) {
	report.Add(o)
	events := padlog.Events("mlpad." + o.Kind)
	if o.Failed() {
		events.Error(o.String())
		padlog.Logger(ctx).IndentedPrintln("✘ %s", o.String())
		return
	}
	events.Info(o.String())
	padlog.Logger(ctx).IndentedPrintln("%s", o.String())
}

// eachEntry runs apply for every valid entry. Invalid entries are reported
// as failed without calling apply, and so is every entry left once ctx is
// done.
func eachEntry[T any](
	ctx context.Context,
	kind string,
	report *reconcile.Report,
	entries []mlconfig.Entry[T],
	apply func(e mlconfig.Entry[T]) reconcile.Outcome,
) {
	for _, e := range entries {
		if e.Err != nil {
			record(ctx, report, reconcile.Outcome{Kind: kind, Name: e.Label(), Err: e.Err})
			continue
		}
		if err := ctx.Err(); err != nil {
			record(ctx, report, reconcile.Outcome{Kind: kind, Name: e.Label(), Err: err})
			continue
		}
		o := apply(e)
		o.Kind = kind
		if o.Name == "" {
			o.Name = e.Label()
		}
		record(ctx, report, o)
	}
}

// dryRun turns a mutating decision into a reported one.
func dryRun(o reconcile.Outcome) reconcile.Outcome {
	if o.Reason == "" {
		o.Reason = "dry run"
	} else {
		o.Reason += ", dry run"
	}
	return o
}
