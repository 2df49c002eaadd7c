package mlpad

import (
	"context"
	"time"

	"github.com/samber/lo"

	"go.jetpack.io/mlpad/goutil"
	"go.jetpack.io/mlpad/pkg/padlog"
	"go.jetpack.io/mlpad/pkg/schemacheck"
)

const watchDebounce = 500 * time.Millisecond

// Validate checks every config file under the root against its schema.
// The report is returned even when files failed; its Err tells.
func (p *Pad) Validate(ctx context.Context, opts *ValidateOptions) (*schemacheck.Report, error) {
	v, err := p.validator(opts)
	if err != nil {
		return nil, err
	}
	return runValidation(ctx, v)
}

// WatchValidate validates once, then again after every change under the
// root until ctx is done. Failed runs are printed, not returned.
func (p *Pad) WatchValidate(ctx context.Context, opts *ValidateOptions) error {
	v, err := p.validator(opts)
	if err != nil {
		return err
	}
	rerun := func() {
		if _, err := runValidation(ctx, v); err != nil {
			padlog.Logger(ctx).WarningPrintf("%v", err)
		}
	}
	rerun()
	padlog.Logger(ctx).Printf("Watching %s for changes. Press Ctrl-C to stop.\n", v.Root())
	return v.Watch(ctx, watchDebounce, rerun)
}

func (p *Pad) validator(opts *ValidateOptions) (*schemacheck.Validator, error) {
	return schemacheck.New(p.fs, schemacheck.Options{
		Root:       opts.Root,
		Include:    lo.Filter(opts.Include, goutil.NonEmptyFilter[string]),
		IgnoreFile: opts.IgnoreFile,
	})
}

func runValidation(ctx context.Context, v *schemacheck.Validator) (*schemacheck.Report, error) {
	report, err := v.Run(ctx)
	if err != nil {
		return nil, err
	}
	log := padlog.Logger(ctx)
	log.HeaderPrintf("Schema validation of %s", v.Root())
	for _, res := range report.Results {
		switch res.Status {
		case schemacheck.Valid:
			log.IndentedPrintf("%s: valid\n", res.File)
		case schemacheck.Skipped:
			log.IndentedPrintf("%s: skipped (%s)\n", res.File, res.Errors[0])
		default:
			log.IndentedPrintf("✘ %s: invalid\n", res.File)
			for _, detail := range res.Errors {
				log.IndentedPrintf("    %s\n", detail)
			}
		}
	}
	log.Printf("%d valid, %d invalid, %d skipped\n",
		report.Count(schemacheck.Valid),
		report.Count(schemacheck.Invalid),
		report.Count(schemacheck.Skipped))
	return report, nil
}
