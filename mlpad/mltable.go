package mlpad

import (
	"context"

	"go.jetpack.io/mlpad/pkg/mltable"
	"go.jetpack.io/mlpad/pkg/padlog"
)

// CreateMLTable writes an MLTable definition and returns its path.
func (p *Pad) CreateMLTable(ctx context.Context, opts *MLTableOptions) (string, error) {
	spec := mltable.NYCTaxi()
	if opts.SpecFile != "" {
		var err error
		if spec, err = mltable.LoadSpec(p.fs, opts.SpecFile); err != nil {
			return "", err
		}
	}
	path, err := mltable.Write(p.fs, opts.Dir, spec)
	if err != nil {
		return "", err
	}
	padlog.Logger(ctx).Printf("Wrote %s\n", path)
	return path, nil
}
