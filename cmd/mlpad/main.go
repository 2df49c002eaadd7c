// Copyright 2022 Jetpack Technologies Inc and contributors. All rights reserved.
// Use of this source code is governed by the license in the LICENSE file.

package main

import (
	"context"
	"log"

	"go.jetpack.io/mlpad/mlcli"
	"go.jetpack.io/mlpad/mlcli/provider"
	"go.jetpack.io/mlpad/pkg/buildstamp"
)

func main() {
	settings := provider.NewSettings()
	opts := []mlcli.Option{mlcli.WithSettings(settings)}
	// Errors of local builds are not reported.
	dsn := settings.GetString(provider.SettingSentryDSN)
	if dsn != "" && !buildstamp.Get().IsDevBinary() {
		logger, err := provider.SentryLogger(dsn, buildstamp.Get().Version())
		if err != nil {
			log.Printf("error reporting disabled: %v", err)
		} else {
			opts = append(opts, mlcli.WithErrorLogger(logger))
		}
	}
	mlcli.New(opts...).Run(context.Background())
}
