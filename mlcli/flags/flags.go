package flags

import (
	"strings"

	"github.com/samber/lo"
)

var Environments = []string{"dev", "test", "prod"}

type RootCmdFlags struct {
	Debug       bool
	DryRun      bool
	Environment string
	LogFile     string
	LogLevel    string
	// Root is the repository root holding the variables/ and json_schema/
	// directories.
	Root string
}

func (f *RootCmdFlags) IsValidEnvironment() bool {
	return lo.Contains(Environments, f.Env())
}

func (f *RootCmdFlags) Env() string {
	return strings.ToLower(strings.TrimSpace(f.Environment))
}
