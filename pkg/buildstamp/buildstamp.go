package buildstamp

import (
	"fmt"
	"io"
	"runtime"
	"strings"
)

// ldflags provide these values:
//
//	go build -ldflags "-X go.jetpack.io/mlpad/pkg/buildstamp.VersionNumber=0.3.0 ..."
var (
	// BuildTimestamp is the timestamp at which the binary was built in ISO 8601
	// format.
	BuildTimestamp string

	// Commit is the git commit hash of the revision used to build the binary.
	Commit string

	// CommitTimestamp is the timestamp of the commit in ISO 8601 format.
	CommitTimestamp string

	// ReleaseTag is the tag of the revision as provided by `git describe`,
	// something like "a968903-dirty".
	ReleaseTag string

	// VersionNumber is the version number in semver format MAJOR.MINOR.PATCH
	VersionNumber string

	// PrereleaseTag is usually "dev" for builds off the main branch.
	PrereleaseTag string

	// CicdBuildRelease is set when the binary was built by the release
	// workflow.
	CicdBuildRelease string
)

type buildStamp struct{}

func Get() *buildStamp {
	return &buildStamp{}
}

// Version returns a short version string such as 0.3.0 or
// 0.3.0-dev+a968903-dirty.
func (b *buildStamp) Version() string {
	version := VersionNumber
	if version == "" {
		version = "0.0.0"
	}
	if strings.TrimSpace(PrereleaseTag) == "" {
		return version
	}
	v := version + "-" + PrereleaseTag
	if ReleaseTag != "" {
		v += "+" + ReleaseTag
	}
	return v
}

// PrintVerboseVersion prints every build variable to w.
func PrintVerboseVersion(w io.Writer) {
	fmt.Fprint(w, "\n")
	fmt.Fprintf(w, "Version:     %v\n", Get().Version())
	fmt.Fprintf(w, "Release:     %v\n", ReleaseTag)
	fmt.Fprintf(w, "Commit:      %v\n", Commit)
	fmt.Fprintf(w, "Commit Date: %v\n", CommitTimestamp)
	fmt.Fprintf(w, "Build Date:  %v\n", BuildTimestamp)
	fmt.Fprintf(w, "Runtime:     %v\n", runtime.Version())
	fmt.Fprintf(w, "CI/CD:       %v\n", CicdBuildRelease)
}

func (b *buildStamp) IsDevBinary() bool {
	// If this is missing, just assume dev.
	return CicdBuildRelease == "" || CicdBuildRelease == "dev"
}
