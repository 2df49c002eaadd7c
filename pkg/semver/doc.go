// Package semver wraps golang.org/x/mod/semver for asset versions.
//
// Asset versions in a workspace are written without the "v" prefix
// ("1.2.3", "2"), which x/mod/semver requires, so the prefix is added here.
// A leading "v" supplied by the caller is tolerated. Unlike x/mod/semver,
// Compare reports invalid input as an error instead of quietly ordering it
// before every valid version.
package semver
