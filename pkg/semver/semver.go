package semver

import (
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/mod/semver"
)

var errInvalidValue = errors.New("Invalid semver value")

func canonical(v string) string {
	return "v" + strings.TrimPrefix(strings.TrimSpace(v), "v")
}

// Compare returns:
// -1 if v < w, 0 if v == w, or +1 if v > w.
func Compare(v string, w string) (int, error) {
	if !IsValid(v) {
		return 0, errors.Wrapf(errInvalidValue, "first value: %s", v)
	}
	if !IsValid(w) {
		return 0, errors.Wrapf(errInvalidValue, "second value: %s", w)
	}
	return semver.Compare(canonical(v), canonical(w)), nil
}

func IsValid(val string) bool {
	return semver.IsValid(canonical(val))
}
