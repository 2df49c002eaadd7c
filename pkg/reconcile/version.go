package reconcile

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"go.jetpack.io/mlpad/pkg/semver"
)

// AutoVersion is the version placeholder asking mlpad to pick the next
// version itself.
const AutoVersion = "auto"

var ErrNonNumericVersion = errors.New("version is not numeric and cannot be incremented")

func IsAuto(v string) bool {
	return strings.EqualFold(strings.TrimSpace(v), AutoVersion)
}

// NextVersion returns the version following latest. An empty latest means
// nothing is registered yet, so the first version is "1".
func NextVersion(latest string) (string, error) {
	latest = strings.TrimSpace(latest)
	if latest == "" {
		return "1", nil
	}
	n, err := strconv.Atoi(latest)
	if err != nil {
		return "", errors.Wrapf(ErrNonNumericVersion, "latest version %q", latest)
	}
	return strconv.Itoa(n + 1), nil
}

// CompareVersions returns -1, 0 or +1. Integers compare numerically, semver
// strings by precedence, anything else lexically.
func CompareVersions(a, b string) int {
	ai, aErr := strconv.Atoi(a)
	bi, bErr := strconv.Atoi(b)
	if aErr == nil && bErr == nil {
		switch {
		case ai < bi:
			return -1
		case ai > bi:
			return 1
		}
		return 0
	}
	if c, err := semver.Compare(a, b); err == nil {
		return c
	}
	return strings.Compare(a, b)
}
