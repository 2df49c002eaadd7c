package mlconfig

import (
	"encoding/json"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cast"

	"go.jetpack.io/mlpad/pkg/reconcile"
)

// Version is an asset version as written in config. Authors write both
// "version": 3 and "version": "3", so either form is accepted.
type Version string

func (v *Version) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return errors.WithStack(err)
	}
	s, err := cast.ToStringE(raw)
	if err != nil {
		return errors.Errorf("version must be a string or a number, got %s", data)
	}
	*v = Version(strings.TrimSpace(s))
	return nil
}

func (v Version) String() string {
	return string(v)
}

// IsAuto reports whether mlpad should pick the version.
func (v Version) IsAuto() bool {
	return reconcile.IsAuto(string(v))
}
