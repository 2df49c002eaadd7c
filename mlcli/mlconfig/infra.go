package mlconfig

import (
	"github.com/spf13/afero"

	"go.jetpack.io/mlpad/goutil"
	"go.jetpack.io/mlpad/goutil/errorutil"
)

// LoadLocation returns parameters.location.value from a Bicep parameters
// file.
func LoadLocation(fs afero.Fs, parametersPath string) (string, error) {
	doc, err := Load(fs, parametersPath, nil)
	if err != nil {
		return "", err
	}
	location := doc.String("parameters.location.value")
	if location == "" {
		return "", errorutil.NewUserErrorf(
			"%s does not set parameters.location.value", parametersPath)
	}
	return location, nil
}

// Require fails with a user error naming the first missing key.
func (d *Document) Require(keys ...string) error {
	if missing := goutil.MissingKeys(d.Data, keys...); len(missing) > 0 {
		return errorutil.NewUserErrorf("%s is missing required key %s", d.Path, missing[0])
	}
	return nil
}
