// Package amlname checks and repairs names of Azure ML workspace
// resources. Each resource kind has its own rules:
//
//   - compute clusters: 2 to 16 characters, compute instances 3 to 24,
//     letters, digits and '-', starting with a letter
//   - data assets and environments: up to 255 characters, letters, digits,
//     '-', '_' and '.', starting with a letter or digit
//   - components: up to 255 characters, lowercase letters, digits and '_',
//     starting with a letter
package amlname

import (
	"regexp"
	"strings"

	"github.com/pkg/errors"

	"go.jetpack.io/mlpad/goutil/errorutil"
)

const (
	assetMaxLength    = 255
	clusterMinLength  = 2
	clusterMaxLength  = 16
	instanceMinLength = 3
	instanceMaxLength = 24
)

// By creating a singleton we can pre-compile all the regex expressions.
var defaultValidator *validator = compile()

type validator struct {
	badPrefix         *regexp.Regexp
	badSuffix         *regexp.Regexp
	nilSeparator      *regexp.Regexp
	badSeparator      *regexp.Regexp
	repeatedSeparator *regexp.Regexp
	badCharacters     *regexp.Regexp

	compute   *regexp.Regexp
	asset     *regexp.Regexp
	component *regexp.Regexp
}

func compile() *validator {
	return &validator{
		badPrefix:         regexp.MustCompile(`^[^[:alnum:]]+`),
		badSuffix:         regexp.MustCompile(`[^[:alnum:]]+$`),
		nilSeparator:      regexp.MustCompile(`[']+`),
		badSeparator:      regexp.MustCompile(`([[:alnum:]])[^[:alnum:]._-]+([[:alnum:]])`),
		repeatedSeparator: regexp.MustCompile(`([._-])[._-]*`),
		badCharacters:     regexp.MustCompile(`[^[:alnum:]._-]+`),

		compute:   regexp.MustCompile(`^[A-Za-z][A-Za-z0-9-]*$`),
		asset:     regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`),
		component: regexp.MustCompile(`^[a-z][a-z0-9_]*$`),
	}
}

var ErrInvalidName = errors.New("invalid name")

// ToIdentifier attempts to convert the provided string into an alternate
// version that:
//   - Contains only ASCII alphanumeric characters, or an allowed separator ('-', '_', '.')
//   - Starts and ends with an alphanumeric character and *not* a separator
//   - Has each chunk of alphanumeric characters separated by at most one separator
func ToIdentifier(s string) string {
	return defaultValidator.toIdentifier(s)
}

func (v *validator) toIdentifier(s string) string {
	s = v.badPrefix.ReplaceAllString(s, "")
	s = v.badSuffix.ReplaceAllString(s, "")

	// Handle the possessive case ("daniel's" becomes "daniels", not
	// "daniel-s").
	s = v.nilSeparator.ReplaceAllString(s, "")
	s = v.badSeparator.ReplaceAllString(s, "$1-$2")
	s = v.badCharacters.ReplaceAllString(s, "")

	// Keep the first of several adjacent separators.
	s = v.repeatedSeparator.ReplaceAllString(s, "$1")
	return s
}

// ValidateCompute checks a compute target name. Compute instances allow
// longer names than clusters.
func ValidateCompute(name string, instance bool) error {
	minLen, maxLen := clusterMinLength, clusterMaxLength
	if instance {
		minLen, maxLen = instanceMinLength, instanceMaxLength
	}
	if len(name) < minLen || len(name) > maxLen {
		return errorutil.NewUserErrorf(
			"compute name %q must be %d to %d characters long", name, minLen, maxLen)
	}
	if !defaultValidator.compute.MatchString(name) {
		return errorutil.NewUserErrorf(
			"compute name %q may only contain letters, digits and '-' and must start with a letter", name)
	}
	return nil
}

// ValidateAsset checks a data asset or environment name.
func ValidateAsset(name string) error {
	if name == "" || len(name) > assetMaxLength || !defaultValidator.asset.MatchString(name) {
		return errorutil.NewUserErrorf(
			"name %q may only contain letters, digits, '-', '_' and '.' and must start with a letter or digit", name)
	}
	return nil
}

// ValidateComponent checks a component name.
func ValidateComponent(name string) error {
	if len(name) <= assetMaxLength && defaultValidator.component.MatchString(name) {
		return nil
	}
	err := errorutil.NewUserErrorf(
		"component name %q may only contain lowercase letters, digits and '_' and must start with a letter", name)
	if fixed, fixErr := ToComponentName(name); fixErr == nil {
		return err.WithHint("Try " + fixed)
	}
	return err
}

// ToComponentName is a best effort conversion of s into a valid component
// name.
func ToComponentName(s string) (string, error) {
	s = strings.ToLower(ToIdentifier(s))
	s = strings.NewReplacer("-", "_", ".", "_").Replace(s)
	s = strings.TrimLeft(s, "0123456789_")
	if s == "" {
		return "", ErrInvalidName
	}
	if len(s) > assetMaxLength {
		s = strings.TrimRight(s[:assetMaxLength], "_")
	}
	return s, nil
}
