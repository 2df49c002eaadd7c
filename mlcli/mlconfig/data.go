package mlconfig

import (
	"strings"

	"github.com/samber/lo"

	"go.jetpack.io/mlpad/goutil/errorutil"
	"go.jetpack.io/mlpad/pkg/amlname"
)

var DataTypes = []string{"uri_file", "uri_folder", "mltable"}

// Data declares a data asset. An empty Version means today's date.
type Data struct {
	Name        string            `json:"name"`
	Type        string            `json:"type"`
	Path        string            `json:"path"`
	Version     Version           `json:"version,omitempty"`
	Description string            `json:"description,omitempty"`
	Tags        map[string]string `json:"tags,omitempty"`
}

// LoadData reads the "data" list.
func LoadData(d *Document) ([]Entry[Data], error) {
	return decodeList(d, "data", entryRules[Data]{
		required: []string{"name", "type", "path"},
		defaults: defaultsOf(d),
		checks:   []func(*Data) error{dataTypeRule, dataNameRule},
	})
}

func dataTypeRule(d *Data) error {
	d.Type = strings.ToLower(d.Type)
	if !lo.Contains(DataTypes, d.Type) {
		return errorutil.NewUserErrorf(
			"data asset %s has unsupported type %q", d.Name, d.Type,
		).WithHint("Use one of " + strings.Join(DataTypes, ", "))
	}
	return nil
}

func dataNameRule(d *Data) error {
	return amlname.ValidateAsset(d.Name)
}
