// Package mltable writes MLTable definitions: a list of parquet path
// patterns plus the transformations Azure ML applies when the table is
// loaded.
package mltable

import (
	"path/filepath"
	"strconv"

	"github.com/drone/envsubst"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"go.jetpack.io/mlpad/goutil/fileutil"
)

// FileName is the name Azure ML expects for the definition file.
const FileName = "MLTable"

// Spec describes a table. Paths, when set, are used as is. Otherwise one
// pattern is generated per color and year from PathTemplate, which may
// reference ${color} and ${year}.
type Spec struct {
	Paths        []string `yaml:"paths,omitempty"`
	PathTemplate string   `yaml:"path_template,omitempty"`
	Colors       []string `yaml:"colors,omitempty"`
	FromYear     int      `yaml:"from_year,omitempty"`
	ToYear       int      `yaml:"to_year,omitempty"`

	SampleProbability float64  `yaml:"sample_probability,omitempty"`
	SampleSeed        int      `yaml:"sample_seed,omitempty"`
	Filter            string   `yaml:"filter,omitempty"`
	DropColumns       []string `yaml:"drop_columns,omitempty"`
	PartitionFormat   string   `yaml:"partition_format,omitempty"`
}

// NYCTaxi is the green and yellow taxi trip table for 2015 through 2019,
// sampled down to 0.1%.
func NYCTaxi() Spec {
	return Spec{
		PathTemplate: "wasbs://nyctlc@azureopendatastorage.blob.core.windows.net/${color}/puYear=${year}/puMonth=*/**/*.parquet",
		Colors:       []string{"green", "yellow"},
		FromYear:     2015,
		ToYear:       2019,

		SampleProbability: 0.001,
		SampleSeed:        735,
		Filter:            "col('tripDistance') > 0",
		DropColumns:       []string{"puLocationId", "doLocationId"},
		PartitionFormat:   "/puYear={year}/puMonth={month}",
	}
}

// LoadSpec reads a YAML spec. Fields it leaves unset keep the NYC taxi
// defaults.
func LoadSpec(fs afero.Fs, path string) (Spec, error) {
	spec := NYCTaxi()
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return spec, errors.WithStack(err)
	}
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return spec, errors.Wrapf(err, "failed to parse %s", path)
	}
	return spec, nil
}

// PathPatterns expands the spec into concrete path patterns, colors first
// then years.
func (s Spec) PathPatterns() ([]string, error) {
	if len(s.Paths) > 0 {
		return s.Paths, nil
	}
	if s.PathTemplate == "" {
		return nil, errors.New("mltable spec needs paths or a path_template")
	}
	if s.ToYear < s.FromYear {
		return nil, errors.Errorf("to_year %d is before from_year %d", s.ToYear, s.FromYear)
	}
	colors := s.Colors
	if len(colors) == 0 {
		colors = []string{""}
	}
	patterns := []string{}
	for _, color := range colors {
		for year := s.FromYear; year <= s.ToYear; year++ {
			vars := map[string]string{"color": color, "year": strconv.Itoa(year)}
			p, err := envsubst.Eval(s.PathTemplate, func(name string) string { return vars[name] })
			if err != nil {
				return nil, errors.Wrapf(err, "invalid path_template %q", s.PathTemplate)
			}
			patterns = append(patterns, p)
		}
	}
	return patterns, nil
}

type definition struct {
	Type            string           `yaml:"type"`
	Paths           []pathEntry      `yaml:"paths"`
	Transformations []map[string]any `yaml:"transformations"`
}

type pathEntry struct {
	Pattern string `yaml:"pattern"`
}

// Marshal renders the MLTable YAML for the spec.
func (s Spec) Marshal() ([]byte, error) {
	patterns, err := s.PathPatterns()
	if err != nil {
		return nil, err
	}
	def := definition{Type: "mltable"}
	for _, p := range patterns {
		def.Paths = append(def.Paths, pathEntry{Pattern: p})
	}

	def.Transformations = append(def.Transformations, map[string]any{
		"read_parquet": map[string]any{"include_path_column": false, "path_column": "Path"},
	})
	if s.SampleProbability > 0 {
		def.Transformations = append(def.Transformations, map[string]any{
			"take_random_sample": map[string]any{"probability": s.SampleProbability, "seed": s.SampleSeed},
		})
	}
	if s.Filter != "" {
		def.Transformations = append(def.Transformations, map[string]any{"filter": s.Filter})
	}
	if len(s.DropColumns) > 0 {
		def.Transformations = append(def.Transformations, map[string]any{"drop_columns": s.DropColumns})
	}
	if s.PartitionFormat != "" {
		def.Transformations = append(def.Transformations, map[string]any{
			"extract_columns_from_partition_format": map[string]any{"partition_format": s.PartitionFormat},
		})
	}

	data, err := yaml.Marshal(def)
	return data, errors.WithStack(err)
}

// Write saves the definition as dir/MLTable, creating dir if needed, and
// returns the file path.
func Write(fs afero.Fs, dir string, s Spec) (string, error) {
	data, err := s.Marshal()
	if err != nil {
		return "", err
	}
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return "", errors.WithStack(err)
	}
	path := filepath.Join(dir, FileName)
	return path, fileutil.WriteFileAtomic(fs, path, data, 0o644)
}
