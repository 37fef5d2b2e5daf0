package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"dario.cat/mergo"
	"gopkg.in/yaml.v3"

	"github.com/wardstats/wardstats/internal/format"
	"github.com/wardstats/wardstats/internal/model"
)

// Config holds all runtime configuration for a wardstats run. It is built once
// at process start and passed to every component; nothing mutates it afterwards.
type Config struct {
	// Runtime values set from flags and the environment.
	DSN       string `yaml:"-"`
	LogFormat string `yaml:"-"` // "text" or "json"
	LogLevel  string `yaml:"-"`
	Overwrite bool   `yaml:"-"`
	Addr      string `yaml:"-"`

	DataDir         string            `yaml:"data_dir"`
	DataFilename    string            `yaml:"data_filename"`
	MasterParquet   string            `yaml:"master_parquet"` // empty disables the parquet copy
	Header          string            `yaml:"header"`
	HomepageURL     string            `yaml:"virtual_wards_stats_homepage_url"`
	InfoURL         string            `yaml:"virtual_wards_info_url"`
	GPPopulationURL string            `yaml:"gp_population_url"`
	GitHubURL       string            `yaml:"github_url"`
	ColumnNames     map[string]string `yaml:"column_names"`
	DropdownOptions []MetricOption    `yaml:"dropdown_options"`
	Formatters      map[string]string `yaml:"formatters"`
	NHSColours      map[string]string `yaml:"nhs_colours"`
	MapCentre       Coordinate        `yaml:"map_centre"`
	DefaultRegion   string            `yaml:"default_region"`
	DefaultMetric   string            `yaml:"default_metric"`
	Boundaries      BoundaryConfig    `yaml:"boundaries"`
	HTTP            HTTPConfig        `yaml:"http"`
}

// MetricOption is one entry of the dashboard metric selector.
type MetricOption struct {
	Value string `yaml:"value"`
	Label string `yaml:"label"`
}

// Coordinate is a WGS84 point.
type Coordinate struct {
	Lat float64 `yaml:"lat"`
	Lon float64 `yaml:"lon"`
}

// BoundaryConfig names the static geography files under <data_dir>/static.
type BoundaryConfig struct {
	GeoJSON     string `yaml:"geojson"`
	Lookup      string `yaml:"lookup"`
	FeatureKey  string `yaml:"feature_key"`  // GeoJSON property holding the long ICB code
	LookupLong  string `yaml:"lookup_long"`  // lookup CSV column with the long code
	LookupShort string `yaml:"lookup_short"` // lookup CSV column with the short code
	LookupName  string `yaml:"lookup_name"`  // lookup CSV column with the ICB name
}

// HTTPConfig controls the fetcher's HTTP client.
type HTTPConfig struct {
	UserAgent string        `yaml:"user_agent"`
	Timeout   time.Duration `yaml:"timeout"`
}

// Configuration validation errors.
var (
	ErrMissingHomepage  = errors.New("virtual_wards_stats_homepage_url is required")
	ErrNoColumnNames    = errors.New("column_names must not be empty")
	ErrUnknownMetric    = errors.New("unknown metric")
	ErrMissingFormatter = errors.New("metric has no formatter")
)

// LoadFromFile reads a YAML config file and merges its values over the defaults.
func (c *Config) LoadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	var fc Config
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	if err := mergo.Merge(c, fc, mergo.WithOverride); err != nil {
		return fmt.Errorf("merge config file: %w", err)
	}
	return c.Validate()
}

// Validate checks required fields and returns an error if the config is invalid.
func (c *Config) Validate() error {
	if c.HomepageURL == "" {
		return ErrMissingHomepage
	}
	if len(c.ColumnNames) == 0 {
		return ErrNoColumnNames
	}
	for _, opt := range c.DropdownOptions {
		if _, ok := model.MetricByName(opt.Value); !ok {
			return fmt.Errorf("%w %q in dropdown_options", ErrUnknownMetric, opt.Value)
		}
		spec, ok := c.Formatters[opt.Value]
		if !ok {
			return fmt.Errorf("%w: %s", ErrMissingFormatter, opt.Value)
		}
		if _, err := format.Parse(spec); err != nil {
			return fmt.Errorf("formatter for %s: %w", opt.Value, err)
		}
	}
	if _, ok := model.MetricByName(c.DefaultMetric); !ok {
		return fmt.Errorf("%w %q in default_metric", ErrUnknownMetric, c.DefaultMetric)
	}
	return nil
}

// MetricLabel returns the selector label for a metric, or the metric name.
func (c *Config) MetricLabel(metric string) string {
	for _, opt := range c.DropdownOptions {
		if opt.Value == metric {
			return opt.Label
		}
	}
	return metric
}

func (c *Config) RawDir() string       { return filepath.Join(c.DataDir, "raw") }
func (c *Config) StagingDir() string   { return filepath.Join(c.DataDir, "staging") }
func (c *Config) ProcessedDir() string { return filepath.Join(c.DataDir, "processed") }
func (c *Config) StaticDir() string    { return filepath.Join(c.DataDir, "static") }

// MasterPath is the combined CSV written by the combine step.
func (c *Config) MasterPath() string {
	return filepath.Join(c.ProcessedDir(), c.DataFilename)
}

// MasterParquetPath is the parquet copy of the master table, or "" if disabled.
func (c *Config) MasterParquetPath() string {
	if c.MasterParquet == "" {
		return ""
	}
	return filepath.Join(c.ProcessedDir(), c.MasterParquet)
}

func (c *Config) BoundaryPath() string { return filepath.Join(c.StaticDir(), c.Boundaries.GeoJSON) }
func (c *Config) LookupPath() string   { return filepath.Join(c.StaticDir(), c.Boundaries.Lookup) }
