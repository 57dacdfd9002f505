package main

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/duskfield/fieldcore/internal/rfpath"
	"github.com/duskfield/fieldcore/internal/sstv"
	"github.com/duskfield/fieldcore/internal/telemetry"
)

/*
 * Top-level process configuration, adapted from the source's
 * config.go: the same flat yaml-tagged Config struct and
 * os.ReadFile+yaml.Unmarshal loader, trimmed down to the sections this
 * module actually uses.
 */

// Config is the root configuration loaded from a YAML file.
type Config struct {
	Server     ServerConfig            `yaml:"server"`
	Station    StationConfig           `yaml:"station"`
	Decoder    sstv.DecoderConfig      `yaml:"decoder"`
	RFPath     rfpath.AnalyzerConfig   `yaml:"rfpath"`
	Prometheus PrometheusConfig        `yaml:"prometheus"`
	Pushgateway telemetry.PushgatewayConfig `yaml:"pushgateway"`
	DataDir    string                  `yaml:"data_dir"`
	ElevationEndpoint string           `yaml:"elevation_endpoint"`
}

// ServerConfig covers the HTTP listener.
type ServerConfig struct {
	Listen string `yaml:"listen"`
}

// StationConfig carries station identity persisted into SSTV settings
// and used as Pushgateway grouping labels.
type StationConfig struct {
	Callsign   string `yaml:"callsign"`
	GridSquare string `yaml:"grid_square"`
}

// PrometheusConfig gates the local /metrics endpoint.
type PrometheusConfig struct {
	Enabled bool `yaml:"enabled"`
}

// DefaultConfig returns sane defaults for a first run.
func DefaultConfig() *Config {
	return &Config{
		Server:  ServerConfig{Listen: ":8090"},
		Decoder: sstv.DefaultDecoderConfig(),
		RFPath: rfpath.AnalyzerConfig{
			FreqMHz:          146.52,
			TXPowerDBm:       30,
			TXGainDBi:        6,
			RXGainDBi:        6,
			RXSensitivityDBm: -110,
		},
		Pushgateway:       telemetry.PushgatewayConfig{Interval: 60 * time.Second},
		DataDir:           "./data",
		ElevationEndpoint: "http://localhost:8091/elevations",
	}
}

// LoadConfig loads configuration from a YAML file, falling back to
// defaults for anything the file omits.
func LoadConfig(filename string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(filename)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}
	return cfg, nil
}
