// Package config loads crease settings from an optional YAML file and
// CREASE_* environment variables, checked against an embedded CUE schema.
//
// Precedence, lowest first: Defaults, the file, the environment.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/roach88/crease/internal/match"
)

// Config is the complete runtime configuration.
type Config struct {
	// DB is the SQLite database path.
	DB string `yaml:"db" json:"db" env:"CREASE_DB"`

	// ArchiveDir enables the completed-match archive when set.
	ArchiveDir string `yaml:"archive_dir" json:"archive_dir,omitempty" env:"CREASE_ARCHIVE_DIR"`

	// MasterKey is the archive passphrase. Empty means unencrypted.
	MasterKey string `yaml:"master_key" json:"master_key,omitempty" env:"CREASE_MASTER_KEY"`

	Log       Log       `yaml:"log" json:"log"`
	Rules     Rules     `yaml:"rules" json:"rules"`
	Telemetry Telemetry `yaml:"telemetry" json:"telemetry"`
}

// Log selects the slog handler.
type Log struct {
	Level  string `yaml:"level" json:"level" env:"CREASE_LOG_LEVEL"`
	Format string `yaml:"format" json:"format" env:"CREASE_LOG_FORMAT"`
}

// Rules are the default match rules for new matches.
type Rules struct {
	Overs             int  `yaml:"overs" json:"overs" env:"CREASE_OVERS"`
	MaxOversPerBowler int  `yaml:"max_overs_per_bowler" json:"max_overs_per_bowler" env:"CREASE_MAX_OVERS_PER_BOWLER"`
	PowerBall         bool `yaml:"power_ball" json:"power_ball" env:"CREASE_POWER_BALL"`
	PlayersPerSide    int  `yaml:"players_per_side" json:"players_per_side" env:"CREASE_PLAYERS_PER_SIDE"`
}

// Match converts to match rules.
func (r Rules) Match() match.Rules {
	return match.Rules{
		Overs:             r.Overs,
		MaxOversPerBowler: r.MaxOversPerBowler,
		PowerBall:         r.PowerBall,
		PlayersPerSide:    r.PlayersPerSide,
	}
}

// Telemetry configures OpenTelemetry tracing. An empty endpoint disables it.
type Telemetry struct {
	Endpoint    string `yaml:"endpoint" json:"endpoint,omitempty" env:"CREASE_OTEL_ENDPOINT"`
	ServiceName string `yaml:"service_name" json:"service_name" env:"CREASE_OTEL_SERVICE_NAME"`
}

// Defaults returns the configuration used when nothing overrides it.
func Defaults() Config {
	r := match.DefaultRules()
	return Config{
		DB:  "crease.db",
		Log: Log{Level: "info", Format: "text"},
		Rules: Rules{
			Overs:             r.Overs,
			MaxOversPerBowler: r.MaxOversPerBowler,
			PowerBall:         r.PowerBall,
			PlayersPerSide:    r.PlayersPerSide,
		},
		Telemetry: Telemetry{ServiceName: "crease"},
	}
}

// Load builds the configuration. path may be empty, in which case only
// defaults and the environment apply.
func Load(path string) (Config, error) {
	cfg := Defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := ValidateFile(path, data); err != nil {
			return Config{}, err
		}
		if err := decodeYAML(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// decodeYAML overlays data on cfg, rejecting unknown keys.
func decodeYAML(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	err := dec.Decode(cfg)
	if errors.Is(err, io.EOF) {
		// Empty file.
		return nil
	}
	return err
}
