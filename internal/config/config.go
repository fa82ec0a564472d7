// Package config loads runtime configuration from the environment.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/ayusman/shakehands/internal/detector"
	"github.com/ayusman/shakehands/internal/volume"
)

// Config holds every runtime setting. Volume policy values are defaults;
// edits made through the API are stored in the database and win at start-up.
type Config struct {
	HTTPAddr  string `env:"SHAKEHANDS_HTTP_ADDR"  envDefault:":8080"`
	DataDir   string `env:"SHAKEHANDS_DATA_DIR"`
	StaticDir string `env:"SHAKEHANDS_STATIC_DIR"`
	PluginDir string `env:"SHAKEHANDS_PLUGIN_DIR"`
	LogLevel  string `env:"SHAKEHANDS_LOG_LEVEL"  envDefault:"info"`
	LogFormat string `env:"SHAKEHANDS_LOG_FORMAT" envDefault:"console"`
	Tray      bool   `env:"SHAKEHANDS_TRAY"       envDefault:"true"`

	CameraID       int     `env:"SHAKEHANDS_CAMERA_ID"       envDefault:"0"`
	FlipHorizontal bool    `env:"SHAKEHANDS_FLIP_HORIZONTAL" envDefault:"true"`
	DetectionFPS   int     `env:"SHAKEHANDS_DETECTION_FPS"   envDefault:"15"`
	MotionThresh   float64 `env:"SHAKEHANDS_MOTION_THRESHOLD" envDefault:"1.0"`
	MaxHands       int     `env:"SHAKEHANDS_MAX_HANDS"       envDefault:"1"`
	ScoreThreshold float64 `env:"SHAKEHANDS_SCORE_THRESHOLD" envDefault:"0.8"`

	DecisionDelay time.Duration `env:"SHAKEHANDS_DECISION_DELAY" envDefault:"1s"`
	FadeInterval  time.Duration `env:"SHAKEHANDS_FADE_INTERVAL"  envDefault:"62500us"`
	FadeStep      float64       `env:"SHAKEHANDS_FADE_STEP"      envDefault:"2"`

	TravelDistance float64 `env:"SHAKEHANDS_TRAVEL_DISTANCE" envDefault:"100"`
	MinIncrease    float64 `env:"SHAKEHANDS_MIN_INCREASE"    envDefault:"4"`
	MinDecrease    float64 `env:"SHAKEHANDS_MIN_DECREASE"    envDefault:"5"`
	MinVolume      float64 `env:"SHAKEHANDS_MIN_VOLUME"      envDefault:"5"`
	Incremental    bool    `env:"SHAKEHANDS_INCREMENTAL"     envDefault:"true"`

	VolumePlugin  string        `env:"SHAKEHANDS_VOLUME_PLUGIN"  envDefault:"system-control"`
	VolumeAction  string        `env:"SHAKEHANDS_VOLUME_ACTION"  envDefault:"volume-set"`
	PluginTimeout time.Duration `env:"SHAKEHANDS_PLUGIN_TIMEOUT" envDefault:"5s"`
}

// Load parses the environment and fills in directory defaults under ~/.shakehands.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	if cfg.DataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		cfg.DataDir = filepath.Join(home, ".shakehands")
	}
	if cfg.PluginDir == "" {
		cfg.PluginDir = filepath.Join(cfg.DataDir, "plugins")
	}

	return cfg, nil
}

// DBPath returns the sqlite database location.
func (c *Config) DBPath() string {
	return filepath.Join(c.DataDir, "shakehands.db")
}

// Volume projects the volume policy settings.
func (c *Config) Volume() volume.Config {
	return volume.Config{
		TravelDistance: c.TravelDistance,
		MinIncrease:    c.MinIncrease,
		MinDecrease:    c.MinDecrease,
		MinVolume:      c.MinVolume,
		Incremental:    c.Incremental,
	}
}

// Detector projects the hand detection settings.
func (c *Config) Detector() detector.Config {
	d := detector.DefaultConfig()
	d.MaxHands = c.MaxHands
	d.MinConfidence = c.ScoreThreshold
	return d
}
