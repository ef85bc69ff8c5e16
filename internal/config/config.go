// Package config loads chartserver's runtime configuration from a
// .env file and/or environment variables.
package config

import (
	"log"

	"github.com/spf13/viper"
)

// Config holds every tunable the chart engine and ingest pipeline need
// at startup.
type Config struct {
	CM93Root      string `mapstructure:"CM93_ROOT"`
	DictObjFile   string `mapstructure:"CM93_DICT_OBJ_FILE"`
	DictAttrFile  string `mapstructure:"CM93_DICT_ATTR_FILE"`
	CacheCapacity int    `mapstructure:"CM93_CACHE_CAPACITY"`

	IngestTargetDir string `mapstructure:"INGEST_TARGET_DIR"`
	ConverterSDKRoot string `mapstructure:"CONVERTER_SDK_ROOT"`
	IngestWorkers   int    `mapstructure:"INGEST_WORKERS"`

	HTTPBindAddr string `mapstructure:"HTTP_BIND_ADDR"`
	TileSize     int    `mapstructure:"TILE_SIZE"`
	Palette      string `mapstructure:"RENDER_PALETTE"` // "day" or "night"

	MetricsBindAddr string `mapstructure:"METRICS_BIND_ADDR"`
}

// Load reads .env (if present) and environment variables, falling back
// to sane defaults for anything unset.
func Load() *Config {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	for _, key := range []string{
		"CM93_ROOT", "CM93_DICT_OBJ_FILE", "CM93_DICT_ATTR_FILE", "CM93_CACHE_CAPACITY",
		"INGEST_TARGET_DIR", "CONVERTER_SDK_ROOT", "INGEST_WORKERS",
		"HTTP_BIND_ADDR", "TILE_SIZE", "RENDER_PALETTE", "METRICS_BIND_ADDR",
	} {
		_ = viper.BindEnv(key)
	}

	viper.SetDefault("CM93_DICT_OBJ_FILE", "CM93OBJ.DIC")
	viper.SetDefault("CM93_DICT_ATTR_FILE", "CM93ATTR.DIC")
	viper.SetDefault("CM93_CACHE_CAPACITY", 500)
	viper.SetDefault("INGEST_WORKERS", 0) // 0 means clamp(NumCPU/2, 2, 4)
	viper.SetDefault("HTTP_BIND_ADDR", ":8080")
	viper.SetDefault("TILE_SIZE", 256)
	viper.SetDefault("RENDER_PALETTE", "day")
	viper.SetDefault("METRICS_BIND_ADDR", ":9090")

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("config: no .env file found, using environment variables: %v", err)
	}

	cfg := &Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		log.Fatalf("config: failed to unmarshal configuration: %v", err)
	}
	return cfg
}
