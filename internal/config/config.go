// Package config loads the eval settings: which report files to pair up
// between two result directories and which folders to ignore.
package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Settings drives the eval comparison: filename patterns identifying each
// compared artifact, and directory names excluded from the file-presence
// check.
type Settings struct {
	ScoredSNV []string `mapstructure:"scored_snv"`
	ScoredSV  []string `mapstructure:"scored_sv"`
	YAML      []string `mapstructure:"yaml"`
	Versions  []string `mapstructure:"versions"`
	Ignore    []string `mapstructure:"ignore"`
}

// Defaults returns the built-in settings used when no config file is
// supplied.
func Defaults() Settings {
	return Settings{
		ScoredSNV: []string{`\.ranked\.snv\.vcf\.gz$`, `\.scored\.snv\.vcf$`},
		ScoredSV:  []string{`\.ranked\.sv\.vcf\.gz$`, `\.scored\.sv\.vcf$`},
		YAML:      []string{`\.load_scout\.yaml$`, `\.scout\.yaml$`},
		Versions:  []string{`versions\.yml$`, `versions\.yaml$`},
		Ignore:    []string{"work", "pipeline_info", "tmp"},
	}
}

// Load reads settings from a YAML config file, falling back to the
// defaults for any unset key. An empty path yields the defaults.
func Load(path string) (Settings, error) {
	settings := Defaults()
	if path == "" {
		return settings, nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetDefault("settings.scored_snv", settings.ScoredSNV)
	v.SetDefault("settings.scored_sv", settings.ScoredSV)
	v.SetDefault("settings.yaml", settings.YAML)
	v.SetDefault("settings.versions", settings.Versions)
	v.SetDefault("settings.ignore", settings.Ignore)

	if err := v.ReadInConfig(); err != nil {
		return Settings{}, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := v.UnmarshalKey("settings", &settings); err != nil {
		return Settings{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	return settings, nil
}
