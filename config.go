/*
File    : raven/config.go
Package : main
*/
package main

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Config is Raven's optional session configuration, loaded from a
// `.raven.yml` in the working directory. This is the config-layer
// spec.md's distilled section 6 is silent on (see SPEC_FULL.md's AMBIENT
// STACK): it lets a user override the REPL's prompt/banner and declare
// scripts to run before the REPL starts accepting input, without Raven
// reaching for a flags/cobra-style CLI framework the teacher never uses.
type Config struct {
	Prompt  string   `yaml:"prompt"`
	Banner  string   `yaml:"banner"`
	Preload []string `yaml:"preload"`
}

// loadConfig reads `.raven.yml` from the working directory. A missing file
// is not an error — it just means no overrides apply; a malformed file is.
func loadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &Config{}, nil
	}
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
