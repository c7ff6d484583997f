package config

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// YamlLoader loads the faucet config from a YAML file.
// Unknown fields are rejected, and optional settings get their defaults.
// An omitted cooldown defaults to DefaultCooldown.
type YamlLoader struct {
	Path string
}

var _ Loader = (*YamlLoader)(nil)

func (l *YamlLoader) Load(ctx context.Context) (*Config, error) {
	f, err := os.Open(l.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %q: %w", l.Path, err)
	}
	defer f.Close()
	out := Config{Cooldown: DefaultCooldown}
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode config %q: %w", l.Path, err)
	}
	out.ApplyDefaults()
	return &out, nil
}
