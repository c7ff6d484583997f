package config

import "context"

// Loader specifies how to load a faucet config
type Loader interface {
	Load(ctx context.Context) (*Config, error)
}
