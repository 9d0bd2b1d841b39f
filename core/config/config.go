package config

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// ErrNilConfig indicates Load was called with a nil target.
var ErrNilConfig = errors.New("config target must be a non-nil pointer")

var (
	dotenvOnce sync.Once

	mu    sync.Mutex
	cache = make(map[reflect.Type]any)
)

// Load parses environment variables into cfg. The first call for a concrete
// type reads the environment; subsequent calls return the cached value, so
// every consumer of a configuration type observes identical values.
func Load[T any](cfg *T) error {
	if cfg == nil {
		return ErrNilConfig
	}

	// A missing .env file is not an error; the environment itself is the
	// source of truth in deployed environments.
	dotenvOnce.Do(func() {
		_ = godotenv.Load()
	})

	mu.Lock()
	defer mu.Unlock()

	t := reflect.TypeOf(*cfg)
	if cached, ok := cache[t]; ok {
		*cfg = cached.(T)
		return nil
	}

	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("failed to load config %s: %w", t, err)
	}

	cache[t] = *cfg
	return nil
}

// MustLoad is Load that panics on failure, for use during startup where a
// missing required variable should halt the process.
func MustLoad[T any](cfg *T) {
	if err := Load(cfg); err != nil {
		panic(err)
	}
}
