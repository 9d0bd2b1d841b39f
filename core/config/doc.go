// Package config provides type-safe environment variable loading with
// caching using Go generics. Each configuration type is loaded once and
// cached for subsequent calls.
//
// The package automatically loads .env files on first use and uses the
// caarlos0/env library for parsing environment variables into struct fields.
//
// Basic usage:
//
//	import "github.com/dmitrymomot/multiform/core/config"
//
//	type UploadConfig struct {
//		Dir         string `env:"UPLOAD_DIR" envDefault:"./uploads"`
//		MaxFileSize int64  `env:"UPLOAD_MAX_FILE_SIZE" envDefault:"10485760"`
//	}
//
//	func main() {
//		var cfg UploadConfig
//
//		// Load with error handling
//		if err := config.Load(&cfg); err != nil {
//			log.Fatal(err)
//		}
//
//		// Or panic on failure (useful for startup)
//		config.MustLoad(&cfg)
//	}
//
// # Caching Behavior
//
// Each configuration type is loaded only once per application lifetime:
//
//	var cfg1 UploadConfig
//	config.Load(&cfg1) // Loads from environment
//
//	var cfg2 UploadConfig
//	config.Load(&cfg2) // Returns cached value, cfg1 == cfg2
//
// Different types are cached independently, so limits, disk, and remote
// storage configurations can each be loaded where they are needed.
package config
