// Package config provides centralized configuration management for vgsales.
// It handles loading configuration from multiple sources, validation, and provides
// a type-safe API for accessing configuration values throughout the application.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//	1. Environment variables (highest priority)
//	2. YAML configuration file
//	3. Default values (lowest priority)
//
// The YAML file is taken from VGSALES_CONFIG, or config.yaml / configs/config.yaml
// relative to the working directory when present.
//
// # Environment Variables
//
// All environment variables follow the pattern VGSALES_<SECTION>_<KEY>:
//
//	VGSALES_SERVER_PORT=8080
//	VGSALES_DATASET_SOURCE=data/vgsales.csv
//	VGSALES_DATASET_MALFORMED_ROWS=fail
//	VGSALES_DATASET_DEFAULT_PLATFORMS=PS2,X360,Wii
//	VGSALES_LOGGING_LEVEL=debug
//	VGSALES_METRICS_TRACING=stdout
//
// # Usage
//
// Load configuration at application startup:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// # Testing
//
// config.Default() returns a complete configuration that needs no
// environment variables or files.
package config
