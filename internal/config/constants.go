package config

import (
	"time"

	"vgsales/pkg/contracts"
)

// Application constants
const (
	// Application Info
	AppName    = "vgsales"
	AppVersion = contracts.Version

	// Environment
	EnvPrefix     = "VGSALES"
	EnvConfigFile = "VGSALES_CONFIG"

	// Dataset
	DefaultDatasetPath   = "vgsales.csv"
	DefaultSampleSize    = 10
	DefaultTopGames      = 10
	DefaultTopPublishers = 5

	// Rate Limiting
	DefaultRateLimit = 100 // requests per second
	DefaultBurstSize = 50

	// Log Settings
	DefaultLogLevel   = "info"
	DefaultLogFormat  = "json"
	DefaultLogFile    = "logs/vgsales.log"
	MaxLogFileSizeMB  = 100
	MaxLogFileAgeDays = 30
	MaxLogFileBackups = 10

	// Server Timeouts
	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 60 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second
)
