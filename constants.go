package rjos

import "github.com/rezajatnika/rjos-go/internal/constants"

// Re-export constants for public API
const (
	DefaultMaxTasks      = constants.DefaultMaxTasks
	DefaultSleepCapMS    = constants.DefaultSleepCapMS
	MaxConfigKeyLen      = constants.MaxConfigKeyLen
	MaxConfigValLen      = constants.MaxConfigValLen
	MaxPipeMessageSize   = constants.MaxPipeMessageSize
	SerialReadBufferSize = constants.SerialReadBufferSize
)
