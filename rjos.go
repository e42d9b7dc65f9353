// Package rjos provides a small-footprint runtime for periodic,
// priority-ordered tasks on a POSIX host: a deterministic scheduler with
// overrun detection (package sched), a Pelco-D pan/tilt/zoom codec with a
// streaming parser (package pelco), a key=value configuration store
// (package config) and thin serial/UDP/named-pipe adapters.
//
// This package is the startup facade: Init wires the configuration store
// and the process-wide file logger, Cleanup releases both.
package rjos

import (
	"github.com/rezajatnika/rjos-go/config"
	"github.com/rezajatnika/rjos-go/internal/logging"
)

// Runtime holds the process-scoped state Init sets up.
type Runtime struct {
	// Config is the loaded key=value store.
	Config *config.Store

	logPath string
}

// Init loads the configuration file and points the process-wide logger at
// logPath (debug level). A failure of either aborts startup; callers exit
// non-zero.
func Init(configPath, logPath string) (*Runtime, error) {
	store := config.New()
	if err := store.Load(configPath); err != nil {
		return nil, WrapError("INIT", err)
	}
	if err := logging.Init(logPath, logging.LevelDebug); err != nil {
		return nil, WrapError("INIT", err)
	}

	logging.Infof("runtime initialized, %d config entries", store.Len())
	return &Runtime{Config: store, logPath: logPath}, nil
}

// Cleanup releases the configuration store and closes the log sink.
// Call after the scheduler has returned.
func (r *Runtime) Cleanup() {
	logging.Infof("runtime shutting down")
	logging.Destroy()
	r.Config.Reset()
}
