package main

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/rezajatnika/rjos-go/internal/constants"
)

const (
	envLogLevel      = "PTUD_LOG_LEVEL"
	envTelemetryHost = "PTUD_TELEMETRY_HOST"
	envTelemetryPort = "PTUD_TELEMETRY_PORT"
	envDeviceConfig  = "PTUD_DEVICE_CONFIG"
)

// ptuConfig describes one pan/tilt unit on a serial line.
type ptuConfig struct {
	Device  string
	Baud    uint32
	Address int
}

// daemonConfig is the resolved deployment configuration: defaults,
// overridden by the YAML file, overridden by environment, overridden by
// flags.
type daemonConfig struct {
	DeviceConfig string
	LogFile      string
	LogLevel     string
	Threaded     bool
	DryRun       bool
	MaxTasks     int

	Camera ptuConfig
	Turret ptuConfig

	QueryIntervalMS     uint32
	MonitorIntervalMS   uint32
	TelemetryIntervalMS uint32

	TelemetryHost string
	TelemetryPort uint16
}

type ptuFileConfig struct {
	Device  *string `yaml:"device"`
	Baud    *uint32 `yaml:"baud"`
	Address *int    `yaml:"address"`
}

type intervalsFileConfig struct {
	QueryMS     *uint32 `yaml:"queryMs"`
	MonitorMS   *uint32 `yaml:"monitorMs"`
	TelemetryMS *uint32 `yaml:"telemetryMs"`
}

type telemetryFileConfig struct {
	Host *string `yaml:"host"`
	Port *uint16 `yaml:"port"`
}

type fileConfig struct {
	DeviceConfig *string              `yaml:"deviceConfig"`
	LogFile      *string              `yaml:"logFile"`
	LogLevel     *string              `yaml:"logLevel"`
	Threaded     *bool                `yaml:"threaded"`
	MaxTasks     *int                 `yaml:"maxTasks"`
	Camera       *ptuFileConfig       `yaml:"camera"`
	Turret       *ptuFileConfig       `yaml:"turret"`
	Intervals    *intervalsFileConfig `yaml:"intervals"`
	Telemetry    *telemetryFileConfig `yaml:"telemetry"`
}

func defaultDaemonConfig() daemonConfig {
	return daemonConfig{
		DeviceConfig: "config.txt",
		LogFile:      "ptud.log",
		LogLevel:     defaultLogLevel,
		MaxTasks:     constants.DefaultMaxTasks,
		Camera:       ptuConfig{Device: "/dev/ttyUSB0", Baud: 9600, Address: 1},
		Turret:       ptuConfig{Device: "/dev/ttyUSB1", Baud: 19200, Address: 2},

		QueryIntervalMS:     500,
		MonitorIntervalMS:   100,
		TelemetryIntervalMS: 500,

		TelemetryHost: "127.0.0.1",
		TelemetryPort: 9100,
	}
}

// loadDaemonConfig resolves the layered configuration. An empty path
// skips the file layer.
func loadDaemonConfig(path string) (daemonConfig, error) {
	cfg := defaultDaemonConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		}
		var fc fileConfig
		if err := yaml.Unmarshal(data, &fc); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
		applyFileConfig(&cfg, &fc)
	}

	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyFileConfig(cfg *daemonConfig, fc *fileConfig) {
	if fc.DeviceConfig != nil {
		cfg.DeviceConfig = *fc.DeviceConfig
	}
	if fc.LogFile != nil {
		cfg.LogFile = *fc.LogFile
	}
	if fc.LogLevel != nil {
		cfg.LogLevel = *fc.LogLevel
	}
	if fc.Threaded != nil {
		cfg.Threaded = *fc.Threaded
	}
	if fc.MaxTasks != nil {
		cfg.MaxTasks = *fc.MaxTasks
	}
	applyPTU(&cfg.Camera, fc.Camera)
	applyPTU(&cfg.Turret, fc.Turret)
	if fc.Intervals != nil {
		if fc.Intervals.QueryMS != nil {
			cfg.QueryIntervalMS = *fc.Intervals.QueryMS
		}
		if fc.Intervals.MonitorMS != nil {
			cfg.MonitorIntervalMS = *fc.Intervals.MonitorMS
		}
		if fc.Intervals.TelemetryMS != nil {
			cfg.TelemetryIntervalMS = *fc.Intervals.TelemetryMS
		}
	}
	if fc.Telemetry != nil {
		if fc.Telemetry.Host != nil {
			cfg.TelemetryHost = *fc.Telemetry.Host
		}
		if fc.Telemetry.Port != nil {
			cfg.TelemetryPort = *fc.Telemetry.Port
		}
	}
}

func applyPTU(dst *ptuConfig, src *ptuFileConfig) {
	if src == nil {
		return
	}
	if src.Device != nil {
		dst.Device = *src.Device
	}
	if src.Baud != nil {
		dst.Baud = *src.Baud
	}
	if src.Address != nil {
		dst.Address = *src.Address
	}
}

func applyEnv(cfg *daemonConfig) error {
	if v := os.Getenv(envLogLevel); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv(envDeviceConfig); v != "" {
		cfg.DeviceConfig = v
	}
	if v := os.Getenv(envTelemetryHost); v != "" {
		cfg.TelemetryHost = v
	}
	if v := os.Getenv(envTelemetryPort); v != "" {
		port, err := strconv.ParseUint(v, 10, 16)
		if err != nil {
			return fmt.Errorf("%s: %w", envTelemetryPort, err)
		}
		cfg.TelemetryPort = uint16(port)
	}
	return nil
}
