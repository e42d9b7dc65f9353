// Package main wires the ptud controller daemon: periodic Pelco-D
// position queries to a camera and a turret PTU, response parsing, UDP
// telemetry, all driven by the priority scheduler.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/rezajatnika/rjos-go"
	"github.com/rezajatnika/rjos-go/internal/logging"
	"github.com/rezajatnika/rjos-go/pelco"
	"github.com/rezajatnika/rjos-go/sched"
	"github.com/rezajatnika/rjos-go/serial"
	"github.com/rezajatnika/rjos-go/udp"
)

const (
	defaultLogLevel = "info"

	exitCodeSuccess      = 0
	exitCodeRuntimeError = 1
	exitCodeParseError   = 2
)

func main() {
	code := run(os.Args[1:], os.Stderr)
	if code != 0 {
		os.Exit(code)
	}
}

type options struct {
	configPath   string
	deviceConfig string
	logLevel     string
	dryRun       bool
	threaded     bool
	set          map[string]bool
}

func parseArgs(args []string) (options, error) {
	var opts options

	flagSet := flag.NewFlagSet("ptud", flag.ContinueOnError)
	flagSet.SetOutput(io.Discard)
	flagSet.StringVar(&opts.configPath, "config", "", "Path to the YAML deployment configuration")
	flagSet.StringVar(&opts.deviceConfig, "device-config", "", "Path to the key=value device configuration")
	flagSet.StringVar(&opts.logLevel, "log-level", "", "Console log level (debug, info, warn, error)")
	flagSet.BoolVar(&opts.dryRun, "dry-run", false, "Hex-dump frames instead of opening serial devices")
	flagSet.BoolVar(&opts.threaded, "threaded", false, "Dispatch each due task on its own worker")

	if err := flagSet.Parse(args); err != nil {
		return opts, fmt.Errorf("parse arguments: %w", err)
	}

	opts.set = map[string]bool{}
	flagSet.Visit(func(f *flag.Flag) { opts.set[f.Name] = true })
	return opts, nil
}

func run(args []string, stderr io.Writer) int {
	opts, err := parseArgs(args)
	if err != nil {
		fmt.Fprintf(stderr, "%v\n", err)
		return exitCodeParseError
	}

	cfg, err := loadDaemonConfig(opts.configPath)
	if err != nil {
		fmt.Fprintf(stderr, "%v\n", err)
		return exitCodeParseError
	}
	if opts.set["device-config"] {
		cfg.DeviceConfig = opts.deviceConfig
	}
	if opts.set["log-level"] {
		cfg.LogLevel = opts.logLevel
	}
	if opts.set["dry-run"] {
		cfg.DryRun = opts.dryRun
	}
	if opts.set["threaded"] {
		cfg.Threaded = opts.threaded
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(stderr, "failed to configure logger: %v\n", err)
		return exitCodeRuntimeError
	}
	defer func() {
		_ = logger.Sync()
	}()

	logger.Info("starting ptud",
		zap.String("deviceConfig", cfg.DeviceConfig),
		zap.String("logFile", cfg.LogFile),
		zap.Bool("dryRun", cfg.DryRun),
		zap.Bool("threaded", cfg.Threaded),
	)

	rt, err := rjos.Init(cfg.DeviceConfig, cfg.LogFile)
	if err != nil {
		logger.Error("runtime init failed", zap.Error(err))
		return exitCodeRuntimeError
	}
	defer rt.Cleanup()

	camera, turret, cleanup, err := openUnits(cfg, logger)
	if err != nil {
		logger.Error("failed to open PTU transports", zap.Error(err))
		return exitCodeRuntimeError
	}
	defer cleanup()

	telemetry, err := udp.Dial(cfg.TelemetryHost, cfg.TelemetryPort)
	if err != nil {
		logger.Error("failed to open telemetry socket", zap.Error(err))
		return exitCodeRuntimeError
	}
	defer telemetry.Close()

	metrics := rjos.NewMetrics()
	scheduler, err := sched.New(sched.Config{
		MaxTasks: cfg.MaxTasks,
		Threaded: cfg.Threaded,
		Logger:   logging.Default(),
		Observer: metrics,
	})
	if err != nil {
		logger.Error("failed to create scheduler", zap.Error(err))
		return exitCodeRuntimeError
	}

	ctrl := newController(logger, camera, turret)
	tasks := []struct {
		fn       func(interface{})
		interval uint32
		priority uint8
		name     string
	}{
		{ctrl.makeQueryTask(camera, pelco.Pan), cfg.QueryIntervalMS, 1, "camera_query_pan"},
		{ctrl.makeQueryTask(camera, pelco.Tilt), cfg.QueryIntervalMS, 1, "camera_query_tilt"},
		{ctrl.makeQueryTask(turret, pelco.Pan), cfg.QueryIntervalMS, 1, "turret_query_azm"},
		{ctrl.makeQueryTask(turret, pelco.Tilt), cfg.QueryIntervalMS, 1, "turret_query_ele"},
		{ctrl.makeMonitorTask(camera), cfg.MonitorIntervalMS, 2, "camera_monitor"},
		{ctrl.makeMonitorTask(turret), cfg.MonitorIntervalMS, 2, "turret_monitor"},
		{ctrl.makeTelemetryTask(telemetry), cfg.TelemetryIntervalMS, 0, "telemetry"},
	}
	for _, task := range tasks {
		if err := scheduler.AddTask(task.fn, nil, task.interval, task.priority, task.name); err != nil {
			logger.Error("failed to register task", zap.String("task", task.name), zap.Error(err))
			return exitCodeRuntimeError
		}
	}

	sched.SetupSignalHandlers()
	logger.Info("scheduler running", zap.Int("tasks", len(tasks)))
	scheduler.Start()

	snap := metrics.Snapshot()
	logger.Info("scheduler stopped",
		zap.Uint64("dispatches", snap.Dispatches),
		zap.Uint64("overruns", snap.Overruns),
		zap.Uint64("busyMs", snap.BusyMS),
		zap.Uint32("maxDurationMs", snap.MaxDurationMS),
		zap.Duration("uptime", snap.Uptime),
	)

	if err := scheduler.Close(); err != nil {
		logger.Error("scheduler close failed", zap.Error(err))
		return exitCodeRuntimeError
	}
	return exitCodeSuccess
}

// openUnits opens the camera and turret transports, or dry-run stand-ins.
func openUnits(cfg daemonConfig, logger *zap.Logger) (*ptu, *ptu, func(), error) {
	if cfg.DryRun {
		camera := &ptu{
			name:      "camera",
			address:   cfg.Camera.Address,
			transport: &dryRunTransport{log: logger, name: "camera"},
			parser:    pelco.NewParser(),
		}
		turret := &ptu{
			name:      "turret",
			address:   cfg.Turret.Address,
			transport: &dryRunTransport{log: logger, name: "turret"},
			parser:    pelco.NewParser(),
		}
		return camera, turret, func() {}, nil
	}

	cameraPort, err := serial.Open(cfg.Camera.Device, cfg.Camera.Baud, serialOptions())
	if err != nil {
		return nil, nil, nil, err
	}
	turretPort, err := serial.Open(cfg.Turret.Device, cfg.Turret.Baud, serialOptions())
	if err != nil {
		cameraPort.Close()
		return nil, nil, nil, err
	}

	camera := &ptu{name: "camera", address: cfg.Camera.Address, transport: cameraPort, parser: pelco.NewParser()}
	turret := &ptu{name: "turret", address: cfg.Turret.Address, parser: pelco.NewParser(), transport: turretPort}
	cleanup := func() {
		cameraPort.Close()
		turretPort.Close()
	}
	return camera, turret, cleanup, nil
}

// serialOptions returns the non-blocking 8N1 line settings the monitor
// tasks expect: reads must never stall a tick.
func serialOptions() *serial.Options {
	opts := serial.DefaultOptions()
	opts.Blocking = false
	return opts
}

func newLogger(level string) (*zap.Logger, error) {
	if level == "" {
		level = defaultLogLevel
	}

	cfg := zap.NewProductionConfig()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	cfg.EncoderConfig.TimeKey = "timestamp"
	cfg.EncoderConfig.MessageKey = "message"
	cfg.EncoderConfig.LevelKey = "level"

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build zap logger: %w", err)
	}
	return logger, nil
}
