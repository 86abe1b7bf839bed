// Command mtlinfo lists the Metal devices on this machine and what they
// support.
//
// Settings are read from mtlinfo.toml in the working directory or the user
// config directory; see Config.
package main

import (
	"flag"
	"io"
	"log/slog"
	"os"

	"github.com/tsawler/go-mtl/metal_bridge"
	"github.com/tsawler/go-mtl/objc"
)

func main() {
	var (
		configPath = flag.String("config", "", "config file (default: search for mtlinfo.toml)")
		format     = flag.String("format", "", "output format: text or toml")
		verbose    = flag.Bool("v", false, "log bridge diagnostics")
		device     = flag.String("device", "", "only report devices whose name contains this")
	)
	flag.Parse()

	opts := options{configPath: *configPath, format: *format, verbose: *verbose}
	if *device != "" {
		opts.devices = []string{*device}
	}
	if err := run(opts, os.Stdout, os.Stderr); err != nil {
		slog.Error("mtlinfo failed", "err", err)
		os.Exit(1)
	}
}

// options are the command-line overrides.
type options struct {
	configPath string
	format     string
	verbose    bool
	devices    []string
}

func run(opts options, stdout, stderr io.Writer) error {
	cfg, path, err := LoadConfig(opts.configPath)
	if err != nil {
		return err
	}
	if opts.format != "" {
		cfg.Format = opts.format
	}
	if opts.verbose {
		cfg.LogLevel = "debug"
	}
	if len(opts.devices) > 0 {
		cfg.Devices = opts.devices
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	level, _ := cfg.Level()
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	objc.SetLogger(logger)
	metal_bridge.SetLogger(logger)
	if path != "" {
		logger.Debug("loaded config", "path", path)
	}

	if !objc.Available() {
		return metal_bridge.ErrUnsupported
	}
	devices := metal_bridge.CopyAllDevices()
	defer func() {
		for _, d := range devices {
			d.Release()
		}
	}()
	if len(devices) == 0 {
		return metal_bridge.ErrNoDevice
	}
	logger.Debug("found devices", "count", len(devices))

	report, err := collect(cfg, readHostInfo(), devices)
	if err != nil {
		return err
	}
	return report.Write(stdout, cfg.Format)
}
