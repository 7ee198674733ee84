package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/collab-project/atcmd/at"
	"github.com/collab-project/atcmd/commands"
	"github.com/collab-project/atcmd/modem"
	"github.com/collab-project/atcmd/registers"
)

// version is overridden at build time via -ldflags.
var version = "dev"

func main() {
	flag.String("serial-port", "/dev/ttyUSB0", "Serial port facing the attached host")
	flag.Int("baud-rate", 115200, "Baud rate for serial communication")
	flag.String("bind-address", "0.0.0.0:8080", "Bind address for the admin API")
	flag.String("db-path", "atmodemd.db", "Path to the profile database")
	flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	flag.String("sim-pin", "", "PIN the simulated SIM accepts (empty leaves it unlocked)")
	flag.Bool("strict", false, "Reject bare '=' SET commands")
	flag.Bool("echo", false, "Enable command echo at startup")
	flag.String("mqtt-broker", "", "MQTT broker URL for the notification bridge (empty disables)")
	flag.String("mqtt-client-id", "atmodemd-1", "MQTT client identifier")
	flag.String("mqtt-topic", "atmodemd/notify", "MQTT topic forwarded as unsolicited lines")
	flag.Parse()

	config, err := LoadConfig(WithDefaults(), WithEnv(), WithFlags(flag.CommandLine))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := newLogger(config.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(config, logger); err != nil {
		logger.Fatal("daemon failed", zap.Error(err))
	}
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	return cfg.Build()
}

func run(config *Config, logger *zap.Logger) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	store, err := registers.Open(config.DBPath, logger.Named("registers"))
	if err != nil {
		return err
	}
	defer store.Close()

	registry := at.NewRegistry()
	modemConfig, err := modem.NewConfigBuilder().
		WithDialer(modem.SerialDialer{
			PortName: config.SerialPort,
			BaudRate: config.BaudRate,
		}).
		WithRegistry(registry).
		WithDispatchOptions(at.Options{StrictEmptySet: config.Strict}).
		WithLogger(logger.Named("modem")).
		WithEcho(config.Echo).
		Build()
	if err != nil {
		return err
	}

	m, err := modem.New(ctx, modemConfig)
	if err != nil {
		return err
	}

	set := &commands.Set{
		Device: commands.Device{
			Manufacturer: "collab",
			Model:        "atmodemd",
			Revision:     version,
		},
		Store:  store,
		Logger: logger.Named("commands"),
		Echo:   m.SetEcho,
		PIN:    config.SimPIN,
	}
	if err := set.Attach(registry); err != nil {
		return err
	}

	logger.Info("starting virtual modem",
		zap.String("serial_port", config.SerialPort),
		zap.Int("baud_rate", config.BaudRate),
		zap.String("bind_address", config.BindAddress),
	)

	loopDone := make(chan error, 1)
	go func() {
		loopDone <- m.Loop(ctx)
	}()

	httpServer := &http.Server{
		Addr: config.BindAddress,
		Handler: (&Server{
			Logger: logger.Named("server"),
			Modem:  m,
			Store:  store,
		}).Router(),
	}
	go func() {
		logger.Info("starting admin API", zap.String("address", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("admin API failed", zap.Error(err))
			cancel()
		}
	}()

	startMQTT(ctx, config, m, logger.Named("mqtt"))

	var loopErr error
	select {
	case <-ctx.Done():
		logger.Info("received shutdown signal")
	case loopErr = <-loopDone:
		if loopErr != nil && !errors.Is(loopErr, io.EOF) && !errors.Is(loopErr, context.Canceled) {
			logger.Error("modem loop failed", zap.Error(loopErr))
		} else {
			loopErr = nil
		}
		cancel()
	}

	logger.Info("closing modem channel")
	if err := m.Close(); err != nil && !errors.Is(err, modem.ErrAlreadyClosed) {
		logger.Error("failed to close modem", zap.Error(err))
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	logger.Info("closing admin API")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to gracefully shutdown admin API", zap.Error(err))
	}

	return loopErr
}
