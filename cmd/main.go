package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "rover_control/docs"
	"rover_control/internal/clock"
	"rover_control/internal/config"
	"rover_control/internal/handlers"
	"rover_control/internal/logger"
	"rover_control/internal/server"
	"rover_control/internal/service"
	"rover_control/internal/transport"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

const (
	configDir       = "configs"
	shutdownTimeout = 10 * time.Second
)

var errServerStopped = errors.New("http server stopped unexpectedly")

// commandTransport is what the controller and action service publish through.
type commandTransport interface {
	service.Transport
	service.ActionSender
}

// @title        Rover Control API
// @version      1.0
// @description  Operator input reconciliation and simulated telemetry for a field rover.
// @BasePath     /
func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "rover-control: %v\n", err)
		os.Exit(1)
	}
}

// run returns instead of exiting so deferred cleanup (MQTT disconnect, log
// sync) always happens.
func run() error {
	// load configs/config.yml, .env and ROVER_* overrides
	cfg, err := config.Load(configDir)
	if err != nil {
		return fmt.Errorf("error reading config: %w", err)
	}

	// init logger
	log := logger.Get(logger.Options{
		Level:      cfg.Log.Level,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
	})
	defer func() { _ = log.Sync() }()

	// command transport
	tr, mqttClient, err := openTransport(cfg, log)
	if err != nil {
		log.Errorw("failed to init transport", "kind", cfg.Transport.Kind, "err", err)
		return err
	}
	if mqttClient != nil {
		defer transport.Disconnect(mqttClient)
	}

	// wire dependencies
	services := service.NewService(service.Dependencies{
		Transport: tr,
		Sender:    tr,
		Clock:     clock.Real{},
		Scheduler: clock.Real{},
		Rand:      rand.New(rand.NewSource(seed(cfg.Telemetry.Seed))),
		Telemetry: service.TelemetryConfig{
			SensorTick:  cfg.Telemetry.SensorTick,
			BatteryTick: cfg.Telemetry.BatteryTick,
			LogTick:     cfg.Telemetry.LogTick,
			LogCapacity: cfg.Telemetry.LogCapacity,
			SeedBootLog: true,
		},
		Analysis: service.AnalysisConfig{
			Endpoint: cfg.Analysis.Endpoint,
			APIKey:   cfg.Analysis.APIKey,
			Timeout:  cfg.Analysis.Timeout,
		},
		Log: log,
	})
	if cfg.Analysis.APIKey == "" {
		log.Warnw("analysis api key not set; /api/v1/analyze returns the fallback diagnosis")
	}
	apiHandler := handlers.NewHandler(services, log, cfg.WS.Interval)

	// context for background goroutines
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// start telemetry timers (via composed service)
	telemetryDone := runTelemetry(ctx, services.Telemetry)

	// start HTTP server
	srv := server.New(cfg.Port, apiHandler.InitRoutes())
	serverErr := runHTTPServer(srv, log)

	// graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	return waitForShutdown(quit, serverErr, cancel, telemetryDone, srv, log)
}

// openTransport returns the MQTT publisher or the log-only transport.
func openTransport(cfg *config.Config, log *logger.Logger) (commandTransport, mqtt.Client, error) {
	if cfg.Transport.Kind != config.TransportMQTT {
		log.Infow("using log transport; commands are not sent anywhere")
		return transport.NewLog(log), nil, nil
	}
	client, err := transport.Connect(transport.ClientConfig{
		Broker:   cfg.MQTT.Broker,
		ClientID: cfg.MQTT.ClientID,
		Username: cfg.MQTT.Username,
		Password: cfg.MQTT.Password,
	}, log)
	if err != nil {
		return nil, nil, err
	}
	log.Infow("using mqtt transport", "broker", cfg.MQTT.Broker, "topic", cfg.MQTT.Topic)
	return transport.NewMQTT(client, cfg.MQTT.Topic, byte(cfg.MQTT.QoS), log), client, nil
}

func seed(configured int64) int64 {
	if configured != 0 {
		return configured
	}
	return time.Now().UnixNano()
}

// runTelemetry runs the telemetry timers; the returned channel closes once Run returns.
func runTelemetry(ctx context.Context, t service.Telemetry) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		t.Run(ctx)
	}()
	return done
}

// runHTTPServer runs the HTTP server in a separate goroutine and reports how it ended.
func runHTTPServer(srv *server.Server, log *logger.Logger) <-chan error {
	errCh := make(chan error, 1)
	go func() {
		log.Infow("http server listening", "addr", srv.Addr())
		errCh <- srv.Run()
	}()
	return errCh
}

// waitForShutdown blocks until a termination signal or a server failure, then
// stops telemetry, waits for it, and drains the HTTP server. It returns the
// server failure, if any.
func waitForShutdown(quit <-chan os.Signal, serverErr <-chan error, cancel context.CancelFunc,
	telemetryDone <-chan struct{}, srv *server.Server, log *logger.Logger) error {
	var runErr error
	select {
	case sig := <-quit:
		log.Infow("shutting down server...", "signal", sig.String())
	case runErr = <-serverErr:
		log.Errorw("http server stopped", "err", runErr)
		if runErr == nil {
			runErr = errServerStopped
		}
	}

	// stop telemetry timers
	cancel()
	select {
	case <-telemetryDone:
	case <-time.After(shutdownTimeout):
		log.Warnw("telemetry did not stop in time")
	}

	// allow in-flight requests to complete
	ctx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorw("server forced to shutdown", "err", err)
	}
	return runErr
}
