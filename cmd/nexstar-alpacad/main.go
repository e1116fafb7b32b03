// Package main is the entry point for the NexStar Alpaca bridge daemon.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/nexstar-alpaca/bridge/internal/config"
	"github.com/nexstar-alpaca/bridge/internal/engines/security"
	"github.com/nexstar-alpaca/bridge/pkg/alpaca"
	"github.com/nexstar-alpaca/bridge/pkg/auditlog"
	"github.com/nexstar-alpaca/bridge/pkg/celestrondriver"
	"github.com/nexstar-alpaca/bridge/pkg/healthcheck"
	"github.com/nexstar-alpaca/bridge/pkg/mqtt"
	"github.com/nexstar-alpaca/bridge/pkg/nexstar"
	"github.com/nexstar-alpaca/bridge/pkg/nexstarserial"
	"github.com/nexstar-alpaca/bridge/pkg/nexstarsim"
	"github.com/nexstar-alpaca/bridge/pkg/telemetry"
	"github.com/nexstar-alpaca/bridge/pkg/telescope"
)

func main() {
	fs := flag.NewFlagSet("nexstar-alpacad", flag.ExitOnError)
	flags := config.RegisterFlags(fs)
	if err := fs.Parse(os.Args[1:]); err != nil {
		if err == flag.ErrHelp {
			os.Exit(0)
		}
		os.Exit(2)
	}

	cfg, err := config.Load(fs, flags)
	if err != nil {
		fmt.Fprintln(os.Stderr, "nexstar-alpacad: "+err.Error())
		os.Exit(1)
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer logger.Sync()

	logger.Info("starting nexstar-alpacad",
		zap.String("device", cfg.Device),
		zap.Int("baud", cfg.Baud),
		zap.Int("port", cfg.Port),
		zap.Bool("conform", cfg.Conform))

	transport, err := openTransport(cfg, logger)
	if err != nil {
		logger.Fatal("failed to open transport", zap.Error(err))
	}
	defer transport.Close()

	driver := celestrondriver.New(transport, logger)
	telescopeDevice := buildTelescope(driver)

	registry := alpaca.NewRegistry()
	registry.RegisterTelescope(0, "NexStar", "Celestron NexStar telescope bridge", telescopeDevice)

	serverConfig := alpaca.DefaultConfig()
	serverConfig.Server.ListenAddress = fmt.Sprintf(":%d", cfg.Port)
	serverConfig.Server.DiscoveryPort = cfg.DiscoveryPort
	serverConfig.CORS.Enabled = cfg.CORSEnabled
	serverConfig.Auth.Enabled = cfg.AuthEnabled
	serverConfig.Auth.Username = cfg.AuthUsername
	if cfg.AuthPassword != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(cfg.AuthPassword), bcrypt.DefaultCost)
		if err != nil {
			logger.Fatal("failed to hash configured auth password", zap.Error(err))
		}
		serverConfig.Auth.PasswordHash = string(hash)
	}
	if cfg.JWTSecret != "" {
		serverConfig.Auth.Bearer = security.NewAppSecurityEngine(cfg.JWTSecret, 24*time.Hour, logger)
	}

	startCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	healthEngine := healthcheck.NewEngine(logger, cfg.HealthCheckInterval)
	if serverConfig.Auth.Bearer != nil {
		healthEngine.Register(serverConfig.Auth.Bearer)
	}

	server, err := alpaca.NewServer(serverConfig, registry, logger)
	if err != nil {
		logger.Fatal("failed to build alpaca server", zap.Error(err))
	}

	if cfg.MQTTBrokerURL != "" {
		publisher, err := telemetry.NewPublisher(&mqtt.Config{
			BrokerURL:            cfg.MQTTBrokerURL,
			ClientID:             "nexstar-alpacad",
			ConnectTimeout:       5 * time.Second,
			KeepAlive:            60 * time.Second,
			AutoReconnect:        true,
			MaxReconnectInterval: 60 * time.Second,
		}, logger)
		if err != nil {
			logger.Error("failed to connect telemetry publisher, continuing without it", zap.Error(err))
		} else {
			server.Telemetry = publisher
			healthEngine.Register(publisher)
			defer publisher.Close()

			reporter := healthcheck.NewReporter(healthEngine, func(ctx context.Context, result *healthcheck.AggregatedResult) error {
				return publisher.PublishHealth(0, result)
			}, logger)
			go reporter.StartReporting(startCtx, cfg.HealthCheckInterval)
		}
	}

	if cfg.DatabaseURL != "" {
		auditLog, err := auditlog.Open(startCtx, cfg.DatabaseURL, logger)
		if err != nil {
			logger.Error("failed to open audit log, continuing without it", zap.Error(err))
		} else {
			server.Audit = auditLog
			healthEngine.Register(auditLog)
			defer auditLog.Close()
		}
	}

	go healthEngine.Start(startCtx)
	defer healthEngine.Stop()

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- server.Start(startCtx)
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	logger.Info("nexstar-alpacad running",
		zap.String("alpaca_api", fmt.Sprintf("http://0.0.0.0:%d", cfg.Port)),
		zap.Int("discovery_port", cfg.DiscoveryPort))

	select {
	case sig := <-sigChan:
		logger.Info("shutdown signal received", zap.String("signal", sig.String()))
		server.Stop()
		cancel()
		<-serverErrors
	case err := <-serverErrors:
		if err != nil {
			logger.Error("server exited with error", zap.Error(err))
			os.Exit(1)
		}
	}

	logger.Info("nexstar-alpacad shutdown complete")
}

func newLogger(level string) (*zap.Logger, error) {
	switch level {
	case "debug":
		return zap.NewDevelopment()
	default:
		lvl, err := zap.ParseAtomicLevel(level)
		if err != nil {
			return nil, err
		}
		cfg := zap.NewProductionConfig()
		cfg.Level = lvl
		return cfg.Build()
	}
}

// openTransport selects the NexStar transport: a real serial port, or the
// deterministic in-memory simulator when --conform is set (so a
// conformance check can run without a mount attached).
func openTransport(cfg *config.Config, logger *zap.Logger) (nexstar.Transport, error) {
	if cfg.Conform {
		logger.Info("running against the in-memory NexStar simulator")
		return nexstarsim.NewSimulator(logger), nil
	}
	return nexstarserial.Open(cfg.Device, cfg.Baud, logger)
}

// buildTelescope wraps driver in the facade with this bridge's fixed
// capability word and static metadata: every gated operation this
// driver implements is advertised as supported.
func buildTelescope(driver *celestrondriver.Driver) *telescope.Telescope {
	// CanFindHome, CanSetDeclinationRate, and CanSetRightAscensionRate are
	// deliberately omitted: the NexStar wire protocol has no find-home
	// opcode and no custom tracking-rate-offset command, so
	// Driver.FindHome/SetDeclinationRate/SetRightAscensionRate always
	// report not_implemented — advertising those capability bits would
	// contradict the operations they gate.
	caps := telescope.CanPark | telescope.CanPulseGuide |
		telescope.CanSetGuideRates | telescope.CanSetPark |
		telescope.CanSetTracking | telescope.CanSlew |
		telescope.CanSlewAltAz | telescope.CanSlewAltAzAsync | telescope.CanSlewAsync |
		telescope.CanSync | telescope.CanSyncAltAz | telescope.CanUnpark |
		telescope.CanMoveAxis0 | telescope.CanMoveAxis1

	meta := telescope.StaticMetadata{
		Description:      "Celestron NexStar telescope bridge",
		DriverInfo:       "nexstar-alpacad",
		DriverVersion:    "1.0",
		InterfaceVersion: 3,
		Name:             "NexStar",
		AlignmentMode:    1, // polar/equatorial per the hand controller's own alignment routine
		EquatorialSystem: 1, // Topocentric
		SupportedAxisRates: map[int][]telescope.AxisRate{
			0: {{Minimum: 0, Maximum: 4}},
			1: {{Minimum: 0, Maximum: 4}},
		},
		SupportedTrackRates: []telescope.TrackingRate{
			telescope.TrackingSidereal, telescope.TrackingLunar, telescope.TrackingSolar,
		},
	}
	return telescope.NewTelescope(driver, caps, meta)
}
