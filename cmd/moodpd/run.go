package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/google/uuid"
	"golang.org/x/term"

	"github.com/nerrad567/moodpd/internal/console"
	"github.com/nerrad567/moodpd/internal/infrastructure/config"
	"github.com/nerrad567/moodpd/internal/infrastructure/influxdb"
	"github.com/nerrad567/moodpd/internal/infrastructure/logging"
	"github.com/nerrad567/moodpd/internal/infrastructure/mqtt"
	"github.com/nerrad567/moodpd/internal/oscctl"
	"github.com/nerrad567/moodpd/internal/relay"
	"github.com/nerrad567/moodpd/internal/serial"
	"github.com/nerrad567/moodpd/internal/telemetry"
)

// options holds command-line overrides. Zero values leave the config alone.
type options struct {
	configPath  string
	allowRaw    bool
	allowRawSet bool
	logFlags    string
	device      string
	dialect     string
}

// run is the daemon proper, separated from main for testability.
// Cancelling ctx stops the event loop and run returns nil.
func run(ctx context.Context, opts options) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	log := logging.New(cfg.Logging, version)
	if opts.logFlags != "" {
		v, flagErr := logging.ParseFlags(opts.logFlags)
		if flagErr != nil {
			return fmt.Errorf("parsing log flags: %w", flagErr)
		}
		log.SetVerbosity(v)
	}

	runID := uuid.NewString()
	log = log.With("run_id", runID)
	log.Info("starting moodpd",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	toggles := relay.NewToggles(cfg.Relay.AllowRaw, log.Level())
	if toggles.RawAllowed() {
		log.Warn("raw mode enabled, network peers can write arbitrary bytes to the lamp")
	}

	encoder, err := relay.NewEncoder(cfg.Dialect)
	if err != nil {
		return fmt.Errorf("selecting dialect: %w", err)
	}

	port, err := serial.Open(cfg.Serial.Device, cfg.Serial.Baud)
	if err != nil {
		return fmt.Errorf("opening lamp: %w", err)
	}
	defer func() {
		if closeErr := port.Close(); closeErr != nil {
			log.Error("error closing lamp", "error", closeErr)
		}
	}()
	log.Info("lamp opened",
		"device", port.Path(),
		"baud", cfg.Serial.Baud,
		"terminal", port.IsTerminal(),
		"dialect", encoder.Name(),
	)

	var observers telemetry.Fanout

	mqttClient := connectMQTT(cfg.MQTT, runID, log)
	if mqttClient != nil {
		defer func() {
			log.Info("disconnecting from MQTT")
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
		// #nosec G115 -- qos validated to 0-2 by config
		qos := byte(cfg.MQTT.QoS)
		observers = append(observers, telemetry.NewMQTTMirror(mqttClient, mqttClient.LampID(), qos, runID, log))
	}

	influxClient := connectInfluxDB(cfg.InfluxDB, log)
	if influxClient != nil {
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		observers = append(observers, telemetry.NewInfluxRecorder(influxClient, runID))
	}

	relayOpts := relay.Options{
		Encoder:       encoder,
		Toggles:       toggles,
		MaxPacketSize: cfg.Relay.MaxPacketSize,
		Logger:        log,
	}
	if len(observers) > 0 {
		relayOpts.Observer = observers
	}
	r, err := relay.New(port, relayOpts)
	if err != nil {
		return fmt.Errorf("creating relay: %w", err)
	}
	if hsErr := r.Handshake(); hsErr != nil {
		return fmt.Errorf("lamp handshake: %w", hsErr)
	}

	sock, err := relay.ListenUDP(cfg.Relay.Listen)
	if err != nil {
		return fmt.Errorf("opening command socket: %w", err)
	}
	defer sock.Close()
	logListening(log, "listening for m00d commands", sock)

	wake, err := relay.NewWakePipe()
	if err != nil {
		return fmt.Errorf("creating wake pipe: %w", err)
	}
	defer wake.Close()
	stop := context.AfterFunc(ctx, wake.Notify)
	defer stop()
	handlers := []*relay.Handler{wake.Handler()}

	if cfg.OSC.Enabled {
		oscSock, oscErr := relay.ListenUDP(cfg.OSC.Listen)
		if oscErr != nil {
			return fmt.Errorf("opening OSC socket: %w", oscErr)
		}
		defer oscSock.Close()
		logListening(log, "listening for OSC", oscSock)
		handlers = append(handlers, oscctl.NewListener(oscSock, r, log).Handler())
	}

	if con := startConsole(cfg.Console, toggles, log); con != nil {
		defer func() {
			if restoreErr := con.Restore(); restoreErr != nil {
				log.Error("error restoring terminal", "error", restoreErr)
			}
		}()
		handlers = append(handlers, con.Handler())
	}

	err = r.Serve(sock, handlers...)

	stats := r.Stats()
	log.Info("relay stopped",
		"received", stats.Received,
		"rejected", stats.Rejected,
		"sent", stats.Sent,
		"osc", stats.OSC,
		"bytes_written", stats.BytesWritten,
		"buffered", stats.Buffered,
	)
	if influxClient != nil {
		influxClient.WriteStats(influxdb.StatsSample(stats), runID)
	}

	if errors.Is(err, relay.ErrShutdown) {
		log.Info("shutdown requested")
		return nil
	}
	log.Critical("relay failed", "error", err)
	return fmt.Errorf("relay: %w", err)
}

// loadConfig loads the config file and applies command-line overrides.
func loadConfig(opts options) (*config.Config, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	if opts.allowRawSet {
		cfg.Relay.AllowRaw = opts.allowRaw
	}
	if opts.device != "" {
		cfg.Serial.Device = opts.device
	}
	if opts.dialect != "" {
		cfg.Dialect.Name = opts.dialect
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating flags: %w", err)
	}
	return cfg, nil
}

// connectMQTT returns nil when the mirror is disabled or the broker is
// unreachable. The lamp keeps working without it.
func connectMQTT(cfg config.MQTTConfig, runID string, log *logging.Logger) *mqtt.Client {
	if !cfg.Enabled {
		return nil
	}
	client, err := mqtt.Connect(cfg, runID)
	if err != nil {
		log.Warn("MQTT mirror disabled", "error", err)
		return nil
	}
	client.SetLogger(log)
	client.SetOnConnect(func() {
		log.Info("MQTT reconnected")
	})
	log.Info("MQTT connected",
		"broker", fmt.Sprintf("%s:%d", cfg.Broker.Host, cfg.Broker.Port),
		"client_id", cfg.Broker.ClientID,
		"lamp_id", cfg.LampID,
	)
	return client
}

// connectInfluxDB returns nil when telemetry is disabled or the server is
// unreachable.
func connectInfluxDB(cfg config.InfluxDBConfig, log *logging.Logger) *influxdb.Client {
	if !cfg.Enabled {
		return nil
	}
	client, err := influxdb.Connect(cfg)
	if err != nil {
		log.Warn("InfluxDB telemetry disabled", "error", err)
		return nil
	}
	client.SetOnError(func(err error) {
		log.Error("InfluxDB write error", "error", err)
	})
	log.Info("InfluxDB connected",
		"url", cfg.URL,
		"org", cfg.Org,
		"bucket", cfg.Bucket,
	)
	return client
}

// startConsole puts stdin into key mode when it is a terminal.
func startConsole(cfg config.ConsoleConfig, toggles *relay.Toggles, log *logging.Logger) *console.Console {
	fd := int(os.Stdin.Fd()) // #nosec G115 -- file descriptors fit in int
	if !cfg.Enabled || !term.IsTerminal(fd) {
		return nil
	}
	con := console.New(fd, os.Stdout, toggles)
	if err := con.MakeInteractive(); err != nil {
		log.Warn("console disabled", "error", err)
		return nil
	}
	log.Info("console ready, press ? for help")
	return con
}

func logListening(log *logging.Logger, msg string, sock *relay.DatagramSocket) {
	addr, err := sock.LocalAddr()
	if err != nil {
		log.Info(msg)
		return
	}
	log.Info(msg, "addr", addr.String())
}
