package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"
	"periph.io/x/conn/v3/physic"

	"libdb.so/bloclock"
	"libdb.so/bloclock/calendar"
	"libdb.so/bloclock/calendar/google"
	"libdb.so/bloclock/internal/clockface"
	"libdb.so/bloclock/internal/sink"
)

var (
	config  = "bloclock.toml"
	verbose = false
	mode    = ""
	auth    = false
)

func init() {
	pflag.StringVarP(&config, "config", "c", config, "configuration file")
	pflag.BoolVarP(&verbose, "verbose", "v", verbose, "verbose output")
	pflag.StringVar(&mode, "mode", mode, "start in the given mode (overview, countdown or night)")
	pflag.BoolVar(&auth, "auth", auth, "authorize calendar access and save the token, then exit")
}

func main() {
	pflag.Parse()

	logLevel := slog.LevelWarn
	if verbose {
		logLevel = slog.LevelDebug
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := readConfig()
	if err != nil {
		return err
	}

	if mode != "" {
		m, err := clockface.ParseMode(mode)
		if err != nil {
			return err
		}
		cfg.Mode = m
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if auth {
		return authorize(ctx, cfg)
	}

	source, err := newSource(ctx, cfg)
	if err != nil {
		return err
	}

	out, err := openSink(cfg)
	if err != nil {
		return err
	}

	async := sink.NewAsync(out, slog.Default().With("component", "sink"))
	defer async.Close()

	d, err := bloclock.NewDaemon(cfg, slog.Default(), async, source)
	if err != nil {
		return fmt.Errorf("failed to create daemon: %w", err)
	}

	go cycleModes(ctx, d)

	if err := d.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("daemon failed: %w", err)
	}

	return nil
}

func readConfig() (*bloclock.Config, error) {
	f, err := os.Open(config)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	cfg, err := bloclock.ParseConfig(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return cfg, nil
}

// cycleModes switches to the next mode every time SIGUSR1 is received.
func cycleModes(ctx context.Context, d *bloclock.Daemon) {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGUSR1)
	defer signal.Stop(sig)

	for {
		select {
		case <-ctx.Done():
			return
		case <-sig:
			next := clockface.Modes[(int(d.Mode())+1)%len(clockface.Modes)]
			d.SetMode(next)
		}
	}
}

func openSink(cfg *bloclock.Config) (sink.Sink, error) {
	o := cfg.Output
	switch o.Kind {
	case bloclock.ArtNetOutput:
		return sink.DialArtNet(o.Address, o.Universe)
	case bloclock.SerialOutput:
		// The controller is told about the LEDs before the offset as well.
		return sink.OpenSerial(o.Device, o.Baud, o.Offset/3+cfg.NumLEDs(), slog.Default().With("component", "serial"))
	case bloclock.SPIOutput:
		return sink.OpenSPI(o.SPIPort, o.Offset/3+cfg.NumLEDs(), physic.Frequency(o.SPIKHz)*physic.KiloHertz)
	case bloclock.DiscardOutput:
		return sink.Discard{}, nil
	default:
		return nil, fmt.Errorf("unknown output kind %q", o.Kind)
	}
}

func newSource(ctx context.Context, cfg *bloclock.Config) (calendar.Source, error) {
	if !cfg.Calendar.Enabled() {
		slog.Info("no calendar credentials configured, drawing without events")
		return nil, nil
	}

	oauthCfg, err := google.OAuthConfig(cfg.Calendar.Credentials)
	if err != nil {
		return nil, err
	}

	client, err := google.Client(ctx, oauthCfg, cfg.Calendar.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to load calendar token, run with --auth first: %w", err)
	}

	src, err := google.NewSource(ctx, client, google.Config{
		CalendarID: cfg.Calendar.ID,
		MaxResults: cfg.Calendar.MaxResults,
	}, slog.Default().With("component", "google"))
	if err != nil {
		return nil, err
	}
	return src, nil
}

func authorize(ctx context.Context, cfg *bloclock.Config) error {
	if !cfg.Calendar.Enabled() {
		return errors.New("no calendar credentials configured")
	}

	oauthCfg, err := google.OAuthConfig(cfg.Calendar.Credentials)
	if err != nil {
		return err
	}

	tok, err := google.Authorize(ctx, oauthCfg, os.Stdin, os.Stdout)
	if err != nil {
		return err
	}

	if err := google.SaveToken(cfg.Calendar.Token, tok); err != nil {
		return err
	}

	fmt.Println("Token stored to", cfg.Calendar.Token)
	return nil
}
