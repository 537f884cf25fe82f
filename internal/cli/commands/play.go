package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/ccollicutt/logplay/pkg/config"
	"github.com/ccollicutt/logplay/pkg/filter"
	"github.com/ccollicutt/logplay/pkg/logging"
	"github.com/ccollicutt/logplay/pkg/output"
	"github.com/ccollicutt/logplay/pkg/parser"
	"github.com/ccollicutt/logplay/pkg/player"
	"github.com/ccollicutt/logplay/pkg/stream"
	"github.com/ccollicutt/logplay/pkg/webhook"
)

// ExitCode is set by commands to indicate the result
var ExitCode = 0

// PlayOptions holds command-line options for the play command.
type PlayOptions struct {
	ConfigPath string
	Rate       string
	OnStop     string
	Output     string
	Filter     string
	Listen     string
	Limit      int
	Duration   time.Duration
	Verbose    bool
	Quiet      bool
	LogLevel   string
	LogFile    string

	// Webhook options
	WebhookURL   string
	WebhookToken string
}

// NewPlayCommand creates the play command.
func NewPlayCommand() *cobra.Command {
	opts := &PlayOptions{}

	cmd := &cobra.Command{
		Use:   "play [directory]",
		Short: "Replay delta logs at a fixed rate",
		Long: `Replay every *.log file in a directory, one delta per tick, looping forever.

Each line of a log file is a JSON object. Lines that don't decode are skipped.
Deltas are written to stdout and, optionally, broadcast over WebSocket and
posted to webhooks.

The directory comes from the argument, the config file, LOGPLAY_DIRECTORY or
the default ` + config.DefaultDirectory + `, in that order.

Send SIGUSR1 to toggle playback. SIGINT or SIGTERM ends the session.

Example:
  logplay play ./deltalogs
  logplay play --rate 20 --filter 'context == "vessels.self"' ./deltalogs
  logplay play --listen :3000 -c logplay.yaml
  logplay play -n 100 -o json ./deltalogs

Exit codes:
  0 - Session ended normally
  2 - Configuration or runtime error`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlay(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.ConfigPath, "config", "c", "", "Configuration file")
	cmd.Flags().StringVarP(&opts.Rate, "rate", "r", "", "Deltas per second (default 6, max 100)")
	cmd.Flags().StringVar(&opts.OnStop, "on-stop", "", "What the reader does while stopped (drain|pause)")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "text", "Output format (text|json)")
	cmd.Flags().StringVar(&opts.Filter, "filter", "", "Only output deltas matching this expression")
	cmd.Flags().StringVar(&opts.Listen, "listen", "", "Serve /stream (WebSocket) and /metrics on this address")
	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", 0, "Stop after this many deltas (0 = no limit)")
	cmd.Flags().DurationVar(&opts.Duration, "duration", 0, "Stop after this long (0 = no limit)")
	cmd.Flags().BoolVarP(&opts.Verbose, "verbose", "v", false, "Show progress statuses and a detailed summary")
	cmd.Flags().BoolVarP(&opts.Quiet, "quiet", "q", false, "Deltas only, no statuses or summary")
	cmd.Flags().StringVar(&opts.LogLevel, "log-level", "", "Log level (debug|info|warn|error)")
	cmd.Flags().StringVar(&opts.LogFile, "log-file", "", "Write logs to this file instead of stderr")

	// Webhook flags
	cmd.Flags().StringVar(&opts.WebhookURL, "webhook-url", "", "Post every delta to this URL")
	cmd.Flags().StringVar(&opts.WebhookToken, "webhook-token", "", "Bearer token for webhook auth")

	return cmd
}

func runPlay(cmd *cobra.Command, args []string, opts *PlayOptions) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	out := cmd.OutOrStdout()

	cfg, err := loadPlayConfig(ctx, args, opts)
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()
	ctx = logging.WithContext(ctx, logger)

	formatter, err := output.New(opts.Output, output.FormatOptions{
		Verbose: opts.Verbose,
		Quiet:   opts.Quiet,
	})
	if err != nil {
		return err
	}

	var flt *filter.Filter
	if cfg.Filter != "" {
		if flt, err = filter.Compile(cfg.Filter); err != nil {
			return err
		}
	}

	registry := prometheus.NewRegistry()
	metrics, err := player.NewMetrics(registry)
	if err != nil {
		return fmt.Errorf("registering metrics: %w", err)
	}

	forwarder := webhook.NewForwarder(webhook.NewClient(), collectEndpoints(cfg), logger)

	var hub *stream.Hub
	if cfg.Listen != "" {
		hub = stream.NewHub(logger)
		shutdown, err := serve(ctx, cfg.Listen, hub, registry)
		if err != nil {
			return err
		}
		defer shutdown()
		defer func() { _ = hub.Close() }()
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	if opts.Duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Duration)
		defer cancel()
	}

	toggle, stopToggle := notifyToggle()
	defer stopToggle()

	p := player.New(cfg.Player(), player.WithLogger(logger), player.WithMetrics(metrics))
	defer func() { _ = p.Close() }()

	summary := &output.Summary{
		Directory: cfg.Directory,
		RateHz:    p.RateHz(),
		StartedAt: time.Now(),
	}
	p.Start()

	s := &session{
		player:    p,
		formatter: formatter,
		filter:    flt,
		hub:       hub,
		forwarder: forwarder,
		out:       out,
		limit:     opts.Limit,
		summary:   summary,
	}
	loopErr := s.loop(ctx, toggle)

	_ = p.Close()
	summary.Files = p.Files()
	summary.Duration = time.Since(summary.StartedAt)
	summary.WebhookFailures = forwarder.Failures()
	playErr := p.Err()
	if playErr != nil {
		summary.Error = playErr.Error()
	}

	if err := formatter.FormatSummary(ctx, summary, out); err != nil {
		return fmt.Errorf("formatting output: %w", err)
	}

	if loopErr != nil {
		return loopErr
	}
	if playErr != nil {
		return fmt.Errorf("replay failed: %w", playErr)
	}
	return nil
}

// loadPlayConfig builds the configuration from the config file (or environment) and flags.
func loadPlayConfig(ctx context.Context, args []string, opts *PlayOptions) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if opts.ConfigPath != "" {
		cfg, err = config.Load(ctx, opts.ConfigPath)
	} else {
		cfg, err = config.FromEnvironment()
	}
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	if len(args) == 1 {
		cfg.Directory = args[0]
	}
	if opts.Rate != "" {
		cfg.RateHz = config.ParseRate(opts.Rate)
	}
	if opts.OnStop != "" {
		cfg.OnStop = config.StopPolicy(opts.OnStop)
	}
	if opts.Filter != "" {
		cfg.Filter = opts.Filter
	}
	if opts.Listen != "" {
		cfg.Listen = opts.Listen
	}
	if opts.LogLevel != "" {
		cfg.Logging.Level = opts.LogLevel
	}
	if opts.LogFile != "" {
		cfg.Logging.Path = opts.LogFile
	}
	if opts.WebhookURL != "" {
		cfg.Webhooks = append(cfg.Webhooks, config.WebhookConfig{
			Name:  "cli",
			URL:   opts.WebhookURL,
			Token: opts.WebhookToken,
		})
	}

	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	return cfg, nil
}

// collectEndpoints converts configured webhooks into forwarder endpoints.
func collectEndpoints(cfg *config.Config) []webhook.Endpoint {
	endpoints := make([]webhook.Endpoint, 0, len(cfg.Webhooks))
	for _, wh := range cfg.Webhooks {
		name := wh.Name
		if name == "" {
			name = wh.URL
		}
		endpoints = append(endpoints, webhook.Endpoint{
			Name:    name,
			URL:     wh.URL,
			Token:   wh.Token,
			Timeout: wh.Timeout,
		})
	}
	return endpoints
}

// serve starts the stream and metrics server and returns a function that shuts it down.
func serve(ctx context.Context, addr string, hub *stream.Hub, registry *prometheus.Registry) (func(), error) {
	logger := logging.FromContext(ctx)
	mux := http.NewServeMux()
	mux.Handle("/stream", hub)
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	// Surface bind errors before playback starts.
	select {
	case err := <-errCh:
		return nil, fmt.Errorf("listening on %s: %w", addr, err)
	case <-time.After(100 * time.Millisecond):
	}
	logger.Infow("serving stream and metrics", "addr", addr)

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logger.Warnw("server shutdown", "error", err)
		}
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warnw("server stopped", "error", err)
		}
	}, nil
}

// session consumes one player's channels until the context ends, the limit is hit or the player fails.
type session struct {
	player    *player.Player
	formatter output.Formatter
	filter    *filter.Filter
	hub       *stream.Hub
	forwarder *webhook.Forwarder
	out       io.Writer
	limit     int
	summary   *output.Summary
}

func (s *session) loop(ctx context.Context, toggle <-chan os.Signal) error {
	deltas := s.player.Deltas()
	statuses := s.player.Status()

	for {
		select {
		case <-ctx.Done():
			return nil

		case <-toggle:
			if s.player.Playing() {
				s.player.Stop()
			} else {
				s.player.Start()
			}

		case st, ok := <-statuses:
			if !ok {
				return nil
			}
			if err := s.formatter.FormatStatus(ctx, st, s.out); err != nil {
				return fmt.Errorf("formatting output: %w", err)
			}
			if st.IsError() {
				return nil
			}

		case delta, ok := <-deltas:
			if !ok {
				return nil
			}
			done, err := s.handleDelta(ctx, delta)
			if err != nil || done {
				return err
			}
		}
	}
}

// handleDelta filters and outputs one delta. It reports true once the limit is reached.
func (s *session) handleDelta(ctx context.Context, delta parser.Delta) (bool, error) {
	s.summary.Deltas++
	logger := logging.FromContext(ctx)

	ok, err := s.filter.Match(delta)
	if err != nil {
		logger.Debugw("filter failed", "filter", s.filter.String(), "error", err)
	}
	if !ok {
		s.summary.Filtered++
		return s.limitReached(), nil
	}

	if err := s.formatter.FormatDelta(ctx, delta, s.out); err != nil {
		return true, fmt.Errorf("formatting output: %w", err)
	}
	if s.hub != nil {
		if err := s.hub.Broadcast(delta); err != nil {
			logger.Warnw("broadcast failed", "error", err)
		}
	}
	s.forwarder.Forward(ctx, delta)

	return s.limitReached(), nil
}

func (s *session) limitReached() bool {
	return s.limit > 0 && s.summary.Forwarded() >= s.limit
}
