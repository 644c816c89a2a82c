package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/username/daybook/internal/config"
	"github.com/username/daybook/internal/ics"
	"github.com/username/daybook/internal/store"
	"github.com/username/daybook/pkg/dateutil"
)

var (
	configPath string
	useSample  bool
	logger     *zap.Logger
	out        io.Writer = os.Stdout
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "daybook",
		Short:         "Day and month calendar views over an iCalendar file",
		Long:          "Browse days, weeks and months of events loaded from an .ics file, add events and keep the agenda in sync",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load config to get log file path
			cfg, err := config.Load(configPath)
			if err != nil {
				initLogger("info") // Default console logger
				return
			}
			if cfg.Log.File != "" {
				logger, err = initFileLogger(cfg.Log.File, cfg.Log.Level)
				if err == nil {
					return
				}
			}
			initLogger(cfg.Log.Level)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file path (default: ./config.yaml, ~/.daybook, /etc/daybook)")
	rootCmd.PersistentFlags().BoolVar(&useSample, "sample", false, "Use built-in sample events instead of the configured file")

	rootCmd.AddCommand(
		agendaCmd(),
		pageCmd(),
		monthsCmd(),
		gridCmd(),
		addCmd(),
		exportCmd(),
		watchCmd(),
	)

	return rootCmd
}

// app bundles what every command needs
type app struct {
	cfg     *config.Config
	dateCtx dateutil.Context
	source  *ics.FileSource
	store   *store.Store
}

func loadApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	dateCtx, err := cfg.Context()
	if err != nil {
		return nil, err
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	a := &app{
		cfg:     cfg,
		dateCtx: dateCtx,
		source: &ics.FileSource{
			Path:       cfg.Source.ICSFile,
			WindowDays: cfg.Source.GetWindowDays(),
			Context:    dateCtx,
			Logger:     logger,
		},
	}

	now := time.Now()
	switch {
	case useSample:
		a.store = store.New(logger, store.SampleEntries(now, dateCtx)...)
	case cfg.Source.ICSFile == "":
		return nil, fmt.Errorf("source.ics_file is not configured (use --sample to try the built-in events)")
	default:
		entries, err := a.source.Load(ctx, now)
		if err != nil {
			return nil, err
		}
		a.store = store.New(logger)
		if skipped := a.store.Replace(entries); skipped > 0 {
			logger.Warn("Some entries were skipped", zap.Int("skipped", skipped))
		}
	}

	return a, nil
}

// parseDay parses a --from style flag, empty meaning today
func (a *app) parseDay(value string) (time.Time, error) {
	if value == "" {
		return time.Now().In(a.dateCtx.Location), nil
	}
	t, err := dateutil.ParseDate(value, a.dateCtx.Location)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", value, err)
	}
	return t, nil
}

func initLogger(level string) {
	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(parseLevel(level))
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	// stdout carries command output
	config.OutputPaths = []string{"stderr"}

	var err error
	logger, err = config.Build()
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
}

func initFileLogger(logFile string, level string) (*zap.Logger, error) {
	// Setup lumberjack for log rotation
	logWriter := &lumberjack.Logger{
		Filename:   logFile,
		MaxSize:    50, // MB
		MaxBackups: 3,
		MaxAge:     28, // days
		Compress:   true,
	}

	// Setup encoder
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		zapcore.AddSync(logWriter),
		parseLevel(level),
	)

	return zap.New(core), nil
}

// parseLevel falls back to info for empty or unknown levels
func parseLevel(level string) zapcore.Level {
	var zapLevel zapcore.Level
	if err := zapLevel.UnmarshalText([]byte(level)); err != nil || level == "" {
		return zapcore.InfoLevel
	}
	return zapLevel
}
