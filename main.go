package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"

	"github.com/SayaAndy/saya-today-font-converter/config"
	"github.com/SayaAndy/saya-today-font-converter/internal/batch"
	"github.com/SayaAndy/saya-today-font-converter/internal/client/input"
	"github.com/SayaAndy/saya-today-font-converter/internal/converter"
	"github.com/google/uuid"
)

var (
	configPath = flag.String("c", "config.json", "Path to the configuration file")
	debug      = flag.Bool("d", false, "Enable debug logging regardless of the configured level")
)

func main() {
	flag.Parse()

	cfg, err := config.InitConfig(*configPath)
	if err != nil {
		slog.Error("fail to load configuration", slog.String("path", *configPath), slog.String("error", err.Error()))
		os.Exit(1)
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	if *debug {
		level = slog.LevelDebug
	}

	runID, err := uuid.NewV7()
	if err != nil {
		runID = uuid.New()
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})).
		With(slog.String("run_id", runID.String()))
	slog.SetDefault(logger)

	logger.Info("starting font converter...")

	newInputClient, ok := input.NewInputClientMap[cfg.Input.Storage.Type]
	if !ok {
		logger.Error("unsupported input storage type", slog.String("type", cfg.Input.Storage.Type))
		os.Exit(1)
	}
	inputClient, err := newInputClient(&cfg.Input)
	if err != nil {
		logger.Error("fail to initialize input client", slog.String("error", err.Error()))
		os.Exit(1)
	}

	converters := make([]converter.Converter, 0, len(cfg.Converters))
	for i := range cfg.Converters {
		convCfg := &cfg.Converters[i]
		newConverter, ok := converter.NewConverterMap[convCfg.Type]
		if !ok {
			logger.Error("unsupported converter type", slog.String("type", convCfg.Type))
			os.Exit(1)
		}
		conv, err := newConverter(convCfg)
		if err != nil {
			logger.Error("fail to initialize converter", slog.String("type", convCfg.Type), slog.String("error", err.Error()))
			os.Exit(1)
		}
		converters = append(converters, conv)
	}

	logger.Info("initialized clients and converters",
		slog.String("input_storage", cfg.Input.Storage.Type),
		slog.Int("converters", len(converters)),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	runner := batch.NewRunner(inputClient, converters, batch.Options{
		SkipUnchanged: cfg.SkipUnchanged,
		Logger:        logger,
	})

	report, err := runner.Run(ctx)
	if err != nil {
		logger.Error("font conversion aborted", slog.String("error", err.Error()))
		stop()
		os.Exit(1)
	}

	if report.Total > 0 {
		logger.Info("next steps: check the configured outputs for the converted files")
		logger.Info("next steps: update CSS @font-face declarations to list woff2 first and woff as a fallback, then test the fonts in different browsers")
	}

	if cfg.FailOnError && report.HasFailures() {
		logger.Error("some conversions failed", slog.Int("failures", len(report.Failures)))
		stop()
		os.Exit(1)
	}
}
