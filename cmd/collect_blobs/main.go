package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	arg "github.com/alexflint/go-arg"
	"github.com/klauspost/cpuid/v2"
	"go.uber.org/zap"

	"github.com/neurlang/blobguess/collector"
	"github.com/neurlang/blobguess/config"
	"github.com/neurlang/blobguess/datasets"
	"github.com/neurlang/blobguess/logger"
	"github.com/neurlang/blobguess/service"
)

func main() {
	args := struct {
		Config  string `arg:"env:BLOBGUESS_CONFIG" help:"yaml config file"`
		Out     string `help:"corpus destination .jsonl.sz file"`
		Rounds  int    `help:"number of challenges to play"`
		BaseURL string `arg:"--base-url" help:"overrides base_url from the config"`
	}{
		Out:    "corpus.jsonl.sz",
		Rounds: 10000,
	}
	arg.MustParse(&args)

	cfg, err := config.Load(args.Config)
	if err != nil {
		println(err.Error())
		os.Exit(2)
	}
	if args.BaseURL != "" {
		cfg.BaseURL = args.BaseURL
	}
	log, err := logger.New(cfg.Log)
	if err != nil {
		println(err.Error())
		os.Exit(2)
	}
	defer log.Sync()
	log.Info("starting", zap.String("cpu", cpuid.CPU.BrandName), zap.String("base_url", cfg.BaseURL))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := service.NewClient(cfg.BaseURL,
		service.WithHTTPClient(cfg.HTTPClient()),
		service.WithRetryPolicy(cfg.RetryPolicy()),
		service.WithLogger(log.Named("service")),
	)
	if err != nil {
		log.Fatal("error creating client", zap.Error(err))
	}

	file, err := os.Create(args.Out)
	if err != nil {
		log.Fatal("error creating corpus", zap.Error(err))
	}
	defer file.Close()
	w := datasets.NewWriter(file)

	stats, err := collector.Collect(ctx, client, args.Rounds, w, log.Named("collector"), nil)
	if cerr := w.Close(); cerr != nil && err == nil {
		err = cerr
	}
	log.Info("collected",
		zap.String("out", args.Out),
		zap.Int("rounds", stats.Rounds),
		zap.Int("recorded", stats.Recorded),
		zap.Int("skipped", stats.Skipped))
	if err != nil {
		log.Error("collection stopped", zap.Error(err))
		os.Exit(1)
	}
}
