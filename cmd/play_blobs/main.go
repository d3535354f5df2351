package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	arg "github.com/alexflint/go-arg"
	"github.com/klauspost/cpuid/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/neurlang/blobguess/config"
	"github.com/neurlang/blobguess/inference"
	"github.com/neurlang/blobguess/logger"
	"github.com/neurlang/blobguess/metrics"
	"github.com/neurlang/blobguess/rounds"
	"github.com/neurlang/blobguess/service"
)

func main() {
	args := struct {
		Config    string `arg:"env:BLOBGUESS_CONFIG" help:"yaml config file"`
		Model     string `help:"model .json.sz file from train_blobs"`
		BaseURL   string `arg:"--base-url" help:"overrides base_url from the config"`
		MaxRounds int    `arg:"--max-rounds" help:"overrides max_rounds from the config, -1 keeps it"`
		Metrics   string `help:"overrides metrics.addr from the config"`
	}{
		Model:     "model.json.sz",
		MaxRounds: -1,
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
	if args.MaxRounds >= 0 {
		cfg.MaxRounds = args.MaxRounds
	}
	if args.Metrics != "" {
		cfg.Metrics.Addr = args.Metrics
	}
	log, err := logger.New(cfg.Log)
	if err != nil {
		println(err.Error())
		os.Exit(2)
	}
	defer log.Sync()
	log.Info("starting", zap.String("cpu", cpuid.CPU.BrandName), zap.String("base_url", cfg.BaseURL))

	model, err := inference.ReadCompressedFromFile(args.Model)
	if err != nil {
		log.Fatal("error loading model", zap.String("model", args.Model), zap.Error(err))
	}
	if err := model.EnableCache(cfg.CacheSize); err != nil {
		log.Fatal("error enabling cache", zap.Error(err))
	}
	log.Info("model loaded", zap.Strings("labels", model.Labels()), zap.Int("terms", model.Vocabulary.Dim()))

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)
	if cfg.Metrics.Addr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", metrics.Handler(reg))
			if err := http.ListenAndServe(cfg.Metrics.Addr, mux); err != nil {
				log.Error("metrics listener stopped", zap.Error(err))
			}
		}()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := service.NewClient(cfg.BaseURL,
		service.WithHTTPClient(cfg.HTTPClient()),
		service.WithRetryPolicy(cfg.RetryPolicy()),
		service.WithLogger(log.Named("service")),
		service.WithMetrics(m),
	)
	if err != nil {
		log.Fatal("error creating client", zap.Error(err))
	}

	controller := rounds.New(client, model, cfg.RoundOptions(),
		rounds.WithLogger(log.Named("rounds")),
		rounds.WithMetrics(m),
		rounds.WithOutput(os.Stdout),
	)
	state, err := controller.Run(ctx)
	switch state {
	case rounds.Won:
		fmt.Println("You win!", controller.Session.Hash)
	case rounds.Exhausted:
		log.Info("no win", zap.Int("rounds", controller.Session.Rounds), zap.Int("wins", controller.Session.Wins))
	default:
		log.Error("stopped", zap.Stringer("state", state), zap.Error(err))
		stop()
		log.Sync()
		os.Exit(1)
	}
}
