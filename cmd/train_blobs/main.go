package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	arg "github.com/alexflint/go-arg"
	"github.com/klauspost/cpuid/v2"
	"go.uber.org/zap"

	"github.com/neurlang/blobguess/classifier"
	"github.com/neurlang/blobguess/config"
	"github.com/neurlang/blobguess/datasets"
	"github.com/neurlang/blobguess/logger"
	"github.com/neurlang/blobguess/parallel"
	"github.com/neurlang/blobguess/trainer"
)

func main() {
	args := struct {
		Config   string `arg:"env:BLOBGUESS_CONFIG" help:"yaml config file"`
		Corpus   string `help:"corpus .jsonl.sz file from collect_blobs"`
		DstModel string `arg:"--dstmodel" help:"model destination .json.sz file"`
		PGO      bool   `arg:"--pgo" help:"write a cpu profile to default.pgo"`
	}{
		Corpus:   "corpus.jsonl.sz",
		DstModel: "model.json.sz",
	}
	arg.MustParse(&args)

	cfg, err := config.Load(args.Config)
	if err != nil {
		println(err.Error())
		os.Exit(2)
	}
	log, err := logger.New(cfg.Log)
	if err != nil {
		println(err.Error())
		os.Exit(2)
	}
	defer log.Sync()

	h := cfg.HyperParameters()
	log.Info("starting",
		zap.String("cpu", cpuid.CPU.BrandName),
		zap.Int("threads", parallel.Threads(h.Threads)))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stopProfile := startProfile(args.PGO)
	defer stopProfile()

	corpus, err := datasets.Load(ctx, args.Corpus, h.Threads)
	if err != nil {
		log.Fatal("error loading corpus", zap.String("corpus", args.Corpus), zap.Error(err))
	}
	log.Info("corpus loaded", zap.Int("samples", corpus.Len()), zap.Strings("labels", datasets.Labels(corpus)))

	model, report, err := trainer.Train(corpus, h, log.Named("trainer"))
	if err != nil {
		var terr *classifier.TrainingError
		if errors.As(err, &terr) {
			log.Error("training failed", zap.String("reason", terr.Reason))
		} else {
			log.Error("training failed", zap.Error(err))
		}
		stopProfile()
		os.Exit(1)
	}
	if err := model.WriteCompressedToFile(args.DstModel); err != nil {
		log.Fatal("error saving model", zap.Error(err))
	}
	fmt.Println("[success rate]", report.Evaluation.Success, "%", "on", report.Evaluation.Samples, "holdout samples")
	log.Info("model saved", zap.String("model", args.DstModel), zap.Int("terms", report.Terms))
}
