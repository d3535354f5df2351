// Package collector builds a labeled corpus by playing rounds against the
// service: it answers every challenge with its first candidate and records
// the blob under the answer the service reports as correct.
package collector

import (
	"context"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/neurlang/blobguess/datasets"
	"github.com/neurlang/blobguess/metrics"
	"github.com/neurlang/blobguess/service"
)

// Service is the part of the remote client the collector needs.
type Service interface {
	FetchChallenge(ctx context.Context) (*service.Challenge, error)
	SubmitAnswer(ctx context.Context, label string) (*service.Solution, error)
}

// Sink receives collected samples, usually a *datasets.Writer.
type Sink interface {
	Write(s datasets.Sample) error
}

// Flusher is implemented by sinks that buffer, like *datasets.Writer.
type Flusher interface {
	Flush() error
}

// FlushEvery is how many recorded samples may sit in a buffering sink.
const FlushEvery = 1000

// Stats counts what a collection run did.
type Stats struct {
	Rounds   int
	Recorded int
	Skipped  int
}

// Collect plays n rounds and writes every sample whose answer is known.
// Rounds without candidates or without a reported answer are skipped.
func Collect(ctx context.Context, svc Service, n int, sink Sink, log *zap.Logger, m *metrics.Metrics) (Stats, error) {
	if log == nil {
		log = zap.NewNop()
	}
	var stats Stats
	for stats.Rounds < n {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		stats.Rounds++

		challenge, err := svc.FetchChallenge(ctx)
		if err != nil {
			return stats, errors.Wrapf(err, "round %d: challenge", stats.Rounds)
		}
		if len(challenge.Targets) == 0 {
			log.Warn("challenge without candidates", zap.Int("round", stats.Rounds))
			stats.Skipped++
			continue
		}

		guess := challenge.Targets[0]
		solution, err := svc.SubmitAnswer(ctx, guess)
		if err != nil {
			return stats, errors.Wrapf(err, "round %d: submission", stats.Rounds)
		}
		m.Round(guess, solution.Wins)
		if solution.Answer == service.UnknownAnswer || solution.Answer == "" {
			stats.Skipped++
			continue
		}

		if err := sink.Write(datasets.Sample{Blob: challenge.Blob, Label: solution.Answer}); err != nil {
			return stats, errors.Wrap(err, "error writing sample")
		}
		stats.Recorded++
		if stats.Recorded%FlushEvery == 0 {
			if f, ok := sink.(Flusher); ok {
				if err := f.Flush(); err != nil {
					return stats, errors.Wrap(err, "error flushing samples")
				}
			}
			log.Info("collecting", zap.Int("recorded", stats.Recorded), zap.Int("rounds", stats.Rounds))
		}
	}
	return stats, nil
}
