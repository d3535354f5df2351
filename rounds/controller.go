// Package rounds drives the challenge loop: fetch a blob, predict its label
// among the offered candidates, submit, and stop once the service hands out
// the terminal hash or the round budget runs out.
package rounds

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/neurlang/blobguess/metrics"
	"github.com/neurlang/blobguess/service"
)

// Defaults for Options.
const (
	DefaultMaxRounds    = 100
	DefaultRequiredWins = 500
)

// Service is the remote side of a round.
type Service interface {
	FetchChallenge(ctx context.Context) (*service.Challenge, error)
	SubmitAnswer(ctx context.Context, label string) (*service.Solution, error)
}

// Predictor picks a label for a blob from the candidates.
type Predictor interface {
	Infer(blob []byte, candidates []string) (string, error)
}

type Options struct {
	MaxRounds    int // 0 plays until won
	RequiredWins int
}

func DefaultOptions() Options {
	return Options{
		MaxRounds:    DefaultMaxRounds,
		RequiredWins: DefaultRequiredWins,
	}
}

// Controller runs rounds sequentially against one Service.
type Controller struct {
	Session Session

	service   Service
	predictor Predictor
	opts      Options
	log       *zap.Logger
	metrics   *metrics.Metrics
	out       io.Writer
	state     State
	announced bool
}

type Option func(*Controller)

func WithLogger(log *zap.Logger) Option {
	return func(c *Controller) {
		c.log = log
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Controller) {
		c.metrics = m
	}
}

// WithOutput sets where progress lines are printed.
func WithOutput(w io.Writer) Option {
	return func(c *Controller) {
		c.out = w
	}
}

func New(svc Service, predictor Predictor, opts Options, options ...Option) *Controller {
	c := &Controller{
		service:   svc,
		predictor: predictor,
		opts:      opts,
		log:       zap.NewNop(),
		out:       io.Discard,
	}
	for _, o := range options {
		o(c)
	}
	if c.log == nil {
		c.log = zap.NewNop()
	}
	if c.out == nil {
		c.out = io.Discard
	}
	return c
}

func (c *Controller) State() State {
	return c.state
}

// Run plays rounds until a terminal state is reached. The error is non-nil
// only in the Aborted state.
func (c *Controller) Run(ctx context.Context) (State, error) {
	for {
		if c.Session.Hash != "" {
			c.state = Won
			c.log.Info("won",
				zap.String("hash", c.Session.Hash),
				zap.Int("wins", c.Session.Wins),
				zap.Int("rounds", c.Session.Rounds))
			return c.state, nil
		}
		if c.opts.MaxRounds > 0 && c.Session.Rounds >= c.opts.MaxRounds {
			c.state = Exhausted
			c.log.Info("round budget exhausted",
				zap.Int("rounds", c.Session.Rounds),
				zap.Int("wins", c.Session.Wins))
			return c.state, nil
		}
		if _, err := c.Step(ctx); err != nil {
			c.state = Aborted
			c.log.Error("aborted", zap.Int("rounds", c.Session.Rounds), zap.Error(err))
			return c.state, err
		}
	}
}

// Step plays a single round and records it in the Session.
func (c *Controller) Step(ctx context.Context) (*Round, error) {
	var r = &Round{
		ID:     uuid.New(),
		Number: c.Session.Rounds + 1,
	}

	challenge, err := c.service.FetchChallenge(ctx)
	if err != nil {
		return nil, errors.Wrapf(err, "round %d: challenge", r.Number)
	}
	r.Targets = challenge.Targets
	r.Blob = challenge.Blob

	r.Guess, err = c.predictor.Infer(r.Blob, r.Targets)
	if err != nil {
		return nil, errors.Wrapf(err, "round %d: prediction", r.Number)
	}

	solution, err := c.service.SubmitAnswer(ctx, r.Guess)
	if err != nil {
		return nil, errors.Wrapf(err, "round %d: submission", r.Number)
	}
	r.Wins = solution.Wins
	r.Answer = solution.Answer
	r.Hash = solution.Hash

	c.Session.record(r)
	c.metrics.Round(r.Guess, r.Wins)

	fmt.Fprintf(c.out, "Guess:[%9s]   Answer:[%9s]   Wins:[%3d]\n", r.Guess, r.Answer, r.Wins)
	c.log.Debug("round",
		zap.String("id", r.ID.String()),
		zap.Int("round", r.Number),
		zap.Strings("targets", r.Targets),
		zap.Int("blob", len(r.Blob)),
		zap.String("guess", r.Guess),
		zap.String("answer", r.Answer),
		zap.Int("wins", r.Wins))

	if c.opts.RequiredWins > 0 && r.Wins >= c.opts.RequiredWins && !c.announced {
		c.announced = true
		c.log.Info("required wins reached", zap.Int("wins", r.Wins), zap.Int("required", c.opts.RequiredWins))
	}
	return r, nil
}
