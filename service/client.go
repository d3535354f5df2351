// Package service talks to the remote challenge service.
//
// Both operations block through rate limiting, server faults, transport
// failures and undecodable bodies, resending the identical request after a
// fixed interval. With the default RetryPolicy they only return an error
// when the context is cancelled.
package service

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/net/publicsuffix"

	"github.com/neurlang/blobguess/metrics"
)

// Routes relative to the base URL.
const (
	ChallengeRoute = "/challenge"
	SolveRoute     = "/solve"
)

// Client is a session with the challenge service.
type Client struct {
	baseURL    string
	httpClient *http.Client
	policy     RetryPolicy
	sleep      SleepFunc
	log        *zap.Logger
	metrics    *metrics.Metrics

	mu   sync.Mutex
	hash string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client. Its cookie jar is kept if set.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

func WithRetryPolicy(p RetryPolicy) Option {
	return func(c *Client) {
		c.policy = p
	}
}

func WithSleep(sleep SleepFunc) Option {
	return func(c *Client) {
		c.sleep = sleep
	}
}

func WithLogger(log *zap.Logger) Option {
	return func(c *Client) {
		c.log = log
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// NewClient creates a client for the service at baseURL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid base url %q", baseURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, errors.Errorf("invalid base url %q: scheme must be http or https", baseURL)
	}

	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		policy:  DefaultRetryPolicy(),
		sleep:   Sleep,
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{}
	}
	if c.httpClient.Jar == nil {
		jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
		if err != nil {
			return nil, errors.Wrap(err, "error creating cookie jar")
		}
		c.httpClient.Jar = jar
	}
	if c.log == nil {
		c.log = zap.NewNop()
	}
	if c.sleep == nil {
		c.sleep = Sleep
	}
	return c, nil
}

// Hash returns the terminal hash learned so far, empty until the game is won.
func (c *Client) Hash() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hash
}

// FetchChallenge requests the next round.
func (c *Client) FetchChallenge(ctx context.Context) (*Challenge, error) {
	var challenge *Challenge
	err := c.do(ctx, http.MethodGet, ChallengeRoute, nil, func(body []byte) error {
		var r challengeResponse
		if err := json.Unmarshal(body, &r); err != nil {
			return errors.Wrap(err, "error decoding challenge")
		}
		decoded, err := r.decode()
		if err != nil {
			return err
		}
		challenge = decoded
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "fetching challenge")
	}
	return challenge, nil
}

// SubmitAnswer posts label as the answer to the current round.
func (c *Client) SubmitAnswer(ctx context.Context, label string) (*Solution, error) {
	form := url.Values{"target": {label}}.Encode()

	var solution *Solution
	err := c.do(ctx, http.MethodPost, SolveRoute, []byte(form), func(body []byte) error {
		var r solveResponse
		if err := json.Unmarshal(body, &r); err != nil {
			return errors.Wrap(err, "error decoding solution")
		}
		c.mu.Lock()
		solution = r.decode(c.hash)
		c.hash = solution.Hash
		c.mu.Unlock()
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "submitting answer")
	}
	return solution, nil
}

// do sends the request until decode accepts a response body, the retry
// policy gives up or ctx is done. form is resent unchanged on every attempt.
func (c *Client) do(ctx context.Context, method, route string, form []byte, decode func([]byte) error) error {
	for attempt := 1; ; attempt++ {
		err := c.attempt(ctx, method, route, form, decode)
		if err == nil {
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		c.log.Error("request failed",
			zap.String("method", method),
			zap.String("route", route),
			zap.Int("attempt", attempt),
			zap.Duration("retry_in", c.policy.Interval),
			zap.Error(err),
		)
		if c.policy.exhausted(attempt) {
			return errors.Wrapf(ErrRetriesExhausted, "%s %s after %d attempts: %v", method, route, attempt, err)
		}
		c.metrics.Retry(route)
		if err := c.sleep(ctx, c.policy.Interval); err != nil {
			return err
		}
	}
}

func (c *Client) attempt(ctx context.Context, method, route string, form []byte, decode func([]byte) error) error {
	var body io.Reader
	if form != nil {
		body = bytes.NewReader(form)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+route, body)
	if err != nil {
		return errors.Wrap(err, "failed to create request")
	}
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.Request(route, 0)
		return errors.Wrap(err, "failed to send request")
	}
	defer resp.Body.Close()
	c.metrics.Request(route, resp.StatusCode)

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, "failed to read response")
	}

	switch resp.StatusCode {
	case http.StatusTooManyRequests, http.StatusInternalServerError:
		return errors.Errorf("service returned status %d: %s", resp.StatusCode, truncate(payload, 200))
	}
	if err := decode(payload); err != nil {
		return errors.Wrapf(err, "status %d", resp.StatusCode)
	}
	return nil
}

func truncate(b []byte, n int) string {
	if len(b) > n {
		return string(b[:n]) + "..."
	}
	return string(b)
}
