package collector

import (
	"bytes"
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neurlang/blobguess/datasets"
	"github.com/neurlang/blobguess/service"
)

type fakeService struct {
	challenges []*service.Challenge
	answers    []string
	submitted  []string
	n          int
}

func (f *fakeService) FetchChallenge(ctx context.Context) (*service.Challenge, error) {
	c := f.challenges[f.n%len(f.challenges)]
	return c, nil
}

func (f *fakeService) SubmitAnswer(ctx context.Context, label string) (*service.Solution, error) {
	f.submitted = append(f.submitted, label)
	answer := f.answers[f.n%len(f.answers)]
	f.n++
	return &service.Solution{Answer: answer}, nil
}

type memorySink struct {
	samples datasets.Corpus
	flushes int
}

func (m *memorySink) Flush() error {
	m.flushes++
	return nil
}

func (m *memorySink) Write(s datasets.Sample) error {
	m.samples = append(m.samples, s)
	return nil
}

func TestCollect(t *testing.T) {
	svc := &fakeService{
		challenges: []*service.Challenge{
			{Targets: []string{"mips", "arm"}, Blob: []byte{1}},
			{Targets: []string{"x86", "arm"}, Blob: []byte{2}},
			{Targets: []string{"sparc", "arm"}, Blob: []byte{3}},
		},
		answers: []string{"arm", "x86", service.UnknownAnswer},
	}
	sink := &memorySink{}

	stats, err := Collect(context.Background(), svc, 3, sink, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, Stats{Rounds: 3, Recorded: 2, Skipped: 1}, stats)
	assert.Equal(t, []string{"mips", "x86", "sparc"}, svc.submitted)
	assert.Equal(t, datasets.Corpus{
		{Blob: []byte{1}, Label: "arm"},
		{Blob: []byte{2}, Label: "x86"},
	}, sink.samples)
}

func TestCollectFlushes(t *testing.T) {
	svc := &fakeService{
		challenges: []*service.Challenge{{Targets: []string{"arm"}, Blob: []byte{1}}},
		answers:    []string{"arm"},
	}
	sink := &memorySink{}

	stats, err := Collect(context.Background(), svc, 2*FlushEvery+1, sink, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 2*FlushEvery+1, stats.Recorded)
	assert.Equal(t, 2, sink.flushes)
}

func TestCollectSkipsEmptyTargets(t *testing.T) {
	svc := &fakeService{
		challenges: []*service.Challenge{{Targets: []string{}, Blob: []byte{1}}},
		answers:    []string{"arm"},
	}
	sink := &memorySink{}

	stats, err := Collect(context.Background(), svc, 2, sink, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Skipped)
	assert.Empty(t, svc.submitted)
	assert.Empty(t, sink.samples)
}

func TestCollectToWriter(t *testing.T) {
	svc := &fakeService{
		challenges: []*service.Challenge{{Targets: []string{"arm"}, Blob: []byte{0xde, 0xad}}},
		answers:    []string{"arm"},
	}
	var buf bytes.Buffer
	w := datasets.NewWriter(&buf)

	_, err := Collect(context.Background(), svc, 5, w, nil, nil)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	assert.Equal(t, 5, w.Len())

	corpus, err := datasets.Read(context.Background(), &buf, 2)
	require.NoError(t, err)
	require.Len(t, corpus, 5)
	assert.Equal(t, "arm", corpus[4].Label)
	assert.Equal(t, []byte{0xde, 0xad}, corpus[4].Blob)
}

func TestCollectCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	stats, err := Collect(ctx, &fakeService{}, 3, &memorySink{}, nil, nil)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, 0, stats.Rounds)
}
