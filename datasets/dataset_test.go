package datasets

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/golang/snappy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCorpus() Corpus {
	return Corpus{
		{Blob: []byte{0x00, 0x01}, Label: "alpha"},
		{Blob: []byte{0xff, 0xfe, 0x80}, Label: "bravo"},
		{Blob: []byte{}, Label: "alpha"},
		{Blob: []byte("\x55\x89\xe5\xc3"), Label: "x86"},
		{Blob: []byte{0xc0, 0xff, 0xee}, Label: "bravo"},
	}
}

func TestLabels(t *testing.T) {
	assert.Equal(t, []string{"alpha", "bravo", "x86"}, Labels(testCorpus()))
	assert.Nil(t, Labels(Corpus{}))
}

func TestSplit(t *testing.T) {
	t.Run("deterministic for a seed", func(t *testing.T) {
		train1, test1 := Split(testCorpus(), 0.4, 7)
		train2, test2 := Split(testCorpus(), 0.4, 7)
		assert.Equal(t, train1, train2)
		assert.Equal(t, test1, test2)
		assert.Len(t, test1, 2)
		assert.Len(t, train1, 3)
	})

	t.Run("no holdout keeps everything", func(t *testing.T) {
		train, test := Split(testCorpus(), 0, 1)
		assert.Len(t, train, 5)
		assert.Empty(t, test)
	})

	t.Run("never holds out the whole corpus", func(t *testing.T) {
		train, test := Split(testCorpus(), 1, 1)
		assert.Len(t, train, 1)
		assert.Len(t, test, 4)
	})
}

func TestTally(t *testing.T) {
	tally := TallyOf(testCorpus())
	assert.Equal(t, 5, tally.Len())
	assert.Equal(t, 2, tally.Count("alpha"))
	assert.Equal(t, 0, tally.Count("mips"))
	assert.Equal(t, []string{"alpha", "bravo", "x86"}, tally.Labels())
}

func TestCorpusRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	for _, s := range testCorpus() {
		require.NoError(t, w.Write(s))
	}
	require.NoError(t, w.Close())
	assert.Equal(t, 5, w.Len())

	corpus, err := Read(context.Background(), &buf, 3)
	require.NoError(t, err)
	require.Len(t, corpus, 5)
	for i, s := range testCorpus() {
		assert.Equal(t, s.Label, corpus[i].Label)
		assert.True(t, bytes.Equal(s.Blob, corpus[i].Blob), "sample %d blob changed", i)
	}
}

func TestWriterFlush(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.Write(Sample{Blob: []byte{1, 2}, Label: "arm"}))
	assert.Zero(t, buf.Len())

	require.NoError(t, w.Flush())
	corpus, err := Read(context.Background(), bytes.NewReader(buf.Bytes()), 1)
	require.NoError(t, err)
	assert.Equal(t, Corpus{{Blob: []byte{1, 2}, Label: "arm"}}, corpus)
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corpus.jsonl.sz")
	require.NoError(t, Save(path, testCorpus()))

	corpus, err := Load(context.Background(), path, 2)
	require.NoError(t, err)
	assert.Equal(t, Labels(testCorpus()), Labels(corpus))
	assert.Equal(t, 5, corpus.Len())

	_, err = Load(context.Background(), filepath.Join(t.TempDir(), "missing"), 2)
	assert.Error(t, err)
}

func TestReadMalformed(t *testing.T) {
	var buf bytes.Buffer
	sw := snappy.NewBufferedWriter(&buf)
	_, err := sw.Write([]byte("{\"label\":\"ok\",\"binary\":\"AAE=\"}\nnot json\n"))
	require.NoError(t, err)
	require.NoError(t, sw.Close())

	_, err = Read(context.Background(), &buf, 2)
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "line 2"), err.Error())
}
