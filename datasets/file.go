package datasets

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"os"
	"sort"
	"sync"

	"github.com/golang/snappy"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// maxLine bounds a single encoded sample in a corpus file.
const maxLine = 16 << 20

// record is the on-disk form of a Sample. The blob is base64 encoded by
// encoding/json, the same way the challenge service transports it.
type record struct {
	Label  string `json:"label"`
	Binary []byte `json:"binary"`
}

// Writer appends samples to a snappy framed stream of JSON lines.
type Writer struct {
	w   *snappy.Writer
	enc *json.Encoder
	n   int
}

// NewWriter creates a corpus writer on top of w.
func NewWriter(w io.Writer) *Writer {
	sw := snappy.NewBufferedWriter(w)
	return &Writer{
		w:   sw,
		enc: json.NewEncoder(sw),
	}
}

// Write appends one sample.
func (w *Writer) Write(s Sample) error {
	if err := w.enc.Encode(record{Label: s.Label, Binary: s.Blob}); err != nil {
		return errors.Wrapf(err, "error writing sample %d", w.n)
	}
	w.n++
	return nil
}

// Flush flushes buffered samples to the underlying writer.
func (w *Writer) Flush() error {
	return w.w.Flush()
}

// Close flushes and finishes the snappy stream. It does not close the underlying writer.
func (w *Writer) Close() error {
	return w.w.Close()
}

// Len reports the number of samples written.
func (w *Writer) Len() int {
	return w.n
}

// Save writes the whole dataset into a corpus file.
func Save(path string, d Dataslice) error {
	file, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "error creating corpus %s", path)
	}
	w := NewWriter(file)
	for i := 0; i < d.Len(); i++ {
		if err := w.Write(d.Get(i)); err != nil {
			file.Close()
			return err
		}
	}
	if err := w.Close(); err != nil {
		file.Close()
		return errors.Wrapf(err, "error finishing corpus %s", path)
	}
	return file.Close()
}

type line struct {
	n   int
	buf []byte
}

type decoded struct {
	n int
	s Sample
}

// Read decodes a corpus stream, using threads goroutines to decode lines.
// The returned corpus keeps the order of the stream.
func Read(ctx context.Context, r io.Reader, threads int) (Corpus, error) {
	if threads <= 0 {
		threads = 1
	}

	g, ctx := errgroup.WithContext(ctx)

	var lines = make(chan line, 128)
	var samples = make(chan decoded, 128)
	var corpus Corpus

	g.Go(func() error {
		defer close(lines)
		scanner := bufio.NewScanner(snappy.NewReader(r))
		scanner.Buffer(make([]byte, 64<<10), maxLine)
		for n := 0; scanner.Scan(); n++ {
			buf := append([]byte(nil), scanner.Bytes()...)
			if len(buf) == 0 {
				continue
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case lines <- line{n: n, buf: buf}:
			}
		}
		return errors.Wrap(scanner.Err(), "error reading corpus")
	})

	g.Go(func() error {
		var byLine = make(map[int]Sample)
		var order []int
		for d := range samples {
			byLine[d.n] = d.s
			order = append(order, d.n)
		}
		sort.Ints(order)
		corpus = make(Corpus, 0, len(order))
		for _, n := range order {
			corpus = append(corpus, byLine[n])
		}
		return nil
	})

	var wg = &sync.WaitGroup{}
	for i := 0; i < threads; i++ {
		wg.Add(1)
		g.Go(func() error {
			defer wg.Done()
			for l := range lines {
				var rec record
				if err := json.Unmarshal(l.buf, &rec); err != nil {
					return errors.Wrapf(err, "error decoding corpus line %d", l.n+1)
				}
				select {
				case <-ctx.Done():
					return ctx.Err()
				case samples <- decoded{n: l.n, s: Sample{Blob: rec.Binary, Label: rec.Label}}:
				}
			}
			return nil
		})
	}

	g.Go(func() error {
		wg.Wait()
		close(samples)
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return corpus, nil
}

// Load reads a corpus file.
func Load(ctx context.Context, path string, threads int) (Corpus, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "error opening corpus %s", path)
	}
	defer file.Close()
	return Read(ctx, file, threads)
}
