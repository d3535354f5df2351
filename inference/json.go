package inference

import "encoding/json"
import "io"
import "os"

import "github.com/golang/snappy"
import "github.com/pkg/errors"

// WriteCompressed writes the model as snappy compressed json
func (m *Model) WriteCompressed(w io.Writer) error {
	sw := snappy.NewBufferedWriter(w)
	if err := json.NewEncoder(sw).Encode(m); err != nil {
		return errors.Wrap(err, "error encoding model")
	}
	return sw.Close()
}

// WriteCompressedToFile writes the model to a file
func (m *Model) WriteCompressedToFile(name string) error {
	file, err := os.Create(name)
	if err != nil {
		return errors.Wrapf(err, "error creating model %s", name)
	}
	err = m.WriteCompressed(file)
	if cerr := file.Close(); err == nil {
		err = cerr
	}
	return err
}

// ReadCompressed reads a model written by WriteCompressed
func ReadCompressed(r io.Reader) (*Model, error) {
	var m Model
	if err := json.NewDecoder(snappy.NewReader(r)).Decode(&m); err != nil {
		return nil, errors.Wrap(err, "error decoding model")
	}
	if err := m.check(); err != nil {
		return nil, err
	}
	return &m, nil
}

// ReadCompressedFromFile reads a model from a file
func ReadCompressedFromFile(name string) (*Model, error) {
	file, err := os.Open(name)
	if err != nil {
		return nil, errors.Wrapf(err, "error opening model %s", name)
	}
	defer file.Close()
	return ReadCompressed(file)
}
