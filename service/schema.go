package service

import (
	"encoding/base64"
	"encoding/json"
	"math"
	"strings"

	"github.com/pkg/errors"
)

// UnknownAnswer is reported when the service does not say what the correct answer was.
const UnknownAnswer = "unknown"

// Challenge is one round handed out by the service.
type Challenge struct {
	Targets []string // candidate labels, empty when the service sent none
	Blob    []byte   // decoded binary, empty when the service sent none
}

// Solution is the service's verdict on a submitted answer.
type Solution struct {
	Wins   int    // win count as reported, 0 when absent
	Hash   string // terminal hash, the last known one when absent
	Answer string // correct answer as recorded by the service, UnknownAnswer when absent
}

// challengeResponse is the body of GET /challenge. Absent fields stay nil.
type challengeResponse struct {
	Target []string `json:"target"`
	Binary *string  `json:"binary"`
}

func (r *challengeResponse) decode() (*Challenge, error) {
	var c = &Challenge{
		Targets: r.Target,
		Blob:    []byte{},
	}
	if c.Targets == nil {
		c.Targets = []string{}
	}
	if r.Binary != nil {
		blob, err := base64.StdEncoding.DecodeString(*r.Binary)
		if err != nil {
			return nil, errors.Wrap(err, "error decoding binary")
		}
		c.Blob = blob
	}
	return c, nil
}

// solveResponse is the body of POST /solve. Fields are kept raw so that a
// field of the wrong type falls back to its default instead of failing the
// whole body; only a body that is not a JSON object is rejected.
type solveResponse struct {
	Correct json.RawMessage `json:"correct"`
	Hash    json.RawMessage `json:"hash"`
	Target  json.RawMessage `json:"target"`
}

// decode substitutes defaults for absent or unusable fields. The hash is
// sticky: once learned it is kept until the service sends a new one.
func (r *solveResponse) decode(previousHash string) *Solution {
	var s = &Solution{
		Hash:   previousHash,
		Answer: UnknownAnswer,
	}
	if wins, ok := rawInt(r.Correct); ok {
		s.Wins = wins
	}
	if hash, ok := rawString(r.Hash); ok {
		s.Hash = hash
	}
	if answer, ok := rawString(r.Target); ok {
		s.Answer = answer
	}
	return s
}

// rawInt accepts an integral JSON number, written as 5, 5.0 or "5".
func rawInt(raw json.RawMessage) (int, bool) {
	if absent(raw) {
		return 0, false
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		var str string
		if err := json.Unmarshal(raw, &str); err != nil {
			return 0, false
		}
		n = json.Number(strings.TrimSpace(str))
	}
	if i, err := n.Int64(); err == nil {
		return int(i), true
	}
	f, err := n.Float64()
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) || f != math.Trunc(f) {
		return 0, false
	}
	if f > math.MaxInt32 || f < math.MinInt32 {
		return 0, false
	}
	return int(f), true
}

func rawString(raw json.RawMessage) (string, bool) {
	if absent(raw) {
		return "", false
	}
	var str string
	if err := json.Unmarshal(raw, &str); err != nil {
		return "", false
	}
	return str, true
}

// absent reports a field that was left out or sent as null.
func absent(raw json.RawMessage) bool {
	return len(raw) == 0 || string(raw) == "null"
}
