package rounds

import (
	"github.com/google/uuid"
)

// Session is the state carried across rounds. Only the controller mutates it.
type Session struct {
	Blob    []byte
	Targets []string
	Wins    int
	Best    int // highest win count the service has reported
	Hash    string
	Rounds  int
}

// Round is one fetch, predict and submit cycle.
type Round struct {
	ID      uuid.UUID
	Number  int
	Targets []string
	Blob    []byte
	Guess   string
	Answer  string
	Wins    int
	Hash    string
}

// Correct reports whether the service recorded the guess as the answer.
func (r *Round) Correct() bool {
	return r.Guess == r.Answer
}

func (s *Session) record(r *Round) {
	s.Blob = r.Blob
	s.Targets = r.Targets
	s.Wins = r.Wins
	if r.Wins > s.Best {
		s.Best = r.Wins
	}
	s.Hash = r.Hash
	s.Rounds++
}
