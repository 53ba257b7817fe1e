// Package lookup implements member directory search for member_lookup
// fields: a minimum-length query guard, a cap on returned results, and a
// sequence guard that drops stale responses when a newer query has been
// issued.
package lookup

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

const (
	// MinQueryLen is the minimum number of runes before the directory is
	// consulted; shorter queries clear results without a call.
	MinQueryLen = 2

	// MaxResults caps how many members one query returns.
	MaxResults = 10
)

// Member is one directory entry. ID is the stable identifier stored as the
// field's encoded value; FullName is what a surface displays.
type Member struct {
	ID       string `json:"id"`
	FullName string `json:"full_name"`
	Rank     string `json:"rank,omitempty"`
}

// Directory is the injected search collaborator.
type Directory interface {
	SearchMembers(ctx context.Context, query string, limit int) ([]Member, error)
}

// Searcher serializes result publication for one lookup field. Each query
// gets a monotonically increasing sequence number; a response whose
// sequence is older than the newest issued query is discarded, so a slow
// early request can never overwrite a newer result set.
type Searcher struct {
	dir Directory

	mu      sync.Mutex
	seq     uint64
	results []Member
}

// NewSearcher wraps a directory.
func NewSearcher(dir Directory) *Searcher {
	return &Searcher{dir: dir}
}

// Search issues one query keystroke. It returns the result set that is
// current after this call completes, which may belong to a newer query if
// this one was superseded while in flight.
func (s *Searcher) Search(ctx context.Context, query string) ([]Member, error) {
	query = strings.TrimSpace(query)

	s.mu.Lock()
	s.seq++
	seq := s.seq
	if len([]rune(query)) < MinQueryLen {
		s.results = nil
		s.mu.Unlock()
		return nil, nil
	}
	s.mu.Unlock()

	members, err := s.dir.SearchMembers(ctx, query, MaxResults)
	if err != nil {
		return s.Results(), fmt.Errorf("member lookup %q: %w", query, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if seq == s.seq {
		s.results = members
	}
	return snapshot(s.results), nil
}

// Results returns the currently published result set.
func (s *Searcher) Results() []Member {
	s.mu.Lock()
	defer s.mu.Unlock()
	return snapshot(s.results)
}

func snapshot(members []Member) []Member {
	out := make([]Member, len(members))
	copy(out, members)
	return out
}
