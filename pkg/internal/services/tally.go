package services

import (
	"strconv"
	"sync"
	"time"

	"gorm.io/datatypes"
)

// TallyTTL is how long a space's in-flight votes are kept after the
// last write, unless a moderator clears them earlier.
const TallyTTL = 3600 * time.Second

// TallySheet maps ticket ID to the choices recorded per voter.
type TallySheet map[uint]map[string]int

// Averages computes the arithmetic mean of the recorded choices per
// ticket. Tickets with zero votes are omitted entirely, so the result
// never contains a division by zero.
func (s TallySheet) Averages() map[uint]float64 {
	avgs := make(map[uint]float64)
	for ticket, votes := range s {
		if len(votes) == 0 {
			continue
		}
		var sum int
		for _, choice := range votes {
			sum += choice
		}
		avgs[ticket] = float64(sum) / float64(len(votes))
	}
	return avgs
}

// WithAverages builds the externally visible tally view: the votes per
// ticket plus a reserved "averages" entry. Ticket IDs become decimal
// string keys since the document is persisted as JSON. The average may
// not land on a supported estimation number; assigning the final value
// is up to the moderator.
func (s TallySheet) WithAverages() datatypes.JSONMap {
	doc := datatypes.JSONMap{}
	for ticket, votes := range s {
		entry := make(map[string]any, len(votes))
		for voter, choice := range votes {
			entry[voter] = choice
		}
		doc[strconv.FormatUint(uint64(ticket), 10)] = entry
	}

	avgs := map[string]any{}
	for ticket, avg := range s.Averages() {
		avgs[strconv.FormatUint(uint64(ticket), 10)] = avg
	}
	doc["averages"] = avgs

	return doc
}

type spaceTally struct {
	mu       sync.Mutex
	votes    TallySheet
	deadline time.Time
}

// TallyStore holds the in-flight votes of every space, keyed by space
// slug. Entries live for TallyTTL from the last write and are expired
// passively on read; the hourly Sweep reclaims memory for spaces
// nobody reads again.
type TallyStore struct {
	mu     sync.Mutex
	spaces map[string]*spaceTally

	nowFn func() time.Time
}

func NewTallyStore() *TallyStore {
	return &TallyStore{
		spaces: make(map[string]*spaceTally),
		nowFn:  time.Now,
	}
}

func (s *TallyStore) space(slug string) *spaceTally {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.spaces[slug]
	if !ok {
		entry = &spaceTally{votes: TallySheet{}}
		s.spaces[slug] = entry
	}
	return entry
}

// RecordVote writes one voter's choice for a ticket, overwriting any
// earlier choice for the same (ticket, voter) pair, and resets the
// space's expiry window.
func (s *TallyStore) RecordVote(slug string, ticket uint, voter string, choice int) {
	now := s.nowFn()
	entry := s.space(slug)

	entry.mu.Lock()
	defer entry.mu.Unlock()

	if now.After(entry.deadline) {
		entry.votes = TallySheet{}
	}
	if _, ok := entry.votes[ticket]; !ok {
		entry.votes[ticket] = make(map[string]int)
	}
	entry.votes[ticket][voter] = choice
	entry.deadline = now.Add(TallyTTL)
}

// ReadVotes returns a copy of the space's current tally. A space with
// no live entry, expired or never written, reads as an empty sheet.
func (s *TallyStore) ReadVotes(slug string) TallySheet {
	s.mu.Lock()
	entry, ok := s.spaces[slug]
	s.mu.Unlock()
	if !ok {
		return TallySheet{}
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	if s.nowFn().After(entry.deadline) {
		return TallySheet{}
	}

	sheet := make(TallySheet, len(entry.votes))
	for ticket, votes := range entry.votes {
		copied := make(map[string]int, len(votes))
		for voter, choice := range votes {
			copied[voter] = choice
		}
		sheet[ticket] = copied
	}
	return sheet
}

// Clear drops all tallies for a space immediately. Idempotent; used by
// the moderator's refresh-cache action.
func (s *TallyStore) Clear(slug string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.spaces, slug)
}

// Sweep removes expired spaces and reports how many were dropped.
func (s *TallyStore) Sweep() int {
	now := s.nowFn()

	s.mu.Lock()
	defer s.mu.Unlock()

	var dropped int
	for slug, entry := range s.spaces {
		entry.mu.Lock()
		expired := now.After(entry.deadline)
		entry.mu.Unlock()
		if expired {
			delete(s.spaces, slug)
			dropped++
		}
	}
	return dropped
}
