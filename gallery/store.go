package gallery

import "github.com/Gaurav-Gosain/websearch/search"

// Entry is a result together with its position in the rendered list.
type Entry struct {
	Index  int
	Result search.Result
}

// ID is the entry's stable identity.
func (e Entry) ID() string { return e.Result.ID }

func entryID(e Entry) string { return e.ID() }

// Entries indexes c's results in order, dropping any result whose id has
// already been seen. Skipped duplicates do not consume an index.
func Entries(c *search.Collection) []Entry {
	if c == nil {
		return nil
	}
	seen := make(map[string]struct{}, len(c.Results))
	entries := make([]Entry, 0, len(c.Results))
	for _, r := range c.Results {
		if _, dup := seen[r.ID]; dup {
			continue
		}
		seen[r.ID] = struct{}{}
		entries = append(entries, Entry{Index: len(entries), Result: r})
	}
	return entries
}

// Store holds the collection handed in from outside and the processed
// collection that later pages are appended to.
type Store struct {
	external  *search.Collection
	processed *search.Collection
}

// Set replaces both collections with c. It reports false, and does nothing,
// when c equals the current external collection.
func (s *Store) Set(c *search.Collection) bool {
	if s.external.Equal(c) {
		return false
	}
	s.external = c
	s.processed = c
	return true
}

// Append adds next's results after the processed ones and returns the
// updated collection.
func (s *Store) Append(next *search.Collection) *search.Collection {
	if s.processed == nil {
		s.processed = next
		return next
	}
	s.processed = s.processed.Append(next)
	return s.processed
}

// Current returns the processed collection.
func (s *Store) Current() *search.Collection { return s.processed }
