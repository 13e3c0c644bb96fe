// Package tagging provides the shared key/value tag store used by every
// service backend. Tags are kept per resource identifier in insertion order.
package tagging

import "sync"

// Tag is one key/value pair attached to a resource.
type Tag struct {
	Key   string `json:"Key"`
	Value string `json:"Value"`
}

// Store maps a resource identifier (typically an ARN) to its ordered tag
// list. One Store instance is owned by one service backend; it is not shared
// across backends. Entries are not removed automatically when a resource is
// deleted — the owning backend calls DeleteAll explicitly.
type Store struct {
	mu   sync.Mutex
	tags map[string][]Tag
}

// NewStore creates an empty tag store.
func NewStore() *Store {
	return &Store{tags: make(map[string][]Tag)}
}

// Tag attaches tags to a resource. A tag whose key is already present has its
// value updated in place; new keys are appended, preserving insertion order.
func (s *Store) Tag(resourceID string, tags []Tag) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing := s.tags[resourceID]
	for _, tag := range tags {
		replaced := false
		for i := range existing {
			if existing[i].Key == tag.Key {
				existing[i].Value = tag.Value
				replaced = true
				break
			}
		}
		if !replaced {
			existing = append(existing, tag)
		}
	}
	s.tags[resourceID] = existing
}

// Untag removes only the named keys from a resource. Unknown keys are ignored.
func (s *Store) Untag(resourceID string, keys []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing := s.tags[resourceID]
	if len(existing) == 0 {
		return
	}

	remove := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		remove[k] = struct{}{}
	}

	kept := existing[:0]
	for _, tag := range existing {
		if _, drop := remove[tag.Key]; !drop {
			kept = append(kept, tag)
		}
	}
	s.tags[resourceID] = kept
}

// List returns the tags attached to a resource. A resource with no tags
// yields an empty, non-nil slice.
func (s *Store) List(resourceID string) []Tag {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Tag, len(s.tags[resourceID]))
	copy(out, s.tags[resourceID])
	return out
}

// DeleteAll drops every tag for a resource. Called by backends when the
// owning resource is deleted.
func (s *Store) DeleteAll(resourceID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tags, resourceID)
}
