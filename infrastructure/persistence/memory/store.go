// Package memory is an in-process storage backend used for development and
// tests. It enforces the same uniqueness rules as the DynamoDB backend.
package memory

import (
	"context"
	"sort"
	"sync"

	"mindbloom-backend/application/ports"
	"mindbloom-backend/infrastructure/persistence/abstractions"
	pkgerrors "mindbloom-backend/pkg/errors"
)

// Store keeps documents of one kind in a map guarded by a mutex.
type Store[E any] struct {
	kind abstractions.Kind[E]

	mu     sync.RWMutex
	docs   map[string]E
	guards map[string]string // natural key -> id
}

// NewStore creates an empty store for kind.
func NewStore[E any](kind abstractions.Kind[E]) *Store[E] {
	return &Store[E]{
		kind:   kind,
		docs:   make(map[string]E),
		guards: make(map[string]string),
	}
}

// Create inserts doc unless its id or natural key is taken.
func (s *Store[E]) Create(_ context.Context, doc *E) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.kind.ID(doc)
	if _, exists := s.docs[id]; exists {
		return pkgerrors.NewConflictError(s.kind.Name + " " + id + " already exists")
	}
	key := s.kind.UniqueKey(doc)
	if owner, taken := s.guards[key]; key != "" && taken && owner != id {
		return s.duplicate()
	}
	s.put(id, key, doc)
	return nil
}

// Save upserts doc.
func (s *Store[E]) Save(_ context.Context, doc *E) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.kind.ID(doc)
	key := s.kind.UniqueKey(doc)
	if owner, taken := s.guards[key]; key != "" && taken && owner != id {
		return s.duplicate()
	}
	if old, exists := s.docs[id]; exists {
		if oldKey := s.kind.UniqueKey(&old); oldKey != "" && oldKey != key {
			delete(s.guards, oldKey)
		}
	}
	s.put(id, key, doc)
	return nil
}

func (s *Store[E]) put(id, key string, doc *E) {
	s.docs[id] = *doc
	if key != "" {
		s.guards[key] = id
	}
}

func (s *Store[E]) duplicate() error {
	return pkgerrors.NewConflictError("a matching " + s.kind.Name + " already exists").WithCode("DUPLICATE")
}

// Get returns a copy of the document with id.
func (s *Store[E]) Get(_ context.Context, id string) (*E, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.docs[id]
	if !ok {
		return nil, pkgerrors.NewNotFoundError(s.kind.Name)
	}
	return &doc, nil
}

// ListByOwner returns the owner's documents, newest first.
func (s *Store[E]) ListByOwner(_ context.Context, owner string) ([]*E, error) {
	return s.collect(func(doc *E) bool { return s.kind.OwnerOf(doc) == owner }), nil
}

// List returns every document of the kind, newest first.
func (s *Store[E]) List(_ context.Context) ([]*E, error) {
	return s.collect(func(*E) bool { return true }), nil
}

func (s *Store[E]) collect(match func(*E) bool) []*E {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*E, 0, len(s.docs))
	for _, doc := range s.docs {
		doc := doc
		if match(&doc) {
			out = append(out, &doc)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := s.kind.CreatedAt(out[i]), s.kind.CreatedAt(out[j])
		if !a.Equal(b) {
			return a.After(b)
		}
		return s.kind.ID(out[i]) > s.kind.ID(out[j])
	})
	return out
}

// Delete removes the document with id and releases its natural key.
func (s *Store[E]) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.docs[id]
	if !ok {
		return pkgerrors.NewNotFoundError(s.kind.Name)
	}
	if key := s.kind.UniqueKey(&doc); key != "" && s.guards[key] == id {
		delete(s.guards, key)
	}
	delete(s.docs, id)
	return nil
}

// NewRepositories returns empty in-memory repositories for every kind.
func NewRepositories() *ports.Repositories {
	return abstractions.Repositories(abstractions.Stores{
		Users:      NewStore(abstractions.UserKind),
		Patients:   NewStore(abstractions.PatientKind),
		Caregivers: NewStore(abstractions.CaregiverKind),
		Journals:   NewStore(abstractions.JournalKind),
		Memories:   NewStore(abstractions.MemoryKind),
		Calendar:   NewStore(abstractions.CalendarKind),
		Flows:      NewStore(abstractions.FlowKind),
		Interviews: NewStore(abstractions.InterviewKind),
		Chats:      NewStore(abstractions.ChatKind),
		Analyses:   NewStore(abstractions.AnalysisKind),
		Media:      NewStore(abstractions.MediaKind),
	})
}
