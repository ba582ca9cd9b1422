package memory

import (
	"context"
	"slices"
	"sync"
)

// FriendshipsStore keeps one directed adjacency list per user. A friendship is a pair of
// directed edges; keeping them paired is the caller's job.
type FriendshipsStore struct {
	mu  sync.RWMutex
	adj map[string][]string
}

func NewFriendshipsStore() *FriendshipsStore {
	return &FriendshipsStore{adj: make(map[string][]string)}
}

// Insert adds the directed edge from → to and reports whether it was new.
func (s *FriendshipsStore) Insert(_ context.Context, from, to string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if slices.Contains(s.adj[from], to) {
		return false, nil
	}
	s.adj[from] = append(s.adj[from], to)
	return true, nil
}

// Remove deletes the directed edge from → to and reports whether it existed.
func (s *FriendshipsStore) Remove(_ context.Context, from, to string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.adj[from]
	i := slices.Index(list, to)
	if i < 0 {
		return false, nil
	}
	s.adj[from] = slices.Delete(list, i, i+1)
	return true, nil
}

func (s *FriendshipsStore) Has(_ context.Context, from, to string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Contains(s.adj[from], to), nil
}

// List returns the targets of userID's edges in insertion order.
func (s *FriendshipsStore) List(_ context.Context, userID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.adj[userID]), nil
}
