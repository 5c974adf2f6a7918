package media

import (
	"context"
	"io"
	"sync"
)

// FakeMediaStore keeps stored files in memory.
type FakeMediaStore struct {
	m     sync.Mutex
	files map[string][]byte

	// When set, Store fails with this error.
	FailStore error
}

func NewFakeMediaStore() *FakeMediaStore {
	return &FakeMediaStore{files: make(map[string][]byte)}
}

func (s *FakeMediaStore) Store(ctx context.Context, key string, body io.Reader, contentType string) (string, error) {
	if s.FailStore != nil {
		return "", s.FailStore
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	s.m.Lock()
	defer s.m.Unlock()
	s.files[key] = data
	return key, nil
}

// Get returns the content stored under key.
func (s *FakeMediaStore) Get(key string) ([]byte, bool) {
	s.m.Lock()
	defer s.m.Unlock()
	data, ok := s.files[key]
	return data, ok
}

func (s *FakeMediaStore) GetUrlFromKey(key string) string {
	return "fake://" + key
}

func (s *FakeMediaStore) CleanUp() {}
