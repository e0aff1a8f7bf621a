package llm

import (
	"fmt"
	"sync"
)

type document struct {
	name    string
	content string
}

// documentStore holds grounding documents shared by all providers.
type documentStore struct {
	mu     sync.RWMutex
	docs   map[string]document
	active string
}

func newDocumentStore() *documentStore {
	return &documentStore{docs: make(map[string]document)}
}

func (s *documentStore) RegisterDocument(id, name, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.docs[id] = document{name: name, content: content}
}

func (s *documentStore) UseDocument(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.active = id
}

// groundedSystemPrompt appends the active document, if any, to the system
// prompt so replies stay anchored to the registered dataset.
func (s *documentStore) groundedSystemPrompt(system string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.docs[s.active]
	if !ok {
		return system
	}

	grounding := fmt.Sprintf(
		"Reference document %q. Ground factual claims about specific places in it:\n\n%s",
		doc.name, doc.content,
	)

	if system == "" {
		return grounding
	}

	return system + "\n\n" + grounding
}
