package uuid

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// UUID generates identifiers for participants, bots and narration entries
type UUID interface {
	NewUUID() string
}

// DefaultUUID implements the UUID interface using the uuid package
type DefaultUUID struct{}

func New() *DefaultUUID {
	return &DefaultUUID{}
}

// NewUUID returns a new UUID
func (d *DefaultUUID) NewUUID() string {
	return uuid.New().String()
}

// Sequence hands out predictable ids ("<prefix>-1", "<prefix>-2", ...).
type Sequence struct {
	Prefix string

	mu   sync.Mutex
	next int
}

// NewUUID returns the next id in the sequence
func (s *Sequence) NewUUID() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.next++
	return fmt.Sprintf("%s-%d", s.Prefix, s.next)
}
