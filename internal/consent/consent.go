// Package consent stores the visitor's cookie-consent choice.
package consent

import (
	"context"
	"fmt"
	"sync"

	"github.com/ariefcatur/go-storefront/internal/storage"
)

type Choice string

const (
	Accepted Choice = "accepted"
	Declined Choice = "declined"
)

func ParseChoice(s string) (Choice, error) {
	switch c := Choice(s); c {
	case Accepted, Declined:
		return c, nil
	}
	return "", fmt.Errorf("unknown consent choice %q", s)
}

type Store struct {
	local storage.Storage

	mu     sync.RWMutex
	choice Choice
}

func Open(ctx context.Context, local storage.Storage) (*Store, error) {
	s := &Store{local: local}
	if _, err := storage.Load(ctx, local, storage.KeyCookieConsent, &s.choice); err != nil {
		return nil, err
	}
	return s, nil
}

// Choice returns the stored choice; ok is false until the visitor chose.
func (s *Store) Choice() (Choice, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.choice, s.choice != ""
}

func (s *Store) Set(ctx context.Context, c Choice) error {
	if _, err := ParseChoice(string(c)); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := storage.Save(ctx, s.local, storage.KeyCookieConsent, c); err != nil {
		return err
	}
	s.choice = c
	return nil
}
