// Package session keeps the identity roster and the one identity currently
// signed in, both persisted independently.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ariefcatur/go-storefront/internal/jsonid"
	"github.com/ariefcatur/go-storefront/internal/storage"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var ErrNotAuthenticated = errors.New("not signed in")

type Backend interface {
	ListUsers(ctx context.Context) ([]Identity, error)
	UpdateUser(ctx context.Context, id jsonid.ID, upd ProfileUpdate) (Identity, error)
}

type Store struct {
	local   storage.Storage
	backend Backend
	log     *zap.Logger
	newID   func() string

	mu      sync.RWMutex
	roster  []Identity
	current *Identity
}

// Open restores the roster (seeding the demo accounts when none is stored)
// and the current identity.
func Open(ctx context.Context, local storage.Storage, backend Backend, log *zap.Logger) (*Store, error) {
	s := &Store{local: local, backend: backend, log: log, newID: uuid.NewString}

	ok, err := storage.Load(ctx, local, storage.KeyUsers, &s.roster)
	if err != nil {
		return nil, err
	}
	if !ok {
		s.roster = demoRoster()
		if err := storage.Save(ctx, local, storage.KeyUsers, s.roster); err != nil {
			return nil, err
		}
	}

	var cur Identity
	ok, err = storage.Load(ctx, local, storage.KeyCurrentUser, &cur)
	if err != nil {
		return nil, err
	}
	if ok {
		s.current = &cur
	}
	return s, nil
}

// Login scans the roster for an exact username and password match. On a
// miss the roster is synced from the backend and scanned again. A miss is
// reported as ok=false; err is only set when the session cannot be persisted.
func (s *Store) Login(ctx context.Context, username, password string) (Identity, bool, error) {
	id, ok, err := s.login(ctx, username, password)
	if ok || err != nil {
		return id, ok, err
	}
	added, err := s.SyncRoster(ctx)
	if err != nil {
		s.log.Warn("roster sync failed", zap.Error(err))
		return Identity{}, false, nil
	}
	if added == 0 {
		return Identity{}, false, nil
	}
	return s.login(ctx, username, password)
}

func (s *Store) login(ctx context.Context, username, password string) (Identity, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range s.roster {
		if id.Username == username && id.Password == password {
			if err := s.setCurrent(ctx, id); err != nil {
				return Identity{}, false, err
			}
			s.log.Info("signed in", zap.String("user_id", id.ID.String()), zap.String("role", string(id.Role)))
			return id, true, nil
		}
	}
	return Identity{}, false, nil
}

// Register validates the form, rejects a taken username or email, appends
// the new account to the roster and signs it in. Backend accounts are synced
// first so they count as taken. When the sign-in cannot be persisted the
// roster is left as it was.
func (s *Store) Register(ctx context.Context, form RegistrationForm) (Identity, error) {
	if err := form.Validate(); err != nil {
		return Identity{}, err
	}
	if _, err := s.SyncRoster(ctx); err != nil {
		s.log.Warn("roster sync failed", zap.Error(err))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range s.roster {
		if id.Username == form.Username {
			return Identity{}, &RegistrationError{Reason: ReasonUsernameExists}
		}
	}
	for _, id := range s.roster {
		if id.Email == form.Email {
			return Identity{}, &RegistrationError{Reason: ReasonEmailExists}
		}
	}

	id := Identity{
		ID:       jsonid.ID(s.newID()),
		Username: form.Username,
		Password: form.Password,
		Role:     RoleUser,
		Email:    form.Email,
		Name:     form.Name,
		Address:  form.Address,
		Phone:    form.Phone,
	}
	roster := append(append([]Identity(nil), s.roster...), id)
	if err := storage.Save(ctx, s.local, storage.KeyUsers, roster); err != nil {
		return Identity{}, err
	}
	if err := s.setCurrent(ctx, id); err != nil {
		if rerr := storage.Save(ctx, s.local, storage.KeyUsers, s.roster); rerr != nil {
			s.log.Error("roster rollback failed", zap.String("username", id.Username), zap.Error(rerr))
		}
		return Identity{}, err
	}
	s.roster = roster
	s.log.Info("registered", zap.String("user_id", id.ID.String()))
	return id, nil
}

// Logout clears the current identity; the roster is untouched.
func (s *Store) Logout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.local.Delete(ctx, storage.KeyCurrentUser); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	s.current = nil
	return nil
}

func (s *Store) Current() (Identity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return Identity{}, false
	}
	return *s.current, true
}

func (s *Store) IsAuthenticated() bool {
	_, ok := s.Current()
	return ok
}

func (s *Store) IsAdmin() bool {
	id, ok := s.Current()
	return ok && id.IsAdmin()
}

func (s *Store) Roster() []Identity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Identity(nil), s.roster...)
}

// UpdateProfile sends the edit to the backend and adopts the confirmed
// record as the current identity and its roster entry.
func (s *Store) UpdateProfile(ctx context.Context, upd ProfileUpdate) (Identity, error) {
	if err := upd.Validate(); err != nil {
		return Identity{}, err
	}
	cur, ok := s.Current()
	if !ok {
		return Identity{}, ErrNotAuthenticated
	}
	confirmed, err := s.backend.UpdateUser(ctx, cur.ID, upd)
	if err != nil {
		return Identity{}, fmt.Errorf("update profile: %w", err)
	}

	next := cur
	next.Name = confirmed.Name
	next.Email = confirmed.Email
	next.Address = confirmed.Address
	next.Phone = confirmed.Phone

	s.mu.Lock()
	defer s.mu.Unlock()
	roster := append([]Identity(nil), s.roster...)
	for i := range roster {
		if roster[i].ID == next.ID {
			roster[i] = next
		}
	}
	if err := storage.Save(ctx, s.local, storage.KeyUsers, roster); err != nil {
		return Identity{}, err
	}
	s.roster = roster
	if err := s.setCurrent(ctx, next); err != nil {
		return Identity{}, err
	}
	return next, nil
}

// SyncRoster adds backend accounts whose username is not yet in the local
// roster.
func (s *Store) SyncRoster(ctx context.Context) (int, error) {
	remote, err := s.backend.ListUsers(ctx)
	if err != nil {
		return 0, fmt.Errorf("fetch users: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	known := make(map[string]bool, len(s.roster))
	for _, id := range s.roster {
		known[id.Username] = true
	}
	roster := append([]Identity(nil), s.roster...)
	added := 0
	for _, id := range remote {
		if id.Username == "" || known[id.Username] {
			continue
		}
		known[id.Username] = true
		roster = append(roster, id)
		added++
	}
	if added == 0 {
		return 0, nil
	}
	if err := storage.Save(ctx, s.local, storage.KeyUsers, roster); err != nil {
		return 0, err
	}
	s.roster = roster
	s.log.Info("roster synced", zap.Int("added", added))
	return added, nil
}

func (s *Store) setCurrent(ctx context.Context, id Identity) error {
	if err := storage.Save(ctx, s.local, storage.KeyCurrentUser, id); err != nil {
		return err
	}
	s.current = &id
	return nil
}
