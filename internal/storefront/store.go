package storefront

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/Skotchmaster/nexus_market/internal/models"
)

// Store serializes dispatches and writes the session, theme and cart to
// Storage as soon as they change.
type Store struct {
	mu      sync.Mutex
	state   State
	storage Storage
}

func NewStore(storage Storage) *Store {
	if storage == nil {
		storage = NewMemoryStorage()
	}
	return &Store{state: Initial(), storage: storage}
}

func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Load restores persisted fields. A corrupt entry is dropped rather than
// failing the whole load.
func (s *Store) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var errs []error

	if raw, ok, err := s.storage.Get(KeyUser); err != nil {
		return err
	} else if ok {
		var u models.SessionUser
		if err := json.Unmarshal([]byte(raw), &u); err != nil {
			errs = append(errs, fmt.Errorf("saved user: %w", err))
		} else {
			token, _, err := s.storage.Get(KeyToken)
			if err != nil {
				return err
			}
			s.state = Reduce(s.state, LoggedIn{User: u, Token: token})
		}
	}

	if raw, ok, err := s.storage.Get(KeyDarkMode); err != nil {
		return err
	} else if ok {
		s.state.DarkMode, _ = strconv.ParseBool(raw)
	}

	if raw, ok, err := s.storage.Get(KeyCart); err != nil {
		return err
	} else if ok {
		var cart []models.CartItem
		if err := json.Unmarshal([]byte(raw), &cart); err != nil {
			errs = append(errs, fmt.Errorf("saved cart: %w", err))
		} else {
			s.state = Reduce(s.state, CartRestored{Cart: cart})
		}
	}

	return errors.Join(errs...)
}

// Dispatch applies a and persists what it touched. The in-memory state moves
// on even when persistence fails; the error is returned for the caller to
// report.
func (s *Store) Dispatch(a Action) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = Reduce(s.state, a)

	var err error
	switch a.(type) {
	case LoggedIn, LoggedOut:
		err = s.persistSession()
	case ThemeToggled:
		err = s.storage.Set(KeyDarkMode, strconv.FormatBool(s.state.DarkMode))
	case AddedToCart, QuantityChanged, RemovedFromCart, CartRestored:
		err = s.persistCart()
	}
	return s.state, err
}

func (s *Store) persistSession() error {
	if s.state.Session == nil {
		return errors.Join(s.storage.Remove(KeyUser), s.storage.Remove(KeyToken))
	}
	b, err := json.Marshal(s.state.Session)
	if err != nil {
		return err
	}
	if err := s.storage.Set(KeyUser, string(b)); err != nil {
		return err
	}
	if s.state.Token == "" {
		return s.storage.Remove(KeyToken)
	}
	return s.storage.Set(KeyToken, s.state.Token)
}

func (s *Store) persistCart() error {
	cart := s.state.Cart
	if cart == nil {
		cart = []models.CartItem{}
	}
	b, err := json.Marshal(cart)
	if err != nil {
		return err
	}
	return s.storage.Set(KeyCart, string(b))
}
