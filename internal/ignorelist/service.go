// Package ignorelist manages owner-scoped custom dictionaries fed into
// grammar checks.
package ignorelist

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/veritext/veritext/internal/apperr"
	"github.com/veritext/veritext/internal/models"
	"github.com/veritext/veritext/internal/store"
)

// Service provides CRUD over ignore-word lists with owner checks. Mutations
// require ownership; reads of foreign lists are allowed only when the list is
// public.
type Service struct {
	db store.Store
}

// NewService creates a new ignore-list service.
func NewService(db store.Store) *Service {
	return &Service{db: db}
}

// Create stores a new list for the owner.
func (s *Service) Create(ownerID, name, words string, isPublic bool) (*models.IgnoreWordList, error) {
	if ownerID == "" {
		return nil, apperr.ErrValidation
	}
	now := time.Now().UTC()
	l := &models.IgnoreWordList{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		Name:      name,
		Words:     words,
		IsPublic:  isPublic,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.db.InsertIgnoreList(l); err != nil {
		return nil, err
	}
	return l, nil
}

// Get returns a list readable by the caller: their own, or any public list.
func (s *Service) Get(callerID, listID string) (*models.IgnoreWordList, error) {
	l, err := s.db.GetIgnoreList(listID)
	if err != nil {
		return nil, err
	}
	if l.OwnerID != callerID && !l.IsPublic {
		return nil, apperr.ErrForbidden
	}
	return l, nil
}

// ListByOwner returns the caller's lists, newest first.
func (s *Service) ListByOwner(ownerID string) ([]models.IgnoreWordList, error) {
	return s.db.ListIgnoreListsByOwner(ownerID)
}

// Update rewrites a list's name and words. Only the owner may update.
func (s *Service) Update(callerID, listID, name, words string) (*models.IgnoreWordList, error) {
	l, err := s.ownedList(callerID, listID)
	if err != nil {
		return nil, err
	}
	l.Name = name
	l.Words = words
	if err := s.db.UpdateIgnoreList(l); err != nil {
		return nil, err
	}
	return l, nil
}

// SetPublic toggles the visibility flag. Only the owner may change it.
func (s *Service) SetPublic(callerID, listID string, isPublic bool) error {
	l, err := s.ownedList(callerID, listID)
	if err != nil {
		return err
	}
	l.IsPublic = isPublic
	return s.db.UpdateIgnoreList(l)
}

// Delete removes a list. Only the owner may delete.
func (s *Service) Delete(callerID, listID string) error {
	if _, err := s.ownedList(callerID, listID); err != nil {
		return err
	}
	return s.db.DeleteIgnoreList(listID)
}

// ResolveWords returns the list's tokens split on commas, trimmed, with
// empties dropped and duplicates removed in first-seen order.
func (s *Service) ResolveWords(listID string) ([]string, error) {
	l, err := s.db.GetIgnoreList(listID)
	if err != nil {
		return nil, err
	}
	return SplitWords(l.Words), nil
}

// SplitWords normalizes a comma-delimited token string.
func SplitWords(words string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, w := range strings.Split(words, ",") {
		token := strings.TrimSpace(w)
		if token == "" {
			continue
		}
		if _, dup := seen[token]; dup {
			continue
		}
		seen[token] = struct{}{}
		out = append(out, token)
	}
	return out
}

func (s *Service) ownedList(callerID, listID string) (*models.IgnoreWordList, error) {
	l, err := s.db.GetIgnoreList(listID)
	if err != nil {
		return nil, err
	}
	if l.OwnerID != callerID {
		return nil, apperr.ErrForbidden
	}
	return l, nil
}
