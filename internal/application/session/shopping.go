package session

import (
	"strings"

	"github.com/pantrypairing/server/internal/domain/shopping"
)

// AddToShoppingList appends item unless it is already listed. The returned
// notice is also left in the state.
func (s *Store) AddToShoppingList(item string) (bool, string, error) {
	var added bool
	var notice string
	err := s.apply("shopping.added", func() (bool, error) {
		list, ok, err := s.shopping.Add(item)
		if err != nil {
			return false, err
		}
		added = ok
		if ok {
			s.shopping = list
			notice = shopping.AddedNotice(strings.TrimSpace(item))
		} else {
			notice = shopping.NoticeDuplicate
		}
		s.notice = notice
		return true, nil
	})
	return added, notice, err
}

// RemoveFromShoppingList deletes item.
func (s *Store) RemoveFromShoppingList(item string) error {
	return s.apply("shopping.removed", func() (bool, error) {
		list, ok := s.shopping.Remove(item)
		if !ok {
			return false, shopping.ErrItemNotFound
		}
		s.shopping = list
		return true, nil
	})
}

// ShoppingList returns the list in insertion order.
func (s *Store) ShoppingList() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string{}, s.shopping...)
}

// PurchaseLink returns the marketplace search URL for item.
func (s *Store) PurchaseLink(item string) (string, error) {
	if strings.TrimSpace(item) == "" {
		return "", userError(shopping.ErrEmptyItem)
	}
	return s.config.Links.Link(item), nil
}
