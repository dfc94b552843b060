package session

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/pantrypairing/server/internal/domain/pantry"
)

// CheckExpirations re-evaluates the pantry against today's date and returns
// the open warning, if any.
func (s *Store) CheckExpirations() *ExpiryWarning {
	_ = s.apply("expiry.checked", func() (bool, error) {
		return s.evaluateExpiry(), nil
	})
	return s.ExpiryWarning()
}

// ExpiryWarning returns the open warning, or nil.
func (s *Store) ExpiryWarning() *ExpiryWarning {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.expiry == nil || !s.expiry.Open {
		return nil
	}
	return s.expiry.clone()
}

// ExpiringItems returns the items of the current warning, open or
// dismissed.
func (s *Store) ExpiringItems() []ExpiringItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.expiry == nil {
		return nil
	}
	return s.expiry.clone().Items
}

// DismissExpiryWarning closes the warning. The same set of expiring items
// will not raise it again in this session.
func (s *Store) DismissExpiryWarning() {
	_ = s.apply("expiry.dismissed", func() (bool, error) {
		if s.expiry == nil || !s.expiry.Open {
			return false, nil
		}
		s.expiry.Open = false
		return true, nil
	})
}

// evaluateExpiry must be called with the lock held. It reports whether the
// warning changed. The warning always lists the currently expiring items;
// only raising it is limited to sets not yet warned in this session.
func (s *Store) evaluateExpiry() bool {
	today := s.today()
	var items []ExpiringItem
	for _, item := range s.pantry {
		days, ok := pantry.DaysUntil(item.ExpirationDate, today)
		if !ok || days > s.config.ExpiryThresholdDays {
			continue
		}
		items = append(items, ExpiringItem{IngredientDetail: item, DaysLeft: days})
	}

	if len(items) == 0 {
		if s.expiry == nil {
			return false
		}
		s.expiry = nil
		return true
	}

	signature := expirySignature(items)
	if _, warned := s.warned[signature]; warned {
		if s.expiry != nil && s.expiry.Signature == signature {
			return false
		}
		open := s.expiry != nil && s.expiry.Open
		s.expiry = &ExpiryWarning{Items: items, Signature: signature, Open: open}
		return true
	}
	s.warned[signature] = struct{}{}
	s.expiry = &ExpiryWarning{Items: items, Signature: signature, Open: true}
	s.logger.Info("Expiry warning raised", zap.Int("items", len(items)), zap.String("signature", signature[:12]))
	return true
}

func expirySignature(items []ExpiringItem) string {
	keys := make([]string, len(items))
	for i, item := range items {
		keys[i] = item.ID + "|" + item.ExpirationDate
	}
	sort.Strings(keys)
	sum := sha256.Sum256([]byte(strings.Join(keys, "\n")))
	return hex.EncodeToString(sum[:])
}
