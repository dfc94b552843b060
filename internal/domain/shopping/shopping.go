// Package shopping holds the shopping list and marketplace link rules.
package shopping

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// DefaultSearchURL is the marketplace search page items link to.
const DefaultSearchURL = "https://www.coupang.com/np/search?rocketAll=false"

var (
	ErrEmptyItem    = errors.New("재료명을 입력해주세요.")
	ErrItemNotFound = errors.New("장바구니에 없는 재료입니다.")
)

// Notices shown after an add attempt.
const NoticeDuplicate = "이미 장바구니에 있는 재료입니다."

// AddedNotice is the notice shown after item was added.
func AddedNotice(item string) string {
	return fmt.Sprintf("%s이(가) 장바구니에 추가되었습니다.", item)
}

// List is an ordered list of unique item names. Entries are stored trimmed,
// so the trimmed name is the uniqueness key: " 우유" and "우유" are the same
// entry, "Milk" and "milk" are not.
type List []string

// Add appends the trimmed item unless an identical entry exists. Matching is
// exact and case-sensitive on the normalized name.
func (l List) Add(item string) (List, bool, error) {
	item = strings.TrimSpace(item)
	if item == "" {
		return l, false, ErrEmptyItem
	}
	if l.Contains(item) {
		return l, false, nil
	}
	out := make(List, len(l), len(l)+1)
	copy(out, l)
	return append(out, item), true, nil
}

// Remove deletes item, reporting whether it was present.
func (l List) Remove(item string) (List, bool) {
	item = strings.TrimSpace(item)
	out := make(List, 0, len(l))
	removed := false
	for _, existing := range l {
		if existing == item {
			removed = true
			continue
		}
		out = append(out, existing)
	}
	return out, removed
}

// Contains reports whether item is on the list.
func (l List) Contains(item string) bool {
	for _, existing := range l {
		if existing == item {
			return true
		}
	}
	return false
}

// LinkBuilder renders marketplace search links.
type LinkBuilder struct {
	base *url.URL
}

// NewLinkBuilder parses the search URL. The item is added as the q parameter,
// keeping any query parameters already present.
func NewLinkBuilder(searchURL string) (*LinkBuilder, error) {
	if searchURL == "" {
		searchURL = DefaultSearchURL
	}
	u, err := url.Parse(searchURL)
	if err != nil {
		return nil, fmt.Errorf("invalid search url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid search url %q: scheme and host required", searchURL)
	}
	return &LinkBuilder{base: u}, nil
}

// Link returns the search URL for item.
func (b *LinkBuilder) Link(item string) string {
	u := *b.base
	q := u.Query()
	q.Set("q", strings.TrimSpace(item))
	u.RawQuery = q.Encode()
	return u.String()
}
