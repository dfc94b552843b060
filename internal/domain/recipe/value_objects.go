package recipe

import (
	"sort"
	"strings"
)

// RecipeIngredient is one line of a recipe's ingredient list.
type RecipeIngredient struct {
	Item        string `json:"item" validate:"required"`
	Measurement string `json:"measurement" validate:"required"`
	IsMissing   bool   `json:"is_missing"`
	Note        string `json:"note,omitempty"`
}

// AlcoholPairing suggests a drink for a recipe.
type AlcoholPairing struct {
	Name   string `json:"name" validate:"required"`
	Reason string `json:"reason" validate:"required"`
}

// BookmarkStatus is the completion state of a bookmark.
type BookmarkStatus string

const (
	StatusWishlist  BookmarkStatus = "wishlist"
	StatusCompleted BookmarkStatus = "completed"
)

// Valid reports whether s is a known status.
func (s BookmarkStatus) Valid() bool {
	return s == StatusWishlist || s == StatusCompleted
}

// ParseStatus validates a raw status string.
func ParseStatus(raw string) (BookmarkStatus, error) {
	s := BookmarkStatus(strings.ToLower(strings.TrimSpace(raw)))
	if !s.Valid() {
		return "", ErrInvalidStatus
	}
	return s, nil
}

// Tags is an ordered list of unique, non-empty tags.
type Tags []string

// NewTags builds a tag list from raw input, dropping blanks and duplicates.
func NewTags(raw ...string) Tags {
	tags := Tags{}
	for _, t := range raw {
		tags, _ = tags.Add(t)
	}
	return tags
}

// Add returns the list with tag appended. Empty or already present tags leave
// the list unchanged and report false.
func (t Tags) Add(tag string) (Tags, bool) {
	tag = strings.TrimSpace(tag)
	if tag == "" || t.Contains(tag) {
		return t, false
	}
	out := make(Tags, len(t), len(t)+1)
	copy(out, t)
	return append(out, tag), true
}

// Remove returns the list without tag. Removing an absent tag is a no-op.
func (t Tags) Remove(tag string) (Tags, bool) {
	tag = strings.TrimSpace(tag)
	out := make(Tags, 0, len(t))
	removed := false
	for _, existing := range t {
		if existing == tag {
			removed = true
			continue
		}
		out = append(out, existing)
	}
	return out, removed
}

// Contains reports whether tag is present.
func (t Tags) Contains(tag string) bool {
	for _, existing := range t {
		if existing == tag {
			return true
		}
	}
	return false
}

// BookmarkedRecipe is a saved recipe. Name is the uniqueness key; ID is a
// stable handle that survives overwrites.
type BookmarkedRecipe struct {
	Recipe
	BookmarkID string         `json:"bookmark_id"`
	Status     BookmarkStatus `json:"status"`
	Tags       Tags           `json:"tags"`
	SavedAt    string         `json:"saved_at"`
}

// BookmarkFilter selects bookmarks by status and tag. Zero values match all.
type BookmarkFilter struct {
	Status BookmarkStatus
	Tag    string
}

// Matches reports whether b passes the filter.
func (f BookmarkFilter) Matches(b BookmarkedRecipe) bool {
	if f.Status != "" && b.Status != f.Status {
		return false
	}
	if f.Tag != "" && !b.Tags.Contains(f.Tag) {
		return false
	}
	return true
}

// AllTags returns the sorted union of every bookmark's tags.
func AllTags(bookmarks []BookmarkedRecipe) []string {
	seen := make(map[string]struct{})
	for _, b := range bookmarks {
		for _, t := range b.Tags {
			seen[t] = struct{}{}
		}
	}
	tags := make([]string, 0, len(seen))
	for t := range seen {
		tags = append(tags, t)
	}
	sort.Strings(tags)
	return tags
}
