package session

import (
	"strings"

	"github.com/google/uuid"

	"github.com/pantrypairing/server/internal/domain/pantry"
	"github.com/pantrypairing/server/internal/domain/recipe"
)

// ToggleBookmark opens a draft for an unsaved recipe. For a recipe that is
// already bookmarked nothing changes; the caller confirms removal instead.
func (s *Store) ToggleBookmark(r recipe.Recipe) (ToggleResult, error) {
	var result ToggleResult
	err := s.apply("bookmark.draft_opened", func() (bool, error) {
		name := strings.TrimSpace(r.Name)
		if name == "" {
			return false, recipe.ErrEmptyRecipeName
		}
		if i := s.findBookmarkByName(name); i >= 0 {
			b := cloneBookmark(s.bookmarks[i])
			result = ToggleResult{Outcome: OutcomeConfirmRemoval, BookmarkID: b.BookmarkID, Bookmark: &b}
			return false, nil
		}
		r = r.Clone()
		r.Name = name
		s.draft = &BookmarkDraft{Recipe: r, Status: recipe.StatusWishlist, Tags: recipe.Tags{}}
		result = ToggleResult{Outcome: OutcomeDraftOpened, Draft: s.draft.clone()}
		return true, nil
	})
	return result, err
}

// EditBookmark opens a draft holding the bookmark's current status and tags.
func (s *Store) EditBookmark(id string) (*BookmarkDraft, error) {
	var draft *BookmarkDraft
	err := s.apply("bookmark.draft_opened", func() (bool, error) {
		i := s.findBookmark(id)
		if i < 0 {
			return false, recipe.ErrBookmarkNotFound
		}
		b := cloneBookmark(s.bookmarks[i])
		s.draft = &BookmarkDraft{Recipe: b.Recipe, BookmarkID: b.BookmarkID, Status: b.Status, Tags: b.Tags}
		draft = s.draft.clone()
		return true, nil
	})
	return draft, err
}

// Draft returns the open bookmark draft, or nil.
func (s *Store) Draft() *BookmarkDraft {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft.clone()
}

// SetDraftStatus changes the status in the open draft.
func (s *Store) SetDraftStatus(raw string) error {
	return s.apply("bookmark.draft_updated", func() (bool, error) {
		if s.draft == nil {
			return false, recipe.ErrNoDraft
		}
		status, err := recipe.ParseStatus(raw)
		if err != nil {
			return false, err
		}
		if status == s.draft.Status {
			return false, nil
		}
		s.draft.Status = status
		return true, nil
	})
}

// AddDraftTag adds a tag to the open draft.
func (s *Store) AddDraftTag(tag string) (bool, error) {
	var added bool
	err := s.apply("bookmark.draft_updated", func() (bool, error) {
		if s.draft == nil {
			return false, recipe.ErrNoDraft
		}
		s.draft.Tags, added = s.draft.Tags.Add(tag)
		return added, nil
	})
	return added, err
}

// RemoveDraftTag removes a tag from the open draft.
func (s *Store) RemoveDraftTag(tag string) (bool, error) {
	var removed bool
	err := s.apply("bookmark.draft_updated", func() (bool, error) {
		if s.draft == nil {
			return false, recipe.ErrNoDraft
		}
		s.draft.Tags, removed = s.draft.Tags.Remove(tag)
		return removed, nil
	})
	return removed, err
}

// SaveDraft saves the open draft as a bookmark and closes it.
func (s *Store) SaveDraft() (recipe.BookmarkedRecipe, error) {
	var saved recipe.BookmarkedRecipe
	err := s.apply("bookmark.saved", func() (bool, error) {
		if s.draft == nil {
			return false, recipe.ErrNoDraft
		}
		b, err := s.saveLocked(s.draft.Recipe, s.draft.Status, s.draft.Tags)
		if err != nil {
			return false, err
		}
		s.draft = nil
		saved = b
		return true, nil
	})
	return saved, err
}

// CancelDraft closes the draft without saving.
func (s *Store) CancelDraft() {
	_ = s.apply("bookmark.draft_cancelled", func() (bool, error) {
		changed := s.draft != nil
		s.draft = nil
		return changed, nil
	})
}

// SaveBookmark upserts a bookmark by recipe name. An existing bookmark keeps
// its id and position; status, tags and saved date are replaced. An empty
// status means wishlist.
func (s *Store) SaveBookmark(r recipe.Recipe, rawStatus string, tags []string) (recipe.BookmarkedRecipe, error) {
	var saved recipe.BookmarkedRecipe
	err := s.apply("bookmark.saved", func() (bool, error) {
		status := recipe.StatusWishlist
		if strings.TrimSpace(rawStatus) != "" {
			parsed, err := recipe.ParseStatus(rawStatus)
			if err != nil {
				return false, err
			}
			status = parsed
		}
		b, err := s.saveLocked(r, status, recipe.NewTags(tags...))
		if err != nil {
			return false, err
		}
		saved = b
		return true, nil
	})
	return saved, err
}

func (s *Store) saveLocked(r recipe.Recipe, status recipe.BookmarkStatus, tags recipe.Tags) (recipe.BookmarkedRecipe, error) {
	name := strings.TrimSpace(r.Name)
	if name == "" {
		return recipe.BookmarkedRecipe{}, recipe.ErrEmptyRecipeName
	}
	if !status.Valid() {
		return recipe.BookmarkedRecipe{}, recipe.ErrInvalidStatus
	}

	r = r.Clone()
	r.Name = name
	now := s.today()
	b := recipe.BookmarkedRecipe{
		Recipe:  r,
		Status:  status,
		Tags:    recipe.NewTags(tags...),
		SavedAt: now.Format(pantry.DateLayout),
	}

	replaced := false
	if i := s.findBookmarkByName(name); i >= 0 {
		b.BookmarkID = s.bookmarks[i].BookmarkID
		s.bookmarks[i] = b
		replaced = true
	} else {
		b.BookmarkID = uuid.NewString()
		s.bookmarks = append(s.bookmarks, b)
	}

	s.notice = NoticeBookmarkSaved
	s.AddEvent(recipe.BookmarkSavedEvent{BookmarkID: b.BookmarkID, Name: name, Replaced: replaced, SavedAt: now})
	return cloneBookmark(b), nil
}

// RemoveBookmark deletes a bookmark.
func (s *Store) RemoveBookmark(id string) error {
	return s.apply("bookmark.removed", func() (bool, error) {
		i := s.findBookmark(id)
		if i < 0 {
			return false, recipe.ErrBookmarkNotFound
		}
		removed := s.bookmarks[i]
		s.bookmarks = append(s.bookmarks[:i:i], s.bookmarks[i+1:]...)
		if s.draft != nil && s.draft.BookmarkID == id {
			s.draft = nil
		}
		s.notice = NoticeBookmarkRemoved
		s.AddEvent(recipe.BookmarkRemovedEvent{BookmarkID: id, Name: removed.Name, RemovedAt: s.config.Now()})
		return true, nil
	})
}

// SetBookmarkStatus changes a bookmark's status.
func (s *Store) SetBookmarkStatus(id, raw string) error {
	return s.apply("bookmark.updated", func() (bool, error) {
		i := s.findBookmark(id)
		if i < 0 {
			return false, recipe.ErrBookmarkNotFound
		}
		status, err := recipe.ParseStatus(raw)
		if err != nil {
			return false, err
		}
		if s.bookmarks[i].Status == status {
			return false, nil
		}
		s.bookmarks[i].Status = status
		return true, nil
	})
}

// AddBookmarkTag adds a tag. Blank or present tags are a no-op.
func (s *Store) AddBookmarkTag(id, tag string) (bool, error) {
	var added bool
	err := s.apply("bookmark.updated", func() (bool, error) {
		i := s.findBookmark(id)
		if i < 0 {
			return false, recipe.ErrBookmarkNotFound
		}
		s.bookmarks[i].Tags, added = s.bookmarks[i].Tags.Add(tag)
		return added, nil
	})
	return added, err
}

// RemoveBookmarkTag removes a tag. Removing an absent tag is a no-op.
func (s *Store) RemoveBookmarkTag(id, tag string) (bool, error) {
	var removed bool
	err := s.apply("bookmark.updated", func() (bool, error) {
		i := s.findBookmark(id)
		if i < 0 {
			return false, recipe.ErrBookmarkNotFound
		}
		s.bookmarks[i].Tags, removed = s.bookmarks[i].Tags.Remove(tag)
		return removed, nil
	})
	return removed, err
}

// Bookmarks returns the bookmarks passing filter, in save order.
func (s *Store) Bookmarks(filter recipe.BookmarkFilter) []recipe.BookmarkedRecipe {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []recipe.BookmarkedRecipe{}
	for _, b := range s.bookmarks {
		if filter.Matches(b) {
			out = append(out, cloneBookmark(b))
		}
	}
	return out
}

// AllTags returns the sorted union of all bookmark tags.
func (s *Store) AllTags() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return recipe.AllTags(s.bookmarks)
}

func (s *Store) findBookmark(id string) int {
	for i, b := range s.bookmarks {
		if b.BookmarkID == id {
			return i
		}
	}
	return -1
}

func (s *Store) findBookmarkByName(name string) int {
	for i, b := range s.bookmarks {
		if b.Name == name {
			return i
		}
	}
	return -1
}
