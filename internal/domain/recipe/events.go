package recipe

import "time"

// BookmarkSavedEvent is raised when a bookmark is inserted or overwritten
type BookmarkSavedEvent struct {
	BookmarkID string
	Name       string
	Replaced   bool
	SavedAt    time.Time
}

func (e BookmarkSavedEvent) EventName() string {
	return "bookmark.saved"
}

func (e BookmarkSavedEvent) OccurredAt() time.Time {
	return e.SavedAt
}

// BookmarkRemovedEvent is raised when a bookmark is deleted
type BookmarkRemovedEvent struct {
	BookmarkID string
	Name       string
	RemovedAt  time.Time
}

func (e BookmarkRemovedEvent) EventName() string {
	return "bookmark.removed"
}

func (e BookmarkRemovedEvent) OccurredAt() time.Time {
	return e.RemovedAt
}
