package session

import (
	"strings"

	"github.com/pantrypairing/server/internal/domain/pantry"
	"github.com/pantrypairing/server/internal/domain/recipe"
	"github.com/pantrypairing/server/pkg/errors"
)

// Tab is a top-level view of the application.
type Tab string

const (
	TabRefrigerator Tab = "refrigerator"
	TabRecipe       Tab = "recipe"
	TabBookmark     Tab = "bookmark"
	TabPairing      Tab = "pairing"
	TabShopping     Tab = "shopping"
)

// Tabs lists every tab in display order.
var Tabs = []Tab{TabRefrigerator, TabRecipe, TabBookmark, TabPairing, TabShopping}

// ParseTab validates a raw tab name.
func ParseTab(raw string) (Tab, error) {
	t := Tab(strings.ToLower(strings.TrimSpace(raw)))
	for _, known := range Tabs {
		if t == known {
			return t, nil
		}
	}
	return "", ErrUnknownTab
}

// ToggleOutcome tells the caller what ToggleBookmark did.
type ToggleOutcome string

const (
	// OutcomeDraftOpened means a bookmark draft is now open for the recipe.
	OutcomeDraftOpened ToggleOutcome = "draft_opened"
	// OutcomeConfirmRemoval means the recipe is already bookmarked; nothing
	// changed and the caller should confirm with RemoveBookmark.
	OutcomeConfirmRemoval ToggleOutcome = "confirm_removal"
)

// ToggleResult is returned by ToggleBookmark.
type ToggleResult struct {
	Outcome    ToggleOutcome            `json:"outcome"`
	BookmarkID string                   `json:"bookmark_id,omitempty"`
	Draft      *BookmarkDraft           `json:"draft,omitempty"`
	Bookmark   *recipe.BookmarkedRecipe `json:"bookmark,omitempty"`
}

// BookmarkDraft is the bookmark modal. BookmarkID is set when an existing
// bookmark is being edited.
type BookmarkDraft struct {
	Recipe     recipe.Recipe         `json:"recipe"`
	BookmarkID string                `json:"bookmark_id,omitempty"`
	Status     recipe.BookmarkStatus `json:"status"`
	Tags       recipe.Tags           `json:"tags"`
}

func (d *BookmarkDraft) clone() *BookmarkDraft {
	if d == nil {
		return nil
	}
	out := *d
	out.Recipe = d.Recipe.Clone()
	out.Tags = append(recipe.Tags{}, d.Tags...)
	return &out
}

// ExpiringItem is a pantry item inside the expiry threshold.
type ExpiringItem struct {
	pantry.IngredientDetail
	DaysLeft int `json:"days_left"`
}

// ExpiryWarning aggregates every expiring item into one notification.
type ExpiryWarning struct {
	Items     []ExpiringItem `json:"items"`
	Signature string         `json:"signature"`
	Open      bool           `json:"open"`
}

func (w *ExpiryWarning) clone() *ExpiryWarning {
	if w == nil {
		return nil
	}
	out := *w
	out.Items = append([]ExpiringItem(nil), w.Items...)
	return &out
}

// ErrorState is the single error banner.
type ErrorState struct {
	Code      errors.ErrorCode `json:"code"`
	Message   string           `json:"message"`
	Operation errors.Operation `json:"operation,omitempty"`
}

// Loading reports which AI requests are in flight.
type Loading struct {
	Analysis bool `json:"analysis"`
	Recipes  bool `json:"recipes"`
	Pairing  bool `json:"pairing"`
}

// Snapshot is an immutable copy of a session's state.
type Snapshot struct {
	SessionID       string                         `json:"session_id"`
	Version         uint64                         `json:"version"`
	ActiveTab       Tab                            `json:"active_tab"`
	Pantry          []pantry.IngredientDetail      `json:"pantry"`
	AnalysisDraft   []pantry.IngredientDetail      `json:"analysis_draft,omitempty"`
	Recommendations *recipe.RecommendationResponse `json:"recommendations,omitempty"`
	Pairing         *recipe.PairingResponse        `json:"pairing,omitempty"`
	Bookmarks       []recipe.BookmarkedRecipe      `json:"bookmarks"`
	BookmarkDraft   *BookmarkDraft                 `json:"bookmark_draft,omitempty"`
	ShoppingList    []string                       `json:"shopping_list"`
	Notice          string                         `json:"notice,omitempty"`
	ExpiryWarning   *ExpiryWarning                 `json:"expiry_warning,omitempty"`
	Error           *ErrorState                    `json:"error,omitempty"`
	Loading         Loading                        `json:"loading"`
}

func cloneIngredients(items []pantry.IngredientDetail) []pantry.IngredientDetail {
	if items == nil {
		return nil
	}
	return append([]pantry.IngredientDetail{}, items...)
}

func cloneBookmark(b recipe.BookmarkedRecipe) recipe.BookmarkedRecipe {
	b.Recipe = b.Recipe.Clone()
	b.Tags = append(recipe.Tags{}, b.Tags...)
	return b
}

func cloneRecommendations(r *recipe.RecommendationResponse) *recipe.RecommendationResponse {
	if r == nil {
		return nil
	}
	out := *r
	out.InputIngredientsDetail = cloneIngredients(r.InputIngredientsDetail)
	out.RecipeRecommendations = make([]recipe.Recipe, len(r.RecipeRecommendations))
	for i, rec := range r.RecipeRecommendations {
		out.RecipeRecommendations[i] = rec.Clone()
	}
	out.AlcoholPairings = append([]recipe.AlcoholPairing(nil), r.AlcoholPairings...)
	return &out
}

func clonePairing(p *recipe.PairingResponse) *recipe.PairingResponse {
	if p == nil {
		return nil
	}
	out := *p
	out.Recommendations.RefrigeratorVersion = append([]recipe.PairingItem(nil), p.Recommendations.RefrigeratorVersion...)
	out.Recommendations.ConvenienceStoreVersion = append([]recipe.SimplePairingItem(nil), p.Recommendations.ConvenienceStoreVersion...)
	out.Recommendations.DeliveryVersion = append([]recipe.SimplePairingItem(nil), p.Recommendations.DeliveryVersion...)
	out.DetailedPopupRecipes = make([]recipe.Recipe, len(p.DetailedPopupRecipes))
	for i, rec := range p.DetailedPopupRecipes {
		out.DetailedPopupRecipes[i] = rec.Clone()
	}
	return &out
}
