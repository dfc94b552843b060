// Package session owns the application state of one user session. All
// mutation goes through typed Store commands; readers get snapshots.
package session

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/pantrypairing/server/internal/domain/pantry"
	"github.com/pantrypairing/server/internal/domain/recipe"
	"github.com/pantrypairing/server/internal/domain/shared"
	"github.com/pantrypairing/server/internal/domain/shopping"
	"github.com/pantrypairing/server/internal/ports/inbound"
	"github.com/pantrypairing/server/internal/ports/outbound"
	"github.com/pantrypairing/server/pkg/errors"
)

// DefaultExpiryThresholdDays is how close to expiry an item must be to warn.
const DefaultExpiryThresholdDays = 3

// Notices shown after bookmark and pantry commands.
const (
	NoticeBookmarkSaved   = "북마크에 저장되었습니다."
	NoticeBookmarkRemoved = "북마크에서 삭제되었습니다."
)

// StoreConfig tunes a Store. Zero values select the defaults.
type StoreConfig struct {
	ExpiryThresholdDays int
	Location            *time.Location
	Links               *shopping.LinkBuilder
	Now                 func() time.Time
}

type aiSlot int

const (
	slotAnalysis aiSlot = iota
	slotRecipes
	slotPairing
	slotCount
)

type slotState struct {
	seq     uint64
	loading bool
}

// Store is the state owner of one session. It is safe for concurrent use.
// AI calls run outside the lock; only the latest request per slot commits.
type Store struct {
	shared.AggregateRoot

	mu        sync.Mutex
	id        string
	gateway   inbound.AIGateway
	publisher shared.EventPublisher
	config    StoreConfig
	logger    *zap.Logger

	version         uint64
	activeTab       Tab
	pantry          []pantry.IngredientDetail
	analysisDraft   []pantry.IngredientDetail
	recommendations *recipe.RecommendationResponse
	pairing         *recipe.PairingResponse
	bookmarks       []recipe.BookmarkedRecipe
	draft           *BookmarkDraft
	shopping        shopping.List
	notice          string
	expiry          *ExpiryWarning
	warned          map[string]struct{}
	lastError       *ErrorState
	slots           [slotCount]slotState
}

// NewStore creates an empty store. publisher may be nil.
func NewStore(id string, gateway inbound.AIGateway, publisher shared.EventPublisher, config StoreConfig, logger *zap.Logger) *Store {
	if publisher == nil {
		publisher = shared.NopPublisher
	}
	if config.ExpiryThresholdDays <= 0 {
		config.ExpiryThresholdDays = DefaultExpiryThresholdDays
	}
	if config.Location == nil {
		config.Location = time.UTC
	}
	if config.Now == nil {
		config.Now = time.Now
	}
	if config.Links == nil {
		config.Links, _ = shopping.NewLinkBuilder(shopping.DefaultSearchURL)
	}

	return &Store{
		id:        id,
		gateway:   gateway,
		publisher: publisher,
		config:    config,
		logger:    logger.With(zap.String("session_id", id)),
		activeTab: TabRefrigerator,
		pantry:    []pantry.IngredientDetail{},
		bookmarks: []recipe.BookmarkedRecipe{},
		shopping:  shopping.List{},
		warned:    make(map[string]struct{}),
	}
}

// ID returns the session id.
func (s *Store) ID() string {
	return s.id
}

// Snapshot returns a copy of the whole state.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	bookmarks := make([]recipe.BookmarkedRecipe, len(s.bookmarks))
	for i, b := range s.bookmarks {
		bookmarks[i] = cloneBookmark(b)
	}
	var lastError *ErrorState
	if s.lastError != nil {
		e := *s.lastError
		lastError = &e
	}

	return Snapshot{
		SessionID:       s.id,
		Version:         s.version,
		ActiveTab:       s.activeTab,
		Pantry:          cloneIngredients(s.pantry),
		AnalysisDraft:   cloneIngredients(s.analysisDraft),
		Recommendations: cloneRecommendations(s.recommendations),
		Pairing:         clonePairing(s.pairing),
		Bookmarks:       bookmarks,
		BookmarkDraft:   s.draft.clone(),
		ShoppingList:    append([]string{}, s.shopping...),
		Notice:          s.notice,
		ExpiryWarning:   s.expiry.clone(),
		Error:           lastError,
		Loading: Loading{
			Analysis: s.slots[slotAnalysis].loading,
			Recipes:  s.slots[slotRecipes].loading,
			Pairing:  s.slots[slotPairing].loading,
		},
	}
}

// Pantry

// AddIngredient validates input and appends it to the pantry.
func (s *Store) AddIngredient(in pantry.Input) (pantry.IngredientDetail, error) {
	var added pantry.IngredientDetail
	err := s.apply("pantry.added", func() (bool, error) {
		item, err := pantry.NewIngredient(in)
		if err != nil {
			return false, err
		}
		s.pantry = append(s.pantry, item)
		added = item
		s.evaluateExpiry()
		return true, nil
	})
	return added, err
}

// UpdateIngredient replaces the editable fields of an item, keeping its id.
func (s *Store) UpdateIngredient(id string, in pantry.Input) (pantry.IngredientDetail, error) {
	var updated pantry.IngredientDetail
	err := s.apply("pantry.updated", func() (bool, error) {
		i := s.findIngredient(id)
		if i < 0 {
			return false, pantry.ErrIngredientNotFound
		}
		item, err := pantry.NewIngredient(in)
		if err != nil {
			return false, err
		}
		item.ID = id
		s.pantry[i] = item
		updated = item
		s.evaluateExpiry()
		return true, nil
	})
	return updated, err
}

// RemoveIngredient deletes an item.
func (s *Store) RemoveIngredient(id string) error {
	return s.apply("pantry.removed", func() (bool, error) {
		i := s.findIngredient(id)
		if i < 0 {
			return false, pantry.ErrIngredientNotFound
		}
		s.pantry = append(s.pantry[:i:i], s.pantry[i+1:]...)
		s.evaluateExpiry()
		return true, nil
	})
}

// ClearStorage removes every item kept in the given location.
func (s *Store) ClearStorage(raw string) (int, error) {
	var removed int
	err := s.apply("pantry.cleared", func() (bool, error) {
		storage, err := pantry.ParseStorage(raw)
		if err != nil {
			return false, err
		}
		kept := make([]pantry.IngredientDetail, 0, len(s.pantry))
		for _, item := range s.pantry {
			if item.Storage == storage {
				removed++
				continue
			}
			kept = append(kept, item)
		}
		if removed == 0 {
			return false, nil
		}
		s.pantry = kept
		s.evaluateExpiry()
		return true, nil
	})
	return removed, err
}

// Pantry returns the pantry in insertion order.
func (s *Store) Pantry() []pantry.IngredientDetail {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneIngredients(s.pantry)
}

// PantryByStorage returns the pantry grouped by storage location.
func (s *Store) PantryByStorage() map[pantry.StorageLocation][]pantry.IngredientDetail {
	return pantry.GroupByStorage(s.Pantry())
}

func (s *Store) findIngredient(id string) int {
	for i, item := range s.pantry {
		if item.ID == id {
			return i
		}
	}
	return -1
}

// AnalyzeImage sends a receipt or fridge photo to the gateway and keeps the
// detected items as a draft until ConfirmAnalysis.
func (s *Store) AnalyzeImage(ctx context.Context, img outbound.Image) ([]pantry.IngredientDetail, error) {
	if len(img.Data) == 0 {
		return nil, userError(ErrEmptyImage)
	}

	seq := s.begin(slotAnalysis, "analysis.started", nil)
	items, err := s.gateway.AnalyzeImage(ctx, img)
	if err := s.finish(slotAnalysis, seq, "analysis.completed", err, func() {
		s.analysisDraft = cloneIngredients(items)
		if s.analysisDraft == nil {
			s.analysisDraft = []pantry.IngredientDetail{}
		}
	}); err != nil {
		return nil, err
	}
	return cloneIngredients(items), nil
}

// ConfirmAnalysis moves the analysis draft into the pantry.
func (s *Store) ConfirmAnalysis() (int, error) {
	var added int
	err := s.apply("analysis.confirmed", func() (bool, error) {
		if s.analysisDraft == nil {
			return false, ErrNoAnalysisDraft
		}
		for _, item := range s.analysisDraft {
			s.pantry = append(s.pantry, item.WithNewID())
			added++
		}
		s.analysisDraft = nil
		s.notice = fmt.Sprintf("%d개의 재료가 추가되었습니다.", added)
		s.evaluateExpiry()
		return true, nil
	})
	return added, err
}

// DiscardAnalysis drops the analysis draft.
func (s *Store) DiscardAnalysis() {
	_ = s.apply("analysis.discarded", func() (bool, error) {
		if s.analysisDraft == nil {
			return false, nil
		}
		s.analysisDraft = nil
		return true, nil
	})
}

// Recipes

// RecommendRecipes asks for recipes built from the selected ingredients, or
// the whole pantry when ids is empty.
func (s *Store) RecommendRecipes(ctx context.Context, ids []string) (*recipe.RecommendationResponse, error) {
	s.mu.Lock()
	selected, err := s.selectIngredients(ids)
	s.mu.Unlock()
	if err != nil {
		return nil, userError(err)
	}
	return s.recommend(ctx, selected)
}

// RecommendForExpiring recommends recipes for exactly the items of the
// current expiry warning and closes it. A dismissed warning is still used.
func (s *Store) RecommendForExpiring(ctx context.Context) (*recipe.RecommendationResponse, error) {
	var selected []pantry.IngredientDetail
	err := s.apply("expiry.closed", func() (bool, error) {
		if s.expiry == nil || len(s.expiry.Items) == 0 {
			return false, ErrNoExpiringItems
		}
		ids := make([]string, 0, len(s.expiry.Items))
		for _, item := range s.expiry.Items {
			ids = append(ids, item.ID)
		}
		var err error
		if selected, err = s.selectIngredients(ids); err != nil {
			return false, err
		}
		wasOpen := s.expiry.Open
		s.expiry.Open = false
		return wasOpen, nil
	})
	if err != nil {
		return nil, err
	}
	return s.recommend(ctx, selected)
}

func (s *Store) recommend(ctx context.Context, selected []pantry.IngredientDetail) (*recipe.RecommendationResponse, error) {
	if len(selected) == 0 {
		return nil, userError(ErrNoIngredients)
	}

	seq := s.begin(slotRecipes, "recipes.started", func() {
		s.activeTab = TabRecipe
	})
	resp, err := s.gateway.RecommendRecipes(ctx, selected)
	if err := s.finish(slotRecipes, seq, "recipes.completed", err, func() {
		s.recommendations = cloneRecommendations(resp)
	}); err != nil {
		return nil, err
	}
	return cloneRecommendations(resp), nil
}

// Recommendations returns the last committed recommendation, if any.
func (s *Store) Recommendations() *recipe.RecommendationResponse {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneRecommendations(s.recommendations)
}

func (s *Store) selectIngredients(ids []string) ([]pantry.IngredientDetail, error) {
	if len(ids) == 0 {
		return cloneIngredients(s.pantry), nil
	}
	selected := make([]pantry.IngredientDetail, 0, len(ids))
	for _, id := range ids {
		i := s.findIngredient(id)
		if i < 0 {
			return nil, pantry.ErrIngredientNotFound
		}
		selected = append(selected, s.pantry[i])
	}
	return selected, nil
}

// Pairings

// RecommendPairings asks for dishes that go with alcohol. The previous
// pairing result is cleared as soon as the request starts.
func (s *Store) RecommendPairings(ctx context.Context, alcohol string) (*recipe.PairingResponse, error) {
	alcohol = strings.TrimSpace(alcohol)
	if alcohol == "" {
		return nil, userError(recipe.ErrEmptyAlcohol)
	}

	var available []string
	seq := s.begin(slotPairing, "pairing.started", func() {
		s.pairing = nil
		available = make([]string, 0, len(s.pantry))
		for _, item := range s.pantry {
			available = append(available, item.Label())
		}
	})
	resp, err := s.gateway.RecommendPairings(ctx, alcohol, available)
	if err := s.finish(slotPairing, seq, "pairing.completed", err, func() {
		s.pairing = clonePairing(resp)
	}); err != nil {
		return nil, err
	}
	return clonePairing(resp), nil
}

// Pairing returns the last committed pairing result, if any.
func (s *Store) Pairing() *recipe.PairingResponse {
	s.mu.Lock()
	defer s.mu.Unlock()
	return clonePairing(s.pairing)
}

// PairingRecipe resolves a refrigerator-version suggestion to its popup
// recipe.
func (s *Store) PairingRecipe(id string) (recipe.Recipe, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pairing == nil {
		return recipe.Recipe{}, false
	}
	r, ok := s.pairing.RecipeByID(id)
	if !ok {
		return recipe.Recipe{}, false
	}
	return r.Clone(), true
}

// UI

// SetActiveTab switches the visible tab.
func (s *Store) SetActiveTab(raw string) error {
	return s.apply("tab.changed", func() (bool, error) {
		tab, err := ParseTab(raw)
		if err != nil {
			return false, err
		}
		if tab == s.activeTab {
			return false, nil
		}
		s.activeTab = tab
		return true, nil
	})
}

// ClearNotice dismisses the notice.
func (s *Store) ClearNotice() {
	_ = s.apply("notice.cleared", func() (bool, error) {
		changed := s.notice != ""
		s.notice = ""
		return changed, nil
	})
}

// ClearError dismisses the error banner.
func (s *Store) ClearError() {
	_ = s.apply("error.cleared", func() (bool, error) {
		changed := s.lastError != nil
		s.lastError = nil
		return changed, nil
	})
}

// plumbing

// apply runs fn under the lock. A change is recorded when fn reports one;
// events are published after the lock is released.
func (s *Store) apply(reason string, fn func() (bool, error)) error {
	s.mu.Lock()
	changed, err := fn()
	if err == nil && changed {
		s.touch(reason)
	}
	events := s.Events()
	version := s.version
	s.mu.Unlock()

	s.publish(events, version)
	return userError(err)
}

// begin starts an AI request on slot: the sequence advances, the error slot
// is cleared and prepare runs under the lock.
func (s *Store) begin(slot aiSlot, reason string, prepare func()) uint64 {
	s.mu.Lock()
	st := &s.slots[slot]
	st.seq++
	st.loading = true
	seq := st.seq
	s.lastError = nil
	if prepare != nil {
		prepare()
	}
	s.touch(reason)
	events := s.Events()
	version := s.version
	s.mu.Unlock()

	s.publish(events, version)
	return seq
}

// finish commits the outcome of request seq unless a newer request on the
// same slot has started.
func (s *Store) finish(slot aiSlot, seq uint64, reason string, callErr error, commit func()) error {
	s.mu.Lock()
	st := &s.slots[slot]
	if st.seq != seq {
		s.mu.Unlock()
		s.logger.Debug("Discarding superseded AI result", zap.String("reason", reason), zap.Uint64("seq", seq))
		return ErrSuperseded
	}

	st.loading = false
	var result error
	if callErr != nil {
		appErr := errors.Wrap(callErr, errors.MsgUnknown)
		if appErr.Code != errors.CodeValidationFailed {
			s.lastError = &ErrorState{Code: appErr.Code, Message: appErr.Message, Operation: appErr.Operation}
		}
		result = appErr
		s.logger.Warn("AI request failed", zap.String("reason", reason), zap.String("code", string(appErr.Code)))
	} else {
		commit()
	}
	s.touch(reason)
	events := s.Events()
	version := s.version
	s.mu.Unlock()

	s.publish(events, version)
	return result
}

func (s *Store) touch(reason string) {
	s.version++
	s.AddEvent(Event{
		Session: s.id,
		Version: s.version,
		Name:    EventStateChanged,
		Reason:  reason,
		At:      s.config.Now(),
	})
}

func (s *Store) publish(events []shared.DomainEvent, version uint64) {
	for _, e := range events {
		if ev, ok := e.(Event); ok {
			s.publisher.Publish(ev)
			continue
		}
		s.publisher.Publish(Event{
			Session: s.id,
			Version: version,
			Name:    e.EventName(),
			Payload: e,
			At:      e.OccurredAt(),
		})
	}
}

func (s *Store) today() time.Time {
	return s.config.Now().In(s.config.Location)
}
