package session_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap/zaptest"

	"github.com/pantrypairing/server/internal/application/session"
	"github.com/pantrypairing/server/internal/domain/pantry"
	"github.com/pantrypairing/server/internal/domain/recipe"
	"github.com/pantrypairing/server/internal/domain/shopping"
	"github.com/pantrypairing/server/internal/ports/outbound"
	"github.com/pantrypairing/server/pkg/errors"
	"github.com/pantrypairing/server/test/testutils"
)

var seoul = time.FixedZone("KST", 9*60*60)

type StoreTestSuite struct {
	suite.Suite
	gateway *testutils.MockAIGateway
	events  *testutils.EventRecorder
	factory *testutils.Factory
	now     time.Time
	store   *session.Store
}

func (s *StoreTestSuite) SetupTest() {
	s.gateway = testutils.NewMockAIGateway()
	s.events = &testutils.EventRecorder{}
	s.factory = testutils.NewFactory(11)
	s.now = time.Date(2024, 1, 1, 9, 0, 0, 0, seoul)
	s.store = session.NewStore("sess-1", s.gateway, s.events, session.StoreConfig{
		Location: seoul,
		Now:      func() time.Time { return s.now },
	}, zaptest.NewLogger(s.T()))
}

func TestStoreTestSuite(t *testing.T) {
	suite.Run(t, new(StoreTestSuite))
}

func (s *StoreTestSuite) TestPantry() {
	s.Run("AddIngredient_ShouldAssignIDAndNormalize", func() {
		s.SetupTest()
		// Act
		item, err := s.store.AddIngredient(pantry.Input{Item: "두부", Quantity: "1모", Storage: "냉장", ExpirationDate: "20240120"})

		// Assert
		s.Require().NoError(err)
		s.NotEmpty(item.ID)
		s.Equal("2024-01-20", item.ExpirationDate)
		s.Len(s.store.Pantry(), 1)
		s.Equal(uint64(1), s.store.Snapshot().Version)
		s.Equal([]string{session.EventStateChanged}, s.events.Names())
	})

	s.Run("EmptyName_ShouldReturnUserError", func() {
		s.SetupTest()
		// Act
		_, err := s.store.AddIngredient(pantry.Input{Item: "  "})

		// Assert
		appErr := testutils.AssertAppError(s.T(), err, errors.CodeValidationFailed, "")
		s.Equal("재료명을 입력해주세요.", appErr.Message)
		s.Nil(s.store.Snapshot().Error)
		s.Empty(s.events.Names())
	})

	s.Run("UpdateAndRemove_ShouldUseStableIDs", func() {
		s.SetupTest()
		// Arrange
		first, _ := s.store.AddIngredient(pantry.Input{Item: "우유"})
		second, _ := s.store.AddIngredient(pantry.Input{Item: "계란"})

		// Act
		updated, err := s.store.UpdateIngredient(second.ID, pantry.Input{Item: "계란", Quantity: "10개", Storage: "냉장"})
		s.Require().NoError(err)
		s.Require().NoError(s.store.RemoveIngredient(first.ID))

		// Assert
		items := s.store.Pantry()
		s.Require().Len(items, 1)
		s.Equal(second.ID, updated.ID)
		s.Equal("10개", items[0].Quantity)
		testutils.AssertAppError(s.T(), s.store.RemoveIngredient(first.ID), errors.CodeNotFound, "")
	})

	s.Run("ClearStorage_ShouldRemoveOnlyThatLocation", func() {
		s.SetupTest()
		// Arrange
		_, _ = s.store.AddIngredient(pantry.Input{Item: "만두", Storage: "냉동"})
		_, _ = s.store.AddIngredient(pantry.Input{Item: "우유", Storage: "냉장"})
		_, _ = s.store.AddIngredient(pantry.Input{Item: "아이스크림", Storage: "frozen"})

		// Act
		removed, err := s.store.ClearStorage("냉동")

		// Assert
		s.Require().NoError(err)
		s.Equal(2, removed)
		groups := s.store.PantryByStorage()
		s.Empty(groups[pantry.StorageFrozen])
		s.Len(groups[pantry.StorageRefrigerated], 1)
	})
}

func (s *StoreTestSuite) TestExpiry() {
	s.Run("ItemDueTomorrow_ShouldRaiseOneWarning", func() {
		s.SetupTest()
		// Arrange
		now := time.Date(2024, 1, 1, 23, 30, 0, 0, seoul)
		s.now = now

		// Act
		milk, err := s.store.AddIngredient(pantry.Input{Item: "우유", ExpirationDate: "2024-01-02"})
		s.Require().NoError(err)
		_, _ = s.store.AddIngredient(pantry.Input{Item: "라면", Storage: "실온", ExpirationDate: "2024-06-01"})

		// Assert
		warning := s.store.ExpiryWarning()
		s.Require().NotNil(warning)
		s.Require().Len(warning.Items, 1)
		s.Equal(milk.ID, warning.Items[0].ID)
		s.Equal(1, warning.Items[0].DaysLeft)
	})

	s.Run("ThresholdIsInclusiveAndIncludesOverdue", func() {
		s.SetupTest()
		// Act
		_, _ = s.store.AddIngredient(pantry.Input{Item: "두부", ExpirationDate: "2024-01-04"})
		_, _ = s.store.AddIngredient(pantry.Input{Item: "요거트", ExpirationDate: "2023-12-30"})
		_, _ = s.store.AddIngredient(pantry.Input{Item: "치즈", ExpirationDate: "2024-01-05"})
		_, _ = s.store.AddIngredient(pantry.Input{Item: "소금", Storage: "실온"})

		// Assert
		warning := s.store.CheckExpirations()
		s.Require().NotNil(warning)
		s.Len(warning.Items, 2)
	})

	s.Run("DismissedWarning_ShouldNotReappearForSameSet", func() {
		s.SetupTest()
		// Arrange
		_, _ = s.store.AddIngredient(pantry.Input{Item: "우유", ExpirationDate: "2024-01-02"})
		s.store.DismissExpiryWarning()

		// Act
		_, _ = s.store.AddIngredient(pantry.Input{Item: "라면", Storage: "실온", ExpirationDate: "2025-01-01"})
		again := s.store.CheckExpirations()

		// Assert
		s.Nil(again)
	})

	s.Run("DifferentSet_ShouldRaiseNewWarning", func() {
		s.SetupTest()
		// Arrange
		_, _ = s.store.AddIngredient(pantry.Input{Item: "우유", ExpirationDate: "2024-01-02"})
		first := s.store.ExpiryWarning()
		s.store.DismissExpiryWarning()

		// Act
		_, _ = s.store.AddIngredient(pantry.Input{Item: "두부", ExpirationDate: "2024-01-03"})

		// Assert
		second := s.store.ExpiryWarning()
		s.Require().NotNil(second)
		s.Len(second.Items, 2)
		s.NotEqual(first.Signature, second.Signature)
	})

	s.Run("RecommendForExpiring_ShouldUseExactlyWarnedItems", func() {
		s.SetupTest()
		// Arrange
		milk, _ := s.store.AddIngredient(pantry.Input{Item: "우유", ExpirationDate: "2024-01-02"})
		_, _ = s.store.AddIngredient(pantry.Input{Item: "라면", Storage: "실온", ExpirationDate: "2025-01-01"})
		s.gateway.On("RecommendRecipes", mock.Anything, mock.MatchedBy(func(items []pantry.IngredientDetail) bool {
			return len(items) == 1 && items[0].ID == milk.ID
		})).Return(s.factory.RecommendationResponse(), nil).Once()

		// Act
		resp, err := s.store.RecommendForExpiring(context.Background())

		// Assert
		s.Require().NoError(err)
		s.NotNil(resp)
		s.Nil(s.store.ExpiryWarning())
		s.gateway.AssertExpectations(s.T())
	})
}

func (s *StoreTestSuite) TestExpiryFollowsPantryChanges() {
	s.Run("RemovedItem_ShouldDropOutOfOpenWarning", func() {
		s.SetupTest()
		// Arrange
		milk, _ := s.store.AddIngredient(pantry.Input{Item: "우유", ExpirationDate: "2024-01-02"})
		tofu, _ := s.store.AddIngredient(pantry.Input{Item: "두부", ExpirationDate: "2024-01-03"})
		s.Require().Len(s.store.ExpiryWarning().Items, 2)

		// Act
		s.Require().NoError(s.store.RemoveIngredient(tofu.ID))

		// Assert
		warning := s.store.ExpiryWarning()
		s.Require().NotNil(warning, "the remaining set was warned before and the warning stays open")
		s.Require().Len(warning.Items, 1)
		s.Equal(milk.ID, warning.Items[0].ID)
	})

	s.Run("RemovedItem_ShouldNotBreakRecommendForExpiring", func() {
		s.SetupTest()
		// Arrange
		milk, _ := s.store.AddIngredient(pantry.Input{Item: "우유", ExpirationDate: "2024-01-02"})
		tofu, _ := s.store.AddIngredient(pantry.Input{Item: "두부", ExpirationDate: "2024-01-03"})
		s.Require().NoError(s.store.RemoveIngredient(tofu.ID))
		s.gateway.On("RecommendRecipes", mock.Anything, mock.MatchedBy(func(items []pantry.IngredientDetail) bool {
			return len(items) == 1 && items[0].ID == milk.ID
		})).Return(s.factory.RecommendationResponse(), nil).Once()

		// Act
		_, err := s.store.RecommendForExpiring(context.Background())

		// Assert
		s.Require().NoError(err)
		s.Nil(s.store.ExpiryWarning())
		s.gateway.AssertExpectations(s.T())
	})

	s.Run("UpdatedDate_ShouldRefreshDismissedWarningWithoutReopening", func() {
		s.SetupTest()
		// Arrange
		milk, _ := s.store.AddIngredient(pantry.Input{Item: "우유", ExpirationDate: "2024-01-02"})
		tofu, _ := s.store.AddIngredient(pantry.Input{Item: "두부", ExpirationDate: "2024-01-03"})
		s.store.DismissExpiryWarning()

		// Act
		_, err := s.store.UpdateIngredient(tofu.ID, pantry.Input{Item: "두부", ExpirationDate: "2024-03-01"})
		s.Require().NoError(err)

		// Assert
		s.Nil(s.store.ExpiryWarning())
		items := s.store.ExpiringItems()
		s.Require().Len(items, 1)
		s.Equal(milk.ID, items[0].ID)
	})

	s.Run("DismissedWarning_ShouldStillFeedRecommendation", func() {
		s.SetupTest()
		// Arrange
		milk, _ := s.store.AddIngredient(pantry.Input{Item: "우유", ExpirationDate: "2024-01-02"})
		s.store.DismissExpiryWarning()
		s.gateway.On("RecommendRecipes", mock.Anything, mock.MatchedBy(func(items []pantry.IngredientDetail) bool {
			return len(items) == 1 && items[0].ID == milk.ID
		})).Return(s.factory.RecommendationResponse(), nil).Once()

		// Act
		_, err := s.store.RecommendForExpiring(context.Background())

		// Assert
		s.Require().NoError(err)
		s.gateway.AssertExpectations(s.T())
	})

	s.Run("NoExpiringItems_ShouldFailWithoutChangingState", func() {
		s.SetupTest()
		// Arrange
		_, _ = s.store.AddIngredient(pantry.Input{Item: "라면", Storage: "실온", ExpirationDate: "2025-01-01"})
		version := s.store.Snapshot().Version

		// Act
		_, err := s.store.RecommendForExpiring(context.Background())

		// Assert
		testutils.AssertAppError(s.T(), err, errors.CodeValidationFailed, "")
		s.Equal(version, s.store.Snapshot().Version)
		s.gateway.AssertNotCalled(s.T(), "RecommendRecipes", mock.Anything, mock.Anything)
	})
}

func (s *StoreTestSuite) TestRecommendRecipes() {
	s.Run("Success_ShouldSwitchTabAndCommit", func() {
		s.SetupTest()
		// Arrange
		_, _ = s.store.AddIngredient(pantry.Input{Item: "계란", Quantity: "2개"})
		expected := s.factory.RecommendationResponse()
		var tabDuringCall session.Tab
		s.gateway.On("RecommendRecipes", mock.Anything, mock.Anything).
			Run(func(mock.Arguments) {
				snap := s.store.Snapshot()
				tabDuringCall = snap.ActiveTab
				s.True(snap.Loading.Recipes)
			}).
			Return(expected, nil).Once()

		// Act
		resp, err := s.store.RecommendRecipes(context.Background(), nil)

		// Assert
		s.Require().NoError(err)
		s.Equal(session.TabRecipe, tabDuringCall)
		snap := s.store.Snapshot()
		s.False(snap.Loading.Recipes)
		s.Require().NotNil(snap.Recommendations)
		s.Equal(expected.RecipeRecommendations[0].Name, resp.RecipeRecommendations[0].Name)
	})

	s.Run("EmptyPantry_ShouldNotCallGateway", func() {
		s.SetupTest()
		// Act
		_, err := s.store.RecommendRecipes(context.Background(), nil)

		// Assert
		testutils.AssertAppError(s.T(), err, errors.CodeValidationFailed, "")
		s.gateway.AssertNotCalled(s.T(), "RecommendRecipes", mock.Anything, mock.Anything)
	})

	s.Run("UnknownID_ShouldBeNotFound", func() {
		s.SetupTest()
		// Act
		_, err := s.store.RecommendRecipes(context.Background(), []string{"missing"})

		// Assert
		testutils.AssertAppError(s.T(), err, errors.CodeNotFound, "")
	})

	s.Run("GatewayError_ShouldFillErrorSlotUntilNextAttempt", func() {
		s.SetupTest()
		// Arrange
		_, _ = s.store.AddIngredient(pantry.Input{Item: "계란"})
		overloaded := errors.NewUpstreamOverloadedError(nil).WithOperation(errors.OpRecommendation)
		s.gateway.On("RecommendRecipes", mock.Anything, mock.Anything).Return(nil, overloaded).Once()

		// Act
		_, err := s.store.RecommendRecipes(context.Background(), nil)

		// Assert
		testutils.AssertAppError(s.T(), err, errors.CodeUpstreamOverloaded, errors.OpRecommendation)
		slot := s.store.Snapshot().Error
		s.Require().NotNil(slot)
		s.Equal(errors.MsgOverloaded, slot.Message)

		// a new attempt clears the slot as soon as it starts
		s.gateway.On("RecommendRecipes", mock.Anything, mock.Anything).
			Run(func(mock.Arguments) { s.Nil(s.store.Snapshot().Error) }).
			Return(s.factory.RecommendationResponse(), nil).Once()
		_, err = s.store.RecommendRecipes(context.Background(), nil)
		s.Require().NoError(err)
		s.Nil(s.store.Snapshot().Error)
	})

	s.Run("SecondError_ShouldReplaceFirst", func() {
		s.SetupTest()
		// Arrange
		_, _ = s.store.AddIngredient(pantry.Input{Item: "계란"})
		s.gateway.On("RecommendRecipes", mock.Anything, mock.Anything).
			Return(nil, errors.NewUpstreamOverloadedError(nil).WithOperation(errors.OpRecommendation)).Once()
		s.gateway.On("RecommendPairings", mock.Anything, "맥주", mock.Anything).
			Return(nil, errors.NewInvalidCredentialsError(nil).WithOperation(errors.OpPairing)).Once()

		// Act
		_, _ = s.store.RecommendRecipes(context.Background(), nil)
		_, _ = s.store.RecommendPairings(context.Background(), "맥주")

		// Assert
		slot := s.store.Snapshot().Error
		s.Require().NotNil(slot)
		s.Equal(errors.CodeInvalidCredentials, slot.Code)
		s.Equal(errors.OpPairing, slot.Operation)

		s.store.ClearError()
		s.Nil(s.store.Snapshot().Error)
	})
}

func (s *StoreTestSuite) TestRecommendPairings() {
	s.Run("Success_ShouldPassPantryLabelsAndResolvePopups", func() {
		s.SetupTest()
		// Arrange
		_, _ = s.store.AddIngredient(pantry.Input{Item: "계란", Quantity: "2개"})
		resp := s.factory.PairingResponse("맥주")
		s.gateway.On("RecommendPairings", mock.Anything, "맥주", []string{"계란 (2개)"}).Return(resp, nil).Once()

		// Act
		got, err := s.store.RecommendPairings(context.Background(), " 맥주 ")

		// Assert
		s.Require().NoError(err)
		testutils.AssertPairingConformant(s.T(), got)
		popup, ok := s.store.PairingRecipe("R01")
		s.True(ok)
		s.Equal(resp.DetailedPopupRecipes[0].Name, popup.Name)
		_, ok = s.store.PairingRecipe("R42")
		s.False(ok)
	})

	s.Run("EmptyAlcohol_ShouldNotTouchErrorSlot", func() {
		s.SetupTest()
		// Act
		_, err := s.store.RecommendPairings(context.Background(), "")

		// Assert
		testutils.AssertAppError(s.T(), err, errors.CodeValidationFailed, "")
		s.Nil(s.store.Snapshot().Error)
	})

	s.Run("NewRequest_ShouldClearPreviousResult", func() {
		s.SetupTest()
		// Arrange
		s.gateway.On("RecommendPairings", mock.Anything, "와인", mock.Anything).Return(s.factory.PairingResponse("와인"), nil).Once()
		_, err := s.store.RecommendPairings(context.Background(), "와인")
		s.Require().NoError(err)
		s.gateway.On("RecommendPairings", mock.Anything, "소주", mock.Anything).
			Run(func(mock.Arguments) { s.Nil(s.store.Pairing()) }).
			Return(nil, errors.NewTimeoutError(nil).WithOperation(errors.OpPairing)).Once()

		// Act
		_, err = s.store.RecommendPairings(context.Background(), "소주")

		// Assert
		testutils.AssertAppError(s.T(), err, errors.CodeTimeout, errors.OpPairing)
		s.Nil(s.store.Pairing())
	})

	s.Run("StaleResult_ShouldNotBeCommitted", func() {
		s.SetupTest()
		// Arrange
		started := make(chan struct{})
		release := make(chan struct{})
		s.gateway.On("RecommendPairings", mock.Anything, "소주", mock.Anything).
			Run(func(mock.Arguments) {
				close(started)
				<-release
			}).
			Return(s.factory.PairingResponse("소주"), nil).Once()
		s.gateway.On("RecommendPairings", mock.Anything, "맥주", mock.Anything).
			Return(s.factory.PairingResponse("맥주"), nil).Once()

		staleErr := make(chan error, 1)
		go func() {
			_, err := s.store.RecommendPairings(context.Background(), "소주")
			staleErr <- err
		}()
		<-started

		// Act
		_, err := s.store.RecommendPairings(context.Background(), "맥주")
		close(release)

		// Assert
		s.Require().NoError(err)
		s.ErrorIs(<-staleErr, session.ErrSuperseded)
		s.Equal("맥주", s.store.Pairing().SelectedAlcohol)
		s.False(s.store.Snapshot().Loading.Pairing)
	})
}

func (s *StoreTestSuite) TestAnalysis() {
	img := outbound.Image{MIMEType: "image/png", Data: []byte("png")}

	s.Run("ConfirmDraft_ShouldAppendWithNewIDs", func() {
		s.SetupTest()
		// Arrange
		detected := []pantry.IngredientDetail{
			{Item: "우유", Quantity: "1L", Storage: pantry.StorageRefrigerated, ExpirationDate: pantry.ExpirationUnknown},
			{Item: "만두", Quantity: "1봉", Storage: pantry.StorageFrozen, ExpirationDate: "2024-03-01"},
		}
		s.gateway.On("AnalyzeImage", mock.Anything, img).Return(detected, nil).Once()

		// Act
		items, err := s.store.AnalyzeImage(context.Background(), img)
		s.Require().NoError(err)
		s.Len(s.store.Snapshot().AnalysisDraft, 2)
		added, err := s.store.ConfirmAnalysis()

		// Assert
		s.Require().NoError(err)
		s.Equal(2, added)
		s.Len(items, 2)
		pantryItems := s.store.Pantry()
		s.Require().Len(pantryItems, 2)
		s.NotEmpty(pantryItems[0].ID)
		s.NotEqual(pantryItems[0].ID, pantryItems[1].ID)
		s.Nil(s.store.Snapshot().AnalysisDraft)
		s.Equal("2개의 재료가 추가되었습니다.", s.store.Snapshot().Notice)
	})

	s.Run("Discard_ShouldLeavePantryUntouched", func() {
		s.SetupTest()
		// Arrange
		s.gateway.On("AnalyzeImage", mock.Anything, img).
			Return([]pantry.IngredientDetail{{Item: "우유", Storage: pantry.StorageRefrigerated, ExpirationDate: "N/A"}}, nil).Once()
		_, _ = s.store.AnalyzeImage(context.Background(), img)

		// Act
		s.store.DiscardAnalysis()
		_, err := s.store.ConfirmAnalysis()

		// Assert
		testutils.AssertAppError(s.T(), err, errors.CodeNotFound, "")
		s.Empty(s.store.Pantry())
	})

	s.Run("EmptyImage_ShouldBeUserError", func() {
		s.SetupTest()
		// Act
		_, err := s.store.AnalyzeImage(context.Background(), outbound.Image{})

		// Assert
		testutils.AssertAppError(s.T(), err, errors.CodeValidationFailed, "")
		s.gateway.AssertNotCalled(s.T(), "AnalyzeImage", mock.Anything, mock.Anything)
	})
}

func (s *StoreTestSuite) TestBookmarks() {
	s.Run("SaveByExistingName_ShouldReplaceInPlace", func() {
		s.SetupTest()
		// Arrange
		r := s.factory.Recipe("")
		first, err := s.store.SaveBookmark(r, "wishlist", []string{"주말"})
		s.Require().NoError(err)
		_, err = s.store.SaveBookmark(s.factory.Recipe(""), "", nil)
		s.Require().NoError(err)
		s.now = s.now.AddDate(0, 0, 3)

		// Act
		second, err := s.store.SaveBookmark(r, "completed", []string{"간단"})

		// Assert
		s.Require().NoError(err)
		all := s.store.Bookmarks(recipe.BookmarkFilter{})
		s.Len(all, 2)
		s.Equal(first.BookmarkID, second.BookmarkID)
		s.Equal(first.BookmarkID, all[0].BookmarkID)
		s.Equal(recipe.StatusCompleted, all[0].Status)
		s.Equal(recipe.Tags{"간단"}, all[0].Tags)
		s.Equal("2024-01-04", all[0].SavedAt)
		s.Contains(s.events.Names(), "bookmark.saved")
	})

	s.Run("TagSemantics_ShouldBeIdempotent", func() {
		s.SetupTest()
		// Arrange
		b, _ := s.store.SaveBookmark(s.factory.Recipe(""), "", []string{"매운맛"})

		// Act
		added, err := s.store.AddBookmarkTag(b.BookmarkID, "매운맛")
		s.Require().NoError(err)
		blank, _ := s.store.AddBookmarkTag(b.BookmarkID, "   ")
		removedOnce, _ := s.store.RemoveBookmarkTag(b.BookmarkID, "매운맛")
		removedTwice, err := s.store.RemoveBookmarkTag(b.BookmarkID, "매운맛")

		// Assert
		s.Require().NoError(err)
		s.False(added)
		s.False(blank)
		s.True(removedOnce)
		s.False(removedTwice)
		s.Empty(s.store.Bookmarks(recipe.BookmarkFilter{})[0].Tags)
	})

	s.Run("Toggle_ShouldOpenDraftOrAskToConfirm", func() {
		s.SetupTest()
		// Arrange
		r := s.factory.Recipe("")

		// Act
		opened, err := s.store.ToggleBookmark(r)
		s.Require().NoError(err)
		_, err = s.store.AddDraftTag("주말")
		s.Require().NoError(err)
		s.Require().NoError(s.store.SetDraftStatus("completed"))
		saved, err := s.store.SaveDraft()
		s.Require().NoError(err)
		again, err := s.store.ToggleBookmark(r)

		// Assert
		s.Require().NoError(err)
		s.Equal(session.OutcomeDraftOpened, opened.Outcome)
		s.Equal(recipe.StatusWishlist, opened.Draft.Status)
		s.Equal(session.OutcomeConfirmRemoval, again.Outcome)
		s.Equal(saved.BookmarkID, again.BookmarkID)
		s.Nil(s.store.Draft())
		s.Equal(recipe.Tags{"주말"}, saved.Tags)

		s.Require().NoError(s.store.RemoveBookmark(again.BookmarkID))
		s.Empty(s.store.Bookmarks(recipe.BookmarkFilter{}))
		s.Equal(session.NoticeBookmarkRemoved, s.store.Snapshot().Notice)
	})

	s.Run("EditBookmark_ShouldPrefillDraft", func() {
		s.SetupTest()
		// Arrange
		b, _ := s.store.SaveBookmark(s.factory.Recipe(""), "completed", []string{"a", "b"})

		// Act
		draft, err := s.store.EditBookmark(b.BookmarkID)
		s.Require().NoError(err)
		_, _ = s.store.RemoveDraftTag("a")
		_, err = s.store.SaveDraft()

		// Assert
		s.Require().NoError(err)
		s.Equal(recipe.StatusCompleted, draft.Status)
		all := s.store.Bookmarks(recipe.BookmarkFilter{})
		s.Len(all, 1)
		s.Equal(recipe.Tags{"b"}, all[0].Tags)
	})

	s.Run("FilterAndTags", func() {
		s.SetupTest()
		// Arrange
		a, _ := s.store.SaveBookmark(s.factory.Recipe(""), "wishlist", []string{"주말"})
		_, _ = s.store.SaveBookmark(s.factory.Recipe(""), "completed", []string{"간단", "주말"})

		// Act
		s.Require().NoError(s.store.SetBookmarkStatus(a.BookmarkID, "completed"))

		// Assert
		s.Len(s.store.Bookmarks(recipe.BookmarkFilter{Status: recipe.StatusCompleted}), 2)
		s.Len(s.store.Bookmarks(recipe.BookmarkFilter{Tag: "간단"}), 1)
		s.Equal([]string{"간단", "주말"}, s.store.AllTags())
		testutils.AssertAppError(s.T(), s.store.SetBookmarkStatus(a.BookmarkID, "done"), errors.CodeValidationFailed, "")
	})

	s.Run("DraftCommandsWithoutDraft_ShouldBeNotFound", func() {
		s.SetupTest()
		// Act
		_, err := s.store.SaveDraft()

		// Assert
		testutils.AssertAppError(s.T(), err, errors.CodeNotFound, "")
	})
}

func (s *StoreTestSuite) TestShoppingAndUI() {
	s.Run("DuplicateItem_ShouldLeaveListUnchanged", func() {
		s.SetupTest()
		// Act
		added, notice, err := s.store.AddToShoppingList(" 대파 ")
		s.Require().NoError(err)
		dupAdded, dupNotice, err := s.store.AddToShoppingList("대파")

		// Assert
		s.Require().NoError(err)
		s.True(added)
		s.Equal(shopping.AddedNotice("대파"), notice)
		s.False(dupAdded)
		s.Equal(shopping.NoticeDuplicate, dupNotice)
		s.Equal([]string{"대파"}, s.store.ShoppingList())
		s.Equal(shopping.NoticeDuplicate, s.store.Snapshot().Notice)

		s.store.ClearNotice()
		s.Empty(s.store.Snapshot().Notice)
	})

	s.Run("RemoveAndLink", func() {
		s.SetupTest()
		// Arrange
		_, _, _ = s.store.AddToShoppingList("참기름")

		// Act
		link, err := s.store.PurchaseLink("참기름")
		s.Require().NoError(err)
		s.Require().NoError(s.store.RemoveFromShoppingList("참기름"))

		// Assert
		s.Contains(link, "q=%EC%B0%B8%EA%B8%B0%EB%A6%84")
		s.Empty(s.store.ShoppingList())
		testutils.AssertAppError(s.T(), s.store.RemoveFromShoppingList("참기름"), errors.CodeNotFound, "")
	})

	s.Run("SetActiveTab", func() {
		s.SetupTest()
		// Act
		err := s.store.SetActiveTab("bookmark")
		badErr := s.store.SetActiveTab("settings")

		// Assert
		s.Require().NoError(err)
		s.Equal(session.TabBookmark, s.store.Snapshot().ActiveTab)
		testutils.AssertAppError(s.T(), badErr, errors.CodeValidationFailed, "")
	})
}
