package session

import (
	stderrors "errors"

	"github.com/pantrypairing/server/internal/domain/pantry"
	"github.com/pantrypairing/server/internal/domain/recipe"
	"github.com/pantrypairing/server/internal/domain/shopping"
	"github.com/pantrypairing/server/pkg/errors"
)

// ErrSuperseded is returned to the caller of an AI request when a newer
// request for the same result started before it finished. State is left as
// the newer request leaves it.
var ErrSuperseded = stderrors.New("superseded by a newer request")

// ErrSessionNotFound is returned by Manager when the session has ended or
// was evicted.
var ErrSessionNotFound = stderrors.New("세션이 만료되었습니다. 다시 시작해주세요.")

var (
	ErrUnknownTab      = stderrors.New("알 수 없는 탭입니다.")
	ErrNoAnalysisDraft = stderrors.New("확인할 분석 결과가 없습니다.")
	ErrNoIngredients   = stderrors.New("추천받을 재료를 선택해주세요.")
	ErrNoExpiringItems = stderrors.New("유통기한이 임박한 재료가 없습니다.")
	ErrEmptyImage      = stderrors.New("이미지를 선택해주세요.")
)

// userError converts a domain sentinel into the AppError returned to the
// caller. User errors never reach the error slot.
func userError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := errors.As(err); ok {
		return err
	}
	switch {
	case stderrors.Is(err, pantry.ErrIngredientNotFound),
		stderrors.Is(err, recipe.ErrBookmarkNotFound),
		stderrors.Is(err, recipe.ErrNoDraft),
		stderrors.Is(err, recipe.ErrPairingRecipeMissing),
		stderrors.Is(err, shopping.ErrItemNotFound),
		stderrors.Is(err, ErrNoAnalysisDraft):
		return errors.NewAppError(errors.CodeNotFound, err.Error(), "").WithCause(err)
	default:
		return errors.NewValidationError(err.Error()).WithCause(err)
	}
}
