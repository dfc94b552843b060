package recipe

import "errors"

// Domain errors for recipe and bookmark operations

var (
	ErrBookmarkNotFound     = errors.New("북마크를 찾을 수 없습니다.")
	ErrInvalidStatus        = errors.New("상태는 wishlist 또는 completed 여야 합니다.")
	ErrEmptyRecipeName      = errors.New("레시피 이름이 비어 있습니다.")
	ErrNoDraft              = errors.New("편집 중인 북마크가 없습니다.")
	ErrPairingRecipeMissing = errors.New("페어링 레시피를 찾을 수 없습니다.")
	ErrEmptyAlcohol         = errors.New("주류 이름을 입력해주세요.")
)
