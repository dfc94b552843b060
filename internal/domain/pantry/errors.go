package pantry

import "errors"

// Domain errors for pantry operations. Messages are shown to the user.
var (
	ErrEmptyItem          = errors.New("재료명을 입력해주세요.")
	ErrInvalidStorage     = errors.New("보관 위치는 냉장, 냉동, 실온 중 하나여야 합니다.")
	ErrInvalidExpiration  = errors.New("유통기한 형식이 올바르지 않습니다. (YYYY-MM-DD)")
	ErrIngredientNotFound = errors.New("재료를 찾을 수 없습니다.")
)
