package recipe

import "math/rand/v2"

// alcoholCatalog feeds the quick-pick suggestions on the pairing view.
var alcoholCatalog = []string{
	"맥주", "카스", "테라", "기네스", "하이네켄", "에델바이스", "호가든", "스텔라 아르투아",
	"소주", "참이슬", "진로", "좋은데이", "처음처럼", "이슬톡톡", "한라산", "안동소주",
	"위스키", "조니 워커 블랙", "조니 워커 레드", "잭 다니엘", "짐빔", "크라운 로얄",
	"싱글몰트 위스키", "피트 위스키", "블렌디드 위스키", "맥켈란", "글렌피딕", "글렌드로낙 12년",
	"와인", "카베르네 소비뇽", "메를로", "피노 누아", "샤르도네", "소비뇽 블랑", "리슬링", "샴페인",
	"막걸리", "서울 장수 생막걸리", "동동주", "이천쌀막걸리", "백세주",
	"데킬라", "드라이 진", "보드카", "럼", "브랜디", "코냑",
	"사케", "다이긴조", "준마이", "혼죠조",
	"칵테일", "모히토", "마가리타", "올드 패션드",
}

// DefaultSuggestionCount is how many quick picks the pairing view shows.
const DefaultSuggestionCount = 8

// SuggestAlcohols returns n distinct catalog entries in random order.
func SuggestAlcohols(n int, rng *rand.Rand) []string {
	if n <= 0 || n > len(alcoholCatalog) {
		n = len(alcoholCatalog)
	}
	picks := append([]string(nil), alcoholCatalog...)
	rng.Shuffle(len(picks), func(i, j int) { picks[i], picks[j] = picks[j], picks[i] })
	return picks[:n]
}
