package ai

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pantrypairing/server/internal/domain/pantry"
)

// systemInstruction is sent with every model call.
const systemInstruction = `You are a sophisticated food and alcohol pairing consultant with a "French Chic" minimalist aesthetic.

CORE RULES:
1. LANGUAGE: The title 'Pantry Pairing' is the ONLY allowed non-Korean title. All other content MUST be in Korean. Use English only if technically necessary (e.g. variable names).
2. TONE: Sophisticated, concise, essential information only.
3. DATA SOURCE: Do NOT use Google Search or external tools. Use your internal culinary knowledge for all recipes and pairings.
4. FORMAT: Strictly output JSON as requested.`

// brandCategory lists concrete brands the model should pick from.
type brandCategory struct {
	Name   string
	Brands []string
}

var recipeBrandCatalog = []brandCategory{
	{"Beer", []string{"카스", "기네스", "하이네켄", "에델바이스", "호가든", "스텔라 아르투아", "크로넨부르크", "칼스버그", "버드와이저", "하이트", "OB 라거", "카스 프레시", "테라", "클라우드", "아사히", "키린", "삿포로", "하이네켄 다크", "기네스 드래프트", "하이네켄 실버", "코로나", "하이네켄 0.0"}},
	{"Soju", []string{"참이슬", "참이슬 후레쉬", "진로", "좋은데이", "처음처럼", "이슬톡톡", "한라산", "안동소주", "화요", "오비", "대선", "진로 이즈백", "참이슬 순", "좋은데이 프리미엄"}},
	{"Whiskey", []string{"조니 워커 블랙", "조니 워커 레드", "조니 워커 골드", "잭 다니엘", "짐빔", "크라운 로얄", "싱글몰트 위스키", "피트 위스키", "블렌디드 위스키", "맥켈란", "글렌피딕", "발렌타인", "시바스 리갈", "발렌타인 12년", "발렌타인 17년", "발렌타인 21년", "조니 워커 플래티넘", "잭 다니엘 허니"}},
	{"Wine", []string{"카베르네 소비뇽", "메를로", "피노 누아", "샤르도네", "소비뇽 블랑", "리슬링", "샴페인", "프로세코", "모스카토", "피노 그리지오", "샤블리", "말벡", "시라", "까베르네 프랑"}},
	{"Makgeolli", []string{"서울 장수 생막걸리", "동동주", "이천쌀막걸리", "서울의 막걸리", "백세주", "문배주", "솔송주", "생막걸리", "탁주"}},
	{"Sake", []string{"다이긴조", "준마이", "혼죠조", "쿠보타 만슈", "하쿠쓰루", "기쿠마사"}},
	{"Cocktails", []string{"모히토", "마가리타", "올드 패션드", "위스키 사워", "진 토닉", "마티니", "블러디 메리", "마이타이"}},
	{"Other", []string{"청주", "보드카", "럼", "진", "데킬라", "브랜디", "코냑"}},
}

var pairingBrandCatalog = []brandCategory{
	{"Beer", []string{"카스", "기네스", "하이네켄", "에델바이스", "호가든", "스텔라 아르투아", "크로넨부르크", "칼스버그", "버드와이저", "하이트", "OB 라거", "카스 프레시", "테라", "클라우드"}},
	{"Soju", []string{"참이슬", "진로", "좋은데이", "처음처럼", "이슬톡톡", "한라산", "안동소주", "화요", "오비", "대선"}},
	{"Whiskey", []string{"조니 워커 블랙/레드/골드", "잭 다니엘", "짐빔", "크라운 로얄", "싱글몰트 위스키", "피트 위스키", "블렌디드 위스키", "맥켈란", "글렌피딕", "발렌타인", "시바스 리갈"}},
	{"Wine", []string{"카베르네 소비뇽", "메를로", "피노 누아", "샤르도네", "소비뇽 블랑", "리슬링", "샴페인", "프로세코", "모스카토", "피노 그리지오"}},
	{"Makgeolli", []string{"막걸리", "동동주", "이천쌀막걸리", "서울의 막걸리", "백세주"}},
	{"Sake", []string{"다이긴조", "준마이", "혼죠조", "쿠보타 만슈"}},
}

func writeCatalog(b *strings.Builder, indent string, catalog []brandCategory) {
	for _, c := range catalog {
		fmt.Fprintf(b, "%s- %s: %s 등\n", indent, c.Name, strings.Join(c.Brands, ", "))
	}
}

const analysisInstructions = "각 재료에 대해 수량을 추정하고, 적절한 보관 위치('냉장', '냉동', 또는 '실온')를 결정하고, " +
	"일반적인 유통기한(YYYY-MM-DD 형식)을 추정하거나 알 수 없으면 'N/A'를 사용하세요. 모든 응답은 한국어로 작성하세요."

// buildReceiptTextPrompt asks the model to structure OCR output.
func buildReceiptTextPrompt(receiptText string) string {
	return fmt.Sprintf("다음은 영수증에서 추출된 텍스트입니다:\n\n%s\n\n이 텍스트를 분석하여 식품 재료를 식별하세요. %s",
		receiptText, analysisInstructions)
}

// buildVisionPrompt accompanies the raw image when OCR is unavailable.
func buildVisionPrompt() string {
	return "이 영수증이나 냉장고 이미지를 분석하세요.\n보이는 모든 식품 재료를 식별하세요.\n" + analysisInstructions
}

// buildRecommendationPrompt asks for three distinct recipes whose alcohol
// pairings never overlap.
func buildRecommendationPrompt(ingredients []pantry.IngredientDetail) (string, error) {
	stripped := make([]pantry.IngredientDetail, len(ingredients))
	for i, ing := range ingredients {
		ing.ID = ""
		stripped[i] = ing
	}
	ingredientsJSON, err := json.MarshalIndent(stripped, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode ingredients: %w", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Based on this detailed list of my ingredients: %s.\n", ingredientsJSON)
	b.WriteString(`1. Generate 3 COMPLETELY DIFFERENT recipes with DISTINCT flavors, cooking styles, and ingredient combinations.
   - For each recipe, specify EXACT measurements (e.g. 15ml, 200g) for every ingredient.
   - Provide step-by-step cooking instructions in the 'instructions' array.
   - Mark ingredients not in the provided list as 'is_missing: true'.
   - Recipe names must be simple dish names without adjectives, e.g. "참치 김치찌개" (not "얼큰한 콩나물 참치 김치찌개"), "된장찌개" (not "구수한 된장찌개").
   - Recipe names must NOT contain English words or characters.
   - The 3 recipes must have COMPLETELY DIFFERENT flavor profiles (spicy, mild/creamy, rich/hearty, light/fresh) and vary main ingredients and cooking methods (stew, stir-fry, soup, grilled).

2. MOST IMPORTANT: For EACH recipe, recommend 2-3 alcohol pairings SPECIFICALLY tailored to that recipe.
   - Each recipe MUST have COMPLETELY DIFFERENT alcohol recommendations. NO DUPLICATES across recipes.
   - Consider flavor profile, main ingredients, cooking method, richness and serving temperature:
     * Spicy dishes: refreshing beers (카스, 하이트), light soju (참이슬 후레쉬), or sweet wines
     * Rich/heavy dishes: full-bodied wines, whiskey, or strong beers
     * Light/fresh dishes: white wines, light beers, or makgeolli
     * Seafood dishes: white wines, sake, or light beers
     * Meat dishes: red wines, whiskey, or dark beers
   - Recommend SPECIFIC BRAND NAMES and VARIETIES, not generic types, and vary categories across recipes.
   Alcohol categories and brands (use DIFFERENT ones for each recipe):
`)
	writeCatalog(&b, "   ", recipeBrandCatalog)
	b.WriteString(`   - CRITICAL: Recipe 1, Recipe 2, and Recipe 3 must have ZERO overlapping alcohol recommendations.

3. Echo back the provided ingredients in 'input_ingredients_detail' and set 'request_type' to "Recipe_Recommendation".

Rules:
- Use your internal knowledge only.
- Respond strictly in Korean.
- Recipe names must be concise dish names only, no adjectives or English.
- Alcohol pairings must include specific brand names or varieties.
- MOST CRITICAL: the 3 recipes MUST have COMPLETELY DIFFERENT alcohol pairings with ZERO overlap.`)
	return b.String(), nil
}

// buildPairingPrompt asks for five suggestions per category and five popup
// recipes whose ids match the refrigerator suggestions.
func buildPairingPrompt(alcohol string, availableIngredients []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "I want to drink %s. Recommend food pairings in three categories based on your internal culinary knowledge.\n\n", alcohol)
	b.WriteString(`IMPORTANT: If the user names a generic alcohol type (like "맥주", "소주", "위스키", "와인"), suggest SPECIFIC BRAND NAMES and VARIETIES instead of repeating the generic type.

Categories:
`)
	fmt.Fprintf(&b, "1. 'refrigerator_version': Suggest EXACTLY 5 sophisticated dishes using these ingredients: [%s].\n", strings.Join(availableIngredients, ", "))
	b.WriteString(`   - Give each a unique 'id': "R01", "R02", "R03", "R04", "R05".
   - Set 'is_detailed_available' to true.
`)
	fmt.Fprintf(&b, "   - Provide a one sentence 'reason' why the dish pairs well with %s.\n", alcohol)
	b.WriteString(`2. 'convenience_store_version': Suggest EXACTLY 5 items easily found in a Korean convenience store, each with a 'reason'.
3. 'delivery_version': Suggest EXACTLY 5 delivery food options, each with a 'reason'.

Alcohol brand examples to consider:
`)
	writeCatalog(&b, "", pairingBrandCatalog)
	b.WriteString(`
Crucial step:
For the 5 dishes in 'refrigerator_version', provide their full recipes in 'detailed_popup_recipes' with exact measurements and step-by-step instructions.
The 'id' of each entry in 'detailed_popup_recipes' must match the 'id' in 'refrigerator_version'. Provide EXACTLY 5 recipes.
Set 'request_type' to "Alcohol_Pairing" and echo the requested alcohol in 'selected_alcohol'.

Rules:
- Respond strictly in Korean.
- Do NOT use Google Search.
- Always suggest specific brand names or varieties, not just generic types.`)
	return b.String()
}
