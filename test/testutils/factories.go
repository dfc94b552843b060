// Package testutils provides test data factories for consistent test data generation
package testutils

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/brianvoe/gofakeit/v6"

	"github.com/pantrypairing/server/internal/domain/pantry"
	"github.com/pantrypairing/server/internal/domain/recipe"
)

// Korean pantry staples used when a realistic item name matters.
var pantryStaples = []string{"우유", "계란", "두부", "김치", "양파", "대파", "돼지고기", "참치캔", "애호박", "감자", "버터", "치즈"}

// Factory builds domain fixtures from a seeded faker so failures reproduce.
type Factory struct {
	faker *gofakeit.Faker
}

// NewFactory creates a new factory with seeded faker
func NewFactory(seed int64) *Factory {
	return &Factory{faker: gofakeit.New(seed)}
}

// Ingredient returns a valid ingredient with an ID and known expiration.
func (f *Factory) Ingredient() pantry.IngredientDetail {
	item, _ := pantry.NewIngredient(f.IngredientInput())
	return item
}

// IngredientInput returns valid user input for a pantry entry.
func (f *Factory) IngredientInput() pantry.Input {
	date := f.faker.DateRange(
		mustDate("2024-01-01"),
		mustDate("2024-12-31"),
	)
	return pantry.Input{
		Item:           f.faker.RandomString(pantryStaples),
		Quantity:       fmt.Sprintf("%d개", f.faker.Number(1, 12)),
		Storage:        string(pantry.StorageLocations[f.faker.Number(0, len(pantry.StorageLocations)-1)]),
		ExpirationDate: date.Format(pantry.DateLayout),
	}
}

// Recipe returns a complete recipe. id may be empty.
func (f *Factory) Recipe(id string) recipe.Recipe {
	return NewRecipeBuilder().
		WithID(id).
		WithName(f.faker.RandomString(pantryStaples)+" "+f.faker.RandomString([]string{"볶음", "찌개", "구이", "전", "샐러드"})+fmt.Sprintf(" %d", f.faker.Number(1, 9999))).
		WithPairing(f.faker.BeerName(), f.faker.Sentence(5)).
		Build()
}

// RecommendationResponse returns a response with three recipes whose
// pairings do not overlap.
func (f *Factory) RecommendationResponse(ingredients ...pantry.IngredientDetail) *recipe.RecommendationResponse {
	resp := &recipe.RecommendationResponse{
		RequestType:            recipe.RequestTypeRecommendation,
		InputIngredientsDetail: ingredients,
	}
	if resp.InputIngredientsDetail == nil {
		resp.InputIngredientsDetail = []pantry.IngredientDetail{}
	}
	for i := 0; i < recipe.RecommendedRecipeCount; i++ {
		r := f.Recipe("")
		r.AlcoholPairings = []recipe.AlcoholPairing{{Name: fmt.Sprintf("pairing-%d", i), Reason: f.faker.Sentence(4)}}
		resp.RecipeRecommendations = append(resp.RecipeRecommendations, r)
	}
	return resp
}

// PairingResponse returns a conformant pairing response: five items per
// category and popup recipes R01..R05 matching the refrigerator items.
func (f *Factory) PairingResponse(alcohol string) *recipe.PairingResponse {
	resp := &recipe.PairingResponse{
		RequestType:     recipe.RequestTypePairing,
		SelectedAlcohol: alcohol,
	}
	for i := 1; i <= recipe.PairingItemsPerCategory; i++ {
		id := fmt.Sprintf("R%02d", i)
		popup := f.Recipe(id)
		resp.Recommendations.RefrigeratorVersion = append(resp.Recommendations.RefrigeratorVersion, recipe.PairingItem{
			ID:                  id,
			Name:                popup.Name,
			IsDetailedAvailable: true,
			Reason:              f.faker.Sentence(6),
		})
		resp.Recommendations.ConvenienceStoreVersion = append(resp.Recommendations.ConvenienceStoreVersion, recipe.SimplePairingItem{
			Name:   f.faker.Snack(),
			Reason: f.faker.Sentence(6),
		})
		resp.Recommendations.DeliveryVersion = append(resp.Recommendations.DeliveryVersion, recipe.SimplePairingItem{
			Name:   f.faker.Dinner(),
			Reason: f.faker.Sentence(6),
		})
		resp.DetailedPopupRecipes = append(resp.DetailedPopupRecipes, popup)
	}
	return resp
}

// AnalysisJSON renders detected ingredients the way the model returns them.
func (f *Factory) AnalysisJSON(items ...pantry.IngredientDetail) string {
	for i := range items {
		items[i].ID = ""
	}
	return MustJSON(pantry.AnalysisResponse{DetectedIngredients: items})
}

// RecipeBuilder provides a fluent interface for building test recipes
type RecipeBuilder struct {
	recipe recipe.Recipe
}

// NewRecipeBuilder creates a new recipe builder with default values
func NewRecipeBuilder() *RecipeBuilder {
	return &RecipeBuilder{recipe: recipe.Recipe{
		Name:           "계란볶음밥",
		RequiredEffort: "쉬움 (15분)",
		CookingSummary: "남은 밥과 계란으로 빠르게 만드는 볶음밥입니다.",
		Instructions:   []string{"팬에 기름을 두릅니다.", "계란을 스크램블합니다.", "밥을 넣고 볶습니다."},
		Ingredients: []recipe.RecipeIngredient{
			{Item: "계란", Measurement: "2개"},
			{Item: "밥", Measurement: "200g"},
			{Item: "대파", Measurement: "10g", IsMissing: true},
		},
	}}
}

// WithID sets the recipe id
func (rb *RecipeBuilder) WithID(id string) *RecipeBuilder {
	rb.recipe.ID = id
	return rb
}

// WithName sets the recipe name
func (rb *RecipeBuilder) WithName(name string) *RecipeBuilder {
	rb.recipe.Name = name
	return rb
}

// WithPairing appends an alcohol pairing
func (rb *RecipeBuilder) WithPairing(name, reason string) *RecipeBuilder {
	rb.recipe.AlcoholPairings = append(rb.recipe.AlcoholPairings, recipe.AlcoholPairing{Name: name, Reason: reason})
	return rb
}

// Build returns the recipe
func (rb *RecipeBuilder) Build() recipe.Recipe {
	return rb.recipe.Clone()
}

// MustJSON marshals v or panics.
func MustJSON(v interface{}) string {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return string(data)
}

func mustDate(s string) time.Time {
	t, err := time.Parse(pantry.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}
