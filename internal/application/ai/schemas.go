package ai

import "github.com/pantrypairing/server/internal/ports/outbound"

func str(description string) *outbound.Schema {
	return &outbound.Schema{Type: outbound.TypeString, Description: description}
}

func boolean() *outbound.Schema {
	return &outbound.Schema{Type: outbound.TypeBoolean}
}

func arrayOf(items *outbound.Schema, description string) *outbound.Schema {
	return &outbound.Schema{Type: outbound.TypeArray, Items: items, Description: description}
}

func object(properties map[string]*outbound.Schema, required ...string) *outbound.Schema {
	return &outbound.Schema{Type: outbound.TypeObject, Properties: properties, Required: required}
}

var ingredientDetailSchema = object(map[string]*outbound.Schema{
	"item":            str(""),
	"quantity":        str(""),
	"storage":         {Type: outbound.TypeString, Enum: []string{"냉장", "냉동", "실온"}},
	"expiration_date": str("YYYY-MM-DD or N/A"),
}, "item", "quantity", "storage", "expiration_date")

var alcoholPairingSchema = object(map[string]*outbound.Schema{
	"name":   str(""),
	"reason": str(""),
}, "name", "reason")

var recipeSchema = object(map[string]*outbound.Schema{
	"id":              str(""),
	"name":            str(""),
	"required_effort": str(""),
	"cooking_summary": str("A brief 1-2 sentence overview of the dish."),
	"instructions":    arrayOf(str(""), "Step-by-step cooking instructions."),
	"ingredients": arrayOf(object(map[string]*outbound.Schema{
		"item":        str(""),
		"measurement": str("Precise quantity (e.g., 1Tbsp, 200g)"),
		"is_missing":  boolean(),
		"note":        str(""),
	}, "item", "measurement", "is_missing"), ""),
	"alcohol_pairings": arrayOf(alcoholPairingSchema,
		"2-3 specific alcohol pairings tailored to this recipe's unique characteristics"),
}, "name", "required_effort", "cooking_summary", "instructions", "ingredients", "alcohol_pairings")

// ingredientAnalysisSchema describes pantry.AnalysisResponse.
var ingredientAnalysisSchema = object(map[string]*outbound.Schema{
	"detected_ingredients": arrayOf(ingredientDetailSchema, ""),
}, "detected_ingredients")

// recipeRecommendationSchema describes recipe.RecommendationResponse.
var recipeRecommendationSchema = object(map[string]*outbound.Schema{
	"request_type":             str(""),
	"input_ingredients_detail": arrayOf(ingredientDetailSchema, ""),
	"recipe_recommendations":   arrayOf(recipeSchema, ""),
	"alcohol_pairings":         arrayOf(alcoholPairingSchema, ""),
}, "request_type", "input_ingredients_detail", "recipe_recommendations", "alcohol_pairings")

const pairingReason = "Brief explanation (1 sentence) why this food pairs well with the alcohol."

var simplePairingItemSchema = object(map[string]*outbound.Schema{
	"name":   str(""),
	"reason": str(pairingReason),
}, "name", "reason")

// alcoholPairingResponseSchema describes recipe.PairingResponse.
var alcoholPairingResponseSchema = object(map[string]*outbound.Schema{
	"request_type":     str(""),
	"selected_alcohol": str(""),
	"recommendations": object(map[string]*outbound.Schema{
		"refrigerator_version": arrayOf(object(map[string]*outbound.Schema{
			"id":                    str(""),
			"name":                  str(""),
			"is_detailed_available": boolean(),
			"reason":                str(pairingReason),
		}, "id", "name", "is_detailed_available", "reason"), ""),
		"convenience_store_version": arrayOf(simplePairingItemSchema, ""),
		"delivery_version":          arrayOf(simplePairingItemSchema, ""),
	}, "refrigerator_version", "convenience_store_version", "delivery_version"),
	"detailed_popup_recipes": arrayOf(recipeSchema, ""),
}, "request_type", "selected_alcohol", "recommendations", "detailed_popup_recipes")
