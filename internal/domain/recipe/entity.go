// Package recipe holds the recipe, bookmark and pairing types exchanged with
// the generative model and kept in a session.
package recipe

// Recipe is produced by the model and never modified afterwards. ID is only
// set for pairing popup recipes.
type Recipe struct {
	ID              string             `json:"id,omitempty"`
	Name            string             `json:"name" validate:"required"`
	RequiredEffort  string             `json:"required_effort" validate:"required"`
	CookingSummary  string             `json:"cooking_summary" validate:"required"`
	Instructions    []string           `json:"instructions" validate:"required,min=1,dive,required"`
	Ingredients     []RecipeIngredient `json:"ingredients" validate:"required,min=1,dive"`
	AlcoholPairings []AlcoholPairing   `json:"alcohol_pairings,omitempty" validate:"omitempty,dive"`
}

// MissingIngredients returns the items the recipe needs but the pantry lacks.
func (r Recipe) MissingIngredients() []string {
	var missing []string
	for _, ing := range r.Ingredients {
		if ing.IsMissing {
			missing = append(missing, ing.Item)
		}
	}
	return missing
}

// Clone returns a deep copy so callers cannot alias slices of a stored recipe.
func (r Recipe) Clone() Recipe {
	out := r
	out.Instructions = append([]string(nil), r.Instructions...)
	out.Ingredients = append([]RecipeIngredient(nil), r.Ingredients...)
	if r.AlcoholPairings != nil {
		out.AlcoholPairings = append([]AlcoholPairing(nil), r.AlcoholPairings...)
	}
	return out
}
