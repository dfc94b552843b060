package pantry

// AnalysisResponse is the model's answer to an image or receipt analysis.
type AnalysisResponse struct {
	DetectedIngredients []IngredientDetail `json:"detected_ingredients" validate:"required,dive"`
}
