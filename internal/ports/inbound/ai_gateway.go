// Package inbound defines the interfaces for inbound ports (primary/driving adapters)
// These are the interfaces that the application exposes to the outside world
package inbound

import (
	"context"

	"github.com/pantrypairing/server/internal/domain/pantry"
	"github.com/pantrypairing/server/internal/domain/recipe"
	"github.com/pantrypairing/server/internal/ports/outbound"
)

// AIGateway turns domain requests into model calls. Every error it returns is
// a normalized *errors.AppError tagged with the failing operation.
type AIGateway interface {
	AnalyzeImage(ctx context.Context, img outbound.Image) ([]pantry.IngredientDetail, error)
	RecommendRecipes(ctx context.Context, ingredients []pantry.IngredientDetail) (*recipe.RecommendationResponse, error)
	RecommendPairings(ctx context.Context, alcohol string, availableIngredients []string) (*recipe.PairingResponse, error)
}
