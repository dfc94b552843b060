package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Register mounts the API v1 routes on r. authenticate guards every route
// except session creation; aiLimit additionally guards the AI commands.
func (h *Handlers) Register(r chi.Router, authenticate, aiLimit func(http.Handler) http.Handler) {
	r.Post("/sessions", h.CreateSession)

	r.Group(func(r chi.Router) {
		r.Use(authenticate)

		r.Delete("/session", h.EndSession)
		r.Get("/events", h.Events)

		r.Route("/state", func(r chi.Router) {
			r.Get("/", h.State)
			r.Put("/tab", h.SetTab)
			r.Delete("/notice", h.ClearNotice)
			r.Delete("/error", h.ClearError)
		})

		r.Route("/pantry", func(r chi.Router) {
			r.Get("/", h.ListPantry)
			r.Post("/", h.AddIngredient)
			r.Delete("/", h.ClearStorage)
			r.With(aiLimit).Post("/analysis", h.AnalyzeImage)
			r.Post("/analysis/confirm", h.ConfirmAnalysis)
			r.Delete("/analysis", h.DiscardAnalysis)
			r.Put("/{id}", h.UpdateIngredient)
			r.Delete("/{id}", h.RemoveIngredient)
		})

		r.Route("/expiry", func(r chi.Router) {
			r.Get("/", h.Expiry)
			r.Delete("/", h.DismissExpiry)
			r.With(aiLimit).Post("/recommendations", h.RecommendForExpiring)
		})

		r.Route("/recipes", func(r chi.Router) {
			r.Get("/recommendations", h.Recommendations)
			r.With(aiLimit).Post("/recommendations", h.RecommendRecipes)
		})

		r.Route("/pairings", func(r chi.Router) {
			r.Get("/", h.Pairing)
			r.With(aiLimit).Post("/", h.RecommendPairings)
			r.Get("/suggestions", h.PairingSuggestions)
			r.Get("/recipes/{id}", h.PairingRecipe)
		})

		r.Route("/bookmarks", func(r chi.Router) {
			r.Get("/", h.ListBookmarks)
			r.Post("/", h.SaveBookmark)
			r.Get("/tags", h.BookmarkTags)
			r.Post("/toggle", h.ToggleBookmark)

			r.Route("/draft", func(r chi.Router) {
				r.Get("/", h.Draft)
				r.Put("/", h.SetDraftStatus)
				r.Delete("/", h.CancelDraft)
				r.Post("/tags", h.AddDraftTag)
				r.Delete("/tags/{tag}", h.RemoveDraftTag)
				r.Post("/save", h.SaveDraft)
			})

			r.Delete("/{id}", h.RemoveBookmark)
			r.Put("/{id}/status", h.SetBookmarkStatus)
			r.Post("/{id}/tags", h.AddBookmarkTag)
			r.Delete("/{id}/tags/{tag}", h.RemoveBookmarkTag)
			r.Post("/{id}/edit", h.EditBookmark)
		})

		r.Route("/shopping", func(r chi.Router) {
			r.Get("/", h.ShoppingList)
			r.Post("/", h.AddShoppingItem)
			r.Delete("/{item}", h.RemoveShoppingItem)
			r.Get("/{item}/link", h.PurchaseLink)
		})
	})
}
