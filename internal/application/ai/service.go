// Package ai is the gateway between the session store and the generative
// model: it builds prompts, declares response schemas, retries transient
// failures and normalizes every error into the user-facing taxonomy.
package ai

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/pantrypairing/server/internal/domain/pantry"
	"github.com/pantrypairing/server/internal/domain/recipe"
	"github.com/pantrypairing/server/internal/ports/outbound"
	"github.com/pantrypairing/server/pkg/errors"
)

const tracerName = "github.com/pantrypairing/server/internal/application/ai"

// Config tunes the gateway.
type Config struct {
	Retry RetryPolicy
	// CacheTTL enables response caching of recommendations and pairings when
	// positive and a cache is supplied.
	CacheTTL time.Duration
}

// Gateway implements inbound.AIGateway.
type Gateway struct {
	model    outbound.GenerativeModel
	ocr      outbound.ReceiptOCR
	cache    outbound.CacheRepository
	recorder Recorder
	config   Config
	tracer   trace.Tracer
	logger   *zap.Logger

	// timer is nil outside tests; backoff then uses a real timer.
	timer backoff.Timer
}

// NewGateway creates a gateway. ocr, cache and recorder may be nil.
func NewGateway(
	model outbound.GenerativeModel,
	ocr outbound.ReceiptOCR,
	cache outbound.CacheRepository,
	recorder Recorder,
	config Config,
	logger *zap.Logger,
) *Gateway {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	if config.Retry.MaxAttempts == 0 {
		config.Retry = DefaultRetryPolicy()
	}

	namedLogger := logger.Named("ai-gateway")
	namedLogger.Info("AI gateway initialized",
		zap.String("model", model.Name()),
		zap.Bool("ocr_enabled", ocr != nil),
		zap.Bool("cache_enabled", cache != nil && config.CacheTTL > 0),
		zap.Int("max_attempts", config.Retry.MaxAttempts),
		zap.Duration("base_delay", config.Retry.BaseDelay),
	)

	return &Gateway{
		model:    model,
		ocr:      ocr,
		cache:    cache,
		recorder: recorder,
		config:   config,
		tracer:   otel.Tracer(tracerName),
		logger:   namedLogger,
	}
}

// AnalyzeImage identifies ingredients on a receipt or fridge photo. Receipt
// text from the OCR collaborator is preferred; when OCR is unavailable or
// fails the image itself goes to the model's vision input.
func (g *Gateway) AnalyzeImage(ctx context.Context, img outbound.Image) ([]pantry.IngredientDetail, error) {
	const op = errors.OpAnalysis
	ctx, span := g.startSpan(ctx, "AnalyzeImage")
	defer span.End()
	start := time.Now()

	if len(img.Data) == 0 {
		return nil, errors.NewValidationError("이미지를 선택해주세요.").WithOperation(op)
	}

	req := outbound.GenerationRequest{
		SystemInstruction: systemInstruction,
		SchemaName:        "ingredient_analysis",
		Schema:            ingredientAnalysisSchema,
	}
	if text, ok := g.extractReceiptText(ctx, img); ok {
		req.Prompt = buildReceiptTextPrompt(text)
		span.SetAttributes(attribute.String("ai.input", "ocr_text"))
	} else {
		req.Prompt = buildVisionPrompt()
		req.Image = &img
		span.SetAttributes(attribute.String("ai.input", "vision"))
	}

	raw, err := g.generate(ctx, op, req)
	if err != nil {
		return nil, g.fail(span, op, start, err)
	}

	resp, err := decodeStrict[pantry.AnalysisResponse](op, raw)
	if err != nil {
		return nil, g.fail(span, op, start, err)
	}

	items := make([]pantry.IngredientDetail, 0, len(resp.DetectedIngredients))
	for _, d := range resp.DetectedIngredients {
		d.ID = ""
		d.Item = strings.TrimSpace(d.Item)
		d.Quantity = strings.TrimSpace(d.Quantity)
		expiration, err := pantry.NormalizeExpiration(d.ExpirationDate)
		if err != nil {
			g.logger.Warn("Unparseable expiration date from model, treating as unknown",
				zap.String("item", d.Item),
				zap.String("expiration_date", d.ExpirationDate),
			)
			expiration = pantry.ExpirationUnknown
		}
		d.ExpirationDate = expiration
		items = append(items, d)
	}

	g.succeed(op, start, OutcomeSuccess)
	g.logger.Info("Image analyzed", zap.Int("ingredients", len(items)), zap.Duration("duration", time.Since(start)))
	return items, nil
}

// RecommendRecipes asks for three recipes built from the given ingredients.
func (g *Gateway) RecommendRecipes(ctx context.Context, ingredients []pantry.IngredientDetail) (*recipe.RecommendationResponse, error) {
	const op = errors.OpRecommendation
	ctx, span := g.startSpan(ctx, "RecommendRecipes")
	defer span.End()
	start := time.Now()

	if len(ingredients) == 0 {
		return nil, errors.NewValidationError("추천받을 재료를 선택해주세요.").WithOperation(op)
	}
	span.SetAttributes(attribute.Int("ai.ingredients", len(ingredients)))

	prompt, err := buildRecommendationPrompt(ingredients)
	if err != nil {
		return nil, g.fail(span, op, start, errors.NewInternalError("failed to build prompt").WithCause(err))
	}
	req := outbound.GenerationRequest{
		SystemInstruction: systemInstruction,
		Prompt:            prompt,
		SchemaName:        "recipe_recommendation",
		Schema:            recipeRecommendationSchema,
	}

	key := g.cacheKey(op, prompt)
	var cached recipe.RecommendationResponse
	if g.fromCache(ctx, key, &cached) {
		g.succeed(op, start, OutcomeCacheHit)
		return &cached, nil
	}

	raw, err := g.generate(ctx, op, req)
	if err != nil {
		return nil, g.fail(span, op, start, err)
	}
	resp, err := decodeStrict[recipe.RecommendationResponse](op, raw)
	if err != nil {
		return nil, g.fail(span, op, start, err)
	}

	g.reportConformance(op, resp.Conformance())
	g.toCache(ctx, key, resp)
	g.succeed(op, start, OutcomeSuccess)
	g.logger.Info("Recipes recommended",
		zap.Int("recipes", len(resp.RecipeRecommendations)),
		zap.Duration("duration", time.Since(start)),
	)
	return resp, nil
}

// RecommendPairings asks for dishes that go with alcohol, five per category.
func (g *Gateway) RecommendPairings(ctx context.Context, alcohol string, availableIngredients []string) (*recipe.PairingResponse, error) {
	const op = errors.OpPairing
	ctx, span := g.startSpan(ctx, "RecommendPairings")
	defer span.End()
	start := time.Now()

	alcohol = strings.TrimSpace(alcohol)
	if alcohol == "" {
		return nil, errors.NewValidationError(recipe.ErrEmptyAlcohol.Error()).WithOperation(op)
	}
	span.SetAttributes(attribute.String("ai.alcohol", alcohol))

	prompt := buildPairingPrompt(alcohol, availableIngredients)
	req := outbound.GenerationRequest{
		SystemInstruction: systemInstruction,
		Prompt:            prompt,
		SchemaName:        "alcohol_pairing",
		Schema:            alcoholPairingResponseSchema,
	}

	key := g.cacheKey(op, prompt)
	var cached recipe.PairingResponse
	if g.fromCache(ctx, key, &cached) {
		g.succeed(op, start, OutcomeCacheHit)
		return &cached, nil
	}

	raw, err := g.generate(ctx, op, req)
	if err != nil {
		return nil, g.fail(span, op, start, err)
	}
	resp, err := decodeStrict[recipe.PairingResponse](op, raw)
	if err != nil {
		return nil, g.fail(span, op, start, err)
	}

	g.reportConformance(op, resp.Conformance())
	g.toCache(ctx, key, resp)
	g.succeed(op, start, OutcomeSuccess)
	g.logger.Info("Pairings recommended",
		zap.String("alcohol", alcohol),
		zap.Int("popup_recipes", len(resp.DetailedPopupRecipes)),
		zap.Duration("duration", time.Since(start)),
	)
	return resp, nil
}

// extractReceiptText never fails the analysis; ok is false when the vision
// path should be used instead.
func (g *Gateway) extractReceiptText(ctx context.Context, img outbound.Image) (string, bool) {
	if g.ocr == nil {
		g.recorder.IncOCRFallback()
		return "", false
	}
	text, err := g.ocr.ExtractText(ctx, img)
	if err != nil || strings.TrimSpace(text) == "" {
		g.logger.Warn("Receipt OCR failed, falling back to vision analysis", zap.Error(err))
		g.recorder.IncOCRFallback()
		return "", false
	}
	g.logger.Debug("Receipt text extracted", zap.Int("length", len(text)))
	return text, true
}

// generate calls the model under the retry policy.
func (g *Gateway) generate(ctx context.Context, op errors.Operation, req outbound.GenerationRequest) (string, error) {
	var raw string
	err := g.config.Retry.retry(ctx, g.timer, func() error {
		text, err := g.model.Generate(ctx, req)
		if err != nil {
			return err
		}
		raw = text
		return nil
	}, func(attempt int, err error, next time.Duration) {
		g.recorder.IncRetry(op)
		g.logger.Warn("Transient model failure, retrying",
			zap.String("operation", string(op)),
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", g.config.Retry.MaxAttempts),
			zap.Duration("delay", next),
			zap.Error(err),
		)
	})
	return raw, err
}

func (g *Gateway) fail(span trace.Span, op errors.Operation, start time.Time, err error) error {
	appErr := Normalize(op, g.model.Name(), err)
	span.RecordError(err)
	span.SetStatus(codes.Error, string(appErr.Code))
	g.recorder.ObserveRequest(op, OutcomeError, time.Since(start))
	g.logger.Error("AI operation failed",
		zap.String("operation", string(op)),
		zap.String("code", string(appErr.Code)),
		zap.Duration("duration", time.Since(start)),
		zap.Error(err),
	)
	return appErr
}

func (g *Gateway) succeed(op errors.Operation, start time.Time, outcome string) {
	g.recorder.ObserveRequest(op, outcome, time.Since(start))
}

func (g *Gateway) reportConformance(op errors.Operation, violations []string) {
	if len(violations) == 0 {
		return
	}
	g.recorder.AddConformanceViolations(op, len(violations))
	g.logger.Warn("Model response deviates from requested shape",
		zap.String("operation", string(op)),
		zap.Strings("violations", violations),
	)
}

func (g *Gateway) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return g.tracer.Start(ctx, "ai."+name,
		trace.WithAttributes(attribute.String("ai.model", g.model.Name())),
	)
}

func (g *Gateway) cachingEnabled() bool {
	return g.cache != nil && g.config.CacheTTL > 0
}

func (g *Gateway) cacheKey(op errors.Operation, prompt string) string {
	sum := sha256.Sum256([]byte(string(op) + "\x00" + g.model.Name() + "\x00" + prompt))
	return "ai:" + string(op) + ":" + hex.EncodeToString(sum[:])
}

func (g *Gateway) fromCache(ctx context.Context, key string, dst interface{}) bool {
	if !g.cachingEnabled() {
		return false
	}
	data, err := g.cache.Get(ctx, key)
	if err != nil {
		return false
	}
	if err := json.Unmarshal(data, dst); err != nil {
		g.logger.Warn("Discarding undecodable cache entry", zap.String("key", key), zap.Error(err))
		_ = g.cache.Delete(ctx, key)
		return false
	}
	g.logger.Debug("AI response served from cache", zap.String("key", key))
	return true
}

func (g *Gateway) toCache(ctx context.Context, key string, value interface{}) {
	if !g.cachingEnabled() {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := g.cache.Set(ctx, key, data, g.config.CacheTTL); err != nil {
		g.logger.Warn("Failed to cache AI response", zap.String("key", key), zap.Error(err))
	}
}
