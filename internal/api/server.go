package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"round/internal/auth"
	"round/internal/db"
	"round/internal/round"
	"round/internal/telemetry"
)

type Server struct {
	DB              Store
	Verifier        auth.Verifier
	Notifier        Notifier
	Rules           round.IdentityRules
	DefaultCurrency string

	now func() time.Time
}

type Store interface {
	ListAssetsForUser(ctx context.Context, userID string) ([]db.Asset, error)
	GetAssetForUser(ctx context.Context, userID, assetID string) (db.Asset, bool, error)
	InsertAsset(ctx context.Context, userID string, in db.AssetInput) (string, error)
	UpdateAssetForUser(ctx context.Context, userID, assetID string, in db.AssetInput) (bool, error)
	SetEstimatedValueForUser(ctx context.Context, userID, assetID string, value float64, currency string) (bool, error)
	DeleteAssetForUser(ctx context.Context, userID, assetID string) (bool, error)
	ListCategories(ctx context.Context) ([]db.Category, error)
	SearchAssetTypes(ctx context.Context, query string, limit int) ([]db.AssetType, error)
	FetchUserSettings(ctx context.Context, userID string) (db.UserSettings, bool, error)
	FetchFXRates(ctx context.Context, base string) ([]db.FXRate, error)
}

// Notifier receives asset mutations for the websocket feed.
type Notifier interface {
	NotifyAsset(userID, assetID, change string) int
}

type noopNotifier struct{}

func (noopNotifier) NotifyAsset(string, string, string) int { return 0 }

type contextKey string

const userIDContextKey contextKey = "userID"

func NewServer(store Store, verifier auth.Verifier, notifier Notifier) *Server {
	if notifier == nil {
		notifier = noopNotifier{}
	}
	return &Server{
		DB:              store,
		Verifier:        verifier,
		Notifier:        notifier,
		Rules:           round.StandardRules,
		DefaultCurrency: round.DefaultCurrency,
		now:             time.Now,
	}
}

func (s *Server) Mount(r chi.Router) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(telemetry.APIRequestMetricsMiddleware)
		r.Use(s.authMiddleware)
		r.Get("/dashboard", s.handleDashboard)
		r.Get("/assets", s.handleListAssets)
		r.Post("/assets", s.handleCreateAsset)
		r.Get("/assets/{assetID}", s.handleGetAsset)
		r.Patch("/assets/{assetID}", s.handleUpdateAsset)
		r.Delete("/assets/{assetID}", s.handleDeleteAsset)
		r.Post("/assets/{assetID}/magic-import", s.handleMagicImport)
		r.Put("/assets/{assetID}/valuation", s.handleSetValuation)
		r.Post("/insights/preview", s.handlePreviewInsights)
		r.Get("/categories", s.handleListCategories)
		r.Get("/asset-types/search", s.handleSearchAssetTypes)
	})
}

func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := extractToken(r)
		if token == "" {
			writeError(w, http.StatusUnauthorized, "missing auth token")
			return
		}

		claims, err := s.Verifier.Verify(r.Context(), token)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid auth token")
			return
		}

		ctx := context.WithValue(r.Context(), userIDContextKey, claims.Subject)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func userIDFromContext(ctx context.Context) string {
	userID, _ := ctx.Value(userIDContextKey).(string)
	return strings.TrimSpace(userID)
}

func extractToken(r *http.Request) string {
	authz := strings.TrimSpace(r.Header.Get("Authorization"))
	if strings.HasPrefix(strings.ToLower(authz), "bearer ") {
		return strings.TrimSpace(authz[7:])
	}
	return ""
}

// evaluate runs the heuristics with the server's rules and counts the
// resulting identity level.
func (s *Server) evaluate(a round.Asset) round.Insights {
	insights := round.Evaluate(a, s.Rules)
	telemetry.IdentityEvaluated(string(insights.Identity.Level))
	return insights
}

type apiError struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, apiError{Error: message})
}

func decodeJSONBody(r *http.Request, dst any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return err
	}
	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		return fmt.Errorf("request body must contain a single JSON object")
	}
	return nil
}

func parseAssetID(r *http.Request) (string, error) {
	value := strings.TrimSpace(chi.URLParam(r, "assetID"))
	parsed, err := uuid.Parse(value)
	if err != nil {
		return "", fmt.Errorf("invalid asset id")
	}
	return parsed.String(), nil
}

func parseTimestamp(value string) (time.Time, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return time.Time{}, errors.New("empty timestamp")
	}
	parsed, ok := round.ParseDate(trimmed)
	if !ok {
		return time.Time{}, errors.New("invalid timestamp")
	}
	return parsed.UTC(), nil
}
