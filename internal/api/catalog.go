package api

import (
	"net/http"
	"strconv"
	"strings"

	"round/internal/dashboard"
	"round/internal/round"
)

type categoryResponse struct {
	ID       string             `json:"id"`
	Name     string             `json:"name"`
	HomeLike bool               `json:"home_like"`
	Profile  round.ValueProfile `json:"profile"`
}

type assetTypeResponse struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Brand        string `json:"brand"`
	ModelName    string `json:"model_name"`
	CategoryName string `json:"category_name"`
}

type previewResponse struct {
	round.Insights
	Valuation        round.Valuation `json:"valuation_preview"`
	ValuationDisplay string          `json:"valuation_preview_display"`
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	userID := userIDFromContext(r.Context())
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "missing user context")
		return
	}

	base := s.DefaultCurrency
	settings, found, err := s.DB.FetchUserSettings(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load settings")
		return
	}
	if found && strings.TrimSpace(settings.BaseCurrency) != "" {
		base = strings.ToUpper(strings.TrimSpace(settings.BaseCurrency))
	}

	assets, err := s.DB.ListAssetsForUser(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load assets")
		return
	}

	fxRates, err := s.DB.FetchFXRates(r.Context(), base)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load fx rates")
		return
	}
	rates := make(dashboard.Rates, len(fxRates))
	for _, rate := range fxRates {
		rates[rate.Quote] = rate.Rate
	}

	items := make([]dashboard.Item, 0, len(assets))
	for _, asset := range assets {
		items = append(items, dashboard.Item{ID: asset.ID, Asset: toRoundAsset(asset)})
	}

	writeJSON(w, http.StatusOK, dashboard.Summarize(items, base, rates, s.Rules))
}

// handlePreviewInsights scores an unsaved asset form.
func (s *Server) handlePreviewInsights(w http.ResponseWriter, r *http.Request) {
	var asset round.Asset
	if err := decodeJSONBody(r, &asset); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	valuation := round.ComputeRuleBasedValuation(asset, s.now())
	writeJSON(w, http.StatusOK, previewResponse{
		Insights:         s.evaluate(asset),
		Valuation:        valuation,
		ValuationDisplay: valuation.Display(),
	})
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := s.DB.ListCategories(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load categories")
		return
	}

	response := make([]categoryResponse, 0, len(categories))
	for _, category := range categories {
		response = append(response, categoryResponse{
			ID:       category.ID,
			Name:     category.Name,
			HomeLike: round.IsHomeLike(category.Name),
			Profile:  round.InferValueProfile(category.Name),
		})
	}
	writeJSON(w, http.StatusOK, response)
}

func (s *Server) handleSearchAssetTypes(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))

	limit := 20
	if rawLimit := strings.TrimSpace(r.URL.Query().Get("limit")); rawLimit != "" {
		parsedLimit, err := strconv.Atoi(rawLimit)
		if err != nil || parsedLimit <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		if parsedLimit > 100 {
			parsedLimit = 100
		}
		limit = parsedLimit
	}

	assetTypes, err := s.DB.SearchAssetTypes(r.Context(), query, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to search asset types")
		return
	}

	response := make([]assetTypeResponse, 0, len(assetTypes))
	for _, assetType := range assetTypes {
		response = append(response, assetTypeResponse{
			ID:           assetType.ID,
			Name:         assetType.Name,
			Brand:        assetType.Brand,
			ModelName:    assetType.ModelName,
			CategoryName: assetType.CategoryName,
		})
	}
	writeJSON(w, http.StatusOK, response)
}
