package api

import (
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"round/internal/db"
	"round/internal/round"
	"round/internal/telemetry"
	"round/internal/ws"
)

const dateLayout = "2006-01-02"

type assetResponse struct {
	ID                    string   `json:"id"`
	Title                 string   `json:"title"`
	CategoryID            *string  `json:"category_id"`
	CategoryName          string   `json:"category_name"`
	Brand                 string   `json:"brand"`
	ModelName             string   `json:"model_name"`
	SerialNumber          string   `json:"serial_number"`
	PurchasePrice         *float64 `json:"purchase_price"`
	PurchaseCurrency      string   `json:"purchase_currency"`
	PurchaseDate          string   `json:"purchase_date"`
	CurrentEstimatedValue *float64 `json:"current_estimated_value"`
	EstimateCurrency      string   `json:"estimate_currency"`
	PurchaseURL           string   `json:"purchase_url"`
	ReceiptURL            string   `json:"receipt_url"`
	Notes                 string   `json:"notes"`
	CurrentCondition      string   `json:"current_condition"`
	AssetTypeID           *string  `json:"asset_type_id"`
	AddressCity           string   `json:"address_city"`
	AddressCountry        string   `json:"address_country"`
	CreatedAt             string   `json:"created_at"`
	UpdatedAt             string   `json:"updated_at"`

	Profile   round.ValueProfile `json:"profile"`
	Identity  round.Identity     `json:"identity"`
	Readiness round.Readiness    `json:"readiness"`
}

type assetDetailResponse struct {
	assetResponse
	HomeLike         bool            `json:"home_like"`
	Valuation        round.Valuation `json:"valuation_preview"`
	ValuationDisplay string          `json:"valuation_preview_display"`
}

// assetRequest is the editable asset form. Every field is optional except
// the title.
type assetRequest struct {
	Title                 string   `json:"title"`
	CategoryID            *string  `json:"category_id"`
	Brand                 string   `json:"brand"`
	ModelName             string   `json:"model_name"`
	SerialNumber          string   `json:"serial_number"`
	PurchasePrice         *float64 `json:"purchase_price"`
	PurchaseCurrency      string   `json:"purchase_currency"`
	PurchaseDate          string   `json:"purchase_date"`
	CurrentEstimatedValue *float64 `json:"current_estimated_value"`
	EstimateCurrency      string   `json:"estimate_currency"`
	PurchaseURL           string   `json:"purchase_url"`
	ReceiptURL            string   `json:"receipt_url"`
	Notes                 string   `json:"notes"`
	CurrentCondition      string   `json:"current_condition"`
	AssetTypeID           *string  `json:"asset_type_id"`
	AddressCity           string   `json:"address_city"`
	AddressCountry        string   `json:"address_country"`
}

type createAssetResponse struct {
	ID string `json:"id"`
}

type valuationRequest struct {
	Value    *float64 `json:"value"`
	Currency string   `json:"currency"`
}

type magicImportResponse struct {
	AssetID   string          `json:"asset_id"`
	Valuation round.Valuation `json:"valuation"`
	Display   string          `json:"display"`
	Readiness round.Readiness `json:"readiness"`
}

type magicImportBlockedResponse struct {
	Error     string          `json:"error"`
	Readiness round.Readiness `json:"readiness"`
	Identity  round.Identity  `json:"identity"`
}

func (s *Server) handleListAssets(w http.ResponseWriter, r *http.Request) {
	userID := userIDFromContext(r.Context())
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "missing user context")
		return
	}

	assets, err := s.DB.ListAssetsForUser(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load assets")
		return
	}

	response := make([]assetResponse, 0, len(assets))
	for _, asset := range assets {
		response = append(response, toAssetResponse(asset, s.evaluate(toRoundAsset(asset))))
	}
	writeJSON(w, http.StatusOK, response)
}

func (s *Server) handleGetAsset(w http.ResponseWriter, r *http.Request) {
	userID := userIDFromContext(r.Context())
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "missing user context")
		return
	}

	asset, ok := s.loadAsset(w, r, userID)
	if !ok {
		return
	}

	subject := toRoundAsset(asset)
	insights := s.evaluate(subject)
	valuation := round.ComputeRuleBasedValuation(subject, s.now())
	writeJSON(w, http.StatusOK, assetDetailResponse{
		assetResponse:    toAssetResponse(asset, insights),
		HomeLike:         insights.HomeLike,
		Valuation:        valuation,
		ValuationDisplay: valuation.Display(),
	})
}

func (s *Server) handleCreateAsset(w http.ResponseWriter, r *http.Request) {
	userID := userIDFromContext(r.Context())
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "missing user context")
		return
	}

	var req assetRequest
	if err := decodeJSONBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	input, err := req.toInput()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	id, err := s.DB.InsertAsset(r.Context(), userID, input)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create asset")
		return
	}

	s.Notifier.NotifyAsset(userID, id, ws.ChangeCreated)
	writeJSON(w, http.StatusCreated, createAssetResponse{ID: id})
}

func (s *Server) handleUpdateAsset(w http.ResponseWriter, r *http.Request) {
	userID := userIDFromContext(r.Context())
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "missing user context")
		return
	}

	assetID, err := parseAssetID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid asset id")
		return
	}

	var req assetRequest
	if err := decodeJSONBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	input, err := req.toInput()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	updated, err := s.DB.UpdateAssetForUser(r.Context(), userID, assetID, input)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to update asset")
		return
	}
	if !updated {
		writeError(w, http.StatusNotFound, "asset not found")
		return
	}

	s.Notifier.NotifyAsset(userID, assetID, ws.ChangeUpdated)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteAsset(w http.ResponseWriter, r *http.Request) {
	userID := userIDFromContext(r.Context())
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "missing user context")
		return
	}

	assetID, err := parseAssetID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid asset id")
		return
	}

	deleted, err := s.DB.DeleteAssetForUser(r.Context(), userID, assetID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to delete asset")
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "asset not found")
		return
	}

	s.Notifier.NotifyAsset(userID, assetID, ws.ChangeDeleted)
	w.WriteHeader(http.StatusNoContent)
}

// handleMagicImport returns the rule-based estimate for a Round-Ready asset.
// Nothing is stored; the client confirms through PUT valuation.
func (s *Server) handleMagicImport(w http.ResponseWriter, r *http.Request) {
	userID := userIDFromContext(r.Context())
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "missing user context")
		return
	}

	asset, ok := s.loadAsset(w, r, userID)
	if !ok {
		return
	}

	subject := toRoundAsset(asset)
	insights := s.evaluate(subject)
	telemetry.MagicImportAttempted(insights.Readiness.Ready)
	if !insights.Readiness.Ready {
		writeJSON(w, http.StatusConflict, magicImportBlockedResponse{
			Error:     "asset is not Round-Ready",
			Readiness: insights.Readiness,
			Identity:  insights.Identity,
		})
		return
	}

	valuation := round.ComputeRuleBasedValuation(subject, s.now())
	writeJSON(w, http.StatusOK, magicImportResponse{
		AssetID:   asset.ID,
		Valuation: valuation,
		Display:   valuation.Display(),
		Readiness: insights.Readiness,
	})
}

func (s *Server) handleSetValuation(w http.ResponseWriter, r *http.Request) {
	userID := userIDFromContext(r.Context())
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "missing user context")
		return
	}

	assetID, err := parseAssetID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid asset id")
		return
	}

	var req valuationRequest
	if err := decodeJSONBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Value == nil || *req.Value < 0 {
		writeError(w, http.StatusBadRequest, "value must be greater than or equal to 0")
		return
	}
	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = s.DefaultCurrency
	}
	if !round.KnownCurrency(currency) {
		writeError(w, http.StatusBadRequest, "currency must be a known ISO 4217 code")
		return
	}

	valued, err := s.DB.SetEstimatedValueForUser(r.Context(), userID, assetID, *req.Value, currency)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to store valuation")
		return
	}
	if !valued {
		writeError(w, http.StatusNotFound, "asset not found")
		return
	}

	s.Notifier.NotifyAsset(userID, assetID, ws.ChangeValued)
	w.WriteHeader(http.StatusNoContent)
}

// loadAsset writes the error response itself and reports whether the caller
// should continue.
func (s *Server) loadAsset(w http.ResponseWriter, r *http.Request, userID string) (db.Asset, bool) {
	assetID, err := parseAssetID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid asset id")
		return db.Asset{}, false
	}

	asset, found, err := s.DB.GetAssetForUser(r.Context(), userID, assetID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load asset")
		return db.Asset{}, false
	}
	if !found {
		writeError(w, http.StatusNotFound, "asset not found")
		return db.Asset{}, false
	}
	return asset, true
}

func (req assetRequest) toInput() (db.AssetInput, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return db.AssetInput{}, errors.New("title is required")
	}

	categoryID, err := optionalUUID(req.CategoryID, "category_id")
	if err != nil {
		return db.AssetInput{}, err
	}
	assetTypeID, err := optionalUUID(req.AssetTypeID, "asset_type_id")
	if err != nil {
		return db.AssetInput{}, err
	}
	if req.PurchasePrice != nil && *req.PurchasePrice < 0 {
		return db.AssetInput{}, errors.New("purchase_price must be greater than or equal to 0")
	}
	if req.CurrentEstimatedValue != nil && *req.CurrentEstimatedValue < 0 {
		return db.AssetInput{}, errors.New("current_estimated_value must be greater than or equal to 0")
	}
	purchaseCurrency, err := optionalCurrency(req.PurchaseCurrency, "purchase_currency")
	if err != nil {
		return db.AssetInput{}, err
	}
	estimateCurrency, err := optionalCurrency(req.EstimateCurrency, "estimate_currency")
	if err != nil {
		return db.AssetInput{}, err
	}

	var purchaseDate *time.Time
	if strings.TrimSpace(req.PurchaseDate) != "" {
		parsed, err := parseTimestamp(req.PurchaseDate)
		if err != nil {
			return db.AssetInput{}, errors.New("purchase_date must be RFC3339 or YYYY-MM-DD")
		}
		purchaseDate = &parsed
	}

	purchaseURL, err := optionalURL(req.PurchaseURL, "purchase_url")
	if err != nil {
		return db.AssetInput{}, err
	}
	receiptURL, err := optionalReceipt(req.ReceiptURL)
	if err != nil {
		return db.AssetInput{}, err
	}

	return db.AssetInput{
		Title:                 title,
		CategoryID:            categoryID,
		Brand:                 strings.TrimSpace(req.Brand),
		ModelName:             strings.TrimSpace(req.ModelName),
		SerialNumber:          strings.TrimSpace(req.SerialNumber),
		PurchasePrice:         req.PurchasePrice,
		PurchaseCurrency:      purchaseCurrency,
		PurchaseDate:          purchaseDate,
		CurrentEstimatedValue: req.CurrentEstimatedValue,
		EstimateCurrency:      estimateCurrency,
		PurchaseURL:           purchaseURL,
		ReceiptURL:            receiptURL,
		Notes:                 strings.TrimSpace(req.Notes),
		CurrentCondition:      strings.TrimSpace(req.CurrentCondition),
		AssetTypeID:           assetTypeID,
		AddressCity:           strings.TrimSpace(req.AddressCity),
		AddressCountry:        strings.TrimSpace(req.AddressCountry),
	}, nil
}

func optionalUUID(value *string, field string) (*string, error) {
	if value == nil || strings.TrimSpace(*value) == "" {
		return nil, nil
	}
	parsed, err := uuid.Parse(strings.TrimSpace(*value))
	if err != nil {
		return nil, errors.New(field + " must be a uuid")
	}
	out := parsed.String()
	return &out, nil
}

func optionalCurrency(value, field string) (string, error) {
	code := strings.ToUpper(strings.TrimSpace(value))
	if code == "" {
		return "", nil
	}
	if len(code) != 3 || !round.KnownCurrency(code) {
		return "", errors.New(field + " must be a known ISO 4217 code")
	}
	return code, nil
}

func optionalURL(value, field string) (string, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", nil
	}
	parsed, err := url.ParseRequestURI(trimmed)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return "", errors.New(field + " must be an http(s) URL")
	}
	return trimmed, nil
}

// optionalReceipt accepts an http(s) URL or a bucket-relative storage object
// path such as "receipts/123.pdf".
func optionalReceipt(value string) (string, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" || strings.Contains(trimmed, "://") {
		return optionalURL(trimmed, "receipt_url")
	}
	parsed, err := url.Parse(trimmed)
	if err != nil || parsed.Scheme != "" || parsed.Host != "" || parsed.RawQuery != "" ||
		strings.HasPrefix(trimmed, "/") || strings.ContainsAny(trimmed, " \\") {
		return "", errors.New("receipt_url must be an http(s) URL or a storage object path")
	}
	for _, segment := range strings.Split(trimmed, "/") {
		if segment == "" || segment == "." || segment == ".." {
			return "", errors.New("receipt_url must be an http(s) URL or a storage object path")
		}
	}
	return trimmed, nil
}

func toRoundAsset(asset db.Asset) round.Asset {
	out := round.Asset{
		Title:                 asset.Title,
		CategoryName:          asset.CategoryName,
		Brand:                 asset.Brand,
		ModelName:             asset.ModelName,
		SerialNumber:          asset.SerialNumber,
		PurchasePrice:         asset.PurchasePrice,
		PurchaseCurrency:      asset.PurchaseCurrency,
		CurrentEstimatedValue: asset.CurrentEstimatedValue,
		EstimateCurrency:      asset.EstimateCurrency,
		PurchaseURL:           asset.PurchaseURL,
		ReceiptURL:            asset.ReceiptURL,
		Notes:                 asset.Notes,
		CurrentCondition:      asset.CurrentCondition,
		AddressCity:           asset.AddressCity,
		AddressCountry:        asset.AddressCountry,
	}
	if asset.PurchaseDate != nil {
		out.PurchaseDate = asset.PurchaseDate.UTC().Format(dateLayout)
	}
	if asset.AssetTypeID != nil {
		out.AssetTypeID = *asset.AssetTypeID
	}
	return out
}

func toAssetResponse(asset db.Asset, insights round.Insights) assetResponse {
	response := assetResponse{
		ID:                    asset.ID,
		Title:                 asset.Title,
		CategoryID:            asset.CategoryID,
		CategoryName:          asset.CategoryName,
		Brand:                 asset.Brand,
		ModelName:             asset.ModelName,
		SerialNumber:          asset.SerialNumber,
		PurchasePrice:         asset.PurchasePrice,
		PurchaseCurrency:      asset.PurchaseCurrency,
		CurrentEstimatedValue: asset.CurrentEstimatedValue,
		EstimateCurrency:      asset.EstimateCurrency,
		PurchaseURL:           asset.PurchaseURL,
		ReceiptURL:            asset.ReceiptURL,
		Notes:                 asset.Notes,
		CurrentCondition:      asset.CurrentCondition,
		AssetTypeID:           asset.AssetTypeID,
		AddressCity:           asset.AddressCity,
		AddressCountry:        asset.AddressCountry,
		CreatedAt:             asset.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:             asset.UpdatedAt.UTC().Format(time.RFC3339),
		Profile:               insights.Profile,
		Identity:              insights.Identity,
		Readiness:             insights.Readiness,
	}
	if asset.PurchaseDate != nil {
		response.PurchaseDate = asset.PurchaseDate.UTC().Format(dateLayout)
	}
	return response
}
