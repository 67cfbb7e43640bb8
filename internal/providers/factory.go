package providers

import (
	"strings"

	"round/internal/config"
)

func NewFromConfig(cfg config.Config) RateProvider {
	name := strings.TrimSpace(strings.ToLower(cfg.FXProviderName))
	switch name {
	case "frankfurter":
		return NewFrankfurterProvider(cfg.FXProviderBaseURL)
	case "openexchangerates":
		return NewOpenExchangeRatesProvider(cfg.FXProviderBaseURL, cfg.FXProviderAPIKey)
	default:
		return NewMissingProvider(name)
	}
}
