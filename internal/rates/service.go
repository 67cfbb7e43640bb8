package rates

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"round/internal/db"
	"round/internal/providers"
	"round/internal/telemetry"
)

type Store interface {
	FetchCurrencyPairs(ctx context.Context, defaultBase string) ([]db.CurrencyPair, error)
	UpsertFXRates(ctx context.Context, rates []db.FXRate) error
	InsertFXSnapshots(ctx context.Context, rates []db.FXRate) error
}

// Service keeps fx_rates fresh for every (base, quote) pair a dashboard needs.
type Service struct {
	store       Store
	provider    providers.RateProvider
	defaultBase string
	maxAge      time.Duration
	now         func() time.Time
}

func NewService(store Store, provider providers.RateProvider, defaultBase string, maxAge time.Duration) *Service {
	return &Service{
		store:       store,
		provider:    provider,
		defaultBase: defaultBase,
		maxAge:      maxAge,
		now:         time.Now,
	}
}

func (s *Service) Refresh(ctx context.Context) error {
	now := s.now().UTC()

	pairs, err := s.store.FetchCurrencyPairs(ctx, s.defaultBase)
	if err != nil {
		return fmt.Errorf("fetch currency pairs: %w", err)
	}

	due := s.duePairs(now, pairs)
	if len(due) == 0 {
		return nil
	}

	var errs []error
	var updates []db.FXRate
	for _, base := range sortedKeys(due) {
		fetched, err := s.provider.FetchRates(ctx, base, due[base])
		if err != nil {
			errs = append(errs, fmt.Errorf("fetch %s rates: %w", base, err))
			continue
		}
		for _, rate := range fetched {
			updates = append(updates, db.FXRate{
				Base:      rate.Base,
				Quote:     rate.Quote,
				Rate:      rate.Rate,
				FetchedAt: now,
				Provider:  rate.Provider,
			})
		}
	}

	if len(updates) == 0 {
		telemetry.FXRefreshed(0, len(errs))
		return errors.Join(errs...)
	}

	if err := s.store.UpsertFXRates(ctx, updates); err != nil {
		errs = append(errs, fmt.Errorf("upsert fx rates: %w", err))
	}
	if err := s.store.InsertFXSnapshots(ctx, updates); err != nil {
		errs = append(errs, fmt.Errorf("insert fx snapshots: %w", err))
	}

	telemetry.FXRefreshed(len(updates), len(errs))
	slog.Info("fx rates refreshed", "pairs", len(updates), "errors", len(errs))
	return errors.Join(errs...)
}

// duePairs groups stale quotes by base currency.
func (s *Service) duePairs(now time.Time, pairs []db.CurrencyPair) map[string][]string {
	due := map[string][]string{}
	for _, pair := range pairs {
		if pair.Base == "" || pair.Quote == "" || pair.Base == pair.Quote {
			continue
		}
		if pair.LastFetchedAt != nil && now.Sub(*pair.LastFetchedAt) < s.maxAge {
			continue
		}
		due[pair.Base] = append(due[pair.Base], pair.Quote)
	}
	return due
}

func sortedKeys[T any](m map[string]T) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
