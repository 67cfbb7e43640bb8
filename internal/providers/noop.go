package providers

import (
	"context"
	"fmt"
)

type MissingProvider struct {
	Name string
}

func NewMissingProvider(name string) MissingProvider {
	return MissingProvider{Name: name}
}

func (p MissingProvider) FetchRates(ctx context.Context, base string, quotes []string) ([]Rate, error) {
	if len(quotes) == 0 {
		return nil, nil
	}
	return nil, fmt.Errorf("fx provider %q not configured", p.Name)
}
