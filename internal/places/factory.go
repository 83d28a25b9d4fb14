package places

import (
	"fmt"
	"log/slog"

	"googlemaps.github.io/maps"
)

// ProviderConfig holds configuration for creating the places provider
// and the optional enricher.
type ProviderConfig struct {
	APIKey        string       // Geoapify API key (required)
	GoogleAPIKey  string       // Google Places API key; enrichment is disabled when empty
	RateLimit     int          // Rate limit for requests per second against Geoapify
	EnrichLimit   int          // Rate limit for enrichment requests per second
	Logger        *slog.Logger // Logger for the provider
}

// NewProvider creates the Geoapify provider from the given configuration.
func NewProvider(config ProviderConfig) (Provider, error) {
	provider, err := NewGeoapify(config.APIKey, config.RateLimit, config.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create geoapify provider: %w", err)
	}
	return provider, nil
}

// NewEnricher creates the optional Google enricher. It returns nil
// without an error when no Google API key is configured, which disables
// enrichment.
func NewEnricher(config ProviderConfig) (*GoogleEnricher, error) {
	if config.GoogleAPIKey == "" {
		return nil, nil
	}

	clientOpts := []maps.ClientOption{
		maps.WithAPIKey(config.GoogleAPIKey),
	}
	if config.EnrichLimit > 0 {
		clientOpts = append(clientOpts, maps.WithRateLimit(config.EnrichLimit))
	}

	client, err := maps.NewClient(clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Google Maps client: %w", err)
	}

	return NewGoogleEnricher(client, config.Logger), nil
}
