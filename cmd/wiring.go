package cmd

import (
	"fmt"

	"address-gateway/core/cache"
	"address-gateway/core/config"
	"address-gateway/core/credentials"
	"address-gateway/core/logger"
	"address-gateway/core/metrics"
	"address-gateway/core/usps"
	"address-gateway/feature/validation"

	"go.uber.org/zap"
)

// gateway bundles the long-lived objects shared by the commands.
type gateway struct {
	client  *usps.Client
	pool    *credentials.Pool
	service *validation.Service
	tracker *metrics.Tracker
}

// loadConfig loads and validates the configuration, then builds the logger.
func loadConfig(dir string) (*config.Config, *zap.Logger, error) {
	cfg, err := config.LoadConfig(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	logg, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create logger: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, logg, err
	}
	return cfg, logg, nil
}

// newGateway wires the provider client, the credential pool, the response
// cache and the gateway service.
func newGateway(cfg *config.Config, logg *zap.Logger) (*gateway, error) {
	client := usps.NewClient(cfg.USPS, logg.Named("usps"))

	pool, err := credentials.NewPool(cfg.USPS.Credentials(), client, cfg.Retry, logg.Named("credentials"))
	if err != nil {
		return nil, fmt.Errorf("failed to create credential pool: %w", err)
	}

	store, err := cache.New[usps.Response](cfg.Cache.Count)
	if err != nil {
		return nil, fmt.Errorf("failed to create response cache: %w", err)
	}

	tracker := metrics.NewTracker(cfg.Metrics.Window)
	svc := validation.NewService(pool, client, store, validation.Options{
		Policy:      cfg.Retry,
		AuthRetries: cfg.USPS.AuthRetries,
		Hits:        tracker,
		Timeout:     cfg.Server.RequestTimeout,
	}, logg.Named("validation"))

	return &gateway{client: client, pool: pool, service: svc, tracker: tracker}, nil
}
