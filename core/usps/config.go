package usps

import (
	"time"

	"address-gateway/core/credentials"
)

// Config holds configuration for the USPS provider.
type Config struct {
	// BaseURL is the root of the USPS API.
	BaseURL string `mapstructure:"base_url" default:"https://apis.usps.com" validate:"required,url"`
	// TokenPath is the OAuth2 token endpoint, relative to BaseURL.
	TokenPath string `mapstructure:"token_path" default:"/oauth2/v3/token" validate:"required"`
	// AddressPath is the address lookup endpoint, relative to BaseURL.
	AddressPath string `mapstructure:"address_path" default:"/addresses/v3/address" validate:"required"`
	// Scope is requested with every token.
	Scope string `mapstructure:"scope" default:"addresses"`
	// Timeout bounds a single HTTP exchange with the provider.
	Timeout time.Duration `mapstructure:"timeout" default:"30s"`
	// AuthRetries is how many times a 401 on the address call rotates to a fresh token.
	AuthRetries int `mapstructure:"auth_retries" default:"1" validate:"gte=0"`
	// RatePerHour limits outbound address lookups. 0 disables the limit.
	RatePerHour int `mapstructure:"rate_per_hour" default:"0" validate:"gte=0"`
	// BreakerFailures is the number of consecutive token failures that open the
	// breaker of a client id. 0 disables the breaker.
	BreakerFailures int `mapstructure:"breaker_failures" default:"5" validate:"gte=0"`
	// BreakerTimeout is how long an open breaker rejects token requests.
	BreakerTimeout time.Duration `mapstructure:"breaker_timeout" default:"60s"`

	ClientIDs     []string `mapstructure:"client_ids" env:"USPS_CLIENT_IDS" validate:"required,min=1,dive,required"`
	ClientSecrets []string `mapstructure:"client_secrets" env:"USPS_CLIENT_SECRETS" validate:"required,min=1,eqfield=ClientIDs,dive,required"`
}

// Credentials pairs client ids with their secrets by position.
func (c Config) Credentials() []credentials.Credential {
	n := min(len(c.ClientIDs), len(c.ClientSecrets))
	out := make([]credentials.Credential, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, credentials.Credential{
			ClientID:     c.ClientIDs[i],
			ClientSecret: c.ClientSecrets[i],
		})
	}
	return out
}
