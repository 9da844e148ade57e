// Package config provides configuration management for the address gateway.
//
// It utilizes Viper for loading configuration from environment variables and
// an optional .env file in the working directory.
//
// # Configuration Structure
//
// The Config struct is the central repository for all application settings, divided into subsections:
//   - Server: listen port, CORS origin and peer allowlist
//   - Log: Logging level and format
//   - Cache: response cache capacity
//   - USPS: provider endpoints, credentials, rate limit and breaker settings
//   - Retry: backoff policy for throttled provider calls
//   - Metrics: periodic upstream hit report
//
// Fields carrying an env tag are read from that exact variable (PORT,
// ALLOW_ORIGIN, ALLOWED_IPS, CACHE_COUNT, USPS_CLIENT_IDS, USPS_CLIENT_SECRETS,
// ENABLE_METRICS). Every other field uses its nested key in upper case, e.g.
// log.level is LOG_LEVEL. List values accept a JSON array, a JSON string or a
// comma separated string.
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := cfg.Validate(); err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Server.Port)
package config
