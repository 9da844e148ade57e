package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"reflect"
	"strings"

	"address-gateway/core/cache"
	"address-gateway/core/logger"
	"address-gateway/core/metrics"
	"address-gateway/core/retry"
	"address-gateway/core/server"
	"address-gateway/core/usps"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// It is divided into partial configurations for better modularity.
type Config struct {
	// Server holds configuration for the HTTP server.
	Server server.Config `mapstructure:"server"`
	// Log holds configuration for the logger.
	Log logger.Config `mapstructure:"log"`
	// Cache holds configuration for the response cache.
	Cache cache.Config `mapstructure:"cache"`
	// USPS holds the provider endpoints and credentials.
	USPS usps.Config `mapstructure:"usps"`
	// Retry holds the backoff policy for throttled provider calls.
	Retry retry.Policy `mapstructure:"retry"`
	// Metrics holds configuration for the upstream hit report.
	Metrics metrics.Config `mapstructure:"metrics"`

	// envNames maps Go field paths (Config.Server.Port) to the variable that sets them.
	envNames map[string]string
}

// LoadConfig loads configuration from environment variables and .env file.
func LoadConfig(path string) (*Config, error) {
	// Ignore error if file doesn't exist (e.g. production)
	_ = godotenv.Overload(filepath.Join(path, ".env"))

	v := viper.New()
	names := make(map[string]string)

	// Recursively parse struct tags to set default values and env bindings
	if err := bindValues(v, Config{}, "", "Config", names); err != nil {
		return nil, err
	}

	// Map environment variables to nested keys (e.g. LOG_LEVEL -> log.level)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var config Config
	if err := v.Unmarshal(&config, viper.DecodeHook(decodeHook())); err != nil {
		return nil, fmt.Errorf("decode configuration: %w", err)
	}
	config.envNames = names

	return &config, nil
}

// Validate checks every field against its validate tag and reports each
// problem by the environment variable that controls it.
func (c *Config) Validate() error {
	validate := validator.New(validator.WithRequiredStructEnabled())

	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	problems := make([]error, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		problems = append(problems, fmt.Errorf("%s %s", c.envName(fe.StructNamespace()), c.describe(fe)))
	}
	return fmt.Errorf("invalid configuration: %w", errors.Join(problems...))
}

func (c *Config) describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "eqfield":
		ns := fe.StructNamespace()
		sibling := ns[:strings.LastIndex(ns, ".")+1] + fe.Param()
		return fmt.Sprintf("must have as many entries as %s", c.envName(sibling))
	case "url":
		return "must be a valid URL"
	case "ip":
		return fmt.Sprintf("has an invalid IP address %q", fe.Value())
	case "numeric":
		return "must be numeric"
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", fe.Param())
	case "min":
		if fe.Kind() == reflect.Slice && fe.Param() == "1" {
			return "is required"
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	default:
		return fmt.Sprintf("failed the %q check", fe.Tag())
	}
}

// envName returns the variable controlling the field at ns. Slice indexes
// from dive errors are dropped.
func (c *Config) envName(ns string) string {
	if i := strings.Index(ns, "["); i >= 0 {
		ns = ns[:i]
	}
	if name, ok := c.envNames[ns]; ok {
		return name
	}
	return ns
}

// bindValues uses reflection to iterate over the struct and set default values in Viper
// based on the 'default' and 'mapstructure' tags. Fields with an 'env' tag are bound
// to that exact variable instead of the derived nested name.
func bindValues(v *viper.Viper, iface any, prefix, namespace string, names map[string]string) error {
	t := reflect.TypeOf(iface)

	// If it's a pointer, get the element
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("mapstructure")

		// Skip if no tag or explicitly ignored
		if tag == "" || tag == "-" {
			continue
		}

		// Build the key
		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}
		ns := namespace + "." + field.Name

		// If it's a nested struct, recurse
		if field.Type.Kind() == reflect.Struct {
			if err := bindValues(v, reflect.New(field.Type).Elem().Interface(), key, ns, names); err != nil {
				return err
			}
			continue
		}

		// Always set default (even if empty) to register the key for AutomaticEnv
		v.SetDefault(key, field.Tag.Get("default"))

		env := field.Tag.Get("env")
		if env == "" {
			names[ns] = strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
			continue
		}
		if err := v.BindEnv(key, env); err != nil {
			return fmt.Errorf("bind %s to %s: %w", key, env, err)
		}
		names[ns] = env
	}
	return nil
}

func decodeHook() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		jsonListHook(),
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	)
}

// jsonListHook decodes JSON arrays and JSON strings held in a string into a
// string slice, so that ALLOWED_IPS='["1.2.3.4"]' and USPS_CLIENT_IDS='"id"'
// both work. Other strings are left for the comma splitter.
func jsonListHook() mapstructure.DecodeHookFuncType {
	return func(from, to reflect.Type, data any) (any, error) {
		if from.Kind() != reflect.String || to.Kind() != reflect.Slice {
			return data, nil
		}

		raw := strings.TrimSpace(reflect.ValueOf(data).String())
		switch {
		case raw == "":
			return []string{}, nil
		case strings.HasPrefix(raw, "["):
			var list []string
			if err := json.Unmarshal([]byte(raw), &list); err != nil {
				return nil, fmt.Errorf("parse JSON list %q: %w", raw, err)
			}
			return list, nil
		case strings.HasPrefix(raw, `"`):
			var single string
			if err := json.Unmarshal([]byte(raw), &single); err != nil {
				return nil, fmt.Errorf("parse JSON string %q: %w", raw, err)
			}
			return []string{single}, nil
		}
		return raw, nil
	}
}
