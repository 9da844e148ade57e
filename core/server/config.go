package server

import (
	"net"
	"time"
)

// Config holds configuration for the HTTP server.
type Config struct {
	// Port is the port where the server will listen.
	Port string `mapstructure:"port" default:"10000" env:"PORT" validate:"required,numeric"`
	// Host is the interface to bind. Empty binds every interface.
	Host string `mapstructure:"host" default:""`
	// AllowOrigin is sent as Access-Control-Allow-Origin on every response.
	AllowOrigin string `mapstructure:"allow_origin" env:"ALLOW_ORIGIN" validate:"required"`
	// AllowedIPs restricts which peers are served. Empty allows everyone.
	AllowedIPs []string `mapstructure:"allowed_ips" env:"ALLOWED_IPS" validate:"dive,ip"`
	// ProxyHeader, when set, is trusted for the client ip (e.g. X-Forwarded-For).
	ProxyHeader string `mapstructure:"proxy_header" default:""`
	// RequestTimeout bounds how long a lookup may wait on the provider,
	// retries included. Zero disables the bound.
	RequestTimeout time.Duration `mapstructure:"request_timeout" default:"2m"`
}

// Address returns the listen address built from Host and Port.
func (c Config) Address() string {
	return net.JoinHostPort(c.Host, c.Port)
}
