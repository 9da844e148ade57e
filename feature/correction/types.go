package correction

import (
	"fmt"
	"net/url"

	"address-gateway/core/cache"
)

// Address is the address a caller wants checked. ZIP is "ZIP5" or "ZIP5-ZIP4".
type Address struct {
	StreetAddress string `json:"streetAddress"`
	City          string `json:"city"`
	State         string `json:"state"`
	ZIP           string `json:"zip"`
	Country       string `json:"country"`
}

// key identifies the address in the result cache.
func (a Address) key() string {
	return cache.Key(url.Values{
		"streetAddress": {a.StreetAddress},
		"city":          {a.City},
		"state":         {a.State},
		"zip":           {a.ZIP},
		"country":       {a.Country},
	})
}

// Code is the outcome of a check.
type Code int

const (
	Match Code = iota
	Correction
	NotFound
	Skipped
	ProviderError
	UnhandledCode
)

var codeNames = [...]string{
	Match:         "match",
	Correction:    "correction",
	NotFound:      "not_found",
	Skipped:       "skipped",
	ProviderError: "provider_error",
	UnhandledCode: "unhandled_code",
}

func (c Code) String() string {
	if c < 0 || int(c) >= len(codeNames) {
		return fmt.Sprintf("code(%d)", int(c))
	}
	return codeNames[c]
}

func (c Code) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *Code) UnmarshalText(text []byte) error {
	for i, name := range codeNames {
		if name == string(text) {
			*c = Code(i)
			return nil
		}
	}
	return fmt.Errorf("unknown correction code %q", text)
}

// Result is the outcome of a check. Message may contain HTML markup.
// CorrectionCount is positive only for Correction.
type Result struct {
	Code            Code   `json:"code"`
	Message         string `json:"message"`
	CorrectionCount int    `json:"correctionCount"`
}

// Canonical is an address in the normalized form compared by Diff.
type Canonical struct {
	StreetAddress string
	City          string
	State         string
	ZIP5          string
	ZIP4          string
}
