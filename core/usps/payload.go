package usps

import (
	"bytes"
	"encoding/json"
)

// Code is a provider status code. USPS sends these as strings but numbers are
// accepted too.
type Code string

func (c *Code) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*c = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*c = Code(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*c = Code(n.String())
	return nil
}

// CanonicalAddress is the corrected address returned by the provider.
type CanonicalAddress struct {
	StreetAddress    string `json:"streetAddress"`
	SecondaryAddress string `json:"secondaryAddress"`
	City             string `json:"city"`
	State            string `json:"state"`
	ZIPCode          string `json:"ZIPCode"`
	ZIPPlus4         string `json:"ZIPPlus4"`
}

// Note is an entry of the corrections or matches arrays.
type Note struct {
	Code Code   `json:"code"`
	Text string `json:"text"`
}

// ErrorBody is the error object of a failed lookup.
type ErrorBody struct {
	Code    Code              `json:"code"`
	Message string            `json:"message"`
	Errors  []json.RawMessage `json:"errors"`
}

// Payload is a decoded address lookup response. Exactly one of Address or
// Error is set for a recognized response.
type Payload struct {
	Address     *CanonicalAddress `json:"address"`
	Corrections []Note            `json:"corrections"`
	Matches     []Note            `json:"matches"`
	Error       *ErrorBody        `json:"error"`
}

// StatusCode returns the code of the first correction, falling back to the
// first match.
func (p *Payload) StatusCode() Code {
	if len(p.Corrections) > 0 && p.Corrections[0].Code != "" {
		return p.Corrections[0].Code
	}
	if len(p.Matches) > 0 {
		return p.Matches[0].Code
	}
	return ""
}

// Response is a raw provider response to an address lookup.
type Response struct {
	StatusCode int
	Body       []byte
}

// Success reports whether StatusCode is 2xx.
func (r Response) Success() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Decode parses the body, enforcing the shape check first.
func (r Response) Decode() (*Payload, error) {
	return DecodePayload(r.Body)
}

// ValidatePayload checks that body is an object holding either address,
// corrections and matches, or an error object with code, message and errors.
func ValidatePayload(body []byte) error {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(body, &obj); err != nil || obj == nil {
		return ErrUnrecognizedResponse
	}
	if hasKeys(obj, "address", "corrections", "matches") {
		return nil
	}
	raw, ok := obj["error"]
	if !ok {
		return ErrUnrecognizedResponse
	}
	var errObj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &errObj); err != nil || errObj == nil {
		return ErrUnrecognizedResponse
	}
	if !hasKeys(errObj, "code", "message", "errors") {
		return ErrUnrecognizedResponse
	}
	return nil
}

// DecodePayload validates and decodes body.
func DecodePayload(body []byte) (*Payload, error) {
	if err := ValidatePayload(body); err != nil {
		return nil, err
	}
	var p Payload
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, ErrUnrecognizedResponse
	}
	return &p, nil
}

func hasKeys(obj map[string]json.RawMessage, keys ...string) bool {
	for _, k := range keys {
		if _, ok := obj[k]; !ok {
			return false
		}
	}
	return true
}
