package usps_test

import (
	"testing"

	"address-gateway/core/usps"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const matchBody = `{
	"firm": null,
	"address": {
		"streetAddress": "1600 PENNSYLVANIA AVE NW",
		"secondaryAddress": "",
		"city": "WASHINGTON",
		"state": "DC",
		"ZIPCode": "20500",
		"ZIPPlus4": "0005"
	},
	"additionalInfo": {},
	"corrections": [{"code": "", "text": ""}],
	"matches": [{"code": "31", "text": "Single Response - exact match"}]
}`

func TestValidatePayload(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		valid bool
	}{
		{"result shape", matchBody, true},
		{"error shape", `{"apiVersion":"3","error":{"code":"400","message":"bad","errors":[]}}`, true},
		{"missing matches", `{"address":{},"corrections":[]}`, false},
		{"error missing errors", `{"error":{"code":"400","message":"bad"}}`, false},
		{"error is a string", `{"error":"boom"}`, false},
		{"error is null", `{"error":null}`, false},
		{"array", `[]`, false},
		{"null", `null`, false},
		{"html", `<html>Bad Gateway</html>`, false},
		{"empty", ``, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := usps.ValidatePayload([]byte(tt.body))
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, usps.ErrUnrecognizedResponse)
			}
		})
	}
}

func TestDecodePayload(t *testing.T) {
	p, err := usps.DecodePayload([]byte(matchBody))
	require.NoError(t, err)
	require.NotNil(t, p.Address)
	assert.Equal(t, "WASHINGTON", p.Address.City)
	assert.Equal(t, "0005", p.Address.ZIPPlus4)
	// Empty correction codes fall back to the first match.
	assert.Equal(t, usps.Code("31"), p.StatusCode())
}

func TestDecodePayload_NumericCodes(t *testing.T) {
	p, err := usps.DecodePayload([]byte(`{"address":{},"corrections":[{"code":32,"text":""}],"matches":[]}`))
	require.NoError(t, err)
	assert.Equal(t, usps.Code("32"), p.StatusCode())

	p, err = usps.DecodePayload([]byte(`{"error":{"code":400,"message":"Invalid state","errors":[{"title":"x"}]}}`))
	require.NoError(t, err)
	require.NotNil(t, p.Error)
	assert.Equal(t, usps.Code("400"), p.Error.Code)
	assert.Equal(t, "Invalid state", p.Error.Message)
	assert.Len(t, p.Error.Errors, 1)
}
