package mocks

import (
	"context"
	"net/url"

	"address-gateway/core/credentials"
	"address-gateway/core/usps"

	"github.com/stretchr/testify/mock"
)

// TokenPool is a mock implementation of validation.TokenPool
type TokenPool struct {
	mock.Mock
}

func (m *TokenPool) Acquire(ctx context.Context) (credentials.Token, error) {
	args := m.Called(ctx)
	return args.Get(0).(credentials.Token), args.Error(1)
}

func (m *TokenPool) Invalidate(slot int) {
	m.Called(slot)
}

// Provider is a mock implementation of validation.Provider
type Provider struct {
	mock.Mock
}

func (m *Provider) LookupAddress(ctx context.Context, token string, query url.Values) (usps.Response, error) {
	args := m.Called(ctx, token, query)
	return args.Get(0).(usps.Response), args.Error(1)
}
