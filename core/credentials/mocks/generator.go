package mocks

import (
	"context"

	"address-gateway/core/credentials"

	"github.com/stretchr/testify/mock"
)

// Generator is a mock implementation of credentials.Generator
type Generator struct {
	mock.Mock
}

func (m *Generator) GenerateToken(ctx context.Context, cred credentials.Credential) (string, error) {
	args := m.Called(ctx, cred)
	return args.String(0), args.Error(1)
}
