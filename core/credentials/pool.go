package credentials

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"address-gateway/core/flight"
	"address-gateway/core/retry"

	"go.uber.org/zap"
)

// ErrNoCredentials is returned when a pool is built without any credential pair.
var ErrNoCredentials = errors.New("credentials: at least one client id/secret pair is required")

// Credential is one OAuth client credential pair.
type Credential struct {
	ClientID     string
	ClientSecret string
}

// Token is an access token handed out by the pool together with the slot it came from.
type Token struct {
	Slot  int
	Value string
}

// Generator obtains a fresh access token for a credential pair.
type Generator interface {
	GenerateToken(ctx context.Context, cred Credential) (string, error)
}

// Pool owns N token slots and rotates through them round robin.
type Pool struct {
	mu     sync.Mutex
	creds  []Credential
	tokens []string
	next   int

	generator Generator
	policy    retry.Policy
	flight    flight.Group[string]
	logger    *zap.Logger
}

// NewPool creates a pool with one empty slot per credential pair.
func NewPool(creds []Credential, generator Generator, policy retry.Policy, logger *zap.Logger) (*Pool, error) {
	if len(creds) == 0 {
		return nil, ErrNoCredentials
	}
	if generator == nil {
		return nil, errors.New("credentials: token generator is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	p := &Pool{
		creds:     append([]Credential(nil), creds...),
		tokens:    make([]string, len(creds)),
		generator: generator,
		logger:    logger,
	}
	p.policy = policy.WithNotify(func(err error, next time.Duration) {
		p.logger.Warn("Token generation throttled, backing off",
			zap.Error(err),
			zap.Duration("delay", next))
	})
	return p, nil
}

// Size returns the number of slots.
func (p *Pool) Size() int {
	return len(p.creds)
}

// Acquire returns the token of the slot under the cursor, generating it first
// if the slot is empty, and advances the cursor to the next slot.
func (p *Pool) Acquire(ctx context.Context) (Token, error) {
	p.mu.Lock()
	slot := p.next
	p.next = (p.next + 1) % len(p.creds)
	value := p.tokens[slot]
	p.mu.Unlock()

	if value != "" {
		return Token{Slot: slot, Value: value}, nil
	}

	value, err := p.regenerate(ctx, slot)
	if err != nil {
		return Token{Slot: slot}, err
	}
	return Token{Slot: slot, Value: value}, nil
}

// Invalidate clears the token held by slot so that it is regenerated the next
// time the slot is selected. The cursor is left untouched.
func (p *Pool) Invalidate(slot int) {
	if slot < 0 || slot >= len(p.creds) {
		return
	}
	p.mu.Lock()
	p.tokens[slot] = ""
	p.mu.Unlock()
	p.logger.Info("Token invalidated", zap.Int("slot", slot))
}

// SlotReport is the outcome of warming a single slot.
type SlotReport struct {
	Slot     int
	ClientID string
	Err      error
}

// Warm generates a token for every empty slot and reports the outcome per slot.
// It does not move the cursor.
func (p *Pool) Warm(ctx context.Context) []SlotReport {
	reports := make([]SlotReport, len(p.creds))
	for slot, cred := range p.creds {
		reports[slot] = SlotReport{Slot: slot, ClientID: cred.ClientID}

		p.mu.Lock()
		has := p.tokens[slot] != ""
		p.mu.Unlock()
		if has {
			continue
		}
		_, reports[slot].Err = p.regenerate(ctx, slot)
	}
	return reports
}

// regenerate produces a token for slot, collapsing concurrent requests for the
// same slot into a single call to the generator.
func (p *Pool) regenerate(ctx context.Context, slot int) (string, error) {
	token, _, err := p.flight.Do(ctx, strconv.Itoa(slot), func(ctx context.Context) (string, error) {
		p.logger.Info("Generating access token", zap.Int("slot", slot))
		token, err := retry.Do(ctx, p.policy, func(ctx context.Context) (string, error) {
			return p.generator.GenerateToken(ctx, p.creds[slot])
		}, retry.IsRetriable)
		if err != nil {
			return "", fmt.Errorf("generate token for slot %d: %w", slot, err)
		}

		p.mu.Lock()
		p.tokens[slot] = token
		p.mu.Unlock()
		return token, nil
	})
	if err != nil {
		p.logger.Error("Token generation failed", zap.Int("slot", slot), zap.Error(err))
		return "", err
	}
	return token, nil
}
