package ai

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"strings"
)

// FallbackService routes completions to a primary provider and falls back to
// the secondary one when the primary is unreachable or out of quota.
type FallbackService struct {
	primary   CompletionService
	secondary CompletionService
}

// NewFallbackService creates a new fallback service with both providers
func NewFallbackService(primary, secondary CompletionService) *FallbackService {
	return &FallbackService{
		primary:   primary,
		secondary: secondary,
	}
}

// isConnectionError checks if the error is a network/connection error
func isConnectionError(err error) bool {
	if err == nil {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	return containsAny(err.Error(),
		"connection refused",
		"no such host",
		"network is unreachable",
		"connection reset",
		"timeout",
		"dial tcp",
		"EOF",
	)
}

// isQuotaError checks if the error indicates API quota exhaustion (429)
func isQuotaError(err error) bool {
	if err == nil {
		return false
	}

	return containsAny(err.Error(),
		"429",
		"quota",
		"rate limit",
		"too many requests",
		"resource exhausted",
	)
}

func containsAny(s string, indicators ...string) bool {
	s = strings.ToLower(s)
	for _, indicator := range indicators {
		if strings.Contains(s, strings.ToLower(indicator)) {
			return true
		}
	}
	return false
}

func (f *FallbackService) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	if f.primary != nil {
		result, err := f.primary.Complete(ctx, req)
		if err == nil {
			return result, nil
		}

		if f.secondary == nil || !(isConnectionError(err) || isQuotaError(err)) {
			return "", err
		}
		log.Printf("[AI] Primary provider failed: %v, falling back to secondary", err)
	}

	if f.secondary != nil {
		result, err := f.secondary.Complete(ctx, req)
		if err != nil {
			return "", fmt.Errorf("fallback completion failed: %w", err)
		}
		return result, nil
	}

	return "", errors.New("no AI provider available")
}
