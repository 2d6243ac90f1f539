package docai

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const cloudPlatformScope = "https://www.googleapis.com/auth/cloud-platform"

// NewTokenSource exchanges a service-account credential (signed JWT
// assertion) for short-lived bearer tokens. The first exchange runs
// eagerly so a bad credential aborts before any job is submitted.
func NewTokenSource(ctx context.Context, credentialsJSON []byte) (oauth2.TokenSource, error) {
	if len(credentialsJSON) == 0 {
		return nil, fmt.Errorf("service account credentials not configured")
	}

	cfg, err := google.JWTConfigFromJSON(credentialsJSON, cloudPlatformScope)
	if err != nil {
		return nil, fmt.Errorf("parse service account credentials: %w", err)
	}

	ts := cfg.TokenSource(ctx)
	if _, err := ts.Token(); err != nil {
		return nil, fmt.Errorf("exchange service account assertion: %w", err)
	}

	return oauth2.ReuseTokenSource(nil, ts), nil
}
