package session

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultValidateTimeout = 10 * time.Second

// HTTPValidator validates a token by fetching the profile endpoint with it.
//
// Any transport error or non-2xx status maps to ErrValidationFailed: for this
// layer an unreachable backend and a rejected token both mean the session
// cannot be trusted.
type HTTPValidator struct {
	client     *http.Client
	profileURL string
	authScheme string
}

// NewHTTPValidator constructs a validator against profileURL.
// A nil client gets a dedicated client with a conservative timeout.
func NewHTTPValidator(client *http.Client, profileURL string) *HTTPValidator {
	if client == nil {
		client = &http.Client{Timeout: defaultValidateTimeout}
	}
	return &HTTPValidator{
		client:     client,
		profileURL: profileURL,
		authScheme: "Token",
	}
}

// Validate performs the single outbound check.
func (v *HTTPValidator) Validate(ctx context.Context, tok string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.profileURL, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}
	req.Header.Set("Authorization", v.authScheme+" "+tok)
	req.Header.Set("Accept", "application/json")

	resp, err := v.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: status %d", ErrValidationFailed, resp.StatusCode)
	}
	return nil
}
