// internal/domain/payment/epayco_service.go
package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// maxResponseSize caps the gateway body we are willing to decode
const maxResponseSize = 1 << 20

// EpaycoService talks to the ePayco transaction validation endpoint
type EpaycoService struct {
	validationURL string
	httpClient    *http.Client
	logger        logrus.FieldLogger
}

// NewEpaycoService creates a new ePayco client. validationURL may contain a
// "{ref}" placeholder; otherwise the reference is appended as a path segment.
func NewEpaycoService(validationURL string, timeout time.Duration, logger logrus.FieldLogger) *EpaycoService {
	return &EpaycoService{
		validationURL: validationURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// Verify fetches the transaction record of reference. Every failure is
// reported as an error wrapping ErrNoInformation.
func (e *EpaycoService) Verify(ctx context.Context, reference string) (any, error) {
	if reference == "" {
		return nil, fmt.Errorf("%w: empty reference", ErrNoInformation)
	}

	body, err := e.makeAPICall(ctx, http.MethodGet, e.endpoint(reference))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoInformation, err)
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var payload any
	if err := dec.Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: failed to parse validation response: %v", ErrNoInformation, err)
	}

	return payload, nil
}

func (e *EpaycoService) endpoint(reference string) string {
	ref := url.PathEscape(reference)
	if strings.Contains(e.validationURL, "{ref}") {
		return strings.ReplaceAll(e.validationURL, "{ref}", ref)
	}
	return strings.TrimRight(e.validationURL, "/") + "/" + ref
}

// makeAPICall makes HTTP calls to the ePayco API
func (e *EpaycoService) makeAPICall(ctx context.Context, method, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make API call: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	e.logger.WithFields(logrus.Fields{
		"status_code": resp.StatusCode,
		"latency":     time.Since(start),
	}).Debug("ePayco validation call completed")

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("API call failed with status %d", resp.StatusCode)
	}

	return respBody, nil
}
