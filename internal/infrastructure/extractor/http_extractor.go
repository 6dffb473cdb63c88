// Package extractor calls the document extraction service that reads purchase
// order fields out of PDF attachments.
package extractor

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/printchain/backend/internal/domain/intake"
	"github.com/printchain/backend/internal/infrastructure/config"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// maxResponseSize limits the response body read from the service
const maxResponseSize = 1 << 20

// ErrUnavailable marks failures worth retrying: transport errors, timeouts,
// throttling and 5xx responses.
var ErrUnavailable = errors.New("extractor unavailable")

type extractRequest struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Content     string `json:"content"`
}

type extractResponse struct {
	CustomerCode string          `json:"customer_code"`
	PONumber     string          `json:"po_number"`
	Amount       decimal.Decimal `json:"amount"`
	CustomerID   string          `json:"customer_id"`
	JobNo        string          `json:"job_no"`
}

// HTTPExtractor posts the document as JSON and reads the extracted fields.
// It makes a single attempt; the intake pipeline owns retries.
type HTTPExtractor struct {
	url        string
	apiKey     string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewHTTPExtractor creates the client. Timeout bounds one attempt.
func NewHTTPExtractor(cfg config.ExtractorConfig, logger *zap.Logger) (*HTTPExtractor, error) {
	if strings.TrimSpace(cfg.URL) == "" {
		return nil, errors.New("extractor url is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &HTTPExtractor{
		url:        cfg.URL,
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}, nil
}

// Extract implements intake.Extractor
func (e *HTTPExtractor) Extract(ctx context.Context, doc intake.Document) (*intake.ExtractedPO, error) {
	body, err := json.Marshal(extractRequest{
		Filename:    doc.Filename,
		ContentType: doc.ContentType,
		Content:     base64.StdEncoding.EncodeToString(doc.Content),
	})
	if err != nil {
		return nil, fmt.Errorf("extractor: failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("extractor: failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if e.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+e.apiKey)
	}

	started := time.Now()
	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %v", ErrUnavailable, err)
	}

	e.logger.Debug("Extractor responded",
		zap.String("filename", doc.Filename),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(started)),
	)

	switch {
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode == http.StatusRequestTimeout || resp.StatusCode >= 500:
		return nil, fmt.Errorf("%w: HTTP %d", ErrUnavailable, resp.StatusCode)
	case resp.StatusCode >= 400:
		// the service understood the request but could not read the document
		return nil, intake.ErrParseValidationFailed.WithMessage(
			fmt.Sprintf("extractor rejected %q: HTTP %d %s", doc.Filename, resp.StatusCode, snippet(raw)))
	}

	var out extractResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, intake.ErrParseValidationFailed.WithMessage(fmt.Sprintf("extractor returned malformed JSON: %v", err))
	}

	return &intake.ExtractedPO{
		CustomerCode: strings.TrimSpace(out.CustomerCode),
		PONumber:     strings.TrimSpace(out.PONumber),
		Amount:       out.Amount,
		CustomerID:   strings.TrimSpace(out.CustomerID),
		JobNo:        strings.TrimSpace(out.JobNo),
	}, nil
}

func snippet(b []byte) string {
	s := strings.TrimSpace(string(b))
	if len(s) > 200 {
		return s[:200]
	}
	return s
}
