package sync

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sawyersrpg/savecore/internal/core/domain"
)

// HTTPCloudStore talks to a remote save service over HTTP.
//
// Endpoints:
//
//	PUT  /v1/slots/{n}          upload a record
//	GET  /v1/slots/{n}          download a record
//	GET  /v1/slots/{n}/metadata record metadata only
type HTTPCloudStore struct {
	baseURL string
	client  *http.Client
	apiKey  string
}

// HTTPOption configures an HTTPCloudStore.
type HTTPOption func(*HTTPCloudStore)

// WithTLSConfig sets the TLS config used for server connections.
// Deployments with a private CA pass a pool built by tlsroots.
func WithTLSConfig(tlsConf *tls.Config) HTTPOption {
	return func(c *HTTPCloudStore) {
		c.client.Transport = &http.Transport{
			TLSClientConfig: tlsConf,
		}
	}
}

// NewHTTPCloudStore creates a cloud store client.
func NewHTTPCloudStore(server, apiKey string, opts ...HTTPOption) *HTTPCloudStore {
	baseURL := server
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		baseURL = "https://" + baseURL
	}

	c := &HTTPCloudStore{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Backup uploads a record for a slot.
func (c *HTTPCloudStore) Backup(ctx context.Context, slotIndex int, record *domain.SaveRecord) (*BackupResult, error) {
	body, err := json.Marshal(record)
	if err != nil {
		return nil, domain.ErrInternal.WithCause(fmt.Errorf("encode record: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut,
		fmt.Sprintf("%s/v1/slots/%d", c.baseURL, slotIndex), bytes.NewReader(body))
	if err != nil {
		return nil, domain.ErrInternal.WithCause(err)
	}
	c.addHeaders(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, domain.ErrNetworkUnavailable.WithCause(err)
	}

	var result BackupResult
	if err := c.parseResponse(resp, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Restore downloads the slot's remote record.
func (c *HTTPCloudStore) Restore(ctx context.Context, slotIndex int) (*RestoreResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s/v1/slots/%d", c.baseURL, slotIndex), nil)
	if err != nil {
		return nil, domain.ErrInternal.WithCause(err)
	}
	c.addHeaders(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, domain.ErrNetworkUnavailable.WithCause(err)
	}

	var result RestoreResult
	if err := c.parseResponse(resp, &result); err != nil {
		return nil, err
	}
	if result.Record == nil {
		return nil, domain.ErrCloudCorrupted.WithDetails("response carried no record")
	}
	return &result, nil
}

// Stat fetches the remote record's metadata.
func (c *HTTPCloudStore) Stat(ctx context.Context, slotIndex int) (*domain.RecordMetadata, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s/v1/slots/%d/metadata", c.baseURL, slotIndex), nil)
	if err != nil {
		return nil, domain.ErrInternal.WithCause(err)
	}
	c.addHeaders(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, domain.ErrNetworkUnavailable.WithCause(err)
	}

	var meta domain.RecordMetadata
	if err := c.parseResponse(resp, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

func (c *HTTPCloudStore) addHeaders(req *http.Request) {
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	req.Header.Set("User-Agent", "savecore/1.0")
}

// parseResponse decodes a JSON response, translating error statuses and
// service error codes into domain errors.
func (c *HTTPCloudStore) parseResponse(resp *http.Response, target any) error {
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp struct {
			Error struct {
				Code    string `json:"code"`
				Message string `json:"message"`
			} `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&errResp)

		if err := errorForCode(errResp.Error.Code); err != nil {
			return err.WithDetails(errResp.Error.Message)
		}

		switch resp.StatusCode {
		case http.StatusNotFound:
			return domain.ErrCloudNotFound
		case http.StatusInsufficientStorage:
			return domain.ErrQuotaExceeded
		case http.StatusUnprocessableEntity:
			return domain.ErrCloudCorrupted
		case http.StatusServiceUnavailable, http.StatusBadGateway, http.StatusGatewayTimeout:
			return domain.ErrNetworkUnavailable
		}
		return domain.ErrStorage.WithDetails(
			fmt.Sprintf("request failed with status %d", resp.StatusCode))
	}

	if target != nil {
		if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
			return domain.ErrCloudCorrupted.WithCause(err)
		}
	}
	return nil
}

// errorForCode maps the service's wire error codes onto domain errors.
func errorForCode(code string) *domain.DomainError {
	switch code {
	case "network/unavailable":
		return domain.ErrNetworkUnavailable
	case "data/corrupted":
		return domain.ErrCloudCorrupted
	case "storage/quota-exceeded":
		return domain.ErrQuotaExceeded
	case "slot/not-found":
		return domain.ErrCloudNotFound
	default:
		return nil
	}
}
