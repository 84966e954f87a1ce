package sharehandler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/ruteri/share-engine/api"
	"github.com/ruteri/share-engine/interfaces"
)

// Client talks to a share engine server.
type Client struct {
	BaseURL string
	Client  *http.Client
}

// NewClient creates a client for the server at baseURL.
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		Client:  http.DefaultClient,
	}
}

// StatusError is returned when the server responds with a non-success status.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Message)
}

// Unwrap maps the status back to the sentinel the server started from.
func (e *StatusError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusBadRequest:
		return interfaces.ErrInvalidArgument
	case http.StatusNotFound:
		return interfaces.ErrShareNotFound
	case http.StatusServiceUnavailable:
		return interfaces.ErrBackendUnavailable
	default:
		return nil
	}
}

// Encode splits value on the server. value must marshal to a JSON string or number.
func (c *Client) Encode(ctx context.Context, value any, fieldName string, store bool) (*api.RecordResponse, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("could not marshal value: %w", err)
	}

	var resp api.RecordResponse
	err = c.do(ctx, http.MethodPost, "/api/shares/encode", api.EncodeRequest{
		Value:     raw,
		FieldName: fieldName,
		Store:     store,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// Decode reconstructs the value of a record.
func (c *Client) Decode(ctx context.Context, ref api.RecordRef) (*big.Int, error) {
	var resp api.DecodeResponse
	if err := c.do(ctx, http.MethodPost, "/api/shares/decode", ref, &resp); err != nil {
		return nil, err
	}

	value, ok := new(big.Int).SetString(resp.Value, 10)
	if !ok {
		return nil, fmt.Errorf("invalid decoded value %q", resp.Value)
	}
	return value, nil
}

// Equality compares two records.
func (c *Client) Equality(ctx context.Context, req api.EqualityRequest) (*api.RecordResponse, error) {
	var resp api.RecordResponse
	if err := c.do(ctx, http.MethodPost, "/api/shares/equality", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// And computes the AND of boolean records.
func (c *Client) And(ctx context.Context, req api.CombineRequest) (*api.RecordResponse, error) {
	var resp api.RecordResponse
	if err := c.do(ctx, http.MethodPost, "/api/shares/and", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Aggregate combines records.
func (c *Client) Aggregate(ctx context.Context, req api.CombineRequest) (*api.RecordResponse, error) {
	var resp api.RecordResponse
	if err := c.do(ctx, http.MethodPost, "/api/shares/aggregate", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Get fetches a stored record.
func (c *Client) Get(ctx context.Context, id string) (*interfaces.ShareRecord, error) {
	var resp api.RecordResponse
	if err := c.do(ctx, http.MethodGet, "/api/shares/"+url.PathEscape(id), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Record, nil
}

// Delete removes a stored record.
func (c *Client) Delete(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/shares/"+url.PathEscape(id), nil, nil)
}

// Audit fetches the audit entry of a stored record.
func (c *Client) Audit(ctx context.Context, id string) (*interfaces.AuditEntry, error) {
	var entry interfaces.AuditEntry
	if err := c.do(ctx, http.MethodGet, "/api/shares/"+url.PathEscape(id)+"/audit", nil, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

// PartyView fetches the share party holds for a record.
func (c *Client) PartyView(ctx context.Context, id string, party int) (*big.Int, error) {
	var resp api.PartyViewResponse
	path := "/api/shares/" + url.PathEscape(id) + "/party/" + strconv.Itoa(party)
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return interfaces.DecodeShareHex(resp.Share)
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("could not marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return fmt.Errorf("could not initialize request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	client := c.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("could not request share server: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("could not read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &StatusError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(respBody))}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("could not parse response: %w", err)
	}
	return nil
}
