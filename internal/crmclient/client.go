// Package crmclient talks to the CRM JSON API.
package crmclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"crm/internal/model"
	"crm/internal/report"
)

const bodySnippetLimit = 120

// Error is the single error type returned for failed API calls. Message is
// ready to be shown to a user as is.
type Error struct {
	// StatusCode is 0 when no response was received.
	StatusCode int
	Message    string
	Err        error
}

func (e *Error) Error() string { return e.Message }

// Unwrap returns the transport or decoding error, if any.
func (e *Error) Unwrap() error { return e.Err }

// LoginResult is a successful sign-in.
type LoginResult struct {
	User         model.PublicUser `json:"user"`
	Token        string           `json:"token"`
	RefreshToken string           `json:"refreshToken"`
}

// Client calls the API under BaseURL, e.g. http://localhost:8080/api.
type Client struct {
	baseURL    string
	httpClient *http.Client
	token      string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithToken sends token as a bearer token on every call.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// New creates a client for the API rooted at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Snapshot reads every collection. It satisfies dashboard.Fetcher.
func (c *Client) Snapshot(ctx context.Context, filter model.SnapshotFilter) (*model.Snapshot, error) {
	snap := model.EmptySnapshot()
	if err := c.call(ctx, http.MethodGet, "crm"+filterQuery(filter), nil, &dataEnvelope{Data: snap}); err != nil {
		return nil, err
	}
	return snap, nil
}

// Report reads the aggregated figures.
func (c *Client) Report(ctx context.Context, filter model.SnapshotFilter) (*report.Report, error) {
	var rep report.Report
	if err := c.call(ctx, http.MethodGet, "report"+filterQuery(filter), nil, &dataEnvelope{Data: &rep}); err != nil {
		return nil, err
	}
	return &rep, nil
}

// Save creates or updates a record of entity. payload is encoded as the JSON body.
func (c *Client) Save(ctx context.Context, entity model.EntityKind, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return &Error{Message: fmt.Sprintf("encode %s: %v", entity, err), Err: err}
	}
	return c.call(ctx, http.MethodPost, "crm?entity="+url.QueryEscape(string(entity)), body, nil)
}

// Delete removes the record id of entity.
func (c *Client) Delete(ctx context.Context, entity model.EntityKind, id uint) error {
	query := url.Values{}
	query.Set("entity", string(entity))
	query.Set("id", strconv.FormatUint(uint64(id), 10))
	return c.call(ctx, http.MethodDelete, "crm?"+query.Encode(), nil, nil)
}

// Login signs in and returns the user with its tokens.
func (c *Client) Login(ctx context.Context, login, password string) (*LoginResult, error) {
	body, err := json.Marshal(map[string]string{"login": login, "password": password})
	if err != nil {
		return nil, &Error{Message: err.Error(), Err: err}
	}
	var result LoginResult
	if err := c.call(ctx, http.MethodPost, "login", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Export streams the spreadsheet export into w.
func (c *Client) Export(ctx context.Context, filter model.SnapshotFilter, w io.Writer) error {
	requestURL := c.baseURL + "/export.xlsx" + filterQuery(filter)
	resp, err := c.do(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return decodeFailure(requestURL, resp.StatusCode, raw)
	}
	if _, err := io.Copy(w, resp.Body); err != nil {
		return &Error{StatusCode: resp.StatusCode, Message: fmt.Sprintf("download interrupted (%s): %v", requestURL, err), Err: err}
	}
	return nil
}

type dataEnvelope struct {
	Data any `json:"data"`
}

type statusEnvelope struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}

// call sends one request and decodes a successful payload into out.
func (c *Client) call(ctx context.Context, method, path string, body []byte, out any) error {
	requestURL := c.baseURL + "/" + path
	resp, err := c.do(ctx, method, requestURL, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &Error{StatusCode: resp.StatusCode, Message: fmt.Sprintf("network error (%s): %v", requestURL, err), Err: err}
	}

	var status statusEnvelope
	if err := json.Unmarshal(raw, &status); err != nil {
		return nonJSON(requestURL, resp.StatusCode, raw, err)
	}
	if resp.StatusCode >= http.StatusBadRequest || !status.OK {
		return apiFailure(requestURL, resp.StatusCode, status.Message)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return nonJSON(requestURL, resp.StatusCode, raw, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, requestURL string, body []byte) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, requestURL, reader)
	if err != nil {
		return nil, &Error{Message: fmt.Sprintf("bad request (%s): %v", requestURL, err), Err: err}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &Error{Message: fmt.Sprintf("network error (%s): %v", requestURL, err), Err: err}
	}
	return resp, nil
}

func decodeFailure(requestURL string, statusCode int, raw []byte) error {
	var status statusEnvelope
	if err := json.Unmarshal(raw, &status); err != nil {
		return nonJSON(requestURL, statusCode, raw, err)
	}
	return apiFailure(requestURL, statusCode, status.Message)
}

func apiFailure(requestURL string, statusCode int, message string) error {
	if message == "" {
		message = "API error"
	}
	return &Error{StatusCode: statusCode, Message: fmt.Sprintf("%s (%s, HTTP %d)", message, requestURL, statusCode)}
}

func nonJSON(requestURL string, statusCode int, raw []byte, err error) error {
	snippet := strings.TrimSpace(string(raw))
	if runes := []rune(snippet); len(runes) > bodySnippetLimit {
		snippet = strings.TrimSpace(string(runes[:bodySnippetLimit]))
	}
	info := ""
	if snippet != "" {
		info = ", response: " + snippet
	}
	return &Error{
		StatusCode: statusCode,
		Message:    fmt.Sprintf("API returned non-JSON (%s, HTTP %d%s)", requestURL, statusCode, info),
		Err:        err,
	}
}

func filterQuery(filter model.SnapshotFilter) string {
	query := url.Values{}
	if !filter.AttendanceDate.IsZero() {
		query.Set("attendance_date", filter.AttendanceDate.String())
	}
	if !filter.ProductionDate.IsZero() {
		query.Set("production_date", filter.ProductionDate.String())
	}
	if len(query) == 0 {
		return ""
	}
	return "?" + query.Encode()
}
