package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/arnavshah/shiftboard/pkg/models"
	"go.uber.org/zap"
)

// Fallback messages used when the server gives no error text.
const (
	MsgLoadSchedule = "Unable to load schedule"
	MsgLoadStaff    = "Unable to load staff"
	MsgAssignShift  = "Unable to assign shift"
	MsgRemoveShift  = "Unable to remove shift"
	MsgLoadSummary  = "Unable to load summary"
	MsgLogin        = "Unable to sign in"
)

// APIError is a non-2xx response or a transport failure, carrying the text
// shown to the user.
type APIError struct {
	Status  int // zero for transport failures
	Message string
	Err     error
}

func (e *APIError) Error() string { return e.Message }

func (e *APIError) Unwrap() error { return e.Err }

// Unauthorized reports a 401/403 response.
func (e *APIError) Unauthorized() bool {
	return e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden
}

// Client talks to the schedule backend over its JSON REST API.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *zap.Logger
}

type Option func(*Client)

// WithToken sets the bearer credential sent on every request.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithTimeout bounds each request; zero keeps the default.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient = &http.Client{Timeout: d, Transport: c.httpClient.Transport}
		}
	}
}

// New creates a client rooted at baseURL, e.g. "http://localhost:8000".
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 15 * time.Second},
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Token returns the credential currently attached to requests.
func (c *Client) Token() string { return c.token }

// WithCredential returns a copy of the client using token.
func (c *Client) WithCredential(token string) *Client {
	cp := *c
	cp.token = token
	return &cp
}

// FetchWeek loads the assignments of the week starting at weekStart (YYYY-MM-DD).
func (c *Client) FetchWeek(ctx context.Context, weekStart string) (*models.WeekResponse, error) {
	q := url.Values{}
	if weekStart != "" {
		q.Set("start_date", weekStart)
	}
	var out models.WeekResponse
	if err := c.do(ctx, http.MethodGet, "/schedule", q, nil, &out, MsgLoadSchedule); err != nil {
		return nil, err
	}
	if out.Shifts == nil {
		out.Shifts = []models.ShiftAssignment{}
	}
	return &out, nil
}

// FetchStaffRoster loads the staff list. Managers only.
func (c *Client) FetchStaffRoster(ctx context.Context) (*models.RosterResponse, error) {
	var out models.RosterResponse
	if err := c.do(ctx, http.MethodGet, "/schedule/staff", nil, nil, &out, MsgLoadStaff); err != nil {
		return nil, err
	}
	if out.Staff == nil {
		out.Staff = []models.StaffMember{}
	}
	return &out, nil
}

// CreateAssignment books date/slot. A nil staffID books the caller.
func (c *Client) CreateAssignment(ctx context.Context, date, slot string, staffID *int64) (*models.ShiftAssignment, error) {
	if staffID != nil && *staffID <= 0 {
		return nil, ErrInvalidStaffID
	}
	body := models.CreateAssignmentRequest{ShiftDate: date, ShiftName: slot, StaffID: staffID}
	var out models.ShiftAssignment
	if err := c.do(ctx, http.MethodPost, "/schedule", nil, body, &out, MsgAssignShift); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteAssignment removes one assignment by id.
func (c *Client) DeleteAssignment(ctx context.Context, id int64) error {
	path := "/schedule/" + strconv.FormatInt(id, 10)
	return c.do(ctx, http.MethodDelete, path, nil, nil, nil, MsgRemoveShift)
}

// Summary loads the weekly hours summary.
func (c *Client) Summary(ctx context.Context, weekStart string) (*models.WeekSummary, error) {
	q := url.Values{}
	if weekStart != "" {
		q.Set("start_date", weekStart)
	}
	var out models.WeekSummary
	if err := c.do(ctx, http.MethodGet, "/schedule/summary", q, nil, &out, MsgLoadSummary); err != nil {
		return nil, err
	}
	return &out, nil
}

// Login exchanges credentials for a bearer token.
func (c *Client) Login(ctx context.Context, username, password string) (*models.LoginResponse, error) {
	var out models.LoginResponse
	body := models.LoginRequest{Username: username, Password: password}
	if err := c.do(ctx, http.MethodPost, "/auth/login", nil, body, &out, MsgLogin); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, method, path string, q url.Values, in, out any, fallback string) error {
	u := c.baseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}

	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return &APIError{Message: fallback, Err: fmt.Errorf("encode request: %w", err)}
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return &APIError{Message: fallback, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("schedule request failed", zap.String("method", method), zap.String("path", path), zap.Error(err))
		return &APIError{Message: fallback, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		c.logger.Warn("schedule response unreadable", zap.String("method", method), zap.String("path", path), zap.Error(err))
		return &APIError{Status: resp.StatusCode, Message: fallback, Err: fmt.Errorf("read response: %w", err)}
	}
	payload := decodeLenient(raw)

	c.logger.Debug("schedule request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := fallback
		if s, ok := payload["error"].(string); ok && strings.TrimSpace(s) != "" {
			msg = s
		}
		return &APIError{Status: resp.StatusCode, Message: msg}
	}

	if out == nil || len(payload) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &APIError{Status: resp.StatusCode, Message: fallback, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

// decodeLenient treats an empty or non-object body as {}.
func decodeLenient(raw []byte) map[string]any {
	out := map[string]any{}
	if len(bytes.TrimSpace(raw)) == 0 {
		return out
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return map[string]any{}
	}
	return out
}

// Message extracts the user-facing text of err, falling back to fallback.
func Message(err error, fallback string) string {
	if err == nil {
		return ""
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return fallback
}
