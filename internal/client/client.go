// Package client talks to the expense tracker REST API on behalf of a
// logged-in user.
package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"
)

// ErrSessionInvalid is returned when the API rejects the stored token. The
// session has been cleared by then; the user has to log in again.
var ErrSessionInvalid = errors.New("session expired, please log in again")

// APIError is any other non-2xx answer.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// Client is safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
	sessions   *SessionStore
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// New returns a client for the API rooted at baseURL, e.g.
// http://localhost:3001/api.
func New(baseURL string, sessions *SessionStore, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		sessions: sessions,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Session returns the stored session, or ErrNoSession.
func (c *Client) Session() (Session, error) {
	return c.sessions.Load()
}

func (c *Client) Signup(ctx context.Context, email, password string) (Session, error) {
	return c.authenticate(ctx, "/auth/signup", email, password)
}

func (c *Client) Login(ctx context.Context, email, password string) (Session, error) {
	return c.authenticate(ctx, "/auth/login", email, password)
}

func (c *Client) authenticate(ctx context.Context, path, email, password string) (Session, error) {
	var resp authResponse
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, path, nil, body, &resp, false); err != nil {
		return Session{}, err
	}
	session := Session{Token: resp.Token, User: resp.User, SavedAt: time.Now()}
	if err := c.sessions.Save(session); err != nil {
		return Session{}, err
	}
	return session, nil
}

// Logout forgets the stored session. The API keeps no server-side state.
func (c *Client) Logout() error {
	return c.sessions.Clear()
}

func (c *Client) Profile(ctx context.Context) (User, error) {
	var u User
	err := c.do(ctx, http.MethodGet, "/auth/profile", nil, nil, &u, true)
	return u, err
}

// UpdateProfile changes the username and refreshes the stored profile.
func (c *Client) UpdateProfile(ctx context.Context, username string) (User, error) {
	var u User
	if err := c.do(ctx, http.MethodPut, "/auth/profile", nil, map[string]string{"username": username}, &u, true); err != nil {
		return User{}, err
	}
	if session, err := c.sessions.Load(); err == nil {
		session.User = u
		if err := c.sessions.Save(session); err != nil {
			return u, err
		}
	}
	return u, nil
}

func (c *Client) ChangePassword(ctx context.Context, current, next string) error {
	body := map[string]string{"currentPassword": current, "newPassword": next}
	return c.do(ctx, http.MethodPut, "/auth/password", nil, body, nil, true)
}

// DeleteAccount removes the account with all its data and clears the session.
func (c *Client) DeleteAccount(ctx context.Context) error {
	if err := c.do(ctx, http.MethodDelete, "/auth/account", nil, nil, nil, true); err != nil {
		return err
	}
	return c.sessions.Clear()
}

// ListExpenses returns the user's expenses. A non-empty query applies the
// server-side filter (month, category, search, sort...).
func (c *Client) ListExpenses(ctx context.Context, query url.Values) ([]Expense, error) {
	var out []Expense
	err := c.do(ctx, http.MethodGet, "/expenses", query, nil, &out, true)
	return out, err
}

func (c *Client) CreateExpense(ctx context.Context, e Expense) (Expense, error) {
	var out Expense
	err := c.do(ctx, http.MethodPost, "/expenses", nil, e, &out, true)
	return out, err
}

func (c *Client) UpdateExpense(ctx context.Context, id int64, e Expense) (Expense, error) {
	var out Expense
	err := c.do(ctx, http.MethodPut, "/expenses/"+strconv.FormatInt(id, 10), nil, e, &out, true)
	return out, err
}

func (c *Client) DeleteExpense(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, "/expenses/"+strconv.FormatInt(id, 10), nil, nil, nil, true)
}

// DeleteExpenses bulk deletes and returns the server's confirmation message.
func (c *Client) DeleteExpenses(ctx context.Context, ids []int64) (string, error) {
	var resp messageResponse
	err := c.do(ctx, http.MethodDelete, "/expenses", nil, map[string][]int64{"ids": ids}, &resp, true)
	return resp.Message, err
}

// ExportExpenses downloads the CSV for the filtered set.
func (c *Client) ExportExpenses(ctx context.Context, query url.Values) (Export, error) {
	resp, err := c.send(ctx, http.MethodGet, "/expenses/export", query, nil, true)
	if err != nil {
		return Export{}, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return Export{}, fmt.Errorf("read export: %w", err)
	}

	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		var notice struct {
			Notice string `json:"notice"`
		}
		if err := json.Unmarshal(data, &notice); err != nil {
			return Export{}, fmt.Errorf("decode export notice: %w", err)
		}
		return Export{Notice: notice.Notice}, nil
	}

	out := Export{Data: data}
	if _, params, err := mime.ParseMediaType(resp.Header.Get("Content-Disposition")); err == nil {
		out.Filename = params["filename"]
	}
	return out, nil
}

func (c *Client) ListBudgets(ctx context.Context) ([]Budget, error) {
	var out []Budget
	err := c.do(ctx, http.MethodGet, "/budgets", nil, nil, &out, true)
	return out, err
}

// SaveBudget creates or replaces the cap for the budget's category and month.
func (c *Client) SaveBudget(ctx context.Context, b Budget) (Budget, error) {
	var out Budget
	err := c.do(ctx, http.MethodPost, "/budgets", nil, b, &out, true)
	return out, err
}

func (c *Client) DeleteBudget(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, "/budgets/"+strconv.FormatInt(id, 10), nil, nil, nil, true)
}

func (c *Client) ListGoals(ctx context.Context) ([]Goal, error) {
	var out []Goal
	err := c.do(ctx, http.MethodGet, "/goals", nil, nil, &out, true)
	return out, err
}

func (c *Client) CreateGoal(ctx context.Context, g Goal) (Goal, error) {
	var out Goal
	err := c.do(ctx, http.MethodPost, "/goals", nil, g, &out, true)
	return out, err
}

func (c *Client) UpdateGoal(ctx context.Context, id int64, g Goal) (Goal, error) {
	var out Goal
	err := c.do(ctx, http.MethodPut, "/goals/"+strconv.FormatInt(id, 10), nil, g, &out, true)
	return out, err
}

func (c *Client) DeleteGoal(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, "/goals/"+strconv.FormatInt(id, 10), nil, nil, nil, true)
}

// do sends a JSON request and decodes a JSON answer into out when out is
// not nil.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any, authenticated bool) error {
	resp, err := c.send(ctx, method, path, query, body, authenticated)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// send performs the request and turns error statuses into errors. On
// success the caller owns the response body.
func (c *Client) send(ctx context.Context, method, path string, query url.Values, body any, authenticated bool) (*http.Response, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authenticated {
		session, err := c.sessions.Load()
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+session.Token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call %s %s: %w", method, path, err)
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}
	defer resp.Body.Close()

	if authenticated && (resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden) {
		if err := c.sessions.Clear(); err != nil {
			return nil, err
		}
		return nil, ErrSessionInvalid
	}
	return nil, readAPIError(resp)
}

func readAPIError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	var body errorResponse
	msg := "Request failed"
	if err := json.Unmarshal(raw, &body); err == nil && body.Error != "" {
		msg = body.Error
	} else if text := strings.TrimSpace(string(raw)); text != "" {
		msg = text
	}
	return &APIError{Status: resp.StatusCode, Message: msg}
}
