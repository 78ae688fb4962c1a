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

	"github.com/sirupsen/logrus"

	"syncalendar/internal/auth"
	"syncalendar/internal/calendar"
	"syncalendar/internal/models"
	"syncalendar/internal/usecases"
)

// HTTPClient is the part of *http.Client the API client needs.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// APIError is a non-2xx answer from the server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
}

// Client talks to the syncalendar REST API.
type Client struct {
	BaseURL string
	HTTP    HTTPClient
	Store   SecureStore
	Log     *logrus.Entry
}

func New(baseURL string, httpClient HTTPClient, store SecureStore, log *logrus.Entry) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if store == nil {
		store = &MemoryStore{}
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    httpClient,
		Store:   store,
		Log:     log,
	}
}

func (c *Client) do(ctx context.Context, method, path string, authed bool, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("error encoding request body: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return fmt.Errorf("error creating http request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authed {
		token, err := c.Store.Load()
		if err != nil {
			return err
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("error performing http request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("error reading response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		var payload struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(data, &payload) == nil && payload.Error != "" {
			apiErr.Message = payload.Error
		}
		return apiErr
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("error unmarshalling response body: %w", err)
	}
	return nil
}

// IsStatus reports whether err is an APIError with the given status.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}

// auth

func (c *Client) Register(ctx context.Context, r auth.Registration) (models.User, error) {
	var sess auth.Session
	if err := c.do(ctx, http.MethodPost, "/auth/register", false, r, &sess); err != nil {
		return models.User{}, err
	}
	return sess.User, c.Store.Save(sess.Token)
}

func (c *Client) Login(ctx context.Context, email, password string) (models.User, error) {
	in := map[string]string{"email": email, "password": password}

	var sess auth.Session
	if err := c.do(ctx, http.MethodPost, "/auth/login", false, in, &sess); err != nil {
		return models.User{}, err
	}
	return sess.User, c.Store.Save(sess.Token)
}

// Logout drops the saved token even when the server cannot be reached.
func (c *Client) Logout(ctx context.Context) error {
	if err := c.do(ctx, http.MethodPost, "/auth/logout", true, nil, nil); err != nil && !errors.Is(err, ErrNoToken) {
		c.Log.WithError(err).Warn("logout request failed")
	}
	return c.Store.Delete()
}

func (c *Client) Me(ctx context.Context) (models.User, error) {
	var user models.User
	err := c.do(ctx, http.MethodGet, "/user/me", true, nil, &user)
	return user, err
}

func (c *Client) SearchUsers(ctx context.Context, email string) ([]models.User, error) {
	var users []models.User
	err := c.do(ctx, http.MethodGet, "/user/search?email="+url.QueryEscape(email), true, nil, &users)
	return users, err
}

// events

func eventsPath(m *calendar.Month) string {
	if m == nil {
		return "/events"
	}
	q := url.Values{}
	q.Set("year", strconv.Itoa(m.Year))
	q.Set("month", strconv.Itoa(m.Index))
	return "/events?" + q.Encode()
}

// Events lists visible events, limited to m when it is not nil.
func (c *Client) Events(ctx context.Context, m *calendar.Month) ([]models.Event, error) {
	var out struct {
		Events []models.Event `json:"events"`
	}
	err := c.do(ctx, http.MethodGet, eventsPath(m), true, nil, &out)
	return out.Events, err
}

// RawEvents lists events without parsing their dates, so that one bad
// record does not fail the whole listing.
func (c *Client) RawEvents(ctx context.Context, m *calendar.Month) ([]usecases.RawOccurrence, error) {
	var out struct {
		Events []usecases.RawOccurrence `json:"events"`
	}
	err := c.do(ctx, http.MethodGet, eventsPath(m), true, nil, &out)
	return out.Events, err
}

func (c *Client) CreateEvent(ctx context.Context, p usecases.EventPayload) (models.Event, error) {
	var event models.Event
	err := c.do(ctx, http.MethodPost, "/events", true, p, &event)
	return event, err
}

func (c *Client) UpdateEvent(ctx context.Context, id string, p usecases.EventPayload) (models.Event, error) {
	var event models.Event
	err := c.do(ctx, http.MethodPut, "/events/"+url.PathEscape(id), true, p, &event)
	return event, err
}

func (c *Client) DeleteEvent(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/events/"+url.PathEscape(id), true, nil, nil)
}

// calendar

func (c *Client) Month(ctx context.Context, m calendar.Month) (calendar.MonthView, error) {
	q := url.Values{}
	q.Set("year", strconv.Itoa(m.Year))
	q.Set("month", strconv.Itoa(m.Index))

	var view calendar.MonthView
	err := c.do(ctx, http.MethodGet, "/calendar/month?"+q.Encode(), true, nil, &view)
	return view, err
}

// notifications

func (c *Client) Notifications(ctx context.Context) ([]models.Notification, error) {
	var out struct {
		Notifications []models.Notification `json:"notifications"`
	}
	err := c.do(ctx, http.MethodGet, "/notifications", true, nil, &out)
	return out.Notifications, err
}

func (c *Client) Feed(ctx context.Context) ([]models.FeedItem, error) {
	var out struct {
		Items []models.FeedItem `json:"items"`
	}
	err := c.do(ctx, http.MethodGet, "/notifications/feed", true, nil, &out)
	return out.Items, err
}

func (c *Client) MarkAllRead(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/notifications/read-all", true, nil, nil)
}
