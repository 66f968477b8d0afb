package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"libracatalog/internal/catalog"
	"libracatalog/internal/circulation"
	"libracatalog/internal/membership"
	"libracatalog/pkg/eventstore"
)

// CatalogClient talks to the catalog HTTP API.
type CatalogClient struct {
	baseURL string
	http    *http.Client
}

func NewCatalogClient(baseURL string, httpClient *http.Client) *CatalogClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &CatalogClient{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient}
}

// NewItem is the body of an add-item request.
type NewItem struct {
	Kind        catalog.Kind `json:"kind"`
	Title       string       `json:"title"`
	Author      string       `json:"author"`
	ISBN        string       `json:"isbn,omitempty"`
	Genre       *int         `json:"genre,omitempty"`
	IssueNumber string       `json:"issue_number,omitempty"`
	Duration    string       `json:"duration,omitempty"`
}

// ItemView is an item as the API renders it.
type ItemView struct {
	ID         uuid.UUID      `json:"id"`
	Kind       catalog.Kind   `json:"kind"`
	Title      string         `json:"title"`
	Author     string         `json:"author"`
	Status     catalog.Status `json:"status"`
	BorrowerID string         `json:"borrower_id"`
	Summary    string         `json:"summary"`
	Version    int            `json:"version"`
}

// Reply is an operation outcome with its desk message.
type Reply struct {
	circulation.Outcome
	Message string `json:"message"`
}

// StatusError is returned for non-2xx responses that carry no outcome.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status code %d: %s", e.Code, e.Body)
}

func (c *CatalogClient) AddItem(ctx context.Context, item NewItem) (ItemView, error) {
	var out ItemView
	err := c.do(ctx, http.MethodPost, "/items", item, &out, http.StatusCreated)
	return out, err
}

func (c *CatalogClient) Items(ctx context.Context) ([]ItemView, error) {
	var out []ItemView
	err := c.do(ctx, http.MethodGet, "/items", nil, &out, http.StatusOK)
	return out, err
}

// Search returns every item titled title. A miss yields an empty slice.
func (c *CatalogClient) Search(ctx context.Context, title string) ([]ItemView, error) {
	var out []ItemView
	err := c.do(ctx, http.MethodGet, "/items/search?title="+url.QueryEscape(title), nil, &out, http.StatusOK)
	var se *StatusError
	if errors.As(err, &se) && se.Code == http.StatusNotFound {
		return nil, nil
	}
	return out, err
}

func (c *CatalogClient) History(ctx context.Context, id uuid.UUID) ([]eventstore.Event, error) {
	var out []eventstore.Event
	err := c.do(ctx, http.MethodGet, "/items/"+id.String()+"/history", nil, &out, http.StatusOK)
	return out, err
}

func (c *CatalogClient) AddUser(ctx context.Context, name, id string) (membership.User, error) {
	var out membership.User
	err := c.do(ctx, http.MethodPost, "/users", map[string]string{"name": name, "id": id}, &out, http.StatusCreated)
	return out, err
}

func (c *CatalogClient) GetUser(ctx context.Context, id string) (membership.User, error) {
	var out membership.User
	err := c.do(ctx, http.MethodGet, "/users/"+url.PathEscape(id), nil, &out, http.StatusOK)
	return out, err
}

func (c *CatalogClient) Issue(ctx context.Context, title, userID string) (Reply, error) {
	return c.outcome(ctx, http.MethodPost, "/issue", loan{Title: title, UserID: userID})
}

func (c *CatalogClient) Return(ctx context.Context, title, userID string) (Reply, error) {
	return c.outcome(ctx, http.MethodPost, "/return", loan{Title: title, UserID: userID})
}

func (c *CatalogClient) Remove(ctx context.Context, title string) (Reply, error) {
	return c.outcome(ctx, http.MethodDelete, "/items?title="+url.QueryEscape(title), nil)
}

type loan struct {
	Title  string `json:"title"`
	UserID string `json:"user_id"`
}

// outcome decodes the outcome body whatever the status code, since 404
// and 409 are domain answers rather than transport failures.
func (c *CatalogClient) outcome(ctx context.Context, method, path string, body interface{}) (Reply, error) {
	resp, err := c.send(ctx, method, path, body)
	if err != nil {
		return Reply{}, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusNotFound, http.StatusConflict:
	default:
		return Reply{}, statusError(resp)
	}

	var out Reply
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Reply{}, fmt.Errorf("failed to decode outcome: %w", err)
	}
	return out, nil
}

func (c *CatalogClient) do(ctx context.Context, method, path string, body, out interface{}, want int) error {
	resp, err := c.send(ctx, method, path, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != want {
		return statusError(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func (c *CatalogClient) send(ctx context.Context, method, path string, body interface{}) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	return resp, nil
}

func statusError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
	return &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(data))}
}
