package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"pos-terminal/internal/domain"
)

// Client talks to the order backend. Every response uses the service's JSON
// envelope: {"success": true, "data": ...} or
// {"success": false, "error": code, "message": reason}.
type Client struct {
	baseURL string
	http    *http.Client
	log     *zap.Logger
}

func New(baseURL string, timeout time.Duration, log *zap.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		log:     log,
	}
}

// APIError is a failure the backend reported itself. Message carries the
// human-readable reason and is surfaced to staff verbatim.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Code != "" {
		return e.Code
	}
	return fmt.Sprintf("backend returned status %d", e.Status)
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Message string          `json:"message"`
}

func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	res, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return err
	}

	var env envelope
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &env); err != nil {
			if res.StatusCode >= 400 {
				return &APIError{Status: res.StatusCode}
			}
			return fmt.Errorf("decode response: %w", err)
		}
	}

	c.log.Debug("backend call",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", res.StatusCode),
		zap.Int64("duration_ms", time.Since(start).Milliseconds()))

	if res.StatusCode >= 400 || (len(raw) > 0 && !env.Success) {
		return &APIError{Status: res.StatusCode, Code: env.Error, Message: env.Message}
	}
	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("decode response data: %w", err)
		}
	}
	return nil
}

func (c *Client) FetchMenu(ctx context.Context) ([]domain.MenuItem, error) {
	var items []domain.MenuItem
	if err := c.do(ctx, http.MethodGet, "/menu", nil, &items); err != nil {
		return nil, fmt.Errorf("fetch menu: %w", err)
	}
	return items, nil
}

func (c *Client) FetchCategories(ctx context.Context) ([]domain.Category, error) {
	var categories []domain.Category
	if err := c.do(ctx, http.MethodGet, "/categories", nil, &categories); err != nil {
		return nil, fmt.Errorf("fetch categories: %w", err)
	}
	return categories, nil
}

func (c *Client) FetchLiveOrders(ctx context.Context) ([]domain.LiveOrder, error) {
	var orders []domain.LiveOrder
	if err := c.do(ctx, http.MethodGet, "/live-orders", nil, &orders); err != nil {
		return nil, fmt.Errorf("fetch live orders: %w", err)
	}
	return orders, nil
}

func (c *Client) FetchHistory(ctx context.Context) ([]domain.CompletedOrder, error) {
	var history []domain.CompletedOrder
	if err := c.do(ctx, http.MethodGet, "/history", nil, &history); err != nil {
		return nil, fmt.Errorf("fetch history: %w", err)
	}
	return history, nil
}

// FetchAll is the full refresh read: all four collections, all-or-nothing.
func (c *Client) FetchAll(ctx context.Context) (*domain.Snapshot, error) {
	menu, err := c.FetchMenu(ctx)
	if err != nil {
		return nil, err
	}
	categories, err := c.FetchCategories(ctx)
	if err != nil {
		return nil, err
	}
	orders, err := c.FetchLiveOrders(ctx)
	if err != nil {
		return nil, err
	}
	history, err := c.FetchHistory(ctx)
	if err != nil {
		return nil, err
	}
	return &domain.Snapshot{
		Menu:       menu,
		Categories: categories,
		LiveOrders: orders,
		History:    history,
	}, nil
}

func (c *Client) CreateOrder(ctx context.Context, req domain.NewOrderRequest) error {
	if err := c.do(ctx, http.MethodPost, "/orders", req, nil); err != nil {
		return fmt.Errorf("create order: %w", err)
	}
	return nil
}

func (c *Client) UpdateOrderStatus(ctx context.Context, orderID string, status domain.OrderStatus) error {
	body := map[string]string{"status": string(status)}
	if err := c.do(ctx, http.MethodPut, "/orders/"+orderID+"/status", body, nil); err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	return nil
}

func (c *Client) CreateTransaction(ctx context.Context, req domain.TransactionRequest) (*domain.TransactionResult, error) {
	var result domain.TransactionResult
	if err := c.do(ctx, http.MethodPost, "/transactions", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) SaveMenuItem(ctx context.Context, input domain.MenuItemInput, id string) error {
	method := http.MethodPost
	path := "/menu"
	if id != "" {
		method = http.MethodPut
		path = "/menu/" + id
	}
	if err := c.do(ctx, method, path, input, nil); err != nil {
		return fmt.Errorf("save menu item: %w", err)
	}
	return nil
}

func (c *Client) DeleteMenuItem(ctx context.Context, id string) error {
	if err := c.do(ctx, http.MethodDelete, "/menu/"+id, nil, nil); err != nil {
		return fmt.Errorf("delete menu item: %w", err)
	}
	return nil
}
