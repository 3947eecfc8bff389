// Package api предоставляет HTTP-клиенты REST-бэкенда магазина.
//
// Все ответы бэкенда приходят в едином конверте
// {success, data[], title, detail, status}.
package api

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
)

// Envelope описывает единый конверт ответа бэкенда.
type Envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Title   string          `json:"title"`
	Detail  string          `json:"detail"`
	Status  int             `json:"status"`
}

// StatusError описывает ответ бэкенда с кодом ошибки.
type StatusError struct {
	Code   int
	Title  string
	Detail string
}

func (e *StatusError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("backend status %d: %s", e.Code, e.Detail)
	}
	return fmt.Sprintf("backend status %d", e.Code)
}

// Client инкапсулирует HTTP-взаимодействие с бэкендом магазина.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient создаёт клиент бэкенда по указанному базовому адресу.
// transport может быть nil, тогда используется транспорт по умолчанию.
func NewClient(baseURL string, timeout time.Duration, transport http.RoundTripper) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
	}
}

func (c *Client) do(req *http.Request) (*Envelope, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var env Envelope
	if len(body) > 0 {
		// Конверт разбирается и для ошибочных статусов: там лежат
		// title и detail.
		if err := json.Unmarshal(body, &env); err != nil && resp.StatusCode < 400 {
			return nil, fmt.Errorf("decode response: %w", err)
		}
	}

	if resp.StatusCode >= 400 {
		return nil, &StatusError{
			Code:   resp.StatusCode,
			Title:  env.Title,
			Detail: env.Detail,
		}
	}

	return &env, nil
}

func (c *Client) get(ctx context.Context, path string) (*Envelope, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	return c.do(req)
}

func (c *Client) postForm(ctx context.Context, path string, form url.Values) (*Envelope, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path,
		strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req)
}

func (c *Client) sendJSON(ctx context.Context, method, path string, payload any) (*Envelope, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.do(req)
}

// decodeList разбирает поле data конверта как список значений T.
// Отсутствующее или пустое data трактуется как пустой список.
func decodeList[T any](env *Envelope) ([]T, error) {
	if env == nil || len(env.Data) == 0 || string(env.Data) == "null" {
		return nil, nil
	}
	var items []T
	if err := json.Unmarshal(env.Data, &items); err != nil {
		return nil, fmt.Errorf("decode data: %w", err)
	}
	return items, nil
}

// decodeFirst разбирает поле data как список и возвращает первый элемент.
// Бэкенд местами кладёт одиночный объект без обёртки в список, это тоже
// поддерживается.
func decodeFirst[T any](env *Envelope) (T, error) {
	var zero T

	items, err := decodeList[T](env)
	if err == nil && len(items) > 0 {
		return items[0], nil
	}
	if err == nil && len(items) == 0 {
		return zero, fmt.Errorf("empty data")
	}

	var item T
	if err := json.Unmarshal(env.Data, &item); err != nil {
		return zero, fmt.Errorf("decode data: %w", err)
	}
	return item, nil
}
