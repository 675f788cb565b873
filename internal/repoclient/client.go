// Пакет repoclient — HTTP-клиент Repository API.
// Единственный транспорт Editor Module: release detail, файловые
// sub-resources, contributors, publish. Аутентификация внешняя —
// клиент лишь подставляет bearer-токен, полученный от TokenProvider.
//
// Контракт ошибок: не-2xx ответ превращается в *APIError. Тело 400 —
// карта поле → список сообщений (ошибки валидации), остальные 4xx/5xx —
// непрозрачное сообщение. Сетевые сбои возвращаются обёрнутыми
// стандартными ошибками (без APIError).
package repoclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// TokenProvider — функция, возвращающая bearer-токен для запросов.
// nil-провайдер — запросы без Authorization header.
type TokenProvider func(ctx context.Context) (string, error)

// Client — HTTP-клиент Repository API.
type Client struct {
	httpClient    *http.Client
	baseURL       string
	tokenProvider TokenProvider
	logger        *slog.Logger
}

// New создаёт клиент Repository API.
// baseURL — базовый адрес Repository API (например, https://repo.example.com).
// timeout — таймаут HTTP-запросов (EM_REPO_TIMEOUT).
func New(baseURL string, timeout time.Duration, tokenProvider TokenProvider, logger *slog.Logger) *Client {
	return &Client{
		httpClient:    &http.Client{Timeout: timeout},
		baseURL:       strings.TrimRight(baseURL, "/"),
		tokenProvider: tokenProvider,
		logger:        logger.With(slog.String("component", "repo_client")),
	}
}

// Get выполняет GET и декодирует тело ответа в out (nil — тело игнорируется).
func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

// Post выполняет POST с JSON-телом body (nil — без тела).
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, body, out)
}

// Put выполняет PUT с JSON-телом body.
func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPut, path, body, out)
}

// Delete выполняет DELETE.
func (c *Client) Delete(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

// do — общий путь выполнения запроса.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("сериализация тела %s %s: %w", method, path, err)
		}
		reqBody = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.resolveURL(path), reqBody)
	if err != nil {
		return fmt.Errorf("создание запроса %s %s: %w", method, path, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	if err := c.authorize(ctx, req); err != nil {
		return err
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("запрос %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("Запрос к Repository API",
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", resp.StatusCode),
		slog.Duration("duration", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeAPIError(resp)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("декодирование ответа %s %s: %w", method, path, err)
		}
	}
	return nil
}

// authorize подставляет bearer-токен, если задан TokenProvider.
func (c *Client) authorize(ctx context.Context, req *http.Request) error {
	if c.tokenProvider == nil {
		return nil
	}
	token, err := c.tokenProvider(ctx)
	if err != nil {
		return fmt.Errorf("получение токена: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	return nil
}

// resolveURL возвращает абсолютный адрес запроса.
// Repository API выдаёт адреса sub-resources абсолютными либо
// относительными от корня — оба варианта поддерживаются.
func (c *Client) resolveURL(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.baseURL + path
}
