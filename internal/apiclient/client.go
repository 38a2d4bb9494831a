// Пакет apiclient — HTTP-клиент QuickFolio API.
// Используется CLI для чтения и изменения папок и фолио.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bigkaa/quickfolio/internal/api/dto"
)

// APIError — ответ API с кодом ошибки.
type APIError struct {
	StatusCode int
	Message    string
	Details    json.RawMessage
}

func (e *APIError) Error() string {
	if len(e.Details) > 0 {
		return fmt.Sprintf("API вернул %d: %s %s", e.StatusCode, e.Message, string(e.Details))
	}
	return fmt.Sprintf("API вернул %d: %s", e.StatusCode, e.Message)
}

// IsNotFound сообщает, что err — ответ 404.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// Client — клиент QuickFolio API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	logger     *slog.Logger
}

// New создаёт клиент.
// baseURL — адрес API (например, http://localhost:8080).
// token — bearer-токен (пустая строка — без авторизации).
func New(baseURL, token string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		logger:     logger.With(slog.String("component", "api_client")),
	}
}

// --- Папки ---

// ListFiles — GET /api/files[?folioId=].
func (c *Client) ListFiles(ctx context.Context, folioID string) ([]dto.File, error) {
	var out dto.Envelope[[]dto.File]
	err := c.do(ctx, http.MethodGet, "/api/files", params("folioId", folioID), nil, &out)
	return out.Data, err
}

// GetFile — GET /api/files?id=.
func (c *Client) GetFile(ctx context.Context, id string) (*dto.File, error) {
	var out dto.Envelope[dto.File]
	if err := c.do(ctx, http.MethodGet, "/api/files", params("id", id), nil, &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

// CreateFile — POST /api/files.
func (c *Client) CreateFile(ctx context.Context, req dto.CreateFileRequest) (*dto.File, error) {
	var out dto.Envelope[dto.File]
	if err := c.do(ctx, http.MethodPost, "/api/files", nil, req, &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

// UpdateFile — PUT /api/files?id=.
func (c *Client) UpdateFile(ctx context.Context, id string, req dto.UpdateFileRequest) (*dto.File, error) {
	var out dto.Envelope[dto.File]
	if err := c.do(ctx, http.MethodPut, "/api/files", params("id", id), req, &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

// DeleteFile — DELETE /api/files?id=.
func (c *Client) DeleteFile(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/files", params("id", id), nil, nil)
}

// --- Фолио ---

// ListFolios — GET /api/folios[?fileId=].
func (c *Client) ListFolios(ctx context.Context, fileID string) ([]dto.Folio, error) {
	var out dto.Envelope[[]dto.Folio]
	err := c.do(ctx, http.MethodGet, "/api/folios", params("fileId", fileID), nil, &out)
	return out.Data, err
}

// GetFolio — GET /api/folios?id=.
func (c *Client) GetFolio(ctx context.Context, id string) (*dto.Folio, error) {
	var out dto.Envelope[dto.Folio]
	if err := c.do(ctx, http.MethodGet, "/api/folios", params("id", id), nil, &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

// CreateFolio — POST /api/folios.
func (c *Client) CreateFolio(ctx context.Context, req dto.CreateFolioRequest) (*dto.Folio, error) {
	var out dto.Envelope[dto.Folio]
	if err := c.do(ctx, http.MethodPost, "/api/folios", nil, req, &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

// UpdateFolio — PUT /api/folios?id=.
func (c *Client) UpdateFolio(ctx context.Context, id string, req dto.UpdateFolioRequest) (*dto.Folio, error) {
	var out dto.Envelope[dto.Folio]
	if err := c.do(ctx, http.MethodPut, "/api/folios", params("id", id), req, &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

// DeleteFolio — DELETE /api/folios?id=.
func (c *Client) DeleteFolio(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/folios", params("id", id), nil, nil)
}

// params строит query-строку из одной пары. Пустое значение не передаётся.
func params(key, value string) url.Values {
	if value == "" {
		return nil
	}
	return url.Values{key: {value}}
}

// do выполняет запрос и декодирует ответ в out (nil — тело игнорируется).
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	var reader io.Reader = http.NoBody
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("кодирование тела %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, reader)
	if err != nil {
		return fmt.Errorf("создание запроса %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req) //nolint:gosec // G704: URL из конфигурации
	if err != nil {
		return fmt.Errorf("запрос %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("Ответ API",
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", resp.StatusCode),
		slog.Duration("duration", time.Since(start)),
	)

	if resp.StatusCode >= http.StatusBadRequest {
		return decodeError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("декодирование ответа %s %s: %w", method, path, err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	data, _ := io.ReadAll(resp.Body)
	apiErr := &APIError{StatusCode: resp.StatusCode}

	var body dto.ErrorResponse
	if err := json.Unmarshal(data, &body); err == nil && body.Error != "" {
		apiErr.Message = body.Error
		apiErr.Details = body.Details
	} else {
		apiErr.Message = strings.TrimSpace(string(data))
	}
	return apiErr
}
