package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/shenikar/incident_report_system/internal/config"
	"github.com/shenikar/incident_report_system/internal/models"
	"github.com/sirupsen/logrus"
)

// StatusError - ответ сервера со статусом вне 2xx. Message содержит
// текст из тела {"error": "..."}, если сервер его прислал.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api: server returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("api: server returned status %d: %s", e.StatusCode, e.Message)
}

// Message возвращает присланный сервером текст ошибки или запасное сообщение
func Message(err error, fallback string) string {
	var statusErr *StatusError
	if errors.As(err, &statusErr) && statusErr.Message != "" {
		return statusErr.Message
	}
	return fallback
}

// Client - HTTP-клиент REST API инцидентов. Единственное место в программе,
// которое ходит в сеть.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *logrus.Logger
}

func NewClient(cfg *config.Config, logger *logrus.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.APIBaseURL, "/"),
		httpClient: &http.Client{
			Timeout: cfg.HTTPTimeout,
		},
		logger: logger,
	}
}

// Login выполняет вход по логину и паролю
func (c *Client) Login(ctx context.Context, creds models.Credentials) (*models.AuthResponse, error) {
	var resp models.AuthResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", "", creds, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Register регистрирует новый аккаунт
func (c *Client) Register(ctx context.Context, creds models.Credentials) (*models.AuthResponse, error) {
	var resp models.AuthResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/register", "", creds, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListIncidents возвращает все инциденты в серверном порядке
func (c *Client) ListIncidents(ctx context.Context, token string) ([]models.Incident, error) {
	var incidents []models.Incident
	if err := c.do(ctx, http.MethodGet, "/api/incidents", token, nil, &incidents); err != nil {
		return nil, err
	}
	return incidents, nil
}

// CreateIncident создает инцидент
func (c *Client) CreateIncident(ctx context.Context, token string, req models.IncidentRequest) (*models.Incident, error) {
	var incident models.Incident
	if err := c.do(ctx, http.MethodPost, "/api/incidents", token, req, &incident); err != nil {
		return nil, err
	}
	return &incident, nil
}

// UpdateIncident обновляет существующий инцидент по ID
func (c *Client) UpdateIncident(ctx context.Context, token string, id int64, req models.IncidentRequest) (*models.Incident, error) {
	var incident models.Incident
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/api/incidents/%d", id), token, req, &incident); err != nil {
		return nil, err
	}
	return &incident, nil
}

// DeleteIncident удаляет инцидент по ID. Тело успешного ответа игнорируется.
func (c *Client) DeleteIncident(ctx context.Context, token string, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/incidents/%d", id), token, nil, nil)
}

// do выполняет запрос и раскладывает ответ: 2xx декодируется в out,
// остальное превращается в *StatusError с текстом из тела.
func (c *Client) do(ctx context.Context, method, path, token string, body, out any) error {
	requestID := uuid.NewString()
	log := c.logger.WithFields(logrus.Fields{
		"component":  "api",
		"method":     method,
		"path":       path,
		"request_id": requestID,
	})

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("api: failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("api: failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("X-Request-ID", requestID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.WithError(err).Warn("Request failed")
		return fmt.Errorf("api: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		statusErr := &StatusError{StatusCode: resp.StatusCode, Message: errorMessage(resp.Body)}
		log.WithField("status", resp.StatusCode).Warn("Server returned an error status")
		return statusErr
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			log.WithError(err).Warn("Failed to decode response body")
			return fmt.Errorf("api: failed to decode response body: %w", err)
		}
	}

	log.Debug("Request completed")
	return nil
}

// errorMessage достает текст из тела ошибки; пустая строка, если тело не в формате {"error": "..."}
func errorMessage(r io.Reader) string {
	var body struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(r).Decode(&body); err != nil {
		return ""
	}
	return body.Error
}
