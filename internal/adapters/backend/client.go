package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/krishisense/krishi-cli/internal/domain"
	"github.com/krishisense/krishi-cli/internal/ports"
)

const maxResponseBytes = 1 << 20

// Client talks JSON over HTTP to the crop-recommendation backend. Requests
// are not retried; a transport failure surfaces to the caller with no state
// mutated.
type Client struct {
	baseURL    string
	httpClient *http.Client
	userAgent  string
}

var _ ports.Backend = (*Client)(nil)

func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		userAgent:  "krishi/cli",
	}
}

type authRequest struct {
	Name     string `json:"name,omitempty"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	ID    string `json:"_id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Token string `json:"token"`
}

type errorResponse struct {
	Message string `json:"message"`
}

type predictionPayload struct {
	ID                string            `json:"id"`
	CropName          string            `json:"cropName"`
	ConfidencePercent float64           `json:"confidencePercent"`
	CreatedDate       string            `json:"createdDate"`
	InputParameters   domain.Parameters `json:"inputParameters"`
}

func (c *Client) Login(ctx context.Context, email, password string) (domain.Session, error) {
	var payload authResponse
	err := c.do(ctx, http.MethodPost, "/auth/login", "", authRequest{Email: email, Password: password}, &payload)
	if err != nil {
		return domain.Session{}, err
	}

	return sessionFromAuth(payload, email), nil
}

func (c *Client) Register(ctx context.Context, name, email, password string) (domain.Session, error) {
	var payload authResponse
	err := c.do(ctx, http.MethodPost, "/auth/register", "", authRequest{Name: name, Email: email, Password: password}, &payload)
	if err != nil {
		return domain.Session{}, err
	}

	return sessionFromAuth(payload, email), nil
}

func (c *Client) SubmitPrediction(ctx context.Context, token string, params domain.Parameters) (domain.Prediction, error) {
	var payload predictionPayload
	if err := c.do(ctx, http.MethodPost, "/predictions", token, params, &payload); err != nil {
		return domain.Prediction{}, err
	}

	return fromPayload(payload), nil
}

func (c *Client) History(ctx context.Context, token string) ([]domain.Prediction, error) {
	var payload []predictionPayload
	if err := c.do(ctx, http.MethodGet, "/predictions/history", token, nil, &payload); err != nil {
		return nil, err
	}

	records := make([]domain.Prediction, 0, len(payload))
	for _, entry := range payload {
		records = append(records, fromPayload(entry))
	}

	return records, nil
}

func (c *Client) do(ctx context.Context, method, path, token string, body, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	request, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	request.Header.Set("Accept", "application/json")
	request.Header.Set("User-Agent", c.userAgent)
	request.Header.Set("X-Request-Id", uuid.NewString())
	if body != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		request.Header.Set("Authorization", "Bearer "+token)
	}

	response, err := c.httpClient.Do(request)
	if err != nil {
		return fmt.Errorf("perform request: %w", err)
	}
	defer response.Body.Close()

	data, err := io.ReadAll(io.LimitReader(response.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if response.StatusCode < 200 || response.StatusCode > 299 {
		return statusError(response.StatusCode, data)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	return nil
}

func statusError(status int, body []byte) error {
	message := strings.TrimSpace(string(body))
	var decoded errorResponse
	if err := json.Unmarshal(body, &decoded); err == nil && decoded.Message != "" {
		message = decoded.Message
	}

	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		return fmt.Errorf("%w: status %d: %s", domain.ErrSessionRejected, status, message)
	}

	return fmt.Errorf("backend status %d: %s", status, message)
}

func sessionFromAuth(payload authResponse, fallbackEmail string) domain.Session {
	email := payload.Email
	if email == "" {
		email = fallbackEmail
	}

	return domain.Session{
		User: domain.User{
			ID:    payload.ID,
			Name:  payload.Name,
			Email: email,
		},
		Token: payload.Token,
	}
}

func fromPayload(payload predictionPayload) domain.Prediction {
	return domain.Prediction{
		ID:                payload.ID,
		Crop:              payload.CropName,
		ConfidencePercent: payload.ConfidencePercent,
		CreatedDate:       parseCreatedDate(payload.CreatedDate),
		Parameters:        payload.InputParameters,
	}
}

func parseCreatedDate(raw string) time.Time {
	if raw == "" {
		return time.Time{}
	}

	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed
		}
	}

	return time.Time{}
}
