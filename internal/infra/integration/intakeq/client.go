package intakeq

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/healingsoulutions/intake-api/internal/entity"
)

const DefaultBaseURL = "https://intakeq.com/api/v1"

// APIError is a non-2xx answer from IntakeQ.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("IntakeQ %d: %s", e.Status, truncate(e.Body, 120))
}

type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	log     *zap.Logger
	now     func() time.Time
}

func NewClient(apiKey, baseURL string, timeout time.Duration, log *zap.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    &http.Client{Timeout: timeout},
		log:     log.Named("intakeq"),
		now:     time.Now,
	}
}

// SearchClients runs the API's free-text client search with the full profile
// included, so notes and ids come back in one call.
func (c *Client) SearchClients(ctx context.Context, query string) ([]entity.RemoteClient, error) {
	var profiles []clientProfile
	if err := c.doJSON(ctx, http.MethodGet, searchPath(query), nil, &profiles); err != nil {
		return nil, err
	}

	out := make([]entity.RemoteClient, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, p.toEntity())
	}
	c.log.Debug("client search", zap.Int("results", len(out)))
	return out, nil
}

// SearchClientsRaw returns the search result untyped. Used by the operator
// probe to see every field the API stores.
func (c *Client) SearchClientsRaw(ctx context.Context, query string) ([]map[string]any, error) {
	var out []map[string]any
	if err := c.doJSON(ctx, http.MethodGet, searchPath(query), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SaveClient creates a client, or updates one when input.ClientID is set.
// IntakeQ uses POST /clients for both.
func (c *Client) SaveClient(ctx context.Context, input SaveClientInput) (*entity.RemoteClient, error) {
	payload := saveClientRequest{
		ClientID:              idValue(input.ClientID),
		FirstName:             input.FirstName,
		LastName:              input.LastName,
		Name:                  strings.TrimSpace(input.FirstName + " " + input.LastName),
		Email:                 input.Email,
		Phone:                 input.Phone,
		Address:               input.Address,
		AdditionalInformation: input.Notes,
	}

	var saved clientProfile
	if err := c.doJSON(ctx, http.MethodPost, "/clients", payload, &saved); err != nil {
		return nil, err
	}

	client := saved.toEntity()
	if client.ID == "" {
		client.ID = input.ClientID
	}
	return &client, nil
}

func (c *Client) AddTag(ctx context.Context, clientID, tag string) error {
	return c.doJSON(ctx, http.MethodPost, "/clientTags", clientTagRequest{
		ClientID: idValue(clientID),
		Tag:      tag,
	}, nil)
}

// UploadFile attaches a file to the client's Files tab.
func (c *Client) UploadFile(ctx context.Context, clientID string, file FileUpload) error {
	if clientID == "" {
		return fmt.Errorf("upload %s: missing client id", file.FileName)
	}

	contentType := file.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	boundary := NewBoundary(c.now())
	body, err := EncodeFile(boundary, "file", file.FileName, contentType, file.Data)
	if err != nil {
		return fmt.Errorf("encode %s: %w", file.FileName, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/files/"+url.PathEscape(clientID), bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("X-Auth-Key", c.apiKey)
	req.Header.Set("Content-Type", ContentType(boundary))

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("upload %s: %w", file.FileName, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(resp.Body)
		c.log.Error("file upload rejected", zap.Int("status", resp.StatusCode), zap.String("body", truncate(string(raw), 200)))
		return &APIError{Status: resp.StatusCode, Body: string(raw)}
	}

	c.log.Info("file uploaded", zap.String("file", file.FileName))
	return nil
}

func (c *Client) SendQuestionnaire(ctx context.Context, input SendQuestionnaireInput) error {
	return c.doJSON(ctx, http.MethodPost, "/intakes/send", sendQuestionnaireRequest{
		QuestionnaireID: input.QuestionnaireID,
		ClientID:        idValue(input.ClientID),
		ClientName:      input.ClientName,
		ClientEmail:     input.ClientEmail,
	}, nil)
}

// ListIntakeSummaries lists the forms sent to a client.
func (c *Client) ListIntakeSummaries(ctx context.Context, clientID string) ([]IntakeSummary, error) {
	var out []IntakeSummary
	endpoint := "/intakes/summary?client=" + url.QueryEscape(clientID)
	if err := c.doJSON(ctx, http.MethodGet, endpoint, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) doJSON(ctx context.Context, method, endpoint string, in, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal %s: %w", endpoint, err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, body)
	if err != nil {
		return err
	}
	c.setHeaders(req)

	c.log.Debug("request", zap.String("method", method), zap.String("endpoint", pathOnly(endpoint)))

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("intakeq %s %s: %w", method, pathOnly(endpoint), err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read intakeq response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.log.Error("request rejected",
			zap.String("endpoint", pathOnly(endpoint)),
			zap.Int("status", resp.StatusCode),
			zap.String("body", truncate(string(raw), 300)),
		)
		return &APIError{Status: resp.StatusCode, Body: string(raw)}
	}

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode intakeq %s: %w", pathOnly(endpoint), err)
	}
	return nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("X-Auth-Key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
}

func searchPath(query string) string {
	return "/clients?search=" + url.QueryEscape(query) + "&IncludeProfile=true"
}

// pathOnly keeps search terms (patient emails) out of logs.
func pathOnly(endpoint string) string {
	if i := strings.Index(endpoint, "?"); i != -1 {
		return endpoint[:i]
	}
	return endpoint
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
