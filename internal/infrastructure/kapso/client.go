// Package kapso is the HTTP client for the Kapso WhatsApp Cloud API
// gateway. Requests authenticate with a bearer API key; media downloads are
// a two-step lookup-then-fetch because the provider hands out short-lived
// CDN URLs.
package kapso

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

	"factura-scanner.backend/pkg/logger"
)

const defaultBaseURL = "https://api.kapso.ai/meta/whatsapp"

// Client talks to the Kapso WhatsApp API
type Client struct {
	baseURL       string
	apiKey        string
	phoneNumberID string
	httpClient    *http.Client
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client (tests).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithBaseURL overrides the API base URL (tests).
func WithBaseURL(url string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(url, "/") }
}

// NewClient creates a Kapso client. apiKey and phoneNumberID come from
// configuration; there is no lazy global here.
func NewClient(apiKey, phoneNumberID string, opts ...Option) *Client {
	c := &Client{
		baseURL:       defaultBaseURL,
		apiKey:        apiKey,
		phoneNumberID: phoneNumberID,
		httpClient:    &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type sendTextRequest struct {
	MessagingProduct string   `json:"messaging_product"`
	To               string   `json:"to"`
	Type             string   `json:"type"`
	Text             textBody `json:"text"`
}

type textBody struct {
	Body string `json:"body"`
}

type sendImageRequest struct {
	MessagingProduct string    `json:"messaging_product"`
	To               string    `json:"to"`
	Type             string    `json:"type"`
	Image            imageBody `json:"image"`
}

type imageBody struct {
	Link    string `json:"link"`
	Caption string `json:"caption,omitempty"`
}

type markReadRequest struct {
	MessagingProduct string `json:"messaging_product"`
	Status           string `json:"status"`
	MessageID        string `json:"message_id"`
}

// SendText sends a plain text WhatsApp message. WhatsApp renders *bold*,
// _italics_ and the rest of its inline markup from the body as-is.
func (c *Client) SendText(ctx context.Context, to, body string) error {
	payload := sendTextRequest{
		MessagingProduct: "whatsapp",
		To:               to,
		Type:             "text",
		Text:             textBody{Body: body},
	}
	return c.post(ctx, fmt.Sprintf("/%s/messages", c.phoneNumberID), payload)
}

// SendImage sends an image by URL with an optional caption
func (c *Client) SendImage(ctx context.Context, to, imageURL, caption string) error {
	payload := sendImageRequest{
		MessagingProduct: "whatsapp",
		To:               to,
		Type:             "image",
		Image:            imageBody{Link: imageURL, Caption: caption},
	}
	return c.post(ctx, fmt.Sprintf("/%s/messages", c.phoneNumberID), payload)
}

// MarkAsRead flags a message as read. Failures are reported but callers
// treat this as best effort.
func (c *Client) MarkAsRead(ctx context.Context, messageID string) error {
	if c.phoneNumberID == "" {
		return nil
	}
	payload := markReadRequest{
		MessagingProduct: "whatsapp",
		Status:           "read",
		MessageID:        messageID,
	}
	return c.post(ctx, fmt.Sprintf("/%s/messages", c.phoneNumberID), payload)
}

// MediaInfo is the provider-side metadata for an uploaded media object.
type MediaInfo struct {
	URL      string `json:"url"`
	MimeType string `json:"mime_type"`
	FileSize int64  `json:"file_size"`
}

// GetMediaInfo resolves a media id to its metadata, including the
// short-lived download URL.
func (c *Client) GetMediaInfo(ctx context.Context, mediaID string) (*MediaInfo, error) {
	metaURL := fmt.Sprintf("%s/v21.0/%s?phone_number_id=%s", c.baseURL, mediaID, c.phoneNumberID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, metaURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		errText, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("media metadata lookup failed (%d): %s", resp.StatusCode, string(errText))
	}

	var meta MediaInfo
	if err := json.NewDecoder(resp.Body).Decode(&meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// DownloadMedia resolves the media id to a download URL and fetches the
// bytes. Signed lookaside.fbsbx.com URLs reject the Authorization header,
// so it is omitted for them.
func (c *Client) DownloadMedia(ctx context.Context, mediaID string) ([]byte, error) {
	meta, err := c.GetMediaInfo(ctx, mediaID)
	if err != nil {
		return nil, err
	}
	if meta.URL == "" {
		return nil, fmt.Errorf("media metadata for %s has no download url", mediaID)
	}

	dlReq, err := http.NewRequestWithContext(ctx, http.MethodGet, meta.URL, nil)
	if err != nil {
		return nil, err
	}
	dlReq.Header.Set("User-Agent", "factura-scanner-bot/1.0")
	if !strings.Contains(meta.URL, "lookaside.fbsbx.com") {
		dlReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	dlResp, err := c.httpClient.Do(dlReq)
	if err != nil {
		return nil, err
	}
	defer dlResp.Body.Close()

	if dlResp.StatusCode != http.StatusOK {
		errText, _ := io.ReadAll(dlResp.Body)
		return nil, fmt.Errorf("media download failed (%d): %s", dlResp.StatusCode, string(errText))
	}

	data, err := io.ReadAll(dlResp.Body)
	if err != nil {
		return nil, err
	}
	if len(data) < 100 {
		logger.Warn(ctx, "downloaded media is suspiciously small",
			zap.String("media_id", mediaID),
			zap.Int("bytes", len(data)),
		)
	}
	return data, nil
}

func (c *Client) post(ctx context.Context, path string, payload interface{}) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		errText, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("kapso request failed (%d): %s", resp.StatusCode, string(errText))
	}
	return nil
}
