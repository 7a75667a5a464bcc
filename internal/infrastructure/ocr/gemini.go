// Package ocr extracts structured invoice data from document images using
// the Gemini generateContent API. The transport is wrapped in a circuit
// breaker so a provider outage fails fast instead of queueing retries.
package ocr

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	"factura-scanner.backend/internal/domain/entities"
	domainerrors "factura-scanner.backend/internal/domain/errors"
	"factura-scanner.backend/pkg/logger"
)

const defaultEndpoint = "https://generativelanguage.googleapis.com/v1beta/models"

// Classification prompt tuned for Argentine transaction documents:
// facturas A/B/C/M, tickets, transfer and service-payment receipts.
const extractionPrompt = `Analiza el documento adjunto actuando como un experto en gestión administrativa y fiscal de Argentina.

PASO 1: CLASIFICACIÓN
Determina si la imagen es un documento de transacción válido, como:
- Facturas (Letras A, B, C, M) y Notas de Crédito.
- Tickets de compra o tickets fiscales.
- Comprobantes de transferencia (Mercado Pago, bancos).
- Comprobantes de pago de servicios (PagoMisCuentas, Red Link, comprobantes de entes públicos).
- Recibos de pago.

PASO 2: EXTRACCIÓN
Si es válido, extrae los datos. Si hay varios montos, usa el "Total" o "Monto Pagado".
Si es un comprobante de servicio, el "proveedor" es la empresa prestadora.

Responde EXCLUSIVAMENTE con este JSON:
{
  "isInvoice": boolean,
  "documentType": "factura" | "recibo" | "ticket" | "comprobante_pago" | "otro",
  "reason": "breve explicación de por qué es o no es válido",
  "data": {
    "proveedor": "Nombre de la empresa, comercio o receptor del pago",
    "cuit": "CUIT del emisor/proveedor (XX-XXXXXXXX-X)",
    "fecha": "DD/MM/YYYY",
    "numeroFactura": "Número de comprobante, operación o control",
    "total": number (usar punto decimal, sin símbolos de moneda),
    "iva": number | null (monto del IVA si está discriminado)
  }
}`

var validDocumentTypes = map[entities.DocumentType]struct{}{
	entities.DocumentTypeFactura:     {},
	entities.DocumentTypeRecibo:      {},
	entities.DocumentTypeTicket:      {},
	entities.DocumentTypeComprobante: {},
}

// GeminiClient calls the Gemini vision model for invoice extraction
type GeminiClient struct {
	endpoint   string
	apiKey     string
	model      string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[*entities.InvoiceExtraction]
}

// Option configures a GeminiClient
type Option func(*GeminiClient)

// WithHTTPClient overrides the underlying HTTP client (tests).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *GeminiClient) { c.httpClient = hc }
}

// WithEndpoint overrides the API endpoint (tests).
func WithEndpoint(endpoint string) Option {
	return func(c *GeminiClient) { c.endpoint = strings.TrimRight(endpoint, "/") }
}

// NewGeminiClient creates an extraction client for the given model.
func NewGeminiClient(apiKey, model string, opts ...Option) *GeminiClient {
	c := &GeminiClient{
		endpoint:   defaultEndpoint,
		apiKey:     apiKey,
		model:      model,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	c.breaker = gobreaker.NewCircuitBreaker[*entities.InvoiceExtraction](gobreaker.Settings{
		Name:    "gemini-ocr",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.Requests >= 10 && counts.TotalFailures*2 >= counts.Requests
		},
	})
	return c
}

// ExtractData downloads the media, sends it inline to Gemini and parses
// the structured result. The returned extraction is not checked for
// content validity here; callers own the isInvoice/data contract.
func (c *GeminiClient) ExtractData(ctx context.Context, mediaURL, filename string) (*entities.InvoiceExtraction, error) {
	result, err := c.breaker.Execute(func() (*entities.InvoiceExtraction, error) {
		return c.extract(ctx, mediaURL, filename)
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (c *GeminiClient) extract(ctx context.Context, mediaURL, filename string) (*entities.InvoiceExtraction, error) {
	data, mimeType, err := c.fetchMedia(ctx, mediaURL)
	if err != nil {
		return nil, err
	}

	reqBody := generateContentRequest{
		Contents: []content{{
			Role: "user",
			Parts: []part{
				{Text: extractionPrompt},
				{InlineData: &inlineData{
					MimeType: mimeType,
					Data:     base64.StdEncoding.EncodeToString(data),
				}},
			},
		}},
		GenerationConfig: generationConfig{
			ResponseMimeType: "application/json",
			Temperature:      0.1,
		},
	}

	raw, err := json.Marshal(reqBody)
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/%s:generateContent", c.endpoint, c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		errText, _ := io.ReadAll(resp.Body)
		return nil, domainerrors.NewHTTPError(resp.StatusCode, string(errText))
	}

	var genResp generateContentResponse
	if err := json.NewDecoder(resp.Body).Decode(&genResp); err != nil {
		return nil, err
	}

	text := genResp.text()
	if text == "" {
		return nil, fmt.Errorf("empty response from model %s", c.model)
	}

	var extraction entities.InvoiceExtraction
	if err := json.Unmarshal([]byte(text), &extraction); err != nil {
		return nil, fmt.Errorf("model returned unparseable JSON: %w", err)
	}

	// The model sometimes classifies correctly but forgets the boolean.
	if _, ok := validDocumentTypes[extraction.DocumentType]; ok {
		extraction.IsInvoice = true
	}

	if genResp.UsageMetadata != nil {
		extraction.Usage = &entities.TokenUsage{
			PromptTokens:     genResp.UsageMetadata.PromptTokenCount,
			CompletionTokens: genResp.UsageMetadata.CandidatesTokenCount,
			TotalTokens:      genResp.UsageMetadata.TotalTokenCount,
		}
		logger.Debug(ctx, "extraction token usage",
			zap.String("filename", filename),
			zap.Int("total_tokens", genResp.UsageMetadata.TotalTokenCount),
		)
	}

	return &extraction, nil
}

// fetchMedia downloads the document and reports its MIME type from the
// response headers, defaulting to image/jpeg the way the provider does.
func (c *GeminiClient) fetchMedia(ctx context.Context, mediaURL string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, mediaURL, nil)
	if err != nil {
		return nil, "", err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		errText, _ := io.ReadAll(resp.Body)
		return nil, "", domainerrors.NewHTTPError(resp.StatusCode, string(errText))
	}

	mimeType := resp.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = "image/jpeg"
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", err
	}
	return data, mimeType, nil
}

type generateContentRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type content struct {
	Role  string `json:"role"`
	Parts []part `json:"parts"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inlineData,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type generationConfig struct {
	ResponseMimeType string  `json:"responseMimeType"`
	Temperature      float64 `json:"temperature"`
}

type generateContentResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	UsageMetadata *struct {
		PromptTokenCount     int `json:"promptTokenCount"`
		CandidatesTokenCount int `json:"candidatesTokenCount"`
		TotalTokenCount      int `json:"totalTokenCount"`
	} `json:"usageMetadata"`
}

func (r *generateContentResponse) text() string {
	if len(r.Candidates) == 0 {
		return ""
	}
	var sb strings.Builder
	for _, p := range r.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	return sb.String()
}
