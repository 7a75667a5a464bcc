package ocr

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"factura-scanner.backend/internal/domain/entities"
	domainerrors "factura-scanner.backend/internal/domain/errors"
)

func modelReply(t *testing.T, extraction map[string]interface{}) string {
	t.Helper()
	text, err := json.Marshal(extraction)
	require.NoError(t, err)

	reply, err := json.Marshal(map[string]interface{}{
		"candidates": []map[string]interface{}{{
			"content": map[string]interface{}{
				"parts": []map[string]string{{"text": string(text)}},
			},
		}},
		"usageMetadata": map[string]int{
			"promptTokenCount":     100,
			"candidatesTokenCount": 50,
			"totalTokenCount":      150,
		},
	})
	require.NoError(t, err)
	return string(reply)
}

func TestGeminiClient_ExtractData(t *testing.T) {
	media := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write([]byte("fake image bytes"))
	}))
	defer media.Close()

	var gotAPIKey string
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAPIKey = r.Header.Get("x-goog-api-key")

		var req generateContentRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Contents, 1)
		require.Len(t, req.Contents[0].Parts, 2)
		assert.NotEmpty(t, req.Contents[0].Parts[0].Text)
		assert.Equal(t, "image/png", req.Contents[0].Parts[1].InlineData.MimeType)
		assert.Equal(t, "application/json", req.GenerationConfig.ResponseMimeType)

		w.Write([]byte(modelReply(t, map[string]interface{}{
			"isInvoice":    true,
			"documentType": "factura",
			"data": map[string]interface{}{
				"proveedor": "Acme SRL",
				"cuit":      "30-11111111-1",
				"total":     1210.5,
			},
		})))
	}))
	defer api.Close()

	client := NewGeminiClient("api-key", "gemini-2.0-flash",
		WithEndpoint(api.URL), WithHTTPClient(api.Client()))

	result, err := client.ExtractData(context.Background(), media.URL, "factura.png")
	require.NoError(t, err)

	assert.Equal(t, "api-key", gotAPIKey)
	assert.True(t, result.IsInvoice)
	assert.Equal(t, entities.DocumentTypeFactura, result.DocumentType)
	assert.Equal(t, "Acme SRL", result.Data.Proveedor)
	assert.Equal(t, 150, result.Usage.TotalTokens)
}

func TestGeminiClient_FillsMissingIsInvoiceFromDocumentType(t *testing.T) {
	media := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("img"))
	}))
	defer media.Close()

	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(modelReply(t, map[string]interface{}{
			"documentType": "ticket",
			"data":         map[string]interface{}{"proveedor": "Kiosco"},
		})))
	}))
	defer api.Close()

	client := NewGeminiClient("k", "m", WithEndpoint(api.URL), WithHTTPClient(api.Client()))
	result, err := client.ExtractData(context.Background(), media.URL, "t.jpg")
	require.NoError(t, err)
	assert.True(t, result.IsInvoice)
}

func TestGeminiClient_MediaFetchErrorCarriesStatus(t *testing.T) {
	media := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "expired", http.StatusUnauthorized)
	}))
	defer media.Close()

	client := NewGeminiClient("k", "m", WithHTTPClient(media.Client()))
	_, err := client.ExtractData(context.Background(), media.URL, "x.jpg")
	require.Error(t, err)

	httpErr, ok := domainerrors.AsHTTPError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, httpErr.StatusCode)
}

func TestGeminiClient_APIErrorCarriesStatus(t *testing.T) {
	media := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("img"))
	}))
	defer media.Close()

	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer api.Close()

	client := NewGeminiClient("k", "m", WithEndpoint(api.URL), WithHTTPClient(api.Client()))
	_, err := client.ExtractData(context.Background(), media.URL, "x.jpg")
	require.Error(t, err)

	httpErr, ok := domainerrors.AsHTTPError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusTooManyRequests, httpErr.StatusCode)
}
