// Package sheets provisions and writes the per-user invoice spreadsheets.
// Two implementations of gateways.SheetStore live here: the Google
// Drive/Sheets client used in production and an excelize-backed local
// store for development and offline runs.
package sheets

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

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"factura-scanner.backend/internal/domain/entities"
	domainerrors "factura-scanner.backend/internal/domain/errors"
	"factura-scanner.backend/pkg/logger"
)

const (
	driveAPI  = "https://www.googleapis.com/drive/v3"
	sheetsAPI = "https://sheets.googleapis.com/v4"

	spreadsheetMime = "application/vnd.google-apps.spreadsheet"
	// Column layout: fecha registro, tipo, proveedor, cuit, fecha doc,
	// número, total, iva.
	appendRange = "Hoja1!A:H"
)

// GoogleStore is the Drive/Sheets implementation of the sheet store. Auth
// is OAuth2 with a long-lived refresh token; access tokens renew
// transparently through the oauth2 transport.
type GoogleStore struct {
	httpClient    *http.Client
	driveFolderID string
	driveBase     string
	sheetsBase    string
}

// GoogleStoreConfig carries the OAuth2 + Drive settings.
type GoogleStoreConfig struct {
	ClientID      string
	ClientSecret  string
	RefreshToken  string
	DriveFolderID string
}

// NewGoogleStore builds the store with an oauth2-refreshing HTTP client.
func NewGoogleStore(cfg GoogleStoreConfig) *GoogleStore {
	oauthCfg := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Endpoint:     google.Endpoint,
	}
	token := &oauth2.Token{RefreshToken: cfg.RefreshToken}
	client := oauthCfg.Client(context.Background(), token)
	client.Timeout = 30 * time.Second

	return &GoogleStore{
		httpClient:    client,
		driveFolderID: cfg.DriveFolderID,
		driveBase:     driveAPI,
		sheetsBase:    sheetsAPI,
	}
}

// NewGoogleStoreWithClient wires an explicit HTTP client (tests).
func NewGoogleStoreWithClient(client *http.Client, driveBase, sheetsBase, driveFolderID string) *GoogleStore {
	return &GoogleStore{
		httpClient:    client,
		driveFolderID: driveFolderID,
		driveBase:     strings.TrimRight(driveBase, "/"),
		sheetsBase:    strings.TrimRight(sheetsBase, "/"),
	}
}

// CreateUserSheet provisions a spreadsheet for a newly registered user.
// Create first without a parent folder (folder quota errors would block
// provisioning entirely), then share with the user, then move. The move is
// best effort.
func (s *GoogleStore) CreateUserSheet(ctx context.Context, name, email string) (*entities.UserSheet, error) {
	var created struct {
		ID          string `json:"id"`
		WebViewLink string `json:"webViewLink"`
	}
	createURL := fmt.Sprintf("%s/files?fields=%s", s.driveBase, url.QueryEscape("id,webViewLink"))
	err := s.doJSON(ctx, http.MethodPost, createURL, map[string]string{
		"name":     "Mis Gastos - " + name,
		"mimeType": spreadsheetMime,
	}, &created)
	if err != nil {
		return nil, err
	}

	permURL := fmt.Sprintf("%s/files/%s/permissions", s.driveBase, created.ID)
	err = s.doJSON(ctx, http.MethodPost, permURL, map[string]string{
		"type":         "user",
		"role":         "writer",
		"emailAddress": email,
	}, nil)
	if err != nil {
		return nil, err
	}

	if s.driveFolderID != "" {
		moveURL := fmt.Sprintf("%s/files/%s?addParents=%s", s.driveBase, created.ID, url.QueryEscape(s.driveFolderID))
		if err := s.doJSON(ctx, http.MethodPatch, moveURL, map[string]string{}, nil); err != nil {
			logger.Warn(ctx, "could not move sheet into shared folder",
				zap.String("spreadsheet_id", created.ID),
				zap.Error(err),
			)
		}
	}

	return &entities.UserSheet{
		SpreadsheetID: created.ID,
		WebViewLink:   created.WebViewLink,
	}, nil
}

// AppendInvoiceRow writes one extraction as a row in the user's sheet.
func (s *GoogleStore) AppendInvoiceRow(ctx context.Context, spreadsheetID string, extraction *entities.InvoiceExtraction) error {
	appendURL := fmt.Sprintf("%s/spreadsheets/%s/values/%s:append?valueInputOption=USER_ENTERED",
		s.sheetsBase, spreadsheetID, url.PathEscape(appendRange))

	body := map[string]interface{}{
		"values": [][]interface{}{InvoiceRow(extraction)},
	}
	return s.doJSON(ctx, http.MethodPost, appendURL, body, nil)
}

// DeleteUserSheet removes a provisioned spreadsheet (cleanup tooling).
func (s *GoogleStore) DeleteUserSheet(ctx context.Context, spreadsheetID string) error {
	deleteURL := fmt.Sprintf("%s/files/%s?supportsAllDrives=true", s.driveBase, spreadsheetID)
	return s.doJSON(ctx, http.MethodDelete, deleteURL, nil, nil)
}

func (s *GoogleStore) doJSON(ctx context.Context, method, rawURL string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		errText, _ := io.ReadAll(resp.Body)
		return domainerrors.NewHTTPError(resp.StatusCode, string(errText))
	}

	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

// InvoiceRow flattens an extraction into the fixed sheet column order.
func InvoiceRow(extraction *entities.InvoiceExtraction) []interface{} {
	docType := string(extraction.DocumentType)
	if docType == "" {
		docType = string(entities.DocumentTypeOtro)
	}

	var proveedor, cuit, fecha, numero string
	var total, iva float64
	if extraction.Data != nil {
		proveedor = extraction.Data.Proveedor
		cuit = extraction.Data.CUIT
		fecha = extraction.Data.Fecha
		numero = extraction.Data.NumeroFactura
		if extraction.Data.Total != nil {
			total = *extraction.Data.Total
		}
		if extraction.Data.IVA != nil {
			iva = *extraction.Data.IVA
		}
	}

	return []interface{}{
		time.Now().Format("02/01/2006 15:04:05"),
		docType,
		proveedor,
		cuit,
		fecha,
		numero,
		total,
		iva,
	}
}
