package sheets

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"factura-scanner.backend/internal/domain/entities"
	domainerrors "factura-scanner.backend/internal/domain/errors"
)

const localSheetName = "Hoja1"

var localHeader = []interface{}{
	"Fecha Registro", "Tipo", "Proveedor", "CUIT", "Fecha Doc",
	"Nro Comprobante", "Monto Total", "IVA",
}

// LocalStore implements the sheet store with .xlsx workbooks on disk, one
// per user. It stands in for Google Drive when OAuth is not configured so
// the bot stays usable in development and offline deployments.
type LocalStore struct {
	dir string

	mu sync.Mutex
}

// NewLocalStore creates the workbook directory if needed.
func NewLocalStore(dir string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &LocalStore{dir: dir}, nil
}

// CreateUserSheet creates a fresh workbook with the header row. The
// returned spreadsheet id is the workbook filename stem.
func (s *LocalStore) CreateUserSheet(_ context.Context, name, _ string) (*entities.UserSheet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.New().String()
	path := s.workbookPath(id)

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), localSheetName); err != nil {
		return nil, err
	}
	if err := f.SetSheetRow(localSheetName, "A1", &localHeader); err != nil {
		return nil, err
	}
	title := fmt.Sprintf("Mis Gastos - %s", name)
	if err := f.SetCellValue(localSheetName, "J1", title); err != nil {
		return nil, err
	}
	if err := f.SaveAs(path); err != nil {
		return nil, err
	}

	return &entities.UserSheet{
		SpreadsheetID: id,
		WebViewLink:   "file://" + path,
	}, nil
}

// AppendInvoiceRow appends one extraction row to the user's workbook.
func (s *LocalStore) AppendInvoiceRow(_ context.Context, spreadsheetID string, extraction *entities.InvoiceExtraction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.workbookPath(spreadsheetID)
	if _, err := os.Stat(path); err != nil {
		return domainerrors.ErrNotFound
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return err
	}
	defer f.Close()

	rows, err := f.GetRows(localSheetName)
	if err != nil {
		return err
	}

	row := InvoiceRow(extraction)
	cell := fmt.Sprintf("A%d", len(rows)+1)
	if err := f.SetSheetRow(localSheetName, cell, &row); err != nil {
		return err
	}
	return f.Save()
}

func (s *LocalStore) workbookPath(id string) string {
	// The id is used as a filename; strip any path components.
	clean := strings.ReplaceAll(filepath.Base(id), "..", "")
	return filepath.Join(s.dir, clean+".xlsx")
}
