package sheets

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"factura-scanner.backend/internal/domain/entities"
	domainerrors "factura-scanner.backend/internal/domain/errors"
)

func TestLocalStore_CreateUserSheet(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStore(dir)
	require.NoError(t, err)

	sheet, err := store.CreateUserSheet(context.Background(), "María", "maria@acme.com")
	require.NoError(t, err)
	require.NotEmpty(t, sheet.SpreadsheetID)

	path := filepath.Join(dir, sheet.SpreadsheetID+".xlsx")
	_, err = os.Stat(path)
	require.NoError(t, err)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(localSheetName)
	require.NoError(t, err)
	require.NotEmpty(t, rows)
	assert.Equal(t, "Fecha Registro", rows[0][0])
	assert.Equal(t, "IVA", rows[0][7])
}

func TestLocalStore_AppendInvoiceRow(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStore(dir)
	require.NoError(t, err)

	sheet, err := store.CreateUserSheet(context.Background(), "María", "maria@acme.com")
	require.NoError(t, err)

	extraction := &entities.InvoiceExtraction{
		IsInvoice:    true,
		DocumentType: entities.DocumentTypeTicket,
		Data: &entities.InvoiceFields{
			Proveedor: "Supermercado Norte",
			Total:     floatPtr(890.0),
		},
	}

	require.NoError(t, store.AppendInvoiceRow(context.Background(), sheet.SpreadsheetID, extraction))
	require.NoError(t, store.AppendInvoiceRow(context.Background(), sheet.SpreadsheetID, extraction))

	f, err := excelize.OpenFile(filepath.Join(dir, sheet.SpreadsheetID+".xlsx"))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(localSheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "ticket", rows[1][1])
	assert.Equal(t, "Supermercado Norte", rows[2][2])
}

func TestLocalStore_AppendToUnknownSheet(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	err = store.AppendInvoiceRow(context.Background(), "missing", &entities.InvoiceExtraction{IsInvoice: true})
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestLocalStore_WorkbookPathStripsTraversal(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	path := store.workbookPath("../../etc/passwd")
	assert.Equal(t, filepath.Join(store.dir, "passwd.xlsx"), path)
}
