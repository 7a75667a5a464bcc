package entities

// DocumentType is the classification a valid transaction document receives.
type DocumentType string

const (
	DocumentTypeFactura     DocumentType = "factura"
	DocumentTypeRecibo      DocumentType = "recibo"
	DocumentTypeTicket      DocumentType = "ticket"
	DocumentTypeComprobante DocumentType = "comprobante_pago"
	DocumentTypeOtro        DocumentType = "otro"
)

// InvoiceFields are the structured values extracted from a document.
type InvoiceFields struct {
	Proveedor     string   `json:"proveedor,omitempty"`
	CUIT          string   `json:"cuit,omitempty"`
	Fecha         string   `json:"fecha,omitempty"`
	NumeroFactura string   `json:"numeroFactura,omitempty"`
	Total         *float64 `json:"total,omitempty"`
	IVA           *float64 `json:"iva,omitempty"`
}

// TokenUsage carries model token accounting from the extraction call.
type TokenUsage struct {
	PromptTokens     int `json:"promptTokens,omitempty"`
	CompletionTokens int `json:"completionTokens,omitempty"`
	TotalTokens      int `json:"totalTokens,omitempty"`
}

// InvoiceExtraction is the OCR collaborator's result. A transport-level
// success with IsInvoice=false or missing Data is a content rejection, not
// a usable extraction.
type InvoiceExtraction struct {
	IsInvoice    bool           `json:"isInvoice"`
	DocumentType DocumentType   `json:"documentType,omitempty"`
	Reason       string         `json:"reason,omitempty"`
	Data         *InvoiceFields `json:"data,omitempty"`
	Usage        *TokenUsage    `json:"usage,omitempty"`
}

// UserSheet identifies the provisioned per-user spreadsheet.
type UserSheet struct {
	SpreadsheetID string `json:"spreadsheetId"`
	WebViewLink   string `json:"webViewLink"`
}
