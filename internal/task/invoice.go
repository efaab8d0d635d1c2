package task

import (
	"context"
	"fmt"

	"docvision/internal/domain"
	"docvision/internal/parser"
	"docvision/internal/port"
	"docvision/internal/validator/crossfield"
)

const invoicePromptBody = "Return JSON with this structure:\n```json\n" +
	"{\n" +
	`  "header": {"vendor_name": "Company Name", "vendor_address": "Full address", "vendor_phone": "Phone", "vendor_email": "Email", "invoice_number": "INV-001", "date": "2024-01-15", "due_date": "2024-02-15", "customer_name": "Customer", "customer_address": "Address"},` + "\n" +
	`  "line_items": [{"description": "Item description", "quantity": 1, "unit_price": 10.00, "amount": 10.00, "tax_rate": 0.1}],` + "\n" +
	`  "summary": {"subtotal": 10.00, "tax": 1.00, "discount": 0.00, "total": 11.00, "currency": "USD"},` + "\n" +
	`  "payment": {"method": "Bank Transfer", "terms": "Net 30", "bank_details": "Account info if present"}` + "\n" +
	"}\n```\n\n" +
	"Extract all visible information. Use null for missing fields."

// invoiceDateRules orders the header dates. The header may call the issue
// date either "date" or "invoice_date".
var invoiceDateRules = []crossfield.DateRule{{Before: "invoice_date", After: "due_date"}}

// InvoiceHandler parses invoices and receipts and reconciles their totals.
type InvoiceHandler struct{ base }

func NewInvoiceHandler(backend port.GenerationBackend) *InvoiceHandler {
	return &InvoiceHandler{base{backend: backend}}
}

func (h *InvoiceHandler) Kind() domain.TaskKind { return domain.TaskInvoice }

func (h *InvoiceHandler) SystemPrompt() string {
	return "You are an assistant specialized in invoice and receipt parsing. " +
		"Extract vendor information, line items, taxes, totals, dates and payment details accurately."
}

func documentType(opts domain.TaskOptions) string {
	if opts.DocumentType == "receipt" {
		return "receipt"
	}
	return "invoice"
}

func (h *InvoiceHandler) UserPrompt(opts domain.TaskOptions) string {
	return promptOr(opts, fmt.Sprintf("Parse this %s and extract all information.\n\n%s", documentType(opts), invoicePromptBody))
}

func (h *InvoiceHandler) Process(ctx context.Context, image port.ImageRef, opts domain.TaskOptions) (*domain.Record, error) {
	raw, err := h.generate(ctx, h, image, opts)
	if err != nil {
		return nil, err
	}

	obj := parser.ParseObject(raw)
	if obj == nil {
		obj = map[string]any{}
	}

	data := domain.InvoiceData{
		DocumentType: documentType(opts),
		Header:       asMap(obj["header"]),
		LineItems:    asMapList(obj["line_items"]),
		Summary:      asMap(obj["summary"]),
		Payment:      asMap(obj["payment"]),
	}
	data.Validation = ValidateInvoice(data.Header, data.LineItems, data.Summary)

	var boxes []domain.Box
	for _, e := range asMapList(obj["bounding_boxes"]) {
		if b := labeledBox(e, asString(e["label"])); b != nil {
			boxes = append(boxes, *b)
		}
	}

	return &domain.Record{
		Kind:          domain.TaskInvoice,
		Text:          raw,
		Data:          data,
		BoundingBoxes: boxes,
		Metadata: map[string]any{
			"document_type": data.DocumentType,
			"item_count":    len(data.LineItems),
			"is_valid":      data.Validation.IsValid,
		},
	}, nil
}

// ValidateInvoice reconciles totals and checks that the invoice date does not
// fall after the due date.
func ValidateInvoice(header map[string]any, lineItems []map[string]any, summary map[string]any) *domain.ValidationResult {
	res := crossfield.ValidateTotals(lineItems, summary, crossfield.DefaultTolerance)

	issued := header["invoice_date"]
	if issued == nil {
		issued = header["date"]
	}
	dates := map[string]any{"invoice_date": issued, "due_date": header["due_date"]}
	for _, msg := range crossfield.ValidateDates(dates, invoiceDateRules) {
		res.AddError(msg)
	}
	return res
}
