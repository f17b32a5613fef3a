package receipt

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"

	"moneydesk/internal/api"
	"moneydesk/internal/core"
)

// LoadErrorPlaceholder replaces a field whose dependent lookup failed.
// The export still completes with the degraded value in place.
const LoadErrorPlaceholder = "Ошибка загрузки"

// NewPaymentReference generates the decorative purpose-of-payment
// reference: "B" followed by 8 and 14 digits from two independent draws.
// It is not cryptographic and carries no uniqueness guarantee beyond low
// collision probability; it is a receipt decoration, not an identifier.
func NewPaymentReference() string {
	return fmt.Sprintf("B%08d%014d", rand.Int64N(100_000_000), rand.Int64N(100_000_000_000_000))
}

// Exporter produces the downloadable receipt and report PDFs. Exports are
// read-then-render: dependent data is fetched at export time and nothing
// is written back to the API.
type Exporter struct {
	dir      api.ClientDirectory
	renderer *Renderer
}

func NewExporter(dir api.ClientDirectory, fonts Fonts) *Exporter {
	return &Exporter{dir: dir, renderer: NewRenderer(fonts)}
}

// BuildReceiptData assembles the receipt fields for one transaction. The
// remaining balance and the contact phone are fetched fresh; a failed
// lookup degrades the field to the placeholder instead of aborting.
func (e *Exporter) BuildReceiptData(ctx context.Context, tx core.Transaction) ReceiptData {
	d := ReceiptData{
		Wallet:     tx.Client.Wallet,
		When:       core.FormatDateTime(tx.Date),
		ClientName: tx.Client.ShortName(),
		Amount:     tx.Amount.String() + " ₽",
		BankName:   tx.Bank.Name,
		Reference:  NewPaymentReference(),
	}

	clientID := tx.Client.ID
	if clientID == 0 {
		id, err := e.dir.ClientID(ctx, tx.Client.Name, tx.Client.Surname, tx.Client.MiddleName)
		if err != nil {
			slog.WarnContext(ctx, "receipt: client id lookup failed", "error", err)
			d.Balance = LoadErrorPlaceholder
			d.Phone = LoadErrorPlaceholder
			return d
		}
		clientID = id
	}

	if balance, err := e.dir.Balance(ctx, clientID); err != nil {
		slog.WarnContext(ctx, "receipt: balance lookup failed", "client_id", clientID, "error", err)
		d.Balance = LoadErrorPlaceholder
	} else {
		d.Balance = balance.String() + " ₽"
	}

	if phone, err := e.dir.ClientPhone(ctx, clientID); err != nil {
		slog.WarnContext(ctx, "receipt: phone lookup failed", "client_id", clientID, "error", err)
		d.Phone = LoadErrorPlaceholder
	} else {
		d.Phone = phone
	}
	return d
}

// ReceiptPDF renders the full receipt pipeline for one transaction:
// layout, raster, data URI, single-page PDF.
func (e *Exporter) ReceiptPDF(ctx context.Context, tx core.Transaction) ([]byte, error) {
	data := e.BuildReceiptData(ctx, tx)
	pngBytes, err := e.renderer.PNG(ReceiptLayout(data))
	if err != nil {
		return nil, fmt.Errorf("render receipt: %w", err)
	}
	return PDFFromDataURI(DataURI(pngBytes), ReceiptWidth, ReceiptHeight)
}

// ReportPDF renders the tabular A4 report for a client's history.
func (e *Exporter) ReportPDF(_ context.Context, c core.Client, txs []core.Transaction) ([]byte, error) {
	pngBytes, err := e.renderer.PNG(ReportLayout(c, txs))
	if err != nil {
		return nil, fmt.Errorf("render report: %w", err)
	}
	return PDFFromDataURI(DataURI(pngBytes), A4Width, A4Height)
}
