// Package receipt renders payment receipts, transaction reports and
// consent documents as raster images and exports them as single-page PDF
// or PNG downloads.
//
// Layouts are declarative: a document is a flat list of elements with
// absolute anchors, built by pure functions and consumed by the generic
// renderer. This keeps layout data testable without rasterizing pixels.
package receipt

import (
	"fmt"

	"moneydesk/internal/core"
)

// Logical document sizes in points. Receipts use a fixed 400x600 canvas;
// reports use A4. Report rasters are scaled 2x for resolution.
const (
	ReceiptWidth  = 400.0
	ReceiptHeight = 600.0

	A4Width  = 595.28
	A4Height = 841.89

	reportScale   = 2.0
	reportRowH    = 28.0
	reportMargin  = 40.0
	reportHeaderY = 150.0
)

type (
	// Color is an opaque RGB color.
	Color struct {
		R, G, B uint8
	}

	// Element is one drawable item of a layout. Elements draw in slice
	// order, so backgrounds must precede the text on top of them.
	Element interface {
		element()
	}

	// Text draws a string at an absolute anchor.
	Text struct {
		Value string
		X, Y  float64
		Size  float64
		Bold  bool
		Color Color
	}

	// Line draws a straight stroke.
	Line struct {
		X1, Y1, X2, Y2 float64
		Width          float64
		Color          Color
	}

	// Rect draws a rectangle, filled and/or stroked.
	Rect struct {
		X, Y, W, H  float64
		Fill        *Color
		Stroke      *Color
		StrokeWidth float64
	}

	// Layout is a complete document description in logical units.
	Layout struct {
		Width, Height float64
		Scale         float64 // raster scale factor; 0 means 1
		Background    Color
		Elements      []Element
	}
)

func (Text) element() {}
func (Line) element() {}
func (Rect) element() {}

var (
	white     = Color{255, 255, 255}
	black     = Color{0, 0, 0}
	gray      = Color{102, 102, 102}
	theme     = Color{110, 63, 242} // #6E3FF2
	themeSoft = Color{240, 231, 255}
)

// ReceiptData carries the pre-formatted field values of a single receipt.
// All fields are plain strings so a failed dependent lookup can substitute
// a placeholder without changing the layout.
type ReceiptData struct {
	Wallet     string
	When       string
	ClientName string
	Amount     string
	Balance    string
	Phone      string
	BankName   string
	Reference  string
}

// ReceiptLayout builds the fixed 400x600 receipt. Field order and anchors
// are hard requirements: wallet, separator, date/time, client name, amount,
// remaining balance, separator, payment details, purpose of payment.
func ReceiptLayout(d ReceiptData) Layout {
	return Layout{
		Width:      ReceiptWidth,
		Height:     ReceiptHeight,
		Background: white,
		Elements: []Element{
			Text{Value: "Номер кошелька", X: 30, Y: 40, Size: 11, Color: gray},
			Text{Value: d.Wallet, X: 30, Y: 62, Size: 16, Bold: true, Color: black},
			Line{X1: 30, Y1: 82, X2: 370, Y2: 82, Width: 1, Color: gray},
			Text{Value: d.When, X: 30, Y: 112, Size: 14, Color: black},
			Text{Value: d.ClientName, X: 30, Y: 142, Size: 14, Color: black},
			Text{Value: d.Amount, X: 30, Y: 205, Size: 32, Bold: true, Color: theme},
			Text{Value: "Остаток: " + d.Balance, X: 30, Y: 240, Size: 14, Color: gray},
			Line{X1: 30, Y1: 268, X2: 370, Y2: 268, Width: 1, Color: gray},
			Text{Value: "Реквизиты платежа", X: 30, Y: 300, Size: 13, Bold: true, Color: black},
			Text{Value: "Телефон: " + d.Phone, X: 30, Y: 328, Size: 13, Color: black},
			Text{Value: "Банк: " + d.BankName, X: 30, Y: 356, Size: 13, Color: black},
			Text{Value: "Назначение платежа", X: 30, Y: 400, Size: 13, Bold: true, Color: black},
			Text{Value: d.Reference, X: 30, Y: 428, Size: 13, Color: black},
		},
	}
}

// reportColumns are the four fixed-width columns of the tabular report.
var reportColumns = []struct {
	Title string
	Width float64
}{
	{"Дата", 175},
	{"Сумма", 110},
	{"Банк", 140},
	{"Подтверждено", 90.28},
}

// ReportLayout builds the single-page A4 transaction report: a title with
// the client's name and wallet, a theme-colored header band, one row per
// transaction with alternating background and bordered cells. Rows that do
// not fit the page are dropped.
func ReportLayout(c core.Client, txs []core.Transaction) Layout {
	l := Layout{
		Width:      A4Width,
		Height:     A4Height,
		Scale:      reportScale,
		Background: white,
	}

	l.Elements = append(l.Elements,
		Text{Value: "Отчёт по транзакциям", X: reportMargin, Y: 60, Size: 22, Bold: true, Color: theme},
		Text{Value: c.FullName(), X: reportMargin, Y: 92, Size: 14, Color: black},
		Text{Value: "Кошелёк: " + c.Wallet, X: reportMargin, Y: 116, Size: 12, Color: gray},
	)

	// Header band.
	tableW := A4Width - 2*reportMargin
	l.Elements = append(l.Elements, Rect{
		X: reportMargin, Y: reportHeaderY, W: tableW, H: reportRowH,
		Fill: &theme,
	})
	x := reportMargin
	for _, col := range reportColumns {
		l.Elements = append(l.Elements, Text{
			Value: col.Title, X: x + 8, Y: reportHeaderY + 19, Size: 12, Bold: true, Color: white,
		})
		x += col.Width
	}

	rowsAvail := float64(A4Height - reportHeaderY - reportRowH - reportMargin)
	maxRows := int(rowsAvail / reportRowH)
	if len(txs) > maxRows {
		txs = txs[:maxRows]
	}

	y := reportHeaderY + reportRowH
	for i, tx := range txs {
		if i%2 == 1 {
			l.Elements = append(l.Elements, Rect{
				X: reportMargin, Y: y, W: tableW, H: reportRowH,
				Fill: &themeSoft,
			})
		}
		cells := []string{
			core.FormatDateTimeSec(tx.Date),
			tx.Amount.String() + " ₽",
			tx.Bank.Name,
			approvedMark(tx.Approved),
		}
		x = reportMargin
		for ci, col := range reportColumns {
			l.Elements = append(l.Elements, Rect{
				X: x, Y: y, W: col.Width, H: reportRowH,
				Stroke: &gray, StrokeWidth: 0.5,
			})
			l.Elements = append(l.Elements, Text{
				Value: cells[ci], X: x + 8, Y: y + 19, Size: 11, Color: black,
			})
			x += col.Width
		}
		y += reportRowH
	}
	return l
}

func approvedMark(ok bool) string {
	if ok {
		return "Да"
	}
	return "Нет"
}

// ReportFileName is the deterministic download name of a client's report.
func ReportFileName(c core.Client) string {
	return fmt.Sprintf("%s_%s_отчет.pdf", c.Surname, c.Name)
}

// ReceiptFileName is the fixed download name of a single receipt.
const ReceiptFileName = "payment-details.pdf"
