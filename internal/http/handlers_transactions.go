package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"moneydesk/internal/api"
	"moneydesk/internal/core"
	"moneydesk/internal/receipt"
)

// render executes a template and logs failures.
func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, data any) {
	if s.templates == nil {
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(w, name, data); err != nil {
		slog.ErrorContext(r.Context(), "Template execution failed", "error", err, "template", name)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// transactionRow is the display form of one ledger entry.
type transactionRow struct {
	ID       int64
	Date     string
	Client   string
	Wallet   string
	Bank     string
	Amount   string
	Approved bool
}

func toRow(tx core.Transaction) transactionRow {
	return transactionRow{
		ID:       tx.ID,
		Date:     core.FormatDateTime(tx.Date),
		Client:   tx.Client.FullName(),
		Wallet:   tx.Client.Wallet,
		Bank:     tx.Bank.Name,
		Amount:   tx.Amount.String(),
		Approved: tx.Approved,
	}
}

// handleTransactions renders the ledger table, optionally filtered by
// client name.
func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	filter := sanitizeInput(r.URL.Query().Get("clientName"))
	txs, err := s.txs.AllTransactions(r.Context(), filter)
	if err != nil {
		slog.ErrorContext(r.Context(), "Transactions list error", "error", err, "filter", filter)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`<div class="placeholder">Ошибка загрузки транзакций</div>`))
		return
	}

	rows := make([]transactionRow, 0, len(txs))
	for _, tx := range txs {
		rows = append(rows, toRow(tx))
	}
	s.render(w, r, "transactions.html", struct {
		Filter string
		Rows   []transactionRow
	}{Filter: filter, Rows: rows})
}

// findTransaction locates a ledger entry by id. The API has no
// single-transaction endpoint, so the full list is scanned.
func (s *Server) findTransaction(ctx context.Context, id int64) (core.Transaction, error) {
	txs, err := s.txs.AllTransactions(ctx, "")
	if err != nil {
		return core.Transaction{}, err
	}
	for _, tx := range txs {
		if tx.ID == id {
			return tx, nil
		}
	}
	return core.Transaction{}, fmt.Errorf("transaction %d: %w", id, api.ErrClientNotFound)
}

// handleReceiptModal renders the per-transaction receipt modal.
func (s *Server) handleReceiptModal(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r.URL.Query().Get("id"))
	if err != nil {
		http.Error(w, "invalid transaction id", http.StatusBadRequest)
		return
	}
	tx, err := s.findTransaction(r.Context(), id)
	if err != nil {
		slog.ErrorContext(r.Context(), "Receipt lookup error", "error", err, "transaction_id", id)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`<div class="placeholder">Ошибка загрузки транзакций</div>`))
		return
	}
	s.render(w, r, "receipt_modal.html", toRow(tx))
}

// handleReceiptPDF streams the rendered receipt for one transaction.
func (s *Server) handleReceiptPDF(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r.URL.Query().Get("id"))
	if err != nil {
		http.Error(w, "invalid transaction id", http.StatusBadRequest)
		return
	}
	tx, err := s.findTransaction(r.Context(), id)
	if err != nil {
		slog.ErrorContext(r.Context(), "Receipt lookup error", "error", err, "transaction_id", id)
		http.Error(w, "transaction not found", http.StatusNotFound)
		return
	}

	pdf, err := s.exporter.ReceiptPDF(r.Context(), tx)
	if err != nil {
		slog.ErrorContext(r.Context(), "Receipt export failed", "error", err, "transaction_id", id)
		http.Error(w, "receipt export failed", http.StatusInternalServerError)
		return
	}
	setDownloadHeaders(w, receipt.ReceiptFileName, "application/pdf")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf)
}
