package http

import (
	"log/slog"
	"net/http"

	"moneydesk/internal/core"
	"moneydesk/internal/receipt"
)

// profileData fills the client profile partial: the header, the history
// table with seconds-precision timestamps, and the funding shortcuts.
type profileData struct {
	ClientID int64
	FullName string
	Wallet   string
	FIO      string
	Rows     []historyRow
}

type historyRow struct {
	Date     string
	Amount   string
	Bank     string
	Approved bool
}

// handleReplenishments renders the FIO search view.
func (s *Server) handleReplenishments(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, "replenishments.html", nil)
}

// handleReplenishmentsSearch looks a client up by full name and renders
// the profile with their transaction history.
func (s *Server) handleReplenishmentsSearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	fio := sanitizeInput(r.Form.Get("fio"))
	surname, name, middleName, ok := core.SplitFIO(fio)
	if !ok {
		notify(w, "error", "Введите полное ФИО через пробел.")
		w.WriteHeader(http.StatusUnprocessableEntity)
		return
	}

	profile, err := s.dir.CheckClient(r.Context(), name, surname, middleName)
	if err != nil {
		slog.ErrorContext(r.Context(), "Client search failed", "error", err, "fio", fio)
		notify(w, "error", "Ошибка при поиске. Попробуйте позже.")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	if !profile.Exists {
		s.render(w, r, "notfound_modal.html", nil)
		return
	}

	data := profileData{
		ClientID: profile.Client.ID,
		FullName: profile.Client.FullName(),
		Wallet:   profile.Client.Wallet,
		FIO:      fio,
	}
	for _, tx := range profile.Transactions {
		data.Rows = append(data.Rows, historyRow{
			Date:     core.FormatDateTimeSec(tx.Date),
			Amount:   tx.Amount.String(),
			Bank:     tx.Bank.Name,
			Approved: tx.Approved,
		})
	}
	s.render(w, r, "profile.html", data)
}

// handleReportPDF streams the tabular transaction report for a client.
func (s *Server) handleReportPDF(w http.ResponseWriter, r *http.Request) {
	fio := sanitizeInput(r.URL.Query().Get("fio"))
	surname, name, middleName, ok := core.SplitFIO(fio)
	if !ok {
		http.Error(w, "full name is required", http.StatusBadRequest)
		return
	}

	profile, err := s.dir.CheckClient(r.Context(), name, surname, middleName)
	if err != nil || !profile.Exists {
		slog.ErrorContext(r.Context(), "Report lookup failed", "error", err, "fio", fio)
		http.Error(w, "client not found", http.StatusNotFound)
		return
	}

	pdf, err := s.exporter.ReportPDF(r.Context(), profile.Client, profile.Transactions)
	if err != nil {
		slog.ErrorContext(r.Context(), "Report export failed", "error", err, "fio", fio)
		http.Error(w, "report export failed", http.StatusInternalServerError)
		return
	}
	setDownloadHeaders(w, receipt.ReportFileName(profile.Client), "application/pdf")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf)
}
