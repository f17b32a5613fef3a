package http

import (
	"log/slog"
	"net/http"

	"moneydesk/internal/core"
	"moneydesk/internal/services"
)

// topUpData fills the top-up partial. Limit and MonthlyTotal are
// pre-formatted for display.
type topUpData struct {
	UserID       int64
	FIO          string
	Banks        []core.Bank
	Limit        string
	MonthlyTotal string
}

type withdrawData struct {
	UserID  int64
	FIO     string
	Banks   []core.Bank
	Balance string
}

// handleTopUpView renders the top-up form with banks, the monthly limit
// and the running monthly total, all fetched fresh.
func (s *Server) handleTopUpView(w http.ResponseWriter, r *http.Request) {
	userID, err := parseID(r.URL.Query().Get("userId"))
	if err != nil {
		http.Error(w, "invalid user id", http.StatusBadRequest)
		return
	}
	view, err := s.funding.TopUpContext(r.Context(), userID)
	if err != nil {
		slog.ErrorContext(r.Context(), "Top-up data load failed", "error", err, "user_id", userID)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`<div class="placeholder">Ошибка загрузки данных</div>`))
		return
	}
	s.render(w, r, "topup.html", topUpData{
		UserID:       userID,
		FIO:          sanitizeInput(r.URL.Query().Get("fio")),
		Banks:        view.Banks,
		Limit:        view.Limit.String(),
		MonthlyTotal: view.MonthlyTotal.String(),
	})
}

// handleTopUpSubmit applies the advisory limit guard and submits the
// deposit. The partial is re-rendered with refetched totals either way.
func (s *Server) handleTopUpSubmit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	userID, err := parseID(r.Form.Get("userId"))
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	bankID, err := parseID(r.Form.Get("bankId"))
	if err != nil {
		notify(w, "error", "Выберите банк.")
		w.WriteHeader(http.StatusUnprocessableEntity)
		return
	}

	err = s.funding.TopUp(r.Context(), userID, bankID, r.Form.Get("amount"))
	switch {
	case err == nil:
		notify(w, "success", "Пополнение успешно выполнено.")
	case services.IsGuard(err):
		notify(w, "error", err.Error())
		w.WriteHeader(http.StatusUnprocessableEntity)
		return
	default:
		slog.ErrorContext(r.Context(), "Top-up failed", "error", err, "user_id", userID, "bank_id", bankID)
		notify(w, "error", "Ошибка при пополнении. Попробуйте снова.")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	// Refetch the totals so the partial reflects the new state.
	view, err := s.funding.TopUpContext(r.Context(), userID)
	if err != nil {
		slog.ErrorContext(r.Context(), "Top-up refetch failed", "error", err, "user_id", userID)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`<div class="placeholder">Ошибка загрузки данных</div>`))
		return
	}
	s.render(w, r, "topup.html", topUpData{
		UserID:       userID,
		FIO:          sanitizeInput(r.Form.Get("fio")),
		Banks:        view.Banks,
		Limit:        view.Limit.String(),
		MonthlyTotal: view.MonthlyTotal.String(),
	})
}

// handleWithdrawView renders the withdrawal form with banks and the
// current balance.
func (s *Server) handleWithdrawView(w http.ResponseWriter, r *http.Request) {
	userID, err := parseID(r.URL.Query().Get("userId"))
	if err != nil {
		http.Error(w, "invalid user id", http.StatusBadRequest)
		return
	}
	view, err := s.funding.WithdrawContext(r.Context(), userID)
	if err != nil {
		slog.ErrorContext(r.Context(), "Withdrawal data load failed", "error", err, "user_id", userID)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`<div class="placeholder">Ошибка загрузки данных</div>`))
		return
	}
	s.render(w, r, "withdraw.html", withdrawData{
		UserID:  userID,
		FIO:     sanitizeInput(r.URL.Query().Get("fio")),
		Banks:   view.Banks,
		Balance: view.Balance.String(),
	})
}

// handleWithdrawSubmit applies the advisory balance guard and submits
// the debit. On success the balance shown is refetched, not recomputed
// locally.
func (s *Server) handleWithdrawSubmit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	userID, err := parseID(r.Form.Get("userId"))
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	bankID, err := parseID(r.Form.Get("bankId"))
	if err != nil {
		notify(w, "error", "Выберите банк.")
		w.WriteHeader(http.StatusUnprocessableEntity)
		return
	}

	err = s.funding.Withdraw(r.Context(), userID, bankID, r.Form.Get("amount"))
	switch {
	case err == nil:
		notify(w, "success", "Снятие успешно выполнено.")
	case services.IsGuard(err):
		notify(w, "error", err.Error())
		w.WriteHeader(http.StatusUnprocessableEntity)
		return
	default:
		slog.ErrorContext(r.Context(), "Withdrawal failed", "error", err, "user_id", userID, "bank_id", bankID)
		notify(w, "error", "Ошибка при снятии. Попробуйте снова.")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	view, err := s.funding.WithdrawContext(r.Context(), userID)
	if err != nil {
		slog.ErrorContext(r.Context(), "Withdrawal refetch failed", "error", err, "user_id", userID)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`<div class="placeholder">Ошибка загрузки данных</div>`))
		return
	}
	s.render(w, r, "withdraw.html", withdrawData{
		UserID:  userID,
		FIO:     sanitizeInput(r.Form.Get("fio")),
		Banks:   view.Banks,
		Balance: view.Balance.String(),
	})
}
