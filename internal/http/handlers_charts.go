package http

import (
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"strings"

	"golang.org/x/sync/errgroup"

	"moneydesk/internal/chart"
	"moneydesk/internal/receipt"
)

// handleCharts renders the analytics tab shell; the images load as
// separate partials.
func (s *Server) handleCharts(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, "charts.html", nil)
}

// handleChartsSummary renders the income and expense bar charts for the
// optional user-name filter. Both charts are rasterized concurrently.
func (s *Server) handleChartsSummary(w http.ResponseWriter, r *http.Request) {
	filter := sanitizeInput(r.URL.Query().Get("filter"))
	summaries, err := s.analytics.TransactionsSummary(r.Context(), filter)
	if err != nil {
		slog.ErrorContext(r.Context(), "Summary fetch failed", "error", err, "filter", filter)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`<div class="placeholder">Ошибка загрузки данных для графиков</div>`))
		return
	}

	var incomePNG, expensePNG []byte
	g, _ := errgroup.WithContext(r.Context())
	g.Go(func() (err error) {
		incomePNG, err = chart.IncomeByUser(summaries)
		return err
	})
	g.Go(func() (err error) {
		expensePNG, err = chart.ExpenseByUser(summaries)
		return err
	})
	if err := g.Wait(); err != nil {
		if errors.Is(err, chart.ErrNoData) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`<div class="placeholder">Нет данных для отображения</div>`))
			return
		}
		slog.ErrorContext(r.Context(), "Summary chart render failed", "error", err, "filter", filter)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`<div class="placeholder">Ошибка загрузки данных для графиков</div>`))
		return
	}

	s.render(w, r, "charts_summary.html", struct {
		IncomeURI  template.URL
		ExpenseURI template.URL
	}{
		IncomeURI:  template.URL(receipt.DataURI(incomePNG)),
		ExpenseURI: template.URL(receipt.DataURI(expensePNG)),
	})
}

// handleChartsHistory renders the balance line chart for one client and
// an optional date range (YYYY-MM-DD bounds).
func (s *Server) handleChartsHistory(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	fio := sanitizeInput(q.Get("fio"))
	if strings.TrimSpace(fio) == "" {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`<div class="placeholder">Введите ФИО клиента</div>`))
		return
	}

	points, err := s.analytics.BalanceHistory(r.Context(), fio, q.Get("startDate"), q.Get("endDate"))
	if err != nil {
		slog.ErrorContext(r.Context(), "Balance history fetch failed", "error", err, "fio", fio)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`<div class="placeholder">Ошибка загрузки данных для графиков</div>`))
		return
	}

	png, err := chart.BalanceHistory(points)
	if err != nil {
		if errors.Is(err, chart.ErrNoData) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`<div class="placeholder">Нет данных для отображения</div>`))
			return
		}
		slog.ErrorContext(r.Context(), "History chart render failed", "error", err, "fio", fio)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`<div class="placeholder">Ошибка загрузки данных для графиков</div>`))
		return
	}

	s.render(w, r, "charts_history.html", struct {
		URI template.URL
	}{URI: template.URL(receipt.DataURI(png))})
}
