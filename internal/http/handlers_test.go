package http

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"moneydesk/internal/api"
	"moneydesk/internal/core"
	"moneydesk/internal/receipt"
)

// fakeBackend implements every api port with canned data.
type fakeBackend struct {
	clients      []core.Client
	transactions []core.Transaction
	banks        []core.Bank
	limit        decimal.Decimal
	monthlyTotal decimal.Decimal
	balance      decimal.Decimal
	summaries    []core.UserSummary
	history      []core.BalancePoint

	failAll     bool
	topUps      []core.FundingRequest
	withdrawals []core.FundingRequest
	created     []core.Client
	updated     []core.Client
}

var errBackend = errors.New("backend unavailable")

func (f *fakeBackend) CreateClient(_ context.Context, c core.Client) error {
	if f.failAll {
		return errBackend
	}
	f.created = append(f.created, c)
	return nil
}

func (f *fakeBackend) UpdateClient(_ context.Context, c core.Client) error {
	if f.failAll {
		return errBackend
	}
	f.updated = append(f.updated, c)
	return nil
}

func (f *fakeBackend) CheckClient(_ context.Context, name, surname, middleName string) (core.ClientProfile, error) {
	if f.failAll {
		return core.ClientProfile{}, errBackend
	}
	for _, c := range f.clients {
		if c.Name == name && c.Surname == surname && c.MiddleName == middleName {
			return core.ClientProfile{Exists: true, Client: c, Transactions: f.transactions}, nil
		}
	}
	return core.ClientProfile{}, nil
}

func (f *fakeBackend) ClientID(_ context.Context, name, surname, middleName string) (int64, error) {
	for _, c := range f.clients {
		if c.Name == name && c.Surname == surname && c.MiddleName == middleName {
			return c.ID, nil
		}
	}
	return 0, api.ErrClientNotFound
}

func (f *fakeBackend) ClientPhone(_ context.Context, clientID int64) (string, error) {
	for _, c := range f.clients {
		if c.ID == clientID {
			return c.Phone, nil
		}
	}
	return "", api.ErrClientNotFound
}

func (f *fakeBackend) Balance(context.Context, int64) (decimal.Decimal, error) {
	if f.failAll {
		return decimal.Decimal{}, errBackend
	}
	return f.balance, nil
}

func (f *fakeBackend) AllTransactions(_ context.Context, clientName string) ([]core.Transaction, error) {
	if f.failAll {
		return nil, errBackend
	}
	if clientName == "" {
		return f.transactions, nil
	}
	var out []core.Transaction
	for _, tx := range f.transactions {
		if strings.Contains(tx.Client.FullName(), clientName) {
			out = append(out, tx)
		}
	}
	return out, nil
}

func (f *fakeBackend) MonthlyTotal(context.Context, int64) (decimal.Decimal, error) {
	if f.failAll {
		return decimal.Decimal{}, errBackend
	}
	return f.monthlyTotal, nil
}

func (f *fakeBackend) Banks(context.Context) ([]core.Bank, error) {
	if f.failAll {
		return nil, errBackend
	}
	return f.banks, nil
}

func (f *fakeBackend) MonthlyLimit(context.Context) (decimal.Decimal, error) {
	if f.failAll {
		return decimal.Decimal{}, errBackend
	}
	return f.limit, nil
}

func (f *fakeBackend) TopUp(_ context.Context, req core.FundingRequest) error {
	if f.failAll {
		return errBackend
	}
	f.topUps = append(f.topUps, req)
	f.monthlyTotal = f.monthlyTotal.Add(req.Amount)
	return nil
}

func (f *fakeBackend) Withdraw(_ context.Context, req core.FundingRequest) error {
	if f.failAll {
		return errBackend
	}
	f.withdrawals = append(f.withdrawals, req)
	f.balance = f.balance.Sub(req.Amount)
	return nil
}

func (f *fakeBackend) TransactionsSummary(context.Context, string) ([]core.UserSummary, error) {
	if f.failAll {
		return nil, errBackend
	}
	return f.summaries, nil
}

func (f *fakeBackend) BalanceHistory(context.Context, string, string, string) ([]core.BalancePoint, error) {
	if f.failAll {
		return nil, errBackend
	}
	return f.history, nil
}

func newFakeBackend() *fakeBackend {
	ivan := core.Client{
		ID: 1, Name: "Иван", Surname: "Петров", MiddleName: "Сергеевич",
		Phone: "+79991234567", Wallet: "1234567890123456",
	}
	return &fakeBackend{
		clients: []core.Client{ivan},
		transactions: []core.Transaction{
			{
				ID:       10,
				Date:     time.Date(2025, 3, 15, 9, 0, 0, 0, time.UTC),
				Amount:   decimal.NewFromInt(500),
				Bank:     core.Bank{ID: 1, Name: "Сбербанк"},
				Approved: true,
				Client:   ivan,
			},
		},
		banks:        []core.Bank{{ID: 1, Name: "Сбербанк"}, {ID: 2, Name: "ВТБ"}},
		limit:        decimal.NewFromInt(100000),
		monthlyTotal: decimal.NewFromInt(1000),
		balance:      decimal.NewFromInt(2000),
		summaries: []core.UserSummary{
			{UserID: 1, UserName: "Петров Иван", Income: decimal.NewFromInt(500), Expense: decimal.Zero},
		},
	}
}

func newTestServer(t *testing.T, backend *fakeBackend) *Server {
	t.Helper()
	srv := NewServer(":0", backend, backend, backend, backend, backend, receipt.Fonts{})
	t.Cleanup(func() {
		_ = srv.Shutdown(context.Background())
	})
	return srv
}

func doRequest(srv *Server, method, target string, form url.Values) *httptest.ResponseRecorder {
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, req)
	return rec
}

func TestIndexServesShell(t *testing.T) {
	srv := newTestServer(t, newFakeBackend())
	rec := doRequest(srv, http.MethodGet, "/", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "MoneyDesk") || !strings.Contains(body, `id="content"`) {
		t.Fatalf("shell markup missing: %s", body[:120])
	}
	if rec.Header().Get("X-Frame-Options") != "DENY" {
		t.Fatal("security headers not applied")
	}
}

func TestTransactionsListAndFilter(t *testing.T) {
	srv := newTestServer(t, newFakeBackend())

	rec := doRequest(srv, http.MethodGet, "/transactions", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{"Петров Иван Сергеевич", "1234567890123456", "Сбербанк", "15.03.2025, 12:00"} {
		if !strings.Contains(body, want) {
			t.Fatalf("transactions missing %q", want)
		}
	}

	rec = doRequest(srv, http.MethodGet, "/transactions?clientName="+url.QueryEscape("Сидоров"), nil)
	if strings.Contains(rec.Body.String(), "Петров") {
		t.Fatal("filter did not exclude non-matching client")
	}
}

func TestTransactionsDegradedBackend(t *testing.T) {
	backend := newFakeBackend()
	backend.failAll = true
	srv := newTestServer(t, backend)

	rec := doRequest(srv, http.MethodGet, "/transactions", nil)
	if !strings.Contains(rec.Body.String(), "Ошибка загрузки транзакций") {
		t.Fatalf("expected load-error placeholder, got: %s", rec.Body.String())
	}
}

func TestReceiptModal(t *testing.T) {
	srv := newTestServer(t, newFakeBackend())

	rec := doRequest(srv, http.MethodGet, "/transactions/receipt?id=10", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Получить чек по транзакции") {
		t.Fatal("receipt modal title missing")
	}

	rec = doRequest(srv, http.MethodGet, "/transactions/receipt?id=999", nil)
	if !strings.Contains(rec.Body.String(), "Ошибка загрузки") {
		t.Fatal("missing placeholder for unknown transaction")
	}

	rec = doRequest(srv, http.MethodGet, "/transactions/receipt?id=abc", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestClientCreate(t *testing.T) {
	backend := newFakeBackend()
	srv := newTestServer(t, backend)

	form := url.Values{
		"name":        {"Анна"},
		"surname":     {"Сидорова"},
		"middle_name": {"Павловна"},
		"birth":       {"1990-05-10"},
		"phone":       {"+79990000000"},
		"consent":     {"on"},
	}
	rec := doRequest(srv, http.MethodPost, "/clients/create", form)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	trigger := rec.Header().Get("HX-Trigger")
	if !strings.Contains(trigger, "Клиент успешно добавлен! Wallet: ") {
		t.Fatalf("success notification missing: %q", trigger)
	}
	if len(backend.created) != 1 {
		t.Fatalf("created %d clients, want 1", len(backend.created))
	}
	if len(backend.created[0].Wallet) != 16 {
		t.Fatalf("wallet %q is not 16 digits", backend.created[0].Wallet)
	}
}

func TestClientCreateValidation(t *testing.T) {
	backend := newFakeBackend()
	srv := newTestServer(t, backend)

	form := url.Values{
		"name":    {"Анна"},
		"surname": {"Сидорова"},
		"birth":   {"1990-05-10"},
		"phone":   {"12345"},
		"consent": {"on"},
	}
	rec := doRequest(srv, http.MethodPost, "/clients/create", form)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
	if !strings.Contains(rec.Header().Get("HX-Trigger"), "Телефон должен начинаться с +7 и содержать 11 цифр.") {
		t.Fatalf("phone message missing: %q", rec.Header().Get("HX-Trigger"))
	}
	if len(backend.created) != 0 {
		t.Fatal("invalid form must not reach the API")
	}
}

func TestClientCreateServerError(t *testing.T) {
	backend := newFakeBackend()
	backend.failAll = true
	srv := newTestServer(t, backend)

	form := url.Values{
		"name":        {"Анна"},
		"surname":     {"Сидорова"},
		"middle_name": {"Павловна"},
		"birth":       {"1990-05-10"},
		"phone":       {"+79990000000"},
		"consent":     {"on"},
	}
	rec := doRequest(srv, http.MethodPost, "/clients/create", form)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if !strings.Contains(rec.Header().Get("HX-Trigger"), "Ошибка добавления пользователя. Попробуйте снова.") {
		t.Fatalf("server-error message missing: %q", rec.Header().Get("HX-Trigger"))
	}
}

func TestClientEditFlow(t *testing.T) {
	backend := newFakeBackend()
	srv := newTestServer(t, backend)

	// Search form first.
	rec := doRequest(srv, http.MethodGet, "/clients/edit", nil)
	if !strings.Contains(rec.Body.String(), "Изменить данные клиента") {
		t.Fatal("edit search view missing")
	}

	// Found client yields the filled form.
	rec = doRequest(srv, http.MethodGet, "/clients/edit?fio="+url.QueryEscape("Петров Иван Сергеевич"), nil)
	if !strings.Contains(rec.Body.String(), `value="Иван"`) {
		t.Fatalf("filled form missing: %s", rec.Body.String())
	}

	// Unknown client yields the not-found modal.
	rec = doRequest(srv, http.MethodGet, "/clients/edit?fio="+url.QueryEscape("Никто Такой Нет"), nil)
	if !strings.Contains(rec.Body.String(), "Пользователь не найден") {
		t.Fatal("not-found modal missing")
	}

	// Update hits the API with the id set.
	form := url.Values{
		"id":          {"1"},
		"name":        {"Иван"},
		"surname":     {"Петров"},
		"middle_name": {"Сергеевич"},
		"birth":       {"1990-05-10"},
		"phone":       {"+79991112233"},
	}
	rec = doRequest(srv, http.MethodPost, "/clients/update", form)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if len(backend.updated) != 1 || backend.updated[0].ID != 1 {
		t.Fatalf("update not forwarded: %+v", backend.updated)
	}
}

func TestReplenishmentsSearch(t *testing.T) {
	srv := newTestServer(t, newFakeBackend())

	// Incomplete FIO rejected before any API call.
	rec := doRequest(srv, http.MethodPost, "/replenishments/search", url.Values{"fio": {"Петров Иван"}})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
	if !strings.Contains(rec.Header().Get("HX-Trigger"), "Введите полное ФИО через пробел.") {
		t.Fatalf("FIO message missing: %q", rec.Header().Get("HX-Trigger"))
	}

	// Full FIO renders the profile with seconds-precision dates.
	rec = doRequest(srv, http.MethodPost, "/replenishments/search", url.Values{"fio": {"Петров Иван Сергеевич"}})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Номер кошелька: 1234567890123456") {
		t.Fatal("profile header missing")
	}
	if !strings.Contains(body, "15.03.2025, 12:00:00") {
		t.Fatalf("seconds-precision date missing: %s", body)
	}
}

func TestTopUpFlow(t *testing.T) {
	backend := newFakeBackend()
	srv := newTestServer(t, backend)

	rec := doRequest(srv, http.MethodGet, "/topup?userId=1", nil)
	body := rec.Body.String()
	if !strings.Contains(body, "Пополнения за месяц: 1000") || !strings.Contains(body, "Лимит: 100000") {
		t.Fatalf("top-up context missing: %s", body)
	}

	// Guard: exceeding the limit sends nothing.
	form := url.Values{"userId": {"1"}, "bankId": {"1"}, "amount": {"999999"}}
	rec = doRequest(srv, http.MethodPost, "/topup/submit", form)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
	if !strings.Contains(rec.Header().Get("HX-Trigger"), "Превышен лимит.") {
		t.Fatalf("limit message missing: %q", rec.Header().Get("HX-Trigger"))
	}
	if len(backend.topUps) != 0 {
		t.Fatal("guarded top-up must not reach the API")
	}

	// Success refetches the running total.
	form.Set("amount", "500")
	rec = doRequest(srv, http.MethodPost, "/topup/submit", form)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Header().Get("HX-Trigger"), "Пополнение успешно выполнено.") {
		t.Fatalf("success message missing: %q", rec.Header().Get("HX-Trigger"))
	}
	if !strings.Contains(rec.Body.String(), "Пополнения за месяц: 1500") {
		t.Fatalf("refetched total missing: %s", rec.Body.String())
	}
	if len(backend.topUps) != 1 {
		t.Fatalf("top-ups sent = %d, want 1", len(backend.topUps))
	}
}

func TestWithdrawFlow(t *testing.T) {
	backend := newFakeBackend()
	srv := newTestServer(t, backend)

	rec := doRequest(srv, http.MethodGet, "/withdraw?userId=1", nil)
	if !strings.Contains(rec.Body.String(), "Баланс кошелька: 2000") {
		t.Fatalf("balance missing: %s", rec.Body.String())
	}

	// Guard: overdraw rejected locally.
	form := url.Values{"userId": {"1"}, "bankId": {"1"}, "amount": {"5000"}}
	rec = doRequest(srv, http.MethodPost, "/withdraw/submit", form)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
	if len(backend.withdrawals) != 0 {
		t.Fatal("guarded withdrawal must not reach the API")
	}

	// Success shows the refetched balance.
	form.Set("amount", "500")
	rec = doRequest(srv, http.MethodPost, "/withdraw/submit", form)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Баланс кошелька: 1500") {
		t.Fatalf("refetched balance missing: %s", rec.Body.String())
	}
}

func TestFundingRequiresBank(t *testing.T) {
	srv := newTestServer(t, newFakeBackend())
	form := url.Values{"userId": {"1"}, "amount": {"100"}}
	rec := doRequest(srv, http.MethodPost, "/topup/submit", form)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
	if !strings.Contains(rec.Header().Get("HX-Trigger"), "Выберите банк.") {
		t.Fatalf("bank message missing: %q", rec.Header().Get("HX-Trigger"))
	}
}

func TestChartsSummary(t *testing.T) {
	srv := newTestServer(t, newFakeBackend())

	rec := doRequest(srv, http.MethodGet, "/charts/summary", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	if strings.Count(body, "data:image/png;base64,") != 2 {
		t.Fatalf("expected two embedded chart images: %s", body[:120])
	}
}

func TestChartsHistoryNeedsFIO(t *testing.T) {
	srv := newTestServer(t, newFakeBackend())
	rec := doRequest(srv, http.MethodGet, "/charts/history", nil)
	if !strings.Contains(rec.Body.String(), "Введите ФИО клиента") {
		t.Fatalf("prompt missing: %s", rec.Body.String())
	}
}

func TestChartsHistoryRenders(t *testing.T) {
	backend := newFakeBackend()
	backend.history = []core.BalancePoint{
		{Date: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), Balance: decimal.NewFromInt(100)},
		{Date: time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC), Balance: decimal.NewFromInt(200)},
	}
	srv := newTestServer(t, backend)

	rec := doRequest(srv, http.MethodGet, "/charts/history?fio="+url.QueryEscape("Петров Иван Сергеевич"), nil)
	if !strings.Contains(rec.Body.String(), "data:image/png;base64,") {
		t.Fatalf("history chart missing: %s", rec.Body.String()[:120])
	}
}

func TestHealthAndReady(t *testing.T) {
	srv := newTestServer(t, newFakeBackend())

	rec := doRequest(srv, http.MethodGet, "/healthz", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("healthz status = %d", rec.Code)
	}

	rec = doRequest(srv, http.MethodGet, "/readyz", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("readyz status = %d: %s", rec.Code, rec.Body.String())
	}

	backend := newFakeBackend()
	backend.failAll = true
	srv2 := newTestServer(t, backend)
	rec = doRequest(srv2, http.MethodGet, "/readyz", nil)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("readyz with failing API = %d, want 503", rec.Code)
	}
}

func TestRateLimitOnPost(t *testing.T) {
	srv := newTestServer(t, newFakeBackend())

	var last *httptest.ResponseRecorder
	for i := 0; i < 61; i++ {
		last = doRequest(srv, http.MethodPost, "/replenishments/search", url.Values{"fio": {"a b c"}})
	}
	if last.Code != http.StatusTooManyRequests {
		t.Fatalf("status after 61 posts = %d, want 429", last.Code)
	}
	if last.Header().Get("Retry-After") != "60" {
		t.Fatalf("Retry-After = %q", last.Header().Get("Retry-After"))
	}
}

func TestReportPDFRequiresFullName(t *testing.T) {
	srv := newTestServer(t, newFakeBackend())
	rec := doRequest(srv, http.MethodGet, "/replenishments/report?fio="+url.QueryEscape("Петров Иван"), nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestConsentImageRequiresName(t *testing.T) {
	srv := newTestServer(t, newFakeBackend())
	rec := doRequest(srv, http.MethodGet, "/consent.png", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	_, _ = io.Copy(io.Discard, rec.Body)
}
