// Package rest implements the api ports over the external HTTP JSON API.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"moneydesk/internal/api"
	"moneydesk/internal/core"
)

// DefaultBaseURL is used when no API base URL is configured.
const DefaultBaseURL = "http://localhost:5000"

type Client struct {
	baseURL string
	http    *http.Client
}

// Ensure interface conformance.
var (
	_ api.ClientDirectory   = (*Client)(nil)
	_ api.TransactionLister = (*Client)(nil)
	_ api.ReferenceData     = (*Client)(nil)
	_ api.WalletFunder      = (*Client)(nil)
	_ api.Analytics         = (*Client)(nil)
)

// New builds a client for the API at baseURL. An empty baseURL falls back
// to the local default.
func New(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *Client) CreateClient(ctx context.Context, cl core.Client) error {
	payload := map[string]string{
		"name":        cl.Name,
		"surname":     cl.Surname,
		"middle_name": cl.MiddleName,
		"birth":       cl.Birth.Format("2006-01-02"),
		"phone":       cl.Phone,
		"wallet":      cl.Wallet,
	}
	return c.postJSON(ctx, "/api/client", payload, nil)
}

func (c *Client) UpdateClient(ctx context.Context, cl core.Client) error {
	payload := map[string]any{
		"id":          cl.ID,
		"name":        cl.Name,
		"surname":     cl.Surname,
		"middle_name": cl.MiddleName,
		"birth":       cl.Birth.Format("2006-01-02"),
		"phone":       cl.Phone,
	}
	return c.postJSON(ctx, "/api/client", payload, nil)
}

func (c *Client) CheckClient(ctx context.Context, name, surname, middleName string) (core.ClientProfile, error) {
	payload := map[string]string{
		"name":        name,
		"surname":     surname,
		"middle_name": middleName,
	}
	var resp checkClientResponse
	if err := c.postJSON(ctx, "/api/check-client", payload, &resp); err != nil {
		return core.ClientProfile{}, err
	}
	profile := core.ClientProfile{Exists: resp.Exists}
	if !resp.Exists {
		return profile, nil
	}
	profile.Client = resp.User.toCore()
	profile.Transactions = make([]core.Transaction, 0, len(resp.Transactions))
	for _, t := range resp.Transactions {
		profile.Transactions = append(profile.Transactions, t.toCore())
	}
	return profile, nil
}

func (c *Client) ClientID(ctx context.Context, name, surname, middleName string) (int64, error) {
	q := url.Values{}
	q.Set("name", name)
	q.Set("surname", surname)
	q.Set("middle_name", middleName)
	var resp struct {
		ID int64 `json:"id"`
	}
	if err := c.getJSON(ctx, "/api/client-id", q, &resp); err != nil {
		return 0, err
	}
	return resp.ID, nil
}

func (c *Client) ClientPhone(ctx context.Context, clientID int64) (string, error) {
	q := url.Values{}
	q.Set("clientId", strconv.FormatInt(clientID, 10))
	var resp struct {
		Phone string `json:"phone"`
	}
	if err := c.getJSON(ctx, "/api/client-number", q, &resp); err != nil {
		return "", err
	}
	return resp.Phone, nil
}

func (c *Client) Balance(ctx context.Context, userID int64) (decimal.Decimal, error) {
	q := url.Values{}
	q.Set("userId", strconv.FormatInt(userID, 10))
	var resp struct {
		Balance decimal.Decimal `json:"balance"`
	}
	if err := c.getJSON(ctx, "/api/balance", q, &resp); err != nil {
		return decimal.Decimal{}, err
	}
	return resp.Balance, nil
}

func (c *Client) AllTransactions(ctx context.Context, clientName string) ([]core.Transaction, error) {
	q := url.Values{}
	if clientName != "" {
		q.Set("clientName", clientName)
	}
	var resp []transactionJSON
	if err := c.getJSON(ctx, "/api/all-transactions", q, &resp); err != nil {
		return nil, err
	}
	out := make([]core.Transaction, 0, len(resp))
	for _, t := range resp {
		out = append(out, t.toCore())
	}
	return out, nil
}

// MonthlyTotal returns the rolling-month top-up total. The API answers 404
// for clients with no transactions yet; that is a zero total, not an error.
func (c *Client) MonthlyTotal(ctx context.Context, userID int64) (decimal.Decimal, error) {
	payload := map[string]int64{"userId": userID}
	var resp struct {
		Total decimal.Decimal `json:"total"`
	}
	err := c.postJSON(ctx, "/api/monthly-transactions", payload, &resp)
	if err != nil {
		var se *statusError
		if errors.As(err, &se) && se.code == http.StatusNotFound {
			return decimal.Zero, nil
		}
		return decimal.Decimal{}, err
	}
	return resp.Total, nil
}

func (c *Client) Banks(ctx context.Context) ([]core.Bank, error) {
	var resp []bankJSON
	if err := c.getJSON(ctx, "/api/banks", nil, &resp); err != nil {
		return nil, err
	}
	out := make([]core.Bank, 0, len(resp))
	for _, b := range resp {
		out = append(out, core.Bank{ID: b.ID, Name: b.Name})
	}
	return out, nil
}

func (c *Client) MonthlyLimit(ctx context.Context) (decimal.Decimal, error) {
	var resp struct {
		Limit decimal.Decimal `json:"limit"`
	}
	if err := c.getJSON(ctx, "/api/limits", nil, &resp); err != nil {
		return decimal.Decimal{}, err
	}
	return resp.Limit, nil
}

func (c *Client) TopUp(ctx context.Context, req core.FundingRequest) error {
	return c.postJSON(ctx, "/api/top-up", fundingPayload(req), nil)
}

func (c *Client) Withdraw(ctx context.Context, req core.FundingRequest) error {
	return c.postJSON(ctx, "/api/withdraw", fundingPayload(req), nil)
}

func fundingPayload(req core.FundingRequest) map[string]any {
	return map[string]any{
		"userId": req.UserID,
		"bankId": req.BankID,
		// Send a bare JSON number, as the API expects.
		"amount": json.Number(req.Amount.String()),
	}
}

func (c *Client) TransactionsSummary(ctx context.Context, filter string) ([]core.UserSummary, error) {
	q := url.Values{}
	if filter != "" {
		q.Set("filter", filter)
	}
	var resp []summaryJSON
	if err := c.getJSON(ctx, "/api/transactions-summary", q, &resp); err != nil {
		return nil, err
	}
	out := make([]core.UserSummary, 0, len(resp))
	for _, s := range resp {
		out = append(out, core.UserSummary{
			UserID:   s.UserID,
			UserName: s.UserName,
			Income:   s.Income,
			Expense:  s.Expense,
		})
	}
	return out, nil
}

func (c *Client) BalanceHistory(ctx context.Context, fio, startDate, endDate string) ([]core.BalancePoint, error) {
	q := url.Values{}
	q.Set("fio", fio)
	if startDate != "" {
		q.Set("startDate", startDate)
	}
	if endDate != "" {
		q.Set("endDate", endDate)
	}
	var resp []balancePointJSON
	if err := c.getJSON(ctx, "/api/balance-history", q, &resp); err != nil {
		return nil, err
	}
	out := make([]core.BalancePoint, 0, len(resp))
	for _, p := range resp {
		out = append(out, core.BalancePoint{Date: p.Date, Balance: p.Balance})
	}
	return out, nil
}

// statusError carries a non-2xx response so callers can branch on the code.
type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	if e.body == "" {
		return fmt.Sprintf("api: unexpected status %d", e.code)
	}
	return fmt.Sprintf("api: unexpected status %d: %s", e.code, e.body)
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("build request %s: %w", path, err)
	}
	return c.do(req, out)
}

func (c *Client) postJSON(ctx context.Context, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encode request %s: %w", path, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request %s: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &statusError{code: resp.StatusCode, body: string(bytes.TrimSpace(snippet))}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response %s: %w", req.URL.Path, err)
	}
	return nil
}
