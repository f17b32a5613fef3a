// Package memory is an in-memory implementation of the api ports, used for
// local development without the remote API and as a test double. Behavior
// mirrors the remote collaborator: withdrawals are checked against the
// balance server-side, top-ups against the monthly limit.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"moneydesk/internal/api"
	"moneydesk/internal/core"
)

type Store struct {
	mu      sync.Mutex
	clients []core.Client
	banks   []core.Bank
	txs     []core.Transaction
	limit   decimal.Decimal
	nextID  int64
	now     func() time.Time
}

// Ensure interface conformance.
var (
	_ api.ClientDirectory   = (*Store)(nil)
	_ api.TransactionLister = (*Store)(nil)
	_ api.ReferenceData     = (*Store)(nil)
	_ api.WalletFunder      = (*Store)(nil)
	_ api.Analytics         = (*Store)(nil)
)

// New returns an empty store with the given bank list and monthly limit.
func New(banks []core.Bank, limit decimal.Decimal) *Store {
	return &Store{
		banks:  banks,
		limit:  limit,
		nextID: 1,
		now:    time.Now,
	}
}

// NewSeeded returns a store with demo banks, clients and transactions so
// the UI has something to show out of the box.
func NewSeeded() *Store {
	s := New([]core.Bank{
		{ID: 1, Name: "Сбербанк"},
		{ID: 2, Name: "ВТБ"},
		{ID: 3, Name: "Тинькофф"},
	}, decimal.NewFromInt(100000))

	seed := []struct {
		client core.Client
		topUps []string
	}{
		{
			client: core.Client{
				Name: "Иван", Surname: "Петров", MiddleName: "Сергеевич",
				Birth: time.Date(1990, 3, 12, 0, 0, 0, 0, time.UTC),
				Phone: "+79991234567", Wallet: "4276160010203040",
			},
			topUps: []string{"1500", "300.50"},
		},
		{
			client: core.Client{
				Name: "Анна", Surname: "Смирнова", MiddleName: "Павловна",
				Birth: time.Date(1985, 11, 2, 0, 0, 0, 0, time.UTC),
				Phone: "+79215554433", Wallet: "5536913812345678",
			},
			topUps: []string{"5000"},
		},
	}
	ctx := context.Background()
	for _, e := range seed {
		_ = s.CreateClient(ctx, e.client)
		id := s.clients[len(s.clients)-1].ID
		for i, amt := range e.topUps {
			_ = s.TopUp(ctx, core.FundingRequest{
				UserID: id,
				BankID: s.banks[i%len(s.banks)].ID,
				Amount: decimal.RequireFromString(amt),
			})
		}
	}
	return s
}

func (s *Store) CreateClient(_ context.Context, c core.Client) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.ID = s.nextID
	s.nextID++
	c.Balance = decimal.Zero
	s.clients = append(s.clients, c)
	return nil
}

func (s *Store) UpdateClient(_ context.Context, c core.Client) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.clients {
		if s.clients[i].ID == c.ID {
			s.clients[i].Name = c.Name
			s.clients[i].Surname = c.Surname
			s.clients[i].MiddleName = c.MiddleName
			s.clients[i].Birth = c.Birth
			s.clients[i].Phone = c.Phone
			return nil
		}
	}
	return api.ErrClientNotFound
}

func (s *Store) CheckClient(_ context.Context, name, surname, middleName string) (core.ClientProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.findByName(name, surname, middleName)
	if !ok {
		return core.ClientProfile{Exists: false}, nil
	}
	profile := core.ClientProfile{Exists: true, Client: c}
	for _, tx := range s.txs {
		if tx.Client.ID == c.ID {
			profile.Transactions = append(profile.Transactions, tx)
		}
	}
	return profile, nil
}

func (s *Store) ClientID(_ context.Context, name, surname, middleName string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.findByName(name, surname, middleName); ok {
		return c.ID, nil
	}
	return 0, api.ErrClientNotFound
}

func (s *Store) ClientPhone(_ context.Context, clientID int64) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.findByID(clientID); ok {
		return c.Phone, nil
	}
	return "", api.ErrClientNotFound
}

func (s *Store) Balance(_ context.Context, userID int64) (decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.findByID(userID); ok {
		return c.Balance, nil
	}
	return decimal.Decimal{}, api.ErrClientNotFound
}

func (s *Store) AllTransactions(_ context.Context, clientName string) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	needle := strings.ToLower(strings.TrimSpace(clientName))
	out := make([]core.Transaction, 0, len(s.txs))
	for _, tx := range s.txs {
		if needle != "" && !strings.Contains(strings.ToLower(tx.Client.FullName()), needle) {
			continue
		}
		out = append(out, tx)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

func (s *Store) MonthlyTotal(_ context.Context, userID int64) (decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	since := s.now().AddDate(0, -1, 0)
	total := decimal.Zero
	for _, tx := range s.txs {
		if tx.Client.ID == userID && tx.Amount.IsPositive() && tx.Date.After(since) {
			total = total.Add(tx.Amount)
		}
	}
	return total, nil
}

func (s *Store) Banks(_ context.Context) ([]core.Bank, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Bank(nil), s.banks...), nil
}

func (s *Store) MonthlyLimit(_ context.Context) (decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.limit, nil
}

func (s *Store) TopUp(ctx context.Context, req core.FundingRequest) error {
	total, err := s.MonthlyTotal(ctx, req.UserID)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if total.Add(req.Amount).GreaterThan(s.limit) {
		return errors.New("monthly limit exceeded")
	}
	return s.applyFunding(req, req.Amount)
}

func (s *Store) Withdraw(_ context.Context, req core.FundingRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.findByID(req.UserID)
	if !ok {
		return api.ErrClientNotFound
	}
	if req.Amount.GreaterThan(c.Balance) {
		return errors.New("insufficient funds")
	}
	return s.applyFunding(req, req.Amount.Neg())
}

// applyFunding records the transaction and moves the balance. Callers hold
// the lock.
func (s *Store) applyFunding(req core.FundingRequest, signed decimal.Decimal) error {
	ci := -1
	for i := range s.clients {
		if s.clients[i].ID == req.UserID {
			ci = i
			break
		}
	}
	if ci < 0 {
		return api.ErrClientNotFound
	}
	var bank core.Bank
	for _, b := range s.banks {
		if b.ID == req.BankID {
			bank = b
			break
		}
	}
	if bank.ID == 0 {
		return fmt.Errorf("unknown bank %d", req.BankID)
	}
	s.clients[ci].Balance = s.clients[ci].Balance.Add(signed)
	s.txs = append(s.txs, core.Transaction{
		ID:       s.nextID,
		Date:     s.now(),
		Amount:   signed,
		Bank:     bank,
		Approved: true,
		Client:   s.clients[ci],
	})
	s.nextID++
	return nil
}

func (s *Store) TransactionsSummary(_ context.Context, filter string) ([]core.UserSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	needle := strings.ToLower(strings.TrimSpace(filter))
	out := make([]core.UserSummary, 0, len(s.clients))
	for _, c := range s.clients {
		if needle != "" && !strings.Contains(strings.ToLower(c.FullName()), needle) {
			continue
		}
		sum := core.UserSummary{UserID: c.ID, UserName: c.FullName(), Income: decimal.Zero, Expense: decimal.Zero}
		for _, tx := range s.txs {
			if tx.Client.ID != c.ID {
				continue
			}
			if tx.Amount.IsPositive() {
				sum.Income = sum.Income.Add(tx.Amount)
			} else {
				sum.Expense = sum.Expense.Add(tx.Amount.Neg())
			}
		}
		out = append(out, sum)
	}
	return out, nil
}

func (s *Store) BalanceHistory(_ context.Context, fio, startDate, endDate string) ([]core.BalancePoint, error) {
	surname, name, middleName, ok := core.SplitFIO(fio)
	if !ok {
		return nil, errors.New("fio must contain surname, name and patronymic")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	c, found := s.findByName(name, surname, middleName)
	if !found {
		return nil, api.ErrClientNotFound
	}

	var start, end time.Time
	if startDate != "" {
		start, _ = time.Parse("2006-01-02", startDate)
	}
	if endDate != "" {
		end, _ = time.Parse("2006-01-02", endDate)
		end = end.AddDate(0, 0, 1) // inclusive end day
	}

	txs := make([]core.Transaction, 0)
	for _, tx := range s.txs {
		if tx.Client.ID == c.ID {
			txs = append(txs, tx)
		}
	}
	sort.Slice(txs, func(i, j int) bool { return txs[i].Date.Before(txs[j].Date) })

	running := decimal.Zero
	out := make([]core.BalancePoint, 0, len(txs))
	for _, tx := range txs {
		running = running.Add(tx.Amount)
		if !start.IsZero() && tx.Date.Before(start) {
			continue
		}
		if !end.IsZero() && !tx.Date.Before(end) {
			continue
		}
		out = append(out, core.BalancePoint{Date: tx.Date, Balance: running})
	}
	return out, nil
}

func (s *Store) findByName(name, surname, middleName string) (core.Client, bool) {
	for _, c := range s.clients {
		if strings.EqualFold(c.Name, name) &&
			strings.EqualFold(c.Surname, surname) &&
			strings.EqualFold(c.MiddleName, middleName) {
			return c, true
		}
	}
	return core.Client{}, false
}

func (s *Store) findByID(id int64) (core.Client, bool) {
	for _, c := range s.clients {
		if c.ID == id {
			return c, true
		}
	}
	return core.Client{}, false
}
