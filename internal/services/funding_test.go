package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"moneydesk/internal/core"
)

type fakeBackend struct {
	banks    []core.Bank
	limit    decimal.Decimal
	total    decimal.Decimal
	balance  decimal.Decimal
	topUps   []core.FundingRequest
	debits   []core.FundingRequest
	fundErr  error
	fetchErr error
}

func (f *fakeBackend) Banks(context.Context) ([]core.Bank, error) { return f.banks, f.fetchErr }
func (f *fakeBackend) MonthlyLimit(context.Context) (decimal.Decimal, error) {
	return f.limit, f.fetchErr
}
func (f *fakeBackend) MonthlyTotal(context.Context, int64) (decimal.Decimal, error) {
	return f.total, f.fetchErr
}
func (f *fakeBackend) Balance(context.Context, int64) (decimal.Decimal, error) {
	return f.balance, f.fetchErr
}
func (f *fakeBackend) TopUp(_ context.Context, req core.FundingRequest) error {
	f.topUps = append(f.topUps, req)
	return f.fundErr
}
func (f *fakeBackend) Withdraw(_ context.Context, req core.FundingRequest) error {
	f.debits = append(f.debits, req)
	return f.fundErr
}

func (f *fakeBackend) CreateClient(context.Context, core.Client) error { return nil }
func (f *fakeBackend) UpdateClient(context.Context, core.Client) error { return nil }
func (f *fakeBackend) CheckClient(context.Context, string, string, string) (core.ClientProfile, error) {
	return core.ClientProfile{}, nil
}
func (f *fakeBackend) ClientID(context.Context, string, string, string) (int64, error) {
	return 0, nil
}
func (f *fakeBackend) ClientPhone(context.Context, int64) (string, error) { return "", nil }
func (f *fakeBackend) AllTransactions(context.Context, string) ([]core.Transaction, error) {
	return nil, nil
}

var ctx = context.Background()

func newFunding(f *fakeBackend) *Funding {
	return NewFunding(f, f, f, f)
}

func TestTopUpGuardBoundary(t *testing.T) {
	f := &fakeBackend{limit: decimal.NewFromInt(1000), total: decimal.NewFromInt(700)}
	s := newFunding(f)

	// total + amount == limit must be accepted.
	if err := s.TopUp(ctx, 1, 2, "300"); err != nil {
		t.Fatalf("boundary top-up rejected: %v", err)
	}
	if len(f.topUps) != 1 || !f.topUps[0].Amount.Equal(decimal.NewFromInt(300)) {
		t.Fatalf("unexpected submission: %+v", f.topUps)
	}

	// One over the limit fires the guard and sends nothing.
	err := s.TopUp(ctx, 1, 2, "301")
	if !IsGuard(err) {
		t.Fatalf("expected guard error, got %v", err)
	}
	if !strings.Contains(err.Error(), "Превышен лимит") {
		t.Fatalf("guard message = %q", err.Error())
	}
	if len(f.topUps) != 1 {
		t.Fatalf("request sent despite guard")
	}
}

func TestTopUpRejectsBadAmount(t *testing.T) {
	f := &fakeBackend{limit: decimal.NewFromInt(1000)}
	s := newFunding(f)
	for _, bad := range []string{"", "abc", "0", "-10"} {
		err := s.TopUp(ctx, 1, 2, bad)
		if !IsGuard(err) || err.Error() != "Введите корректную сумму." {
			t.Fatalf("amount %q: expected amount guard, got %v", bad, err)
		}
	}
	if len(f.topUps) != 0 {
		t.Fatalf("request sent despite invalid amount")
	}
}

func TestWithdrawGuardBoundary(t *testing.T) {
	f := &fakeBackend{balance: decimal.NewFromInt(500)}
	s := newFunding(f)

	// amount == balance must be accepted.
	if err := s.Withdraw(ctx, 1, 2, "500"); err != nil {
		t.Fatalf("boundary withdrawal rejected: %v", err)
	}
	err := s.Withdraw(ctx, 1, 2, "500.01")
	if !IsGuard(err) || !strings.Contains(err.Error(), "Недостаточно средств") {
		t.Fatalf("expected balance guard, got %v", err)
	}
	if len(f.debits) != 1 {
		t.Fatalf("request sent despite guard")
	}
}

func TestServerErrorIsNotGuard(t *testing.T) {
	f := &fakeBackend{balance: decimal.NewFromInt(500), fundErr: errors.New("api down")}
	s := newFunding(f)
	err := s.Withdraw(ctx, 1, 2, "100")
	if err == nil || IsGuard(err) {
		t.Fatalf("server failure must propagate as non-guard error, got %v", err)
	}
}

func TestTopUpContextAggregates(t *testing.T) {
	f := &fakeBackend{
		banks: []core.Bank{{ID: 1, Name: "Сбербанк"}},
		limit: decimal.NewFromInt(1000),
		total: decimal.NewFromInt(250),
	}
	view, err := newFunding(f).TopUpContext(ctx, 1)
	if err != nil {
		t.Fatalf("context: %v", err)
	}
	if len(view.Banks) != 1 || !view.Limit.Equal(decimal.NewFromInt(1000)) || !view.MonthlyTotal.Equal(decimal.NewFromInt(250)) {
		t.Fatalf("unexpected view: %+v", view)
	}
}

func TestTopUpContextPropagatesFetchErrors(t *testing.T) {
	f := &fakeBackend{fetchErr: errors.New("unreachable")}
	if _, err := newFunding(f).TopUpContext(ctx, 1); err == nil {
		t.Fatalf("expected fetch error")
	}
}
