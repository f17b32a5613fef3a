package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
	"moneydesk/internal/api"
	"moneydesk/internal/core"
)

// GuardError is an advisory client-side rejection. The message is the
// user-facing localized string; no request is sent when a guard fires.
type GuardError struct {
	Message string
}

func (e *GuardError) Error() string { return e.Message }

// IsGuard reports whether err is an advisory guard rejection.
func IsGuard(err error) bool {
	var ge *GuardError
	return errors.As(err, &ge)
}

// Funding drives the top-up and withdrawal flows. The guard checks here
// are advisory only; the server performs the authoritative check and its
// response is treated as ground truth.
type Funding struct {
	dir    api.ClientDirectory
	ref    api.ReferenceData
	txs    api.TransactionLister
	funder api.WalletFunder
}

func NewFunding(dir api.ClientDirectory, ref api.ReferenceData, txs api.TransactionLister, funder api.WalletFunder) *Funding {
	return &Funding{dir: dir, ref: ref, txs: txs, funder: funder}
}

// TopUpView is the reference data the top-up page fetches on mount.
type TopUpView struct {
	Banks        []core.Bank
	Limit        decimal.Decimal
	MonthlyTotal decimal.Decimal
}

// WithdrawView is the reference data the withdrawal page fetches on mount.
type WithdrawView struct {
	Banks   []core.Bank
	Balance decimal.Decimal
}

// TopUpContext fetches banks, the monthly limit and the running monthly
// total. The three calls are independent and run concurrently.
func (s *Funding) TopUpContext(ctx context.Context, userID int64) (TopUpView, error) {
	var view TopUpView
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		view.Banks, err = s.ref.Banks(gctx)
		return err
	})
	g.Go(func() (err error) {
		view.Limit, err = s.ref.MonthlyLimit(gctx)
		return err
	})
	g.Go(func() (err error) {
		view.MonthlyTotal, err = s.txs.MonthlyTotal(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return TopUpView{}, fmt.Errorf("load top-up data: %w", err)
	}
	return view, nil
}

// WithdrawContext fetches banks and the current balance concurrently.
func (s *Funding) WithdrawContext(ctx context.Context, userID int64) (WithdrawView, error) {
	var view WithdrawView
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		view.Banks, err = s.ref.Banks(gctx)
		return err
	})
	g.Go(func() (err error) {
		view.Balance, err = s.dir.Balance(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return WithdrawView{}, fmt.Errorf("load withdrawal data: %w", err)
	}
	return view, nil
}

// TopUp parses the amount, applies the advisory monthly-limit guard
// (running total + amount must not exceed the limit; hitting it exactly
// is allowed) and submits the deposit.
func (s *Funding) TopUp(ctx context.Context, userID, bankID int64, amountStr string) error {
	amount, err := core.ParseAmount(amountStr)
	if err != nil {
		return &GuardError{Message: "Введите корректную сумму."}
	}
	limit, err := s.ref.MonthlyLimit(ctx)
	if err != nil {
		return fmt.Errorf("fetch limit: %w", err)
	}
	total, err := s.txs.MonthlyTotal(ctx, userID)
	if err != nil {
		return fmt.Errorf("fetch monthly total: %w", err)
	}
	if total.Add(amount).GreaterThan(limit) {
		return &GuardError{Message: fmt.Sprintf(
			"Превышен лимит. Пополнения за месяц: %s, доступный лимит: %s.", total, limit)}
	}
	if err := s.funder.TopUp(ctx, core.FundingRequest{UserID: userID, BankID: bankID, Amount: amount}); err != nil {
		return fmt.Errorf("top-up: %w", err)
	}
	return nil
}

// Withdraw parses the amount, applies the advisory balance guard
// (withdrawing the full balance is allowed) and submits the debit.
func (s *Funding) Withdraw(ctx context.Context, userID, bankID int64, amountStr string) error {
	amount, err := core.ParseAmount(amountStr)
	if err != nil {
		return &GuardError{Message: "Введите корректную сумму."}
	}
	balance, err := s.dir.Balance(ctx, userID)
	if err != nil {
		return fmt.Errorf("fetch balance: %w", err)
	}
	if amount.GreaterThan(balance) {
		return &GuardError{Message: fmt.Sprintf(
			"Недостаточно средств. Ваш баланс: %s ₽.", balance)}
	}
	if err := s.funder.Withdraw(ctx, core.FundingRequest{UserID: userID, BankID: bankID, Amount: amount}); err != nil {
		return fmt.Errorf("withdraw: %w", err)
	}
	return nil
}
