// Package api defines the outbound ports to the remote REST API that owns
// all client and wallet data. Adapters live in api/rest (HTTP) and
// api/memory (seeded, for local development and tests).
package api

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"moneydesk/internal/core"
)

// ErrClientNotFound is returned by lookups when the API knows no such client.
var ErrClientNotFound = errors.New("client not found")

// Ports for outbound adapters.
type (
	ClientDirectory interface {
		// CreateClient registers a new client; the wallet identifier is
		// already generated and attached by the caller.
		CreateClient(ctx context.Context, c core.Client) error

		// UpdateClient rewrites an existing client's personal data.
		UpdateClient(ctx context.Context, c core.Client) error

		// CheckClient looks a client up by full name and returns the
		// profile together with their transaction history.
		CheckClient(ctx context.Context, name, surname, middleName string) (core.ClientProfile, error)

		// ClientID resolves name parts to the client identifier.
		ClientID(ctx context.Context, name, surname, middleName string) (int64, error)

		// ClientPhone returns the contact phone for a client id.
		ClientPhone(ctx context.Context, clientID int64) (string, error)

		// Balance returns the current wallet balance for a user id.
		Balance(ctx context.Context, userID int64) (decimal.Decimal, error)
	}

	TransactionLister interface {
		// AllTransactions lists every transaction, optionally filtered by
		// client name.
		AllTransactions(ctx context.Context, clientName string) ([]core.Transaction, error)

		// MonthlyTotal returns the running top-up total for the rolling
		// month. A client with no transactions yet yields zero, not an
		// error.
		MonthlyTotal(ctx context.Context, userID int64) (decimal.Decimal, error)
	}

	ReferenceData interface {
		// Banks lists the funding sources offered to the user.
		Banks(ctx context.Context) ([]core.Bank, error)

		// MonthlyLimit returns the ceiling on top-ups per rolling month.
		MonthlyLimit(ctx context.Context) (decimal.Decimal, error)
	}

	WalletFunder interface {
		// TopUp submits a deposit. The server performs the authoritative
		// limit check; any local check is advisory.
		TopUp(ctx context.Context, req core.FundingRequest) error

		// Withdraw submits a debit, bounded server-side by the balance.
		Withdraw(ctx context.Context, req core.FundingRequest) error
	}

	Analytics interface {
		// TransactionsSummary aggregates income and expense per user,
		// optionally filtered by user name.
		TransactionsSummary(ctx context.Context, filter string) ([]core.UserSummary, error)

		// BalanceHistory returns the balance time series for a FIO within
		// the optional date range (YYYY-MM-DD bounds, either may be empty).
		BalanceHistory(ctx context.Context, fio, startDate, endDate string) ([]core.BalancePoint, error)
	}
)
