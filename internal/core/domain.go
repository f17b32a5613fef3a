package core

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type (
	// Bank is a funding source offered for top-ups and withdrawals.
	Bank struct {
		ID   int64
		Name string
	}

	// Client is a registered person with an attached wallet. All client
	// data is owned by the remote API; this is a read model only.
	Client struct {
		ID         int64
		Name       string
		Surname    string
		MiddleName string
		Birth      time.Time
		Phone      string
		Wallet     string
		Balance    decimal.Decimal
	}

	// Transaction is a single wallet movement as reported by the API.
	Transaction struct {
		ID       int64
		Date     time.Time
		Amount   decimal.Decimal
		Bank     Bank
		Approved bool
		Client   Client
	}

	// ClientProfile is the result of a full-name lookup: the client plus
	// their transaction history, or Exists=false when unknown.
	ClientProfile struct {
		Exists       bool
		Client       Client
		Transactions []Transaction
	}

	// UserSummary aggregates income and expense per user for the charts.
	UserSummary struct {
		UserID   int64
		UserName string
		Income   decimal.Decimal
		Expense  decimal.Decimal
	}

	// BalancePoint is one sample of a per-user balance time series.
	BalancePoint struct {
		Date    time.Time
		Balance decimal.Decimal
	}

	// FundingRequest is a balance-changing submission (top-up or withdraw).
	FundingRequest struct {
		UserID int64
		BankID int64
		Amount decimal.Decimal
	}
)

// FullName renders the FIO convention: surname, name, patronymic.
func (c Client) FullName() string {
	return joinNonEmpty(c.Surname, c.Name, c.MiddleName)
}

// ShortName renders "Surname Name P." with the patronymic reduced to its
// first letter, as printed on receipts.
func (c Client) ShortName() string {
	if c.MiddleName == "" {
		return joinNonEmpty(c.Surname, c.Name)
	}
	initial := string([]rune(c.MiddleName)[0]) + "."
	return joinNonEmpty(c.Surname, c.Name, initial)
}

func joinNonEmpty(parts ...string) string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, " ")
}

// SplitFIO splits a "Surname Name Patronymic" search string into its three
// parts. ok is false unless all three parts are present, matching the
// search contract of the replenishments page.
func SplitFIO(s string) (surname, name, middleName string, ok bool) {
	parts := strings.Fields(strings.TrimSpace(s))
	if len(parts) < 3 {
		return "", "", "", false
	}
	return parts[0], parts[1], parts[2], true
}

// Moscow is the fixed rendering timezone for every timestamp in the UI.
var Moscow = loadMoscow()

func loadMoscow() *time.Location {
	loc, err := time.LoadLocation("Europe/Moscow")
	if err != nil {
		// MSK has had no DST transitions since 2014.
		return time.FixedZone("MSK", 3*60*60)
	}
	return loc
}

// FormatDateTime renders a timestamp with ru-RU field ordering
// (day.month.year, 24-hour time) in Europe/Moscow.
func FormatDateTime(t time.Time) string {
	return t.In(Moscow).Format("02.01.2006, 15:04")
}

// FormatDateTimeSec is FormatDateTime with seconds, used by the
// replenishments history table.
func FormatDateTimeSec(t time.Time) string {
	return t.In(Moscow).Format("02.01.2006, 15:04:05")
}
