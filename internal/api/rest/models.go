package rest

import (
	"time"

	"github.com/shopspring/decimal"
	"moneydesk/internal/core"
)

// Wire shapes of the external API. Fields are consumed positionally as
// documented; no schema validation is applied beyond JSON decoding.
type (
	clientJSON struct {
		ID         int64           `json:"id"`
		Name       string          `json:"name"`
		Surname    string          `json:"surname"`
		MiddleName string          `json:"middle_name"`
		Birth      string          `json:"birth"`
		Phone      string          `json:"phone"`
		Wallet     string          `json:"wallet"`
		Balance    decimal.Decimal `json:"balance"`
	}

	bankJSON struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	}

	transactionJSON struct {
		ID       int64           `json:"id"`
		Date     time.Time       `json:"date"`
		Amount   decimal.Decimal `json:"amount"`
		Bank     bankJSON        `json:"bank"`
		Approved bool            `json:"approved"`
		Client   clientJSON      `json:"client"`
	}

	// historyTransactionJSON is the flattened shape returned inside
	// check-client responses, where the bank comes as a plain name.
	historyTransactionJSON struct {
		ID       int64           `json:"id"`
		Date     time.Time       `json:"date"`
		Amount   decimal.Decimal `json:"amount"`
		BankName string          `json:"bankName"`
		Approved bool            `json:"approved"`
	}

	checkClientResponse struct {
		Exists       bool                     `json:"exists"`
		User         clientJSON               `json:"user"`
		Transactions []historyTransactionJSON `json:"transactions"`
	}

	summaryJSON struct {
		UserID   int64           `json:"userId"`
		UserName string          `json:"userName"`
		Income   decimal.Decimal `json:"income"`
		Expense  decimal.Decimal `json:"expense"`
	}

	balancePointJSON struct {
		Date    time.Time       `json:"date"`
		Balance decimal.Decimal `json:"balance"`
	}
)

func (c clientJSON) toCore() core.Client {
	birth, _ := time.Parse("2006-01-02", c.Birth)
	return core.Client{
		ID:         c.ID,
		Name:       c.Name,
		Surname:    c.Surname,
		MiddleName: c.MiddleName,
		Birth:      birth,
		Phone:      c.Phone,
		Wallet:     c.Wallet,
		Balance:    c.Balance,
	}
}

func (t transactionJSON) toCore() core.Transaction {
	return core.Transaction{
		ID:       t.ID,
		Date:     t.Date,
		Amount:   t.Amount,
		Bank:     core.Bank{ID: t.Bank.ID, Name: t.Bank.Name},
		Approved: t.Approved,
		Client:   t.Client.toCore(),
	}
}

func (t historyTransactionJSON) toCore() core.Transaction {
	return core.Transaction{
		ID:       t.ID,
		Date:     t.Date,
		Amount:   t.Amount,
		Bank:     core.Bank{Name: t.BankName},
		Approved: t.Approved,
	}
}
