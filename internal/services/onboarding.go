// Package services orchestrates page-level operations across the api
// ports: client onboarding/editing and wallet funding with their advisory
// guard checks.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"moneydesk/internal/api"
	"moneydesk/internal/core"
)

// Onboarding handles client registration and edits. Validation order is
// significant and no partial submission occurs: the wallet is generated
// only after the form passes, and is sent in the same request as the
// form payload.
type Onboarding struct {
	dir api.ClientDirectory
	now func() time.Time
}

func NewOnboarding(dir api.ClientDirectory) *Onboarding {
	return &Onboarding{dir: dir, now: time.Now}
}

// Register validates the add form, attaches a freshly generated wallet and
// submits one create request. The wallet value is returned for the success
// notification.
func (s *Onboarding) Register(ctx context.Context, form core.RegistrationForm) (string, error) {
	if err := form.Validate(s.now(), true); err != nil {
		return "", err
	}
	birth, _ := time.Parse("2006-01-02", form.Birth)
	wallet := core.GenerateWallet()
	client := core.Client{
		Name:       form.Name,
		Surname:    form.Surname,
		MiddleName: form.MiddleName,
		Birth:      birth,
		Phone:      form.Phone,
		Wallet:     wallet,
	}
	if err := s.dir.CreateClient(ctx, client); err != nil {
		return "", fmt.Errorf("create client: %w", err)
	}
	slog.InfoContext(ctx, "client registered",
		"surname", client.Surname,
		"name", client.Name,
		"wallet", wallet)
	return wallet, nil
}

// Update validates the edit form (consent is not re-required) and rewrites
// the client's personal data. The wallet is never regenerated on edit.
func (s *Onboarding) Update(ctx context.Context, clientID int64, form core.RegistrationForm) error {
	if err := form.Validate(s.now(), false); err != nil {
		return err
	}
	birth, _ := time.Parse("2006-01-02", form.Birth)
	client := core.Client{
		ID:         clientID,
		Name:       form.Name,
		Surname:    form.Surname,
		MiddleName: form.MiddleName,
		Birth:      birth,
		Phone:      form.Phone,
	}
	if err := s.dir.UpdateClient(ctx, client); err != nil {
		return fmt.Errorf("update client %d: %w", clientID, err)
	}
	return nil
}
