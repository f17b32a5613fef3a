package core

import (
	"errors"
	"math/rand/v2"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrNameRequired    = errors.New("name must contain at least 1 character")
	ErrSurnameRequired = errors.New("surname must contain at least 1 character")
	ErrBadAge          = errors.New("age must be between 18 and 100")
	ErrBadPhone        = errors.New("phone must start with +7 and contain 11 digits")
	ErrConsentRequired = errors.New("consent to personal data processing is required")
	ErrBadAmount       = errors.New("invalid amount")
)

var phonePattern = regexp.MustCompile(`^\+7\d{10}$`)

// RegistrationForm carries the raw client add/edit form fields.
type RegistrationForm struct {
	Name       string
	Surname    string
	MiddleName string
	Birth      string // YYYY-MM-DD
	Phone      string
	Consent    bool
}

// Validate checks the form in the significant order: name, surname,
// birth/age, phone, then consent (add flow only). It short-circuits on
// the first failure so no partial submission can occur.
func (f RegistrationForm) Validate(now time.Time, requireConsent bool) error {
	if strings.TrimSpace(f.Name) == "" {
		return ErrNameRequired
	}
	if strings.TrimSpace(f.Surname) == "" {
		return ErrSurnameRequired
	}
	birth, err := time.Parse("2006-01-02", strings.TrimSpace(f.Birth))
	if err != nil {
		return ErrBadAge
	}
	if age := AgeInYears(birth, now); age < 18 || age > 100 {
		return ErrBadAge
	}
	if !phonePattern.MatchString(f.Phone) {
		return ErrBadPhone
	}
	if requireConsent && !f.Consent {
		return ErrConsentRequired
	}
	return nil
}

// AgeInYears computes age as a plain year difference. Month and day are
// deliberately ignored to match the historical behavior; see DESIGN.md.
func AgeInYears(birth, now time.Time) int {
	return now.Year() - birth.Year()
}

// ValidPhone reports whether s is exactly +7 followed by 10 digits.
func ValidPhone(s string) bool {
	return phonePattern.MatchString(s)
}

// GenerateWallet produces a fresh 16-digit wallet identifier in
// [1000000000000000, 9999999999999999]. The draw is uniform but not
// cryptographic; the wallet is an identifier, not a secret.
func GenerateWallet() string {
	n := 1_000_000_000_000_000 + rand.Int64N(9_000_000_000_000_000)
	return strconv.FormatInt(n, 10)
}

// ParseAmount parses a user-entered amount and rejects non-positive or
// malformed values.
func ParseAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil || !d.IsPositive() {
		return decimal.Decimal{}, ErrBadAmount
	}
	return d, nil
}
