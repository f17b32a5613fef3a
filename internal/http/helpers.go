package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"moneydesk/internal/core"
)

// notify emits the transient notification trigger consumed by the page
// shell. kind is "success" or "error".
func notify(w http.ResponseWriter, kind, message string) {
	payload, err := json.Marshal(map[string]any{
		"show-notification": map[string]string{"type": kind, "message": message},
	})
	if err != nil {
		return
	}
	w.Header().Set("HX-Trigger", string(payload))
}

// formMessage maps a validation error to its user-facing message. Unknown
// errors fall through to the given fallback.
func formMessage(err error, fallback string) string {
	switch {
	case errors.Is(err, core.ErrNameRequired):
		return "Имя должно содержать хотя бы 1 символ."
	case errors.Is(err, core.ErrSurnameRequired):
		return "Фамилия должна содержать хотя бы 1 символ."
	case errors.Is(err, core.ErrBadAge):
		return "Возраст должен быть от 18 до 100 лет."
	case errors.Is(err, core.ErrBadPhone):
		return "Телефон должен начинаться с +7 и содержать 11 цифр."
	case errors.Is(err, core.ErrConsentRequired):
		return "Вы должны дать согласие на обработку персональных данных."
	default:
		return fallback
	}
}

// parseID reads a positive integer form or query value.
func parseID(v string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", v)
	}
	return id, nil
}

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

// setDownloadHeaders marks the response as an attachment. Non-ASCII
// filenames go through the RFC 5987 filename* form.
func setDownloadHeaders(w http.ResponseWriter, filename, contentType string) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="%s"; filename*=UTF-8''%s`,
			url.PathEscape(filename), url.PathEscape(filename)))
}

// registrationForm reads the shared client form fields.
func registrationForm(r *http.Request) core.RegistrationForm {
	return core.RegistrationForm{
		Name:       sanitizeInput(r.Form.Get("name")),
		Surname:    sanitizeInput(r.Form.Get("surname")),
		MiddleName: sanitizeInput(r.Form.Get("middle_name")),
		Birth:      strings.TrimSpace(r.Form.Get("birth")),
		Phone:      strings.TrimSpace(r.Form.Get("phone")),
		Consent:    r.Form.Get("consent") == "on" || r.Form.Get("consent") == "true",
	}
}
