package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"moneydesk/internal/core"
	"moneydesk/internal/services"
)

// clientFormData fills the add/edit form templates.
type clientFormData struct {
	ID         int64
	Name       string
	Surname    string
	MiddleName string
	Birth      string
	Phone      string
}

// handleClients renders the tab with the add/edit choice cards.
func (s *Server) handleClients(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, "clients.html", nil)
}

// handleClientAddForm renders an empty registration form.
func (s *Server) handleClientAddForm(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, "client_add.html", clientFormData{})
}

// handleClientCreate validates the registration form and submits one
// create request with a freshly generated wallet attached.
func (s *Server) handleClientCreate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	form := registrationForm(r)
	wallet, err := s.onboarding.Register(r.Context(), form)
	switch {
	case err == nil:
		notify(w, "success", "Клиент успешно добавлен! Wallet: "+wallet)
		s.render(w, r, "client_add.html", clientFormData{})
	case isValidationError(err):
		notify(w, "error", formMessage(err, "Ошибка добавления пользователя. Попробуйте снова."))
		w.WriteHeader(http.StatusUnprocessableEntity)
	default:
		slog.ErrorContext(r.Context(), "Client create failed", "error", err)
		notify(w, "error", "Ошибка добавления пользователя. Попробуйте снова.")
		w.WriteHeader(http.StatusInternalServerError)
	}
}

// handleClientEditForm renders the edit flow: a FIO search when no name
// is given, the filled form once the client is found.
func (s *Server) handleClientEditForm(w http.ResponseWriter, r *http.Request) {
	fio := sanitizeInput(r.URL.Query().Get("fio"))
	if fio == "" {
		s.render(w, r, "client_edit_search.html", nil)
		return
	}

	surname, name, middleName, ok := core.SplitFIO(fio)
	if !ok {
		notify(w, "error", "Введите полное ФИО через пробел.")
		w.WriteHeader(http.StatusUnprocessableEntity)
		return
	}

	profile, err := s.dir.CheckClient(r.Context(), name, surname, middleName)
	if err != nil {
		slog.ErrorContext(r.Context(), "Client lookup failed", "error", err, "fio", fio)
		notify(w, "error", "Ошибка при поиске. Попробуйте позже.")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	if !profile.Exists {
		s.render(w, r, "notfound_modal.html", nil)
		return
	}

	c := profile.Client
	s.render(w, r, "client_edit.html", clientFormData{
		ID:         c.ID,
		Name:       c.Name,
		Surname:    c.Surname,
		MiddleName: c.MiddleName,
		Birth:      c.Birth.Format("2006-01-02"),
		Phone:      c.Phone,
	})
}

// handleClientUpdate rewrites a client's personal data. The wallet is
// never touched on edit and consent is not re-required.
func (s *Server) handleClientUpdate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	id, err := parseID(r.Form.Get("id"))
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	form := registrationForm(r)
	err = s.onboarding.Update(r.Context(), id, form)
	switch {
	case err == nil:
		notify(w, "success", "Данные клиента обновлены.")
		s.render(w, r, "client_edit_search.html", nil)
	case isValidationError(err):
		notify(w, "error", formMessage(err, "Ошибка обновления данных. Попробуйте снова."))
		w.WriteHeader(http.StatusUnprocessableEntity)
	default:
		slog.ErrorContext(r.Context(), "Client update failed", "error", err, "client_id", id)
		notify(w, "error", "Ошибка обновления данных. Попробуйте снова.")
		w.WriteHeader(http.StatusInternalServerError)
	}
}

// handleConsentImage streams the generated consent document for the
// given name parts.
func (s *Server) handleConsentImage(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	c := core.Client{
		Name:       sanitizeInput(q.Get("name")),
		Surname:    sanitizeInput(q.Get("surname")),
		MiddleName: sanitizeInput(q.Get("middle_name")),
	}
	fullName := strings.TrimSpace(c.FullName())
	if fullName == "" {
		http.Error(w, "name is required", http.StatusBadRequest)
		return
	}

	png, err := s.exporter.ConsentPNG(fullName)
	if err != nil {
		slog.ErrorContext(r.Context(), "Consent render failed", "error", err)
		http.Error(w, "consent render failed", http.StatusInternalServerError)
		return
	}
	setDownloadHeaders(w, "consent.png", "image/png")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}

// isValidationError reports whether err is a form validation rejection
// rather than an API failure.
func isValidationError(err error) bool {
	for _, sentinel := range []error{
		core.ErrNameRequired,
		core.ErrSurnameRequired,
		core.ErrBadAge,
		core.ErrBadPhone,
		core.ErrConsentRequired,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return services.IsGuard(err)
}
