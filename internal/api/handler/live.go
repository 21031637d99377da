package handler

import (
	"encoding/json"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/formlab/formgen/internal/api/middleware"
	"github.com/formlab/formgen/internal/api/response"
	"github.com/formlab/formgen/internal/domain"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// LiveHandler serves the live (rendered) view of a prototype and the
// password entry endpoint for protected live links.
type LiveHandler struct {
	sessions   domain.SessionStore
	cookieName string
	sessionTTL time.Duration
	secure     bool
}

// NewLiveHandler creates a new live handler
func NewLiveHandler(sessions domain.SessionStore, cookieName string, sessionTTL time.Duration, secure bool) *LiveHandler {
	return &LiveHandler{
		sessions:   sessions,
		cookieName: cookieName,
		sessionTTL: sessionTTL,
		secure:     secure,
	}
}

// View renders the live prototype. The route guard has already resolved
// access and attached the prototype. Browsers get the rendered form,
// programmatic clients get the definition as JSON.
func (h *LiveHandler) View(w http.ResponseWriter, r *http.Request) {
	rc := middleware.FromContext(r.Context())
	prototype := rc.Prototype

	switch response.FetchContextFrom(r) {
	case response.Document, response.Embedded:
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := liveFormTmpl.Execute(w, prototype.Definition); err != nil {
			log.Error().Err(err).Msg("failed to render live form")
		}
	default:
		response.OK(w, prototype.Definition)
	}
}

// SubmitPassword records the submitted live-link password in the session and
// sends the visitor back to the live view, where access is resolved again.
// Wrong passwords are not reported here; the re-resolve simply challenges
// again, so the endpoint cannot be used as a password oracle.
func (h *LiveHandler) SubmitPassword(w http.ResponseWriter, r *http.Request) {
	prototypeID := chi.URLParam(r, "prototypeID")

	password := h.readPassword(r)
	if password == "" {
		response.Deny(w, r, http.StatusBadRequest, "enter the password")
		return
	}

	rc := middleware.FromContext(r.Context())
	session := rc.Session
	if session == nil || session.ID == "" {
		created, err := h.sessions.Create(r.Context())
		if err != nil {
			log.Error().Err(err).Msg("failed to create session")
			response.Deny(w, r, http.StatusInternalServerError, "something went wrong")
			return
		}
		session = created
		http.SetCookie(w, &http.Cookie{
			Name:     h.cookieName,
			Value:    session.ID,
			Path:     "/",
			MaxAge:   int(h.sessionTTL.Seconds()),
			HttpOnly: true,
			Secure:   h.secure,
			SameSite: http.SameSiteLaxMode,
		})
	}

	if session.LivePrototypePasswords == nil {
		session.LivePrototypePasswords = make(map[string]string)
	}
	session.LivePrototypePasswords[prototypeID] = password

	if err := h.sessions.Save(r.Context(), session); err != nil {
		log.Error().Err(err).Msg("failed to save session")
		response.Deny(w, r, http.StatusInternalServerError, "something went wrong")
		return
	}

	if response.FetchContextFrom(r) == response.Programmatic {
		response.NoContent(w)
		return
	}
	http.Redirect(w, r, "/live/"+prototypeID, http.StatusSeeOther)
}

func (h *LiveHandler) readPassword(r *http.Request) string {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		var body struct {
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			return ""
		}
		return body.Password
	}
	return r.PostFormValue("password")
}

var liveFormTmpl = template.Must(template.New("live-form").Parse(`<!DOCTYPE html>
<html lang="en" class="govuk-template">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
</head>
<body class="govuk-template__body">
<main class="govuk-main-wrapper" id="main-content">
<h1 class="govuk-heading-xl">{{.Title}}</h1>
{{range .Pages}}
<div class="govuk-form-group">
<h2 class="govuk-heading-l">{{.Title}}</h2>
{{range .Fields}}
<div class="govuk-form-group">
<label class="govuk-label" for="{{.Name}}">{{.Label}}</label>
{{if .Hint}}<div class="govuk-hint">{{.Hint}}</div>{{end}}
{{if eq .Type "textarea"}}
<textarea class="govuk-textarea" id="{{.Name}}" name="{{.Name}}" rows="5"{{if .Required}} required{{end}}></textarea>
{{else if eq .Type "radios"}}
<div class="govuk-radios">
{{$field := .}}{{range .Options}}
<div class="govuk-radios__item">
<input class="govuk-radios__input" type="radio" name="{{$field.Name}}" value="{{.}}"{{if $field.Required}} required{{end}}>
<label class="govuk-label govuk-radios__label">{{.}}</label>
</div>
{{end}}
</div>
{{else if eq .Type "checkboxes"}}
<div class="govuk-checkboxes">
{{$field := .}}{{range .Options}}
<div class="govuk-checkboxes__item">
<input class="govuk-checkboxes__input" type="checkbox" name="{{$field.Name}}" value="{{.}}">
<label class="govuk-label govuk-checkboxes__label">{{.}}</label>
</div>
{{end}}
</div>
{{else if eq .Type "select"}}
<select class="govuk-select" id="{{.Name}}" name="{{.Name}}"{{if .Required}} required{{end}}>
{{range .Options}}<option value="{{.}}">{{.}}</option>{{end}}
</select>
{{else if eq .Type "date"}}
<input class="govuk-input govuk-input--width-10" id="{{.Name}}" name="{{.Name}}" type="date"{{if .Required}} required{{end}}>
{{else if eq .Type "number"}}
<input class="govuk-input govuk-input--width-10" id="{{.Name}}" name="{{.Name}}" type="number"{{if .Required}} required{{end}}>
{{else if eq .Type "email"}}
<input class="govuk-input" id="{{.Name}}" name="{{.Name}}" type="email"{{if .Required}} required{{end}}>
{{else if eq .Type "phone"}}
<input class="govuk-input govuk-input--width-20" id="{{.Name}}" name="{{.Name}}" type="tel"{{if .Required}} required{{end}}>
{{else if eq .Type "file"}}
<input class="govuk-file-upload" id="{{.Name}}" name="{{.Name}}" type="file"{{if .Required}} required{{end}}>
{{else}}
<input class="govuk-input" id="{{.Name}}" name="{{.Name}}" type="text"{{if .Required}} required{{end}}>
{{end}}
</div>
{{end}}
</div>
{{end}}
<button class="govuk-button" type="submit">Submit</button>
</main>
</body>
</html>
`))
