package response

import (
	"html/template"
	"net/http"
)

// FetchContext classifies how a request was issued, derived once per request
// from the Sec-Fetch-Dest header. Denials are rendered as an embedded-frame
// page, a full error page, or a JSON body accordingly.
type FetchContext int

const (
	// Programmatic is a non-navigational fetch (XHR, fetch(), API client).
	Programmatic FetchContext = iota
	// Document is a full-page browser navigation.
	Document
	// Embedded is a navigation inside a frame.
	Embedded
)

func (c FetchContext) String() string {
	switch c {
	case Document:
		return "document"
	case Embedded:
		return "embedded"
	default:
		return "programmatic"
	}
}

// FetchContextFrom derives the fetch context from the request headers.
func FetchContextFrom(r *http.Request) FetchContext {
	switch r.Header.Get("Sec-Fetch-Dest") {
	case "iframe", "frame", "embed":
		return Embedded
	case "document":
		return Document
	default:
		return Programmatic
	}
}

var documentErrorTmpl = template.Must(template.New("error").Parse(`<!DOCTYPE html>
<html lang="en">
<head><meta charset="utf-8"><title>{{.Title}}</title></head>
<body class="govuk-template__body">
<main class="govuk-main-wrapper">
<h1 class="govuk-heading-l">{{.Title}}</h1>
<p class="govuk-body">{{.Message}}</p>
</main>
</body>
</html>
`))

var embeddedErrorTmpl = template.Must(template.New("embedded-error").Parse(`<!DOCTYPE html>
<html lang="en">
<head><meta charset="utf-8"><title>{{.Title}}</title></head>
<body class="govuk-frame__body">
<p class="govuk-body">{{.Message}}</p>
</body>
</html>
`))

type errorPage struct {
	Title   string
	Message string
}

func statusTitle(status int) string {
	switch status {
	case http.StatusUnauthorized:
		return "You need to sign in"
	case http.StatusForbidden:
		return "Your account is deactivated"
	case http.StatusNotFound:
		return "Page not found"
	default:
		return "Sorry, there is a problem with the service"
	}
}

// Deny renders a denial in the shape the caller can consume: JSON for
// programmatic fetches, an HTML page for document navigations, and a
// minimal frame page for embedded navigations. Every guard goes through
// here rather than shaping its own output.
func Deny(w http.ResponseWriter, r *http.Request, status int, message string) {
	switch FetchContextFrom(r) {
	case Document:
		renderPage(w, documentErrorTmpl, status, message)
	case Embedded:
		renderPage(w, embeddedErrorTmpl, status, message)
	default:
		Error(w, status, message)
	}
}

var passwordChallengeTmpl = template.Must(template.New("password").Parse(`<!DOCTYPE html>
<html lang="en">
<head><meta charset="utf-8"><title>This prototype is password protected</title></head>
<body class="govuk-template__body">
<main class="govuk-main-wrapper">
<h1 class="govuk-heading-l">This prototype is password protected</h1>
<form method="post" action="/live/{{.PrototypeID}}/password">
<label class="govuk-label" for="password">Password</label>
<input class="govuk-input" id="password" name="password" type="password" autocomplete="off">
<button class="govuk-button" type="submit">Continue</button>
</form>
</main>
</body>
</html>
`))

// PasswordChallenge renders the live-link password prompt. It is a
// challenge, not an error: the page (or JSON body) tells the caller how to
// proceed.
func PasswordChallenge(w http.ResponseWriter, r *http.Request, prototypeID string) {
	switch FetchContextFrom(r) {
	case Document, Embedded:
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusUnauthorized)
		passwordChallengeTmpl.Execute(w, struct{ PrototypeID string }{PrototypeID: prototypeID})
	default:
		Error(w, http.StatusUnauthorized, map[string]string{
			"code":         "password_required",
			"prototype_id": prototypeID,
		})
	}
}

func renderPage(w http.ResponseWriter, tmpl *template.Template, status int, message string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	tmpl.Execute(w, errorPage{Title: statusTitle(status), Message: message})
}
