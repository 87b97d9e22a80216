// internal/api/handler/auth.go
package handler

import (
	"errors"
	"html/template"
	"net/http"

	"authflow-server/internal/config"
	"authflow-server/internal/identity"
	apperrors "authflow-server/pkg/errors"

	"github.com/sirupsen/logrus"
)

var callbackPage = template.Must(template.New("callback").Parse(`<!doctype html>
<html>
<head><meta charset="utf-8"><title>{{.Title}}</title></head>
<body>
<p>{{.Message}}</p>
<script>window.close();</script>
</body>
</html>
`))

type callbackView struct {
	Title   string
	Message string
}

type AuthHandler struct {
	broker   *identity.PopupBroker
	firebase config.Firebase
	log      *logrus.Entry
}

func NewAuthHandler(broker *identity.PopupBroker, firebase config.Firebase, log *logrus.Entry) *AuthHandler {
	return &AuthHandler{
		broker:   broker,
		firebase: firebase,
		log:      log,
	}
}

// Callback is the OAuth redirect target. Providers call it with a GET, except
// Apple, which posts the result as a form. Twitter answers with OAuth 1.0a
// parameters.
func (h *AuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		WriteError(w, r, h.log, apperrors.NewBadRequestError("invalid callback parameters"), http.StatusBadRequest)
		return
	}

	state, code, errParam := callbackParams(r)
	if state == "" {
		WriteError(w, r, h.log, apperrors.NewBadRequestError("missing state"), http.StatusBadRequest)
		return
	}

	err := h.broker.Complete(r.Context(), state, code, errParam)
	switch {
	case err == nil:
		h.renderCallback(w, http.StatusOK, callbackView{Title: "Signed in", Message: "You can close this window."})
	case errors.Is(err, identity.ErrPopupNotFound):
		h.renderCallback(w, http.StatusBadRequest, callbackView{Title: "Sign-in expired", Message: "This sign-in request has expired. Please try again."})
	case errors.Is(err, identity.ErrNoWaiter):
		h.renderCallback(w, http.StatusGone, callbackView{Title: "Sign-in abandoned", Message: "The window that started this sign-in is no longer open."})
	default:
		var internal *apperrors.InternalError
		if !errors.As(err, &internal) {
			internal = &apperrors.InternalError{Message: err.Error()}
		}
		h.log.WithError(internal).Error("failed to complete popup")
		h.renderCallback(w, http.StatusInternalServerError, callbackView{Title: "Sign-in failed", Message: "Something went wrong. Please try again later."})
	}
}

// callbackParams reads the popup state, the authorization code and the error
// parameter. OAuth 1.0a providers identify the popup by its request token and
// send a verifier instead of a code; a refusal comes back as "denied".
func callbackParams(r *http.Request) (state, code, errParam string) {
	state, code, errParam = r.Form.Get("state"), r.Form.Get("code"), r.Form.Get("error")
	if state != "" {
		return state, code, errParam
	}
	if denied := r.Form.Get("denied"); denied != "" {
		return denied, "", "access_denied"
	}
	return r.Form.Get("oauth_token"), r.Form.Get("oauth_verifier"), ""
}

func (h *AuthHandler) renderCallback(w http.ResponseWriter, status int, v callbackView) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := callbackPage.Execute(w, v); err != nil {
		h.log.WithError(err).Warn("failed to render callback page")
	}
}

// Config hands the platform settings to the front end as-is.
func (h *AuthHandler) Config(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, r, h.firebase, http.StatusOK)
}

func (h *AuthHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, r, map[string]string{"status": "ok"}, http.StatusOK)
}
