// internal/api/handler/response.go
package handler

import (
	"net/http"

	"github.com/go-chi/render"
	"github.com/sirupsen/logrus"
)

// Error wraps error messages for consistent JSON responses
type Error struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

// WriteJSON sends a JSON response with the given status code
func WriteJSON(w http.ResponseWriter, r *http.Request, data interface{}, status int) {
	render.Status(r, status)
	render.JSON(w, r, data)
}

// WriteError sends a JSON error response with the given status code
func WriteError(w http.ResponseWriter, r *http.Request, log *logrus.Entry, err error, status int) {
	entry := log.WithError(err).WithField("status", status)
	if status >= http.StatusInternalServerError {
		entry.Error("request failed")
	} else {
		entry.Debug("request rejected")
	}
	WriteJSON(w, r, Error{
		Status:  status,
		Message: err.Error(),
	}, status)
}
