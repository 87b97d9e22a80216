// internal/api/handler/websocket.go
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"authflow-server/internal/domain/auth"
	"authflow-server/internal/identity"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const (
	writeWait  = 10 * time.Second
	sendBuffer = 16
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for now
	},
}

var errTabClosed = errors.New("tab connection closed")

type intent struct {
	Type     string `json:"type"`
	Field    string `json:"field,omitempty"`
	Value    string `json:"value,omitempty"`
	Provider string `json:"provider,omitempty"`
}

type stateView struct {
	User           *auth.Identity `json:"user"`
	Mode           string         `json:"mode"`
	Email          string         `json:"email"`
	Name           string         `json:"name"`
	ShowPassword   bool           `json:"showPassword"`
	RequiredFields []string       `json:"requiredFields"`
}

type event struct {
	Type     string     `json:"type"`
	State    *stateView `json:"state,omitempty"`
	Level    auth.Level `json:"level,omitempty"`
	Message  string     `json:"message,omitempty"`
	Provider string     `json:"provider,omitempty"`
	URL      string     `json:"url,omitempty"`
}

func viewOf(s auth.State) *stateView {
	return &stateView{
		User:           s.Identity,
		Mode:           s.Mode.String(),
		Email:          s.Form.Email,
		Name:           s.Form.Name,
		ShowPassword:   s.Form.ShowPassword,
		RequiredFields: s.Mode.RequiredFields(),
	}
}

type WebSocketHandler struct {
	platform  *identity.Platform
	validator auth.Validator
	recorder  auth.EventRecorder
	log       *logrus.Entry
}

func NewWebSocketHandler(pl *identity.Platform, v auth.Validator, rec auth.EventRecorder, log *logrus.Entry) *WebSocketHandler {
	return &WebSocketHandler{
		platform:  pl,
		validator: v,
		recorder:  rec,
		log:       log,
	}
}

// HandleConnection serves one browser tab for the lifetime of its socket.
func (h *WebSocketHandler) HandleConnection(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied to the client.
		h.log.WithError(err).Warn("websocket upgrade failed")
		return
	}
	defer conn.Close()

	tabID := uuid.NewString()
	log := h.log.WithField("tab", tabID)
	ctx, cancel := context.WithCancel(context.WithoutCancel(r.Context()))
	defer cancel()

	s := &session{
		conn: conn,
		log:  log,
		out:  make(chan event, sendBuffer),
		done: make(chan struct{}),
	}
	s.tab = h.platform.NewTab(tabID, s)
	s.ctrl = auth.NewController(s.tab, s, h.validator,
		auth.WithRecorder(h.recorder),
		auth.WithLogger(h.log),
		auth.WithTabID(tabID),
	)
	go s.writeLoop()
	defer s.close()

	log.Info("tab connected")
	s.sendState()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.WithError(err).Warn("tab connection lost")
			}
			break
		}
		var in intent
		if err := json.Unmarshal(data, &in); err != nil {
			s.sendError("malformed message")
			continue
		}
		s.dispatch(ctx, h.platform.Broker, in)
	}

	cancel()
	h.platform.Broker.Dismiss(context.Background(), tabID)
	log.Info("tab disconnected")
}

// session is one connected tab. It is the controller's Notifier and the
// identity platform's Window. Only writeLoop writes to conn.
type session struct {
	conn *websocket.Conn
	log  *logrus.Entry
	tab  *identity.Tab
	ctrl *auth.Controller

	out       chan event
	done      chan struct{}
	closeOnce sync.Once
}

func (s *session) dispatch(ctx context.Context, broker *identity.PopupBroker, in intent) {
	switch in.Type {
	case "set_field":
		switch in.Field {
		case "email":
			s.ctrl.SetEmail(in.Value)
		case "password":
			s.ctrl.SetPassword(in.Value)
		case "name":
			s.ctrl.SetName(in.Value)
		default:
			s.sendError("unknown field: " + in.Field)
			return
		}
		s.sendState()
	case "toggle_mode":
		s.ctrl.ToggleMode()
		s.sendState()
	case "toggle_password_visibility":
		s.ctrl.TogglePasswordVisibility()
		s.sendState()
	case "login_provider":
		p, err := auth.ParseProvider(in.Provider)
		if err != nil {
			s.sendError(err.Error())
			return
		}
		go s.ctrl.LoginWithProvider(ctx, p)
	case "submit":
		go s.ctrl.SubmitEmailForm(ctx)
	case "logout":
		go s.ctrl.Logout(ctx)
	case "popup_closed":
		broker.Dismiss(ctx, s.tab.ID())
	default:
		s.sendError("unknown message type: " + in.Type)
	}
}

// Notify sends the state the notification refers to, then the notification.
func (s *session) Notify(n auth.Notification) {
	s.sendState()
	s.send(event{Type: "notification", Level: n.Level, Message: n.Message})
}

func (s *session) OpenPopup(p auth.Provider, authURL string) error {
	return s.send(event{Type: "open_popup", Provider: p.Key(), URL: authURL})
}

func (s *session) sendState() {
	s.send(event{Type: "state", State: viewOf(s.ctrl.Snapshot())})
}

func (s *session) sendError(msg string) {
	s.send(event{Type: "error", Message: msg})
}

func (s *session) send(e event) error {
	select {
	case <-s.done:
		return errTabClosed
	default:
	}
	select {
	case s.out <- e:
		return nil
	case <-s.done:
		return errTabClosed
	}
}

func (s *session) writeLoop() {
	for {
		select {
		case e := <-s.out:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteJSON(e); err != nil {
				s.log.WithError(err).Debug("write to tab failed")
				s.close()
				s.conn.Close()
				return
			}
		case <-s.done:
			return
		}
	}
}

func (s *session) close() {
	s.closeOnce.Do(func() { close(s.done) })
}
