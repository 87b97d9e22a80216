// internal/identity/popup.go
package identity

import (
	"context"
	"errors"
	"sync"
	"time"

	"authflow-server/internal/domain/auth"
	apperrors "authflow-server/pkg/errors"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
)

// ErrNoWaiter is returned by Complete when the popup's state is valid but the
// tab waiting for it is not connected to this process.
var ErrNoWaiter = errors.New("no tab is waiting for this popup")

type popupResult struct {
	code string
	err  error
}

type waiter struct {
	pending PendingPopup
	result  chan popupResult
}

func (w *waiter) deliver(r popupResult) {
	select {
	case w.result <- r:
	default:
	}
}

// PopupBroker pairs OAuth callbacks with the tab that opened the popup. A tab
// has at most one popup pending; opening another cancels the first.
type PopupBroker struct {
	store   PopupStore
	timeout time.Duration
	log     *logrus.Entry

	mu      sync.Mutex
	waiters map[string]*waiter
	byTab   map[string]string
}

func NewPopupBroker(store PopupStore, timeout time.Duration, log *logrus.Entry) *PopupBroker {
	return &PopupBroker{
		store:   store,
		timeout: timeout,
		log:     log,
		waiters: make(map[string]*waiter),
		byTab:   make(map[string]string),
	}
}

// Ticket is one pending popup as seen by the tab that opened it.
type Ticket struct {
	PendingPopup
	broker *PopupBroker
	w      *waiter
	once   sync.Once
}

// Begin registers a popup under a fresh state token with a PKCE verifier.
func (b *PopupBroker) Begin(ctx context.Context, tabID string, p auth.Provider) (*Ticket, error) {
	return b.begin(ctx, PendingPopup{
		State:    uuid.NewString(),
		TabID:    tabID,
		Provider: p.Key(),
		Verifier: oauth2.GenerateVerifier(),
	})
}

// BeginWithState registers a popup under a state chosen by the provider, such
// as an OAuth 1.0a request token.
func (b *PopupBroker) BeginWithState(ctx context.Context, tabID string, p auth.Provider, state string) (*Ticket, error) {
	return b.begin(ctx, PendingPopup{
		State:    state,
		TabID:    tabID,
		Provider: p.Key(),
	})
}

func (b *PopupBroker) begin(ctx context.Context, pending PendingPopup) (*Ticket, error) {
	tabID := pending.TabID
	if err := b.store.Save(ctx, pending, b.timeout); err != nil {
		return nil, apperrors.NewProviderError(auth.CodeInternalError, err.Error())
	}

	w := &waiter{pending: pending, result: make(chan popupResult, 1)}

	b.mu.Lock()
	var superseded *waiter
	if prev, ok := b.byTab[tabID]; ok {
		superseded = b.waiters[prev]
		delete(b.waiters, prev)
	}
	b.waiters[pending.State] = w
	b.byTab[tabID] = pending.State
	b.mu.Unlock()

	if superseded != nil {
		b.log.WithFields(logrus.Fields{"tab": tabID, "provider": superseded.pending.Provider}).Info("popup superseded")
		superseded.deliver(popupResult{err: apperrors.NewProviderError(auth.CodeCancelledPopupRequest, "")})
		b.forget(superseded.pending.State)
	}

	return &Ticket{PendingPopup: pending, broker: b, w: w}, nil
}

// Complete hands the callback's authorization code, or its error parameter, to
// the waiting tab.
func (b *PopupBroker) Complete(ctx context.Context, state, code, errParam string) error {
	pending, err := b.store.Take(ctx, state)
	if errors.Is(err, ErrPopupNotFound) {
		return err
	}
	if err != nil {
		return &apperrors.InternalError{Message: "take popup state: " + err.Error()}
	}

	b.mu.Lock()
	w := b.waiters[state]
	if w != nil {
		delete(b.waiters, state)
		if b.byTab[w.pending.TabID] == state {
			delete(b.byTab, w.pending.TabID)
		}
	}
	b.mu.Unlock()

	if w == nil {
		b.log.WithFields(logrus.Fields{"tab": pending.TabID, "provider": pending.Provider}).Warn("callback for a tab not connected here")
		return ErrNoWaiter
	}

	switch {
	case errParam != "":
		w.deliver(popupResult{err: apperrors.NewProviderError(codeForCallbackError(errParam), errParam)})
	case code == "":
		w.deliver(popupResult{err: apperrors.NewProviderError(auth.CodeInvalidCredential, "callback without code")})
	default:
		w.deliver(popupResult{code: code})
	}
	return nil
}

// Dismiss fails the tab's pending popup, if any, because the user closed it.
func (b *PopupBroker) Dismiss(ctx context.Context, tabID string) {
	b.mu.Lock()
	state, ok := b.byTab[tabID]
	var w *waiter
	if ok {
		w = b.waiters[state]
		delete(b.waiters, state)
		delete(b.byTab, tabID)
	}
	b.mu.Unlock()

	if w == nil {
		return
	}
	w.deliver(popupResult{err: apperrors.NewProviderError(auth.CodePopupClosedByUser, "")})
	b.forget(state)
}

func (b *PopupBroker) Pending(tabID string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.byTab[tabID]
	return ok
}

func (b *PopupBroker) forget(state string) {
	if err := b.store.Delete(context.Background(), state); err != nil {
		b.log.WithError(err).Warn("failed to delete popup state")
	}
}

func (b *PopupBroker) release(w *waiter) {
	state := w.pending.State
	b.mu.Lock()
	owned := b.waiters[state] == w
	if owned {
		delete(b.waiters, state)
		if b.byTab[w.pending.TabID] == state {
			delete(b.byTab, w.pending.TabID)
		}
	}
	b.mu.Unlock()
	if owned {
		b.forget(state)
	}
}

// Wait blocks until the callback arrives, the popup is dismissed or superseded,
// the popup times out, or ctx ends.
func (t *Ticket) Wait(ctx context.Context) (string, error) {
	defer t.Release()

	timer := time.NewTimer(t.broker.timeout)
	defer timer.Stop()

	select {
	case r := <-t.w.result:
		return r.code, r.err
	case <-timer.C:
		return "", apperrors.NewProviderError(auth.CodeTimeout, "popup timed out")
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", apperrors.NewProviderError(auth.CodeTimeout, ctx.Err().Error())
		}
		return "", apperrors.NewProviderError(auth.CodePopupClosedByUser, ctx.Err().Error())
	}
}

// Release abandons the popup. It is safe to call more than once.
func (t *Ticket) Release() {
	t.once.Do(func() { t.broker.release(t.w) })
}
