package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"quotewizard/models"
	"quotewizard/services/wizard"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 6, 15, 10, 30, 0, 0, time.UTC)

type stubGateway struct {
	result models.SubmissionResult
	keys   []string
}

func (g *stubGateway) Submit(ctx context.Context, draft models.BookingDraft, key string) models.SubmissionResult {
	g.keys = append(g.keys, key)
	return g.result
}

func accepted() models.SubmissionResult {
	return models.Accepted("pi_1", &models.Quote{ID: "q-1", Amount: decimal.NewFromInt(950), Currency: "usd"})
}

func newTestRouter(gw wizard.Gateway) (*gin.Engine, *wizard.SessionManager) {
	return newTestRouterWithCheckout(gw, nil)
}

func newTestRouterWithCheckout(gw wizard.Gateway, checkout wizard.Checkout) (*gin.Engine, *wizard.SessionManager) {
	gin.SetMode(gin.TestMode)

	deps := wizard.Dependencies{
		Validator: wizard.NewValidator(func() time.Time { return fixedNow }, time.UTC),
		Gateway:   gw,
		Checkout:  checkout,
	}
	sessions := wizard.NewSessionManager(deps, time.Hour)
	h := NewWizardHandler(sessions)

	r := gin.New()
	api := r.Group("/api/quote/sessions")
	api.POST("", h.StartSession)
	api.GET("/:id", h.GetSession)
	api.PATCH("/:id/fields", h.UpdateFields)
	api.POST("/:id/next", h.Next)
	api.POST("/:id/back", h.Back)
	api.DELETE("/:id", h.CancelSession)
	return r, sessions
}

type downCheckout struct {
	failures int
	calls    int
}

func (d *downCheckout) Handoff(ctx context.Context, b models.Booking) error {
	d.calls++
	if d.failures > 0 {
		d.failures--
		return errors.New("mongo down")
	}
	return nil
}

type viewBody struct {
	SessionID   string             `json:"sessionId"`
	Step        *models.WizardStep `json:"step"`
	FieldErrors map[string]string  `json:"fieldErrors"`
	Error       string             `json:"error"`
	Retryable   bool               `json:"retryable"`
	Submitted   bool               `json:"submitted"`
	Advanced    bool               `json:"advanced"`
	Booking     *models.Booking    `json:"booking"`
	Quote       *models.Quote      `json:"quote"`
	Suppress    bool               `json:"suppressFooter"`
}

func do(t *testing.T, r *gin.Engine, method, path, body string) (*httptest.ResponseRecorder, viewBody) {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var v viewBody
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	}
	return w, v
}

func start(t *testing.T, r *gin.Engine) string {
	w, v := do(t, r, http.MethodPost, "/api/quote/sessions", "")
	require.Equal(t, http.StatusCreated, w.Code)
	require.Equal(t, models.StepAddress, v.Step.ID)
	require.True(t, v.Suppress)
	return v.SessionID
}

func walkToPayment(t *testing.T, r *gin.Engine, id string) {
	base := "/api/quote/sessions/" + id
	patches := []string{
		`{"moveOrigin":{"text":"123 Main St","source":"manual"},"moveDestination":{"text":"456 Oak Ave","source":"manual"}}`,
		`{"itemsOrSize":["2-bedroom"]}`,
		`{"moveDate":"2026-07-01","timeOfDay":"Morning"}`,
	}
	for _, p := range patches {
		w, _ := do(t, r, http.MethodPatch, base+"/fields", p)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		w, v := do(t, r, http.MethodPost, base+"/next", "")
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		require.True(t, v.Advanced)
	}
}

func TestWizardHappyPath(t *testing.T) {
	gw := &stubGateway{result: accepted()}
	r, sessions := newTestRouter(gw)
	id := start(t, r)
	walkToPayment(t, r, id)

	w, v := do(t, r, http.MethodPost, "/api/quote/sessions/"+id+"/next", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.True(t, v.Submitted)
	require.Nil(t, v.Step)
	require.NotNil(t, v.Booking)
	require.Equal(t, "pi_1", v.Booking.PaymentToken)
	require.Equal(t, "q-1", v.Quote.ID)
	require.Len(t, gw.keys, 1)

	// Released after handoff.
	require.Zero(t, sessions.Len())
	w, _ = do(t, r, http.MethodGet, "/api/quote/sessions/"+id, "")
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestWizardValidationFailureIs422(t *testing.T) {
	r, _ := newTestRouter(&stubGateway{result: accepted()})
	id := start(t, r)

	w, v := do(t, r, http.MethodPost, "/api/quote/sessions/"+id+"/next", "")
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	require.Equal(t, models.StepAddress, v.Step.ID)
	require.Contains(t, v.FieldErrors, models.FieldMoveOrigin)
	require.Contains(t, v.FieldErrors, models.FieldMoveDestination)
	require.False(t, v.Advanced)
}

func TestWizardGatewayUnavailableIs503(t *testing.T) {
	gw := &stubGateway{result: models.Unavailable("pricing service returned 502")}
	r, _ := newTestRouter(gw)
	id := start(t, r)
	walkToPayment(t, r, id)

	w, v := do(t, r, http.MethodPost, "/api/quote/sessions/"+id+"/next", "")
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	require.True(t, v.Retryable)
	require.Equal(t, models.StepPayment, v.Step.ID)

	gw.result = accepted()
	w, v = do(t, r, http.MethodPost, "/api/quote/sessions/"+id+"/next", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.True(t, v.Submitted)
	require.Equal(t, gw.keys[0], gw.keys[1])
}

func TestWizardRejectionIs422OnPaymentField(t *testing.T) {
	gw := &stubGateway{result: models.Rejected("Destination out of area")}
	r, _ := newTestRouter(gw)
	id := start(t, r)
	walkToPayment(t, r, id)

	w, v := do(t, r, http.MethodPost, "/api/quote/sessions/"+id+"/next", "")
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	require.Equal(t, "Destination out of area", v.FieldErrors[models.FieldPaymentToken])
	require.False(t, v.Submitted)
}

func TestWizardBackKeepsDraft(t *testing.T) {
	r, _ := newTestRouter(&stubGateway{result: accepted()})
	id := start(t, r)
	walkToPayment(t, r, id)

	w, v := do(t, r, http.MethodPost, "/api/quote/sessions/"+id+"/back", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, models.StepDateTime, v.Step.ID)

	w, v = do(t, r, http.MethodPost, "/api/quote/sessions/"+id+"/next", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, models.StepPayment, v.Step.ID)
}

func TestWizardUnvisitedFieldIs422(t *testing.T) {
	r, _ := newTestRouter(&stubGateway{result: accepted()})
	id := start(t, r)

	w, _ := do(t, r, http.MethodPatch, "/api/quote/sessions/"+id+"/fields", `{"moveDate":"2026-07-01"}`)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	require.Contains(t, w.Body.String(), MsgStepNotReached)
}

func TestWizardBadJSONIs400(t *testing.T) {
	r, _ := newTestRouter(&stubGateway{result: accepted()})
	id := start(t, r)

	w, _ := do(t, r, http.MethodPatch, "/api/quote/sessions/"+id+"/fields", `{"itemsOrSize":"boxes"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWizardUnknownSessionIs404(t *testing.T) {
	r, _ := newTestRouter(&stubGateway{result: accepted()})
	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/api/quote/sessions/nope"},
		{http.MethodPost, "/api/quote/sessions/nope/next"},
		{http.MethodPost, "/api/quote/sessions/nope/back"},
		{http.MethodDelete, "/api/quote/sessions/nope"},
	} {
		w, _ := do(t, r, tc.method, tc.path, "")
		require.Equal(t, http.StatusNotFound, w.Code, tc.path)
	}
}

func TestWizardCancel(t *testing.T) {
	r, sessions := newTestRouter(&stubGateway{result: accepted()})
	id := start(t, r)

	w, _ := do(t, r, http.MethodDelete, "/api/quote/sessions/"+id, "")
	require.Equal(t, http.StatusNoContent, w.Code)
	require.Zero(t, sessions.Len())
}

func TestWizardInvariantViolationIs500(t *testing.T) {
	r, _ := newTestRouter(nil)
	id := start(t, r)
	walkToPayment(t, r, id)

	w, _ := do(t, r, http.MethodPost, "/api/quote/sessions/"+id+"/next", "")
	require.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestWizardFailedHandoffIs503AndKeepsSession(t *testing.T) {
	checkout := &downCheckout{failures: 1}
	r, sessions := newTestRouterWithCheckout(&stubGateway{result: accepted()}, checkout)
	id := start(t, r)
	walkToPayment(t, r, id)

	w, v := do(t, r, http.MethodPost, "/api/quote/sessions/"+id+"/next", "")
	require.Equal(t, http.StatusServiceUnavailable, w.Code, w.Body.String())
	require.True(t, v.Submitted)
	require.True(t, v.Retryable)
	require.Equal(t, wizard.MsgHandoffFailed, v.Error)
	require.Equal(t, 1, sessions.Len())

	w, v = do(t, r, http.MethodPost, "/api/quote/sessions/"+id+"/next", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.True(t, v.Submitted)
	require.False(t, v.Retryable)
	require.Equal(t, 2, checkout.calls)
	require.Zero(t, sessions.Len())
}
