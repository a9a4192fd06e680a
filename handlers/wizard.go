package handlers

import (
	"errors"
	"net/http"

	"quotewizard/models"
	"quotewizard/services/wizard"
	"quotewizard/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// MsgStepNotReached is reported for a field whose step the customer has not opened yet.
const MsgStepNotReached = "Complete the earlier steps first"

// WizardHandler serves the quote wizard page shell.
type WizardHandler struct {
	Sessions *wizard.SessionManager
}

func NewWizardHandler(sessions *wizard.SessionManager) *WizardHandler {
	return &WizardHandler{Sessions: sessions}
}

// sessionResponse is the view plus what the last navigation event did.
type sessionResponse struct {
	models.ShellView
	Advanced bool            `json:"advanced"`
	Booking  *models.Booking `json:"booking,omitempty"`
}

// StartSession opens a new wizard on the address step.
func (h *WizardHandler) StartSession(c *gin.Context) {
	ctrl := h.Sessions.Start()
	c.JSON(http.StatusCreated, sessionResponse{ShellView: ctrl.View()})
}

// GetSession renders the current page shell.
func (h *WizardHandler) GetSession(c *gin.Context) {
	ctrl, ok := h.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, sessionResponse{ShellView: ctrl.View()})
}

// UpdateFields merges a partial draft. It never moves between steps.
func (h *WizardHandler) UpdateFields(c *gin.Context) {
	ctrl, ok := h.session(c)
	if !ok {
		return
	}

	var patch models.DraftPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	if _, err := ctrl.FieldChange(patch); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, sessionResponse{ShellView: ctrl.View()})
}

// Next validates the current step and advances, submitting on the payment step.
func (h *WizardHandler) Next(c *gin.Context) {
	ctrl, ok := h.session(c)
	if !ok {
		return
	}

	out, err := ctrl.Next(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}

	resp := sessionResponse{ShellView: ctrl.View(), Advanced: out.Advanced, Booking: out.Booking}
	switch {
	case out.State == wizard.StateSubmitted && out.Retryable:
		// Paid but not recorded; the session stays so Next can retry the handoff.
		c.JSON(http.StatusServiceUnavailable, resp)
	case out.State == wizard.StateSubmitted:
		// Handoff is done; nothing drives this session any more.
		h.Sessions.Release(ctrl.ID())
		c.JSON(http.StatusOK, resp)
	case out.Retryable:
		c.JSON(http.StatusServiceUnavailable, resp)
	case len(out.FieldErrors) > 0:
		c.JSON(http.StatusUnprocessableEntity, resp)
	default:
		c.JSON(http.StatusOK, resp)
	}
}

// Back returns to the previous step without validation.
func (h *WizardHandler) Back(c *gin.Context) {
	ctrl, ok := h.session(c)
	if !ok {
		return
	}
	if _, err := ctrl.Back(); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, sessionResponse{ShellView: ctrl.View()})
}

// CancelSession discards the session and any in-flight submission.
func (h *WizardHandler) CancelSession(c *gin.Context) {
	if err := h.Sessions.Discard(c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *WizardHandler) session(c *gin.Context) (*wizard.Controller, bool) {
	ctrl, err := h.Sessions.Get(c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return nil, false
	}
	return ctrl, true
}

func (h *WizardHandler) fail(c *gin.Context, err error) {
	logger := getLogger(c)
	var notEditable *wizard.FieldNotEditableError

	switch {
	case errors.Is(err, wizard.ErrSessionNotFound):
		c.JSON(http.StatusNotFound, utils.ErrorResponse{Message: err.Error()})
	case errors.As(err, &notEditable):
		c.JSON(http.StatusUnprocessableEntity, utils.ErrorResponse{
			Message:     err.Error(),
			FieldErrors: map[string]string{notEditable.Field: MsgStepNotReached},
		})
	case errors.Is(err, wizard.ErrSubmissionPending):
		c.JSON(http.StatusConflict, utils.ErrorResponse{Message: err.Error(), Retryable: true})
	case errors.Is(err, wizard.ErrSessionSubmitted):
		c.JSON(http.StatusConflict, utils.ErrorResponse{Message: err.Error()})
	case errors.Is(err, wizard.ErrSessionDiscarded):
		// Cancelled while this request was in flight.
		c.JSON(http.StatusGone, utils.ErrorResponse{Message: err.Error()})
	case errors.Is(err, wizard.ErrInvariant):
		logger.Error("wizard invariant violated", zap.String("session", c.Param("id")), zap.Error(err))
		c.JSON(http.StatusInternalServerError, utils.ErrorResponse{Message: "Internal Server Error"})
	default:
		logger.Error("quote session request failed", zap.String("session", c.Param("id")), zap.Error(err))
		c.JSON(http.StatusInternalServerError, utils.ErrorResponse{Message: "Internal Server Error"})
	}
}
