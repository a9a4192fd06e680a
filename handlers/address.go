package handlers

import (
	"net/http"

	"quotewizard/models"
	"quotewizard/services/address"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AddressHandler struct {
	Lookup address.Lookup
}

func NewAddressHandler(lookup address.Lookup) *AddressHandler {
	return &AddressHandler{Lookup: lookup}
}

// Suggest returns address candidates for q. A failed lookup degrades to manual
// entry rather than an error, so the address step is never blocked.
func (h *AddressHandler) Suggest(c *gin.Context) {
	manual := h.Lookup.Manual()

	candidates, err := h.Lookup.Suggest(c.Request.Context(), c.Query("q"))
	if err != nil {
		getLogger(c).Warn("address lookup degraded to manual entry", zap.Error(err))
		candidates, manual = []models.AddressCandidate{}, true
	}

	c.JSON(http.StatusOK, gin.H{"candidates": candidates, "manual": manual})
}
