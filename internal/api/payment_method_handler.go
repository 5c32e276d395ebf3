package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"crewboard-backend-go/internal/core"
	"crewboard-backend-go/internal/models"
)

// PaymentMethodHandler handles saved-card and setup-intent API endpoints.
type PaymentMethodHandler struct {
	paymentService core.PaymentMethodService
}

// NewPaymentMethodHandler creates a new PaymentMethodHandler.
func NewPaymentMethodHandler(ps core.PaymentMethodService) *PaymentMethodHandler {
	return &PaymentMethodHandler{paymentService: ps}
}

// CreateSetupIntent handles POST /billing/setup-intent.
func (h *PaymentMethodHandler) CreateSetupIntent(c *gin.Context) {
	var req models.CreateSetupIntentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request payload", Details: err.Error()})
		return
	}

	clientSecret, err := h.paymentService.CreateSetupIntent(c.Request.Context(), req.UID)
	if err != nil {
		mapBillingErrorToStatus(c, err)
		return
	}

	c.JSON(http.StatusOK, SetupIntentResponse{ClientSecret: clientSecret})
}

// SavePaymentMethod handles POST /billing/payment-methods. Called after the
// browser-side SDK confirms the setup intent; mirrors the confirmed card.
func (h *PaymentMethodHandler) SavePaymentMethod(c *gin.Context) {
	var req models.SavePaymentMethodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request payload", Details: err.Error()})
		return
	}

	card, err := h.paymentService.SavePaymentMethod(c.Request.Context(), req.UID, req.PaymentMethodID, req.CardholderName)
	if err != nil {
		mapBillingErrorToStatus(c, err)
		return
	}

	c.JSON(http.StatusCreated, card)
}

// GetPaymentMethod handles GET /billing/payment-methods/:paymentMethodId.
func (h *PaymentMethodHandler) GetPaymentMethod(c *gin.Context) {
	paymentMethodID := c.Param("paymentMethodId")
	if paymentMethodID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "paymentMethodId is required"})
		return
	}

	info, err := h.paymentService.GetPaymentMethod(c.Request.Context(), paymentMethodID)
	if err != nil {
		mapBillingErrorToStatus(c, err)
		return
	}

	c.JSON(http.StatusOK, info)
}

// ListPaymentMethods handles GET /billing/payment-methods?uid=...
// It lists the user's mirrored card documents.
func (h *PaymentMethodHandler) ListPaymentMethods(c *gin.Context) {
	uid := c.Query("uid")
	if uid == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "uid query parameter is required"})
		return
	}

	cards, err := h.paymentService.ListSavedCards(c.Request.Context(), uid)
	if err != nil {
		mapBillingErrorToStatus(c, err)
		return
	}

	c.JSON(http.StatusOK, cards)
}

// DetachPaymentMethod handles DELETE /billing/payment-methods/:paymentMethodId?uid=...
// Detaches the method at the gateway, then deletes the mirror document.
func (h *PaymentMethodHandler) DetachPaymentMethod(c *gin.Context) {
	paymentMethodID := c.Param("paymentMethodId")
	uid := c.Query("uid")
	if paymentMethodID == "" || uid == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "paymentMethodId and uid are required"})
		return
	}

	info, err := h.paymentService.DetachPaymentMethod(c.Request.Context(), uid, paymentMethodID)
	if err != nil {
		mapBillingErrorToStatus(c, err)
		return
	}

	c.JSON(http.StatusOK, DetachPaymentMethodResponse{Success: true, PaymentMethod: info})
}

// SetPrimaryPaymentMethod handles PUT /billing/payment-methods/:paymentMethodId/primary.
func (h *PaymentMethodHandler) SetPrimaryPaymentMethod(c *gin.Context) {
	paymentMethodID := c.Param("paymentMethodId")
	if paymentMethodID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "paymentMethodId is required"})
		return
	}

	var req models.SetPrimaryPaymentMethodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request payload", Details: err.Error()})
		return
	}

	if err := h.paymentService.SetPrimaryPaymentMethod(c.Request.Context(), req.UID, paymentMethodID); err != nil {
		mapBillingErrorToStatus(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Success: true})
}
