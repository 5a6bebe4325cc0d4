package handler

import (
	"errors"
	"net/http"
	"strconv"

	"campus/internal/middleware"
	"campus/internal/models"
	"campus/internal/repository"
	"campus/internal/service"
	"campus/pkg/gateway"

	"github.com/gin-gonic/gin"
)

type FeePaymentHandler struct {
	paymentSvc *service.FeePaymentService
	auditRepo  *repository.AuditLogRepository
}

func NewFeePaymentHandler(paymentSvc *service.FeePaymentService, auditRepo *repository.AuditLogRepository) *FeePaymentHandler {
	return &FeePaymentHandler{paymentSvc: paymentSvc, auditRepo: auditRepo}
}

// Initiate starts an online payment for the authenticated student's own
// fee assignment.
func (h *FeePaymentHandler) Initiate(c *gin.Context) {
	assignmentID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid assignment id"})
		return
	}
	var req struct {
		Amount  float64 `json:"amount" binding:"required,gt=0"`
		Gateway string  `json:"gateway"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "amount required"})
		return
	}
	if req.Gateway == "" {
		req.Gateway = "razorpay"
	}
	studentID := middleware.GetUserID(c)
	result, err := h.paymentSvc.InitiateOnlinePayment(c.Request.Context(), studentID, uint(assignmentID), req.Amount, req.Gateway)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "fee assignment not found"})
		case errors.Is(err, service.ErrForbidden):
			c.JSON(http.StatusForbidden, gin.H{"error": "assignment does not belong to you"})
		case errors.Is(err, service.ErrInvalidRequest):
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid amount"})
		case errors.Is(err, gateway.ErrUnavailable):
			c.JSON(http.StatusBadGateway, gin.H{"error": "payment gateway unavailable, try again"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "payment initiation failed"})
		}
		return
	}
	c.JSON(http.StatusOK, result)
}

// Confirm handles the signed client-side confirmation callback. A signature
// failure is an authorization error, never a 5xx.
func (h *FeePaymentHandler) Confirm(c *gin.Context) {
	var req struct {
		PaymentID        uint   `json:"payment_id"`
		OrderID          string `json:"order_id"`
		GatewayPaymentID string `json:"gateway_payment_id"`
		Signature        string `json:"signature"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	userID := middleware.GetUserID(c)
	err := h.paymentSvc.VerifyPayment(userID, req.OrderID, req.GatewayPaymentID, req.PaymentID, req.Signature)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidRequest):
			c.JSON(http.StatusBadRequest, gin.H{"error": "confirmation does not match the payment"})
		case errors.Is(err, service.ErrInvalidSignature):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid signature"})
		case errors.Is(err, service.ErrForbidden):
			c.JSON(http.StatusForbidden, gin.H{"error": "payment does not belong to you"})
		case errors.Is(err, service.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "payment not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "verification failed"})
		}
		return
	}
	_ = h.auditRepo.Create(&models.AuditLog{
		UserID:     &userID,
		Action:     "fee_payment_confirmed",
		Resource:   "fee_payment",
		ResourceID: req.OrderID,
		IP:         c.ClientIP(),
		UserAgent:  c.Request.UserAgent(),
	})
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// RecordOffline lets staff record a cash or cheque payment against an
// assignment.
func (h *FeePaymentHandler) RecordOffline(c *gin.Context) {
	assignmentID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid assignment id"})
		return
	}
	var req struct {
		Amount        float64 `json:"amount" binding:"required,gt=0"`
		PaymentMethod string  `json:"payment_method" binding:"required"`
		Reference     string  `json:"reference"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "amount and payment_method required"})
		return
	}
	staffID := middleware.GetUserID(c)
	p, err := h.paymentSvc.RecordOfflinePayment(uint(assignmentID), req.Amount, req.PaymentMethod, staffID, req.Reference)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "fee assignment not found"})
		case errors.Is(err, service.ErrInvalidRequest):
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payment details"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "payment recording failed"})
		}
		return
	}
	_ = h.auditRepo.Create(&models.AuditLog{
		UserID:     &staffID,
		Action:     "offline_payment_recorded",
		Resource:   "fee_payment",
		ResourceID: p.TransactionID,
		IP:         c.ClientIP(),
		UserAgent:  c.Request.UserAgent(),
	})
	c.JSON(http.StatusCreated, gin.H{"payment": p})
}
