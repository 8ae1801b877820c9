package handlers

import (
	"errors"
	"net/http"

	"github.com/groupfund/backend/internal/middleware"
	"github.com/groupfund/backend/internal/services"
)

type QRHandler struct {
	service   *services.QRService
	validator *services.ValidationHelper
}

func NewQRHandler(service *services.QRService) *QRHandler {
	return &QRHandler{
		service:   service,
		validator: services.NewValidationHelper(),
	}
}

// GenerateQR generates a contribution invite QR code
// @Summary Generate QR Code
// @Description Generate a QR code inviting a contribution into a group fund
// @Tags QR
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body object{groupId=int,fundName=string,amount=int64} true "QR generation request"
// @Success 200 {object} object{qrCode=string}
// @Failure 400 {object} services.ErrorResponse
// @Failure 401 {object} services.ErrorResponse
// @Failure 429 {object} services.ErrorResponse
// @Router /qr/generate [post]
func (h *QRHandler) GenerateQR(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		services.SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	var req struct {
		GroupID  int    `json:"groupId" validate:"required,gt=0"`
		FundName string `json:"fundName" validate:"required,min=1,max=100"`
		Amount   int64  `json:"amount" validate:"required,gt=0"`
	}
	if err := services.DecodeJSON(w, r, &req); err != nil {
		services.SendErrorResponse(w, err.Error(), http.StatusBadRequest, nil)
		return
	}
	if err := h.validator.ValidateStruct(&req); err != nil {
		services.SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	qrCode, qrImage, err := h.service.GenerateContributionQR(r.Context(), userID, req.GroupID, req.FundName, req.Amount)
	if errors.Is(err, services.ErrTooManyActiveCodes) {
		services.SendErrorResponse(w, err.Error(), http.StatusTooManyRequests, nil)
		return
	}
	if err != nil {
		services.SendErrorResponse(w, err.Error(), http.StatusInternalServerError, nil)
		return
	}

	services.WriteJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"qrCode":  qrCode,
		"qrImage": qrImage,
	})
}

// ResolveQR resolves a scanned contribution QR code
// @Summary Resolve QR Code
// @Description Resolve a scanned QR code into its contribution invite
// @Tags QR
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body object{qrData=string} true "QR resolve request"
// @Success 200 {object} object{data=services.ContributionInvite}
// @Failure 400 {object} services.ErrorResponse
// @Router /qr/resolve [post]
func (h *QRHandler) ResolveQR(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.UserID(r.Context()); !ok {
		services.SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	var req struct {
		QRData string `json:"qrData" validate:"required"`
	}
	if err := services.DecodeJSON(w, r, &req); err != nil {
		services.SendErrorResponse(w, err.Error(), http.StatusBadRequest, nil)
		return
	}
	if err := h.validator.ValidateStruct(&req); err != nil {
		services.SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	invite, err := h.service.ResolveContributionQR(r.Context(), req.QRData)
	if err != nil {
		services.SendErrorResponse(w, err.Error(), http.StatusBadRequest, nil)
		return
	}

	services.WriteJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    invite,
	})
}
