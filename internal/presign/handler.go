package presign

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/emailbuilder/service/internal/logger"
	"github.com/emailbuilder/service/internal/response"
	"github.com/emailbuilder/service/internal/upload"
)

// Handler holds HTTP handlers for upload authorization.
type Handler struct {
	svc *Service
}

// NewHandler creates a new presign Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Presign godoc
//
//	@Summary		Authorize an image upload
//	@Description	Returns a one-time upload URL. When `fields` is present the file must be sent as a multipart POST carrying those fields; otherwise it must be PUT with the declared content type.
//	@Tags			uploads
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		upload.PresignedURLRequest	true	"File metadata"
//	@Success		200		{object}	upload.PresignedURLResponse
//	@Failure		400		{object}	response.Envelope
//	@Failure		413		{object}	response.Envelope
//	@Failure		500		{object}	response.Envelope
//	@Router			/uploads/presign [post]
func (h *Handler) Presign(w http.ResponseWriter, r *http.Request) {
	var req upload.PresignedURLRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	resp, err := h.svc.Authorize(r.Context(), req)
	switch {
	case errors.Is(err, ErrTooLarge):
		response.Error(w, http.StatusRequestEntityTooLarge, err.Error())
		return
	case errors.Is(err, ErrInvalidRequest):
		response.BadRequest(w, err.Error())
		return
	case err != nil:
		logger.FromContext(r.Context()).Error("presign failed", slog.Any("error", err))
		response.InternalError(w)
		return
	}

	response.JSON(w, http.StatusOK, resp)
}
