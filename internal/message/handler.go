package message

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/emailbuilder/service/internal/appconfig"
	"github.com/emailbuilder/service/internal/logger"
	"github.com/emailbuilder/service/internal/page"
	"github.com/emailbuilder/service/internal/response"
)

// maxDocumentBytes caps a saved document body.
const maxDocumentBytes = 4 << 20

// Handler holds HTTP handlers for saving messages and serving the editor.
type Handler struct {
	svc       *Service
	editor    appconfig.AppConfig
	scriptURL string
}

// NewHandler creates a new message Handler. editor is embedded into every
// served editor page.
func NewHandler(svc *Service, editor appconfig.AppConfig, scriptURL string) *Handler {
	return &Handler{svc: svc, editor: editor, scriptURL: scriptURL}
}

type saveData struct {
	RedirectURL string `json:"redirectUrl" example:"/editor/e7eedc79-0707-4fe4-8734-526b7ef13a7b"`
}

// Save godoc
//
//	@Summary		Save a message
//	@Description	Stores the full email-builder document and returns where to reopen it.
//	@Tags			messages
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		object	true	"Email-builder document with a root block"
//	@Success		200		{object}	saveData
//	@Failure		400		{object}	response.Envelope
//	@Failure		413		{object}	response.Envelope
//	@Failure		500		{object}	response.Envelope
//	@Router			/messages [post]
func (h *Handler) Save(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxDocumentBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.Error(w, http.StatusRequestEntityTooLarge, "document too large")
			return
		}
		response.BadRequest(w, "invalid request body")
		return
	}

	m, err := h.svc.Save(r.Context(), raw)
	if err != nil {
		if errors.Is(err, ErrInvalidDocument) {
			response.BadRequest(w, "document must be a JSON object with a root block")
			return
		}
		logger.FromContext(r.Context()).Error("save message failed", slog.Any("error", err))
		response.InternalError(w)
		return
	}

	logger.FromContext(r.Context()).Info("saved message", slog.String("id", m.ID), slog.String("name", m.Name))
	response.JSON(w, http.StatusOK, saveData{RedirectURL: EditorPath(m.ID)})
}

// NewEditor serves the editor page with no initial document.
func (h *Handler) NewEditor(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, page.Shell{})
}

// Editor serves the editor page seeded with a saved message.
func (h *Handler) Editor(w http.ResponseWriter, r *http.Request) {
	m, err := h.svc.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if h.svc.IsNotFound(err) {
			response.NotFound(w, "message not found")
			return
		}
		logger.FromContext(r.Context()).Error("load message failed", slog.Any("error", err))
		response.InternalError(w)
		return
	}
	h.render(w, r, page.Shell{Title: m.Name, Data: m.Document})
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, shell page.Shell) {
	shell.Config = h.editor
	shell.ScriptURL = h.scriptURL
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := page.Render(w, shell); err != nil {
		logger.FromContext(r.Context()).Error("render editor failed", slog.Any("error", err))
	}
}
