package handler

import (
	"errors"
	"net/http"
	"strconv"

	"sitechat/internal/repository"
	"sitechat/internal/service/auth"
	"sitechat/internal/service/note"
	"sitechat/internal/session"
	"sitechat/pkg/rbac"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NoteHandler works on the notes of the session's selected project.
type NoteHandler struct {
	auth   *auth.Service
	notes  *note.Service
	logger *zap.Logger
}

func NewNoteHandler(authService *auth.Service, noteService *note.Service, logger *zap.Logger) *NoteHandler {
	return &NoteHandler{auth: authService, notes: noteService, logger: logger}
}

func (h *NoteHandler) ListNotes(c *gin.Context) {
	sess := session.FromContext(c)
	if sess.ProjectID == "" {
		respondError(c, "No project selected")
		return
	}

	notes, err := h.notes.List(c.Request.Context(), sess.ProjectID)
	if err != nil {
		h.logger.Error("ListNotes: failed to load notes",
			zap.String("project_id", sess.ProjectID),
			zap.Error(err),
		)
		respondErrorCode(c, http.StatusInternalServerError, "Failed to load notes")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"notes":  notes,
	})
}

type addNoteRequest struct {
	Note string `json:"note"`
}

func (h *NoteHandler) AddNote(c *gin.Context) {
	sess := session.FromContext(c)
	if sess.ProjectID == "" {
		respondError(c, "No project selected")
		return
	}

	var req addNoteRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		respondErrorCode(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	if sess.UserID != "" {
		if err := h.auth.Authorize(sess.UserID, rbac.PermissionAddNote); err != nil {
			respondErrorCode(c, http.StatusForbidden, err.Error())
			return
		}
	}

	n, err := h.notes.Add(c.Request.Context(), sess.ProjectID, sess.UserID, req.Note)
	switch {
	case errors.Is(err, note.ErrEmptyNote):
		respondError(c, "Note text is required")
		return
	case errors.Is(err, note.ErrDuplicateNote):
		respondError(c, "This note was already added")
		return
	case err != nil:
		respondErrorCode(c, http.StatusInternalServerError, "Failed to save note")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "Note added successfully",
		"note":    n,
	})
}

func (h *NoteHandler) DeleteNote(c *gin.Context) {
	sess := session.FromContext(c)
	if sess.ProjectID == "" {
		respondError(c, "No project selected")
		return
	}

	noteID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		respondErrorCode(c, http.StatusBadRequest, "Invalid note id")
		return
	}

	if err := h.auth.Authorize(sess.UserID, rbac.PermissionDeleteNote); err != nil {
		respondErrorCode(c, http.StatusForbidden, err.Error())
		return
	}

	err = h.notes.Delete(c.Request.Context(), sess.ProjectID, sess.UserID, noteID)
	if errors.Is(err, repository.ErrNoteNotFound) {
		respondErrorCode(c, http.StatusNotFound, "Note not found")
		return
	}
	if err != nil {
		h.logger.Error("DeleteNote: failed to delete note",
			zap.String("project_id", sess.ProjectID),
			zap.Int("note_id", noteID),
			zap.Error(err),
		)
		respondErrorCode(c, http.StatusInternalServerError, "Failed to delete note")
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "message": "Note deleted"})
}
