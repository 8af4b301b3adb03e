package handler

import (
	"errors"
	"net/http"
	"strings"

	"sitechat/internal/model"
	"sitechat/internal/repository"
	"sitechat/internal/service/auth"
	"sitechat/internal/service/chat"
	"sitechat/internal/service/project"
	"sitechat/internal/session"
	"sitechat/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ChatHandler struct {
	auth     *auth.Service
	projects *project.Service
	chat     *chat.Service
	logger   *zap.Logger
}

func NewChatHandler(authService *auth.Service, projectService *project.Service, chatService *chat.Service, logger *zap.Logger) *ChatHandler {
	return &ChatHandler{
		auth:     authService,
		projects: projectService,
		chat:     chatService,
		logger:   logger,
	}
}

func (h *ChatHandler) Index(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "Construction project assistant. Open /chat to start a session.",
	})
}

// Chat makes sure the session acts as a known user, defaulting to the first one.
func (h *ChatHandler) Chat(c *gin.Context) {
	sess := session.FromContext(c)

	current, err := h.auth.GetUser(sess.UserID)
	if err != nil {
		def, ok := h.auth.DefaultUser()
		if !ok {
			respondErrorCode(c, http.StatusInternalServerError, "No users configured")
			return
		}
		current = def
		sess.UserID = def.ID
	}

	logger.WithTrace(c.Request.Context(), h.logger).Info("Chat session ready",
		zap.String("user_id", current.ID),
		zap.Strings("project_access", current.ProjectAccess),
	)

	c.JSON(http.StatusOK, gin.H{
		"status":          "success",
		"users":           usersByID(h.auth.ListUsers()),
		"current_user":    current,
		"current_user_id": current.ID,
		"project_id":      sess.ProjectID,
	})
}

func (h *ChatHandler) ListUsers(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"users":  h.auth.ListUsers(),
	})
}

type switchUserRequest struct {
	UserID string `json:"user_id"`
}

// SwitchUser trusts the caller: there is no authentication, only a known-user check.
func (h *ChatHandler) SwitchUser(c *gin.Context) {
	var req switchUserRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		respondErrorCode(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	if _, err := h.auth.GetUser(req.UserID); err != nil {
		respondError(c, "Invalid user ID")
		return
	}

	sess := session.FromContext(c)
	sess.UserID = req.UserID
	// the selected project may not be visible to the new user
	if sess.ProjectID != "" && !h.auth.HasProjectAccess(req.UserID, sess.ProjectID) {
		sess.ProjectID = ""
	}

	logger.WithTrace(c.Request.Context(), h.logger).Info("User switched", zap.String("user_id", req.UserID))
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

// ListProjects returns the session user's projects keyed by id.
func (h *ChatHandler) ListProjects(c *gin.Context) {
	sess := session.FromContext(c)
	if sess.UserID == "" {
		c.JSON(http.StatusOK, map[string]model.Project{})
		return
	}

	projects := h.projects.Accessible(h.auth.UserProjects(sess.UserID))
	h.logger.Debug("Listing projects",
		zap.String("user_id", sess.UserID),
		zap.Int("count", len(projects)),
	)
	c.JSON(http.StatusOK, projects)
}

type selectProjectRequest struct {
	ProjectID string `json:"project_id"`
}

func (h *ChatHandler) SelectProject(c *gin.Context) {
	var req selectProjectRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		respondErrorCode(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	sess := session.FromContext(c)
	if err := h.auth.AuthorizeProject(sess.UserID, req.ProjectID); err != nil {
		respondError(c, err.Error())
		return
	}

	p, err := h.projects.Get(req.ProjectID)
	if err != nil {
		respondError(c, "Project not found")
		return
	}

	sess.ProjectID = p.ID
	c.JSON(http.StatusOK, gin.H{"status": "success", "project": p})
}

type sendMessageRequest struct {
	Message *string `json:"message"`
}

// SendMessage classifies the message against the session's project and maps
// action codes onto the client protocol.
func (h *ChatHandler) SendMessage(c *gin.Context) {
	var req sendMessageRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		respondErrorCode(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Message == nil || strings.TrimSpace(*req.Message) == "" {
		respondError(c, "Message is required")
		return
	}

	sess := session.FromContext(c)
	resp := h.chat.ProcessMessage(c.Request.Context(), *req.Message, sess.ProjectID)

	switch resp.Code {
	case chat.CodeShowProjectSelector:
		c.JSON(http.StatusOK, gin.H{
			"status":  "success",
			"message": "Please select a project from the list below.",
			"action":  "show_project_selector",
		})
	case chat.CodeAddNote:
		c.JSON(http.StatusOK, gin.H{
			"status":  "success",
			"message": chat.CodeAddNote,
			"note":    resp.Note,
		})
	default:
		c.JSON(http.StatusOK, gin.H{
			"status":  "success",
			"message": resp.Wire(),
		})
	}
}

// ProjectMetrics returns derived budget figures for a project the user can see.
func (h *ChatHandler) ProjectMetrics(c *gin.Context) {
	projectID := c.Param("id")
	sess := session.FromContext(c)

	if err := h.auth.AuthorizeProject(sess.UserID, projectID); err != nil {
		respondErrorCode(c, http.StatusForbidden, err.Error())
		return
	}

	m, err := h.projects.BudgetMetrics(projectID)
	if errors.Is(err, repository.ErrProjectNotFound) {
		respondErrorCode(c, http.StatusNotFound, "Project not found")
		return
	}
	if err != nil {
		respondErrorCode(c, http.StatusInternalServerError, err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":     "success",
		"project_id": projectID,
		"metrics":    m,
	})
}

func usersByID(users []model.User) map[string]model.User {
	out := make(map[string]model.User, len(users))
	for _, u := range users {
		out[u.ID] = u
	}
	return out
}
