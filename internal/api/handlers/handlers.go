package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Marga-Ghale/backpackers-backend/internal/logger"
	"github.com/Marga-Ghale/backpackers-backend/internal/models"
	"github.com/Marga-Ghale/backpackers-backend/internal/repository"
	"github.com/Marga-Ghale/backpackers-backend/internal/service"
)

const dateLayout = "2006-01-02"

// Handlers contains all HTTP handlers
type Handlers struct {
	Group        *GroupHandler
	Search       *SearchHandler
	Notification *NotificationHandler
}

// NewHandlers creates all handlers
func NewHandlers(services *service.Services) *Handlers {
	return &Handlers{
		Group:        &GroupHandler{groupService: services.Group},
		Search:       &SearchHandler{searchService: services.Search},
		Notification: &NotificationHandler{notificationService: services.Notification},
	}
}

// ============================================
// Error mapping
// ============================================

// errorCodes gives each workflow error a stable code clients can branch on.
var errorCodes = []struct {
	err    error
	status int
	code   string
}{
	{service.ErrGroupNotFound, http.StatusNotFound, "group_not_found"},
	{service.ErrRequestNotFound, http.StatusNotFound, "request_not_found"},
	{service.ErrMemberNotFound, http.StatusNotFound, "member_not_found"},
	{service.ErrCommentNotFound, http.StatusNotFound, "comment_not_found"},
	{service.ErrNotGroupManager, http.StatusForbidden, "not_group_manager"},
	{service.ErrNotGroupHost, http.StatusForbidden, "not_group_host"},
	{service.ErrAlreadyMember, http.StatusConflict, "already_member"},
	{service.ErrDuplicateRequest, http.StatusConflict, "duplicate_request"},
	{service.ErrGroupFull, http.StatusConflict, "group_full"},
	{service.ErrRequestNotPending, http.StatusConflict, "request_not_pending"},
	{service.ErrCannotPromoteHost, http.StatusConflict, "cannot_promote_host"},

	// kinds, for anything without a specific entry
	{service.ErrInvalidInput, http.StatusBadRequest, "invalid_input"},
	{service.ErrNotFound, http.StatusNotFound, "not_found"},
	{service.ErrUnauthorized, http.StatusForbidden, "unauthorized"},
	{service.ErrConflict, http.StatusConflict, "conflict"},
}

// handleServiceError maps service errors to HTTP responses
func handleServiceError(c *gin.Context, err error) {
	for _, e := range errorCodes {
		if errors.Is(err, e.err) {
			c.JSON(e.status, models.ErrorResponse{Error: e.code, Message: err.Error()})
			return
		}
	}

	logger.Component("api").WithError(err).
		WithField("method", c.Request.Method).
		WithField("path", c.FullPath()).
		Error("unhandled service error")
	c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "internal_error", Message: "Internal server error"})
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid_input", Message: message})
}

// ============================================
// Response Mappers
// ============================================

func toGroupResponse(g *repository.Group, includeRequests bool) models.GroupResponse {
	resp := models.GroupResponse{
		ID:             g.ID,
		Name:           g.Name,
		Description:    g.Description,
		Destination:    g.Destination,
		StartDate:      g.StartDate.Format(dateLayout),
		EndDate:        g.EndDate.Format(dateLayout),
		MaxMembers:     g.MaxMembers,
		CurrentMembers: g.CurrentMembers,
		CreatorID:      g.CreatorID,
		Members:        make([]models.MemberResponse, len(g.Members)),
		Comments:       make([]models.CommentResponse, len(g.Comments)),
		CreatedAt:      g.CreatedAt,
		UpdatedAt:      g.UpdatedAt,
	}
	for i := range g.Members {
		resp.Members[i] = toMemberResponse(&g.Members[i])
	}
	for i := range g.Comments {
		resp.Comments[i] = toCommentResponse(&g.Comments[i])
	}
	if includeRequests {
		resp.Requests = make([]models.RequestResponse, len(g.Requests))
		for i := range g.Requests {
			resp.Requests[i] = toRequestResponse(&g.Requests[i])
		}
	}
	return resp
}

func toMemberResponse(m *repository.Member) models.MemberResponse {
	return models.MemberResponse{
		ID:          m.ID,
		UserID:      m.UserID,
		Name:        m.Name,
		AvatarColor: m.AvatarColor,
		Role:        m.Role,
		Expertise:   m.Expertise,
		JoinedAt:    m.JoinedAt,
	}
}

func toRequestResponse(r *repository.JoinRequest) models.RequestResponse {
	return models.RequestResponse{
		ID:          r.ID,
		GroupID:     r.GroupID,
		UserID:      r.UserID,
		Status:      r.Status,
		Note:        r.Note,
		CreatedAt:   r.CreatedAt,
		RespondedAt: r.RespondedAt,
	}
}

func toCommentResponse(c *repository.Comment) models.CommentResponse {
	return models.CommentResponse{
		ID:         c.ID,
		AuthorID:   c.AuthorID,
		AuthorName: c.AuthorName,
		Text:       c.Text,
		Likes:      c.Likes,
		CreatedAt:  c.CreatedAt,
	}
}

func toNotificationResponse(n *repository.Notification) models.NotificationResponse {
	return models.NotificationResponse{
		ID:        n.ID,
		Sender:    n.Sender,
		Type:      n.Type,
		Message:   n.Message,
		Seen:      n.Seen,
		Data:      n.Data,
		CreatedAt: n.CreatedAt,
	}
}
