package handlers

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Marga-Ghale/backpackers-backend/internal/api/middleware"
	"github.com/Marga-Ghale/backpackers-backend/internal/models"
	"github.com/Marga-Ghale/backpackers-backend/internal/service"
)

// ============================================
// Group Handler
// ============================================

type GroupHandler struct {
	groupService service.GroupService
}

func (h *GroupHandler) Create(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	var req models.CreateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	start, err := parseDate(req.StartDate)
	if err != nil {
		badRequest(c, "startDate must be YYYY-MM-DD")
		return
	}
	end, err := parseDate(req.EndDate)
	if err != nil {
		badRequest(c, "endDate must be YYYY-MM-DD")
		return
	}

	group, err := h.groupService.Create(c.Request.Context(), userID, service.CreateGroupInput{
		Name:        req.Name,
		Description: req.Description,
		Destination: req.Destination,
		StartDate:   start,
		EndDate:     end,
		MaxMembers:  req.MaxMembers,
	})
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toGroupResponse(group, false))
}

func (h *GroupHandler) List(c *gin.Context) {
	groups, err := h.groupService.List(c.Request.Context(), c.Query("destination"))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response := make([]models.GroupResponse, len(groups))
	for i, g := range groups {
		response[i] = toGroupResponse(g, false)
	}
	c.JSON(http.StatusOK, response)
}

func (h *GroupHandler) Get(c *gin.Context) {
	group, err := h.groupService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, toGroupResponse(group, false))
}

// ============================================
// Join requests
// ============================================

func (h *GroupHandler) SubmitRequest(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	var req models.JoinGroupRequest
	// The body is optional; an empty one means no note.
	if c.Request.Body != nil && c.Request.Body != http.NoBody {
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			badRequest(c, err.Error())
			return
		}
	}

	joinReq, err := h.groupService.SubmitRequest(c.Request.Context(), c.Param("id"), userID, req.Note)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toRequestResponse(joinReq))
}

func (h *GroupHandler) ListRequests(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	requests, err := h.groupService.ListRequests(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response := make([]models.RequestResponse, len(requests))
	for i := range requests {
		response[i] = toRequestResponse(&requests[i])
	}
	c.JSON(http.StatusOK, response)
}

func (h *GroupHandler) Approve(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	member, err := h.groupService.ApproveRequest(c.Request.Context(), c.Param("id"), c.Param("requestId"), userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.ApproveResponse{Success: true, Member: toMemberResponse(member)})
}

func (h *GroupHandler) Reject(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	if err := h.groupService.RejectRequest(c.Request.Context(), c.Param("id"), c.Param("requestId"), userID); err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.SuccessResponse{Success: true, Message: "Request rejected"})
}

func (h *GroupHandler) MyRequests(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	requests, err := h.groupService.MyRequests(c.Request.Context(), userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response := make([]models.RequestResponse, len(requests))
	for i, r := range requests {
		response[i] = toRequestResponse(r)
	}
	c.JSON(http.StatusOK, response)
}

// ============================================
// Members and comments
// ============================================

func (h *GroupHandler) PromoteMember(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	member, err := h.groupService.PromoteMember(c.Request.Context(), c.Param("id"), c.Param("memberId"), userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, toMemberResponse(member))
}

func (h *GroupHandler) AddComment(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	var req models.AddCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	comment, err := h.groupService.AddComment(c.Request.Context(), c.Param("id"), userID, req.Text)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toCommentResponse(comment))
}

func (h *GroupHandler) LikeComment(c *gin.Context) {
	commentID := c.Param("commentId")
	likes, err := h.groupService.LikeComment(c.Request.Context(), c.Param("id"), commentID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.LikeResponse{CommentID: commentID, Likes: likes})
}

func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(dateLayout, s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}
