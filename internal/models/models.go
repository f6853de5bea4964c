package models

import (
	"time"

	"github.com/Marga-Ghale/backpackers-backend/internal/search"
)

// ============================================
// Error DTO
// ============================================

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// ============================================
// Group DTOs
// ============================================

type CreateGroupRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Destination string `json:"destination" binding:"required"`
	StartDate   string `json:"startDate" binding:"required"`
	EndDate     string `json:"endDate" binding:"required"`
	MaxMembers  int    `json:"maxMembers" binding:"required,min=1"`
}

type JoinGroupRequest struct {
	Note string `json:"note" binding:"max=500"`
}

type AddCommentRequest struct {
	Text string `json:"text" binding:"required,max=1000"`
}

type GroupResponse struct {
	ID             string            `json:"id"`
	Name           string            `json:"name"`
	Description    string            `json:"description"`
	Destination    string            `json:"destination"`
	StartDate      string            `json:"startDate"`
	EndDate        string            `json:"endDate"`
	MaxMembers     int               `json:"maxMembers"`
	CurrentMembers int               `json:"currentMembers"`
	CreatorID      string            `json:"creatorId"`
	Members        []MemberResponse  `json:"members"`
	Requests       []RequestResponse `json:"requests,omitempty"`
	Comments       []CommentResponse `json:"comments"`
	CreatedAt      time.Time         `json:"createdAt"`
	UpdatedAt      time.Time         `json:"updatedAt"`
}

type MemberResponse struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	Name        string    `json:"name"`
	AvatarColor string    `json:"avatarColor"`
	Role        string    `json:"role"`
	Expertise   string    `json:"expertise"`
	JoinedAt    time.Time `json:"joinedAt"`
}

type RequestResponse struct {
	ID          string     `json:"id"`
	GroupID     string     `json:"groupId"`
	UserID      string     `json:"userId"`
	Status      string     `json:"status"`
	Note        string     `json:"note,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	RespondedAt *time.Time `json:"respondedAt,omitempty"`
}

type CommentResponse struct {
	ID         string    `json:"id"`
	AuthorID   string    `json:"authorId"`
	AuthorName string    `json:"authorName"`
	Text       string    `json:"text"`
	Likes      int       `json:"likes"`
	CreatedAt  time.Time `json:"createdAt"`
}

type ApproveResponse struct {
	Success bool           `json:"success"`
	Member  MemberResponse `json:"member"`
}

type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

type LikeResponse struct {
	CommentID string `json:"commentId"`
	Likes     int    `json:"likes"`
}

// ============================================
// Search DTOs
// ============================================

type SearchResponse struct {
	Query       string                      `json:"query"`
	Location    string                      `json:"location"`
	Total       int                         `json:"total"`
	Rentals     []search.RentalItem         `json:"rentals"`
	Sightseeing []search.SightseeingPackage `json:"sightseeing"`
	Tours       []search.TourPackage        `json:"tours"`
}

// ============================================
// Notification DTOs
// ============================================

type NotificationResponse struct {
	ID        string                 `json:"id"`
	Sender    string                 `json:"sender"`
	Type      string                 `json:"type"`
	Message   string                 `json:"message"`
	Seen      bool                   `json:"seen"`
	Data      map[string]interface{} `json:"data,omitempty"`
	CreatedAt time.Time              `json:"createdAt"`
}

type NotificationCountResponse struct {
	Total  int `json:"total"`
	Unseen int `json:"unseen"`
}
