package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/Marga-Ghale/backpackers-backend/internal/identity"
	"github.com/Marga-Ghale/backpackers-backend/internal/logger"
	"github.com/Marga-Ghale/backpackers-backend/internal/repository"
	"github.com/Marga-Ghale/backpackers-backend/internal/socket"
	"github.com/Marga-Ghale/backpackers-backend/internal/types"
)

const (
	maxNoteLength    = 500
	maxCommentLength = 1000
)

// JoinDecisionNotifier tells a requester the outcome of their request. It
// has no error result: delivery problems stay inside the notifier.
type JoinDecisionNotifier interface {
	NotifyJoinDecision(ctx context.Context, requesterID string, group *repository.Group, approved bool)
}

type noopNotifier struct{}

func (noopNotifier) NotifyJoinDecision(context.Context, string, *repository.Group, bool) {}

type CreateGroupInput struct {
	Name        string
	Description string
	Destination string
	StartDate   time.Time
	EndDate     time.Time
	MaxMembers  int
}

type GroupService interface {
	Create(ctx context.Context, callerID string, input CreateGroupInput) (*repository.Group, error)
	Get(ctx context.Context, id string) (*repository.Group, error)
	List(ctx context.Context, destination string) ([]*repository.Group, error)

	SubmitRequest(ctx context.Context, groupID, callerID, note string) (*repository.JoinRequest, error)
	ApproveRequest(ctx context.Context, groupID, requestID, callerID string) (*repository.Member, error)
	RejectRequest(ctx context.Context, groupID, requestID, callerID string) error
	ListRequests(ctx context.Context, groupID, callerID string) ([]repository.JoinRequest, error)
	MyRequests(ctx context.Context, callerID string) ([]*repository.JoinRequest, error)

	// IsParticipant reports whether the caller may follow the group's live
	// events: a member, or anyone who can manage it. A missing group is false.
	IsParticipant(ctx context.Context, groupID, callerID string) (bool, error)

	PromoteMember(ctx context.Context, groupID, memberID, callerID string) (*repository.Member, error)
	AddComment(ctx context.Context, groupID, callerID, text string) (*repository.Comment, error)
	LikeComment(ctx context.Context, groupID, commentID string) (int, error)
}

type groupService struct {
	groupRepo   repository.GroupRepository
	resolver    *identity.Resolver
	notifier    JoinDecisionNotifier
	broadcaster *socket.Broadcaster
}

func NewGroupService(
	groupRepo repository.GroupRepository,
	resolver *identity.Resolver,
	notifier JoinDecisionNotifier,
	broadcaster *socket.Broadcaster,
) GroupService {
	if notifier == nil {
		notifier = noopNotifier{}
	}
	return &groupService{
		groupRepo:   groupRepo,
		resolver:    resolver,
		notifier:    notifier,
		broadcaster: broadcaster,
	}
}

// ============================================
// Groups
// ============================================

func (s *groupService) Create(ctx context.Context, callerID string, input CreateGroupInput) (*repository.Group, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Destination = strings.TrimSpace(input.Destination)
	switch {
	case input.Name == "":
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	case input.Destination == "":
		return nil, fmt.Errorf("%w: destination is required", ErrInvalidInput)
	case input.MaxMembers < 1:
		return nil, fmt.Errorf("%w: maxMembers must be at least 1", ErrInvalidInput)
	case input.StartDate.IsZero() || input.EndDate.IsZero():
		return nil, fmt.Errorf("%w: startDate and endDate are required", ErrInvalidInput)
	case input.EndDate.Before(input.StartDate):
		return nil, fmt.Errorf("%w: endDate is before startDate", ErrInvalidInput)
	}

	group := &repository.Group{
		ID:             uuid.New().String(),
		Name:           input.Name,
		Description:    strings.TrimSpace(input.Description),
		Destination:    input.Destination,
		StartDate:      input.StartDate,
		EndDate:        input.EndDate,
		MaxMembers:     input.MaxMembers,
		CurrentMembers: 1,
		CreatorID:      callerID,
		Members: []repository.Member{{
			ID:          uuid.New().String(),
			UserID:      callerID,
			Name:        s.resolver.DisplayName(ctx, callerID),
			AvatarColor: types.HostAvatarColor,
			Role:        types.RoleHost,
			Expertise:   types.HostExpertise,
		}},
	}

	if err := s.groupRepo.Create(ctx, group); err != nil {
		return nil, err
	}
	return group, nil
}

func (s *groupService) Get(ctx context.Context, id string) (*repository.Group, error) {
	group, err := s.groupRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if group == nil {
		return nil, ErrGroupNotFound
	}
	return group, nil
}

func (s *groupService) List(ctx context.Context, destination string) ([]*repository.Group, error) {
	groups, err := s.groupRepo.List(ctx, repository.GroupFilter{Destination: destination})
	if err != nil {
		return nil, err
	}
	if groups == nil {
		groups = []*repository.Group{}
	}
	return groups, nil
}

// ============================================
// Join requests
// ============================================

func (s *groupService) SubmitRequest(ctx context.Context, groupID, callerID, note string) (*repository.JoinRequest, error) {
	note = strings.TrimSpace(note)
	if utf8.RuneCountInString(note) > maxNoteLength {
		return nil, fmt.Errorf("%w: note is longer than %d characters", ErrInvalidInput, maxNoteLength)
	}

	group, err := s.Get(ctx, groupID)
	if err != nil {
		return nil, err
	}

	caller := s.resolver.Resolve(ctx, callerID)
	if isMember(group, caller) {
		return nil, ErrAlreadyMember
	}
	if hasPendingRequest(group, caller) {
		return nil, ErrDuplicateRequest
	}
	if group.IsFull() {
		return nil, ErrGroupFull
	}

	req := &repository.JoinRequest{
		ID:     uuid.New().String(),
		UserID: callerID,
		Note:   note,
	}
	if err := s.groupRepo.AppendRequest(ctx, groupID, req, caller.Forms()...); err != nil {
		return nil, mapStoreError(err, ErrGroupNotFound)
	}

	// Request details are for managers only, same as ListRequests.
	s.broadcaster.BroadcastJoinRequestCreated(groupID, map[string]interface{}{
		"id":        req.ID,
		"userId":    req.UserID,
		"status":    req.Status,
		"note":      req.Note,
		"createdAt": req.CreatedAt,
	}, s.managerTargets(ctx, group))

	return req, nil
}

// ApproveRequest checks, in order: the group exists, the caller manages it,
// the request exists, there is room, the request is pending. The admission
// itself is one conditional store operation, so a concurrent approval that
// fills the last seat makes this one fail with ErrGroupFull.
func (s *groupService) ApproveRequest(ctx context.Context, groupID, requestID, callerID string) (*repository.Member, error) {
	group, err := s.Get(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !canManage(group, s.resolver.Resolve(ctx, callerID)) {
		return nil, ErrNotGroupManager
	}
	req := group.FindRequest(requestID)
	if req == nil {
		return nil, ErrRequestNotFound
	}
	if group.IsFull() {
		return nil, ErrGroupFull
	}
	if req.Status != types.RequestPending {
		return nil, ErrRequestNotPending
	}

	member := &repository.Member{
		ID:          uuid.New().String(),
		UserID:      req.UserID,
		Name:        s.resolver.DisplayName(ctx, req.UserID),
		AvatarColor: types.DefaultAvatarColor,
		Role:        types.RoleMember,
		Expertise:   types.DefaultExpertise,
	}
	if err := s.groupRepo.AdmitMember(ctx, groupID, requestID, member); err != nil {
		return nil, mapStoreError(err, ErrRequestNotFound)
	}

	group.CurrentMembers++
	logger.Component("groups").WithField("group", groupID).WithField("request", requestID).
		Info("join request approved")

	s.notifier.NotifyJoinDecision(ctx, req.UserID, group, true)
	s.broadcaster.BroadcastMemberAdded(groupID, memberPayload(member), group.CurrentMembers)
	s.broadcaster.BroadcastJoinRequestResolved(groupID, requestID, types.RequestApproved, callerID)

	return member, nil
}

func (s *groupService) RejectRequest(ctx context.Context, groupID, requestID, callerID string) error {
	group, err := s.Get(ctx, groupID)
	if err != nil {
		return err
	}
	if !canManage(group, s.resolver.Resolve(ctx, callerID)) {
		return ErrNotGroupManager
	}
	req := group.FindRequest(requestID)
	if req == nil {
		return ErrRequestNotFound
	}
	if req.Status != types.RequestPending {
		return ErrRequestNotPending
	}

	if err := s.groupRepo.ResolveRequest(ctx, groupID, requestID); err != nil {
		return mapStoreError(err, ErrRequestNotFound)
	}

	logger.Component("groups").WithField("group", groupID).WithField("request", requestID).
		Info("join request rejected")

	s.notifier.NotifyJoinDecision(ctx, req.UserID, group, false)
	s.broadcaster.BroadcastJoinRequestResolved(groupID, requestID, types.RequestRejected, callerID)
	return nil
}

func (s *groupService) ListRequests(ctx context.Context, groupID, callerID string) ([]repository.JoinRequest, error) {
	group, err := s.Get(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !canManage(group, s.resolver.Resolve(ctx, callerID)) {
		return nil, ErrNotGroupManager
	}
	if group.Requests == nil {
		return []repository.JoinRequest{}, nil
	}
	return group.Requests, nil
}

func (s *groupService) MyRequests(ctx context.Context, callerID string) ([]*repository.JoinRequest, error) {
	caller := s.resolver.Resolve(ctx, callerID)
	requests, err := s.groupRepo.FindRequestsByUser(ctx, caller.Forms())
	if err != nil {
		return nil, err
	}
	if requests == nil {
		requests = []*repository.JoinRequest{}
	}
	return requests, nil
}

func (s *groupService) IsParticipant(ctx context.Context, groupID, callerID string) (bool, error) {
	group, err := s.Get(ctx, groupID)
	if errors.Is(err, ErrGroupNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	caller := s.resolver.Resolve(ctx, callerID)
	return isMember(group, caller) || canManage(group, caller), nil
}

// ============================================
// Members and comments
// ============================================

func (s *groupService) PromoteMember(ctx context.Context, groupID, memberID, callerID string) (*repository.Member, error) {
	group, err := s.Get(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !isHost(group, s.resolver.Resolve(ctx, callerID)) {
		return nil, ErrNotGroupHost
	}
	member := group.FindMember(memberID)
	if member == nil {
		return nil, ErrMemberNotFound
	}
	switch member.Role {
	case types.RoleHost:
		return nil, ErrCannotPromoteHost
	case types.RoleCoHost:
		return member, nil
	}

	if err := s.groupRepo.UpdateMemberRole(ctx, groupID, memberID, types.RoleCoHost); err != nil {
		return nil, mapStoreError(err, ErrMemberNotFound)
	}
	member.Role = types.RoleCoHost

	s.broadcaster.BroadcastMemberPromoted(groupID, memberID, member.Role, callerID)
	return member, nil
}

func (s *groupService) AddComment(ctx context.Context, groupID, callerID, text string) (*repository.Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: comment text is required", ErrInvalidInput)
	}
	if utf8.RuneCountInString(text) > maxCommentLength {
		return nil, fmt.Errorf("%w: comment is longer than %d characters", ErrInvalidInput, maxCommentLength)
	}

	comment := &repository.Comment{
		ID:         uuid.New().String(),
		AuthorID:   callerID,
		AuthorName: s.resolver.DisplayName(ctx, callerID),
		Text:       text,
	}
	if err := s.groupRepo.AddComment(ctx, groupID, comment); err != nil {
		return nil, mapStoreError(err, ErrGroupNotFound)
	}

	s.broadcaster.BroadcastCommentAdded(groupID, map[string]interface{}{
		"id":         comment.ID,
		"authorId":   comment.AuthorID,
		"authorName": comment.AuthorName,
		"text":       comment.Text,
		"likes":      comment.Likes,
		"createdAt":  comment.CreatedAt,
	}, callerID)
	return comment, nil
}

func (s *groupService) LikeComment(ctx context.Context, groupID, commentID string) (int, error) {
	likes, err := s.groupRepo.LikeComment(ctx, groupID, commentID)
	if err != nil {
		return 0, mapStoreError(err, ErrCommentNotFound)
	}
	s.broadcaster.BroadcastCommentLiked(groupID, commentID, likes)
	return likes, nil
}

// ============================================
// Helpers
// ============================================

// canManage: the creator, or a host or co-host member, in either identifier
// form.
func canManage(group *repository.Group, caller identity.Identity) bool {
	if caller.Matches(group.CreatorID) {
		return true
	}
	for _, m := range group.Members {
		if types.CanManageRequests(m.Role) && caller.Matches(m.UserID) {
			return true
		}
	}
	return false
}

// managerTargets lists every identifier the group's managers may be
// connected under.
func (s *groupService) managerTargets(ctx context.Context, group *repository.Group) []string {
	raw := []string{group.CreatorID}
	for _, m := range group.Members {
		if types.CanManageRequests(m.Role) {
			raw = append(raw, m.UserID)
		}
	}

	var targets []string
	for _, id := range raw {
		targets = append(targets, s.resolver.Resolve(ctx, id).Forms()...)
	}
	return targets
}

func isHost(group *repository.Group, caller identity.Identity) bool {
	if caller.Matches(group.CreatorID) {
		return true
	}
	for _, m := range group.Members {
		if m.Role == types.RoleHost && caller.Matches(m.UserID) {
			return true
		}
	}
	return false
}

func isMember(group *repository.Group, caller identity.Identity) bool {
	for _, m := range group.Members {
		if caller.Matches(m.UserID) {
			return true
		}
	}
	return false
}

func hasPendingRequest(group *repository.Group, caller identity.Identity) bool {
	for _, r := range group.Requests {
		if r.Status == types.RequestPending && caller.Matches(r.UserID) {
			return true
		}
	}
	return false
}

// mapStoreError translates a conditional-write failure into the workflow
// error. notFound picks what a missing row means for the caller.
func mapStoreError(err error, notFound error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return notFound
	case errors.Is(err, repository.ErrGroupFull):
		return ErrGroupFull
	case errors.Is(err, repository.ErrRequestNotPending):
		return ErrRequestNotPending
	case errors.Is(err, repository.ErrDuplicatePending):
		return ErrDuplicateRequest
	default:
		return err
	}
}

func memberPayload(m *repository.Member) map[string]interface{} {
	return map[string]interface{}{
		"id":          m.ID,
		"userId":      m.UserID,
		"name":        m.Name,
		"avatarColor": m.AvatarColor,
		"role":        m.Role,
		"expertise":   m.Expertise,
		"joinedAt":    m.JoinedAt,
	}
}
