package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Marga-Ghale/backpackers-backend/internal/types"
)

// inMemoryGroupRepository guards every group with a single mutex. Stored
// groups are never handed out; readers get clones.
type inMemoryGroupRepository struct {
	mu     sync.RWMutex
	groups map[string]*Group
}

func NewInMemoryGroupRepository() GroupRepository {
	return &inMemoryGroupRepository{groups: make(map[string]*Group)}
}

func (r *inMemoryGroupRepository) Create(ctx context.Context, group *Group) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if group.ID == "" {
		group.ID = uuid.New().String()
	}
	now := time.Now()
	group.CreatedAt = now
	group.UpdatedAt = now
	for i := range group.Members {
		if group.Members[i].JoinedAt.IsZero() {
			group.Members[i].JoinedAt = now
		}
	}
	r.groups[group.ID] = group.Clone()
	return nil
}

func (r *inMemoryGroupRepository) FindByID(ctx context.Context, id string) (*Group, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if g, ok := r.groups[id]; ok {
		return g.Clone(), nil
	}
	return nil, nil
}

func (r *inMemoryGroupRepository) List(ctx context.Context, filter GroupFilter) ([]*Group, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	dest := strings.ToLower(strings.TrimSpace(filter.Destination))
	groups := make([]*Group, 0, len(r.groups))
	for _, g := range r.groups {
		if dest != "" && !strings.Contains(strings.ToLower(g.Destination), dest) {
			continue
		}
		c := g.Clone()
		c.Requests = nil
		c.Comments = nil
		groups = append(groups, c)
	}
	sort.Slice(groups, func(i, j int) bool {
		return groups[i].CreatedAt.After(groups[j].CreatedAt)
	})
	if filter.Limit > 0 && len(groups) > filter.Limit {
		groups = groups[:filter.Limit]
	}
	return groups, nil
}

func (r *inMemoryGroupRepository) FindRequestsByUser(ctx context.Context, userIDs []string) ([]*JoinRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	wanted := make(map[string]bool, len(userIDs))
	for _, id := range userIDs {
		wanted[id] = true
	}

	var requests []*JoinRequest
	for _, g := range r.groups {
		for _, req := range g.Requests {
			if wanted[req.UserID] {
				c := req
				requests = append(requests, &c)
			}
		}
	}
	sort.Slice(requests, func(i, j int) bool {
		return requests[i].CreatedAt.After(requests[j].CreatedAt)
	})
	return requests, nil
}

func (r *inMemoryGroupRepository) AppendRequest(ctx context.Context, groupID string, req *JoinRequest, requester ...string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	g, ok := r.groups[groupID]
	if !ok {
		return ErrNotFound
	}
	if g.IsFull() {
		return ErrGroupFull
	}
	forms := requesterForms(req.UserID, requester)
	for _, existing := range g.Requests {
		if existing.Status != types.RequestPending {
			continue
		}
		for _, form := range forms {
			if strings.EqualFold(existing.UserID, form) {
				return ErrDuplicatePending
			}
		}
	}

	if req.ID == "" {
		req.ID = uuid.New().String()
	}
	req.GroupID = groupID
	req.Status = types.RequestPending
	req.CreatedAt = time.Now()
	g.Requests = append(g.Requests, *req)
	g.UpdatedAt = req.CreatedAt
	return nil
}

func (r *inMemoryGroupRepository) AdmitMember(ctx context.Context, groupID, requestID string, member *Member) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	g, ok := r.groups[groupID]
	if !ok {
		return ErrNotFound
	}
	if g.IsFull() {
		return ErrGroupFull
	}
	req := g.FindRequest(requestID)
	if req == nil {
		return ErrNotFound
	}
	if req.Status != types.RequestPending {
		return ErrRequestNotPending
	}

	now := time.Now()
	if member.ID == "" {
		member.ID = uuid.New().String()
	}
	member.JoinedAt = now

	req.Status = types.RequestApproved
	req.RespondedAt = &now
	g.Members = append(g.Members, *member)
	g.CurrentMembers++
	g.UpdatedAt = now
	return nil
}

func (r *inMemoryGroupRepository) ResolveRequest(ctx context.Context, groupID, requestID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	g, ok := r.groups[groupID]
	if !ok {
		return ErrNotFound
	}
	req := g.FindRequest(requestID)
	if req == nil {
		return ErrNotFound
	}
	if req.Status != types.RequestPending {
		return ErrRequestNotPending
	}

	now := time.Now()
	req.Status = types.RequestRejected
	req.RespondedAt = &now
	g.UpdatedAt = now
	return nil
}

func (r *inMemoryGroupRepository) UpdateMemberRole(ctx context.Context, groupID, memberID, role string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	g, ok := r.groups[groupID]
	if !ok {
		return ErrNotFound
	}
	m := g.FindMember(memberID)
	if m == nil {
		return ErrNotFound
	}
	m.Role = role
	g.UpdatedAt = time.Now()
	return nil
}

func (r *inMemoryGroupRepository) AddComment(ctx context.Context, groupID string, comment *Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	g, ok := r.groups[groupID]
	if !ok {
		return ErrNotFound
	}
	if comment.ID == "" {
		comment.ID = uuid.New().String()
	}
	comment.Likes = 0
	comment.CreatedAt = time.Now()
	g.Comments = append(g.Comments, *comment)
	return nil
}

func (r *inMemoryGroupRepository) LikeComment(ctx context.Context, groupID, commentID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	g, ok := r.groups[groupID]
	if !ok {
		return 0, ErrNotFound
	}
	for i := range g.Comments {
		if g.Comments[i].ID == commentID {
			g.Comments[i].Likes++
			return g.Comments[i].Likes, nil
		}
	}
	return 0, ErrNotFound
}
