package service

import (
	"errors"
	"fmt"

	"github.com/Marga-Ghale/backpackers-backend/internal/config"
	"github.com/Marga-Ghale/backpackers-backend/internal/identity"
	"github.com/Marga-Ghale/backpackers-backend/internal/repository"
	"github.com/Marga-Ghale/backpackers-backend/internal/socket"
)

// Error kinds. Every specific error below wraps exactly one of them, so
// callers can branch on either.
var (
	ErrNotFound     = errors.New("resource not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrConflict     = errors.New("conflict")
	ErrInvalidInput = errors.New("invalid input")
	ErrInvalidToken = errors.New("invalid token")
)

var (
	ErrGroupNotFound     = fmt.Errorf("%w: group not found", ErrNotFound)
	ErrRequestNotFound   = fmt.Errorf("%w: join request not found", ErrNotFound)
	ErrMemberNotFound    = fmt.Errorf("%w: member not found", ErrNotFound)
	ErrCommentNotFound   = fmt.Errorf("%w: comment not found", ErrNotFound)
	ErrNotGroupManager   = fmt.Errorf("%w: only a host, co-host or the group creator can do this", ErrUnauthorized)
	ErrNotGroupHost      = fmt.Errorf("%w: only the host or the group creator can do this", ErrUnauthorized)
	ErrAlreadyMember     = fmt.Errorf("%w: already a member of this group", ErrConflict)
	ErrDuplicateRequest  = fmt.Errorf("%w: a pending request already exists", ErrConflict)
	ErrGroupFull         = fmt.Errorf("%w: group is full", ErrConflict)
	ErrRequestNotPending = fmt.Errorf("%w: request is no longer pending", ErrConflict)
	ErrCannotPromoteHost = fmt.Errorf("%w: the host cannot be promoted", ErrConflict)
)

// ============================================
// Services Container
// ============================================

type Services struct {
	Auth         AuthService
	Group        GroupService
	Search       SearchService
	Notification NotificationService
	Broadcaster  *socket.Broadcaster
}

// ServiceDeps contains all dependencies needed to create services
type ServiceDeps struct {
	Config      *config.Config
	Repos       *repository.Repositories
	Resolver    *identity.Resolver
	Notifier    JoinDecisionNotifier
	Catalog     CatalogSource
	Broadcaster *socket.Broadcaster
}

func NewServices(deps *ServiceDeps) *Services {
	resolver := deps.Resolver
	if resolver == nil {
		resolver = identity.NewResolver(deps.Repos.UserRepo)
	}

	return &Services{
		Auth:         NewAuthService(deps.Config),
		Group:        NewGroupService(deps.Repos.GroupRepo, resolver, deps.Notifier, deps.Broadcaster),
		Search:       NewSearchService(deps.Catalog),
		Notification: NewNotificationService(deps.Repos.NotificationRepo, resolver),
		Broadcaster:  deps.Broadcaster,
	}
}
