package repository

import (
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repositories struct {
	UserRepo         UserRepository
	GroupRepo        GroupRepository
	NotificationRepo NotificationRepository
	CatalogRepo      CatalogRepository
}

func NewRepositories(pool *pgxpool.Pool) *Repositories {
	return &Repositories{
		UserRepo:         NewUserRepository(pool),
		GroupRepo:        NewGroupRepository(pool),
		NotificationRepo: NewNotificationRepository(pool),
		CatalogRepo:      NewCatalogRepository(pool),
	}
}

// NewInMemoryRepositories backs every store with process memory. Used with
// STORAGE=memory and by tests.
func NewInMemoryRepositories() *Repositories {
	return &Repositories{
		UserRepo:         NewInMemoryUserRepository(),
		GroupRepo:        NewInMemoryGroupRepository(),
		NotificationRepo: NewInMemoryNotificationRepository(),
		CatalogRepo:      NewInMemoryCatalogRepository(),
	}
}
