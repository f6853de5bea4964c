package repository

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Notification struct {
	ID        string
	UserID    string
	Sender    string
	Type      string
	Message   string
	Seen      bool
	Data      map[string]interface{}
	CreatedAt time.Time
}

type NotificationRepository interface {
	Create(ctx context.Context, notification *Notification) error
	FindByUserID(ctx context.Context, userID string, unseenOnly bool) ([]*Notification, error)
	CountByUserID(ctx context.Context, userID string) (total int, unseen int, err error)
	MarkAsSeen(ctx context.Context, id, userID string) error
	MarkAllAsSeen(ctx context.Context, userID string) error
	DeleteOlderThan(ctx context.Context, olderThan time.Time, seenOnly bool) (int, error)
}

type pgNotificationRepository struct {
	pool *pgxpool.Pool
}

func NewNotificationRepository(pool *pgxpool.Pool) NotificationRepository {
	return &pgNotificationRepository{pool: pool}
}

func (r *pgNotificationRepository) Create(ctx context.Context, notification *Notification) error {
	dataJSON, _ := json.Marshal(notification.Data)
	if notification.Data == nil {
		dataJSON = []byte("{}")
	}
	if notification.ID == "" {
		notification.ID = uuid.New().String()
	}
	query := `
		INSERT INTO notifications (id, user_id, sender, type, message, seen, data)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`
	return r.pool.QueryRow(ctx, query,
		notification.ID, notification.UserID, notification.Sender, notification.Type,
		notification.Message, notification.Seen, dataJSON,
	).Scan(&notification.CreatedAt)
}

func (r *pgNotificationRepository) FindByUserID(ctx context.Context, userID string, unseenOnly bool) ([]*Notification, error) {
	query := `
		SELECT id, user_id, sender, type, message, seen, data, created_at
		FROM notifications WHERE user_id = $1
	`
	if unseenOnly {
		query += ` AND seen = FALSE`
	}
	query += ` ORDER BY created_at DESC LIMIT 100`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notifications []*Notification
	for rows.Next() {
		n := &Notification{}
		var dataJSON []byte
		if err := rows.Scan(
			&n.ID, &n.UserID, &n.Sender, &n.Type, &n.Message, &n.Seen, &dataJSON, &n.CreatedAt,
		); err != nil {
			return nil, err
		}
		json.Unmarshal(dataJSON, &n.Data)
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

func (r *pgNotificationRepository) CountByUserID(ctx context.Context, userID string) (total int, unseen int, err error) {
	query := `
		SELECT
			COUNT(*) AS total,
			COUNT(*) FILTER (WHERE seen = FALSE) AS unseen
		FROM notifications WHERE user_id = $1
	`
	err = r.pool.QueryRow(ctx, query, userID).Scan(&total, &unseen)
	return
}

func (r *pgNotificationRepository) MarkAsSeen(ctx context.Context, id, userID string) error {
	query := `UPDATE notifications SET seen = TRUE WHERE id = $1 AND user_id = $2`
	tag, err := r.pool.Exec(ctx, query, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgNotificationRepository) MarkAllAsSeen(ctx context.Context, userID string) error {
	query := `UPDATE notifications SET seen = TRUE WHERE user_id = $1`
	_, err := r.pool.Exec(ctx, query, userID)
	return err
}

func (r *pgNotificationRepository) DeleteOlderThan(ctx context.Context, olderThan time.Time, seenOnly bool) (int, error) {
	query := `DELETE FROM notifications WHERE created_at < $1`
	if seenOnly {
		query += ` AND seen = TRUE`
	}
	result, err := r.pool.Exec(ctx, query, olderThan)
	if err != nil {
		return 0, err
	}
	return int(result.RowsAffected()), nil
}

// Notification in-memory
type inMemoryNotificationRepository struct {
	mu            sync.RWMutex
	notifications map[string]*Notification
}

func NewInMemoryNotificationRepository() NotificationRepository {
	return &inMemoryNotificationRepository{notifications: make(map[string]*Notification)}
}

func (r *inMemoryNotificationRepository) Create(ctx context.Context, notification *Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if notification.ID == "" {
		notification.ID = uuid.New().String()
	}
	notification.CreatedAt = time.Now()
	stored := *notification
	r.notifications[notification.ID] = &stored
	return nil
}

func (r *inMemoryNotificationRepository) FindByUserID(ctx context.Context, userID string, unseenOnly bool) ([]*Notification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*Notification
	for _, n := range r.notifications {
		if n.UserID != userID || (unseenOnly && n.Seen) {
			continue
		}
		c := *n
		result = append(result, &c)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (r *inMemoryNotificationRepository) CountByUserID(ctx context.Context, userID string) (total int, unseen int, err error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, n := range r.notifications {
		if n.UserID == userID {
			total++
			if !n.Seen {
				unseen++
			}
		}
	}
	return total, unseen, nil
}

func (r *inMemoryNotificationRepository) MarkAsSeen(ctx context.Context, id, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	n, ok := r.notifications[id]
	if !ok || n.UserID != userID {
		return ErrNotFound
	}
	n.Seen = true
	return nil
}

func (r *inMemoryNotificationRepository) MarkAllAsSeen(ctx context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, n := range r.notifications {
		if n.UserID == userID {
			n.Seen = true
		}
	}
	return nil
}

func (r *inMemoryNotificationRepository) DeleteOlderThan(ctx context.Context, olderThan time.Time, seenOnly bool) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	deleted := 0
	for id, n := range r.notifications {
		if n.CreatedAt.Before(olderThan) {
			if seenOnly && !n.Seen {
				continue
			}
			delete(r.notifications, id)
			deleted++
		}
	}
	return deleted, nil
}
