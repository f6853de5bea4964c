package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Marga-Ghale/backpackers-backend/internal/types"
)

// ============================================
// Group aggregate
// ============================================

type Group struct {
	ID             string
	Name           string
	Description    string
	Destination    string
	StartDate      time.Time
	EndDate        time.Time
	MaxMembers     int
	CurrentMembers int
	CreatorID      string
	Members        []Member
	Requests       []JoinRequest
	Comments       []Comment
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type Member struct {
	ID          string
	UserID      string
	Name        string
	AvatarColor string
	Role        string
	Expertise   string
	JoinedAt    time.Time
}

type JoinRequest struct {
	ID          string
	GroupID     string
	UserID      string
	Status      string
	Note        string
	CreatedAt   time.Time
	RespondedAt *time.Time
}

type Comment struct {
	ID         string
	AuthorID   string
	AuthorName string
	Text       string
	Likes      int
	CreatedAt  time.Time
}

// IsFull reports whether occupancy has reached capacity.
func (g *Group) IsFull() bool {
	return g.CurrentMembers >= g.MaxMembers
}

func (g *Group) FindRequest(id string) *JoinRequest {
	for i := range g.Requests {
		if g.Requests[i].ID == id {
			return &g.Requests[i]
		}
	}
	return nil
}

func (g *Group) FindMember(id string) *Member {
	for i := range g.Members {
		if g.Members[i].ID == id {
			return &g.Members[i]
		}
	}
	return nil
}

// Clone returns a deep copy so callers can never alias stored state.
func (g *Group) Clone() *Group {
	c := *g
	c.Members = append([]Member(nil), g.Members...)
	c.Requests = make([]JoinRequest, len(g.Requests))
	for i, r := range g.Requests {
		c.Requests[i] = r
		if r.RespondedAt != nil {
			t := *r.RespondedAt
			c.Requests[i].RespondedAt = &t
		}
	}
	c.Comments = append([]Comment(nil), g.Comments...)
	return &c
}

type GroupFilter struct {
	Destination string
	Limit       int
}

// GroupRepository persists groups. The mutating methods other than Create
// are conditional: each checks its guard and applies its change as one
// atomic unit, so concurrent callers can never push occupancy past
// capacity or move a request out of pending twice.
type GroupRepository interface {
	Create(ctx context.Context, group *Group) error
	FindByID(ctx context.Context, id string) (*Group, error)
	List(ctx context.Context, filter GroupFilter) ([]*Group, error)
	FindRequestsByUser(ctx context.Context, userIDs []string) ([]*JoinRequest, error)

	// AppendRequest stores a pending request. requester lists the other
	// identifiers the requester is known by; a pending request under any of
	// them, or under req.UserID, counts as a duplicate. Fails with
	// ErrNotFound, ErrGroupFull or ErrDuplicatePending.
	AppendRequest(ctx context.Context, groupID string, req *JoinRequest, requester ...string) error

	// AdmitMember increments occupancy, approves the request and appends the
	// member together. Fails with ErrNotFound, ErrGroupFull or
	// ErrRequestNotPending and then changes nothing.
	AdmitMember(ctx context.Context, groupID, requestID string, member *Member) error

	// ResolveRequest moves a pending request to rejected.
	ResolveRequest(ctx context.Context, groupID, requestID string) error

	UpdateMemberRole(ctx context.Context, groupID, memberID, role string) error
	AddComment(ctx context.Context, groupID string, comment *Comment) error
	LikeComment(ctx context.Context, groupID, commentID string) (int, error)
}

// ============================================
// PostgreSQL implementation
// ============================================

type pgGroupRepository struct {
	pool *pgxpool.Pool
}

func NewGroupRepository(pool *pgxpool.Pool) GroupRepository {
	return &pgGroupRepository{pool: pool}
}

const groupColumns = `id, name, description, destination, start_date, end_date,
	max_members, current_members, creator_id, created_at, updated_at`

func scanGroup(row pgx.Row) (*Group, error) {
	g := &Group{}
	err := row.Scan(
		&g.ID, &g.Name, &g.Description, &g.Destination, &g.StartDate, &g.EndDate,
		&g.MaxMembers, &g.CurrentMembers, &g.CreatorID, &g.CreatedAt, &g.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return g, nil
}

func (r *pgGroupRepository) Create(ctx context.Context, group *Group) error {
	return pgx.BeginTxFunc(ctx, r.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		query := `
			INSERT INTO backpacker_groups (id, name, description, destination, start_date, end_date,
				max_members, current_members, creator_id)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			RETURNING created_at, updated_at
		`
		err := tx.QueryRow(ctx, query,
			group.ID, group.Name, group.Description, group.Destination, group.StartDate, group.EndDate,
			group.MaxMembers, group.CurrentMembers, group.CreatorID,
		).Scan(&group.CreatedAt, &group.UpdatedAt)
		if err != nil {
			return err
		}

		for i := range group.Members {
			if err := insertMember(ctx, tx, group.ID, &group.Members[i]); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *pgGroupRepository) FindByID(ctx context.Context, id string) (*Group, error) {
	query := `SELECT ` + groupColumns + ` FROM backpacker_groups WHERE id = $1`
	group, err := scanGroup(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	members, err := r.membersOf(ctx, []string{id})
	if err != nil {
		return nil, err
	}
	group.Members = members[id]

	if group.Requests, err = r.requestsOf(ctx, id); err != nil {
		return nil, err
	}
	if group.Comments, err = r.commentsOf(ctx, id); err != nil {
		return nil, err
	}
	return group, nil
}

// List returns groups newest first with their members. Requests and
// comments are only loaded by FindByID.
func (r *pgGroupRepository) List(ctx context.Context, filter GroupFilter) ([]*Group, error) {
	query := `SELECT ` + groupColumns + ` FROM backpacker_groups
		WHERE ($1::text = '' OR LOWER(destination) LIKE '%' || LOWER($1::text) || '%')
		ORDER BY created_at DESC`
	args := []interface{}{strings.TrimSpace(filter.Destination)}
	if filter.Limit > 0 {
		query += ` LIMIT $2`
		args = append(args, filter.Limit)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var groups []*Group
	var ids []string
	for rows.Next() {
		g, err := scanGroup(rows)
		if err != nil {
			return nil, err
		}
		groups = append(groups, g)
		ids = append(ids, g.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return groups, nil
	}

	members, err := r.membersOf(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, g := range groups {
		g.Members = members[g.ID]
	}
	return groups, nil
}

func (r *pgGroupRepository) FindRequestsByUser(ctx context.Context, userIDs []string) ([]*JoinRequest, error) {
	query := `
		SELECT id, group_id, user_id, status, note, created_at, responded_at
		FROM group_join_requests
		WHERE user_id = ANY($1)
		ORDER BY created_at DESC
	`
	rows, err := r.pool.Query(ctx, query, userIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var requests []*JoinRequest
	for rows.Next() {
		req := &JoinRequest{}
		if err := rows.Scan(
			&req.ID, &req.GroupID, &req.UserID, &req.Status, &req.Note, &req.CreatedAt, &req.RespondedAt,
		); err != nil {
			return nil, err
		}
		requests = append(requests, req)
	}
	return requests, rows.Err()
}

func (r *pgGroupRepository) AppendRequest(ctx context.Context, groupID string, req *JoinRequest, requester ...string) error {
	return pgx.BeginTxFunc(ctx, r.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		var current, capacity int
		err := tx.QueryRow(ctx,
			`SELECT current_members, max_members FROM backpacker_groups WHERE id = $1 FOR UPDATE`,
			groupID,
		).Scan(&current, &capacity)
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		if current >= capacity {
			return ErrGroupFull
		}

		// The group row lock serializes appends, so this check and the insert
		// below cannot interleave with another submission.
		var pending bool
		err = tx.QueryRow(ctx, `
			SELECT EXISTS (
				SELECT 1 FROM group_join_requests
				WHERE group_id = $1 AND status = $2 AND LOWER(user_id) = ANY($3)
			)`,
			groupID, types.RequestPending, requesterForms(req.UserID, requester),
		).Scan(&pending)
		if err != nil {
			return err
		}
		if pending {
			return ErrDuplicatePending
		}

		query := `
			INSERT INTO group_join_requests (id, group_id, user_id, status, note)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING created_at
		`
		req.GroupID = groupID
		req.Status = types.RequestPending
		err = tx.QueryRow(ctx, query, req.ID, groupID, req.UserID, req.Status, req.Note).Scan(&req.CreatedAt)
		if isUniqueViolation(err) {
			return ErrDuplicatePending
		}
		return err
	})
}

func (r *pgGroupRepository) AdmitMember(ctx context.Context, groupID, requestID string, member *Member) error {
	return pgx.BeginTxFunc(ctx, r.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		// The row lock taken here serializes concurrent admissions; a waiting
		// transaction re-evaluates the capacity guard against the committed row.
		tag, err := tx.Exec(ctx, `
			UPDATE backpacker_groups
			SET current_members = current_members + 1, updated_at = NOW()
			WHERE id = $1 AND current_members < max_members
		`, groupID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			if ok, err := rowExists(ctx, tx, `SELECT EXISTS(SELECT 1 FROM backpacker_groups WHERE id = $1)`, groupID); err != nil {
				return err
			} else if !ok {
				return ErrNotFound
			}
			return ErrGroupFull
		}

		tag, err = tx.Exec(ctx, `
			UPDATE group_join_requests
			SET status = $3, responded_at = NOW()
			WHERE id = $1 AND group_id = $2 AND status = $4
		`, requestID, groupID, types.RequestApproved, types.RequestPending)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return requestGuardError(ctx, tx, groupID, requestID)
		}

		return insertMember(ctx, tx, groupID, member)
	})
}

func (r *pgGroupRepository) ResolveRequest(ctx context.Context, groupID, requestID string) error {
	return pgx.BeginTxFunc(ctx, r.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE group_join_requests
			SET status = $3, responded_at = NOW()
			WHERE id = $1 AND group_id = $2 AND status = $4
		`, requestID, groupID, types.RequestRejected, types.RequestPending)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return requestGuardError(ctx, tx, groupID, requestID)
		}
		_, err = tx.Exec(ctx, `UPDATE backpacker_groups SET updated_at = NOW() WHERE id = $1`, groupID)
		return err
	})
}

func (r *pgGroupRepository) UpdateMemberRole(ctx context.Context, groupID, memberID, role string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE group_members SET role = $3 WHERE id = $1 AND group_id = $2`,
		memberID, groupID, role,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgGroupRepository) AddComment(ctx context.Context, groupID string, comment *Comment) error {
	query := `
		INSERT INTO group_comments (id, group_id, author_id, author_name, text)
		SELECT $1, id, $3, $4, $5 FROM backpacker_groups WHERE id = $2
		RETURNING likes, created_at
	`
	err := r.pool.QueryRow(ctx, query,
		comment.ID, groupID, comment.AuthorID, comment.AuthorName, comment.Text,
	).Scan(&comment.Likes, &comment.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func (r *pgGroupRepository) LikeComment(ctx context.Context, groupID, commentID string) (int, error) {
	var likes int
	err := r.pool.QueryRow(ctx,
		`UPDATE group_comments SET likes = likes + 1 WHERE id = $1 AND group_id = $2 RETURNING likes`,
		commentID, groupID,
	).Scan(&likes)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrNotFound
	}
	return likes, err
}

// ============================================
// Helpers
// ============================================

func insertMember(ctx context.Context, tx pgx.Tx, groupID string, m *Member) error {
	query := `
		INSERT INTO group_members (id, group_id, user_id, name, avatar_color, role, expertise)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING joined_at
	`
	return tx.QueryRow(ctx, query,
		m.ID, groupID, m.UserID, m.Name, m.AvatarColor, m.Role, m.Expertise,
	).Scan(&m.JoinedAt)
}

// requestGuardError explains why a conditional request update matched no row.
func requestGuardError(ctx context.Context, tx pgx.Tx, groupID, requestID string) error {
	ok, err := rowExists(ctx, tx,
		`SELECT EXISTS(SELECT 1 FROM group_join_requests WHERE id = $1 AND group_id = $2)`,
		requestID, groupID,
	)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return ErrRequestNotPending
}

func rowExists(ctx context.Context, tx pgx.Tx, query string, args ...interface{}) (bool, error) {
	var exists bool
	err := tx.QueryRow(ctx, query, args...).Scan(&exists)
	return exists, err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func (r *pgGroupRepository) membersOf(ctx context.Context, groupIDs []string) (map[string][]Member, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT group_id, id, user_id, name, avatar_color, role, expertise, joined_at
		FROM group_members WHERE group_id = ANY($1)
		ORDER BY position
	`, groupIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string][]Member)
	for rows.Next() {
		var groupID string
		var m Member
		if err := rows.Scan(&groupID, &m.ID, &m.UserID, &m.Name, &m.AvatarColor, &m.Role, &m.Expertise, &m.JoinedAt); err != nil {
			return nil, err
		}
		out[groupID] = append(out[groupID], m)
	}
	return out, rows.Err()
}

func (r *pgGroupRepository) requestsOf(ctx context.Context, groupID string) ([]JoinRequest, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, group_id, user_id, status, note, created_at, responded_at
		FROM group_join_requests WHERE group_id = $1
		ORDER BY position
	`, groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []JoinRequest
	for rows.Next() {
		var req JoinRequest
		if err := rows.Scan(&req.ID, &req.GroupID, &req.UserID, &req.Status, &req.Note, &req.CreatedAt, &req.RespondedAt); err != nil {
			return nil, err
		}
		out = append(out, req)
	}
	return out, rows.Err()
}

func (r *pgGroupRepository) commentsOf(ctx context.Context, groupID string) ([]Comment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, author_id, author_name, text, likes, created_at
		FROM group_comments WHERE group_id = $1
		ORDER BY position
	`, groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Comment
	for rows.Next() {
		var c Comment
		if err := rows.Scan(&c.ID, &c.AuthorID, &c.AuthorName, &c.Text, &c.Likes, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// requesterForms lower-cases and de-duplicates the identifiers a requester
// is known by, skipping blanks.
func requesterForms(userID string, others []string) []string {
	forms := make([]string, 0, len(others)+1)
	seen := make(map[string]bool, len(others)+1)
	for _, id := range append([]string{userID}, others...) {
		id = strings.ToLower(strings.TrimSpace(id))
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		forms = append(forms, id)
	}
	return forms
}
