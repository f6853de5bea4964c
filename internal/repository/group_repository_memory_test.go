package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Marga-Ghale/backpackers-backend/internal/types"
)

func newGroup(t *testing.T, repo GroupRepository, maxMembers int) *Group {
	t.Helper()
	g := &Group{
		Name:           "Hampi Boulders",
		Destination:    "Hampi, Karnataka",
		StartDate:      time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC),
		EndDate:        time.Date(2026, 11, 4, 0, 0, 0, 0, time.UTC),
		MaxMembers:     maxMembers,
		CurrentMembers: 1,
		CreatorID:      "host",
		Members:        []Member{{ID: "m-host", UserID: "host", Name: "Host", Role: types.RoleHost}},
	}
	require.NoError(t, repo.Create(context.Background(), g))
	return g
}

func TestInMemoryGroup_ReadersGetCopies(t *testing.T) {
	repo := NewInMemoryGroupRepository()
	g := newGroup(t, repo, 4)
	ctx := context.Background()

	found, err := repo.FindByID(ctx, g.ID)
	require.NoError(t, err)
	found.Members[0].Role = types.RoleMember
	found.CurrentMembers = 99

	again, err := repo.FindByID(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, types.RoleHost, again.Members[0].Role)
	assert.Equal(t, 1, again.CurrentMembers)
}

func TestInMemoryGroup_FindMissing(t *testing.T) {
	repo := NewInMemoryGroupRepository()
	g, err := repo.FindByID(context.Background(), "missing")
	assert.NoError(t, err)
	assert.Nil(t, g)
}

func TestInMemoryGroup_AppendRequestGuards(t *testing.T) {
	repo := NewInMemoryGroupRepository()
	ctx := context.Background()
	g := newGroup(t, repo, 2)

	require.NoError(t, repo.AppendRequest(ctx, g.ID, &JoinRequest{ID: "r1", UserID: "alice"}))
	err := repo.AppendRequest(ctx, g.ID, &JoinRequest{ID: "r2", UserID: "alice"})
	assert.ErrorIs(t, err, ErrDuplicatePending)

	err = repo.AppendRequest(ctx, "missing", &JoinRequest{ID: "r3", UserID: "bob"})
	assert.ErrorIs(t, err, ErrNotFound)

	full := newGroup(t, repo, 1)
	err = repo.AppendRequest(ctx, full.ID, &JoinRequest{ID: "r4", UserID: "bob"})
	assert.ErrorIs(t, err, ErrGroupFull)

	stored, _ := repo.FindByID(ctx, g.ID)
	require.Len(t, stored.Requests, 1)
	assert.Equal(t, types.RequestPending, stored.Requests[0].Status)
}

func TestInMemoryGroup_AppendRequestChecksEveryRequesterForm(t *testing.T) {
	repo := NewInMemoryGroupRepository()
	ctx := context.Background()
	g := newGroup(t, repo, 4)

	require.NoError(t, repo.AppendRequest(ctx, g.ID, &JoinRequest{ID: "r1", UserID: "Alice@Example.com"}))

	err := repo.AppendRequest(ctx, g.ID, &JoinRequest{ID: "r2", UserID: "u-alice"}, "u-alice", "alice@example.com")
	assert.ErrorIs(t, err, ErrDuplicatePending)

	// Someone else sharing none of the forms is fine.
	assert.NoError(t, repo.AppendRequest(ctx, g.ID, &JoinRequest{ID: "r3", UserID: "u-bob"}, "bob@example.com"))

	stored, _ := repo.FindByID(ctx, g.ID)
	assert.Len(t, stored.Requests, 2)
}

func TestRequesterForms(t *testing.T) {
	assert.Equal(t,
		[]string{"alice@example.com", "u-1"},
		requesterForms(" Alice@Example.com", []string{"", "alice@example.com", "U-1", "u-1"}),
	)
}

func TestInMemoryGroup_AdmitMemberIsAllOrNothing(t *testing.T) {
	repo := NewInMemoryGroupRepository()
	ctx := context.Background()
	g := newGroup(t, repo, 3)
	require.NoError(t, repo.AppendRequest(ctx, g.ID, &JoinRequest{ID: "r1", UserID: "alice"}))

	require.NoError(t, repo.AdmitMember(ctx, g.ID, "r1", &Member{UserID: "alice", Role: types.RoleMember}))

	// Second admission of the same request changes nothing.
	err := repo.AdmitMember(ctx, g.ID, "r1", &Member{UserID: "alice", Role: types.RoleMember})
	assert.ErrorIs(t, err, ErrRequestNotPending)

	err = repo.AdmitMember(ctx, g.ID, "nope", &Member{UserID: "x"})
	assert.ErrorIs(t, err, ErrNotFound)

	stored, _ := repo.FindByID(ctx, g.ID)
	assert.Equal(t, 2, stored.CurrentMembers)
	assert.Len(t, stored.Members, 2)
	assert.Equal(t, types.RequestApproved, stored.Requests[0].Status)
	assert.NotNil(t, stored.Requests[0].RespondedAt)
}

func TestInMemoryGroup_ConcurrentAdmissionsNeverExceedCapacity(t *testing.T) {
	repo := NewInMemoryGroupRepository()
	ctx := context.Background()
	g := newGroup(t, repo, 3)

	const requesters = 20
	for i := 0; i < requesters; i++ {
		// Requests are appended directly so capacity is only checked at admission.
		id := fmt.Sprintf("r%d", i)
		mem := repo.(*inMemoryGroupRepository)
		mem.mu.Lock()
		mem.groups[g.ID].Requests = append(mem.groups[g.ID].Requests, JoinRequest{
			ID: id, GroupID: g.ID, UserID: fmt.Sprintf("user-%d", i), Status: types.RequestPending,
		})
		mem.mu.Unlock()
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	admitted, full := 0, 0
	for i := 0; i < requesters; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			err := repo.AdmitMember(ctx, g.ID, fmt.Sprintf("r%d", i), &Member{UserID: fmt.Sprintf("user-%d", i)})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				admitted++
			case errors.Is(err, ErrGroupFull):
				full++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 2, admitted)
	assert.Equal(t, requesters-2, full)

	stored, _ := repo.FindByID(ctx, g.ID)
	assert.Equal(t, 3, stored.CurrentMembers)
	assert.Len(t, stored.Members, 3)
}

func TestInMemoryGroup_ResolveRequest(t *testing.T) {
	repo := NewInMemoryGroupRepository()
	ctx := context.Background()
	g := newGroup(t, repo, 3)
	require.NoError(t, repo.AppendRequest(ctx, g.ID, &JoinRequest{ID: "r1", UserID: "alice"}))

	require.NoError(t, repo.ResolveRequest(ctx, g.ID, "r1"))
	assert.ErrorIs(t, repo.ResolveRequest(ctx, g.ID, "r1"), ErrRequestNotPending)
	assert.ErrorIs(t, repo.ResolveRequest(ctx, "missing", "r1"), ErrNotFound)

	stored, _ := repo.FindByID(ctx, g.ID)
	assert.Equal(t, types.RequestRejected, stored.Requests[0].Status)
	assert.Equal(t, 1, stored.CurrentMembers)
}

func TestInMemoryGroup_ListFiltersByDestination(t *testing.T) {
	repo := NewInMemoryGroupRepository()
	ctx := context.Background()
	newGroup(t, repo, 3)
	other := &Group{Name: "Varkala Cliffs", Destination: "Varkala, Kerala", MaxMembers: 4, CreatorID: "h2"}
	require.NoError(t, repo.Create(ctx, other))

	groups, err := repo.List(ctx, GroupFilter{Destination: "kerala"})
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, "Varkala Cliffs", groups[0].Name)

	all, err := repo.List(ctx, GroupFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestInMemoryGroup_Comments(t *testing.T) {
	repo := NewInMemoryGroupRepository()
	ctx := context.Background()
	g := newGroup(t, repo, 3)

	c := &Comment{AuthorID: "alice", AuthorName: "Alice", Text: "Count me in"}
	require.NoError(t, repo.AddComment(ctx, g.ID, c))

	likes, err := repo.LikeComment(ctx, g.ID, c.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, likes)
	likes, _ = repo.LikeComment(ctx, g.ID, c.ID)
	assert.Equal(t, 2, likes)

	_, err = repo.LikeComment(ctx, g.ID, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, repo.AddComment(ctx, "missing", &Comment{}), ErrNotFound)
}
