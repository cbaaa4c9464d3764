package models_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventhub/db/dbtest"
	"eventhub/models"
)

func TestResolveRecipients_UnionWithoutDuplicates(t *testing.T) {
	d := dbtest.New(t)
	dbtest.Exec(t, d,
		`INSERT INTO app_groups (group_id, group_name) VALUES (1, 'Book Club'), (3, 'Tech Meetup')`,
		`INSERT INTO group_members (username, group_id) VALUES
			('kbrown', 3), ('jsmith', 3), ('adavis', 3), ('mjohnson', 3), ('bwilson', 1)`,
		`INSERT INTO group_admins (username, group_id) VALUES ('kbrown', 3), ('bwilson', 1)`,
	)
	ctx := context.Background()

	got, err := models.NewSQLGroupRepository(d, models.AdminScopeGroup).ResolveRecipients(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"adavis", "jsmith", "kbrown", "mjohnson"}, got)

	got, err = models.NewSQLGroupRepository(d, models.AdminScopeGlobal).ResolveRecipients(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"adavis", "bwilson", "jsmith", "kbrown", "mjohnson"}, got)
}

func TestResolveRecipients_AdminOnlyGroup(t *testing.T) {
	d := dbtest.New(t)
	dbtest.Exec(t, d,
		`INSERT INTO app_groups (group_id, group_name) VALUES (7, 'Solo')`,
		`INSERT INTO group_admins (username, group_id) VALUES ('owner', 7)`,
	)

	got, err := models.NewSQLGroupRepository(d, "").ResolveRecipients(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, []string{"owner"}, got)
}

func TestAddMember_Idempotent(t *testing.T) {
	d := dbtest.New(t)
	dbtest.Exec(t, d, `INSERT INTO app_groups (group_id, group_name) VALUES (5, 'Runners')`)
	repo := models.NewSQLGroupRepository(d, models.AdminScopeGroup)
	ctx := context.Background()

	require.NoError(t, repo.AddMember(ctx, "chase", 5))
	require.NoError(t, repo.AddMember(ctx, "chase", 5))
	require.NoError(t, repo.AddAdmin(ctx, "chase", 5))
	require.NoError(t, repo.AddAdmin(ctx, "chase", 5))

	assert.Equal(t, 1, dbtest.Count(t, d, "group_members WHERE username = 'chase' AND group_id = 5"))
	assert.Equal(t, 1, dbtest.Count(t, d, "group_admins WHERE username = 'chase' AND group_id = 5"))
}

func TestGroupLookups(t *testing.T) {
	d := dbtest.New(t)
	dbtest.Exec(t, d,
		`INSERT INTO app_groups (group_id, group_name, description) VALUES (1, 'Book Club', 'books'), (2, 'Hiking', 'trails')`,
		`INSERT INTO group_members (username, group_id) VALUES ('slee', 2), ('kbrown', 2)`,
		`INSERT INTO group_admins (username, group_id) VALUES ('slee', 2)`,
		`INSERT INTO events (event_id, event_date, description) VALUES (1, '2025-11-22 00:00:00+00:00', 'Eagle Peak')`,
		`INSERT INTO group_events (event_id, group_id) VALUES (1, 2)`,
	)
	repo := models.NewSQLGroupRepository(d, models.AdminScopeGroup)
	ctx := context.Background()

	ok, err := repo.Exists(ctx, 2)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = repo.Exists(ctx, 9)
	require.NoError(t, err)
	assert.False(t, ok)

	taken, err := repo.NameTaken(ctx, "Book Club")
	require.NoError(t, err)
	assert.True(t, taken)

	ids, err := repo.AllIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, ids)

	groups, err := repo.GetByIDs(ctx, []int64{2, 99})
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, "trails", groups[0].Description)

	empty, err := repo.GetByIDs(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)

	admin, err := repo.ListAdminGroups(ctx, "slee")
	require.NoError(t, err)
	require.Len(t, admin, 1)
	assert.Equal(t, 2, admin[0].MemberCount)
	assert.Equal(t, 1, admin[0].EventCount)

	mine, err := repo.ListForUser(ctx, "kbrown")
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, int64(2), mine[0].GroupID)
}

func TestCreateGroup_UniqueName(t *testing.T) {
	d := dbtest.New(t)
	repo := models.NewSQLGroupRepository(d, models.AdminScopeGroup)
	ctx := context.Background()

	g := models.Group{GroupName: "Tech Meetup"}
	require.NoError(t, repo.Create(ctx, &g))
	assert.NotZero(t, g.GroupID)

	err := repo.Create(ctx, &models.Group{GroupName: "Tech Meetup"})
	assert.ErrorIs(t, err, models.ErrConflict)
}
