package models

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"strconv"
	"strings"

	"eventhub/db"
)

type sqlGroupRepo struct {
	db    *db.DB
	scope AdminScope
}

// NewSQLGroupRepository builds the group directory. scope decides which administrators
// ResolveRecipients adds to a group's members.
func NewSQLGroupRepository(d *db.DB, scope AdminScope) GroupRepository {
	if scope != AdminScopeGlobal {
		scope = AdminScopeGroup
	}
	return &sqlGroupRepo{db: d, scope: scope}
}

func (r *sqlGroupRepo) Exists(ctx context.Context, groupID int64) (bool, error) {
	return exists(ctx, r.db.Conn(ctx), "Error checking group",
		`SELECT 1 FROM app_groups WHERE group_id = $1`, groupID)
}

func (r *sqlGroupRepo) NameTaken(ctx context.Context, name string) (bool, error) {
	return exists(ctx, r.db.Conn(ctx), "Error creating group",
		`SELECT 1 FROM app_groups WHERE group_name = $1`, name)
}

func (r *sqlGroupRepo) Create(ctx context.Context, g *Group) error {
	err := r.db.Conn(ctx).QueryRowContext(ctx,
		`INSERT INTO app_groups (group_name, description) VALUES ($1, $2) RETURNING group_id`,
		g.GroupName, g.Description).Scan(&g.GroupID)
	if db.IsUniqueViolation(err) {
		return Conflict("Group name already exists")
	}
	if err != nil {
		return StoreFailure("Error creating group", err)
	}
	return nil
}

func (r *sqlGroupRepo) AllIDs(ctx context.Context) ([]int64, error) {
	rows, err := r.db.Conn(ctx).QueryContext(ctx, `SELECT group_id FROM app_groups ORDER BY group_id`)
	if err != nil {
		return nil, StoreFailure("Error retrieving group IDs", err)
	}
	defer rows.Close()

	ids := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, StoreFailure("Error retrieving group IDs", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, StoreFailure("Error retrieving group IDs", err)
	}
	return ids, nil
}

func (r *sqlGroupRepo) GetByIDs(ctx context.Context, ids []int64) ([]Group, error) {
	if len(ids) == 0 {
		return []Group{}, nil
	}
	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		placeholders[i] = "$" + strconv.Itoa(i+1)
		args[i] = id
	}
	q := `SELECT group_id, group_name, description FROM app_groups WHERE group_id IN (` +
		strings.Join(placeholders, ", ") + `) ORDER BY group_id`
	return queryGroups(ctx, r.db.Conn(ctx), "Error retrieving group info", q, args...)
}

// AddMember is idempotent: adding an existing member is a no-op.
func (r *sqlGroupRepo) AddMember(ctx context.Context, username string, groupID int64) error {
	_, err := r.db.Conn(ctx).ExecContext(ctx,
		`INSERT INTO group_members (username, group_id) VALUES ($1, $2) ON CONFLICT (username, group_id) DO NOTHING`,
		username, groupID)
	if err != nil {
		return StoreFailure("Error joining group", err)
	}
	return nil
}

func (r *sqlGroupRepo) RemoveMember(ctx context.Context, username string, groupID int64) error {
	_, err := r.db.Conn(ctx).ExecContext(ctx,
		`DELETE FROM group_members WHERE username = $1 AND group_id = $2`, username, groupID)
	if err != nil {
		return StoreFailure("Error leaving group", err)
	}
	return nil
}

func (r *sqlGroupRepo) AddAdmin(ctx context.Context, username string, groupID int64) error {
	_, err := r.db.Conn(ctx).ExecContext(ctx,
		`INSERT INTO group_admins (username, group_id) VALUES ($1, $2) ON CONFLICT (username, group_id) DO NOTHING`,
		username, groupID)
	if err != nil {
		return StoreFailure("Error adding group admin", err)
	}
	return nil
}

func (r *sqlGroupRepo) ListForUser(ctx context.Context, username string) ([]Group, error) {
	return queryGroups(ctx, r.db.Conn(ctx), "Error retrieving user groups", `
		SELECT g.group_id, g.group_name, g.description
		FROM app_groups g
		JOIN group_members m ON m.group_id = g.group_id
		WHERE m.username = $1
		ORDER BY g.group_name`, username)
}

func (r *sqlGroupRepo) ListAdminGroups(ctx context.Context, username string) ([]AdminGroup, error) {
	const op = "Error retrieving admin groups"
	rows, err := r.db.Conn(ctx).QueryContext(ctx, `
		SELECT g.group_id, g.group_name, g.description,
			(SELECT COUNT(*) FROM group_members m WHERE m.group_id = g.group_id) AS member_count,
			(SELECT COUNT(*) FROM group_events e WHERE e.group_id = g.group_id) AS event_count
		FROM app_groups g
		JOIN group_admins a ON a.group_id = g.group_id
		WHERE a.username = $1
		ORDER BY g.group_name`, username)
	if err != nil {
		return nil, StoreFailure(op, err)
	}
	defer rows.Close()

	out := []AdminGroup{}
	for rows.Next() {
		var g AdminGroup
		if err := rows.Scan(&g.GroupID, &g.GroupName, &g.Description, &g.MemberCount, &g.EventCount); err != nil {
			return nil, StoreFailure(op, err)
		}
		out = append(out, g)
	}
	if err := rows.Err(); err != nil {
		return nil, StoreFailure(op, err)
	}
	return out, nil
}

func (r *sqlGroupRepo) ResolveRecipients(ctx context.Context, groupID int64) ([]string, error) {
	const op = "Error resolving notification recipients"
	q := `SELECT username FROM group_members WHERE group_id = $1
		UNION
		SELECT username FROM group_admins WHERE group_id = $1`
	if r.scope == AdminScopeGlobal {
		q = `SELECT username FROM group_members WHERE group_id = $1
			UNION
			SELECT username FROM group_admins`
	}

	rows, err := r.db.Conn(ctx).QueryContext(ctx, q, groupID)
	if err != nil {
		return nil, StoreFailure(op, err)
	}
	defer rows.Close()

	set := map[string]struct{}{}
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, StoreFailure(op, err)
		}
		set[u] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, StoreFailure(op, err)
	}
	return sortedSet(set), nil
}

func queryGroups(ctx context.Context, q db.Querier, op, query string, args ...any) ([]Group, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, StoreFailure(op, err)
	}
	defer rows.Close()

	out := []Group{}
	for rows.Next() {
		var g Group
		if err := rows.Scan(&g.GroupID, &g.GroupName, &g.Description); err != nil {
			return nil, StoreFailure(op, err)
		}
		out = append(out, g)
	}
	if err := rows.Err(); err != nil {
		return nil, StoreFailure(op, err)
	}
	return out, nil
}

// exists runs a pre-check query that selects a constant.
func exists(ctx context.Context, q db.Querier, op, query string, args ...any) (bool, error) {
	var one int
	err := q.QueryRowContext(ctx, query, args...).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, StoreFailure(op, err)
	}
	return true, nil
}

func sortedSet(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
