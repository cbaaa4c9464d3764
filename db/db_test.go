package db_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventhub/db"
	"eventhub/db/dbtest"
)

func TestCreateTables_Idempotent(t *testing.T) {
	d := dbtest.New(t)
	require.NoError(t, d.CreateTables(context.Background()))
}

func TestWithTx_CommitAndRollback(t *testing.T) {
	d := dbtest.New(t)
	ctx := context.Background()

	err := d.WithTx(ctx, func(ctx context.Context) error {
		_, err := d.Conn(ctx).ExecContext(ctx, `INSERT INTO app_groups (group_name) VALUES ($1)`, "kept")
		return err
	})
	require.NoError(t, err)

	boom := errors.New("boom")
	err = d.WithTx(ctx, func(ctx context.Context) error {
		if _, err := d.Conn(ctx).ExecContext(ctx, `INSERT INTO app_groups (group_name) VALUES ($1)`, "dropped"); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	assert.Equal(t, 1, dbtest.Count(t, d, "app_groups WHERE group_name = 'kept'"))
	assert.Equal(t, 0, dbtest.Count(t, d, "app_groups WHERE group_name = 'dropped'"))
}

func TestWithTx_NestedJoinsOuter(t *testing.T) {
	d := dbtest.New(t)
	ctx := context.Background()

	err := d.WithTx(ctx, func(ctx context.Context) error {
		if err := d.WithTx(ctx, func(ctx context.Context) error {
			_, err := d.Conn(ctx).ExecContext(ctx, `INSERT INTO app_groups (group_name) VALUES ($1)`, "inner")
			return err
		}); err != nil {
			return err
		}
		return errors.New("outer fails")
	})
	require.Error(t, err)
	assert.Equal(t, 0, dbtest.Count(t, d, "app_groups"))
}

func TestIsUniqueViolation(t *testing.T) {
	d := dbtest.New(t)
	ctx := context.Background()

	_, err := d.Conn(ctx).ExecContext(ctx, `INSERT INTO app_groups (group_name) VALUES ($1)`, "Book Club")
	require.NoError(t, err)
	_, err = d.Conn(ctx).ExecContext(ctx, `INSERT INTO app_groups (group_name) VALUES ($1)`, "Book Club")
	require.Error(t, err)

	assert.True(t, db.IsUniqueViolation(err))
	assert.False(t, db.IsUniqueViolation(errors.New("plain")))
	assert.False(t, db.IsUniqueViolation(nil))
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := db.Open(context.Background(), "mysql", "x", db.Pool{})
	require.Error(t, err)
}
