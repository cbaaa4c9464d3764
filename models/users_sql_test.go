package models_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventhub/db/dbtest"
	"eventhub/models"
)

func TestUsers_RegisterAndValidate(t *testing.T) {
	d := dbtest.New(t)
	repo := models.NewSQLUserRepository(d)
	ctx := context.Background()

	u := models.User{Username: "newuser", FirstName: "New", LastName: "User", Password: "s3cret"}
	require.NoError(t, repo.Create(ctx, &u))

	var stored string
	require.NoError(t, d.SQL().QueryRow(`SELECT password FROM users WHERE username = 'newuser'`).Scan(&stored))
	assert.NotEqual(t, "s3cret", stored)

	got, err := repo.ValidateCredentials(ctx, "newuser", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, "New", got.FirstName)
	assert.Empty(t, got.Password)

	_, err = repo.ValidateCredentials(ctx, "newuser", "wrong")
	assert.ErrorIs(t, err, models.ErrInvalidCredentials)
	_, err = repo.ValidateCredentials(ctx, "ghost", "s3cret")
	assert.ErrorIs(t, err, models.ErrInvalidCredentials)

	err = repo.Create(ctx, &models.User{Username: "newuser", Password: "x"})
	assert.ErrorIs(t, err, models.ErrConflict)

	ok, err := repo.Exists(ctx, "newuser")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestUsers_PasswordTooLongIsValidation(t *testing.T) {
	d := dbtest.New(t)
	repo := models.NewSQLUserRepository(d)

	u := models.User{Username: "longpw", FirstName: "L", LastName: "P", Password: strings.Repeat("x", 73)}
	err := repo.Create(context.Background(), &u)
	require.Error(t, err)
	assert.Equal(t, models.KindValidation, models.KindOf(err))
	assert.Equal(t, 0, dbtest.Count(t, d, "users"))
}
