package auth

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/farmdiary/internal/domain/models"
	"github.com/mamadbah2/farmdiary/internal/observability"
	"github.com/mamadbah2/farmdiary/internal/repository/memory"
	"github.com/mamadbah2/farmdiary/internal/repository/storage"
)

var testNow = time.Date(2024, time.March, 4, 8, 30, 0, 0, time.UTC)

func newTestManager(t *testing.T) (*Manager, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	m := NewManager(store, FarmDiaryOptions(), clockwork.NewFakeClockAt(testNow), observability.NewMetricsForTesting(), nil)
	return m, store
}

func kofi() RegisterInput {
	return RegisterInput{
		Name:            "Kofi Mensah",
		Email:           "Kofi@Farm.GH",
		Password:        "secret1",
		ConfirmPassword: "secret1",
	}
}

func TestRegister_CreatesUserAndSession(t *testing.T) {
	ctx := context.Background()
	m, store := newTestManager(t)

	sess, err := m.Register(ctx, kofi())
	require.NoError(t, err)

	assert.Equal(t, "kofi@farm.gh", sess.Email())
	assert.Equal(t, models.DefaultLocation, sess.User.Location)
	assert.Equal(t, testNow, sess.User.CreatedAt)
	assert.Equal(t, "farmCrops_kofi@farm.gh", sess.Key(models.CollectionCrops))

	current, err := m.Current()
	require.NoError(t, err)
	assert.Equal(t, sess.User, current.User)

	var users map[string]models.User
	found, err := storage.LoadJSON(ctx, store, "farmDiaryUsers", &users)
	require.NoError(t, err)
	require.True(t, found)
	assert.Contains(t, users, "kofi@farm.gh")

	var mirrored models.User
	found, err = storage.LoadJSON(ctx, store, "currentFarmUser", &mirrored)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "kofi@farm.gh", mirrored.Email)
}

func TestRegister_DuplicateEmailKeepsFirstUser(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(t)

	_, err := m.Register(ctx, kofi())
	require.NoError(t, err)

	second := kofi()
	second.Name = "Impostor"
	second.Email = "  KOFI@farm.gh "
	second.Password = "another1"
	second.ConfirmPassword = "another1"

	_, err = m.Register(ctx, second)
	require.ErrorIs(t, err, ErrEmailTaken)

	users, err := m.Users(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "Kofi Mensah", users[0].Name)

	require.NoError(t, m.Logout(ctx))
	_, err = m.Login(ctx, "kofi@farm.gh", "secret1")
	require.NoError(t, err)
	_, err = m.Login(ctx, "kofi@farm.gh", "another1")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRegister_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*RegisterInput)
		want   error
	}{
		{"missing name", func(in *RegisterInput) { in.Name = " " }, ErrMissingFields},
		{"missing email", func(in *RegisterInput) { in.Email = "" }, ErrMissingFields},
		{"missing password", func(in *RegisterInput) { in.Password = ""; in.ConfirmPassword = "" }, ErrMissingFields},
		{"mismatch", func(in *RegisterInput) { in.ConfirmPassword = "secret2" }, ErrPasswordMismatch},
		{"too short", func(in *RegisterInput) { in.Password = "abc12"; in.ConfirmPassword = "abc12" }, ErrPasswordTooShort},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			m, store := newTestManager(t)
			in := kofi()
			tt.mutate(&in)

			_, err := m.Register(ctx, in)
			require.ErrorIs(t, err, tt.want)
			assert.Empty(t, store.Keys())

			_, err = m.Current()
			require.ErrorIs(t, err, ErrNotAuthenticated)
		})
	}
}

func TestRegister_KeepsGivenLocation(t *testing.T) {
	m, _ := newTestManager(t)
	in := kofi()
	in.Location = "Kumasi"

	sess, err := m.Register(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, "Kumasi", sess.User.Location)
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(t)
	_, err := m.Register(ctx, kofi())
	require.NoError(t, err)
	require.NoError(t, m.Logout(ctx))

	t.Run("unknown email", func(t *testing.T) {
		_, err := m.Login(ctx, "ama@farm.gh", "secret1")
		require.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := m.Login(ctx, "kofi@farm.gh", "Secret1")
		require.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("blank fields", func(t *testing.T) {
		_, err := m.Login(ctx, "", "secret1")
		require.ErrorIs(t, err, ErrMissingFields)
	})

	t.Run("case-insensitive email", func(t *testing.T) {
		sess, err := m.Login(ctx, "KOFI@FARM.GH", "secret1")
		require.NoError(t, err)
		assert.Equal(t, "Kofi Mensah", sess.User.Name)
	})
}

func TestLogoutAndRestore(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	clock := clockwork.NewFakeClockAt(testNow)

	first := NewManager(store, FarmDiaryOptions(), clock, nil, nil)
	_, err := first.Register(ctx, kofi())
	require.NoError(t, err)

	// A fresh manager over the same store picks the session back up.
	second := NewManager(store, FarmDiaryOptions(), clock, nil, nil)
	sess, err := second.Restore(ctx)
	require.NoError(t, err)
	assert.Equal(t, "kofi@farm.gh", sess.Email())

	require.NoError(t, second.Logout(ctx))
	_, err = second.Current()
	require.ErrorIs(t, err, ErrNotAuthenticated)

	third := NewManager(store, FarmDiaryOptions(), clock, nil, nil)
	_, err = third.Restore(ctx)
	require.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestRealmsAreIndependent(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	clock := clockwork.NewFakeClockAt(testNow)

	farm := NewManager(store, FarmDiaryOptions(), clock, nil, nil)
	weather := NewManager(store, WeatherProOptions(), clock, nil, nil)

	_, err := farm.Register(ctx, kofi())
	require.NoError(t, err)

	_, err = weather.Login(ctx, "kofi@farm.gh", "secret1")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	sess, err := weather.Register(ctx, kofi())
	require.NoError(t, err)
	assert.Empty(t, sess.User.Location)
}
