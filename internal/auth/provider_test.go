package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"storefront/internal/stores/docstore"
	"storefront/internal/users"
)

type change struct {
	ident    Identity
	signedIn bool
}

func newTestProvider(t *testing.T) (*Provider, *users.Conf) {
	t.Helper()
	u, err := users.NewConf(docstore.NewMemory())
	require.NoError(t, err)
	p, err := NewProvider(u)
	require.NoError(t, err)
	return p, u
}

func TestSignUpSignsTheSessionIn(t *testing.T) {
	p, _ := newTestProvider(t)

	ident, err := p.SignUp(context.Background(), users.NewUser{
		Email:    "jo@example.com",
		Password: "hunter2secret",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, ident.UID)

	current, ok := p.Current()
	require.True(t, ok)
	assert.Equal(t, ident, current)
}

func TestSignInAndSignOut(t *testing.T) {
	p, _ := newTestProvider(t)
	ctx := context.Background()

	_, err := p.SignUp(ctx, users.NewUser{Email: "jo@example.com", Password: "hunter2secret"})
	require.NoError(t, err)
	p.SignOut()

	_, ok := p.Current()
	assert.False(t, ok)

	ident, err := p.SignIn(ctx, "jo@example.com", "hunter2secret")
	require.NoError(t, err)
	assert.Equal(t, "jo@example.com", ident.Email)

	_, err = p.SignIn(ctx, "jo@example.com", "wrong")
	require.ErrorIs(t, err, users.ErrInvalidCredentials)
}

func TestOnIdentityChangeDeliversImmediately(t *testing.T) {
	p, _ := newTestProvider(t)

	var got []change
	p.OnIdentityChange(func(ident Identity, signedIn bool) {
		got = append(got, change{ident, signedIn})
	})

	require.Len(t, got, 1)
	assert.False(t, got[0].signedIn)
}

func TestOnIdentityChangeTracksLifecycle(t *testing.T) {
	p, _ := newTestProvider(t)
	ctx := context.Background()

	var got []change
	unsubscribe := p.OnIdentityChange(func(ident Identity, signedIn bool) {
		got = append(got, change{ident, signedIn})
	})

	ident, err := p.SignUp(ctx, users.NewUser{Email: "jo@example.com", Password: "hunter2secret"})
	require.NoError(t, err)
	p.SignOut()

	require.Len(t, got, 3)
	assert.False(t, got[0].signedIn)
	assert.True(t, got[1].signedIn)
	assert.Equal(t, ident, got[1].ident)
	assert.False(t, got[2].signedIn)

	unsubscribe()
	_, err = p.SignIn(ctx, "jo@example.com", "hunter2secret")
	require.NoError(t, err)
	assert.Len(t, got, 3)
}

func TestDeleteCurrentAccount(t *testing.T) {
	p, u := newTestProvider(t)
	ctx := context.Background()

	ident, err := p.SignUp(ctx, users.NewUser{Email: "jo@example.com", Password: "hunter2secret"})
	require.NoError(t, err)

	require.NoError(t, p.DeleteCurrentAccount(ctx))

	_, ok := p.Current()
	assert.False(t, ok)
	_, err = u.Get(ctx, ident.UID)
	require.ErrorIs(t, err, docstore.ErrNotFound)
}

func TestDeleteWithoutIdentity(t *testing.T) {
	p, _ := newTestProvider(t)

	require.ErrorIs(t, p.DeleteCurrentAccount(context.Background()), ErrNoCurrentIdentity)
}
