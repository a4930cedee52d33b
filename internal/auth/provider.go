package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"storefront/internal/users"
)

// Identity is a signed-in principal. Absence is expressed through the
// (Identity, bool) pair returned by Current rather than a nil pointer.
type Identity struct {
	UID   string
	Email string
}

var ErrNoCurrentIdentity = errors.New("no identity is signed in")

// Provider manages one session's identity lifecycle: sign-up, sign-in,
// sign-out and account deletion, with change notifications for anything that
// needs to react to the identity appearing or going away.
type Provider struct {
	users *users.Conf

	mu      sync.Mutex
	current *Identity
	nextSub int
	subs    map[int]func(Identity, bool)
}

func NewProvider(u *users.Conf) (*Provider, error) {
	if u == nil {
		return nil, fmt.Errorf("users gateway is nil")
	}
	return &Provider{users: u, subs: map[int]func(Identity, bool){}}, nil
}

// SignUp registers a new account, creates its profile document and signs the
// session in as the new identity.
func (p *Provider) SignUp(ctx context.Context, nu users.NewUser) (Identity, error) {
	profile, err := p.users.Create(ctx, nu)
	if err != nil {
		return Identity{}, err
	}
	ident := Identity{UID: profile.UID, Email: profile.Email}
	p.setCurrent(&ident)
	return ident, nil
}

func (p *Provider) SignIn(ctx context.Context, email, password string) (Identity, error) {
	profile, err := p.users.Verify(ctx, email, password)
	if err != nil {
		return Identity{}, err
	}
	ident := Identity{UID: profile.UID, Email: profile.Email}
	p.setCurrent(&ident)
	return ident, nil
}

func (p *Provider) SignOut() {
	p.setCurrent(nil)
}

func (p *Provider) Current() (Identity, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current == nil {
		return Identity{}, false
	}
	return *p.current, true
}

// OnIdentityChange registers fn and immediately delivers the current state.
// The returned function unsubscribes.
func (p *Provider) OnIdentityChange(fn func(ident Identity, signedIn bool)) func() {
	p.mu.Lock()
	id := p.nextSub
	p.nextSub++
	p.subs[id] = fn
	var ident Identity
	signedIn := p.current != nil
	if signedIn {
		ident = *p.current
	}
	p.mu.Unlock()

	fn(ident, signedIn)
	return func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		delete(p.subs, id)
	}
}

// DeleteCurrentAccount removes the profile document for the signed-in
// identity, then drops the identity itself.
func (p *Provider) DeleteCurrentAccount(ctx context.Context) error {
	ident, ok := p.Current()
	if !ok {
		return ErrNoCurrentIdentity
	}
	if err := p.users.Delete(ctx, ident.UID); err != nil {
		return err
	}
	p.setCurrent(nil)
	return nil
}

func (p *Provider) setCurrent(ident *Identity) {
	p.mu.Lock()
	p.current = ident
	var snapshot Identity
	signedIn := ident != nil
	if signedIn {
		snapshot = *ident
	}
	fns := make([]func(Identity, bool), 0, len(p.subs))
	for _, fn := range p.subs {
		fns = append(fns, fn)
	}
	p.mu.Unlock()

	for _, fn := range fns {
		fn(snapshot, signedIn)
	}
}
