package users

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
	"storefront/internal/stores/docstore"
)

const Collection = "users"

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

type Conf struct {
	store docstore.Store
}

func NewConf(store docstore.Store) (*Conf, error) {
	if store == nil {
		return nil, fmt.Errorf("document store is nil")
	}
	return &Conf{store: store}, nil
}

// Create registers a new profile with empty address and phone defaults. The
// password is stored as a bcrypt hash inside the document and never leaves
// this package.
func (c *Conf) Create(ctx context.Context, nu NewUser) (UserProfile, error) {
	existing, err := c.store.Query(ctx, Collection,
		[]docstore.Filter{{Field: "email", Value: nu.Email}}, nil)
	if err != nil {
		return UserProfile{}, fmt.Errorf("checking for existing email: %w", err)
	}
	if len(existing) > 0 {
		return UserProfile{}, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(nu.Password), bcrypt.DefaultCost)
	if err != nil {
		return UserProfile{}, fmt.Errorf("hashing password: %w", err)
	}

	doc := docstore.Document{
		"email":        nu.Email,
		"displayName":  nu.DisplayName,
		"address":      "",
		"phoneNumber":  "",
		"isAdmin":      false,
		"passwordHash": string(hash),
	}
	uid, err := c.store.Create(ctx, Collection, doc)
	if err != nil {
		return UserProfile{}, fmt.Errorf("creating user document: %w", err)
	}

	return UserProfile{UID: uid, Email: nu.Email, DisplayName: nu.DisplayName}, nil
}

func (c *Conf) Get(ctx context.Context, uid string) (UserProfile, error) {
	doc, err := c.store.GetByID(ctx, Collection, uid)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return UserProfile{}, docstore.ErrNotFound
		}
		return UserProfile{}, fmt.Errorf("fetching user %s: %w", uid, err)
	}
	return profileFromDoc(doc), nil
}

// Verify checks email/password and returns the matching profile. Both an
// unknown email and a wrong password come back as ErrInvalidCredentials.
func (c *Conf) Verify(ctx context.Context, email, password string) (UserProfile, error) {
	docs, err := c.store.Query(ctx, Collection,
		[]docstore.Filter{{Field: "email", Value: email}}, nil)
	if err != nil {
		return UserProfile{}, fmt.Errorf("looking up user by email: %w", err)
	}
	if len(docs) == 0 {
		return UserProfile{}, ErrInvalidCredentials
	}

	doc := docs[0]
	hash, _ := doc["passwordHash"].(string)
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return UserProfile{}, ErrInvalidCredentials
	}
	return profileFromDoc(doc), nil
}

// Update applies the user-editable fields. Email and isAdmin are not part of
// ProfileUpdate and therefore cannot be changed here.
func (c *Conf) Update(ctx context.Context, uid string, upd ProfileUpdate) error {
	fields := docstore.Document{}
	if upd.DisplayName != nil {
		fields["displayName"] = *upd.DisplayName
	}
	if upd.Address != nil {
		fields["address"] = *upd.Address
	}
	if upd.PhoneNumber != nil {
		fields["phoneNumber"] = *upd.PhoneNumber
	}
	if len(fields) == 0 {
		return nil
	}

	if err := c.store.Update(ctx, Collection, uid, fields); err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return docstore.ErrNotFound
		}
		return fmt.Errorf("updating user %s: %w", uid, err)
	}
	return nil
}

func (c *Conf) Delete(ctx context.Context, uid string) error {
	if err := c.store.Delete(ctx, Collection, uid); err != nil {
		return fmt.Errorf("deleting user %s: %w", uid, err)
	}
	return nil
}

func profileFromDoc(doc docstore.Document) UserProfile {
	isAdmin, _ := doc["isAdmin"].(bool)
	return UserProfile{
		UID:         stringField(doc, "id"),
		Email:       stringField(doc, "email"),
		DisplayName: stringField(doc, "displayName"),
		Address:     stringField(doc, "address"),
		PhoneNumber: stringField(doc, "phoneNumber"),
		IsAdmin:     isAdmin,
	}
}

func stringField(doc docstore.Document, key string) string {
	s, _ := doc[key].(string)
	return s
}
