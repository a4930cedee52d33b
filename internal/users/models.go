package users

// UserProfile is the profile document kept alongside the identity. Email is
// fixed at registration; IsAdmin is only ever flipped by direct data edits,
// never through the update path.
type UserProfile struct {
	UID         string `json:"uid"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	Address     string `json:"address"`
	PhoneNumber string `json:"phoneNumber"`
	IsAdmin     bool   `json:"isAdmin"`
}

type NewUser struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=8"`
	DisplayName string `json:"displayName"`
}

// ProfileUpdate carries the fields a user may change. Nil means "leave as is".
type ProfileUpdate struct {
	DisplayName *string `json:"displayName"`
	Address     *string `json:"address"`
	PhoneNumber *string `json:"phoneNumber"`
}
