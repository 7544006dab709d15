package domain

import "time"

// User is the single account record that all three identity channels
// (password, Google, phone) converge onto.
type User struct {
	ID            string
	Name          string
	Email         string
	PasswordHash  string
	GoogleID      string
	AvatarURL     string
	PhoneNumber   string
	EmailVerified bool
	PhoneVerified bool

	// Pending verification state. Each pair is transient: present only while
	// a verification is outstanding, overwritten on re-issuance, cleared on
	// successful verification.
	EmailVerificationSecret  string
	EmailVerificationExpires time.Time
	PhoneVerificationCode    string
	PhoneVerificationExpires time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasPassword reports whether a credential account was ever created for this
// user. Pure federated accounts carry no password hash.
func (u User) HasPassword() bool {
	return u.PasswordHash != ""
}
