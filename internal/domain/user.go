package domain

import "time"

type User struct {
	ID           int       `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// UserImport is an account carried over from another deployment with its
// password already hashed.
type UserImport struct {
	Email        string
	Name         string
	PasswordHash string
}

// UserRepository is the credential store. Emails are matched exactly as stored.
type UserRepository interface {
	Register(email, password, name string) (User, error)
	Import(u UserImport) (User, error)
	Verify(email, password string) bool
	Find(email string) (User, bool)
	Count() int
}
