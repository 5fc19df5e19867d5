package domain

import "time"

// User is an account created by the identity system. Inside the feed
// subsystem users are read-only: posts, comments and likes reference them
// by ID, and only the author summary (id, username, avatar) is ever
// serialized into feed responses.
type User struct {
	ID       int    `json:"id"`
	Username string `json:"username" gorm:"notNull;uniqueIndex"`
	Email    string `json:"-" gorm:"notNull;uniqueIndex"`
	Avatar   string `json:"avatar,omitempty"`

	// Password is only ever set in memory on the way into the bcrypt hash.
	Password     string `json:"-" gorm:"-"`
	PasswordHash string `json:"-" gorm:"notNull"`

	// Remember is the raw session token handed to the client as a cookie.
	// Only its HMAC hash is stored.
	Remember     string `json:"-" gorm:"-"`
	RememberHash string `json:"-" gorm:"notNull;index"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UserService is a set of methods to manipulate and work with the User model.
type UserService interface {
	Authenticate(email, password string) (*User, error)
	ByID(id int) (*User, error)
	ByRemember(token string) (*User, error)
	Create(user *User) error
	Update(user *User) error
	MakeRememberToken() (string, error)
}
