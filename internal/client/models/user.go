package models

import "time"

// User is the authenticated account profile as returned by GET /auth/me.
// The profile is always replaced wholesale, never patched field by field.
type User struct {
	ID          string     `json:"id"`
	Email       string     `json:"email"`
	Name        string     `json:"name"`
	Avatar      string     `json:"avatar"`
	IsActive    bool       `json:"isActive"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	LastLoginAt *time.Time `json:"lastLoginAt"`
}

// Credentials is the login form payload.
type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// Registration is the register form payload.
type Registration struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// Preferences are device-level user settings. They survive logout.
type Preferences struct {
	Theme    string `json:"theme"`
	Language string `json:"language"`
	Currency string `json:"currency"`
}

// DefaultPreferences returns the preferences applied before the user
// customizes anything.
func DefaultPreferences() Preferences {
	return Preferences{Theme: "light", Language: "zh-CN", Currency: "CNY"}
}
