package users

import "time"

// User is the account row. The password hash never leaves the server.
type User struct {
	ID           int        `json:"id"`
	Email        string     `json:"email"`
	Username     string     `json:"username"`
	PasswordHash string     `json:"-"`
	IsActive     bool       `json:"isActive"`
	LastLoginAt  *time.Time `json:"lastLoginAt,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
}

// Profile holds the optional extras of an account: body measurements and
// display preferences. Each user has exactly one, created empty on register.
type Profile struct {
	UserID              int        `json:"userId"`
	FirstName           string     `json:"firstName"`
	LastName            string     `json:"lastName"`
	DateOfBirth         *time.Time `json:"dateOfBirth,omitempty"`
	HeightCm            *int       `json:"heightCm,omitempty"`
	WeightKg            *float64   `json:"weightKg,omitempty"`
	PreferredWeightUnit string     `json:"preferredWeightUnit"`
	UpdatedAt           time.Time  `json:"updatedAt"`
}
