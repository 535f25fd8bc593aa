package users

import (
	"time"

	"hirepath-backend/internal/rbac"
)

// User is a platform account: candidate, recruiter, or admin.
type User struct {
	ID              string     `json:"id"`
	Email           string     `json:"email"`
	Username        string     `json:"username"`
	PasswordHash    string     `json:"-"`
	FullName        string     `json:"fullName"`
	Role            rbac.Role  `json:"role"`
	EmailVerifiedAt *time.Time `json:"emailVerifiedAt,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

// Verified reports whether the account's email has been confirmed.
func (u User) Verified() bool {
	return u.EmailVerifiedAt != nil
}
