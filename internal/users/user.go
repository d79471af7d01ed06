// Package users manages patient and clinician accounts: registration,
// credential login and clinician profiles.
package users

import (
	"net/mail"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"

	"github.com/JaimeStill/caduceus/internal/queries"
	"github.com/JaimeStill/caduceus/pkg/auth"
)

var licensePattern = regexp.MustCompile(`^[A-Z]{3}-\d{7}$`)

// User is a registered account. Specialization and LicenseNumber are set
// only for clinicians.
type User struct {
	ID             uuid.UUID         `json:"id"`
	Email          string            `json:"email"`
	PasswordHash   string            `json:"-"`
	FirstName      string            `json:"first_name"`
	LastName       string            `json:"last_name"`
	Role           string            `json:"role"`
	Specialization *queries.Category `json:"specialization,omitempty"`
	LicenseNumber  string            `json:"license_number,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
}

// Principal returns the token subject for u.
func (u User) Principal() auth.Principal {
	return auth.Principal{UserID: u.ID, Role: u.Role}
}

// RegisterCommand is the registration request body.
type RegisterCommand struct {
	Email          string `json:"email"`
	Password       string `json:"password"`
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	Role           string `json:"role"`
	Specialization string `json:"specialization,omitempty"`
	LicenseNumber  string `json:"license_number,omitempty"`
}

// LoginCommand is the login request body.
type LoginCommand struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ProfileCommand updates a clinician's profile.
type ProfileCommand struct {
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	Specialization string `json:"specialization"`
	LicenseNumber  string `json:"license_number"`
}

// Session is returned by a successful login.
type Session struct {
	Token     string    `json:"access_token"`
	TokenType string    `json:"token_type"`
	ExpiresAt time.Time `json:"expires_at"`
	User      User      `json:"user"`
}

func (c *RegisterCommand) normalize() {
	c.Email = normalizeEmail(c.Email)
	c.FirstName = strings.TrimSpace(c.FirstName)
	c.LastName = strings.TrimSpace(c.LastName)
	c.Role = strings.ToLower(strings.TrimSpace(c.Role))
	c.LicenseNumber = strings.TrimSpace(c.LicenseNumber)
}

// validate checks the command and returns the parsed specialization for
// clinicians.
func (c RegisterCommand) validate() (*queries.Category, error) {
	if c.Email == "" || c.Password == "" || c.FirstName == "" || c.LastName == "" || c.Role == "" {
		return nil, ErrMissingField
	}
	if !validEmail(c.Email) {
		return nil, ErrInvalidEmail
	}
	if !strongPassword(c.Password) {
		return nil, ErrWeakPassword
	}

	switch c.Role {
	case auth.RolePatient:
		return nil, nil
	case auth.RoleClinician:
		return clinicianDetails(c.Specialization, c.LicenseNumber)
	default:
		return nil, ErrInvalidRole
	}
}

func (c ProfileCommand) validate() (*queries.Category, error) {
	if strings.TrimSpace(c.FirstName) == "" || strings.TrimSpace(c.LastName) == "" {
		return nil, ErrMissingField
	}
	return clinicianDetails(c.Specialization, strings.TrimSpace(c.LicenseNumber))
}

func clinicianDetails(specialization, license string) (*queries.Category, error) {
	cat, err := queries.ParseCategory(specialization)
	if err != nil || !cat.Specialization() {
		return nil, ErrInvalidSpecialization
	}
	if !licensePattern.MatchString(license) {
		return nil, ErrInvalidLicense
	}
	return &cat, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return false
	}
	at := strings.LastIndex(email, "@")
	return strings.Contains(email[at+1:], ".")
}

func strongPassword(p string) bool {
	if len(p) < 8 {
		return false
	}
	var upper, lower, digit bool
	for _, r := range p {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	return upper && lower && digit
}
