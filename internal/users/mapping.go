package users

import (
	"database/sql"

	"github.com/JaimeStill/caduceus/internal/queries"
	"github.com/JaimeStill/caduceus/pkg/query"
	"github.com/JaimeStill/caduceus/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "users", "u").
	Project("id", "ID").
	Project("email", "Email").
	Project("password_hash", "PasswordHash").
	Project("first_name", "FirstName").
	Project("last_name", "LastName").
	Project("role", "Role").
	Project("specialization", "Specialization").
	Project("license_number", "LicenseNumber").
	Project("created_at", "CreatedAt").
	Project("updated_at", "UpdatedAt")

func scanUser(s repository.Scanner) (User, error) {
	var (
		u              User
		specialization sql.NullString
		license        sql.NullString
	)

	err := s.Scan(
		&u.ID,
		&u.Email,
		&u.PasswordHash,
		&u.FirstName,
		&u.LastName,
		&u.Role,
		&specialization,
		&license,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return u, err
	}

	if specialization.Valid {
		c := queries.Category(specialization.String)
		u.Specialization = &c
	}
	u.LicenseNumber = license.String
	return u, nil
}

func nullCategory(c *queries.Category) sql.NullString {
	if c == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: string(*c), Valid: true}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
