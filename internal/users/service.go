package users

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/caduceus/pkg/auth"
)

type service struct {
	store      Store
	tokens     *auth.Tokens
	bcryptCost int
	logger     *slog.Logger
	maxBody    int64
	now        func() time.Time
}

// New creates a System over store. Tokens are issued by tokens and
// passwords are hashed at bcryptCost.
func New(store Store, tokens *auth.Tokens, bcryptCost int, logger *slog.Logger, maxBody int64) System {
	return &service{
		store:      store,
		tokens:     tokens,
		bcryptCost: bcryptCost,
		logger:     logger.With("system", "users"),
		maxBody:    maxBody,
		now:        time.Now,
	}
}

func (s *service) Handler() *Handler {
	return NewHandler(s, s.logger, s.maxBody)
}

func (s *service) Register(ctx context.Context, cmd RegisterCommand) (User, error) {
	cmd.normalize()
	specialization, err := cmd.validate()
	if err != nil {
		return User{}, err
	}

	hash, err := auth.HashPassword(cmd.Password, s.bcryptCost)
	if err != nil {
		return User{}, fmt.Errorf("hash password: %w", err)
	}

	now := s.now().UTC()
	u, err := s.store.Create(ctx, User{
		ID:             uuid.New(),
		Email:          cmd.Email,
		PasswordHash:   hash,
		FirstName:      cmd.FirstName,
		LastName:       cmd.LastName,
		Role:           cmd.Role,
		Specialization: specialization,
		LicenseNumber:  cmd.LicenseNumber,
		CreatedAt:      now,
		UpdatedAt:      now,
	})
	if err != nil {
		return User{}, err
	}

	s.logger.Info("user registered", "id", u.ID, "role", u.Role)
	return u, nil
}

func (s *service) Login(ctx context.Context, cmd LoginCommand) (Session, error) {
	u, err := s.store.GetByEmail(ctx, normalizeEmail(cmd.Email))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Session{}, auth.ErrInvalidCredentials
		}
		return Session{}, err
	}

	if err := auth.CheckPassword(u.PasswordHash, cmd.Password); err != nil {
		return Session{}, err
	}

	token, expires, err := s.tokens.Issue(u.Principal())
	if err != nil {
		return Session{}, err
	}

	return Session{
		Token:     token,
		TokenType: "bearer",
		ExpiresAt: expires,
		User:      u,
	}, nil
}

func (s *service) Find(ctx context.Context, id uuid.UUID) (User, error) {
	return s.store.Get(ctx, id)
}

func (s *service) UpdateProfile(ctx context.Context, id uuid.UUID, cmd ProfileCommand) (User, error) {
	specialization, err := cmd.validate()
	if err != nil {
		return User{}, err
	}

	u, err := s.store.Get(ctx, id)
	if err != nil {
		return User{}, err
	}

	u.FirstName = strings.TrimSpace(cmd.FirstName)
	u.LastName = strings.TrimSpace(cmd.LastName)
	u.Specialization = specialization
	u.LicenseNumber = strings.TrimSpace(cmd.LicenseNumber)
	u.UpdatedAt = s.now().UTC()

	updated, err := s.store.Update(ctx, u)
	if err != nil {
		return User{}, err
	}

	s.logger.Info("profile updated", "id", id)
	return updated, nil
}
