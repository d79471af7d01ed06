package users

import (
	"context"

	"github.com/google/uuid"
)

// System manages accounts and sessions.
type System interface {
	Handler() *Handler

	Register(ctx context.Context, cmd RegisterCommand) (User, error)
	Login(ctx context.Context, cmd LoginCommand) (Session, error)
	Find(ctx context.Context, id uuid.UUID) (User, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, cmd ProfileCommand) (User, error)
}
