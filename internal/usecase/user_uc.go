package usecase

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"vip-content-platform/internal/domain"
	"vip-content-platform/internal/domain/model"
	"vip-content-platform/internal/domain/ports/repository"
	"vip-content-platform/internal/infra/metrics"
)

var _ UserUseCase = (*userUC)(nil)

type UserUseCase interface {
	Register(ctx context.Context, id, username, email string) (*model.User, error)
	Get(ctx context.Context, id string) (*model.User, error)
	// GrantVIP is the admin override for the paid path. It writes the same
	// idempotent lifetime grant a completed payment would.
	GrantVIP(ctx context.Context, userID, grantedBy string) error
	Count(ctx context.Context) (int, error)
	List(ctx context.Context, offset, limit int) ([]*model.User, error)
}

type userUC struct {
	users    repository.UserRepository
	activity repository.ActivityLogRepository
	log      *zerolog.Logger
}

func NewUserUseCase(users repository.UserRepository, activity repository.ActivityLogRepository, logger *zerolog.Logger) *userUC {
	return &userUC{users: users, activity: activity, log: logger}
}

func (u *userUC) Register(ctx context.Context, id, username, email string) (*model.User, error) {
	if existing, err := u.users.FindByUsername(ctx, repository.NoTX, username); err == nil && !existing.IsZero() {
		return nil, domain.ErrAlreadyExists
	} else if err != nil && err != domain.ErrNotFound {
		return nil, err
	}
	user, err := model.NewUser(id, username, email)
	if err != nil {
		return nil, err
	}
	if err := u.users.Save(ctx, repository.NoTX, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (u *userUC) Get(ctx context.Context, id string) (*model.User, error) {
	return u.users.FindByID(ctx, repository.NoTX, id)
}

func (u *userUC) GrantVIP(ctx context.Context, userID, grantedBy string) error {
	user, err := u.users.FindByID(ctx, repository.NoTX, userID)
	if err != nil {
		return err
	}
	if user.IsVIP {
		return domain.ErrAlreadyVIP
	}
	if err := u.users.SetVIP(ctx, repository.NoTX, userID, true); err != nil {
		return err
	}
	metrics.IncVIPGrant()
	if err := u.activity.Save(ctx, repository.NoTX, model.NewActivityLog(userID, model.ActivityVIPGranted,
		fmt.Sprintf("lifetime vip granted by admin %s", grantedBy))); err != nil {
		u.log.Error().Err(err).Str("user_id", userID).Msg("write grant activity")
	}
	return nil
}

func (u *userUC) Count(ctx context.Context) (int, error) {
	return u.users.Count(ctx, repository.NoTX)
}

func (u *userUC) List(ctx context.Context, offset, limit int) ([]*model.User, error) {
	return u.users.List(ctx, repository.NoTX, offset, limit)
}
