//go:build !integration

package usecase_test

import (
	"context"
	"errors"
	"testing"

	"vip-content-platform/internal/domain"
	"vip-content-platform/internal/domain/model"
	"vip-content-platform/internal/usecase"
)

func TestUserUseCase_Register(t *testing.T) {
	ctx := context.Background()
	users := NewMockUserRepo()
	activity := NewMockActivityLogRepo()
	uc := usecase.NewUserUseCase(users, activity, newTestLogger())

	t.Run("registers a new user", func(t *testing.T) {
		u, err := uc.Register(ctx, "", "alice", "alice@example.test")
		if err != nil {
			t.Fatalf("expected no error, but got: %v", err)
		}
		if u.ID == "" || u.IsVIP {
			t.Errorf("expected a fresh non-vip user with an id, got %+v", u)
		}
	})

	t.Run("rejects a taken username", func(t *testing.T) {
		if _, err := uc.Register(ctx, "", "alice", "other@example.test"); !errors.Is(err, domain.ErrAlreadyExists) {
			t.Fatalf("expected ErrAlreadyExists, got %v", err)
		}
	})
}

func TestUserUseCase_GrantVIP(t *testing.T) {
	ctx := context.Background()

	t.Run("grants lifetime vip and logs it", func(t *testing.T) {
		// --- Arrange ---
		users := NewMockUserRepo()
		activity := NewMockActivityLogRepo()
		uc := usecase.NewUserUseCase(users, activity, newTestLogger())
		u, _ := model.NewUser("user-1", "bob", "")
		_ = users.Save(ctx, nil, u)

		// --- Act ---
		err := uc.GrantVIP(ctx, "user-1", "admin-1")

		// --- Assert ---
		if err != nil {
			t.Fatalf("expected no error, but got: %v", err)
		}
		got, _ := users.FindByID(ctx, nil, "user-1")
		if !got.IsVIP || got.VIPUntil != nil {
			t.Errorf("expected a lifetime vip grant, got %+v", got)
		}
		if activity.CountByAction(model.ActivityVIPGranted) != 1 {
			t.Error("expected one vip_granted activity entry")
		}
	})

	t.Run("re-granting an existing vip is refused", func(t *testing.T) {
		// --- Arrange ---
		users := NewMockUserRepo()
		activity := NewMockActivityLogRepo()
		uc := usecase.NewUserUseCase(users, activity, newTestLogger())
		u, _ := model.NewUser("user-1", "bob", "")
		u.IsVIP = true
		_ = users.Save(ctx, nil, u)

		// --- Act / Assert ---
		if err := uc.GrantVIP(ctx, "user-1", "admin-1"); !errors.Is(err, domain.ErrAlreadyVIP) {
			t.Fatalf("expected ErrAlreadyVIP, got %v", err)
		}
		if activity.CountByAction(model.ActivityVIPGranted) != 0 {
			t.Error("a refused grant must not log activity")
		}
	})
}

func TestNotificationUseCase_NotifyAdmin(t *testing.T) {
	ctx := context.Background()

	t.Run("persists the notice", func(t *testing.T) {
		repo := NewMockNotificationRepo()
		uc := usecase.NewNotificationUseCase(repo, newTestLogger())

		uc.NotifyAdmin(ctx, model.NotificationKindPaymentDone, "payment done")

		if len(repo.Saved) != 1 || repo.Saved[0].Recipient != "admin" {
			t.Fatalf("expected one admin notification, got %+v", repo.Saved)
		}
	})

	t.Run("a failed insert is swallowed", func(t *testing.T) {
		repo := NewMockNotificationRepo()
		repo.SaveErr = errors.New("db down")
		uc := usecase.NewNotificationUseCase(repo, newTestLogger())

		// Must not panic or surface anything.
		uc.NotifyAdmin(ctx, model.NotificationKindPaymentDone, "payment done")

		if len(repo.Saved) != 0 {
			t.Fatal("nothing should have been saved")
		}
	})
}
