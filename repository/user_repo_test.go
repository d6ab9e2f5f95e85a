package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/kurakani/kurakani/models"
)

func TestCreateAndFindUser(t *testing.T) {
	repo := NewUserRepository(newTestDB(t))
	ctx := context.Background()

	user := models.User{Username: "alice", Password: "hashed-pw", Email: "alice@example.com"}
	if err := repo.Create(ctx, &user); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if user.ID == 0 {
		t.Error("Create did not assign an id")
	}

	got, err := repo.FindByUsername(ctx, "alice")
	if err != nil {
		t.Fatalf("FindByUsername: %v", err)
	}
	if got.Email != "alice@example.com" || got.Password != "hashed-pw" {
		t.Errorf("stored user = %+v", got)
	}
}

func TestCreateDuplicateUsernameConflicts(t *testing.T) {
	repo := NewUserRepository(newTestDB(t))
	ctx := context.Background()

	first := models.User{Username: "bob", Password: "hash-1", Email: "bob@example.com"}
	if err := repo.Create(ctx, &first); err != nil {
		t.Fatalf("Create: %v", err)
	}

	second := models.User{Username: "bob", Password: "hash-2", Email: "other@example.com"}
	if err := repo.Create(ctx, &second); !errors.Is(err, ErrUserExists) {
		t.Fatalf("duplicate username: err = %v, want ErrUserExists", err)
	}

	// The first credential is unaffected.
	got, err := repo.FindByUsername(ctx, "bob")
	if err != nil {
		t.Fatalf("FindByUsername: %v", err)
	}
	if got.Password != "hash-1" || got.Email != "bob@example.com" {
		t.Errorf("first credential changed: %+v", got)
	}
}

func TestCreateDuplicateEmailConflicts(t *testing.T) {
	repo := NewUserRepository(newTestDB(t))
	ctx := context.Background()

	if err := repo.Create(ctx, &models.User{Username: "carol", Password: "h", Email: "shared@example.com"}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	err := repo.Create(ctx, &models.User{Username: "dave", Password: "h", Email: "shared@example.com"})
	if !errors.Is(err, ErrUserExists) {
		t.Fatalf("duplicate email: err = %v, want ErrUserExists", err)
	}
}

func TestFindByUsernameNotFound(t *testing.T) {
	repo := NewUserRepository(newTestDB(t))

	_, err := repo.FindByUsername(context.Background(), "nobody")
	if !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("err = %v, want ErrUserNotFound", err)
	}
}
