package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/Veraticus/claimflow/internal/common"
	"github.com/Veraticus/claimflow/internal/model"
)

func TestSQLiteStorage_CreateAndGetUser(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	user := createTestUser(t, store, "alice", model.RoleEmployee)
	if user.ID == 0 {
		t.Fatal("CreateUser did not assign an id")
	}

	byID, err := store.GetUserByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetUserByID failed: %v", err)
	}
	if byID.Username != "alice" || byID.Role != model.RoleEmployee {
		t.Errorf("GetUserByID returned %+v", byID)
	}

	byName, err := store.GetUserByUsername(ctx, "alice")
	if err != nil {
		t.Fatalf("GetUserByUsername failed: %v", err)
	}
	if byName.ID != user.ID {
		t.Errorf("GetUserByUsername id = %d, want %d", byName.ID, user.ID)
	}
}

func TestSQLiteStorage_GetUserNotFound(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	if _, err := store.GetUserByID(ctx, 404); !errors.Is(err, common.ErrNotFound) {
		t.Errorf("GetUserByID error = %v, want ErrNotFound", err)
	}
	if _, err := store.GetUserByUsername(ctx, "nobody"); !errors.Is(err, common.ErrNotFound) {
		t.Errorf("GetUserByUsername error = %v, want ErrNotFound", err)
	}
}

func TestSQLiteStorage_CreateUserDuplicateUsername(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()

	createTestUser(t, store, "alice", model.RoleEmployee)

	dup := &model.User{
		Username:     "alice",
		PasswordHash: "hash",
		FullName:     "Other Alice",
		Email:        "other@example.com",
		Role:         model.RoleManager,
	}
	if err := store.CreateUser(context.Background(), dup); err == nil {
		t.Error("CreateUser with duplicate username succeeded, want error")
	}
}

func TestSQLiteStorage_ListUsers(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()

	createTestUser(t, store, "carol", model.RoleFinance)
	createTestUser(t, store, "alice", model.RoleEmployee)
	createTestUser(t, store, "bob", model.RoleManager)

	users, err := store.ListUsers(context.Background())
	if err != nil {
		t.Fatalf("ListUsers failed: %v", err)
	}
	if len(users) != 3 {
		t.Fatalf("ListUsers returned %d users, want 3", len(users))
	}
	// Ordered by username.
	if users[0].Username != "alice" || users[2].Username != "carol" {
		t.Errorf("ListUsers order = %q, %q, %q", users[0].Username, users[1].Username, users[2].Username)
	}
}
