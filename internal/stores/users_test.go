package stores

import (
	"context"
	"errors"
	"testing"
)

func testRecord(id, email string) *UserRecord {
	return &UserRecord{
		ID:           id,
		Email:        email,
		FirstName:    "A",
		Origin:       "local",
		PasswordHash: "$argon2id$...",
	}
}

func TestUserStoreCreateAndGet(t *testing.T) {
	store := NewMemoryUserStore()
	ctx := context.Background()

	if err := store.Create(ctx, testRecord("u1", "a@x.com")); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	byID, err := store.GetByID(ctx, "u1")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	byEmail, err := store.GetByEmail(ctx, "a@x.com")
	if err != nil {
		t.Fatalf("GetByEmail failed: %v", err)
	}
	if byID.ID != byEmail.ID {
		t.Fatal("index lookups disagree")
	}

	if _, err := store.GetByID(ctx, "missing"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("missing id = %v, want ErrUserNotFound", err)
	}
	if _, err := store.GetByEmail(ctx, "missing@x.com"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("missing email = %v, want ErrUserNotFound", err)
	}
}

func TestUserStoreRejectsDuplicateEmail(t *testing.T) {
	store := NewMemoryUserStore()
	ctx := context.Background()

	if err := store.Create(ctx, testRecord("u1", "a@x.com")); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := store.Create(ctx, testRecord("u2", "a@x.com")); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("duplicate email = %v, want ErrEmailTaken", err)
	}
}

func TestUserStoreUpdate(t *testing.T) {
	store := NewMemoryUserStore()
	ctx := context.Background()

	if err := store.Create(ctx, testRecord("u1", "a@x.com")); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	rec, err := store.GetByID(ctx, "u1")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	rec.BiometricEnabled = true
	rec.PasswordHash = "$argon2id$new"
	if err := store.Update(ctx, rec); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	stored, err := store.GetByID(ctx, "u1")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if !stored.BiometricEnabled || stored.PasswordHash != "$argon2id$new" {
		t.Fatalf("update not applied: %+v", stored)
	}

	// The email is immutable once created.
	stored.Email = "b@x.com"
	if err := store.Update(ctx, stored); err == nil {
		t.Fatal("email change accepted")
	}

	ghost := testRecord("missing", "g@x.com")
	if err := store.Update(ctx, ghost); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("update of missing record = %v, want ErrUserNotFound", err)
	}
}

func TestUserStoreReturnsCopies(t *testing.T) {
	store := NewMemoryUserStore()
	ctx := context.Background()

	if err := store.Create(ctx, testRecord("u1", "a@x.com")); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	rec, err := store.GetByID(ctx, "u1")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	rec.PasswordHash = "mutated"

	again, err := store.GetByID(ctx, "u1")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if again.PasswordHash == "mutated" {
		t.Fatal("stored record mutated through a returned copy")
	}
}
