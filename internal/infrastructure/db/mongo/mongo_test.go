package mongo

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/perfilapp/perfil/internal/core/domain"
)

func TestToDocument_UsesStoredFieldNames(t *testing.T) {
	created := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	doc, err := toDocument("u1", &domain.ProfileRecord{
		UID:       "u1",
		Name:      "Ana Torres",
		Email:     "ana@example.com",
		Age:       30,
		Specialty: "Software Development",
		CreatedAt: created,
	})
	if err != nil {
		t.Fatalf("toDocument: %v", err)
	}

	if doc["_id"] != "u1" || doc["uid"] != "u1" {
		t.Fatalf("expected _id and uid set, got %v", doc)
	}
	if doc["edad"] != int32(30) {
		t.Fatalf("expected edad=30, got %#v", doc["edad"])
	}
	if doc["especialidad"] != "Software Development" {
		t.Fatalf("expected especialidad, got %#v", doc["especialidad"])
	}
	if _, ok := doc["createdAt"]; !ok {
		t.Fatal("expected createdAt")
	}
	if _, ok := doc["updatedAt"]; ok {
		t.Fatal("updatedAt must be omitted when unset")
	}
}

func TestStoreError_ClassifiesTimeouts(t *testing.T) {
	err := storeError("find account", fmt.Errorf("wrapped: %w", context.DeadlineExceeded))

	var be *domain.BackendError
	if !errors.As(err, &be) || be.Code != domain.CodeNetworkFailed {
		t.Fatalf("expected network failure, got %v", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatal("expected cause to be kept")
	}

	plain := storeError("find account", errors.New("bad document"))
	if errors.As(plain, &be) {
		t.Fatalf("expected plain wrapped error, got %v", plain)
	}
	if storeError("noop", nil) != nil {
		t.Fatal("expected nil")
	}
}

func TestUnixToTime(t *testing.T) {
	if !unixToTime(0).IsZero() {
		t.Fatal("expected zero time for 0")
	}
	if got := unixToTime(1773480600); got.Location() != time.UTC {
		t.Fatalf("expected UTC, got %v", got.Location())
	}
}
