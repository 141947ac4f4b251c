package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"tookjai-pos/internal/domain"

	"github.com/google/uuid"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func newTestMember(points int64) *domain.Member {
	now := time.Now()
	return &domain.Member{
		Phone:     fmt.Sprintf("08%08d", uuid.New().ID()%100000000),
		Name:      "Somchai",
		Points:    points,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Feature: pos-settlement, Property 2: Point deltas compose
func TestProperty_AddPointsAccumulates(t *testing.T) {
	repo := NewMemberRepository(testDB)
	ctx := context.Background()

	properties := gopter.NewProperties(nil)

	properties.Property("balance equals start plus the sum of deltas", prop.ForAll(
		func(start int64, deltas []int64) bool {
			member := newTestMember(start)
			_, _ = testDB.Exec("DELETE FROM members WHERE phone = $1", member.Phone)
			if err := repo.Create(ctx, member); err != nil {
				t.Logf("FAIL: Failed to create member: %v", err)
				return false
			}
			defer testDB.Exec("DELETE FROM members WHERE phone = $1", member.Phone)

			want := start
			for _, delta := range deltas {
				want += delta
				balance, err := repo.AddPoints(ctx, member.Phone, delta)
				if err != nil {
					t.Logf("FAIL: Failed to add points: %v", err)
					return false
				}
				if balance != want {
					t.Logf("FAIL: balance = %d, want %d", balance, want)
					return false
				}
			}

			stored, err := repo.FindByPhone(ctx, member.Phone)
			if err != nil {
				t.Logf("FAIL: Failed to reload member: %v", err)
				return false
			}
			return stored.Points == want
		},
		gen.Int64Range(0, 10000),
		gen.SliceOfN(5, gen.Int64Range(-100, 500)),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestMemberCreateDuplicatePhone(t *testing.T) {
	repo := NewMemberRepository(testDB)
	ctx := context.Background()

	member := newTestMember(0)
	_, _ = testDB.Exec("DELETE FROM members WHERE phone = $1", member.Phone)
	if err := repo.Create(ctx, member); err != nil {
		t.Fatalf("Failed to create member: %v", err)
	}

	if err := repo.Create(ctx, member); !errors.Is(err, ErrMemberAlreadyExists) {
		t.Fatalf("expected ErrMemberAlreadyExists, got %v", err)
	}
}

func TestMemberUnknownPhone(t *testing.T) {
	repo := NewMemberRepository(testDB)
	ctx := context.Background()

	if _, err := repo.FindByPhone(ctx, "no-such-phone"); !errors.Is(err, ErrMemberNotFound) {
		t.Errorf("FindByPhone: expected ErrMemberNotFound, got %v", err)
	}
	if _, err := repo.AddPoints(ctx, "no-such-phone", 5); !errors.Is(err, ErrMemberNotFound) {
		t.Errorf("AddPoints: expected ErrMemberNotFound, got %v", err)
	}
	if err := repo.SetPoints(ctx, "no-such-phone", 5); !errors.Is(err, ErrMemberNotFound) {
		t.Errorf("SetPoints: expected ErrMemberNotFound, got %v", err)
	}
}

func TestMemberSetPoints(t *testing.T) {
	repo := NewMemberRepository(testDB)
	ctx := context.Background()

	member := newTestMember(10)
	_, _ = testDB.Exec("DELETE FROM members WHERE phone = $1", member.Phone)
	if err := repo.Create(ctx, member); err != nil {
		t.Fatalf("Failed to create member: %v", err)
	}

	if err := repo.SetPoints(ctx, member.Phone, 250); err != nil {
		t.Fatalf("Failed to set points: %v", err)
	}

	stored, err := repo.FindByPhone(ctx, member.Phone)
	if err != nil {
		t.Fatalf("Failed to find member: %v", err)
	}
	if stored.Points != 250 {
		t.Errorf("Points = %d, want 250", stored.Points)
	}
}
