package repository

import (
	"context"
	"testing"
	"time"

	"github.com/KRaymonne/pro/internal/apperr"
	"github.com/KRaymonne/pro/internal/models"
)

func seedUserAndPoem(t *testing.T) (uint, uint) {
	t.Helper()
	ctx := context.Background()

	user := &models.User{LastName: "Dupont", FirstName: "Marie", Email: "marie@ecole.fr", Role: models.RoleStudent}
	if err := user.SetPassword("password123"); err != nil {
		t.Fatalf("set password: %v", err)
	}
	if err := CreateUser(ctx, user); err != nil {
		t.Fatalf("create user: %v", err)
	}

	poem := &models.Poem{Title: "La Fourmi", Author: "Robert Desnos", Content: "Une fourmi...", Level: models.LevelBeginner, Theme: "imagination", Difficulty: "facile", Active: true}
	if err := CreatePoem(ctx, poem); err != nil {
		t.Fatalf("create poem: %v", err)
	}
	return user.ID, poem.ID
}

func TestGetOrCreateSessionResumes(t *testing.T) {
	setupTestDB(t)
	userID, poemID := seedUserAndPoem(t)
	ctx := context.Background()
	start := time.Date(2024, time.May, 2, 9, 0, 0, 0, time.UTC)

	created, resumed, err := GetOrCreateSession(ctx, userID, poemID, start)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if resumed || created.Attempt != 1 {
		t.Errorf("create: resumed=%v attempt=%d", resumed, created.Attempt)
	}

	again, resumed, err := GetOrCreateSession(ctx, userID, poemID, start.Add(time.Minute))
	if err != nil {
		t.Fatalf("resume: %v", err)
	}
	if !resumed || again.ID != created.ID {
		t.Errorf("resume: resumed=%v id=%d want id=%d", resumed, again.ID, created.ID)
	}
	// The resumed session keeps its original start.
	if !again.StartedAt.Equal(start) {
		t.Errorf("resumed StartedAt = %v, want %v", again.StartedAt, start)
	}
}

func TestFindActiveSessionAbsent(t *testing.T) {
	setupTestDB(t)
	userID, poemID := seedUserAndPoem(t)

	session, err := FindActiveSession(context.Background(), userID, poemID)
	if err != nil {
		t.Fatalf("FindActiveSession: %v", err)
	}
	if session != nil {
		t.Errorf("expected no active session, got %+v", session)
	}
}

func TestGetSessionForUserScopesOwnership(t *testing.T) {
	setupTestDB(t)
	userID, poemID := seedUserAndPoem(t)
	ctx := context.Background()

	session, _, err := GetOrCreateSession(ctx, userID, poemID, time.Now())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := GetSessionForUser(ctx, session.ID, userID+1); !apperr.Is(err, apperr.KindNotFound) {
		t.Errorf("foreign user access: got %v, want not-found error", err)
	}
}

func TestListSessionsFiltersStatus(t *testing.T) {
	setupTestDB(t)
	userID, poemID := seedUserAndPoem(t)
	ctx := context.Background()
	start := time.Date(2024, time.May, 2, 9, 0, 0, 0, time.UTC)

	session, _, err := GetOrCreateSession(ctx, userID, poemID, start)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	session.Status = models.StatusAbandoned
	if err := SaveSession(ctx, nil, session); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, _, err := GetOrCreateSession(ctx, userID, poemID, start.Add(time.Hour)); err != nil {
		t.Fatalf("second create: %v", err)
	}

	all, total, err := ListSessions(ctx, userID, "", 1, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 2 || len(all) != 2 {
		t.Errorf("list all: total=%d len=%d, want 2/2", total, len(all))
	}

	abandoned, total, err := ListSessions(ctx, userID, models.StatusAbandoned, 1, 10)
	if err != nil {
		t.Fatalf("filtered list: %v", err)
	}
	if total != 1 || len(abandoned) != 1 || abandoned[0].Status != models.StatusAbandoned {
		t.Errorf("filtered list: total=%d rows=%+v", total, abandoned)
	}
}

func TestAddFavoriteRejectsDuplicates(t *testing.T) {
	setupTestDB(t)
	userID, poemID := seedUserAndPoem(t)
	ctx := context.Background()

	if _, err := AddFavorite(ctx, userID, poemID); err != nil {
		t.Fatalf("add favorite: %v", err)
	}
	if _, err := AddFavorite(ctx, userID, poemID); !apperr.Is(err, apperr.KindConflict) {
		t.Errorf("duplicate favorite: got %v, want conflict error", err)
	}

	if err := RemoveFavorite(ctx, userID, poemID); err != nil {
		t.Fatalf("remove favorite: %v", err)
	}
	if err := RemoveFavorite(ctx, userID, poemID); !apperr.Is(err, apperr.KindNotFound) {
		t.Errorf("remove absent favorite: got %v, want not-found error", err)
	}
}
