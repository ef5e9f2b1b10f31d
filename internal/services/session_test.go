package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/KRaymonne/pro/internal/apperr"
	"github.com/KRaymonne/pro/internal/database"
	"github.com/KRaymonne/pro/internal/models"
	"github.com/KRaymonne/pro/internal/repository"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
)

// memStorage is an in-memory MediaStorage for tests. It can be told to fail
// and remembers every delete it was asked for.
type memStorage struct {
	mu        sync.Mutex
	files     map[string][]byte
	deleted   []string
	failStore bool
}

func newMemStorage() *memStorage {
	return &memStorage{files: map[string][]byte{}}
}

func (m *memStorage) Store(_ context.Context, name string, r io.Reader) (string, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failStore {
		return "", 0, apperr.Storage("échec de l'enregistrement du fichier audio", io.ErrClosedPipe)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", 0, err
	}
	ref := "/uploads/audio/" + name
	m.files[ref] = data
	return ref, int64(len(data)), nil
}

func (m *memStorage) Delete(_ context.Context, ref string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, ref)
	delete(m.files, ref)
	return nil
}

func (m *memStorage) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.files)
}

func setupTestDB(t *testing.T) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	if err := database.Connect(sqlite.Open(dsn), zap.NewNop()); err != nil {
		t.Fatalf("connect test database: %v", err)
	}
}

func seedUserAndPoem(t *testing.T) (uint, uint) {
	t.Helper()
	ctx := context.Background()

	user := &models.User{
		LastName:  "Dupont",
		FirstName: "Marie",
		Email:     "marie.dupont@ecole.fr",
		Role:      models.RoleStudent,
		Class:     "CE2-A",
	}
	if err := user.SetPassword("password123"); err != nil {
		t.Fatalf("set password: %v", err)
	}
	if err := repository.CreateUser(ctx, user); err != nil {
		t.Fatalf("create user: %v", err)
	}

	poem := &models.Poem{
		Title:      "La Fourmi",
		Author:     "Robert Desnos",
		Content:    "Une fourmi de dix-huit mètres...",
		Level:      models.LevelBeginner,
		Theme:      "imagination",
		Difficulty: "facile",
		Active:     true,
	}
	if err := repository.CreatePoem(ctx, poem); err != nil {
		t.Fatalf("create poem: %v", err)
	}
	return user.ID, poem.ID
}

func testService(storage MediaStorage, now time.Time) *SessionService {
	svc := NewSessionService(zap.NewNop(), storage)
	svc.now = func() time.Time { return now }
	return svc
}

func audioUpload(name string) RecordingUpload {
	return RecordingUpload{
		Data:     bytes.NewReader([]byte("fake audio bytes")),
		Filename: name,
		Duration: 44.1,
	}
}

func TestStartCreatesThenResumes(t *testing.T) {
	setupTestDB(t)
	userID, poemID := seedUserAndPoem(t)
	ctx := context.Background()
	start := time.Date(2024, time.May, 2, 9, 0, 0, 0, time.UTC)
	svc := testService(newMemStorage(), start)

	first, resumed, err := svc.Start(ctx, userID, poemID)
	if err != nil {
		t.Fatalf("first start: %v", err)
	}
	if resumed {
		t.Error("first start reported resumed")
	}
	if first.Status != models.StatusInProgress || first.Attempt != 1 {
		t.Errorf("first session = status %q attempt %d", first.Status, first.Attempt)
	}

	second, resumed, err := svc.Start(ctx, userID, poemID)
	if err != nil {
		t.Fatalf("second start: %v", err)
	}
	if !resumed {
		t.Error("second start should resume the active session")
	}
	if second.ID != first.ID {
		t.Errorf("second start returned session %d, want %d", second.ID, first.ID)
	}
}

func TestStartUnknownPoem(t *testing.T) {
	setupTestDB(t)
	userID, _ := seedUserAndPoem(t)
	svc := testService(newMemStorage(), time.Now())

	if _, _, err := svc.Start(context.Background(), userID, 9999); !apperr.Is(err, apperr.KindNotFound) {
		t.Errorf("start with unknown poem: got %v, want not-found error", err)
	}
}

func TestActiveSessionUniqueIndex(t *testing.T) {
	setupTestDB(t)
	userID, poemID := seedUserAndPoem(t)
	start := time.Date(2024, time.May, 2, 9, 0, 0, 0, time.UTC)

	first := &models.ReadingSession{UserID: userID, PoemID: poemID, StartedAt: start, Status: models.StatusInProgress, Attempt: 1}
	if err := database.DB.Create(first).Error; err != nil {
		t.Fatalf("insert first active session: %v", err)
	}
	// A second en-cours row for the same (user, poem) must be rejected by the
	// partial unique index; this is what makes concurrent starts safe.
	dup := &models.ReadingSession{UserID: userID, PoemID: poemID, StartedAt: start, Status: models.StatusInProgress, Attempt: 2}
	if err := database.DB.Create(dup).Error; err == nil {
		t.Fatal("duplicate active session was accepted")
	}
	// A terminal row for the same pair is fine.
	done := &models.ReadingSession{UserID: userID, PoemID: poemID, StartedAt: start, Status: models.StatusCompleted, Attempt: 2}
	if err := database.DB.Create(done).Error; err != nil {
		t.Fatalf("terminal session rejected: %v", err)
	}
}

func TestFinalizeDerivesDuration(t *testing.T) {
	setupTestDB(t)
	userID, poemID := seedUserAndPoem(t)
	ctx := context.Background()
	storage := newMemStorage()

	startedAt := time.Date(2024, time.May, 2, 9, 0, 0, 0, time.UTC)
	svc := testService(storage, startedAt)
	session, _, err := svc.Start(ctx, userID, poemID)
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	// Finalize 45.9 wall-clock seconds later: the stored duration truncates
	// to whole seconds.
	svc.now = func() time.Time { return startedAt.Add(45*time.Second + 900*time.Millisecond) }
	score := 87.5
	final, recording, err := svc.Finalize(ctx, userID, session.ID, FinalizeInput{
		Upload: audioUpload("prise1.webm"),
		Score:  &score,
	})
	if err != nil {
		t.Fatalf("finalize: %v", err)
	}

	if final.Status != models.StatusCompleted {
		t.Errorf("status = %q, want %q", final.Status, models.StatusCompleted)
	}
	if final.Duration == nil || *final.Duration != 45 {
		t.Errorf("duration = %v, want 45", final.Duration)
	}
	if final.Progression != 100 {
		t.Errorf("progression = %v, want 100", final.Progression)
	}
	if final.Score == nil || *final.Score != 87.5 {
		t.Errorf("score = %v, want 87.5", final.Score)
	}
	if final.RecordingID == nil || *final.RecordingID != recording.ID {
		t.Errorf("session not linked to recording: %v", final.RecordingID)
	}
	if recording.FileFormat != "webm" {
		t.Errorf("recording format = %q, want webm", recording.FileFormat)
	}
	if recording.Duration != 44.1 {
		t.Errorf("recording duration = %v, want the client-measured 44.1", recording.Duration)
	}
	if storage.count() != 1 {
		t.Errorf("stored files = %d, want 1", storage.count())
	}
}

func TestFinalizeIsTerminal(t *testing.T) {
	setupTestDB(t)
	userID, poemID := seedUserAndPoem(t)
	ctx := context.Background()
	storage := newMemStorage()
	startedAt := time.Date(2024, time.May, 2, 9, 0, 0, 0, time.UTC)
	svc := testService(storage, startedAt)

	session, _, err := svc.Start(ctx, userID, poemID)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, _, err := svc.Finalize(ctx, userID, session.ID, FinalizeInput{Upload: audioUpload("prise1.mp3")}); err != nil {
		t.Fatalf("finalize: %v", err)
	}

	// A second finalize must be rejected without touching the row.
	_, _, err = svc.Finalize(ctx, userID, session.ID, FinalizeInput{Upload: audioUpload("prise2.mp3")})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("re-finalize: got %v, want validation error", err)
	}
	if storage.count() != 1 {
		t.Errorf("re-finalize stored a new file: %d files", storage.count())
	}

	stored, err := repository.GetSessionForUser(ctx, session.ID, userID)
	if err != nil {
		t.Fatalf("reload session: %v", err)
	}
	if stored.Status != models.StatusCompleted {
		t.Errorf("status changed to %q", stored.Status)
	}
}

func TestFinalizeRejectsUnknownFormat(t *testing.T) {
	setupTestDB(t)
	userID, poemID := seedUserAndPoem(t)
	ctx := context.Background()
	storage := newMemStorage()
	svc := testService(storage, time.Now())

	session, _, err := svc.Start(ctx, userID, poemID)
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	_, _, err = svc.Finalize(ctx, userID, session.ID, FinalizeInput{Upload: audioUpload("notes.txt")})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("finalize with .txt: got %v, want validation error", err)
	}
	if storage.count() != 0 {
		t.Errorf("rejected upload still stored %d files", storage.count())
	}
}

func TestFinalizeStorageFailureLeavesSessionOpen(t *testing.T) {
	setupTestDB(t)
	userID, poemID := seedUserAndPoem(t)
	ctx := context.Background()
	storage := newMemStorage()
	storage.failStore = true
	svc := testService(storage, time.Now())

	session, _, err := svc.Start(ctx, userID, poemID)
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	_, _, err = svc.Finalize(ctx, userID, session.ID, FinalizeInput{Upload: audioUpload("prise1.mp3")})
	if !apperr.Is(err, apperr.KindStorage) {
		t.Fatalf("finalize with failing storage: got %v, want storage error", err)
	}

	stored, err := repository.GetSessionForUser(ctx, session.ID, userID)
	if err != nil {
		t.Fatalf("reload session: %v", err)
	}
	if stored.Status != models.StatusInProgress {
		t.Errorf("session status = %q, want %q", stored.Status, models.StatusInProgress)
	}
}

func TestFinalizeCompensatesStorageOnTxFailure(t *testing.T) {
	setupTestDB(t)
	userID, poemID := seedUserAndPoem(t)
	ctx := context.Background()
	storage := newMemStorage()
	svc := testService(storage, time.Now())

	session, _, err := svc.Start(ctx, userID, poemID)
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	// Sabotage the transaction after the bytes land in storage: a trigger
	// that rejects every recording insert.
	block := `CREATE TRIGGER block_recordings BEFORE INSERT ON recordings
		BEGIN SELECT RAISE(ABORT, 'blocked'); END;`
	if err := database.DB.Exec(block).Error; err != nil {
		t.Fatalf("install blocking trigger: %v", err)
	}

	_, _, err = svc.Finalize(ctx, userID, session.ID, FinalizeInput{Upload: audioUpload("prise1.mp3")})
	if err == nil {
		t.Fatal("finalize succeeded despite the blocked insert")
	}
	if storage.count() != 0 {
		t.Errorf("stored file not compensated, %d left", storage.count())
	}
	if len(storage.deleted) != 1 {
		t.Errorf("expected exactly one compensating delete, got %d", len(storage.deleted))
	}

	// The session must still be open.
	stored, err := repository.GetSessionForUser(ctx, session.ID, userID)
	if err != nil {
		t.Fatalf("reload session: %v", err)
	}
	if stored.Status != models.StatusInProgress {
		t.Errorf("session status = %q after failed finalize, want %q", stored.Status, models.StatusInProgress)
	}
}

func TestAbandonLeavesNoDuration(t *testing.T) {
	setupTestDB(t)
	userID, poemID := seedUserAndPoem(t)
	ctx := context.Background()
	svc := testService(newMemStorage(), time.Now())

	session, _, err := svc.Start(ctx, userID, poemID)
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	abandoned, err := svc.Abandon(ctx, userID, session.ID)
	if err != nil {
		t.Fatalf("abandon: %v", err)
	}
	if abandoned.Status != models.StatusAbandoned {
		t.Errorf("status = %q, want %q", abandoned.Status, models.StatusAbandoned)
	}
	if abandoned.Duration != nil || abandoned.EndedAt != nil {
		t.Errorf("abandon set duration/endedAt: %v %v", abandoned.Duration, abandoned.EndedAt)
	}

	if _, err := svc.Abandon(ctx, userID, session.ID); !apperr.Is(err, apperr.KindValidation) {
		t.Errorf("re-abandon: got %v, want validation error", err)
	}
}

func TestUpdateProgressRejectsTerminalSession(t *testing.T) {
	setupTestDB(t)
	userID, poemID := seedUserAndPoem(t)
	ctx := context.Background()
	svc := testService(newMemStorage(), time.Now())

	session, _, err := svc.Start(ctx, userID, poemID)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := svc.Abandon(ctx, userID, session.ID); err != nil {
		t.Fatalf("abandon: %v", err)
	}

	progression := 50.0
	_, err = svc.UpdateProgress(ctx, userID, session.ID, ProgressUpdate{Progression: &progression})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Errorf("update on terminal session: got %v, want validation error", err)
	}
}

func TestStartAfterFinalizeIncrementsAttempt(t *testing.T) {
	setupTestDB(t)
	userID, poemID := seedUserAndPoem(t)
	ctx := context.Background()
	svc := testService(newMemStorage(), time.Now())

	first, _, err := svc.Start(ctx, userID, poemID)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, _, err := svc.Finalize(ctx, userID, first.ID, FinalizeInput{Upload: audioUpload("prise1.mp3")}); err != nil {
		t.Fatalf("finalize: %v", err)
	}

	second, resumed, err := svc.Start(ctx, userID, poemID)
	if err != nil {
		t.Fatalf("second start: %v", err)
	}
	if resumed {
		t.Error("start after finalize should open a fresh session")
	}
	if second.ID == first.ID {
		t.Error("second start reused the finalized session")
	}
	if second.Attempt != 2 {
		t.Errorf("attempt = %d, want 2", second.Attempt)
	}
}
