package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sakif/script-shelf/internal/apperror"
	"github.com/sakif/script-shelf/internal/model"
	"github.com/sakif/script-shelf/internal/repository"
)

// newTestDB opens a fresh in-memory database with the full schema applied.
// ":memory:" keeps tests fast and isolated — the database vanishes when the
// connection closes.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// createTestUser inserts a user so snippet rows have a valid owner to
// reference (foreign keys are on).
func createTestUser(t *testing.T, db *DB, email string) *model.User {
	t.Helper()
	user := &model.User{Email: email, PasswordHash: "x"}
	if err := NewUserRepo(db).Create(context.Background(), user); err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

func createTestSnippet(t *testing.T, repo *SnippetRepo, ownerID, title, code string) *model.Snippet {
	t.Helper()
	snippet := &model.Snippet{
		UserID:   ownerID,
		Title:    title,
		Code:     code,
		Language: "python",
	}
	if err := repo.Create(context.Background(), snippet); err != nil {
		t.Fatalf("failed to create test snippet: %v", err)
	}
	return snippet
}

func TestSnippetCreate(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "alice@example.com")
	repo := NewSnippetRepo(db)

	snippet := &model.Snippet{
		UserID:   owner.ID,
		Title:    "Hello",
		Code:     "print(1)",
		Language: "python",
	}

	if err := repo.Create(context.Background(), snippet); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if snippet.ID == "" {
		t.Error("Create() did not set snippet.ID")
	}
	if snippet.CreatedAt.IsZero() {
		t.Error("Create() did not set snippet.CreatedAt")
	}

	found, err := repo.GetByID(context.Background(), owner.ID, snippet.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if found.Title != "Hello" || found.Code != "print(1)" {
		t.Errorf("persisted snippet = %q/%q, want Hello/print(1)", found.Title, found.Code)
	}
	if found.IsFavorited {
		t.Error("a new snippet must start unfavorited")
	}
	if found.FolderID != nil {
		t.Error("a new snippet without a folder must have nil FolderID")
	}
}

func TestSnippetList_FavoritedFirstThenNewest(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "alice@example.com")
	repo := NewSnippetRepo(db)

	first := createTestSnippet(t, repo, owner.ID, "first", "a")
	time.Sleep(5 * time.Millisecond)
	second := createTestSnippet(t, repo, owner.ID, "second", "b")
	time.Sleep(5 * time.Millisecond)
	third := createTestSnippet(t, repo, owner.ID, "third", "c")

	// Favorite the oldest one — it should jump to the front.
	if _, err := repo.ToggleFavorite(context.Background(), owner.ID, first.ID); err != nil {
		t.Fatalf("ToggleFavorite() error = %v", err)
	}

	list, err := repo.List(context.Background(), owner.ID)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("List() returned %d snippets, want 3", len(list))
	}

	wantOrder := []string{first.ID, third.ID, second.ID}
	for i, want := range wantOrder {
		if list[i].ID != want {
			t.Errorf("list[%d].ID = %s, want %s (favorited first, then newest)", i, list[i].ID, want)
		}
	}
}

func TestSnippetUpdate_SnapshotsPreUpdateState(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "alice@example.com")
	repo := NewSnippetRepo(db)

	snippet := createTestSnippet(t, repo, owner.ID, "Hello", "print(1)")

	updated, err := repo.Update(context.Background(), owner.ID, snippet.ID, repository.SnippetUpdate{
		Title:    "Hello v2",
		Code:     "print(2)",
		Language: "python",
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.Title != "Hello v2" || updated.Code != "print(2)" {
		t.Errorf("updated snippet = %q/%q, want Hello v2/print(2)", updated.Title, updated.Code)
	}

	versions, err := repo.ListVersions(context.Background(), owner.ID, snippet.ID)
	if err != nil {
		t.Fatalf("ListVersions() error = %v", err)
	}
	if len(versions) != 1 {
		t.Fatalf("ListVersions() returned %d versions, want 1", len(versions))
	}
	// The version holds the state *before* the update, not after.
	if versions[0].Title != "Hello" || versions[0].Code != "print(1)" {
		t.Errorf("version = %q/%q, want the pre-update Hello/print(1)",
			versions[0].Title, versions[0].Code)
	}
}

func TestSnippetUpdate_NVersionsForNUpdates(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "alice@example.com")
	repo := NewSnippetRepo(db)

	snippet := createTestSnippet(t, repo, owner.ID, "v0", "c0")

	titles := []string{"v1", "v2", "v3"}
	for _, title := range titles {
		time.Sleep(5 * time.Millisecond)
		if _, err := repo.Update(context.Background(), owner.ID, snippet.ID, repository.SnippetUpdate{
			Title:    title,
			Code:     "code of " + title,
			Language: "python",
		}); err != nil {
			t.Fatalf("Update(%s) error = %v", title, err)
		}
	}

	versions, err := repo.ListVersions(context.Background(), owner.ID, snippet.ID)
	if err != nil {
		t.Fatalf("ListVersions() error = %v", err)
	}
	if len(versions) != 3 {
		t.Fatalf("ListVersions() returned %d versions, want 3", len(versions))
	}

	// Most recent edit first: the newest version holds "v2" (the state
	// overwritten by the v3 update), the oldest holds the original "v0".
	wantTitles := []string{"v2", "v1", "v0"}
	for i, want := range wantTitles {
		if versions[i].Title != want {
			t.Errorf("versions[%d].Title = %q, want %q", i, versions[i].Title, want)
		}
	}
}

func TestSnippetUpdate_NotOwned(t *testing.T) {
	db := newTestDB(t)
	alice := createTestUser(t, db, "alice@example.com")
	bob := createTestUser(t, db, "bob@example.com")
	repo := NewSnippetRepo(db)

	snippet := createTestSnippet(t, repo, alice.ID, "Hello", "print(1)")

	_, err := repo.Update(context.Background(), bob.ID, snippet.ID, repository.SnippetUpdate{
		Title: "stolen", Code: "x", Language: "python",
	})
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("Update() by non-owner: err = %v, want ErrNotFound", err)
	}

	// The failed attempt must leave no trace: no version row, no change.
	versions, err := repo.ListVersions(context.Background(), alice.ID, snippet.ID)
	if err != nil {
		t.Fatalf("ListVersions() error = %v", err)
	}
	if len(versions) != 0 {
		t.Errorf("a rolled-back update left %d version rows", len(versions))
	}

	found, _ := repo.GetByID(context.Background(), alice.ID, snippet.ID)
	if found.Title != "Hello" {
		t.Errorf("snippet title = %q after failed foreign update, want Hello", found.Title)
	}
}

func TestSnippetUpdate_FolderAssignment(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "alice@example.com")
	repo := NewSnippetRepo(db)

	folder := &model.Folder{UserID: owner.ID, Name: "scripts"}
	if err := NewFolderRepo(db).Create(context.Background(), folder); err != nil {
		t.Fatalf("folder Create() error = %v", err)
	}

	snippet := createTestSnippet(t, repo, owner.ID, "Hello", "print(1)")

	updated, err := repo.Update(context.Background(), owner.ID, snippet.ID, repository.SnippetUpdate{
		Title: "Hello", Code: "print(1)", Language: "python",
		FolderID: &folder.ID,
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.FolderID == nil || *updated.FolderID != folder.ID {
		t.Fatalf("FolderID = %v, want %s", updated.FolderID, folder.ID)
	}

	// An explicit empty string clears the assignment.
	empty := ""
	updated, err = repo.Update(context.Background(), owner.ID, snippet.ID, repository.SnippetUpdate{
		Title: "Hello", Code: "print(1)", Language: "python",
		FolderID: &empty,
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.FolderID != nil {
		t.Errorf("FolderID = %v after clearing, want nil", updated.FolderID)
	}
}

func TestSnippetDelete(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "alice@example.com")
	repo := NewSnippetRepo(db)

	snippet := createTestSnippet(t, repo, owner.ID, "Hello", "print(1)")

	if err := repo.Delete(context.Background(), owner.ID, snippet.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	list, err := repo.List(context.Background(), owner.ID)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(list) != 0 {
		t.Errorf("List() after delete returned %d snippets, want 0", len(list))
	}
}

func TestSnippetDelete_NotOwnedMutatesNothing(t *testing.T) {
	db := newTestDB(t)
	alice := createTestUser(t, db, "alice@example.com")
	bob := createTestUser(t, db, "bob@example.com")
	repo := NewSnippetRepo(db)

	snippet := createTestSnippet(t, repo, alice.ID, "Hello", "print(1)")

	err := repo.Delete(context.Background(), bob.ID, snippet.ID)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("Delete() by non-owner: err = %v, want ErrNotFound", err)
	}

	if _, err := repo.GetByID(context.Background(), alice.ID, snippet.ID); err != nil {
		t.Errorf("snippet should survive a non-owner delete: %v", err)
	}
}

func TestSnippetDelete_Missing(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "alice@example.com")
	repo := NewSnippetRepo(db)

	err := repo.Delete(context.Background(), owner.ID, "no-such-id")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Delete() of missing id: err = %v, want ErrNotFound", err)
	}
}

func TestToggleFavorite_FlipsEachCall(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "alice@example.com")
	repo := NewSnippetRepo(db)

	snippet := createTestSnippet(t, repo, owner.ID, "Hello", "print(1)")

	on, err := repo.ToggleFavorite(context.Background(), owner.ID, snippet.ID)
	if err != nil {
		t.Fatalf("ToggleFavorite() error = %v", err)
	}
	if !on {
		t.Error("first toggle should favorite the snippet")
	}

	off, err := repo.ToggleFavorite(context.Background(), owner.ID, snippet.ID)
	if err != nil {
		t.Fatalf("ToggleFavorite() error = %v", err)
	}
	if off {
		t.Error("second toggle should return to unfavorited")
	}

	// Odd number of calls flips.
	third, _ := repo.ToggleFavorite(context.Background(), owner.ID, snippet.ID)
	if !third {
		t.Error("third toggle should favorite again")
	}
}

func TestToggleFavorite_NotOwned(t *testing.T) {
	db := newTestDB(t)
	alice := createTestUser(t, db, "alice@example.com")
	bob := createTestUser(t, db, "bob@example.com")
	repo := NewSnippetRepo(db)

	snippet := createTestSnippet(t, repo, alice.ID, "Hello", "print(1)")

	if _, err := repo.ToggleFavorite(context.Background(), bob.ID, snippet.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("ToggleFavorite() by non-owner: err = %v, want ErrNotFound", err)
	}
}

func TestListVersions_EmptyForFreshSnippet(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "alice@example.com")
	repo := NewSnippetRepo(db)

	snippet := createTestSnippet(t, repo, owner.ID, "Hello", "print(1)")

	versions, err := repo.ListVersions(context.Background(), owner.ID, snippet.ID)
	if err != nil {
		t.Fatalf("ListVersions() error = %v", err)
	}
	if len(versions) != 0 {
		t.Errorf("a never-updated snippet has %d versions, want 0", len(versions))
	}
}

func TestListVersions_NotOwned(t *testing.T) {
	db := newTestDB(t)
	alice := createTestUser(t, db, "alice@example.com")
	bob := createTestUser(t, db, "bob@example.com")
	repo := NewSnippetRepo(db)

	snippet := createTestSnippet(t, repo, alice.ID, "Hello", "print(1)")

	if _, err := repo.ListVersions(context.Background(), bob.ID, snippet.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("ListVersions() by non-owner: err = %v, want ErrNotFound", err)
	}
}

func TestSnippetIsolation_UsersOnlySeeTheirOwn(t *testing.T) {
	db := newTestDB(t)
	alice := createTestUser(t, db, "alice@example.com")
	bob := createTestUser(t, db, "bob@example.com")
	repo := NewSnippetRepo(db)

	createTestSnippet(t, repo, alice.ID, "alice's", "a")
	createTestSnippet(t, repo, bob.ID, "bob's", "b")

	aliceList, err := repo.List(context.Background(), alice.ID)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(aliceList) != 1 || aliceList[0].Title != "alice's" {
		t.Errorf("alice sees %d snippets (%v), want only her own", len(aliceList), aliceList)
	}
}
