package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/sakif/script-shelf/internal/apperror"
	"github.com/sakif/script-shelf/internal/model"
	"github.com/sakif/script-shelf/internal/repository"
)

// In-memory repository mocks. Hand-written rather than generated: the
// interfaces are small and a map plus a counter reads better than reflection.

type mockSnippetRepo struct {
	snippets map[string]*model.Snippet
	versions map[string][]model.SnippetVersion
	nextID   int

	createErr error
}

func newMockSnippetRepo() *mockSnippetRepo {
	return &mockSnippetRepo{
		snippets: map[string]*model.Snippet{},
		versions: map[string][]model.SnippetVersion{},
	}
}

var _ repository.SnippetRepository = (*mockSnippetRepo)(nil)

func (m *mockSnippetRepo) Create(_ context.Context, snippet *model.Snippet) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.nextID++
	snippet.ID = fmt.Sprintf("snip-%d", m.nextID)
	cp := *snippet
	m.snippets[snippet.ID] = &cp
	return nil
}

func (m *mockSnippetRepo) GetByID(_ context.Context, ownerID, id string) (*model.Snippet, error) {
	s, ok := m.snippets[id]
	if !ok || s.UserID != ownerID {
		return nil, apperror.NotFound("Snippet")
	}
	cp := *s
	return &cp, nil
}

func (m *mockSnippetRepo) List(_ context.Context, ownerID string) ([]model.Snippet, error) {
	out := []model.Snippet{}
	for _, s := range m.snippets {
		if s.UserID == ownerID {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (m *mockSnippetRepo) Update(_ context.Context, ownerID, id string, upd repository.SnippetUpdate) (*model.Snippet, error) {
	s, ok := m.snippets[id]
	if !ok || s.UserID != ownerID {
		return nil, apperror.NotFound("Snippet")
	}
	m.versions[id] = append([]model.SnippetVersion{{
		SnippetID: id, Title: s.Title, Code: s.Code, Language: s.Language,
	}}, m.versions[id]...)
	s.Title = upd.Title
	s.Code = upd.Code
	s.Language = upd.Language
	if upd.FolderID != nil {
		if *upd.FolderID == "" {
			s.FolderID = nil
		} else {
			s.FolderID = upd.FolderID
		}
	}
	if upd.IsFavorited != nil {
		s.IsFavorited = *upd.IsFavorited
	}
	cp := *s
	return &cp, nil
}

func (m *mockSnippetRepo) Delete(_ context.Context, ownerID, id string) error {
	s, ok := m.snippets[id]
	if !ok || s.UserID != ownerID {
		return apperror.NotFound("Snippet")
	}
	delete(m.snippets, id)
	delete(m.versions, id)
	return nil
}

func (m *mockSnippetRepo) ToggleFavorite(_ context.Context, ownerID, id string) (bool, error) {
	s, ok := m.snippets[id]
	if !ok || s.UserID != ownerID {
		return false, apperror.NotFound("Snippet")
	}
	s.IsFavorited = !s.IsFavorited
	return s.IsFavorited, nil
}

func (m *mockSnippetRepo) ListVersions(_ context.Context, ownerID, snippetID string) ([]model.SnippetVersion, error) {
	s, ok := m.snippets[snippetID]
	if !ok || s.UserID != ownerID {
		return nil, apperror.NotFound("Snippet")
	}
	return m.versions[snippetID], nil
}

type mockUserRepo struct {
	users  map[string]*model.User // keyed by ID
	nextID int
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: map[string]*model.User{}}
}

var _ repository.UserRepository = (*mockUserRepo)(nil)

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	for _, u := range m.users {
		if u.Email == user.Email {
			return apperror.Conflict("User already exists")
		}
	}
	m.nextID++
	user.ID = fmt.Sprintf("user-%d", m.nextID)
	cp := *user
	m.users[user.ID] = &cp
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, apperror.NotFoundMsg("User not found")
	}
	cp := *u
	return &cp, nil
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperror.NotFoundMsg("User not found")
}

func (m *mockUserRepo) UpdateEmail(_ context.Context, id, email string) (*model.User, error) {
	for _, u := range m.users {
		if u.Email == email && u.ID != id {
			return nil, apperror.Conflict("Email already in use")
		}
	}
	u, ok := m.users[id]
	if !ok {
		return nil, apperror.NotFoundMsg("User not found")
	}
	u.Email = email
	cp := *u
	return &cp, nil
}

func (m *mockUserRepo) UpdatePasswordHash(_ context.Context, id, hash string) error {
	u, ok := m.users[id]
	if !ok {
		return apperror.NotFoundMsg("User not found")
	}
	u.PasswordHash = hash
	return nil
}

func (m *mockUserRepo) UpsertGitHub(_ context.Context, user *model.User) error {
	for _, u := range m.users {
		if u.GitHubID != nil && user.GitHubID != nil && *u.GitHubID == *user.GitHubID {
			u.Email = user.Email
			user.ID = u.ID
			return nil
		}
	}
	m.nextID++
	user.ID = fmt.Sprintf("user-%d", m.nextID)
	cp := *user
	m.users[user.ID] = &cp
	return nil
}

type mockTagRepo struct {
	tags     map[string]*model.Tag // keyed by owner + "\x00" + name
	attached map[string][]string   // snippetID -> tag IDs
	nextID   int
}

func newMockTagRepo() *mockTagRepo {
	return &mockTagRepo{
		tags:     map[string]*model.Tag{},
		attached: map[string][]string{},
	}
}

var _ repository.TagRepository = (*mockTagRepo)(nil)

func (m *mockTagRepo) Attach(_ context.Context, ownerID, snippetID, name string) (*model.Tag, error) {
	key := ownerID + "\x00" + name
	tag, ok := m.tags[key]
	if !ok {
		m.nextID++
		tag = &model.Tag{ID: fmt.Sprintf("tag-%d", m.nextID), UserID: ownerID, Name: name}
		m.tags[key] = tag
	}
	for _, id := range m.attached[snippetID] {
		if id == tag.ID {
			return tag, nil
		}
	}
	m.attached[snippetID] = append(m.attached[snippetID], tag.ID)
	return tag, nil
}

func (m *mockTagRepo) Detach(_ context.Context, ownerID, snippetID, tagID string) error {
	ids := m.attached[snippetID]
	for i, id := range ids {
		if id == tagID {
			m.attached[snippetID] = append(ids[:i], ids[i+1:]...)
			return nil
		}
	}
	return apperror.NotFoundMsg("Tag is not on this snippet")
}

func (m *mockTagRepo) List(_ context.Context, ownerID string) ([]model.Tag, error) {
	out := []model.Tag{}
	for key, t := range m.tags {
		if strings.HasPrefix(key, ownerID+"\x00") {
			out = append(out, *t)
		}
	}
	return out, nil
}
