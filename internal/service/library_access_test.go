package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/tagrs/movietagger/internal/errors"
	"github.com/tagrs/movietagger/internal/jellyfin"
)

// fakeLibraryClient is an in-memory media server.
type fakeLibraryClient struct {
	mu        sync.Mutex
	users     []jellyfin.User
	folders   []jellyfin.MediaFolder
	usersErr  error
	setErr    error
	setCalls  int
	lastSetTo []string
}

func (f *fakeLibraryClient) Users(context.Context) ([]jellyfin.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.users, f.usersErr
}

func (f *fakeLibraryClient) MediaFolders(context.Context) ([]jellyfin.MediaFolder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.folders, nil
}

func (f *fakeLibraryClient) SetUserMediaFolders(_ context.Context, user jellyfin.User, folders []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.setCalls++
	f.lastSetTo = folders
	if f.setErr != nil {
		return f.setErr
	}
	for i := range f.users {
		if f.users[i].ID == user.ID {
			items := make([]any, len(folders))
			for j, id := range folders {
				items[j] = id
			}
			f.users[i].Policy["EnabledFolders"] = items
		}
	}
	return nil
}

func newFakeLibraryClient() *fakeLibraryClient {
	return &fakeLibraryClient{
		users: []jellyfin.User{
			{ID: "u1", Name: "alice", Policy: jellyfin.Policy{"IsAdministrator": true, "EnabledFolders": []any{"f1"}}},
			{ID: "u2", Name: "bob", Policy: jellyfin.Policy{"IsDisabled": true}},
		},
		folders: []jellyfin.MediaFolder{
			{ID: "f1", Name: "Movies"},
			{ID: "f2", Name: "Shows"},
		},
	}
}

func newLibraryService(client LibraryClient) *LibraryAccessService {
	return NewLibraryAccessService(client, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestLibraryAccess_List(t *testing.T) {
	svc := newLibraryService(newFakeLibraryClient())

	entries, err := svc.ListUserLibraries(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, UserLibraries{
		UserID:   "u1",
		UserName: "alice",
		IsAdmin:  true,
		Folders: []FolderAccess{
			{ID: "f1", Name: "Movies", Enabled: true},
			{ID: "f2", Name: "Shows", Enabled: false},
		},
	}, entries[0])

	assert.True(t, entries[1].IsDisabled)
	assert.False(t, entries[1].Folders[0].Enabled)
}

func TestLibraryAccess_ToggleGrantsAndRevokes(t *testing.T) {
	client := newFakeLibraryClient()
	svc := newLibraryService(client)
	ctx := context.Background()

	entry, err := svc.ToggleUserFolder(ctx, "u1", "f2")
	require.NoError(t, err)
	assert.Equal(t, []string{"f1", "f2"}, client.lastSetTo)
	assert.True(t, entry.Folders[1].Enabled)

	entry, err = svc.ToggleUserFolder(ctx, "u1", "f1")
	require.NoError(t, err)
	assert.Equal(t, []string{"f2"}, client.lastSetTo)
	assert.False(t, entry.Folders[0].Enabled)
	assert.True(t, entry.Folders[1].Enabled)
}

func TestLibraryAccess_ToggleUnknown(t *testing.T) {
	client := newFakeLibraryClient()
	svc := newLibraryService(client)
	ctx := context.Background()

	_, err := svc.ToggleUserFolder(ctx, "nobody", "f1")
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)

	_, err = svc.ToggleUserFolder(ctx, "u1", "f9")
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)

	assert.Zero(t, client.setCalls)
}

func TestLibraryAccess_UpstreamFailure(t *testing.T) {
	client := newFakeLibraryClient()
	client.setErr = domainerrors.Upstream("jellyfin request failed")
	svc := newLibraryService(client)

	_, err := svc.ToggleUserFolder(context.Background(), "u1", "f2")
	assert.ErrorIs(t, err, domainerrors.ErrUpstream)

	client.usersErr = errors.New("connection refused")
	_, err = svc.ListUserLibraries(context.Background())
	assert.Error(t, err)
}

func TestLibraryAccess_Disabled(t *testing.T) {
	svc := newLibraryService(nil)

	assert.False(t, svc.Enabled())

	_, err := svc.ListUserLibraries(context.Background())
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)

	_, err = svc.ToggleUserFolder(context.Background(), "u1", "f1")
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}
