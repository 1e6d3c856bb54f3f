package service

import (
	"context"
	"log/slog"
	"slices"

	"golang.org/x/sync/errgroup"

	domainerrors "github.com/tagrs/movietagger/internal/errors"
	"github.com/tagrs/movietagger/internal/jellyfin"
)

// LibraryClient is the subset of the Jellyfin client used to manage folder
// access.
type LibraryClient interface {
	Users(ctx context.Context) ([]jellyfin.User, error)
	MediaFolders(ctx context.Context) ([]jellyfin.MediaFolder, error)
	SetUserMediaFolders(ctx context.Context, user jellyfin.User, folders []string) error
}

// ErrLibraryAccessDisabled is returned when no media server is configured.
var ErrLibraryAccessDisabled = domainerrors.NotFound("jellyfin integration is not configured")

// FolderAccess is one library and whether a user may see it.
type FolderAccess struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Enabled bool   `json:"enabled"`
}

// UserLibraries is a user with access flags for every library.
type UserLibraries struct {
	UserID     string         `json:"user_id"`
	UserName   string         `json:"user_name"`
	IsAdmin    bool           `json:"is_admin"`
	IsDisabled bool           `json:"is_disabled"`
	Folders    []FolderAccess `json:"folders"`
}

// LibraryAccessService manages per-user library visibility on the media
// server.
type LibraryAccessService struct {
	client LibraryClient
	logger *slog.Logger
}

// NewLibraryAccessService creates the service. A nil client disables it.
func NewLibraryAccessService(client LibraryClient, logger *slog.Logger) *LibraryAccessService {
	return &LibraryAccessService{
		client: client,
		logger: logger,
	}
}

// Enabled reports whether a media server is configured.
func (s *LibraryAccessService) Enabled() bool {
	return s != nil && s.client != nil
}

// ListUserLibraries returns every user with every library's access flag.
func (s *LibraryAccessService) ListUserLibraries(ctx context.Context) ([]UserLibraries, error) {
	if !s.Enabled() {
		return nil, ErrLibraryAccessDisabled
	}

	users, folders, err := s.fetch(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]UserLibraries, 0, len(users))
	for _, u := range users {
		enabled, err := u.EnabledFolders()
		if err != nil {
			return nil, domainerrors.Wrapf(err, domainerrors.CodeUpstream, "read folders of user %s", u.Name)
		}
		out = append(out, buildUserLibraries(u, folders, enabled))
	}
	return out, nil
}

// ToggleUserFolder grants or revokes one user's access to one library and
// returns the user's updated entry.
func (s *LibraryAccessService) ToggleUserFolder(ctx context.Context, userID, folderID string) (*UserLibraries, error) {
	if !s.Enabled() {
		return nil, ErrLibraryAccessDisabled
	}

	users, folders, err := s.fetch(ctx)
	if err != nil {
		return nil, err
	}

	i := slices.IndexFunc(users, func(u jellyfin.User) bool { return u.ID == userID })
	if i < 0 {
		return nil, domainerrors.NotFoundf("user %q not found", userID)
	}
	user := users[i]

	if !slices.ContainsFunc(folders, func(f jellyfin.MediaFolder) bool { return f.ID == folderID }) {
		return nil, domainerrors.NotFoundf("library %q not found", folderID)
	}

	enabled, err := user.EnabledFolders()
	if err != nil {
		return nil, domainerrors.Wrapf(err, domainerrors.CodeUpstream, "read folders of user %s", user.Name)
	}

	var updated []string
	if j := slices.Index(enabled, folderID); j >= 0 {
		updated = slices.Delete(slices.Clone(enabled), j, j+1)
	} else {
		updated = append(slices.Clone(enabled), folderID)
	}

	if err := s.client.SetUserMediaFolders(ctx, user, updated); err != nil {
		return nil, err
	}

	s.logger.Info("toggled library access",
		"user", user.Name,
		"folder_id", folderID,
		"enabled", !slices.Contains(enabled, folderID),
	)

	entry := buildUserLibraries(user, folders, updated)
	return &entry, nil
}

// fetch loads users and folders concurrently.
func (s *LibraryAccessService) fetch(ctx context.Context) ([]jellyfin.User, []jellyfin.MediaFolder, error) {
	var (
		users   []jellyfin.User
		folders []jellyfin.MediaFolder
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		users, err = s.client.Users(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		folders, err = s.client.MediaFolders(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return users, folders, nil
}

func buildUserLibraries(u jellyfin.User, folders []jellyfin.MediaFolder, enabled []string) UserLibraries {
	entry := UserLibraries{
		UserID:     u.ID,
		UserName:   u.Name,
		IsAdmin:    u.IsAdmin(),
		IsDisabled: u.IsDisabled(),
		Folders:    make([]FolderAccess, 0, len(folders)),
	}
	for _, f := range folders {
		entry.Folders = append(entry.Folders, FolderAccess{
			ID:      f.ID,
			Name:    f.Name,
			Enabled: slices.Contains(enabled, f.ID),
		})
	}
	return entry
}
