package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/tagrs/movietagger/internal/service"
)

func (s *Server) registerLibraryRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listUserLibraries",
		Method:      http.MethodGet,
		Path:        "/api/v1/users/libraries",
		Summary:     "List user libraries",
		Description: "Returns every Jellyfin user with access flags for each media folder",
		Tags:        []string{"Libraries"},
	}, s.handleListUserLibraries)

	huma.Register(s.api, huma.Operation{
		OperationID: "toggleUserLibrary",
		Method:      http.MethodPost,
		Path:        "/api/v1/users/{userID}/libraries/{folderID}",
		Summary:     "Toggle user library",
		Description: "Grants the user access to the media folder, or revokes it when already granted",
		Tags:        []string{"Libraries"},
	}, s.handleToggleUserLibrary)
}

// UserLibrariesListOutput wraps the user library list for Huma.
type UserLibrariesListOutput struct {
	Body struct {
		Users []service.UserLibraries `json:"users" doc:"Users with per-folder access"`
	}
}

// ToggleUserLibraryInput identifies a user and a media folder.
type ToggleUserLibraryInput struct {
	UserID   string `path:"userID" doc:"Jellyfin user ID"`
	FolderID string `path:"folderID" doc:"Jellyfin media folder ID"`
}

// UserLibrariesOutput wraps one user's access for Huma.
type UserLibrariesOutput struct {
	Body service.UserLibraries
}

func (s *Server) handleListUserLibraries(ctx context.Context, _ *struct{}) (*UserLibrariesListOutput, error) {
	users, err := s.services.Libraries.ListUserLibraries(ctx)
	if err != nil {
		return nil, err
	}

	out := &UserLibrariesListOutput{}
	out.Body.Users = users
	return out, nil
}

func (s *Server) handleToggleUserLibrary(ctx context.Context, input *ToggleUserLibraryInput) (*UserLibrariesOutput, error) {
	userID, err := decodePathParam(input.UserID)
	if err != nil {
		return nil, err
	}
	folderID, err := decodePathParam(input.FolderID)
	if err != nil {
		return nil, err
	}

	entry, err := s.services.Libraries.ToggleUserFolder(ctx, userID, folderID)
	if err != nil {
		return nil, err
	}
	return &UserLibrariesOutput{Body: *entry}, nil
}
