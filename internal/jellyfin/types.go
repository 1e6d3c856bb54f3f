package jellyfin

import (
	"fmt"
	"maps"
)

// User is a Jellyfin account. Policy is kept as a generic object so that it
// can be posted back with only the folder fields changed.
type User struct {
	ID     string `json:"Id"`
	Name   string `json:"Name"`
	Policy Policy `json:"Policy"`
}

// IsAdmin reports the policy's IsAdministrator flag.
func (u User) IsAdmin() bool {
	return u.Policy.flag("IsAdministrator")
}

// IsDisabled reports the policy's IsDisabled flag.
func (u User) IsDisabled() bool {
	return u.Policy.flag("IsDisabled")
}

// EnabledFolders returns the folder IDs the user may access. A missing
// list is empty; a list of anything but strings is an error.
func (u User) EnabledFolders() ([]string, error) {
	raw, ok := u.Policy["EnabledFolders"]
	if !ok || raw == nil {
		return nil, nil
	}
	items, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: EnabledFolders is %T", ErrMalformedResponse, raw)
	}
	folders := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("%w: EnabledFolders entry is %T", ErrMalformedResponse, item)
		}
		folders = append(folders, s)
	}
	return folders, nil
}

// Policy is a user policy object as returned by the server.
type Policy map[string]any

func (p Policy) flag(key string) bool {
	v, _ := p[key].(bool)
	return v
}

// withFolders returns a copy of p restricted to exactly folders.
func (p Policy) withFolders(folders []string) Policy {
	out := make(Policy, len(p)+2)
	maps.Copy(out, p)
	if folders == nil {
		folders = []string{}
	}
	out["EnabledFolders"] = folders
	out["EnableAllFolders"] = false
	return out
}

// MediaFolder is a top-level library.
type MediaFolder struct {
	ID             string `json:"Id"`
	Name           string `json:"Name"`
	Path           string `json:"Path,omitempty"`
	CollectionType string `json:"CollectionType,omitempty"`
	Etag           string `json:"Etag,omitempty"`
}

// listResponse is the envelope used by Jellyfin list endpoints.
type listResponse[T any] struct {
	Items            []T `json:"Items"`
	TotalRecordCount int `json:"TotalRecordCount"`
	StartIndex       int `json:"StartIndex"`
}
