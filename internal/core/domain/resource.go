package domain

import "fmt"

// Resource names one of the three backends the client talks to.
type Resource string

const (
	ResourceFilms    Resource = "films"
	ResourceSessions Resource = "sessions"
	ResourceAccounts Resource = "accounts"
)

var Resources = []Resource{ResourceFilms, ResourceSessions, ResourceAccounts}

func ParseResource(s string) (Resource, error) {
	for _, r := range Resources {
		if string(r) == s {
			return r, nil
		}
	}
	return "", fmt.Errorf("unknown resource %q", s)
}

// ResourceStatus is the UI-facing lifecycle of one resource.
type ResourceStatus struct {
	Loading bool   `json:"loading"`
	Error   string `json:"error"`
	Down    bool   `json:"serviceDown"`
}
