package coolify

import (
	"encoding/json"
	"strings"
)

// Kind is the category of a Coolify resource. Each kind lives under its own
// API path, so it is resolved once when a resource is decoded.
type Kind int

const (
	KindApplication Kind = iota
	KindDatabase
	KindService
)

var kinds = []Kind{KindApplication, KindDatabase, KindService}

// KindFromType maps the free-form type string reported by Coolify
// ("application", "standalone-postgresql", "service", ...) to a Kind.
func KindFromType(t string) Kind {
	t = strings.ToLower(t)
	switch {
	case strings.Contains(t, "postgresql"), strings.Contains(t, "database"):
		return KindDatabase
	case t == "service":
		return KindService
	default:
		return KindApplication
	}
}

// PathSegment is the collection name used in API paths.
func (k Kind) PathSegment() string {
	switch k {
	case KindDatabase:
		return "databases"
	case KindService:
		return "services"
	default:
		return "applications"
	}
}

func (k Kind) String() string {
	switch k {
	case KindDatabase:
		return "database"
	case KindService:
		return "service"
	default:
		return "application"
	}
}

func (k Kind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

type Resource struct {
	UUID          string `json:"uuid"`
	Name          string `json:"name"`
	Type          string `json:"type"`
	Status        string `json:"status"`
	EnvironmentID int64  `json:"environment_id"`
	Kind          Kind   `json:"kind"`
}

// Stopped reports whether Coolify already considers the resource exited.
func (r Resource) Stopped() bool {
	return strings.Contains(strings.ToLower(r.Status), "exited")
}

func (r Resource) Running() bool {
	return strings.Contains(strings.ToLower(r.Status), "running")
}

type Project struct {
	UUID           string  `json:"uuid"`
	Name           string  `json:"name"`
	Description    string  `json:"description"`
	EnvironmentIDs []int64 `json:"environment_ids"`
}
