package storage

import "fmt"

// Opener builds one backend from a path.
type Opener func(path string) (Storage, error)

var backends = map[string]Opener{}

// Register makes a backend available to New under name. Backend packages
// call it from init so that importing them is enough to enable them.
func Register(name string, open Opener) {
	backends[name] = open
}

// New opens the backend registered under name.
//
// Backends shipped with the service:
//
//	"json"   - single JSON array file at path (default)
//	"sqlite" - SQLite database file at path
//	"memory" - in-memory, ephemeral; path is ignored
func New(name, path string) (Storage, error) {
	if name == "" {
		name = "json"
	}
	open, ok := backends[name]
	if !ok {
		return nil, fmt.Errorf("unknown storage backend: %q", name)
	}
	return open(path)
}
