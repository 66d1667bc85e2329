package port

import "io"

// Storage manages upload, artifact and scratch locations. Refs are opaque
// locators resolvable back to a locally readable path.
type Storage interface {
	SaveUpload(r io.Reader, filename string) (ref string, err error)
	// SaveArtifact moves a locally-produced file into durable storage,
	// removing it from its original location.
	SaveArtifact(localPath string) (ref string, err error)
	MakeTempDir(prefix string) (path string, err error)
	ResolvePath(ref string) string
}
