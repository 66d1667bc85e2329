package domain

import "errors"

var (
	ErrNotFound         = errors.New("resource not found")
	ErrArtifactNotReady = errors.New("artifact not ready")
)
