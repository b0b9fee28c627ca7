// Package share delivers rendered documents and exports to wherever the host
// can put them. Callers ask a Sink what it supports instead of checking the platform.
package share

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Capability is a bit set of supported delivery operations
type Capability uint8

const (
	CanSave Capability = 1 << iota
	CanShare
)

// Has reports whether all bits of c2 are set in c
func (c Capability) Has(c2 Capability) bool {
	return c&c2 == c2
}

// ErrUnsupported is returned for operations a sink does not offer
var ErrUnsupported = errors.New("operation not supported on this host")

// Artifact is a named document ready for delivery
type Artifact struct {
	Name        string
	ContentType string
	Data        []byte
}

// Sink saves or shares artifacts
type Sink interface {
	Capabilities() Capability
	// Save stores the artifact and returns where it went.
	Save(ctx context.Context, a Artifact) (string, error)
	Share(ctx context.Context, a Artifact) error
}

// FileSink saves artifacts into a directory. It cannot share.
type FileSink struct {
	Dir string
}

// NewFileSink creates a sink rooted at dir
func NewFileSink(dir string) *FileSink {
	return &FileSink{Dir: dir}
}

func (s *FileSink) Capabilities() Capability { return CanSave }

func (s *FileSink) Save(ctx context.Context, a Artifact) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	name := filepath.Base(a.Name)
	if name == "." || name == string(filepath.Separator) || name == "" {
		return "", fmt.Errorf("share: invalid artifact name %q", a.Name)
	}
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return "", fmt.Errorf("share: %w", err)
	}
	path := filepath.Join(s.Dir, name)
	if err := os.WriteFile(path, a.Data, 0o644); err != nil {
		return "", fmt.Errorf("share: %w", err)
	}
	return path, nil
}

func (s *FileSink) Share(context.Context, Artifact) error { return ErrUnsupported }

// Unsupported is the sink for hosts with no delivery at all
type Unsupported struct{}

func (Unsupported) Capabilities() Capability { return 0 }

func (Unsupported) Save(context.Context, Artifact) (string, error) { return "", ErrUnsupported }

func (Unsupported) Share(context.Context, Artifact) error { return ErrUnsupported }

// Deliver shares a when asked and supported, and otherwise saves it. It
// returns the saved location, or "" after a share.
func Deliver(ctx context.Context, s Sink, a Artifact, wantShare bool) (string, error) {
	caps := s.Capabilities()
	if wantShare {
		if !caps.Has(CanShare) {
			return "", ErrUnsupported
		}
		return "", s.Share(ctx, a)
	}
	if !caps.Has(CanSave) {
		return "", ErrUnsupported
	}
	return s.Save(ctx, a)
}
