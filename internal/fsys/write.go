package fsys

import (
	"context"
	"errors"
	"fmt"
	"path"

	"go.uber.org/zap"

	"github.com/mark3labs/swagger2client/internal/emitter"
)

// WriteError reports a failed write. It stops the remaining writes of its
// kind only.
type WriteError struct {
	Kind  emitter.Kind
	Path  string
	Cause error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write %s artifact %s: %v", e.Kind, e.Path, e.Cause)
}

func (e *WriteError) Unwrap() error { return e.Cause }

// WriteArtifacts writes every artifact of set below the root of fsys, kind
// by kind in emission order. A failure abandons the rest of its kind and
// moves on; all failures are returned joined. It returns the number of
// files written.
func WriteArtifacts(ctx context.Context, fsys FS, set *emitter.ArtifactSet, log *zap.Logger) (int, error) {
	if log == nil {
		log = zap.NewNop()
	}
	written := 0
	var errs []error
	for _, kind := range emitter.AllKinds {
		if err := ctx.Err(); err != nil {
			return written, err
		}
		n, err := writeKind(fsys, kind, set.ByKind(kind), log)
		written += n
		if err != nil {
			log.Warn("artifact kind failed", zap.String("kind", string(kind)), zap.Error(err))
			errs = append(errs, err)
		}
	}
	return written, errors.Join(errs...)
}

func writeKind(fsys FS, kind emitter.Kind, artifacts []emitter.Artifact, log *zap.Logger) (int, error) {
	ensured := make(map[string]bool)
	for i, a := range artifacts {
		dir := path.Dir(a.Path)
		if !ensured[dir] {
			if err := fsys.EnsureDirectory(dir); err != nil {
				return i, &WriteError{Kind: kind, Path: dir, Cause: err}
			}
			ensured[dir] = true
		}
		if err := fsys.WriteFile(a.Path, []byte(a.Content)); err != nil {
			return i, &WriteError{Kind: kind, Path: a.Path, Cause: err}
		}
		log.Debug("wrote artifact", zap.String("kind", string(kind)), zap.String("path", a.Path))
	}
	return len(artifacts), nil
}
