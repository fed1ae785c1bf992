package artifact

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"mnemo/internal/logging"
)

// ObjectStore is the artifact body boundary. The content ref it returns is
// opaque to callers and stored verbatim in artifact metadata.
type ObjectStore interface {
	Write(ctx context.Context, artifactType, id string, body []byte) (contentRef string, err error)
	Read(ctx context.Context, contentRef string) ([]byte, error)
}

// FilesystemStore keeps artifact bodies on local disk under
// artifacts/{type}/{id}.md.
type FilesystemStore struct {
	baseDir string
	logger  logging.Logger
}

func NewFilesystemStore(baseDir string, logger logging.Logger) (*FilesystemStore, error) {
	if baseDir == "" {
		return nil, fmt.Errorf("artifact base dir is empty")
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create artifact dir: %w", err)
	}
	return &FilesystemStore{baseDir: baseDir, logger: logging.OrNop(logger)}, nil
}

func (s *FilesystemStore) Write(_ context.Context, artifactType, id string, body []byte) (string, error) {
	ref := filepath.Join("artifacts", sanitize(artifactType), sanitize(id)+".md")
	full := filepath.Join(s.baseDir, ref)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("create artifact type dir: %w", err)
	}
	if err := os.WriteFile(full, body, 0o644); err != nil {
		return "", fmt.Errorf("write artifact body: %w", err)
	}
	s.logger.Debug("wrote artifact body %s (%d bytes)", ref, len(body))
	return ref, nil
}

func (s *FilesystemStore) Read(_ context.Context, contentRef string) ([]byte, error) {
	clean := filepath.Clean(contentRef)
	if strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return nil, fmt.Errorf("invalid content ref %q", contentRef)
	}
	body, err := os.ReadFile(filepath.Join(s.baseDir, clean))
	if err != nil {
		return nil, fmt.Errorf("read artifact body: %w", err)
	}
	return body, nil
}

// sanitize keeps refs flat: path separators in type or id would escape the
// layout.
func sanitize(s string) string {
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, "..", "_")
	return s
}
