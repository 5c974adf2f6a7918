package media

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// LocalMediaStore keeps files on local disk under root. The server exposes
// root at urlPrefix.
type LocalMediaStore struct {
	root      string
	urlPrefix string
}

func NewLocalMediaStore(root string, urlPrefix string) (*LocalMediaStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, errors.Wrapf(err, "create media root %s", root)
	}
	return &LocalMediaStore{root: root, urlPrefix: strings.TrimSuffix(urlPrefix, "/")}, nil
}

func (s *LocalMediaStore) Root() string {
	return s.root
}

func (s *LocalMediaStore) path(key string) (string, error) {
	p := filepath.Join(s.root, filepath.FromSlash(key))
	rel, err := filepath.Rel(s.root, p)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", errors.Errorf("media key %q escapes the media root", key)
	}
	return p, nil
}

func (s *LocalMediaStore) Store(ctx context.Context, key string, body io.Reader, contentType string) (string, error) {
	p, err := s.path(key)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return "", errors.Wrap(err, "create media dir")
	}

	f, err := os.Create(p)
	if err != nil {
		return "", errors.Wrap(err, "create media file")
	}
	defer f.Close()

	if _, err := io.Copy(f, body); err != nil {
		os.Remove(p)
		return "", errors.Wrapf(err, "write media file %s", key)
	}
	return key, nil
}

func (s *LocalMediaStore) GetUrlFromKey(key string) string {
	return s.urlPrefix + "/" + key
}

func (s *LocalMediaStore) CleanUp() {}
