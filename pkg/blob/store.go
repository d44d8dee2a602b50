package blob

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
)

// Store is the external blob service holding question media. The core passes
// refs through verbatim and only ever asks for an upload URL or a retrieval
// URL; it never validates that a ref resolves.
type Store interface {
	GenerateUploadURL() (ref string, uploadURL string, err error)
	ResolveURL(ref string) (string, error)
}

// URLStore maps refs onto a media server by URL convention.
type URLStore struct {
	baseURL string
}

func NewURLStore(baseURL string) *URLStore {
	return &URLStore{baseURL: strings.TrimRight(baseURL, "/")}
}

func (s *URLStore) GenerateUploadURL() (string, string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", "", err
	}
	ref := hex.EncodeToString(buf)
	return ref, fmt.Sprintf("%s/upload/%s", s.baseURL, ref), nil
}

func (s *URLStore) ResolveURL(ref string) (string, error) {
	if ref == "" {
		return "", nil
	}
	return fmt.Sprintf("%s/media/%s", s.baseURL, ref), nil
}
