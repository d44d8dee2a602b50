package blob_test

import (
	"strings"
	"testing"

	"quizlive/pkg/blob"
)

func TestResolveURL(t *testing.T) {
	store := blob.NewURLStore("http://media.local/")

	url, err := store.ResolveURL("abc123")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if url != "http://media.local/media/abc123" {
		t.Fatalf("unexpected url: %q", url)
	}
}

func TestResolveURLEmptyRef(t *testing.T) {
	store := blob.NewURLStore("http://media.local")

	url, err := store.ResolveURL("")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if url != "" {
		t.Fatalf("expected empty url for empty ref, got %q", url)
	}
}

func TestGenerateUploadURL(t *testing.T) {
	store := blob.NewURLStore("http://media.local")

	seen := map[string]bool{}
	for i := 0; i < 10; i++ {
		ref, uploadURL, err := store.GenerateUploadURL()
		if err != nil {
			t.Fatalf("generate: %v", err)
		}
		if ref == "" {
			t.Fatal("expected non-empty ref")
		}
		if seen[ref] {
			t.Fatalf("ref %q issued twice", ref)
		}
		seen[ref] = true
		if !strings.HasSuffix(uploadURL, "/upload/"+ref) {
			t.Fatalf("upload url %q does not carry ref %q", uploadURL, ref)
		}
	}
}
