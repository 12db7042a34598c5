package source

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	wclient "github.com/handiism/waifu2ugc/internal/http"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		ref  string
		want Kind
	}{
		{"front.png", KindLocal},
		{"/abs/front.png", KindLocal},
		{"file:///abs/front.png", KindLocal},
		{"C:\\art\\front.png", KindLocal},
		{"http://example.com/front.png", KindRemote},
		{"HTTPS://example.com/front.png", KindRemote},
		{"ftp://example.com/front.png", KindUnsupported},
		{"qrc:/front.png", KindUnsupported},
	}

	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			if got := Classify(tt.ref); got != tt.want {
				t.Errorf("Classify(%q) = %v, want %v", tt.ref, got, tt.want)
			}
		})
	}
}

func TestLocalPath(t *testing.T) {
	base := t.TempDir()

	if got, ok := LocalPath("out", base); !ok || got != filepath.Join(base, "out") {
		t.Errorf("LocalPath(relative) = %q, %v", got, ok)
	}
	if got, ok := LocalPath("file://"+filepath.ToSlash(base)+"/out", ""); !ok || got != filepath.Join(base, "out") {
		t.Errorf("LocalPath(file URL) = %q, %v", got, ok)
	}
	if _, ok := LocalPath("https://example.com/out", base); ok {
		t.Error("LocalPath(remote) should not be ok")
	}
}

func TestLoader_Local(t *testing.T) {
	base := t.TempDir()
	if err := os.WriteFile(filepath.Join(base, "front.png"), []byte("local"), 0644); err != nil {
		t.Fatal(err)
	}

	l := NewLoader(wclient.NewClient(time.Second, ""), base)

	data, err := l.Load(context.Background(), "front.png")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if string(data) != "local" {
		t.Errorf("data = %q, want %q", data, "local")
	}

	if _, err := l.Load(context.Background(), "missing.png"); err == nil {
		t.Error("Load(missing) should fail")
	}
	if _, err := l.Load(context.Background(), "  "); !errors.Is(err, ErrEmptyReference) {
		t.Errorf("Load(blank) error = %v, want ErrEmptyReference", err)
	}
	if _, err := l.Load(context.Background(), "ftp://example.com/a.png"); err == nil {
		t.Error("Load(ftp) should fail")
	}
}

func TestLoader_Remote(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("remote"))
	}))
	defer srv.Close()

	l := NewLoader(wclient.NewClient(time.Second, ""), "")
	data, err := l.Load(context.Background(), srv.URL+"/front.png")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if string(data) != "remote" {
		t.Errorf("data = %q, want %q", data, "remote")
	}
}
