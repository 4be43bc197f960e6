package testsupport

import (
	"os"
	"path/filepath"
	"testing"
)

// WriteCapture writes a small JPEG-looking file under dir and returns its path.
func WriteCapture(t testing.TB, dir, name string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	data := append([]byte{0xFF, 0xD8, 0xFF, 0xE0}, make([]byte, 60)...)
	data = append(data, 0xFF, 0xD9)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}
