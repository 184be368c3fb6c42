package rmdupes

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func writeTestFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("Failed to create parent directory for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write test file %s: %v", path, err)
	}
	return path
}

func TestGetHashAlgorithm(t *testing.T) {
	tests := []struct {
		name   string
		typeID uint16
		size   int
	}{
		{"sha1", HashTypeSHA1, HashSizeSHA1},
		{"sha256", HashTypeSHA256, HashSizeSHA256},
		{"sha512", HashTypeSHA512, HashSizeSHA512},
	}

	for _, tt := range tests {
		algorithm, err := GetHashAlgorithm(tt.name)
		if err != nil {
			t.Fatalf("GetHashAlgorithm(%s) failed: %v", tt.name, err)
		}
		if algorithm.TypeID != tt.typeID {
			t.Errorf("Expected type ID %d for %s, got %d", tt.typeID, tt.name, algorithm.TypeID)
		}
		if algorithm.Size != tt.size {
			t.Errorf("Expected size %d for %s, got %d", tt.size, tt.name, algorithm.Size)
		}
	}

	if _, err := GetHashAlgorithm("md5"); err == nil {
		t.Error("Expected error for unsupported algorithm")
	}
}

func TestHashFile_IdenticalContent(t *testing.T) {
	tempDir := t.TempDir()
	file1 := writeTestFile(t, tempDir, "one.txt", "identical content")
	file2 := writeTestFile(t, tempDir, "sub/two.txt", "identical content")

	algorithm, err := GetHashAlgorithm("sha1")
	if err != nil {
		t.Fatalf("Failed to get algorithm: %v", err)
	}

	hash1, err := HashFile(file1, algorithm)
	if err != nil {
		t.Fatalf("HashFile failed: %v", err)
	}
	hash2, err := HashFile(file2, algorithm)
	if err != nil {
		t.Fatalf("HashFile failed: %v", err)
	}

	if !bytes.Equal(hash1, hash2) {
		t.Error("Expected identical digests for identical content")
	}
	if len(hash1) != HashSizeSHA1 {
		t.Errorf("Expected %d byte digest, got %d", HashSizeSHA1, len(hash1))
	}
}

func TestHashFile_DifferentContent(t *testing.T) {
	tempDir := t.TempDir()
	file1 := writeTestFile(t, tempDir, "one.txt", "content A")
	file2 := writeTestFile(t, tempDir, "two.txt", "content B")

	algorithm, err := GetHashAlgorithm("sha256")
	if err != nil {
		t.Fatalf("Failed to get algorithm: %v", err)
	}

	hash1, err := HashFile(file1, algorithm)
	if err != nil {
		t.Fatalf("HashFile failed: %v", err)
	}
	hash2, err := HashFile(file2, algorithm)
	if err != nil {
		t.Fatalf("HashFile failed: %v", err)
	}

	if bytes.Equal(hash1, hash2) {
		t.Error("Expected different digests for different content")
	}
}

func TestHashFile_Missing(t *testing.T) {
	algorithm, err := GetHashAlgorithm("sha1")
	if err != nil {
		t.Fatalf("Failed to get algorithm: %v", err)
	}

	if _, err := HashFile(filepath.Join(t.TempDir(), "absent.txt"), algorithm); err == nil {
		t.Error("Expected error hashing a missing file")
	}
}

func TestHashFileInterruptible_MatchesHashFile(t *testing.T) {
	tempDir := t.TempDir()
	// Larger than the tiny buffer so multiple reads happen
	content := bytes.Repeat([]byte("0123456789"), 1000)
	path := filepath.Join(tempDir, "data.bin")
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatalf("Failed to write test file: %v", err)
	}

	algorithm, err := GetHashAlgorithm("sha256")
	if err != nil {
		t.Fatalf("Failed to get algorithm: %v", err)
	}

	whole, err := HashFile(path, algorithm)
	if err != nil {
		t.Fatalf("HashFile failed: %v", err)
	}
	buffered, err := HashFileInterruptible(path, algorithm, 64, nil)
	if err != nil {
		t.Fatalf("HashFileInterruptible failed: %v", err)
	}

	if !bytes.Equal(whole, buffered) {
		t.Error("Expected buffered digest to match whole-file digest")
	}
}

func TestHashFileInterruptible_Shutdown(t *testing.T) {
	tempDir := t.TempDir()
	path := writeTestFile(t, tempDir, "data.txt", "some content")

	algorithm, err := GetHashAlgorithm("sha1")
	if err != nil {
		t.Fatalf("Failed to get algorithm: %v", err)
	}

	shutdownChan := make(chan struct{})
	close(shutdownChan)

	if _, err := HashFileInterruptible(path, algorithm, 64, shutdownChan); err == nil {
		t.Error("Expected error when shutdown channel is closed")
	}
}
