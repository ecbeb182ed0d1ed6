package storage

import (
	"crypto/sha256"
	"encoding/hex"
	"testing"
)

func TestValidateFileIntegrity(t *testing.T) {
	data := []byte("bakery menu v2")
	sum := sha256.Sum256(data)
	hash := hex.EncodeToString(sum[:])

	s := &S3Service{}
	if err := s.ValidateFileIntegrity(data, hash); err != nil {
		t.Fatalf("expected matching content to verify: %v", err)
	}

	if err := s.ValidateFileIntegrity([]byte("tampered"), hash); err == nil {
		t.Fatal("expected tampered content to fail verification")
	}
}
