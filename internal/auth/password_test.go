package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifyPassword(t *testing.T) {
	hashed, err := HashPassword("admin")
	require.NoError(t, err)
	require.True(t, IsHashed(hashed))

	tests := []struct {
		name       string
		stored     string
		password   string
		wantRehash bool
		wantErr    error
	}{
		{"hash matches", hashed, "admin", false, nil},
		{"hash mismatch", hashed, "Admin", false, ErrPasswordMismatch},
		{"legacy plaintext matches", "user1", "user1", true, nil},
		{"legacy plaintext mismatch", "user1", "user2", false, ErrPasswordMismatch},
		{"empty stored", "", "x", false, ErrPasswordMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rehash, err := VerifyPassword(tt.stored, tt.password)
			assert.Equal(t, tt.wantErr, err)
			assert.Equal(t, tt.wantRehash, rehash)
		})
	}
}
