package access

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateRoomCode(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		code, err := GenerateRoomCode(6)
		require.NoError(t, err)
		assert.Len(t, code, 6)
		for _, c := range code {
			assert.True(t, strings.ContainsRune(codeAlphabet, c), "invalid character %c", c)
		}
		seen[code] = true
	}
	assert.Greater(t, len(seen), 90, "codes should rarely collide")

	_, err := GenerateRoomCode(0)
	assert.Error(t, err)
}

func TestGeneratePasscode(t *testing.T) {
	p, err := GeneratePasscode()
	require.NoError(t, err)
	assert.Len(t, p, PasscodeLength)
	for _, c := range p {
		assert.True(t, c >= '0' && c <= '9')
	}
}

func TestPasscodeHashing(t *testing.T) {
	hash, err := HashPasscode("123456")
	require.NoError(t, err)
	assert.NotEqual(t, "123456", hash)

	tests := []struct {
		name     string
		hash     string
		passcode string
		wantErr  error
		anyErr   bool
	}{
		{"match", hash, "123456", nil, false},
		{"mismatch", hash, "654321", ErrBadPasscode, true},
		{"malformed hash", "not-a-hash", "123456", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := VerifyPasscode(tt.hash, tt.passcode)
			if !tt.anyErr {
				assert.NoError(t, err)
				return
			}
			assert.Error(t, err)
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr))
			}
		})
	}
}
