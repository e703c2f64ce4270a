package pagination

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeToken(t *testing.T) {
	postingDate := time.Date(2024, 5, 15, 0, 0, 0, 0, time.UTC)
	createdAt := time.Date(2024, 5, 15, 10, 30, 0, 123456789, time.UTC)

	token := EncodeToken(postingDate, createdAt)
	require.NotEmpty(t, token)

	gotPostingDate, gotCreatedAt, err := DecodeToken(token)
	require.NoError(t, err)
	assert.True(t, postingDate.Equal(gotPostingDate))
	assert.True(t, createdAt.Equal(gotCreatedAt))
}

func TestDecodeTokenInvalidBase64(t *testing.T) {
	_, _, err := DecodeToken("not-base64!!")
	assert.Error(t, err)
}

func TestDecodeTokenMissingSeparator(t *testing.T) {
	_, _, err := DecodeToken("bm8tc2VwYXJhdG9y") // "no-separator"
	assert.Error(t, err)
}

func TestDecodeTokenBadTimestamps(t *testing.T) {
	_, _, err := DecodeToken("YWJjfGRlZg==") // "abc|def"
	assert.Error(t, err)
}
