package netutil

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLimitedReaderUnderLimit(t *testing.T) {
	lr := NewLimitedReader(strings.NewReader("hello"), 10)

	data, err := io.ReadAll(lr)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
	assert.Equal(t, int64(5), lr.BytesRead())
}

func TestLimitedReaderExactLimit(t *testing.T) {
	lr := NewLimitedReader(strings.NewReader("hello"), 5)

	data, err := io.ReadAll(lr)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
	assert.Equal(t, int64(5), lr.BytesRead())

	// Exhausted at exactly the limit: further reads report EOF, not a
	// limit violation.
	n, err := lr.Read(make([]byte, 1))
	assert.Zero(t, n)
	assert.ErrorIs(t, err, io.EOF)
}

func TestLimitedReaderOverLimit(t *testing.T) {
	lr := NewLimitedReader(bytes.NewReader(make([]byte, 100)), 10)

	_, err := io.ReadAll(lr)
	require.Error(t, err)
	assert.True(t, IsSizeLimitExceededError(err))

	var serr *SizeLimitExceededError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, int64(10), serr.Limit)
}

func TestIsSizeLimitExceededError(t *testing.T) {
	assert.False(t, IsSizeLimitExceededError(io.EOF))
	assert.False(t, IsSizeLimitExceededError(nil))
	assert.True(t, IsSizeLimitExceededError(&SizeLimitExceededError{Limit: 1}))
}
