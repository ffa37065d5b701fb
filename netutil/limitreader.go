package netutil

import (
	"errors"
	"fmt"
	"io"
)

// LimitedReader wraps an io.Reader with a hard size cap. Unlike
// io.LimitReader it reports exceeding the cap as an error instead of a
// silent EOF, so oversized artifact downloads fail loudly.
type LimitedReader struct {
	r         io.Reader
	remaining int64
	limit     int64
	read      int64
	eof       bool
}

// NewLimitedReader creates a reader that will deliver at most limit bytes.
func NewLimitedReader(r io.Reader, limit int64) *LimitedReader {
	return &LimitedReader{
		r:         r,
		remaining: limit,
		limit:     limit,
	}
}

// Read implements io.Reader with size limit enforcement.
func (l *LimitedReader) Read(p []byte) (n int, err error) {
	if l.remaining <= 0 {
		if l.eof {
			return 0, io.EOF
		}
		return 0, &SizeLimitExceededError{Limit: l.limit, Read: l.read}
	}

	if int64(len(p)) > l.remaining {
		p = p[:l.remaining]
	}

	n, err = l.r.Read(p)
	l.remaining -= int64(n)
	l.read += int64(n)

	// At the boundary, peek one byte so truncation is detected here rather
	// than on the caller's next read. Content of exactly limit bytes is
	// within the cap, so an EOF peek marks clean exhaustion.
	if l.remaining == 0 && err == nil {
		var buf [1]byte
		extra, extraErr := l.r.Read(buf[:])
		if extra > 0 {
			return n, &SizeLimitExceededError{Limit: l.limit, Read: l.read + 1}
		}
		if extraErr == io.EOF {
			l.eof = true
		} else if extraErr != nil {
			return n, extraErr
		}
	}

	return n, err
}

// BytesRead returns the number of bytes read so far.
func (l *LimitedReader) BytesRead() int64 {
	return l.read
}

// SizeLimitExceededError is returned when the size limit is exceeded.
type SizeLimitExceededError struct {
	Limit int64
	Read  int64
}

func (e *SizeLimitExceededError) Error() string {
	return fmt.Sprintf("size limit exceeded: read %d bytes, limit is %d bytes", e.Read, e.Limit)
}

// IsSizeLimitExceededError reports whether err is a SizeLimitExceededError.
func IsSizeLimitExceededError(err error) bool {
	var sizeLimitErr *SizeLimitExceededError
	return errors.As(err, &sizeLimitErr)
}
