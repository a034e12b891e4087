package storage

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"media-storage-backend/internal/models"
)

// RangeSource is the slice of the object store the range reader needs.
type RangeSource interface {
	Size(ctx context.Context, bucket models.Bucket, key string) (uint64, error)
	GetRange(ctx context.Context, bucket models.Bucket, key string, start, end int64) ([]byte, error)
}

var ErrInvalidRange = fmt.Errorf("invalid byte range")

// RangeReader serves an object's bytes as a pull-based sequence of
// bounded chunks. Without an explicit range it auto-chunks from the
// cursor; with one it serves exactly the requested window. Each chunk is
// fetched only when the consumer asks for more, so memory stays bounded
// for arbitrarily large objects. A failed chunk read poisons the reader.
type RangeReader struct {
	ctx    context.Context
	src    RangeSource
	bucket models.Bucket
	key    string

	cursor    uint64
	chunkSize uint64
	total     uint64

	explicit      bool
	explicitStart uint64
	explicitEnd   uint64

	buf []byte
	err error
}

// NewRangeReader heads the object to learn its length and seeds the
// cursor. rangeHeader, when non-empty, must follow "bytes=start-end" or
// "bytes=start-" semantics; an open end is closed with the object length.
func NewRangeReader(ctx context.Context, src RangeSource, bucket models.Bucket, key string, startPos uint64, rangeHeader string, chunkSize uint64) (*RangeReader, error) {
	total, err := src.Size(ctx, bucket, key)
	if err != nil {
		return nil, err
	}

	r := &RangeReader{
		ctx:       ctx,
		src:       src,
		bucket:    bucket,
		key:       key,
		cursor:    startPos,
		chunkSize: chunkSize,
		total:     total,
	}

	if rangeHeader != "" {
		start, end, err := parseRange(rangeHeader, total)
		if err != nil {
			return nil, err
		}
		r.explicit = true
		r.explicitStart = start
		r.explicitEnd = end
		r.cursor = start
	}

	return r, nil
}

// TotalLength is the object's full byte length.
func (r *RangeReader) TotalLength() uint64 { return r.total }

// Window reports the byte window the reader will serve and whether it
// came from an explicit range.
func (r *RangeReader) Window() (start, end uint64, explicit bool) {
	if r.explicit {
		return r.explicitStart, r.explicitEnd, true
	}
	if r.total == 0 {
		return 0, 0, false
	}
	return r.cursor, r.total - 1, false
}

// Remaining is the number of bytes left to serve, used as the response
// content length before the first read.
func (r *RangeReader) Remaining() uint64 {
	if r.explicit {
		return r.explicitEnd - r.explicitStart + 1
	}
	if r.cursor >= r.total {
		return 0
	}
	return r.total - r.cursor
}

func (r *RangeReader) Read(p []byte) (int, error) {
	if r.err != nil {
		return 0, r.err
	}
	if len(r.buf) == 0 {
		if err := r.fill(); err != nil {
			r.err = err
			return 0, err
		}
	}
	n := copy(p, r.buf)
	r.buf = r.buf[n:]
	return n, nil
}

func (r *RangeReader) fill() error {
	var end uint64
	if r.explicit {
		if r.cursor > r.explicitEnd {
			return io.EOF
		}
		end = r.explicitEnd
	} else {
		if r.cursor >= r.total {
			return io.EOF
		}
		end = r.cursor + r.chunkSize - 1
		if end > r.total-1 {
			end = r.total - 1
		}
	}

	chunk, err := r.src.GetRange(r.ctx, r.bucket, r.key, int64(r.cursor), int64(end))
	if err != nil {
		return fmt.Errorf("range read %s %d-%d: %w", r.key, r.cursor, end, err)
	}
	r.cursor = end + 1
	r.buf = chunk
	return nil
}

// parseRange interprets an HTTP Range header for a single byte window.
// Suffix ranges ("bytes=-N") and multipart ranges are not supported.
func parseRange(header string, total uint64) (start, end uint64, err error) {
	spec, ok := strings.CutPrefix(header, "bytes=")
	if !ok {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidRange, header)
	}
	first, last, ok := strings.Cut(spec, "-")
	if !ok || first == "" {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidRange, header)
	}

	start, err = strconv.ParseUint(first, 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidRange, header)
	}

	if last == "" {
		if total == 0 {
			return 0, 0, fmt.Errorf("%w: empty object", ErrInvalidRange)
		}
		end = total - 1
	} else {
		end, err = strconv.ParseUint(last, 10, 64)
		if err != nil {
			return 0, 0, fmt.Errorf("%w: %q", ErrInvalidRange, header)
		}
	}

	if start > end || start >= total {
		return 0, 0, fmt.Errorf("%w: %d-%d of %d", ErrInvalidRange, start, end, total)
	}
	if end > total-1 {
		end = total - 1
	}
	return start, end, nil
}
