package storage

import (
	"context"
	"fmt"
	"io"
)

// copyBody streams src into dst, distinguishing the two failure directions:
// a read error returns unwrapped so upstream limit errors keep their
// identity, a write error wraps ErrStoreFailed. Cancellation is checked
// between chunks so an abandoned session stops writing promptly.
func copyBody(ctx context.Context, dst io.Writer, src io.Reader) (int64, error) {
	buf := make([]byte, 32<<10)
	var written int64

	for {
		if err := ctx.Err(); err != nil {
			if err == context.DeadlineExceeded {
				return written, fmt.Errorf("%w: %v", ErrOperationTimeout, err)
			}
			return written, fmt.Errorf("%w: %v", ErrOperationCanceled, err)
		}

		n, rerr := src.Read(buf)
		if n > 0 {
			wn, werr := dst.Write(buf[:n])
			written += int64(wn)
			if werr != nil {
				return written, fmt.Errorf("%w: %w", ErrStoreFailed, werr)
			}
			if wn < n {
				return written, fmt.Errorf("%w: %w", ErrStoreFailed, io.ErrShortWrite)
			}
		}
		if rerr == io.EOF {
			return written, nil
		}
		if rerr != nil {
			return written, rerr
		}
	}
}
