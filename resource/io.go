package resource

import (
	"context"
	"io"
)

type limitedWriter struct {
	ctx context.Context
	w   io.Writer
	rc  *Controller
}

// Writer wraps w so that every write waits for IO tokens.
func (c *Controller) Writer(ctx context.Context, w io.Writer) io.Writer {
	if c == nil || c.ioLimiter == nil {
		return w
	}
	return &limitedWriter{ctx: ctx, w: w, rc: c}
}

func (w *limitedWriter) Write(p []byte) (int, error) {
	if err := w.rc.AcquireIO(w.ctx, len(p)); err != nil {
		return 0, err
	}
	return w.w.Write(p)
}

type limitedReader struct {
	ctx context.Context
	r   io.Reader
	rc  *Controller
}

// Reader wraps r so that every read is charged for the bytes it returned.
func (c *Controller) Reader(ctx context.Context, r io.Reader) io.Reader {
	if c == nil || c.ioLimiter == nil {
		return r
	}
	return &limitedReader{ctx: ctx, r: r, rc: c}
}

func (r *limitedReader) Read(p []byte) (int, error) {
	n, err := r.r.Read(p)
	if n > 0 {
		if werr := r.rc.AcquireIO(r.ctx, n); werr != nil {
			return n, werr
		}
	}
	return n, err
}
