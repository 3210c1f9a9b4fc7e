package aws

import (
	"io"
	"sync"

	"github.com/skyarchive/voaccess/internal/logger"
)

// progressWriter wraps the destination file so the parallel part downloads
// can report transfer progress. Parts land out of order, so the byte counter
// only ever grows.
type progressWriter struct {
	w     io.WriterAt
	total int64
	uri   string

	mu      sync.Mutex
	written int64
	lastPct int
}

func (pw *progressWriter) WriteAt(p []byte, off int64) (int, error) {
	n, err := pw.w.WriteAt(p, off)
	if n > 0 {
		pw.advance(int64(n))
	}
	return n, err
}

func (pw *progressWriter) advance(n int64) {
	pw.mu.Lock()
	defer pw.mu.Unlock()

	pw.written += n
	if pw.total <= 0 {
		return
	}
	pct := int(pw.written * 100 / pw.total)
	if pct >= pw.lastPct+10 || pct == 100 {
		pw.lastPct = pct
		logger.Debug("download progress", logger.Fields{
			"uri":     pw.uri,
			"written": pw.written,
			"total":   pw.total,
			"percent": pct,
		})
	}
}
