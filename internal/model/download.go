package model

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
)

// ProgressFunc receives download progress. total is 0 when the server
// does not announce a content length.
type ProgressFunc func(downloaded, total int64)

// Download fetches the named model into dir, reporting progress along
// the way. The file appears under its final name only after the full
// body has been written, so a crashed download never leaves a partial
// model behind.
func Download(ctx context.Context, dir, name string, onProgress ProgressFunc) error {
	return DownloadFrom(ctx, Lookup(name).URL, Path(dir, name), onProgress)
}

// DownloadFrom fetches url into destPath via a temp file and rename.
func DownloadFrom(ctx context.Context, url, destPath string, onProgress ProgressFunc) error {
	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return fmt.Errorf("create models directory: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build download request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("download model: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download model: HTTP %d", resp.StatusCode)
	}

	tmpPath := destPath + ".tmp"
	out, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		out.Close()
		os.Remove(tmpPath)
	}()

	total := resp.ContentLength
	if total < 0 {
		total = 0
	}
	reader := &progressReader{reader: resp.Body, total: total, onProgress: onProgress}
	if _, err := io.Copy(out, reader); err != nil {
		return fmt.Errorf("write model file: %w", err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("close model file: %w", err)
	}
	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("finalize model file: %w", err)
	}
	return nil
}

type progressReader struct {
	reader     io.Reader
	total      int64
	downloaded int64
	onProgress ProgressFunc
}

func (pr *progressReader) Read(p []byte) (int, error) {
	n, err := pr.reader.Read(p)
	pr.downloaded += int64(n)
	if pr.onProgress != nil && n > 0 {
		pr.onProgress(pr.downloaded, pr.total)
	}
	return n, err
}

// FormatBytes renders a byte count for progress display.
func FormatBytes(n int64) string {
	const (
		kb = 1024
		mb = kb * 1024
		gb = mb * 1024
	)
	switch {
	case n >= gb:
		return fmt.Sprintf("%.1f GB", float64(n)/gb)
	case n >= mb:
		return fmt.Sprintf("%.1f MB", float64(n)/mb)
	case n >= kb:
		return fmt.Sprintf("%.1f KB", float64(n)/kb)
	default:
		return fmt.Sprintf("%d B", n)
	}
}
