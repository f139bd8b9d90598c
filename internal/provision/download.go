package provision

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"

	"github.com/vidtree/pybox/internal/model"
)

// downloadFile streams url into dstPath. Any non 200 response is a
// *model.DownloadError. The partial file is removed on failure.
func (r *RuntimeInstaller) downloadFile(ctx context.Context, url, dstPath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w: %w", err, model.ErrDownloadFailed)
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("executing request to %s: %w: %w", url, err, model.ErrDownloadFailed)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &model.DownloadError{URL: url, StatusCode: resp.StatusCode}
	}

	f, err := os.Create(dstPath)
	if err != nil {
		return fmt.Errorf("creating file %s: %w", dstPath, err)
	}
	defer f.Close()

	var dst io.Writer = f
	if r.statusWriter != nil {
		pw := NewProgressWriter(f, r.statusWriter, path.Base(req.URL.Path), resp.ContentLength)
		defer pw.Finish()
		dst = pw
	}

	if _, err := io.Copy(dst, resp.Body); err != nil {
		f.Close()
		os.Remove(dstPath)
		return fmt.Errorf("writing file %s: %w: %w", dstPath, err, model.ErrDownloadFailed)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("closing file %s: %w", dstPath, err)
	}

	return nil
}
