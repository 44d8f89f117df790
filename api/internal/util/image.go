package util

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// maxImageBytes caps a single fetched image. Past this the handler should
// fail the fetch rather than balloon memory.
const maxImageBytes = 20 << 20

var imageClient = &http.Client{Timeout: 30 * time.Second}

// FetchImageBase64 downloads an image URL and returns its base64 encoding
// plus detected MIME. Encoding is streamed through base64.NewEncoder so a
// large image never needs a second full-size buffer.
func FetchImageBase64(ctx context.Context, url string) (b64, mime string, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", "", err
	}
	resp, err := imageClient.Do(req)
	if err != nil {
		return "", "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", "", fmt.Errorf("image fetch %d", resp.StatusCode)
	}

	body := io.LimitReader(resp.Body, maxImageBytes+1)

	// Read a small head for MIME sniffing, then stream the rest through the
	// encoder in chunks.
	head := make([]byte, 512)
	n, err := io.ReadFull(body, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", "", err
	}
	head = head[:n]

	var sb strings.Builder
	enc := base64.NewEncoder(base64.StdEncoding, &sb)
	if _, err := enc.Write(head); err != nil {
		return "", "", err
	}
	written, err := io.Copy(enc, body)
	if err != nil {
		return "", "", err
	}
	if err := enc.Close(); err != nil {
		return "", "", err
	}
	if int64(n)+written > maxImageBytes {
		return "", "", fmt.Errorf("image exceeds %d bytes", maxImageBytes)
	}

	mime = resp.Header.Get("Content-Type")
	if mime == "" || mime == "application/octet-stream" {
		mime = SniffMimeHTTP(head)
	}
	return sb.String(), mime, nil
}
