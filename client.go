package byterange

import (
	"fmt"
	"io"
	"net/http"
)

//go:generate mockgen -source=client.go -destination=mock_requester_test.go -package=byterange

// Requester is the part of *http.Client the range client needs.
type Requester interface {
	Do(r *http.Request) (*http.Response, error)
}

// closeBody drains and closes a response body so the transport can reuse the connection.
func closeBody(r io.ReadCloser) error {
	if r == nil {
		return nil
	}
	if _, err := io.Copy(io.Discard, r); err != nil {
		r.Close()
		return fmt.Errorf("failed to drain body: %w", err)
	}
	if err := r.Close(); err != nil {
		return fmt.Errorf("failed to close body: %w", err)
	}
	return nil
}
