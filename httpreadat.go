package byterange

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// ReaderAt is an io.ReaderAt over a resource served with byte range support.
// New instances must be created with NewReaderAt. It is safe for concurrent use.
type ReaderAt struct {
	client Requester
	req    *http.Request
	meta   Meta
}

var _ io.ReaderAt = (*ReaderAt)(nil)

// ErrValidationFailed is returned if the resource changed between requests.
var ErrValidationFailed = errors.New("validation failed")

// ErrNoRange is returned if the server does not answer range requests with partial content.
var ErrNoRange = errors.New("server does not support range requests")

// NewReaderAt probes the resource described by req with a one byte range
// request and keeps its size and validators. req is used as a prototype and
// copied for every request, its method must be GET.
func NewReaderAt(client Requester, req *http.Request) (*ReaderAt, error) {
	if client == nil || req == nil {
		return nil, errors.New("invalid args")
	}
	if req.Method != http.MethodGet {
		return nil, errors.New("invalid HTTP method, must be GET")
	}
	var ra = &ReaderAt{
		client: client,
		req:    req,
	}
	if err := ra.init(); err != nil {
		return nil, err
	}
	return ra, nil
}

// Size returns the size of the resource.
func (ra *ReaderAt) Size() int64 {
	return ra.meta.size
}

// ContentType returns the Content-Type of the resource.
func (ra *ReaderAt) ContentType() string {
	return ra.meta.contentType
}

func (ra *ReaderAt) LastModified() string {
	return ra.meta.lastModified
}

func (ra *ReaderAt) ETag() string {
	return ra.meta.etag
}

// Clone returns a ReaderAt sharing the probed metadata whose requests carry ctx.
func (ra *ReaderAt) Clone(ctx context.Context) *ReaderAt {
	var out = *ra
	out.req = ra.req.WithContext(ctx)
	return &out
}

func (ra *ReaderAt) init() error {
	var req = ra.cloneRequest()
	req.Header.Set(HeaderRange, FormatRange(0, 0))
	var resp, err = ra.client.Do(req)
	if err != nil {
		return fmt.Errorf("http request error %w", err)
	}
	defer closeBody(resp.Body)

	switch resp.StatusCode {
	case http.StatusPartialContent:
	case http.StatusRequestedRangeNotSatisfiable:
		// only an empty resource has no first byte
	default:
		return fmt.Errorf("unexpected http response %s, expect %v %w", resp.Status, http.StatusPartialContent, ErrNoRange)
	}
	if ra.meta, err = getMeta(resp); err != nil {
		return err
	}
	if ra.meta.size < 0 {
		return fmt.Errorf("unknown resource size in %q", resp.Header.Get(HeaderContentRange))
	}
	if resp.StatusCode == http.StatusRequestedRangeNotSatisfiable && ra.meta.size != 0 {
		return fmt.Errorf("probe for first byte of %d byte resource not satisfiable", ra.meta.size)
	}
	return nil
}

// ReadAt reads len(p) bytes starting at byte offset off. It returns the number
// of bytes read and the error, if any. ReadAt always returns a non-nil error
// when n < len(p), at the end of the resource that error is io.EOF.
//
// A server may answer with fewer bytes than asked for, when it caps partial
// responses, so ReadAt keeps requesting the remainder until p is filled.
// Changes of the size, ETag or Last-Modified between requests fail with
// ErrValidationFailed.
func (ra *ReaderAt) ReadAt(p []byte, off int64) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if off < 0 {
		return 0, fmt.Errorf("negative offset %d", off)
	}
	if off >= ra.meta.size {
		return 0, io.EOF
	}

	var returnErr error
	if remain := ra.meta.size - off; int64(len(p)) > remain {
		// never ask past the end, that is answered with 416
		p = p[:remain]
		returnErr = io.EOF
	}

	var n int
	for n < len(p) {
		var m, err = ra.readRange(p[n:], off+int64(n))
		n += m
		if err != nil {
			return n, err
		}
	}
	return n, returnErr
}

// readRange makes one range request for p and reads what the server returns,
// which is at least one byte on success.
func (ra *ReaderAt) readRange(p []byte, off int64) (int, error) {
	var req = ra.cloneRequest()
	var reqFirst = off
	var reqLast = off + int64(len(p)) - 1
	req.Header.Set(HeaderRange, FormatRange(reqFirst, reqLast))

	var resp, err = ra.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("http request error %w", err)
	}
	defer closeBody(resp.Body)

	if resp.StatusCode != http.StatusPartialContent {
		return 0, fmt.Errorf("unexpected http response %s, expect %v %w", resp.Status, http.StatusPartialContent, ErrNoRange)
	}

	var meta Meta
	if meta, err = getMeta(resp); err != nil {
		return 0, err
	}
	if !ra.meta.sameResource(meta) {
		return 0, ErrValidationFailed
	}
	if meta.start != reqFirst || meta.end > reqLast {
		return 0, fmt.Errorf(
			"received different range than requested (req=%d-%d, resp=%d-%d)",
			reqFirst, reqLast, meta.start, meta.end)
	}
	var want = meta.end - meta.start + 1
	if resp.ContentLength >= 0 && resp.ContentLength != want {
		return 0, fmt.Errorf("content-length %d mismatch with content-range length %d", resp.ContentLength, want)
	}

	n, err := io.ReadFull(resp.Body, p[:want])
	if err != nil {
		return n, fmt.Errorf("read range %d-%d body: %w", meta.start, meta.end, err)
	}
	return n, nil
}

func (ra *ReaderAt) cloneRequest() *http.Request {
	out := ra.req.Clone(ra.req.Context())
	out.Body = nil
	out.ContentLength = 0
	return out
}
