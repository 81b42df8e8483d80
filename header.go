package byterange

import (
	"errors"
	"net/http"
	"strings"
)

var errParse = errors.New("content-range parse error")

// ParseContentRange parses a Content-Range response value.
// Content-Range: bytes 42-1233/1234
// Content-Range: bytes 42-1233/*
// Content-Range: bytes */1234
// Unknown parts are reported as -1.
func ParseContentRange(str string) (first, last, length int64, err error) {
	first, last, length = -1, -1, -1

	unit, rest, ok := strings.Cut(str, " ")
	if !ok || unit != UnitBytes {
		return -1, -1, -1, errParse
	}
	span, total, ok := strings.Cut(rest, "/")
	if !ok {
		return -1, -1, -1, errParse
	}
	if total != "*" {
		if length, ok = parseDigits(total); !ok {
			return -1, -1, -1, errParse
		}
	}
	if span != "*" {
		firstStr, lastStr, ok := strings.Cut(span, "-")
		if !ok {
			return -1, -1, -1, errParse
		}
		if first, ok = parseDigits(firstStr); !ok {
			return -1, -1, -1, errParse
		}
		if last, ok = parseDigits(lastStr); !ok || last < first {
			return -1, -1, -1, errParse
		}
		if length != -1 && last >= length {
			return -1, -1, -1, errParse
		}
	}
	if first == -1 && length == -1 {
		return -1, -1, -1, errParse
	}
	return first, last, length, nil
}

// Meta is what a range response tells about the whole resource.
type Meta struct {
	start        int64
	end          int64
	size         int64
	lastModified string
	etag         string
	contentType  string
}

// sameResource reports whether two responses describe the same version of a resource.
func (m Meta) sameResource(o Meta) bool {
	return m.size == o.size && m.lastModified == o.lastModified && m.etag == o.etag
}

func getMeta(resp *http.Response) (Meta, error) {
	var meta = Meta{
		start:        -1,
		end:          -1,
		size:         -1,
		lastModified: resp.Header.Get(HeaderLastModified),
		etag:         resp.Header.Get(HeaderETag),
		contentType:  resp.Header.Get(HeaderContentType),
	}
	switch resp.StatusCode {
	case http.StatusOK:
		meta.size = resp.ContentLength
	case http.StatusPartialContent, http.StatusRequestedRangeNotSatisfiable:
		contentRange := resp.Header.Get(HeaderContentRange)
		if contentRange == "" {
			return Meta{}, errParse
		}
		var err error
		if meta.start, meta.end, meta.size, err = ParseContentRange(contentRange); err != nil {
			return Meta{}, err
		}
	}
	return meta, nil
}
