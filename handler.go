package byterange

import (
	"errors"
	"io/fs"
	"log/slog"
	"mime"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/fooofei/go/byterange/config"
)

// ErrOutsideRoot is returned when a request path resolves outside the served directory.
var ErrOutsideRoot = errors.New("path outside root")

// Handler serves the files under a directory with byte range support.
type Handler struct {
	root         string
	chunkSize    int64
	acceptRanges bool
	logger       *slog.Logger
}

var _ http.Handler = (*Handler)(nil)

// NewHandler returns a Handler configured by cfg. A nil logger discards.
func NewHandler(cfg config.Server, logger *slog.Logger) *Handler {
	return &Handler{
		root:         cfg.Root,
		chunkSize:    cfg.ChunkSize,
		acceptRanges: !cfg.DisableRanges,
		logger:       orDiscard(logger),
	}
}

// ServeFile answers r with the file at name, honouring a single bytes range.
// Partial responses are capped at chunkSize bytes when it is positive.
func ServeFile(w http.ResponseWriter, r *http.Request, name string, chunkSize int64) {
	var h = Handler{chunkSize: chunkSize, acceptRanges: true, logger: orDiscard(nil)}
	h.serveFile(w, r, name)
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}
	name, err := h.resolve(r.URL.Path)
	if err != nil {
		h.logger.Warn("rejecting request path", userData("path", r.URL.Path), slog.Any("err", err))
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	h.serveFile(w, r, name)
}

// resolve maps a URL path onto a file below the root directory.
func (h *Handler) resolve(urlPath string) (string, error) {
	var clean = path.Clean("/" + urlPath)
	var name = filepath.Join(h.root, filepath.FromSlash(clean))
	rel, err := filepath.Rel(h.root, name)
	if err != nil {
		return "", err
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", ErrOutsideRoot
	}
	return name, nil
}

func (h *Handler) serveFile(w http.ResponseWriter, r *http.Request, name string) {
	info, err := os.Stat(name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			http.NotFound(w, r)
			return
		}
		h.logger.Error("stat failed", userData("path", name), slog.Any("err", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	if info.IsDir() {
		http.NotFound(w, r)
		return
	}

	var totalLength = info.Size()
	var header = w.Header()
	if h.acceptRanges {
		header.Set(HeaderAcceptRanges, UnitBytes)
	}
	header.Set(HeaderContentType, detectContentType(name))

	var span = Span{Offset: 0, Length: totalLength}
	var status = http.StatusOK
	if raw := r.Header.Get(HeaderRange); raw != "" && h.acceptRanges {
		if _, ok := Parse(raw); !ok {
			// RFC 7233 3.1, a Range header that cannot be understood is ignored
			h.logger.Debug("ignoring malformed range", slog.String("range", raw), userData("path", name))
		} else if span, ok = Resolve(raw, totalLength, h.chunkSize); !ok {
			header.Set(HeaderContentRange, UnsatisfiedContentRange(totalLength))
			http.Error(w, http.StatusText(http.StatusRequestedRangeNotSatisfiable), http.StatusRequestedRangeNotSatisfiable)
			return
		} else {
			status = http.StatusPartialContent
			header.Set(HeaderContentRange, span.ContentRange(totalLength))
		}
	}
	header.Set(HeaderContentLength, strconv.FormatInt(span.Length, 10))
	w.WriteHeader(status)

	if r.Method == http.MethodHead {
		return
	}

	n, err := Stream{Path: name, Offset: span.Offset, Length: span.Length}.WriteTo(w)
	if err != nil {
		h.logger.Warn("aborting response", userData("path", name),
			slog.Int64("offset", span.Offset), slog.Int64("length", span.Length),
			slog.Int64("written", n), slog.Any("err", err))
		panic(http.ErrAbortHandler)
	}
	h.logger.Debug("served", userData("path", name), slog.Int("status", status),
		slog.Int64("offset", span.Offset), slog.Int64("length", n))
}

// detectContentType sniffs the start of the file, falling back to the extension.
func detectContentType(name string) string {
	if mt, err := mimetype.DetectFile(name); err == nil {
		return mt.String()
	}
	if ct := mime.TypeByExtension(filepath.Ext(name)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
