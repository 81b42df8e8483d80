package byterange

import (
	"fmt"
	"io"
)

// Stream is a byte span of a file. It is an io.WriterTo, so it can be handed
// to anything that streams a body out.
type Stream struct {
	Path   string
	Offset int64
	Length int64
}

var _ io.WriterTo = Stream{}

// WriteTo writes Length bytes of the file starting at Offset to w, or what is
// left of the file when it is shorter than Offset+Length. The file is closed
// before returning on every path.
//
// The copy goes through io.Copy with an *io.LimitedReader over the *os.File,
// which lets writers backed by a socket (net.TCPConn, http.ResponseWriter)
// use sendfile.
func (s Stream) WriteTo(w io.Writer) (int64, error) {
	if s.Offset < 0 || s.Length < 0 {
		return 0, fmt.Errorf("invalid span offset %d length %d", s.Offset, s.Length)
	}
	var file, err = openSequential(s.Path, s.Offset, s.Length)
	if err != nil {
		return 0, fmt.Errorf("open %s: %w", s.Path, err)
	}
	defer file.Close()

	if s.Length == 0 {
		return 0, nil
	}
	if _, err = file.Seek(s.Offset, io.SeekStart); err != nil {
		return 0, fmt.Errorf("seek %s to %d: %w", s.Path, s.Offset, err)
	}
	n, err := io.Copy(w, io.LimitReader(file, s.Length))
	if err != nil {
		return n, fmt.Errorf("copy %d bytes at %d from %s: %w", s.Length, s.Offset, s.Path, err)
	}
	return n, nil
}

// Emit writes length bytes of the file at path starting at offset to w.
func Emit(path string, offset, length int64, w io.Writer) (int64, error) {
	return Stream{Path: path, Offset: offset, Length: length}.WriteTo(w)
}
