//go:build linux

package byterange

import (
	"os"

	"golang.org/x/sys/unix"
)

// openSequential opens the file whilst advising the kernel that the byte range
// starting at offset will be read sequentially, which increases read-ahead. A
// zero length means through to the end of the file.
func openSequential(path string, offset, length int64) (*os.File, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	// advice only, the kernel gives no guarantee and a failure here changes nothing
	_ = unix.Fadvise(int(file.Fd()), offset, length, unix.FADV_SEQUENTIAL)
	return file, nil
}
