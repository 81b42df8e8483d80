package byterange

import (
	"fmt"
	"io"
	"log/slog"
)

// userDataValue is a string that should be treated as user data, and therefore tagged as such in the logs.
type userDataValue string

func (u userDataValue) LogValue() slog.Value {
	return slog.StringValue(fmt.Sprintf("<ud>%s</ud>", string(u)))
}

// userData returns an Attr for a string value that should be treated as user data.
func userData(key, value string) slog.Attr {
	return slog.Any(key, userDataValue(value))
}

func orDiscard(logger *slog.Logger) *slog.Logger {
	if logger != nil {
		return logger
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
