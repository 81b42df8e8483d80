package byterange

const (
	HeaderAcceptRanges  = "Accept-Ranges"
	HeaderContentRange  = "Content-Range"
	HeaderRange         = "Range"
	HeaderContentLength = "Content-Length"
	HeaderContentType   = "Content-Type"
	HeaderETag          = "ETag"
	HeaderLastModified  = "Last-Modified"

	// UnitBytes is the only range unit understood here.
	UnitBytes = "bytes"

	rangePrefix = UnitBytes + "="
)
