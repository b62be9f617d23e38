package constants

import "strings"

// DocKind is the detected document family, derived from the file extension.
type DocKind string

const (
	PDF   DocKind = "PDF"
	IMAGE DocKind = "IMAGE"
	TEXT  DocKind = "TEXT"
	DOCX  DocKind = "DOCX"
)

// extToKind maps normalized file extensions to their document kind.
var extToKind = map[string]DocKind{
	"pdf": PDF,

	"png":  IMAGE,
	"jpg":  IMAGE,
	"jpeg": IMAGE,
	"bmp":  IMAGE,
	"tiff": IMAGE,
	"gif":  IMAGE,

	"txt": TEXT,
	"md":  TEXT,
	"csv": TEXT,
	"tsv": TEXT,

	"docx": DOCX,
}

var extToMIME = map[string]string{
	"pdf":  "application/pdf",
	"png":  "image/png",
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"bmp":  "image/bmp",
	"tiff": "image/tiff",
	"gif":  "image/gif",
	"txt":  "text/plain",
	"md":   "text/markdown",
	"csv":  "text/csv",
	"tsv":  "text/tab-separated-values",
	"docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// KindForExt resolves a file extension to a document kind.
func KindForExt(ext string) (DocKind, bool) {
	k, ok := extToKind[NormalizeExt(ext)]
	return k, ok
}

// MIMEForExt returns the MIME type for a known extension, or
// application/octet-stream when the extension is unrecognized.
func MIMEForExt(ext string) string {
	if mt, ok := extToMIME[NormalizeExt(ext)]; ok {
		return mt
	}
	return "application/octet-stream"
}
