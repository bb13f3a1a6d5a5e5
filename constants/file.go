package constants

import "strings"

// Source formats accepted by the text source.
const (
	PDF  = "PDF"
	TEXT = "TEXT"
)

// AllowedExtensions holds the file extensions picked up by batch and watch modes.
var AllowedExtensions = map[string]struct{}{
	"pdf": {},
	"txt": {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// MapExtToFormat maps a normalized extension to PDF or TEXT; "" when unsupported.
func MapExtToFormat(ext string) string {
	switch NormalizeExt(ext) {
	case "pdf":
		return PDF
	case "txt", "text":
		return TEXT
	default:
		return ""
	}
}
