package filename

import (
	"regexp"
	"strings"
)

// Extensions the backend is known to accept for upload or conversion. Only
// these are stripped when cleaning a display title, so dots that are part of
// the title itself survive.
var commonExtensions = map[string]bool{
	".pdf": true, ".doc": true, ".docx": true, ".xls": true, ".xlsx": true,
	".ppt": true, ".pptx": true, ".odt": true, ".ods": true, ".odp": true,
	".rtf": true, ".txt": true, ".csv": true, ".hwp": true, ".hwpx": true,
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".bmp": true,
	".svg": true, ".webp": true, ".tif": true, ".tiff": true,
	".zip": true, ".rar": true, ".7z": true, ".tar": true, ".gz": true, ".bz2": true,
	".html": true, ".htm": true, ".xml": true, ".json": true, ".md": true,
}

var (
	illegalChars = regexp.MustCompile(`[\\/:*?"<>|]+`)
	dedupPrefix  = regexp.MustCompile(`^[0-9a-fA-F]{32}_`)
)

// RemoveExtension strips trailing ".pdf" suffixes (the conversion pipeline can
// stack them, e.g. "report.pdf.pdf") and then at most one known extension.
func RemoveExtension(name string) string {
	if name == "" {
		return ""
	}
	for {
		lower := strings.ToLower(name)
		if !strings.HasSuffix(lower, ".pdf") {
			break
		}
		name = name[:len(name)-len(".pdf")]
	}
	if idx := strings.LastIndex(name, "."); idx > 0 {
		if commonExtensions[strings.ToLower(name[idx:])] {
			name = name[:idx]
		}
	}
	return name
}

// BasenameNoExt returns the last path segment of a storage key with its
// extension removed.
func BasenameNoExt(key string) string {
	base := key
	if idx := strings.LastIndex(key, "/"); idx >= 0 {
		base = key[idx+1:]
	}
	return RemoveExtension(base)
}

// StripDedupPrefix removes the 32-hex-character deduplication prefix the
// upload pipeline prepends to object basenames.
func StripDedupPrefix(name string) string {
	if dedupPrefix.MatchString(name) {
		return name[33:]
	}
	return name
}

// DisplayTitle cleans a title for on-screen use, falling back when empty.
func DisplayTitle(title, fallback string) string {
	if title == "" {
		return fallback
	}
	return RemoveExtension(title)
}

// SafePDFName builds a filesystem-safe download name carrying exactly one
// ".pdf" extension.
func SafePDFName(name string) string {
	if name == "" {
		return "document.pdf"
	}
	cleaned := strings.TrimSpace(illegalChars.ReplaceAllString(name, "_"))
	return RemoveExtension(cleaned) + ".pdf"
}
