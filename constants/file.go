package constants

import "strings"

// AllowedExtensions holds the file extensions picked up from an input directory.
var AllowedExtensions = map[string]struct{}{
	"pdf": {},
}

// DefaultDBPath is used when no db_path is given on the command line or in config.
const DefaultDBPath = "cufe_database.db"

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// IsAllowedExt reports whether ext (with or without the dot, any case) is accepted.
func IsAllowedExt(ext string) bool {
	_, ok := AllowedExtensions[NormalizeExt(ext)]
	return ok
}
