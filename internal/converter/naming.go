package converter

import (
	"path"
	"strings"
)

// SanitizeName replaces every space in name with a dash and leaves all other
// characters alone.
func SanitizeName(name string) string {
	return strings.ReplaceAll(name, " ", "-")
}

// deductOutputPath keeps the directory part of inputPath, sanitizes the stem
// of the base name and swaps the extension for ext.
func deductOutputPath(inputPath, ext string) string {
	dir, file := path.Split(inputPath)
	stem := strings.TrimSuffix(file, path.Ext(file))
	return dir + SanitizeName(stem) + ext
}
