package converter

import (
	"golang.org/x/image/font/sfnt"
)

// fontName returns the full font name from the name table, or an empty
// string when the font cannot be parsed that far. Used for logging only.
func fontName(data []byte) string {
	f, err := sfnt.Parse(data)
	if err != nil {
		return ""
	}
	name, err := f.Name(&sfnt.Buffer{}, sfnt.NameIDFull)
	if err != nil {
		return ""
	}
	return name
}
