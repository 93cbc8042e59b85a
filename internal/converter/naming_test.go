package converter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"My Font Bold", "My-Font-Bold"},
		{"  leading and trailing  ", "--leading-and-trailing--"},
		{"NoSpaces", "NoSpaces"},
		{"already-dashed_name.v2", "already-dashed_name.v2"},
		{"Ünïcode Fönt", "Ünïcode-Fönt"},
		{"Tab\tStays", "Tab\tStays"},
		{"", ""},
	}

	for _, test := range tests {
		assert.Equal(t, test.expected, SanitizeName(test.input), "SanitizeName(%q)", test.input)
	}
}

func TestSanitizeName_Idempotent(t *testing.T) {
	for _, name := range []string{"A B C", "Plain", " x "} {
		once := SanitizeName(name)
		assert.Equal(t, once, SanitizeName(once))
		assert.Len(t, once, len(name))
	}
}

func TestDeductOutputPath(t *testing.T) {
	woff := &WoffConverter{}
	woff2 := &Woff2Converter{}

	tests := []struct {
		input string
		woff  string
		woff2 string
	}{
		{"My Font Bold.otf", "My-Font-Bold.woff", "My-Font-Bold.woff2"},
		{"Plain.otf", "Plain.woff", "Plain.woff2"},
		{"sub dir/Some Font.OTF", "sub dir/Some-Font.woff", "sub dir/Some-Font.woff2"},
		{"font.v2 beta.otf", "font.v2-beta.woff", "font.v2-beta.woff2"},
	}

	for _, test := range tests {
		assert.Equal(t, test.woff, woff.DeductOutputPath(test.input))
		assert.Equal(t, test.woff2, woff2.DeductOutputPath(test.input))
	}
}
