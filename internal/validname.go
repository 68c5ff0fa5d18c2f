package internal

import (
	"regexp"
)

// MaxNameLen is the longest name, in bytes, a group, type, dimension,
// variable or attribute may have.
const MaxNameLen = 256

const (
	// A valid name must start with a letter, digit or underscore.
	// It may contain any character after that except control and slash.
	pattern = `^[\pL\pN_][^\pC/]*$`
	// It may not end with a whitespace character, or be a reserved word.
	antiPattern = `(\pZ|^(u?byte|char|string|u?short|u?int|u?int64|uint64|float|double|enum|opaque|compound))$`
)

var (
	re     = regexp.MustCompile(pattern)
	antiRe = regexp.MustCompile(antiPattern)
)

// IsValidNetCDFName reports whether name may name a netCDF-4 object:
// well formed, not reserved and no longer than MaxNameLen bytes.
func IsValidNetCDFName(name string) bool {
	return len(name) <= MaxNameLen && re.MatchString(name) && !antiRe.MatchString(name)
}
