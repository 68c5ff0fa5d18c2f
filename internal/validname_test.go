package internal

import (
	"strings"
	"testing"
)

func TestGood(t *testing.T) {
	var goodStrings = []string{
		"_",
		"a",
		"1",
		"0°",
		"time_bnds",
		"_nc4_non_coord_x",
		"integer",
		"my int",
		"ubytes",
		strings.Repeat("n", MaxNameLen),
		strings.Repeat("é", MaxNameLen/2),
	}
	for _, s := range goodStrings {
		if !IsValidNetCDFName(s) {
			t.Error("name should be good", s)
		}
	}
}

func TestBad(t *testing.T) {
	var badStrings = []string{
		"",
		"_ ",
		"/",
		"no/good",
		"\ta ",
		"1\t",
		"°",
		"°C",
		"\x08",
		strings.Repeat("n", MaxNameLen+1),
		"a" + strings.Repeat("é", MaxNameLen/2),
	}
	for _, s := range badStrings {
		if IsValidNetCDFName(s) {
			t.Error("name should be bad", s)
		}
	}
}

func TestReservedTypeNames(t *testing.T) {
	for _, s := range []string{"byte", "ubyte", "char", "string", "short", "ushort",
		"int", "uint", "int64", "uint64", "float", "double",
		"enum", "opaque", "compound"} {
		if IsValidNetCDFName(s) {
			t.Error("reserved word accepted as a name", s)
		}
	}
}
