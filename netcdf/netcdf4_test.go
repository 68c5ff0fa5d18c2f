package netcdf

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/batchatco/go-nc4meta/netcdf/nc4"
)

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.nc")
	f, err := nc4.Create(good, 0, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.Root().DefDim("x", 2); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}

	for _, tc := range []struct {
		path string
		want error
	}{
		{writeFile(t, dir, "empty", nil), ErrUnknown},
		{writeFile(t, dir, "bogus", []byte("bogus")), ErrUnknown},
		{writeFile(t, dir, "cdf.nc", []byte("CDF\x01")), ErrClassic},
		{good, nil},
	} {
		g, err := Open(tc.path)
		if !errors.Is(err, tc.want) {
			t.Error("Open", tc.path, "expected", tc.want, "got", err)
		}
		if g != nil {
			g.Close()
		}
	}

	g, err := Open(good)
	if err != nil {
		t.Fatal(err)
	}
	defer g.Close()
	if n, ok := g.GetDimension("x"); !ok || n != 2 {
		t.Error("bad dimension", n, ok)
	}
}

func TestOpenMissing(t *testing.T) {
	if _, err := Open(filepath.Join(t.TempDir(), "missing.nc")); !errors.Is(err, os.ErrNotExist) {
		t.Error("expected not exist, got", err)
	}
}

func TestOpenWith(t *testing.T) {
	ctx := nc4.NewContext()
	if err := ctx.SetChunkCache(1<<20, 101, 0.5); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "with.nc")
	f, err := nc4.Create(path, 0, &nc4.Options{Context: ctx})
	if err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}
	g, err := OpenWith(path, &nc4.Options{Context: ctx})
	if err != nil {
		t.Fatal(err)
	}
	g.Close()
	g.Close()
}
