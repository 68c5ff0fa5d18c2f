// Package netcdf opens netCDF files for read-only metadata access.
package netcdf

import (
	"errors"
	"io"
	"os"

	"github.com/batchatco/go-nc4meta/netcdf/api"
	"github.com/batchatco/go-nc4meta/netcdf/nc4"
)

const (
	CDF = 'C'
	HDF = 0x89
)

var (
	ErrUnknown = errors.New("not a CDF or HDF5 file")
	ErrClassic = errors.New("classic format files are not supported")
)

// Open opens a netCDF-4 file by name with the default options.
func Open(fname string) (api.Group, error) {
	return OpenWith(fname, nil)
}

// OpenWith is like Open, but takes the options used to open the container.
func OpenWith(fname string, opts *nc4.Options) (api.Group, error) {
	file, err := os.Open(fname)
	if err != nil {
		return nil, err
	}
	kind, err := getKind(file)
	file.Close()
	if err != nil {
		return nil, ErrUnknown
	}
	switch kind {
	case CDF:
		return nil, ErrClassic
	case HDF:
		f, err := nc4.Open(fname, nc4.NoWrite, opts)
		if err != nil {
			return nil, err
		}
		return f.Root().View(), nil
	}
	return nil, ErrUnknown
}

func getKind(file io.ReadSeeker) (byte, error) {
	var b [1]byte
	n, err := file.Read(b[:])
	if n == 0 {
		return 0, err
	}
	_, err = file.Seek(0, io.SeekStart)
	return b[0], err
}
