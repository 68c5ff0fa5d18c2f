package memstore

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/batchatco/go-nc4meta/netcdf/store"
)

var tracked = store.FileCreateProps{
	TrackLinkOrder: true, IndexLinkOrder: true,
	TrackAttrOrder: true, IndexAttrOrder: true,
}

func create(t *testing.T, b *Backend, path string) *File {
	t.Helper()
	f, err := b.Create(path, tracked, store.FileAccessProps{})
	if err != nil {
		t.Fatal(err)
	}
	return f.(*File)
}

func mustClose(t *testing.T, c interface{ Close() error }) {
	t.Helper()
	if err := c.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestRoundTrip(t *testing.T) {
	for _, codec := range []Codec{CodecNone, CodecZstd, CodecLZ4} {
		path := filepath.Join(t.TempDir(), "rt.nc")
		b := &Backend{Codec: codec}
		f := create(t, b, path)
		root, err := f.Root()
		if err != nil {
			t.Fatal(err)
		}
		for _, name := range []string{"zeta", "alpha", "mid"} {
			g, err := root.CreateGroup(name)
			if err != nil {
				t.Fatal(err)
			}
			mustClose(t, g)
		}
		a, err := root.CreateAttr("title", store.FixedString(5), store.Scalar())
		if err != nil {
			t.Fatal(err)
		}
		if err := a.Write([]byte("hello")); err != nil {
			t.Fatal(err)
		}
		mustClose(t, a)
		mustClose(t, root)
		id := f.ContainerID()
		mustClose(t, f)

		sf, err := b.Open(path, false, store.FileAccessProps{})
		if err != nil {
			t.Fatal(codec, err)
		}
		f = sf.(*File)
		if f.ContainerID() != id {
			t.Error("container identity changed")
		}
		root, _ = f.Root()
		var names []string
		err = root.IterateLinks(store.ByCreationOrder, func(li store.LinkInfo) error {
			names = append(names, li.Name)
			return nil
		})
		if err != nil {
			t.Fatal(err)
		}
		if len(names) != 3 || names[0] != "zeta" || names[2] != "mid" {
			t.Error("bad creation order", names)
		}
		names = nil
		_ = root.IterateLinks(store.ByName, func(li store.LinkInfo) error {
			names = append(names, li.Name)
			return nil
		})
		if names[0] != "alpha" {
			t.Error("bad name order", names)
		}
		if _, err := root.CreateGroup("nope"); !errors.Is(err, store.ErrReadOnly) {
			t.Error("expected read-only error, got", err)
		}
		a, err = root.OpenAttr("title")
		if err != nil {
			t.Fatal(err)
		}
		buf := make([]byte, 5)
		if err := a.Read(store.FixedString(5), buf); err != nil || string(buf) != "hello" {
			t.Error("bad attribute", string(buf), err)
		}
		mustClose(t, a)
		mustClose(t, root)
		mustClose(t, f)
	}
}

func TestChecksum(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sum.nc")
	b := New()
	f := create(t, b, path)
	mustClose(t, f)
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	raw[len(raw)-40] ^= 0xff
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := b.Open(path, false, store.FileAccessProps{}); !errors.Is(err, store.ErrChecksum) {
		t.Error("expected checksum error, got", err)
	}
	if err := os.WriteFile(path, []byte("short"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := b.Open(path, false, store.FileAccessProps{}); !errors.Is(err, store.ErrBadContainer) {
		t.Error("expected bad container, got", err)
	}
}

func TestLeakedHandle(t *testing.T) {
	f := create(t, New(), filepath.Join(t.TempDir(), "leak.nc"))
	root, _ := f.Root()
	if err := root.IncRef(); err != nil {
		t.Fatal(err)
	}
	mustClose(t, root)
	if f.OpenObjects() != 1 {
		t.Error("expected one open object, got", f.OpenObjects())
	}
	if err := f.Close(); !errors.Is(err, store.ErrObjectsOpen) {
		t.Error("close should fail with open objects, got", err)
	}
	mustClose(t, root)
	if err := root.Close(); !errors.Is(err, store.ErrClosed) {
		t.Error("double close should fail")
	}
	mustClose(t, f)
}

func TestExclusive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ex.nc")
	b := New()
	mustClose(t, create(t, b, path))
	fcpl := tracked
	fcpl.Exclusive = true
	if _, err := b.Create(path, fcpl, store.FileAccessProps{}); !errors.Is(err, store.ErrExists) {
		t.Error("expected exists error, got", err)
	}
}

func TestDiskless(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mem.nc")
	b := New()
	f, err := b.Create(path, tracked, store.FileAccessProps{Diskless: true})
	if err != nil {
		t.Fatal(err)
	}
	mustClose(t, f)
	if b.Exists(path) {
		t.Error("diskless container was persisted")
	}
}

func TestScales(t *testing.T) {
	f := create(t, New(), filepath.Join(t.TempDir(), "scale.nc"))
	root, _ := f.Root()
	sp := store.Simple([]uint64{4}, []uint64{store.Unlimited})
	chunked := store.DatasetSettings{Layout: store.LayoutChunked, Chunk: []uint64{1}}
	x, err := root.CreateDataset("x", store.FloatType(4, store.BigEndian), sp, chunked)
	if err != nil {
		t.Fatal(err)
	}
	if err := x.SetScale("x"); err != nil {
		t.Fatal(err)
	}
	v, err := root.CreateDataset("v", store.IntType(4, true, store.NativeOrder),
		store.Simple([]uint64{4, 3}, nil), store.DatasetSettings{Layout: store.LayoutContiguous})
	if err != nil {
		t.Fatal(err)
	}
	if err := v.AttachScale(x, 0); err != nil {
		t.Fatal(err)
	}
	if err := v.AttachScale(v, 1); err == nil {
		t.Error("self attach should fail")
	}
	if err := x.AttachScale(v, 0); !errors.Is(err, store.ErrNotScale) {
		t.Error("attaching a non-scale should fail, got", err)
	}
	if n, _ := v.NumScales(0); n != 1 {
		t.Error("expected one scale on axis 0, got", n)
	}
	if n, _ := v.NumScales(1); n != 0 {
		t.Error("expected no scale on axis 1, got", n)
	}
	var seen store.ObjectID
	err = v.IterateScales(0, func(s store.Dataset) error {
		seen = s.ID()
		name, err := s.ScaleName()
		if name != "x" {
			t.Error("bad scale name", name)
		}
		return err
	})
	if err != nil {
		t.Fatal(err)
	}
	if seen != x.ID() {
		t.Error("wrong scale identity", seen, x.ID())
	}
	for _, name := range []string{"CLASS", "NAME", "REFERENCE_LIST"} {
		if has, _ := x.AttrExists(name); !has {
			t.Error("missing scale attribute", name)
		}
	}
	if has, _ := v.AttrExists("DIMENSION_LIST"); !has {
		t.Error("missing DIMENSION_LIST")
	}
	if _, err := root.CreateDataset("bad", store.IntType(4, true, store.NativeOrder), sp,
		store.DatasetSettings{Layout: store.LayoutContiguous}); !errors.Is(err, store.ErrInvalidParams) {
		t.Error("growable contiguous dataset should be rejected, got", err)
	}
	mustClose(t, v)
	mustClose(t, x)
	mustClose(t, root)
	mustClose(t, f)
}

func TestFilterProbe(t *testing.T) {
	f := create(t, New(), filepath.Join(t.TempDir(), "flt.nc"))
	root, _ := f.Root()
	settings := store.DatasetSettings{
		Layout: store.LayoutChunked,
		Chunk:  []uint64{2},
		Filters: []store.Filter{
			{ID: store.FilterShuffle},
			{ID: 307, Params: []uint32{9, 8, 7}},
		},
		FillValue: []byte{1, 0, 0, 0},
	}
	ds, err := root.CreateDataset("d", store.IntType(4, true, store.LittleEndian),
		store.Simple([]uint64{4}, nil), settings)
	if err != nil {
		t.Fatal(err)
	}
	p, err := ds.CreateProps()
	if err != nil {
		t.Fatal(err)
	}
	fi, err := p.Filter(1, 1)
	if err != nil {
		t.Fatal(err)
	}
	if fi.ID != 307 || fi.NParams != 3 || len(fi.Params) != 1 {
		t.Error("bad short probe", fi)
	}
	fi, _ = p.FilterByID(307, fi.NParams)
	if len(fi.Params) != 3 || fi.Params[2] != 7 {
		t.Error("bad full probe", fi)
	}
	if p.FillValueStatus() != store.FillUserDefined {
		t.Error("fill value should be user defined")
	}
	if f.OpenObjects() != 3 {
		t.Error("property list should count as open, got", f.OpenObjects())
	}
	mustClose(t, p)
	mustClose(t, ds)
	mustClose(t, root)
	mustClose(t, f)
}
