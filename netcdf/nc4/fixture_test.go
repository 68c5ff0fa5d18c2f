package nc4

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/batchatco/go-nc4meta/netcdf/store"
	"github.com/batchatco/go-nc4meta/netcdf/store/memstore"
	"github.com/batchatco/go-thrower"
)

var trackedProps = store.FileCreateProps{
	TrackLinkOrder: true, IndexLinkOrder: true,
	TrackAttrOrder: true, IndexAttrOrder: true,
}

var nativeInt = store.IntType(4, true, store.NativeOrder)

// fixture builds a container directly through the backend, the way a
// file written by another library would look.
type fixture struct {
	t       *testing.T
	b       *memstore.Backend
	path    string
	f       store.File
	root    store.Group
	handles []interface{ Close() error }
}

func newFixture(t *testing.T, fcpl store.FileCreateProps) *fixture {
	t.Helper()
	b := memstore.New()
	path := filepath.Join(t.TempDir(), "fixture.nc")
	f, err := b.Create(path, fcpl, store.FileAccessProps{})
	must(t, err)
	root, err := f.Root()
	must(t, err)
	return &fixture{t: t, b: b, path: path, f: f, root: root}
}

func must(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatal(err)
	}
}

func (fx *fixture) keep(c interface{ Close() error }) {
	fx.handles = append(fx.handles, c)
}

func (fx *fixture) group(parent store.Group, name string) store.Group {
	fx.t.Helper()
	g, err := parent.CreateGroup(name)
	must(fx.t, err)
	fx.keep(g)
	return g
}

// dataset creates a dataset over dims. A nil maxDims makes it fixed size;
// growable datasets are chunked by one element.
func (fx *fixture) dataset(g store.Group, name string, dt store.Datatype, dims, maxDims []uint64) store.Dataset {
	fx.t.Helper()
	space := store.Scalar()
	settings := store.DatasetSettings{Layout: store.LayoutContiguous}
	if dims != nil {
		space = store.Simple(dims, maxDims)
		if maxDims != nil {
			settings.Layout = store.LayoutChunked
			settings.Chunk = make([]uint64, len(dims))
			for i := range settings.Chunk {
				settings.Chunk[i] = 1
			}
		}
	}
	return fx.datasetWith(g, name, dt, space, settings)
}

func (fx *fixture) datasetWith(g store.Group, name string, dt store.Datatype, space store.Dataspace,
	settings store.DatasetSettings) store.Dataset {
	fx.t.Helper()
	ds, err := g.CreateDataset(name, dt, space, settings)
	must(fx.t, err)
	fx.keep(ds)
	return ds
}

func (fx *fixture) attr(loc store.AttrLocation, name string, dt store.Datatype, space store.Dataspace,
	raw []byte) {
	fx.t.Helper()
	a, err := loc.CreateAttr(name, dt, space)
	must(fx.t, err)
	must(fx.t, a.Write(raw))
	must(fx.t, a.Close())
}

func (fx *fixture) intAttr(loc store.AttrLocation, name string, vals ...int) {
	fx.t.Helper()
	fx.attr(loc, name, nativeInt, store.Simple([]uint64{uint64(len(vals))}, nil), encodeInts(vals))
}

func (fx *fixture) textAttr(loc store.AttrLocation, name, text string) {
	fx.t.Helper()
	fx.attr(loc, name, store.FixedString(uint64(len(text))), store.Scalar(), []byte(text))
}

// dimScale creates a dimension that has no coordinate variable.
func (fx *fixture) dimScale(g store.Group, name string, length uint64, unlimited bool, id int) store.Dataset {
	fx.t.Helper()
	var maxDims []uint64
	if unlimited {
		maxDims = []uint64{store.Unlimited}
	}
	ds := fx.dataset(g, name, store.FloatType(4, store.BigEndian), []uint64{length}, maxDims)
	must(fx.t, ds.SetScale(fmt.Sprintf("%s%10d", dimWithoutVariable, length)))
	if id >= 0 {
		fx.intAttr(ds, DimidAttr, id)
	}
	return ds
}

// coordVar creates a one-dimensional coordinate variable.
func (fx *fixture) coordVar(g store.Group, name string, length uint64, id int) store.Dataset {
	fx.t.Helper()
	ds := fx.dataset(g, name, store.FloatType(8, store.NativeOrder), []uint64{length}, nil)
	must(fx.t, ds.SetScale(name))
	if id >= 0 {
		fx.intAttr(ds, DimidAttr, id)
	}
	return ds
}

// done closes every fixture handle and the container.
func (fx *fixture) done() {
	fx.t.Helper()
	for i := len(fx.handles) - 1; i >= 0; i-- {
		must(fx.t, fx.handles[i].Close())
	}
	fx.handles = nil
	must(fx.t, fx.root.Close())
	must(fx.t, fx.f.Close())
}

func (fx *fixture) open(mode int) (*File, error) {
	return Open(fx.path, mode, &Options{Backend: fx.b, Context: NewContext()})
}

func (fx *fixture) mustOpen(mode int) *File {
	fx.t.Helper()
	f, err := fx.open(mode)
	must(fx.t, err)
	return f
}

func mustCloseFile(t *testing.T, f *File) {
	t.Helper()
	if err := f.Close(); err != nil {
		t.Fatal("close:", err)
	}
}

func stats(f *File) memstore.Stats {
	return f.hf.(*memstore.File).Stats()
}

// catch runs fn and returns what it throws.
func catch(fn func()) (err error) {
	defer thrower.RecoverError(&err)
	fn()
	return nil
}

func dimNames(v *Variable) []string {
	names := []string{}
	for _, d := range v.Dims() {
		names = append(names, d.Name)
	}
	return names
}

// attNames lists attribute names, or the error if there is one.
func attNames(atts []*Attribute, err error) []string {
	if err != nil {
		return []string{"error: " + err.Error()}
	}
	names := []string{}
	for _, a := range atts {
		names = append(names, a.Name)
	}
	return names
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
