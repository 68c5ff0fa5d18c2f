package nc4

import (
	"fmt"

	"github.com/batchatco/go-nc4meta/netcdf/store"
	"github.com/batchatco/go-nc4meta/netcdf/util"
)

// writeMetadata brings the container up to date with everything defined
// since the last sync. Objects already in the container are left alone
// apart from their changed attributes.
func (f *File) writeMetadata() {
	f.writeGroup(f.root)
}

func (f *File) writeGroup(g *Group) {
	if g.handle == nil {
		h, err := g.Parent.handle.CreateGroup(g.Name)
		check("create group "+g.Name, err)
		g.handle = h
	}
	for _, t := range g.types.Values() {
		if !t.committed {
			f.commitType(g, t)
		}
	}
	for _, d := range g.dims.Values() {
		if !d.stored && d.CoordVar == nil {
			f.writeDimScale(g, d)
		}
	}
	for _, v := range g.vars.Values() {
		if v.dataset == nil {
			f.writeVar(g, v)
		}
	}
	for _, v := range g.vars.Values() {
		f.attachScales(v)
	}
	f.writeAtts(g.handle, g.atts)
	for _, v := range g.vars.Values() {
		f.writeAtts(v.dataset, v.atts)
	}
	for _, c := range g.children.Values() {
		f.writeGroup(c)
	}
}

// storeDatatype is the storage description of t. Committed types are
// referred to through their named type object.
func (f *File) storeDatatype(t *Type, order store.ByteOrder) store.Datatype {
	if t.IsAtomic() {
		return storeType(t.ID, order)
	}
	if t.committed {
		return t.dt
	}
	switch t.Class {
	case ClassCompound:
		dt := store.Datatype{Class: store.ClassCompound, Size: t.Size}
		for _, fld := range t.Fields {
			mt := f.storeDatatype(f.typeByID(fld.Type), store.NativeOrder)
			if len(fld.Dims) > 0 {
				dims := make([]uint64, len(fld.Dims))
				for i, d := range fld.Dims {
					dims[i] = uint64(d)
				}
				mt = store.ArrayOf(mt, dims)
			}
			dt.Members = append(dt.Members, store.Member{Name: fld.Name, Offset: fld.Offset, Type: &mt})
		}
		return dt
	case ClassEnum:
		base := storeType(t.Base, store.NativeOrder)
		dt := store.Datatype{Class: store.ClassEnum, Size: t.Size, Order: store.NativeOrder, Base: &base}
		for _, m := range t.Members {
			dt.Members = append(dt.Members, store.Member{Name: m.Name, Value: append([]byte{}, m.Value...)})
		}
		return dt
	case ClassVlen:
		return store.VarLen(f.storeDatatype(f.typeByID(t.Base), store.NativeOrder))
	case ClassOpaque:
		return store.Datatype{Class: store.ClassOpaque, Size: t.Size}
	}
	return store.VarString()
}

func (f *File) commitType(g *Group, t *Type) {
	nt, err := g.handle.CommitType(t.Name, f.storeDatatype(t, store.NativeOrder))
	check("commit type "+t.Name, err)
	dt, err := nt.Datatype()
	if err != nil {
		closeOnExit(t.Name, nt)
		check("get type of "+t.Name, err)
	}
	t.dt = dt
	t.handle = nt
	t.committed = true
	logger.Info("committed type", t.Name, "id", t.ID)
}

// writeDimScale stores a dimension that has no coordinate variable as an
// empty scale dataset named after it. The dataset stays open.
func (f *File) writeDimScale(g *Group, d *Dimension) {
	space, settings := f.dimSpace([]*Dimension{d}, nil)
	ds, err := g.handle.CreateDataset(d.Name, store.FloatType(4, store.BigEndian), space, settings)
	check("create scale "+d.Name, err)
	d.scale = ds
	check("make scale "+d.Name, ds.SetScale(fmt.Sprintf("%s%10d", dimWithoutVariable, d.Len)))
	f.writeDimid(ds, d)
	d.scaleID = ds.ID()
	d.stored = true
}

func (f *File) writeDimid(ds store.Dataset, d *Dimension) {
	f.writeAtt(ds, &Attribute{Name: DimidAttr, Type: Int, Len: 1, Data: encodeInts([]int{d.ID})})
}

// dimSpace returns the space of a dataset over dims and the layout it
// needs. Datasets that can grow are always chunked.
func (f *File) dimSpace(dims []*Dimension, chunks []uint64) (store.Dataspace, store.DatasetSettings) {
	if len(dims) == 0 {
		return store.Scalar(), store.DatasetSettings{Layout: store.LayoutContiguous}
	}
	cur := make([]uint64, len(dims))
	maxDims := make([]uint64, len(dims))
	growable := false
	for i, d := range dims {
		cur[i] = d.Len
		maxDims[i] = d.Len
		if d.Unlimited {
			maxDims[i] = store.Unlimited
			growable = true
		}
	}
	settings := store.DatasetSettings{Layout: store.LayoutContiguous}
	if growable || chunks != nil {
		settings.Layout = store.LayoutChunked
		settings.Chunk = chunks
		if settings.Chunk == nil {
			settings.Chunk = defaultChunks(dims)
		}
	}
	return store.Simple(cur, maxDims), settings
}

// defaultChunks uses one record along unlimited axes and the full
// length elsewhere.
func defaultChunks(dims []*Dimension) []uint64 {
	chunks := make([]uint64, len(dims))
	for i, d := range dims {
		chunks[i] = d.Len
		if d.Unlimited || d.Len == 0 {
			chunks[i] = 1
		}
	}
	return chunks
}

func (f *File) writeVar(g *Group, v *Variable) {
	var chunks []uint64
	if !v.Contiguous {
		chunks = v.ChunkSizes
		if chunks == nil {
			chunks = defaultChunks(v.dims)
		}
	}
	space, settings := f.dimSpace(v.dims, chunks)
	if settings.Layout == store.LayoutChunked {
		v.Contiguous = false
		v.ChunkSizes = settings.Chunk
	}
	if v.Shuffle {
		settings.Filters = append(settings.Filters, store.Filter{ID: store.FilterShuffle})
	}
	if v.Deflate {
		settings.Filters = append(settings.Filters,
			store.Filter{ID: store.FilterDeflate, Params: []uint32{uint32(v.DeflateLevel)}})
	}
	if v.Fletcher32 {
		settings.Filters = append(settings.Filters, store.Filter{ID: store.FilterFletcher32})
	}
	for _, flt := range v.Filters {
		settings.Filters = append(settings.Filters, store.Filter{ID: flt.ID, Params: flt.Params})
	}
	settings.NoFill = v.NoFill
	if !v.NoFill {
		settings.FillValue = v.FillValue
		if settings.FillValue == nil {
			settings.FillValue = f.typeFill(v.Type)
		}
	}

	dt := f.storeDatatype(v.Type, byteOrder(v.Endianness))
	ds, err := g.handle.CreateDataset(v.storedName, dt, space, settings)
	check("create variable "+v.Name, err)
	v.dataset = ds
	if !settings.NoFill {
		v.FillValue = append([]byte{}, settings.FillValue...)
	}

	if v.Dimscale {
		d := v.dims[0]
		check("make scale "+v.Name, ds.SetScale(v.Name))
		f.writeDimid(ds, d)
		if len(v.DimIDs) > 1 {
			f.writeAtt(ds, &Attribute{Name: CoordinatesAttr, Type: Int, Len: uint64(len(v.DimIDs)),
				Data: encodeInts(v.DimIDs)})
		}
		d.scaleID = ds.ID()
		d.stored = true
	}
	if !v.Contiguous {
		check("set chunk cache of "+v.Name, ds.SetChunkCache(v.Cache))
		f.adjustVarCache(v)
	}
	logger.Info("created variable", v.Name)
}

// typeFill is the fill value used when none was set.
func (f *File) typeFill(t *Type) []byte {
	if t.IsAtomic() {
		return defaultFill(t.ID)
	}
	if t.Class == ClassVlen {
		return []byte{}
	}
	return make([]byte, t.Size)
}

// scaleOf returns the dataset that represents d, if it has been written.
func scaleOf(d *Dimension) store.Dataset {
	if d.scale != nil {
		return d.scale
	}
	if d.CoordVar != nil {
		return d.CoordVar.dataset
	}
	return nil
}

// attachScales attaches the scale of each dimension of v that isn't
// attached yet. Coordinate variables carry their dimension ids instead.
func (f *File) attachScales(v *Variable) {
	if v.Dimscale || v.dataset == nil {
		return
	}
	for axis, d := range v.dims {
		if !v.scaleIDs[axis].IsZero() || d == nil {
			continue
		}
		scale := scaleOf(d)
		if scale == nil {
			continue
		}
		check(fmt.Sprintf("attach %s to %s", d.Name, v.Name), v.dataset.AttachScale(scale, axis))
		v.scaleIDs[axis] = scale.ID()
	}
}

func (f *File) writeAtts(loc store.AttrLocation, atts *util.OrderedMap[*Attribute]) {
	for _, a := range atts.Values() {
		if !a.dirty {
			continue
		}
		has, err := loc.AttrExists(a.Name)
		check("look for attribute "+a.Name, err)
		if has {
			check("delete attribute "+a.Name, loc.DeleteAttr(a.Name))
		}
		f.writeAtt(loc, a)
		a.dirty = false
	}
}

// writeAtt stores a. Text is a scalar fixed-length string, other types a
// one-dimensional array. Empty attributes have a null space.
func (f *File) writeAtt(loc store.AttrLocation, a *Attribute) {
	t := f.typeByID(a.Type)
	space := store.Simple([]uint64{a.Len}, nil)
	if a.Len == 0 {
		space = store.Null()
	}
	var dt store.Datatype
	switch {
	case a.Type == Char:
		dt = store.FixedString(a.Len)
		if a.Len == 0 {
			dt = store.FixedString(1)
		} else {
			space = store.Scalar()
		}
	default:
		dt = f.storeDatatype(t, store.NativeOrder)
	}
	ha, err := loc.CreateAttr(a.Name, dt, space)
	check("create attribute "+a.Name, err)
	defer closeOnExit(a.Name, ha)
	if a.Len == 0 {
		return
	}
	switch {
	case a.Type == String:
		err = ha.WriteStrings(a.Strings)
	case t.Class == ClassVlen:
		err = ha.WriteVlen(a.Vlen)
	default:
		err = ha.Write(a.Data)
	}
	check("write attribute "+a.Name, err)
}
