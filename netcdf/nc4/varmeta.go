package nc4

import (
	"fmt"
	"strings"

	"github.com/batchatco/go-nc4meta/netcdf/store"
)

// maxDeflateParams is how many parameters deflate takes.
const maxDeflateParams = 1

// readVar creates a variable from dataset ds. dim is the dimension ds
// represents when it is a coordinate variable.
func (f *File) readVar(g *Group, ds store.Dataset, name string, ndims int, dim *Dimension) {
	assertError(ndims <= MaxVarDims, ErrMaxDims, fmt.Sprintf("%s has %d dimensions", name, ndims))
	v := g.addVar(strings.TrimPrefix(name, nonCoordPrefix), ndims)
	v.storedName = name
	check("hold dataset "+name, ds.IncRef())
	v.dataset = ds
	ok := false
	defer func() {
		if !ok {
			closeOnExit(name, ds)
			if v.Type != nil && !v.Type.IsAtomic() {
				v.Type.rc--
			}
			if dim != nil && dim.CoordVar == v {
				dim.CoordVar = nil
			}
			g.vars.Delete(v.Name)
		}
	}()

	apl, err := ds.AccessProps()
	check("get access properties of "+name, err)
	defer closeOnExit("access properties", apl)
	v.Cache = apl.ChunkCache()

	dcpl, err := ds.CreateProps()
	check("get creation properties of "+name, err)
	defer closeOnExit("creation properties", dcpl)
	switch dcpl.Layout() {
	case store.LayoutChunked:
		v.ChunkSizes = dcpl.Chunk()
		assertError(len(v.ChunkSizes) == ndims, ErrVarMeta, "chunk rank mismatch for "+name)
	default:
		v.Contiguous = true
	}
	f.readFilters(v, dcpl)

	dt, err := ds.Datatype()
	check("get type of "+name, err)
	v.Type, v.Endianness = f.resolveVarType(dt)

	switch dcpl.FillValueStatus() {
	case store.FillUserDefined:
		raw, err := dcpl.FillValue()
		check("get fill value of "+name, err)
		v.FillValue = f.fillBuffer(v.Type, raw)
	default:
		v.NoFill = true
	}

	if dim != nil {
		// a scalar scale is a zero-length dimension with no axis to bind
		v.Dimscale = true
		switch {
		case ndims > 1:
			f.readCoordDimids(v)
		case ndims == 1:
			v.DimIDs[0] = dim.ID
			v.dims[0] = dim
		}
		dim.CoordVar = v
	} else {
		f.readAttachedScales(v)
	}
	v.attsNotRead = true
	f.adjustVarCache(v)
	logger.Info("read variable", v.Name, "type", v.Type.Name)
	ok = true
}

func (f *File) readFilters(v *Variable, dcpl store.DatasetCreateProps) {
	for i := 0; i < dcpl.NumFilters(); i++ {
		fi, err := dcpl.Filter(i, maxDeflateParams)
		check("get filter", err)
		switch fi.ID {
		case store.FilterShuffle:
			v.Shuffle = true
		case store.FilterFletcher32:
			v.Fletcher32 = true
		case store.FilterDeflate:
			if fi.NParams != maxDeflateParams || fi.Params[0] > MaxDeflateLevel {
				check("deflate filter", fmt.Errorf("bad deflate parameters %v", fi.Params))
			}
			v.Deflate = true
			v.DeflateLevel = int(fi.Params[0])
		default:
			// the first probe may have cut the parameter list short
			if fi.NParams > len(fi.Params) {
				fi, err = dcpl.FilterByID(fi.ID, fi.NParams)
				check("get filter parameters", err)
			}
			v.Filters = append(v.Filters, Filter{ID: fi.ID, Params: fi.Params})
		}
	}
}

// fillBuffer sizes the fill value by type class.
func (f *File) fillBuffer(t *Type, raw []byte) []byte {
	switch t.Class {
	case ClassString, ClassVlen:
		return append([]byte{}, raw...)
	}
	assertError(uint64(len(raw)) == t.Size, ErrVarMeta,
		fmt.Sprintf("fill value of %d bytes for type %s", len(raw), t.Name))
	return append([]byte{}, raw...)
}

// readAttachedScales records which scale object each axis is attached to.
func (f *File) readAttachedScales(v *Variable) {
	for axis := range v.DimIDs {
		n, err := v.dataset.NumScales(axis)
		check("count scales of "+v.Name, err)
		if n == 0 {
			continue
		}
		warnAssert(n == 1, fmt.Sprintf("%s axis %d has %d scales, using the first", v.Name, axis, n))
		err = v.dataset.IterateScales(axis, func(scale store.Dataset) error {
			if v.scaleIDs[axis].IsZero() {
				v.scaleIDs[axis] = scale.ID()
			}
			return nil
		})
		check("iterate scales of "+v.Name, err)
	}
}

// adjustVarCache grows the cache of a chunked variable whose chunks don't
// fit the default cache.
func (f *File) adjustVarCache(v *Variable) {
	if v.Contiguous || v.Cache.Size != f.ctx.cache.Size {
		return
	}
	chunkBytes := v.Type.Size
	for _, c := range v.ChunkSizes {
		chunkBytes *= c
	}
	if chunkBytes <= v.Cache.Size {
		return
	}
	size := chunkBytes * DefaultChunksInCache
	if size > MaxDefaultCacheSize {
		size = MaxDefaultCacheSize
	}
	cfg := v.Cache
	cfg.Size = size
	check("set chunk cache of "+v.Name, v.dataset.SetChunkCache(cfg))
	v.Cache = cfg
}
