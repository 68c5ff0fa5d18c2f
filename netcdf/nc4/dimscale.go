package nc4

import (
	"fmt"
	"strings"

	"github.com/batchatco/go-nc4meta/netcdf/store"
)

// readScale creates the dimension represented by a scale dataset. Datasets
// following the dimension-without-variable convention stay open for the
// life of the dimension.
func (f *File) readScale(g *Group, ds store.Dataset, name string, length, maxLength uint64) *Dimension {
	savedNext := f.nextDimID
	var d *Dimension
	ok := false
	defer func() {
		if !ok && d != nil {
			g.removeDim(d)
			f.nextDimID = savedNext
		}
	}()

	id, storedID := -1, -1
	has, err := ds.AttrExists(DimidAttr)
	check("look for "+DimidAttr, err)
	if has {
		id = f.readDimid(ds)
		storedID = id
		if _, taken := f.dims[id]; taken {
			logger.Warn("dimension id", id, "of", name, "already in use, renumbering")
			id = -1
		}
	}
	d = g.addDim(name, id)
	if _, seen := f.storedDimids[storedID]; storedID >= 0 && !seen {
		f.storedDimids[storedID] = d
		defer func() {
			if !ok {
				delete(f.storedDimids, storedID)
			}
		}()
	}

	if length > f.ctx.sizeLimit {
		d.Len = f.ctx.sizeLimit
		d.TooLong = true
	} else {
		d.Len = length
	}
	d.Unlimited = maxLength == store.Unlimited

	scaleName, err := ds.ScaleName()
	check("get scale name of "+name, err)
	if strings.HasPrefix(scaleName, dimWithoutVariable) {
		check("hold scale "+name, ds.IncRef())
		d.scale = ds
	}
	d.scaleID = ds.ID()
	d.stored = true
	logger.Info("found dimension", name, "id", d.ID, "len", d.Len)
	ok = true
	return d
}

func (f *File) readDimid(ds store.Dataset) int {
	ha, err := ds.OpenAttr(DimidAttr)
	check("open "+DimidAttr, err)
	defer closeOnExit(DimidAttr, ha)
	sp, err := ha.Dataspace()
	check("get space of "+DimidAttr, err)
	assertError(sp.NumPoints() == 1, ErrAttMeta, DimidAttr+" is not a scalar")
	buf := make([]byte, 4)
	check("read "+DimidAttr, ha.Read(storeType(Int, store.NativeOrder), buf))
	id := decodeInts(buf)[0]
	assertError(id >= 0, ErrAttMeta, fmt.Sprint("negative dimension id ", id))
	return id
}

// readCoordDimids binds the axes of a multi-dimensional coordinate
// variable from its hidden coordinates attribute. Ids that don't resolve
// yet are left for matchDimscales.
func (f *File) readCoordDimids(v *Variable) {
	ha, err := v.dataset.OpenAttr(CoordinatesAttr)
	check("open "+CoordinatesAttr+" of "+v.Name, err)
	defer closeOnExit(CoordinatesAttr, ha)
	sp, err := ha.Dataspace()
	check("get space of "+CoordinatesAttr, err)
	assertError(sp.NumPoints() == uint64(len(v.DimIDs)), ErrAttMeta,
		fmt.Sprintf("%s of %s has %d ids for %d dimensions", CoordinatesAttr, v.Name,
			sp.NumPoints(), len(v.DimIDs)))
	buf := make([]byte, 4*len(v.DimIDs))
	check("read "+CoordinatesAttr, ha.Read(storeType(Int, store.NativeOrder), buf))
	for i, id := range decodeInts(buf) {
		v.DimIDs[i] = id
		if d := f.storedDim(id); d != nil {
			v.DimIDs[i] = d.ID
			v.dims[i] = d
		}
	}
}

// storedDim maps a dimension id as written in the file to its dimension.
// Ids are renumbered when they collide, so the stored id wins over the
// in-memory one.
func (f *File) storedDim(id int) *Dimension {
	if d, has := f.storedDimids[id]; has {
		return d
	}
	return f.dims[id]
}

// findDimLen is the length of a dimension as seen by the datasets using it:
// the largest current extent along that axis of any variable in the
// dimension's group or below.
func (f *File) findDimLen(d *Dimension) uint64 {
	var length uint64
	var visit func(g *Group)
	visit = func(g *Group) {
		for _, v := range g.vars.Values() {
			if v.dataset == nil {
				continue
			}
			for axis, id := range v.DimIDs {
				if id != d.ID {
					continue
				}
				sp, err := v.dataset.Dataspace()
				check("get space of "+v.Name, err)
				if axis < len(sp.Dims) && sp.Dims[axis] > length {
					length = sp.Dims[axis]
				}
			}
		}
		for _, c := range g.children.Values() {
			visit(c)
		}
	}
	visit(d.Group)
	return length
}

// matchDimscales binds every variable axis to a dimension once the whole
// tree has been read: attached scales are matched by object identity in
// the variable's group and its ancestors, pending ids through the id
// table, and anything left over gets a phony dimension.
func (f *File) matchDimscales(g *Group) {
	f.matchGroup(g)
	f.refreshUnlimited(g)
}

func (f *File) matchGroup(g *Group) {
	for _, v := range g.vars.Values() {
		f.matchVar(g, v)
	}
	for _, c := range g.children.Values() {
		f.matchGroup(c)
	}
}

// refreshUnlimited sets the length of unlimited dimensions that have no
// coordinate variable from the datasets using them.
func (f *File) refreshUnlimited(g *Group) {
	for _, d := range g.dims.Values() {
		if d.Unlimited && d.CoordVar == nil {
			d.Len = f.findDimLen(d)
		}
	}
	for _, c := range g.children.Values() {
		f.refreshUnlimited(c)
	}
}

func (f *File) matchVar(g *Group, v *Variable) {
	unbound := false
	for axis := range v.DimIDs {
		if v.dims[axis] != nil {
			continue
		}
		if v.DimIDs[axis] >= 0 {
			d := f.storedDim(v.DimIDs[axis])
			assertError(d != nil, ErrBadDim, fmt.Sprintf("variable %s uses unknown dimension %d",
				v.Name, v.DimIDs[axis]))
			v.dims[axis] = d
			v.DimIDs[axis] = d.ID
			continue
		}
		if sid := v.scaleIDs[axis]; !sid.IsZero() {
			if d := findScale(g, sid); d != nil {
				v.dims[axis] = d
				v.DimIDs[axis] = d.ID
				continue
			}
			logger.Warn("scale", sid, "attached to", v.Name, "not found")
		}
		unbound = true
	}
	if !unbound {
		return
	}

	sp, err := v.dataset.Dataspace()
	check("get space of "+v.Name, err)
	assert(sp.Rank() == len(v.DimIDs), "rank of "+v.Name+" changed while reading")
	for axis := range v.DimIDs {
		if v.dims[axis] != nil {
			continue
		}
		length := sp.Dims[axis]
		unlimited := sp.MaxDims[axis] == store.Unlimited
		var d *Dimension
		for _, cand := range g.dims.Values() {
			if cand.Len == length && cand.Unlimited == unlimited {
				d = cand
				break
			}
		}
		if d == nil {
			d = g.addDim(fmt.Sprintf("%s%d", phonyDimPrefix, f.nextDimID), -1)
			d.Len = length
			d.Unlimited = unlimited
			d.stored = true
			logger.Info("created", d.Name, "for", v.Name)
		}
		v.dims[axis] = d
		v.DimIDs[axis] = d.ID
	}
}

// findScale finds the dimension whose scale object is sid, looking in g
// and then its ancestors.
func findScale(g *Group, sid store.ObjectID) *Dimension {
	for ; g != nil; g = g.Parent {
		for _, d := range g.dims.Values() {
			if d.scaleID == sid {
				return d
			}
		}
	}
	return nil
}
