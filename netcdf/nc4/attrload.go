package nc4

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/batchatco/go-nc4meta/netcdf/store"
	"github.com/batchatco/go-nc4meta/netcdf/util"
	"github.com/batchatco/go-thrower"
)

// maxAttBytes bounds a single attribute buffer.
const maxAttBytes = 1 << 32

// ensureGroupAtts reads the attributes of g the first time they are needed.
func (f *File) ensureGroupAtts(g *Group) {
	if !g.attsNotRead {
		return
	}
	f.loadAtts(g.handle, g.atts, g.isRoot())
	g.attsNotRead = false
}

func (f *File) ensureVarAtts(v *Variable) {
	if !v.attsNotRead {
		return
	}
	f.loadAtts(v.dataset, v.atts, false)
	v.attsNotRead = false
}

func (f *File) loadAtts(loc store.AttrLocation, atts *util.OrderedMap[*Attribute], root bool) {
	n, err := loc.NumAttrs()
	check("count attributes", err)
	order := store.ByName
	if f.creationOrder {
		order = store.ByCreationOrder
	}
	for i := 0; i < n; i++ {
		ha, err := loc.OpenAttrByIndex(i, order)
		check("open attribute", err)
		f.loadAtt(ha, atts, root)
	}
}

// loadAtt adds one attribute to atts. Reserved names are never added. An
// attribute whose type can't be resolved is dropped and loading goes on.
func (f *File) loadAtt(ha store.Attribute, atts *util.OrderedMap[*Attribute], root bool) {
	defer closeOnExit("attribute", ha)
	name := ha.Name()
	if IsReserved(name) {
		if root && name == Nc3StrictAttr {
			f.mode |= ClassicModel
		}
		return
	}
	att := &Attribute{Name: name}
	atts.Add(name, att)
	err := f.readAtt(ha, att)
	if errors.Is(err, ErrBadTypeID) {
		logger.Warn("dropping attribute", name, "of unknown type")
		atts.Delete(name)
		return
	}
	thrower.ThrowIfError(err)
}

// readAtt computes the length of an attribute and reads its data.
func (f *File) readAtt(ha store.Attribute, att *Attribute) (err error) {
	defer thrower.RecoverError(&err)
	dt, err := ha.Datatype()
	check("get attribute type", err)
	sp, err := ha.Dataspace()
	check("get attribute space", err)
	native := store.NativeType(dt)
	att.Type = f.resolveType(native)
	npoints := sp.NumPoints()
	rank := sp.Rank()

	switch {
	case rank == 0 && npoints == 0:
		att.Len = 0
	case att.Type == String:
		att.Len = npoints
	case att.Type == Char:
		if rank == 0 {
			// a scalar string holds the whole text
			att.Len = dt.Size
			assertError(att.Len != 0, ErrAttMeta, "empty scalar text attribute "+att.Name)
		} else {
			att.Type = String
			att.Len = npoints
		}
	default:
		assertError(rank <= 1, ErrAttMeta,
			fmt.Sprintf("attribute %s has %d dimensions", att.Name, rank))
		assertError(sp.Class != store.SpaceNull, ErrAttMeta, "null space for attribute "+att.Name)
		if sp.Class == store.SpaceScalar {
			att.Len = 1
		} else {
			att.Len = sp.Dims[0]
		}
	}
	if att.Len == 0 {
		return nil
	}

	switch {
	case f.typeClass(att.Type) == ClassVlen:
		att.Vlen, err = ha.ReadVlen()
		check("read vlen attribute", err)
	case att.Type == String && !dt.VarString:
		// fixed-length strings are stored back to back
		size := dt.Size
		assertError(npoints*size < maxAttBytes, ErrNoMem, "attribute too large: "+att.Name)
		buf := make([]byte, npoints*size)
		check("read string attribute", ha.Read(native, buf))
		att.Strings = make([]string, npoints)
		for i := range att.Strings {
			s := buf[uint64(i)*size : uint64(i+1)*size]
			if n := bytes.IndexByte(s, 0); n >= 0 {
				s = s[:n]
			}
			att.Strings[i] = string(s)
		}
	case att.Type == String:
		att.Strings, err = ha.ReadStrings()
		check("read string attribute", err)
	default:
		size := f.typeSize(att.Type)
		assertError(att.Len*size < maxAttBytes, ErrNoMem, "attribute too large: "+att.Name)
		att.Data = make([]byte, att.Len*size)
		check("read attribute", ha.Read(native, att.Data))
	}
	return nil
}

func (f *File) typeSize(id TypeID) uint64 {
	if t := AtomicType(id); t != nil {
		return t.Size
	}
	t, has := f.types[id]
	assertError(has, ErrBadTypeID, fmt.Sprint("unknown type id ", id))
	return t.Size
}

func (f *File) typeClass(id TypeID) TypeClass {
	if t := AtomicType(id); t != nil {
		return t.Class
	}
	t, has := f.types[id]
	assertError(has, ErrBadTypeID, fmt.Sprint("unknown type id ", id))
	return t.Class
}
