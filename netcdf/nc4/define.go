package nc4

import (
	"fmt"

	"github.com/batchatco/go-nc4meta/internal"
	"github.com/batchatco/go-nc4meta/netcdf/store"
	"github.com/batchatco/go-nc4meta/netcdf/util"
	"github.com/batchatco/go-thrower"
)

// checkDefine enters define mode for files that allow it implicitly.
func (f *File) checkDefine() {
	f.checkOpen()
	assertError(!f.noWrite, ErrPerm, "file is read-only")
	if !f.inDefine {
		assertError(f.mode&ClassicModel == 0, ErrNotInDefine, "classic model file is in data mode")
		f.inDefine = true
		f.redef = true
	}
}

func checkName(name string) {
	assertError(internal.IsValidNetCDFName(name), ErrBadName,
		fmt.Sprintf("bad name %q", name))
}

// checkNameFree checks the namespace shared by groups, variables and types.
func (g *Group) checkNameFree(name string) {
	_, v := g.vars.Get(name)
	_, c := g.children.Get(name)
	_, t := g.types.Get(name)
	assertError(!v && !c && !t, ErrNameInUse, name+" already used in group "+g.Name)
}

// DefGrp defines a child group.
func (g *Group) DefGrp(name string) (child *Group, err error) {
	defer thrower.RecoverError(&err)
	f := g.file
	f.checkDefine()
	assertError(f.mode&ClassicModel == 0, ErrInvalid, "classic model files have no groups")
	checkName(name)
	g.checkNameFree(name)
	child = f.newGroup(g, name)
	return child, nil
}

// DefDim defines a dimension. A length of Unlimited makes it growable.
func (g *Group) DefDim(name string, length uint64) (id int, err error) {
	defer thrower.RecoverError(&err)
	f := g.file
	f.checkDefine()
	checkName(name)
	_, has := g.dims.Get(name)
	assertError(!has, ErrNameInUse, "dimension "+name+" exists")
	unlimited := length == Unlimited
	if unlimited && f.mode&ClassicModel != 0 {
		for _, d := range f.dims {
			assertError(!d.Unlimited, ErrInvalid, "classic model allows one unlimited dimension")
		}
	}
	assertError(length <= f.ctx.sizeLimit, ErrBadSize, fmt.Sprint("dimension too long: ", length))
	if v, has := g.vars.Get(name); has && v.dataset == nil {
		v.storedName = nonCoordPrefix + name
	}
	d := g.addDim(name, -1)
	d.Len = length
	d.Unlimited = unlimited
	return d.ID, nil
}

// DefVar defines a variable. A variable named after a dimension of its
// group whose first axis is that dimension becomes its coordinate variable.
func (g *Group) DefVar(name string, typ TypeID, dimids []int) (v *Variable, err error) {
	defer thrower.RecoverError(&err)
	f := g.file
	f.checkDefine()
	checkName(name)
	g.checkNameFree(name)
	assertError(len(dimids) <= MaxVarDims, ErrMaxDims, fmt.Sprint(len(dimids), " dimensions"))
	t := f.typeByID(typ)
	dims := make([]*Dimension, len(dimids))
	for i, id := range dimids {
		d, has := f.dims[id]
		assertError(has && g.canSee(d), ErrBadDim, fmt.Sprint("bad dimension id ", id))
		dims[i] = d
	}

	if d, has := g.dims.Get(name); has && len(dims) > 0 && dims[0] == d {
		assertError(!d.stored, ErrNameInUse,
			"dimension "+name+" was written without a coordinate variable")
	}
	v = g.addVar(name, len(dimids))
	copy(v.DimIDs, dimids)
	copy(v.dims, dims)
	v.Type = t
	if !t.IsAtomic() {
		t.rc++
	}
	v.Contiguous = true
	for _, d := range dims {
		if d.Unlimited {
			v.Contiguous = false
		}
	}
	v.NoFill = f.fillMode == NoFill
	v.Cache = f.ctx.cache
	if d, has := g.dims.Get(name); has {
		if len(dims) > 0 && dims[0] == d {
			v.Dimscale = true
			d.CoordVar = v
		} else {
			v.storedName = nonCoordPrefix + name
		}
	}
	return v, nil
}

// canSee reports whether d is defined in g or one of its ancestors.
func (g *Group) canSee(d *Dimension) bool {
	for ; g != nil; g = g.Parent {
		if d.Group == g {
			return true
		}
	}
	return false
}

func (f *File) typeByID(id TypeID) *Type {
	if t := AtomicType(id); t != nil {
		return t
	}
	t, has := f.types[id]
	assertError(has, ErrBadTypeID, fmt.Sprint("unknown type id ", id))
	return t
}

// checkVarDefine checks that v can still be redefined.
func (v *Variable) checkVarDefine() {
	v.Group.file.checkDefine()
	assertError(v.dataset == nil, ErrLateDef, "variable "+v.Name+" already written")
}

// DefChunking sets the storage layout.
func (v *Variable) DefChunking(contiguous bool, chunks []uint64) (err error) {
	defer thrower.RecoverError(&err)
	v.checkVarDefine()
	if contiguous {
		for _, d := range v.dims {
			assertError(!d.Unlimited, ErrInvalid, v.Name+" has an unlimited dimension")
		}
		assertError(!v.Deflate && !v.Shuffle && !v.Fletcher32 && len(v.Filters) == 0, ErrInvalid,
			v.Name+" is filtered")
		v.Contiguous = true
		v.ChunkSizes = nil
		return nil
	}
	assertError(len(chunks) == len(v.DimIDs) && len(chunks) > 0, ErrInvalid, "bad chunk rank")
	for _, c := range chunks {
		assertError(c > 0, ErrInvalid, "zero chunk size")
	}
	v.Contiguous = false
	v.ChunkSizes = append([]uint64{}, chunks...)
	return nil
}

func (v *Variable) makeChunked() {
	assertError(len(v.DimIDs) > 0, ErrInvalid, "scalar variable "+v.Name+" can't be filtered")
	v.Contiguous = false
}

// DefDeflate sets shuffle and deflate compression.
func (v *Variable) DefDeflate(shuffle, deflate bool, level int) (err error) {
	defer thrower.RecoverError(&err)
	v.checkVarDefine()
	if deflate {
		assertError(level >= 0 && level <= MaxDeflateLevel, ErrInvalid,
			fmt.Sprint("bad deflate level ", level))
	}
	if shuffle || deflate {
		v.makeChunked()
	}
	v.Shuffle = shuffle
	v.Deflate = deflate
	v.DeflateLevel = level
	return nil
}

func (v *Variable) DefFletcher32(on bool) (err error) {
	defer thrower.RecoverError(&err)
	v.checkVarDefine()
	if on {
		v.makeChunked()
	}
	v.Fletcher32 = on
	return nil
}

// DefFilter adds a filter by id.
func (v *Variable) DefFilter(id int, params []uint32) (err error) {
	defer thrower.RecoverError(&err)
	v.checkVarDefine()
	assertError(id > 0, ErrInvalid, fmt.Sprint("bad filter id ", id))
	v.makeChunked()
	v.Filters = append(v.Filters, Filter{ID: id, Params: append([]uint32{}, params...)})
	return nil
}

// DefFill sets the fill policy. A nil value keeps the default fill value.
func (v *Variable) DefFill(noFill bool, value []byte) (err error) {
	defer thrower.RecoverError(&err)
	v.checkVarDefine()
	if value != nil && v.Type.Class != ClassString && v.Type.Class != ClassVlen {
		assertError(uint64(len(value)) == v.Type.Size, ErrBadSize, "fill value size mismatch")
	}
	v.NoFill = noFill
	v.FillValue = append([]byte(nil), value...)
	return nil
}

func (v *Variable) DefEndian(e Endianness) (err error) {
	defer thrower.RecoverError(&err)
	v.checkVarDefine()
	assertError(v.Type.IsAtomic() && v.Type.Class != ClassString, ErrInvalid,
		"endianness only applies to numeric types")
	v.Endianness = e
	return nil
}

// SetChunkCache tunes the chunk cache of one variable.
func (v *Variable) SetChunkCache(size, nelems uint64, preemption float64) (err error) {
	defer thrower.RecoverError(&err)
	v.Group.file.checkOpen()
	assertError(preemption >= 0 && preemption <= 1, ErrInvalid,
		fmt.Sprint("preemption out of range ", preemption))
	v.Cache.Size, v.Cache.NElems, v.Cache.Preemption = size, nelems, preemption
	if v.dataset != nil {
		check("set chunk cache of "+v.Name, v.dataset.SetChunkCache(v.Cache))
	}
	return nil
}

// User-defined types

func (g *Group) defType(name string, class TypeClass, size uint64) *Type {
	g.file.checkDefine()
	checkName(name)
	g.checkNameFree(name)
	return g.addType(name, class, size)
}

// DefCompound defines an empty compound type of size bytes.
func (g *Group) DefCompound(name string, size uint64) (id TypeID, err error) {
	defer thrower.RecoverError(&err)
	assertError(size > 0, ErrBadSize, "compound of size 0")
	return g.defType(name, ClassCompound, size).ID, nil
}

func (g *Group) InsertCompound(typeid TypeID, name string, offset uint64, field TypeID) error {
	return g.InsertArrayCompound(typeid, name, offset, field, nil)
}

// InsertArrayCompound adds a fixed-size array field to a compound type.
func (g *Group) InsertArrayCompound(typeid TypeID, name string, offset uint64, field TypeID,
	dims []int) (err error) {
	defer thrower.RecoverError(&err)
	f := g.file
	f.checkDefine()
	t := f.uncommitted(typeid, ClassCompound)
	checkName(name)
	for _, fld := range t.Fields {
		assertError(fld.Name != name, ErrNameInUse, "field "+name+" exists")
	}
	ft := f.typeByID(field)
	n := uint64(1)
	for _, d := range dims {
		assertError(d > 0, ErrInvalid, "zero array dimension")
		n *= uint64(d)
	}
	assertError(offset+n*ft.Size <= t.Size, ErrBadSize,
		fmt.Sprintf("field %s doesn't fit in %s", name, t.Name))
	t.Fields = append(t.Fields, Field{Name: name, Offset: offset, Type: field,
		Dims: append([]int(nil), dims...)})
	return nil
}

func (f *File) uncommitted(id TypeID, class TypeClass) *Type {
	t, has := f.types[id]
	assertError(has, ErrBadTypeID, fmt.Sprint("unknown type id ", id))
	assertError(t.Class == class, ErrBadClass, "wrong type class for "+t.Name)
	assertError(!t.committed, ErrLateDef, "type "+t.Name+" already written")
	return t
}

// DefEnum defines an enum over an integer base type.
func (g *Group) DefEnum(name string, base TypeID) (id TypeID, err error) {
	defer thrower.RecoverError(&err)
	bt := AtomicType(base)
	assertError(bt != nil && bt.Class == ClassInt, ErrBadTypeID, "enum base must be an integer type")
	t := g.defType(name, ClassEnum, bt.Size)
	t.Base = base
	return t.ID, nil
}

func (g *Group) InsertEnum(typeid TypeID, name string, value int64) (err error) {
	defer thrower.RecoverError(&err)
	f := g.file
	f.checkDefine()
	t := f.uncommitted(typeid, ClassEnum)
	checkName(name)
	for _, m := range t.Members {
		assertError(m.Name != name, ErrNameInUse, "member "+name+" exists")
	}
	t.Members = append(t.Members, EnumMember{Name: name, Value: encodeInt(value, t.Size)})
	return nil
}

// DefVlen defines a variable-length sequence of base.
func (g *Group) DefVlen(name string, base TypeID) (id TypeID, err error) {
	defer thrower.RecoverError(&err)
	g.file.typeByID(base)
	t := g.defType(name, ClassVlen, 16)
	t.Base = base
	return t.ID, nil
}

func (g *Group) DefOpaque(name string, size uint64) (id TypeID, err error) {
	defer thrower.RecoverError(&err)
	assertError(size > 0, ErrBadSize, "opaque of size 0")
	return g.defType(name, ClassOpaque, size).ID, nil
}

// Attributes

func (f *File) putAtt(atts *util.OrderedMap[*Attribute], att *Attribute) {
	f.checkOpen()
	assertError(!f.noWrite, ErrPerm, "file is read-only")
	if ra, has := FindReserved(att.Name); has && ra.Flags&ReadOnlyFlag != 0 {
		failError(ErrNameInUse, "reserved attribute "+att.Name)
	}
	checkName(att.Name)
	if !f.inDefine {
		assertError(f.mode&ClassicModel == 0, ErrNotInDefine, "classic model file is in data mode")
	}
	att.dirty = true
	atts.Add(att.Name, att)
}

func (f *File) rawAtt(name string, typ TypeID, data []byte) *Attribute {
	t := f.typeByID(typ)
	assertError(t.Class != ClassString && t.Class != ClassVlen, ErrBadTypeID,
		"use PutAttStrings or PutAttVlen for "+t.Name)
	assertError(uint64(len(data))%t.Size == 0, ErrBadSize, "data is not a whole number of values")
	return &Attribute{Name: name, Type: typ, Len: uint64(len(data)) / t.Size,
		Data: append([]byte{}, data...)}
}

func (f *File) vlenAtt(name string, typ TypeID, recs [][]byte) *Attribute {
	t := f.typeByID(typ)
	assertError(t.Class == ClassVlen, ErrBadTypeID, t.Name+" is not a vlen type")
	att := &Attribute{Name: name, Type: typ, Len: uint64(len(recs)), Vlen: make([][]byte, len(recs))}
	for i := range recs {
		att.Vlen[i] = append([]byte{}, recs[i]...)
	}
	return att
}

// PutAtt writes a global attribute of fixed-size values in host byte order.
func (g *Group) PutAtt(name string, typ TypeID, data []byte) (err error) {
	defer thrower.RecoverError(&err)
	g.file.ensureGroupAtts(g)
	g.file.putAtt(g.atts, g.file.rawAtt(name, typ, data))
	return nil
}

func (g *Group) PutAttText(name, text string) (err error) {
	defer thrower.RecoverError(&err)
	g.file.ensureGroupAtts(g)
	g.file.putAtt(g.atts, &Attribute{Name: name, Type: Char, Len: uint64(len(text)), Data: []byte(text)})
	return nil
}

func (g *Group) PutAttStrings(name string, s []string) (err error) {
	defer thrower.RecoverError(&err)
	g.file.ensureGroupAtts(g)
	g.file.putAtt(g.atts, &Attribute{Name: name, Type: String, Len: uint64(len(s)),
		Strings: append([]string{}, s...)})
	return nil
}

func (g *Group) PutAttVlen(name string, typ TypeID, recs [][]byte) (err error) {
	defer thrower.RecoverError(&err)
	g.file.ensureGroupAtts(g)
	g.file.putAtt(g.atts, g.file.vlenAtt(name, typ, recs))
	return nil
}

func (v *Variable) PutAtt(name string, typ TypeID, data []byte) (err error) {
	defer thrower.RecoverError(&err)
	f := v.Group.file
	f.ensureVarAtts(v)
	f.putAtt(v.atts, f.rawAtt(name, typ, data))
	return nil
}

func (v *Variable) PutAttText(name, text string) (err error) {
	defer thrower.RecoverError(&err)
	f := v.Group.file
	f.ensureVarAtts(v)
	f.putAtt(v.atts, &Attribute{Name: name, Type: Char, Len: uint64(len(text)), Data: []byte(text)})
	return nil
}

func (v *Variable) PutAttStrings(name string, s []string) (err error) {
	defer thrower.RecoverError(&err)
	f := v.Group.file
	f.ensureVarAtts(v)
	f.putAtt(v.atts, &Attribute{Name: name, Type: String, Len: uint64(len(s)),
		Strings: append([]string{}, s...)})
	return nil
}

func (v *Variable) PutAttVlen(name string, typ TypeID, recs [][]byte) (err error) {
	defer thrower.RecoverError(&err)
	f := v.Group.file
	f.ensureVarAtts(v)
	f.putAtt(v.atts, f.vlenAtt(name, typ, recs))
	return nil
}

func (f *File) delAtt(loc store.AttrLocation, atts *util.OrderedMap[*Attribute], name string) {
	f.checkOpen()
	assertError(!f.noWrite, ErrPerm, "file is read-only")
	if ra, has := FindReserved(name); has && ra.Flags&ReadOnlyFlag != 0 {
		failError(ErrNameInUse, "reserved attribute "+name)
	}
	a, has := atts.Get(name)
	assertError(has, ErrNotFound, "no attribute "+name)
	if !f.inDefine {
		assertError(f.mode&ClassicModel == 0, ErrNotInDefine, "classic model file is in data mode")
	}
	atts.Delete(name)
	if loc == nil {
		return
	}
	exists, err := loc.AttrExists(a.Name)
	check("look for attribute "+name, err)
	if exists {
		check("delete attribute "+name, loc.DeleteAttr(name))
	}
}

// DelAtt deletes a global attribute.
func (g *Group) DelAtt(name string) (err error) {
	defer thrower.RecoverError(&err)
	g.file.ensureGroupAtts(g)
	var loc store.AttrLocation
	if g.handle != nil {
		loc = g.handle
	}
	g.file.delAtt(loc, g.atts, name)
	return nil
}

func (v *Variable) DelAtt(name string) (err error) {
	defer thrower.RecoverError(&err)
	f := v.Group.file
	f.ensureVarAtts(v)
	var loc store.AttrLocation
	if v.dataset != nil {
		loc = v.dataset
	}
	f.delAtt(loc, v.atts, name)
	return nil
}
