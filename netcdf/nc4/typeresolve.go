package nc4

import (
	"fmt"

	"github.com/batchatco/go-nc4meta/netcdf/store"
)

// resolveType maps a native storage type to a type id. Numeric types are
// compared against the native table in priority order, the first exact
// match wins. Anything else must already be registered as a user type.
func (f *File) resolveType(native store.Datatype) TypeID {
	switch native.Class {
	case store.ClassString:
		if native.VarString {
			return String
		}
		return Char
	case store.ClassInteger, store.ClassFloat:
		for _, n := range f.ctx.nativeTypes() {
			if native.Equal(&n.dt) {
				return n.id
			}
		}
	}
	if t := f.findUserType(native); t != nil {
		return t.ID
	}
	failError(ErrBadTypeID, fmt.Sprintf("no netCDF type for %s type of size %d",
		native.Class, native.Size))
	return NAT
}

// findUserType finds a registered user type, first by the identity of the
// named type object, then by layout.
func (f *File) findUserType(native store.Datatype) *Type {
	if !native.Committed.IsZero() {
		for _, t := range f.userTypes {
			if t.committed && t.dt.Committed == native.Committed {
				return t
			}
		}
	}
	for _, t := range f.userTypes {
		if !t.committed {
			continue
		}
		tn := store.NativeType(t.dt)
		if tn.Equal(&native) {
			return t
		}
	}
	return nil
}

// resolveVarType finds the type of a dataset. Fixed-length strings longer
// than one byte are read as strings. Atomic types keep their byte order.
func (f *File) resolveVarType(dt store.Datatype) (*Type, Endianness) {
	switch dt.Class {
	case store.ClassString:
		if dt.VarString || dt.Size > 1 {
			return atomicTypes[String], EndianNative
		}
		return atomicTypes[Char], EndianNative
	case store.ClassInteger, store.ClassFloat:
		native := store.NativeType(dt)
		for _, n := range f.ctx.nativeTypes() {
			if native.Equal(&n.dt) {
				endian := EndianLittle
				if dt.Order == store.BigEndian {
					endian = EndianBig
				}
				return atomicTypes[n.id], endian
			}
		}
	}
	if t := f.findUserType(store.NativeType(dt)); t != nil {
		t.rc++
		return t, EndianNative
	}
	failError(ErrBadTypeID, fmt.Sprintf("no netCDF type for %s dataset type of size %d",
		dt.Class, dt.Size))
	return nil, EndianNative
}

// readType reconstructs a named type found while building group g.
func (f *File) readType(g *Group, name string) {
	nt, err := g.handle.OpenNamedType(name)
	check("open named type "+name, err)
	ok := false
	var t *Type
	defer func() {
		if !ok {
			nt.Close()
			if t != nil {
				f.removeType(t)
			}
		}
	}()
	dt, err := nt.Datatype()
	check("get type of "+name, err)
	for _, known := range f.userTypes {
		if known.committed && known.dt.Committed == dt.Committed {
			// another link to a type already read
			logger.Info("type", name, "already known as", known.Name)
			nt.Close()
			ok = true
			return
		}
	}
	assertError(len(name) <= MaxName, ErrBadName, "type name too long: "+name)
	native := store.NativeType(dt)

	switch dt.Class {
	case store.ClassCompound:
		t = g.addType(name, ClassCompound, native.Size)
		for _, m := range native.Members {
			assertError(len(m.Name) <= MaxName, ErrBadName, "field name too long: "+m.Name)
			fld := Field{Name: m.Name, Offset: m.Offset}
			mt := m.Type
			if mt.Class == store.ClassArray {
				fld.Dims = make([]int, len(mt.Dims))
				for i, d := range mt.Dims {
					fld.Dims[i] = int(d)
				}
				mt = mt.Base
			}
			fld.Type = f.resolveType(*mt)
			t.Fields = append(t.Fields, fld)
		}
	case store.ClassVarLen:
		if dt.VarString {
			t = g.addType(name, ClassString, native.Size)
			break
		}
		t = g.addType(name, ClassVlen, native.Size)
		t.Base = f.resolveType(*native.Base)
	case store.ClassOpaque:
		t = g.addType(name, ClassOpaque, native.Size)
	case store.ClassEnum:
		t = g.addType(name, ClassEnum, native.Size)
		t.Base = f.resolveType(*native.Base)
		base := AtomicType(t.Base)
		assertError(base != nil && base.Class == ClassInt, ErrBadTypeID,
			"enum base is not an integer type: "+name)
		for _, m := range native.Members {
			assertError(len(m.Name) <= MaxName, ErrBadName, "enum member name too long: "+m.Name)
			assertError(uint64(len(m.Value)) == base.Size, ErrBadTypeID,
				"enum value does not match base size: "+m.Name)
			t.Members = append(t.Members, EnumMember{Name: m.Name,
				Value: append([]byte{}, m.Value...)})
		}
	case store.ClassString:
		t = g.addType(name, ClassString, native.Size)
	default:
		failError(ErrBadClass, fmt.Sprintf("type %s has unsupported class %s", name, dt.Class))
	}
	t.committed = true
	t.dt = dt
	t.handle = nt
	logger.Info("read type", name, "id", t.ID)
	ok = true
}

func (f *File) removeType(t *Type) {
	t.Group.types.Delete(t.Name)
	delete(f.types, t.ID)
	for i, u := range f.userTypes {
		if u == t {
			f.userTypes = append(f.userTypes[:i], f.userTypes[i+1:]...)
			break
		}
	}
	if t.ID == f.nextTypeID-1 {
		f.nextTypeID--
	}
}

// RefCount is the number of variables using the type plus one for its
// declaration.
func (t *Type) RefCount() int {
	return t.rc
}
