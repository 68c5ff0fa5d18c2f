// Package store describes the hierarchical typed-object store that netCDF-4
// metadata is kept in: groups, datasets, named types and attributes, each
// addressed through a closable handle.
package store

import (
	"bytes"
	"encoding/binary"
)

// Class is the storage class of a datatype. Values follow the on-disk
// class numbers of the HDF5 datatype message.
type Class uint8

const (
	ClassInteger Class = iota
	ClassFloat
	ClassTime
	ClassString
	ClassBitfield
	ClassOpaque
	ClassCompound
	ClassReference
	ClassEnum
	ClassVarLen
	ClassArray
)

var classNames = []string{
	"integer", "float", "time", "string", "bitfield", "opaque",
	"compound", "reference", "enum", "vlen", "array",
}

func (c Class) String() string {
	if int(c) < len(classNames) {
		return classNames[c]
	}
	return "unknown"
}

type ByteOrder uint8

const (
	LittleEndian ByteOrder = iota
	BigEndian
)

// NativeOrder is the byte order of the host.
var NativeOrder = func() ByteOrder {
	b := make([]byte, 2)
	binary.NativeEndian.PutUint16(b, 1)
	if b[0] == 1 {
		return LittleEndian
	}
	return BigEndian
}()

// Member is a compound field or an enum member. Compound members carry an
// offset and a type, enum members a raw value in the base type's encoding.
type Member struct {
	Name   string
	Offset uint64
	Type   *Datatype
	Value  []byte
}

// Datatype is a value description of a storage type.
type Datatype struct {
	Class     Class
	Size      uint64
	Order     ByteOrder
	Signed    bool
	Precision uint32 // significant bits
	VarString bool   // variable-length string, for ClassString and ClassVarLen
	Members   []Member
	Base      *Datatype // enum, vlen and array element
	Dims      []uint64  // array
	Tag       string    // opaque

	// Committed is the identity of the named type object this type was
	// read from. Zero for transient types.
	Committed ObjectID
}

func IntType(size uint64, signed bool, order ByteOrder) Datatype {
	return Datatype{Class: ClassInteger, Size: size, Signed: signed, Order: order,
		Precision: uint32(size * 8)}
}

func FloatType(size uint64, order ByteOrder) Datatype {
	return Datatype{Class: ClassFloat, Size: size, Signed: true, Order: order,
		Precision: uint32(size * 8)}
}

// FixedString is a null-padded string of size bytes.
func FixedString(size uint64) Datatype {
	return Datatype{Class: ClassString, Size: size}
}

// VarString is a variable-length string. Size is the size of the in-memory
// reference.
func VarString() Datatype {
	return Datatype{Class: ClassString, Size: 16, VarString: true}
}

func VarLen(base Datatype) Datatype {
	return Datatype{Class: ClassVarLen, Size: 16, Base: &base}
}

func ArrayOf(base Datatype, dims []uint64) Datatype {
	n := uint64(1)
	for _, d := range dims {
		n *= d
	}
	return Datatype{Class: ClassArray, Size: n * base.Size, Base: &base, Dims: dims}
}

// IsAtomic reports whether the type has no inner structure.
func (dt *Datatype) IsAtomic() bool {
	switch dt.Class {
	case ClassInteger, ClassFloat, ClassBitfield, ClassTime:
		return true
	}
	return false
}

// Equal compares the layout of two types. The committed identity is not
// part of the comparison.
func (dt *Datatype) Equal(other *Datatype) bool {
	if dt == nil || other == nil {
		return dt == other
	}
	if dt.Class != other.Class || dt.Size != other.Size {
		return false
	}
	switch dt.Class {
	case ClassInteger, ClassBitfield, ClassTime:
		return dt.Order == other.Order && dt.Signed == other.Signed &&
			dt.Precision == other.Precision
	case ClassFloat:
		return dt.Order == other.Order && dt.Precision == other.Precision
	case ClassString:
		return dt.VarString == other.VarString
	case ClassOpaque:
		return dt.Tag == other.Tag
	case ClassVarLen:
		return dt.VarString == other.VarString && dt.Base.Equal(other.Base)
	case ClassArray:
		if len(dt.Dims) != len(other.Dims) {
			return false
		}
		for i := range dt.Dims {
			if dt.Dims[i] != other.Dims[i] {
				return false
			}
		}
		return dt.Base.Equal(other.Base)
	case ClassEnum, ClassCompound:
		if len(dt.Members) != len(other.Members) {
			return false
		}
		if dt.Class == ClassEnum && !dt.Base.Equal(other.Base) {
			return false
		}
		for i := range dt.Members {
			a, b := &dt.Members[i], &other.Members[i]
			if a.Name != b.Name || a.Offset != b.Offset || !bytes.Equal(a.Value, b.Value) {
				return false
			}
			if dt.Class == ClassCompound && !a.Type.Equal(b.Type) {
				return false
			}
		}
		return true
	}
	return true
}

// NativeType returns a copy of dt with every atomic part in host byte order.
func NativeType(dt Datatype) Datatype {
	ret := dt
	if dt.IsAtomic() {
		ret.Order = NativeOrder
	}
	if dt.Base != nil {
		base := NativeType(*dt.Base)
		ret.Base = &base
	}
	if dt.Class == ClassEnum && dt.Order != NativeOrder && dt.Base != nil {
		ret.Members = make([]Member, len(dt.Members))
		for i, m := range dt.Members {
			ret.Members[i] = m
			ret.Members[i].Value = append([]byte{}, m.Value...)
			swap(ret.Members[i].Value, int(dt.Base.Size))
		}
		ret.Order = NativeOrder
	}
	if dt.Class == ClassCompound {
		ret.Members = make([]Member, len(dt.Members))
		for i, m := range dt.Members {
			ret.Members[i] = m
			if m.Type != nil {
				mt := NativeType(*m.Type)
				ret.Members[i].Type = &mt
			}
		}
	}
	return ret
}

// Convert rewrites buf, holding values of type src, into the byte order of
// dst. The two types must have the same layout apart from byte order.
func Convert(src, dst *Datatype, buf []byte) {
	if src.Size == 0 {
		return
	}
	n := uint64(len(buf)) / src.Size
	for i := uint64(0); i < n; i++ {
		convertOne(src, dst, buf[i*src.Size:(i+1)*src.Size])
	}
}

func convertOne(src, dst *Datatype, b []byte) {
	switch {
	case src.IsAtomic():
		if src.Order != dst.Order {
			swap(b, len(b))
		}
	case src.Class == ClassEnum:
		if src.Base != nil && dst.Base != nil {
			convertOne(src.Base, dst.Base, b)
		}
	case src.Class == ClassArray:
		Convert(src.Base, dst.Base, b)
	case src.Class == ClassCompound:
		for i := range src.Members {
			sm, dm := &src.Members[i], &dst.Members[i]
			end := sm.Offset + sm.Type.Size
			if end <= uint64(len(b)) {
				convertOne(sm.Type, dm.Type, b[sm.Offset:end])
			}
		}
	}
}

// swap reverses the byte order of each size-byte element in b.
func swap(b []byte, size int) {
	if size <= 1 {
		return
	}
	for off := 0; off+size <= len(b); off += size {
		e := b[off : off+size]
		for i, j := 0, size-1; i < j; i, j = i+1, j-1 {
			e[i], e[j] = e[j], e[i]
		}
	}
}
