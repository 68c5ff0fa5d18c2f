package nc4

import (
	"fmt"
	"strings"

	"github.com/batchatco/go-nc4meta/netcdf/store"
)

// TypeID identifies a type within a file. Atomic types have fixed ids,
// user-defined types are numbered from FirstUserTypeID.
type TypeID int

const (
	NAT TypeID = iota // not a type
	Byte
	Char
	Short
	Int
	Float
	Double
	UByte
	UShort
	UInt
	Int64
	UInt64
	String

	numAtomicTypes
)

const FirstUserTypeID TypeID = 32

// TypeClass is the netCDF class of a type.
type TypeClass int

const (
	ClassInt TypeClass = iota
	ClassFloat
	ClassChar
	ClassString
	ClassCompound
	ClassEnum
	ClassVlen
	ClassOpaque
)

// Endianness of a variable's stored data.
type Endianness int

const (
	EndianNative Endianness = iota
	EndianLittle
	EndianBig
)

// Field is one member of a compound type.
type Field struct {
	Name   string
	Offset uint64
	Type   TypeID
	Dims   []int // nil unless the field is a fixed-size array
}

// EnumMember holds its value in the encoding of the enum's base type.
type EnumMember struct {
	Name  string
	Value []byte
}

// Type is an atomic or user-defined type.
type Type struct {
	ID      TypeID
	Name    string
	Class   TypeClass
	Size    uint64
	Signed  bool
	Fields  []Field      // compound
	Members []EnumMember // enum
	Base    TypeID       // enum and vlen
	Group   *Group       // nil for atomic types

	committed bool
	dt        store.Datatype
	handle    store.NamedType
	rc        int
}

var atomicTypes [numAtomicTypes]*Type

func init() {
	atomic := []struct {
		id     TypeID
		name   string
		class  TypeClass
		size   uint64
		signed bool
	}{
		{Byte, "byte", ClassInt, 1, true},
		{Char, "char", ClassChar, 1, false},
		{Short, "short", ClassInt, 2, true},
		{Int, "int", ClassInt, 4, true},
		{Float, "float", ClassFloat, 4, true},
		{Double, "double", ClassFloat, 8, true},
		{UByte, "ubyte", ClassInt, 1, false},
		{UShort, "ushort", ClassInt, 2, false},
		{UInt, "uint", ClassInt, 4, false},
		{Int64, "int64", ClassInt, 8, true},
		{UInt64, "uint64", ClassInt, 8, false},
		{String, "string", ClassString, 8, false},
	}
	for _, a := range atomic {
		atomicTypes[a.id] = &Type{ID: a.id, Name: a.name, Class: a.class, Size: a.size,
			Signed: a.signed}
	}
}

// AtomicType returns the shared record of an atomic type, or nil.
func AtomicType(id TypeID) *Type {
	if id <= NAT || id >= numAtomicTypes {
		return nil
	}
	return atomicTypes[id]
}

func (t *Type) IsAtomic() bool {
	return t.ID < numAtomicTypes
}

// Committed reports whether the type exists in the container.
func (t *Type) Committed() bool {
	return t.committed
}

// storeType returns the storage descriptor of an atomic type.
func storeType(id TypeID, order store.ByteOrder) store.Datatype {
	t := atomicTypes[id]
	switch t.Class {
	case ClassInt:
		return store.IntType(t.Size, t.Signed, order)
	case ClassFloat:
		return store.FloatType(t.Size, order)
	case ClassChar:
		return store.FixedString(1)
	}
	return store.VarString()
}

func byteOrder(e Endianness) store.ByteOrder {
	switch e {
	case EndianLittle:
		return store.LittleEndian
	case EndianBig:
		return store.BigEndian
	}
	return store.NativeOrder
}

// cdlName returns the name of the type as used in CDL.
func (f *File) cdlName(id TypeID) string {
	if t := AtomicType(id); t != nil {
		return t.Name
	}
	if t, has := f.types[id]; has {
		return t.Name
	}
	return fmt.Sprintf("type_%d", id)
}

// cdlDecl describes a user-defined type in CDL.
func (f *File) cdlDecl(t *Type) string {
	switch t.Class {
	case ClassCompound:
		var b strings.Builder
		fmt.Fprintf(&b, "compound %s {\n", t.Name)
		for _, fld := range t.Fields {
			dims := ""
			if len(fld.Dims) > 0 {
				ds := make([]string, len(fld.Dims))
				for i, d := range fld.Dims {
					ds[i] = fmt.Sprint(d)
				}
				dims = "(" + strings.Join(ds, ", ") + ")"
			}
			fmt.Fprintf(&b, "\t%s %s%s ;\n", f.cdlName(fld.Type), fld.Name, dims)
		}
		b.WriteString("}")
		return b.String()
	case ClassEnum:
		base := atomicTypes[t.Base]
		ms := make([]string, len(t.Members))
		for i, m := range t.Members {
			ms[i] = fmt.Sprintf("%s = %d", m.Name, decodeInt(m.Value, base.Size, base.Signed))
		}
		return fmt.Sprintf("%s enum %s {%s}", base.Name, t.Name, strings.Join(ms, ", "))
	case ClassVlen:
		return fmt.Sprintf("%s(*) %s", f.cdlName(t.Base), t.Name)
	case ClassOpaque:
		return fmt.Sprintf("opaque(%d) %s", t.Size, t.Name)
	}
	return t.Name
}
