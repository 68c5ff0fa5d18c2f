package store

import (
	"bytes"
	"testing"
)

func foreignOrder() ByteOrder {
	if NativeOrder == LittleEndian {
		return BigEndian
	}
	return LittleEndian
}

func TestEqual(t *testing.T) {
	i4 := IntType(4, true, LittleEndian)
	u4 := IntType(4, false, LittleEndian)
	i4be := IntType(4, true, BigEndian)
	f4 := FloatType(4, LittleEndian)
	for _, tc := range []struct {
		a, b Datatype
		want bool
	}{
		{i4, i4, true},
		{i4, u4, false},
		{i4, i4be, false},
		{i4, f4, false},
		{FixedString(3), FixedString(3), true},
		{FixedString(3), FixedString(4), false},
		{VarString(), VarLen(IntType(1, false, LittleEndian)), false},
		{VarLen(i4), VarLen(i4), true},
		{VarLen(i4), VarLen(u4), false},
		{ArrayOf(i4, []uint64{2, 3}), ArrayOf(i4, []uint64{2, 3}), true},
		{ArrayOf(i4, []uint64{2, 3}), ArrayOf(i4, []uint64{3, 2}), false},
	} {
		if got := tc.a.Equal(&tc.b); got != tc.want {
			t.Errorf("%v == %v: got %v", tc.a, tc.b, got)
		}
	}

	a := i4
	a.Committed = ObjectID{FileNo: 1, ObjNo: 2}
	if !a.Equal(&i4) {
		t.Error("committed identity should not matter")
	}

	cmp := func(name string, field Datatype) Datatype {
		return Datatype{Class: ClassCompound, Size: 8, Members: []Member{
			{Name: "a", Offset: 0, Type: &i4},
			{Name: name, Offset: 4, Type: &field},
		}}
	}
	c1, c2, c3 := cmp("b", f4), cmp("c", f4), cmp("b", i4)
	if !c1.Equal(&c1) || c1.Equal(&c2) || c1.Equal(&c3) {
		t.Error("bad compound comparison")
	}
	if ArrayOf(i4, []uint64{2, 3}).Size != 24 {
		t.Error("bad array size")
	}
}

func TestNativeType(t *testing.T) {
	fo := foreignOrder()
	i2 := IntType(2, true, fo)
	f8 := FloatType(8, fo)
	cmp := Datatype{Class: ClassCompound, Size: 16, Members: []Member{
		{Name: "s", Offset: 0, Type: &i2},
		{Name: "d", Offset: 8, Type: &f8},
	}}
	nat := NativeType(cmp)
	for _, m := range nat.Members {
		if m.Type.Order != NativeOrder {
			t.Error("member not native", m.Name)
		}
	}
	if cmp.Members[0].Type.Order != fo {
		t.Error("source type modified")
	}

	enum := Datatype{Class: ClassEnum, Size: 2, Order: fo, Base: &i2,
		Members: []Member{{Name: "one", Value: []byte{0, 1}}}}
	if fo == LittleEndian {
		enum.Members[0].Value = []byte{1, 0}
	}
	nenum := NativeType(enum)
	want := []byte{1, 0}
	if NativeOrder == BigEndian {
		want = []byte{0, 1}
	}
	if !bytes.Equal(nenum.Members[0].Value, want) || nenum.Base.Order != NativeOrder {
		t.Error("enum values not converted", nenum.Members[0].Value)
	}
}

func TestConvert(t *testing.T) {
	i2le := IntType(2, true, LittleEndian)
	i4le := IntType(4, true, LittleEndian)
	i2be := IntType(2, true, BigEndian)
	i4be := IntType(4, true, BigEndian)
	src := Datatype{Class: ClassCompound, Size: 8, Members: []Member{
		{Name: "s", Offset: 0, Type: &i2le},
		{Name: "i", Offset: 4, Type: &i4le},
	}}
	dst := Datatype{Class: ClassCompound, Size: 8, Members: []Member{
		{Name: "s", Offset: 0, Type: &i2be},
		{Name: "i", Offset: 4, Type: &i4be},
	}}
	buf := []byte{1, 2, 9, 9, 1, 2, 3, 4, 5, 6, 0, 0, 7, 8, 9, 10}
	Convert(&src, &dst, buf)
	want := []byte{2, 1, 9, 9, 4, 3, 2, 1, 6, 5, 0, 0, 10, 9, 8, 7}
	if !bytes.Equal(buf, want) {
		t.Errorf("got %v, want %v", buf, want)
	}

	same := []byte{1, 2, 3, 4}
	Convert(&i2le, &i2le, same)
	if !bytes.Equal(same, []byte{1, 2, 3, 4}) {
		t.Error("same order should not swap")
	}
	arr, arrBE := ArrayOf(i2le, []uint64{2}), ArrayOf(i2be, []uint64{2})
	Convert(&arr, &arrBE, same)
	if !bytes.Equal(same, []byte{2, 1, 4, 3}) {
		t.Error("array not converted", same)
	}
}
