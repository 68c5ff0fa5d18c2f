package memstore

import (
	"bytes"
	"encoding/binary"

	"github.com/batchatco/go-nc4meta/netcdf/store"
)

// Dimension scales keep their bookkeeping in attributes, the same way the
// HDF5 dimension scale convention does.
const (
	classAttr   = "CLASS"
	nameAttr    = "NAME"
	dimListAttr = "DIMENSION_LIST"
	refListAttr = "REFERENCE_LIST"
	scaleClass  = "DIMENSION_SCALE"
)

var (
	refType     = store.Datatype{Class: store.ClassReference, Size: 8}
	dimListType = store.VarLen(refType)
	refListType = store.Datatype{Class: store.ClassCompound, Size: 12, Members: []store.Member{
		{Name: "dataset", Offset: 0, Type: &refType},
		{Name: "dimension", Offset: 8, Type: func() *store.Datatype {
			dt := store.IntType(4, true, store.LittleEndian)
			return &dt
		}()},
	}}
)

func cString(s string) []byte {
	return append([]byte(s), 0)
}

func (o *object) attr(name string) *attr {
	for _, a := range o.Attrs {
		if a.Name == name {
			return a
		}
	}
	return nil
}

// setAttr replaces or appends an internal attribute.
func (o *object) setAttr(a *attr) {
	for i := range o.Attrs {
		if o.Attrs[i].Name == a.Name {
			o.Attrs[i] = a
			return
		}
	}
	o.Attrs = append(o.Attrs, a)
}

func (d datasetHandle) IsScale() (bool, error) {
	if err := d.check(false); err != nil {
		return false, err
	}
	a := d.o.attr(classAttr)
	return a != nil && string(bytes.TrimRight(a.Raw, "\x00")) == scaleClass, nil
}

func (d datasetHandle) ScaleName() (string, error) {
	isScale, err := d.IsScale()
	if err != nil {
		return "", err
	}
	if !isScale {
		return "", store.ErrNotScale
	}
	a := d.o.attr(nameAttr)
	if a == nil {
		return "", nil
	}
	return string(bytes.TrimRight(a.Raw, "\x00")), nil
}

func (d datasetHandle) SetScale(name string) error {
	if err := d.check(true); err != nil {
		return err
	}
	if d.o.attr(dimListAttr) != nil {
		// a dataset with attached scales cannot become one
		return store.ErrInvalidParams
	}
	class := cString(scaleClass)
	d.o.setAttr(&attr{Name: classAttr, Type: store.FixedString(uint64(len(class))),
		Space: store.Scalar(), Raw: class})
	if name != "" {
		raw := cString(name)
		d.o.setAttr(&attr{Name: nameAttr, Type: store.FixedString(uint64(len(raw))),
			Space: store.Scalar(), Raw: raw})
	}
	return nil
}

func (d datasetHandle) AttachScale(scale store.Dataset, axis int) error {
	if err := d.check(true); err != nil {
		return err
	}
	sh, ok := scale.(datasetHandle)
	if !ok || sh.f != d.f {
		return store.ErrInvalidParams
	}
	if sh.o == d.o {
		return store.ErrInvalidParams
	}
	if isScale, err := sh.IsScale(); err != nil {
		return err
	} else if !isScale {
		return store.ErrNotScale
	}
	rank := d.o.Space.Rank()
	if axis < 0 || axis >= rank {
		return store.ErrInvalidParams
	}

	dl := d.o.attr(dimListAttr)
	if dl == nil {
		dl = &attr{Name: dimListAttr, Type: dimListType,
			Space: store.Simple([]uint64{uint64(rank)}, nil), Vlen: make([][]byte, rank)}
		d.o.setAttr(dl)
	}
	for _, num := range decodeRefs(dl.Vlen[axis]) {
		if num == sh.o.Num {
			return nil
		}
	}
	dl.Vlen[axis] = binary.LittleEndian.AppendUint64(dl.Vlen[axis], sh.o.Num)

	rl := sh.o.attr(refListAttr)
	if rl == nil {
		rl = &attr{Name: refListAttr, Type: refListType}
		sh.o.setAttr(rl)
	}
	rl.Raw = binary.LittleEndian.AppendUint64(rl.Raw, d.o.Num)
	rl.Raw = binary.LittleEndian.AppendUint32(rl.Raw, uint32(axis))
	rl.Space = store.Simple([]uint64{uint64(len(rl.Raw)) / refListType.Size}, nil)
	return nil
}

func decodeRefs(b []byte) []uint64 {
	var ret []uint64
	for len(b) >= 8 {
		ret = append(ret, binary.LittleEndian.Uint64(b))
		b = b[8:]
	}
	return ret
}

func (d datasetHandle) scaleRefs(axis int) ([]uint64, error) {
	if err := d.check(false); err != nil {
		return nil, err
	}
	if axis < 0 || axis >= d.o.Space.Rank() {
		return nil, store.ErrInvalidParams
	}
	dl := d.o.attr(dimListAttr)
	if dl == nil {
		return nil, nil
	}
	return decodeRefs(dl.Vlen[axis]), nil
}

func (d datasetHandle) NumScales(axis int) (int, error) {
	refs, err := d.scaleRefs(axis)
	return len(refs), err
}

func (d datasetHandle) IterateScales(axis int, fn func(scale store.Dataset) error) error {
	refs, err := d.scaleRefs(axis)
	if err != nil {
		return err
	}
	for _, num := range refs {
		o, err := d.f.lookup(num)
		if err != nil {
			return err
		}
		sh := d.f.openDataset(o)
		err = fn(sh)
		sh.Close()
		if err != nil {
			return err
		}
	}
	return nil
}
