package nc4

import (
	"bytes"
	"fmt"

	"github.com/batchatco/go-nc4meta/netcdf/api"
	"github.com/batchatco/go-nc4meta/netcdf/util"
	"github.com/batchatco/go-thrower"
)

type groupView struct {
	g *Group
}

var _ api.Group = groupView{}

// View returns g as an api.Group.
func (g *Group) View() api.Group {
	return groupView{g}
}

func (gv groupView) Close() {
	if gv.g.file.closed {
		return
	}
	if err := gv.g.file.Close(); err != nil {
		logger.Warn("close", gv.g.file.Path, err)
	}
}

func (gv groupView) Name() string {
	return gv.g.FullName()
}

func (gv groupView) Attributes() (api.AttributeMap, error) {
	atts, err := gv.g.Attributes()
	if err != nil {
		return nil, err
	}
	return newAttrMap(gv.g.file, atts), nil
}

func (gv groupView) ListVariables() []string {
	return gv.g.vars.Keys()
}

func (gv groupView) GetVariable(name string) (*api.Variable, error) {
	v, has := gv.g.vars.Get(name)
	if !has {
		return nil, fmt.Errorf("%w: variable %s", ErrNotFound, name)
	}
	atts, err := v.Attributes()
	if err != nil {
		return nil, err
	}
	dims := make([]string, len(v.dims))
	for i, d := range v.dims {
		if d != nil {
			dims[i] = d.Name
		}
	}
	return &api.Variable{
		Type:       gv.g.file.cdlName(v.Type.ID),
		Dimensions: dims,
		Shape:      v.Shape(),
		Attributes: newAttrMap(gv.g.file, atts),
	}, nil
}

func (gv groupView) ListSubgroups() []string {
	return gv.g.children.Keys()
}

func (gv groupView) GetGroup(group string) (api.Group, error) {
	g, err := gv.g.Lookup(group)
	if err != nil {
		return nil, err
	}
	return groupView{g}, nil
}

func (gv groupView) ListTypes() []string {
	return gv.g.types.Keys()
}

func (gv groupView) GetType(name string) (string, bool) {
	t := gv.g.findType(name)
	if t == nil {
		return "", false
	}
	return gv.g.file.cdlDecl(t), true
}

func (gv groupView) ListDimensions() []string {
	return gv.g.dims.Keys()
}

func (gv groupView) GetDimension(name string) (uint64, bool) {
	d := gv.g.findDim(name)
	if d == nil {
		return 0, false
	}
	return d.Len, true
}

func (gv groupView) IsUnlimited(name string) bool {
	d := gv.g.findDim(name)
	return d != nil && d.Unlimited
}

type attrMap struct {
	f    *File
	atts *util.OrderedMap[*Attribute]
}

func newAttrMap(f *File, atts []*Attribute) attrMap {
	m := attrMap{f: f, atts: util.Empty[*Attribute]()}
	for _, a := range atts {
		m.atts.Add(a.Name, a)
	}
	return m
}

func (m attrMap) Keys() []string {
	return m.atts.Keys()
}

func (m attrMap) Get(key string) (any, bool) {
	a, has := m.atts.Get(key)
	if !has {
		return nil, false
	}
	return m.f.attValue(a), true
}

func (m attrMap) GetType(key string) (string, bool) {
	a, has := m.atts.Get(key)
	if !has {
		return "", false
	}
	return m.f.cdlName(a.Type), true
}

// attValue converts attribute data to Go values: a string for text, a
// typed slice for numbers and raw bytes for user-defined types.
func (f *File) attValue(a *Attribute) (val any) {
	if err := func() (err error) {
		defer thrower.RecoverError(&err)
		val = f.decodeAtt(a)
		return nil
	}(); err != nil {
		logger.Warn("can't decode attribute", a.Name, err)
		return a.Data
	}
	return val
}

func (f *File) decodeAtt(a *Attribute) any {
	var data any
	switch a.Type {
	case Char:
		return string(a.Data)
	case String:
		return append([]string{}, a.Strings...)
	case Byte:
		data = make([]int8, a.Len)
	case UByte:
		data = make([]uint8, a.Len)
	case Short:
		data = make([]int16, a.Len)
	case UShort:
		data = make([]uint16, a.Len)
	case Int:
		data = make([]int32, a.Len)
	case UInt:
		data = make([]uint32, a.Len)
	case Int64:
		data = make([]int64, a.Len)
	case UInt64:
		data = make([]uint64, a.Len)
	case Float:
		data = make([]float32, a.Len)
	case Double:
		data = make([]float64, a.Len)
	default:
		if a.Vlen != nil {
			return a.Vlen
		}
		return a.Data
	}
	util.MustRead(bytes.NewReader(a.Data), util.NativeByteOrder, data)
	return data
}
