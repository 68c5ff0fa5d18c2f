package nc4

import (
	"github.com/batchatco/go-nc4meta/netcdf/store"
	"github.com/batchatco/go-nc4meta/netcdf/util"
)

// Attribute data is kept in one of three shapes depending on its type:
// fixed-size records in Data, strings in Strings, vlen records in Vlen.
type Attribute struct {
	Name    string
	Type    TypeID
	Len     uint64
	Data    []byte
	Strings []string
	Vlen    [][]byte

	dirty bool
}

type Dimension struct {
	ID        int
	Name      string
	Len       uint64
	Unlimited bool
	TooLong   bool // Len was clamped to the platform size limit
	CoordVar  *Variable
	Group     *Group

	scale   store.Dataset // held open when there is no coordinate variable
	scaleID store.ObjectID
	stored  bool
}

// Filter is a filter other than shuffle, fletcher32 and deflate.
type Filter struct {
	ID     int
	Params []uint32
}

type Variable struct {
	ID         int
	Name       string
	Group      *Group
	DimIDs     []int
	Type       *Type
	Endianness Endianness

	Contiguous   bool
	ChunkSizes   []uint64
	Shuffle      bool
	Fletcher32   bool
	Deflate      bool
	DeflateLevel int
	Filters      []Filter
	NoFill       bool
	FillValue    []byte
	Cache        store.CacheConfig

	// Dimscale is set for coordinate variables.
	Dimscale bool

	dims        []*Dimension
	storedName  string
	scaleIDs    []store.ObjectID // per axis, zero when no scale is attached
	dataset     store.Dataset
	atts        *util.OrderedMap[*Attribute]
	attsNotRead bool
}

type Group struct {
	ID     int
	Name   string
	Parent *Group

	file        *File
	handle      store.Group
	children    *util.OrderedMap[*Group]
	dims        *util.OrderedMap[*Dimension]
	vars        *util.OrderedMap[*Variable]
	types       *util.OrderedMap[*Type]
	atts        *util.OrderedMap[*Attribute]
	attsNotRead bool
}

func (f *File) newGroup(parent *Group, name string) *Group {
	g := &Group{
		ID:       len(f.groups),
		Name:     name,
		Parent:   parent,
		file:     f,
		children: util.Empty[*Group](),
		dims:     util.Empty[*Dimension](),
		vars:     util.Empty[*Variable](),
		types:    util.Empty[*Type](),
		atts:     util.Empty[*Attribute](),
	}
	f.groups = append(f.groups, g)
	if parent != nil {
		parent.children.Add(name, g)
	}
	return g
}

// addDim registers a dimension under id. A negative id takes the next free one.
func (g *Group) addDim(name string, id int) *Dimension {
	f := g.file
	if id < 0 {
		id = f.nextDimID
	}
	if id >= f.nextDimID {
		f.nextDimID = id + 1
	}
	d := &Dimension{ID: id, Name: name, Group: g}
	f.dims[id] = d
	g.dims.Add(name, d)
	return d
}

func (g *Group) removeDim(d *Dimension) {
	g.dims.Delete(d.Name)
	delete(g.file.dims, d.ID)
}

func (g *Group) addVar(name string, ndims int) *Variable {
	v := &Variable{
		ID:         g.vars.Len(),
		Name:       name,
		storedName: name,
		Group:      g,
		DimIDs:     make([]int, ndims),
		dims:       make([]*Dimension, ndims),
		scaleIDs:   make([]store.ObjectID, ndims),
		atts:       util.Empty[*Attribute](),
	}
	for i := range v.DimIDs {
		v.DimIDs[i] = -1
	}
	g.vars.Add(name, v)
	return v
}

// addType allocates the next user type id.
func (g *Group) addType(name string, class TypeClass, size uint64) *Type {
	f := g.file
	t := &Type{ID: f.nextTypeID, Name: name, Class: class, Size: size, Group: g, rc: 1}
	f.nextTypeID++
	f.types[t.ID] = t
	f.userTypes = append(f.userTypes, t)
	g.types.Add(name, t)
	return t
}

// findDim looks name up in g and then its ancestors.
func (g *Group) findDim(name string) *Dimension {
	for ; g != nil; g = g.Parent {
		if d, has := g.dims.Get(name); has {
			return d
		}
	}
	return nil
}

// findType looks name up in g and then its ancestors.
func (g *Group) findType(name string) *Type {
	for ; g != nil; g = g.Parent {
		if t, has := g.types.Get(name); has {
			return t
		}
	}
	return nil
}

func (g *Group) isRoot() bool {
	return g.Parent == nil
}

// varByID finds a variable by its id within g.
func (g *Group) varByID(id int) *Variable {
	for _, v := range g.vars.Values() {
		if v.ID == id {
			return v
		}
	}
	return nil
}
