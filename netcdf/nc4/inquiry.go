package nc4

import (
	"fmt"
	"strings"

	"github.com/batchatco/go-thrower"
)

// FullName is the path of g from the root.
func (g *Group) FullName() string {
	if g.isRoot() {
		return "/"
	}
	parts := []string{}
	for p := g; !p.isRoot(); p = p.Parent {
		parts = append([]string{p.Name}, parts...)
	}
	return "/" + strings.Join(parts, "/")
}

// Groups returns the child groups in creation order.
func (g *Group) Groups() []*Group {
	return g.children.Values()
}

func (g *Group) Group(name string) (*Group, bool) {
	return g.children.Get(name)
}

// Dims returns the dimensions defined in g.
func (g *Group) Dims() []*Dimension {
	return g.dims.Values()
}

// Dim finds a dimension by name in g or its ancestors.
func (g *Group) Dim(name string) (*Dimension, bool) {
	d := g.findDim(name)
	return d, d != nil
}

func (g *Group) Vars() []*Variable {
	return g.vars.Values()
}

func (g *Group) Var(name string) (*Variable, bool) {
	return g.vars.Get(name)
}

// Types returns the user-defined types of g.
func (g *Group) Types() []*Type {
	return g.types.Values()
}

// Type finds a user-defined type by name in g or its ancestors.
func (g *Group) Type(name string) (*Type, bool) {
	t := g.findType(name)
	return t, t != nil
}

// UnlimDims returns the ids of the unlimited dimensions of g.
func (g *Group) UnlimDims() []int {
	ids := []int{}
	for _, d := range g.dims.Values() {
		if d.Unlimited {
			ids = append(ids, d.ID)
		}
	}
	return ids
}

// Attributes returns the global attributes of g, reading them on first use.
func (g *Group) Attributes() (atts []*Attribute, err error) {
	defer thrower.RecoverError(&err)
	g.file.checkOpen()
	g.file.ensureGroupAtts(g)
	return g.atts.Values(), nil
}

func (g *Group) Attribute(name string) (att *Attribute, err error) {
	defer thrower.RecoverError(&err)
	g.file.checkOpen()
	g.file.ensureGroupAtts(g)
	att, has := g.atts.Get(name)
	assertError(has, ErrNotFound, "no global attribute "+name)
	return att, nil
}

// Dims returns the dimension of each axis.
func (v *Variable) Dims() []*Dimension {
	return append([]*Dimension{}, v.dims...)
}

// Shape is the current length of each axis.
func (v *Variable) Shape() []uint64 {
	shape := make([]uint64, len(v.dims))
	for i, d := range v.dims {
		if d != nil {
			shape[i] = d.Len
		}
	}
	return shape
}

func (v *Variable) Attributes() (atts []*Attribute, err error) {
	defer thrower.RecoverError(&err)
	v.Group.file.checkOpen()
	v.Group.file.ensureVarAtts(v)
	return v.atts.Values(), nil
}

func (v *Variable) Attribute(name string) (att *Attribute, err error) {
	defer thrower.RecoverError(&err)
	v.Group.file.checkOpen()
	v.Group.file.ensureVarAtts(v)
	att, has := v.atts.Get(name)
	assertError(has, ErrNotFound, "no attribute "+name+" in "+v.Name)
	return att, nil
}

// Groups returns every group of the file, the root first.
func (f *File) Groups() []*Group {
	return append([]*Group{}, f.groups...)
}

// Dim looks a dimension up by id.
func (f *File) Dim(id int) (*Dimension, error) {
	d, has := f.dims[id]
	if !has {
		return nil, ErrBadDim
	}
	return d, nil
}

// Type looks any type up by id.
func (f *File) Type(id TypeID) (t *Type, err error) {
	defer thrower.RecoverError(&err)
	return f.typeByID(id), nil
}

// Lookup finds a group by path. Paths starting with "/" are absolute.
func (g *Group) Lookup(path string) (*Group, error) {
	cur := g
	if strings.HasPrefix(path, "/") {
		cur = g.file.root
	}
	for _, part := range strings.Split(path, "/") {
		if part == "" || part == "." {
			continue
		}
		if part == ".." {
			if cur.Parent != nil {
				cur = cur.Parent
			}
			continue
		}
		next, has := cur.children.Get(part)
		if !has {
			return nil, fmt.Errorf("%w: group %s", ErrNotFound, path)
		}
		cur = next
	}
	return cur, nil
}
