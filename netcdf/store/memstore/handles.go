package memstore

import (
	"sort"

	"github.com/batchatco/go-nc4meta/netcdf/store"
)

// handle is the reference-counted part shared by every object handle.
type handle struct {
	f    *File
	o    *object
	refs int
}

func (f *File) newHandle(o *object) *handle {
	f.open++
	return &handle{f: f, o: o, refs: 1}
}

func (h *handle) ID() store.ObjectID {
	return store.ObjectID{FileNo: h.f.fileNo, ObjNo: h.o.Num}
}

func (h *handle) IncRef() error {
	if h.refs == 0 {
		return store.ErrClosed
	}
	h.refs++
	h.f.open++
	return nil
}

func (h *handle) Close() error {
	if h.refs == 0 {
		return store.ErrClosed
	}
	h.refs--
	h.f.open--
	return nil
}

func (h *handle) check(write bool) error {
	if h.refs == 0 || h.f.closed {
		return store.ErrClosed
	}
	if write && !h.f.writable {
		return store.ErrReadOnly
	}
	return nil
}

// Attributes

func (h *handle) NumAttrs() (int, error) {
	if err := h.check(false); err != nil {
		return 0, err
	}
	return len(h.o.Attrs), nil
}

func (h *handle) findAttr(name string) (int, bool) {
	for i, a := range h.o.Attrs {
		if a.Name == name {
			return i, true
		}
	}
	return -1, false
}

func (h *handle) AttrExists(name string) (bool, error) {
	if err := h.check(false); err != nil {
		return false, err
	}
	_, has := h.findAttr(name)
	return has, nil
}

func (h *handle) OpenAttr(name string) (store.Attribute, error) {
	if err := h.check(false); err != nil {
		return nil, err
	}
	i, has := h.findAttr(name)
	if !has {
		return nil, store.ErrNotFound
	}
	h.f.stats.AttrOpens++
	return h.f.newAttrHandle(h.o.Attrs[i]), nil
}

func (h *handle) OpenAttrByIndex(idx int, order store.IterOrder) (store.Attribute, error) {
	if err := h.check(false); err != nil {
		return nil, err
	}
	if idx < 0 || idx >= len(h.o.Attrs) {
		return nil, store.ErrNotFound
	}
	attrs := h.o.Attrs
	switch order {
	case store.ByCreationOrder:
		if !h.o.TrackAttrOrder {
			return nil, store.ErrInvalidParams
		}
	default:
		attrs = append([]*attr{}, attrs...)
		sort.Slice(attrs, func(i, j int) bool { return attrs[i].Name < attrs[j].Name })
	}
	h.f.stats.AttrOpens++
	return h.f.newAttrHandle(attrs[idx]), nil
}

func (h *handle) CreateAttr(name string, dt store.Datatype, space store.Dataspace) (store.Attribute, error) {
	if err := h.check(true); err != nil {
		return nil, err
	}
	if _, has := h.findAttr(name); has {
		return nil, store.ErrExists
	}
	a := &attr{Name: name, Type: dt, Space: space}
	h.o.Attrs = append(h.o.Attrs, a)
	return h.f.newAttrHandle(a), nil
}

func (h *handle) DeleteAttr(name string) error {
	if err := h.check(true); err != nil {
		return err
	}
	i, has := h.findAttr(name)
	if !has {
		return store.ErrNotFound
	}
	h.o.Attrs = append(h.o.Attrs[:i], h.o.Attrs[i+1:]...)
	return nil
}

// Groups

type groupHandle struct {
	*handle
}

var _ store.Group = groupHandle{}

func (f *File) openGroup(o *object) groupHandle {
	return groupHandle{f.newHandle(o)}
}

func (g groupHandle) CreationOrderTracked() (bool, error) {
	if err := g.check(false); err != nil {
		return false, err
	}
	return g.o.TrackOrder, nil
}

func (g groupHandle) IterateLinks(order store.IterOrder, fn func(store.LinkInfo) error) error {
	if err := g.check(false); err != nil {
		return err
	}
	if order == store.ByCreationOrder && !g.o.TrackOrder {
		return store.ErrInvalidParams
	}
	g.f.stats.LinkIterations++
	for _, l := range g.o.sortedLinks(order) {
		o, err := g.f.lookup(l.Obj)
		if err != nil {
			return err
		}
		if err := fn(store.LinkInfo{Name: l.Name, Type: o.Kind}); err != nil {
			return err
		}
	}
	return nil
}

func (g groupHandle) child(name string, kind store.ObjectType) (*object, error) {
	if err := g.check(false); err != nil {
		return nil, err
	}
	i, has := g.o.findLink(name)
	if !has {
		return nil, store.ErrNotFound
	}
	o, err := g.f.lookup(g.o.Links[i].Obj)
	if err != nil {
		return nil, err
	}
	if o.Kind != kind {
		return nil, store.ErrNotFound
	}
	return o, nil
}

func (g groupHandle) OpenGroup(name string) (store.Group, error) {
	o, err := g.child(name, store.ObjGroup)
	if err != nil {
		return nil, err
	}
	return g.f.openGroup(o), nil
}

func (g groupHandle) OpenDataset(name string) (store.Dataset, error) {
	o, err := g.child(name, store.ObjDataset)
	if err != nil {
		return nil, err
	}
	g.f.stats.DatasetOpens++
	return g.f.openDataset(o), nil
}

func (g groupHandle) OpenNamedType(name string) (store.NamedType, error) {
	o, err := g.child(name, store.ObjNamedType)
	if err != nil {
		return nil, err
	}
	return typeHandle{g.f.newHandle(o)}, nil
}

func (g groupHandle) addLink(name string, kind store.ObjectType) (*object, error) {
	if err := g.check(true); err != nil {
		return nil, err
	}
	if _, has := g.o.findLink(name); has {
		return nil, store.ErrExists
	}
	o := g.f.c.newObject(kind)
	g.o.Links = append(g.o.Links, link{Name: name, Obj: o.Num})
	return o, nil
}

func (g groupHandle) CreateGroup(name string) (store.Group, error) {
	o, err := g.addLink(name, store.ObjGroup)
	if err != nil {
		return nil, err
	}
	return g.f.openGroup(o), nil
}

func (g groupHandle) CreateDataset(name string, dt store.Datatype, space store.Dataspace,
	settings store.DatasetSettings) (store.Dataset, error) {
	if err := validateSettings(space, settings); err != nil {
		return nil, err
	}
	o, err := g.addLink(name, store.ObjDataset)
	if err != nil {
		return nil, err
	}
	o.Type = dt
	o.Space = space
	o.Settings = settings
	switch {
	case settings.FillValue != nil:
		o.FillStatus = store.FillUserDefined
	default:
		o.FillStatus = store.FillDefault
	}
	return g.f.openDataset(o), nil
}

func validateSettings(space store.Dataspace, settings store.DatasetSettings) error {
	growable := false
	for i := range space.MaxDims {
		if space.MaxDims[i] != space.Dims[i] {
			growable = true
		}
	}
	if settings.Layout == store.LayoutChunked {
		if len(settings.Chunk) != space.Rank() {
			return store.ErrInvalidParams
		}
		for _, c := range settings.Chunk {
			if c == 0 {
				return store.ErrInvalidParams
			}
		}
		return nil
	}
	if growable || len(settings.Filters) > 0 {
		// only chunked datasets can grow or be filtered
		return store.ErrInvalidParams
	}
	return nil
}

func (g groupHandle) CommitType(name string, dt store.Datatype) (store.NamedType, error) {
	o, err := g.addLink(name, store.ObjNamedType)
	if err != nil {
		return nil, err
	}
	dt.Committed = store.ObjectID{FileNo: g.f.fileNo, ObjNo: o.Num}
	o.Type = dt
	return typeHandle{g.f.newHandle(o)}, nil
}

// Named types

type typeHandle struct {
	*handle
}

var _ store.NamedType = typeHandle{}

func (t typeHandle) Datatype() (store.Datatype, error) {
	if err := t.check(false); err != nil {
		return store.Datatype{}, err
	}
	return t.o.Type, nil
}
