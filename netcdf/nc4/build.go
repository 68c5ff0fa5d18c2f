package nc4

import (
	"errors"

	"github.com/batchatco/go-nc4meta/netcdf/store"
	"github.com/batchatco/go-thrower"
)

// readGroup builds g from the container. All named types and datasets of g
// are read before any child group is entered, so that a child can use
// the types and dimensions of its ancestors.
func (f *File) readGroup(g *Group) {
	tracked, err := g.handle.CreationOrderTracked()
	check("get link order of group "+g.Name, err)
	order := store.ByCreationOrder
	if !tracked {
		assertError(f.noWrite, ErrCantWrite,
			"group "+g.Name+" has no creation order index and the file is writable")
		order = store.ByName
	}

	var pending []*Group
	var visitErr error
	err = g.handle.IterateLinks(order, func(li store.LinkInfo) error {
		visitErr = f.visitLink(g, li, &pending)
		return visitErr
	})
	thrower.ThrowIfError(visitErr)
	check("iterate links of group "+g.Name, err)

	for _, child := range pending {
		f.readGroup(child)
	}
	g.attsNotRead = true
}

func (f *File) visitLink(g *Group, li store.LinkInfo, pending *[]*Group) (err error) {
	defer thrower.RecoverError(&err)
	switch li.Type {
	case store.ObjGroup:
		assertError(len(li.Name) <= MaxName, ErrBadName, "group name too long: "+li.Name)
		h, err := g.handle.OpenGroup(li.Name)
		check("open group "+li.Name, err)
		child := f.newGroup(g, li.Name)
		child.handle = h
		*pending = append(*pending, child)
	case store.ObjDataset:
		f.readDataset(g, li.Name)
	case store.ObjNamedType:
		f.readType(g, li.Name)
	default:
		logger.Warn("ignoring object", li.Name, "of unknown kind")
	}
	return nil
}

// readDataset reads one dataset. A dataset whose type has no netCDF
// equivalent is left out and the walk goes on; any other failure ends it.
func (f *File) readDataset(g *Group, name string) {
	err := f.tryReadDataset(g, name)
	if errors.Is(err, ErrBadTypeID) {
		logger.Warn("skipping dataset", name, "of unknown type")
		return
	}
	thrower.ThrowIfError(err)
}

func (f *File) tryReadDataset(g *Group, name string) (err error) {
	defer thrower.RecoverError(&err)
	ds, err := g.handle.OpenDataset(name)
	check("open dataset "+name, err)
	defer closeOnExit(name, ds)
	sp, err := ds.Dataspace()
	check("get space of "+name, err)
	ndims := sp.Rank()

	isScale, err := ds.IsScale()
	check("check scale "+name, err)
	var dim *Dimension
	if isScale {
		var length, maxLength uint64
		if ndims > 0 {
			length, maxLength = sp.Dims[0], sp.MaxDims[0]
		}
		dim = f.readScale(g, ds, name, length, maxLength)
	}
	if dim == nil || dim.scale == nil {
		f.readVar(g, ds, name, ndims, dim)
	}
	return nil
}
