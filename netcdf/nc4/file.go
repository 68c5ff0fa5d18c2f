// Package nc4 is the netCDF-4 metadata layer. It maps groups, dimensions,
// variables, attributes and user-defined types onto a hierarchical object
// store, building the metadata tree when a file is opened and writing it
// back when the file is synced.
package nc4

import (
	"errors"
	"fmt"

	"github.com/batchatco/go-nc4meta/internal"
	"github.com/batchatco/go-nc4meta/netcdf/store"
	"github.com/batchatco/go-nc4meta/netcdf/store/memstore"
	"github.com/batchatco/go-thrower"
)

var (
	logger = internal.NewLogger("nc4")
)

// Options are the optional parameters of Create and Open.
type Options struct {
	// Backend defaults to a memstore backend.
	Backend store.Backend
	// Context defaults to DefaultContext().
	Context *Context
	// Parallel is required with MPIIO or MPIPosix.
	Parallel *Params
	// InitialSize is a size hint for new files. The object store sizes
	// itself, so it is only logged.
	InitialSize int64
}

func (o *Options) withDefaults() Options {
	var ret Options
	if o != nil {
		ret = *o
	}
	if ret.Backend == nil {
		ret.Backend = memstore.New()
	}
	if ret.Context == nil {
		ret.Context = defaultContext
	}
	return ret
}

// File is an open netCDF-4 file. A File must not be used from more than
// one goroutine at a time.
type File struct {
	Path string

	mode      int
	fillMode  int
	ctx       *Context
	backend   store.Backend
	hf        store.File
	root      *Group
	groups    []*Group
	dims      map[int]*Dimension
	types     map[TypeID]*Type
	userTypes []*Type
	parallel  *Params

	// dimension ids as written in the file, before renumbering
	storedDimids map[int]*Dimension

	nextTypeID    TypeID
	nextDimID     int
	inDefine      bool
	redef         bool
	noWrite       bool
	creationOrder bool
	closed        bool

	provenance string
	superblock int
}

func newFile(path string, mode int, opts Options) *File {
	return &File{
		Path:         path,
		mode:         mode,
		ctx:          opts.Context,
		backend:      opts.Backend,
		dims:         map[int]*Dimension{},
		types:        map[TypeID]*Type{},
		nextTypeID:   FirstUserTypeID,
		storedDimids: map[int]*Dimension{},
	}
}

// SetLogLevel sets the logging level to the given level, and returns
// the old level. The lowest level is 0 (fatal errors only) and the highest
// level is 3 (errors, warnings and debug messages).
func SetLogLevel(level int) int {
	return int(logger.SetLogLevel(internal.LevelOf(level)))
}

func checkParallel(mode int, opts Options) int {
	assertError(mode&MPIIO == 0 || mode&MPIPosix == 0, ErrInvalid,
		"MPIIO and MPIPosix are mutually exclusive")
	parallel := mode&(MPIIO|MPIPosix) != 0
	assertError(!parallel || mode&Diskless == 0, ErrInvalid,
		"parallel files can't be diskless")
	if parallel {
		assertError(opts.Parallel != nil && opts.Parallel.Comm != nil, ErrInvalid,
			"parallel mode needs a communicator")
	}
	if mode&MPIPosix != 0 {
		mode = mode&^MPIPosix | MPIIO
	}
	return mode
}

func checkCreateMode(mode int, opts Options) int {
	assertError(mode&illegalCreateFlags == 0, ErrInvalid,
		fmt.Sprintf("illegal create mode 0x%x", mode))
	return checkParallel(mode, opts) | NetCDF4
}

func checkOpenMode(mode int, opts Options) int {
	assertError(mode&illegalOpenFlags == 0, ErrInvalid,
		fmt.Sprintf("illegal open mode 0x%x", mode))
	return checkParallel(mode, opts)
}

func (f *File) accessProps() store.FileAccessProps {
	parallel := f.mode&MPIIO != 0
	return store.FileAccessProps{
		Cache:                    f.ctx.cache,
		CloseDegreeSemi:          true,
		CollectiveMetadataReads:  parallel,
		CollectiveMetadataWrites: parallel,
		Diskless:                 f.mode&Diskless != 0,
	}
}

func (f *File) dupParams(opts Options) {
	if f.mode&MPIIO == 0 {
		return
	}
	p, err := opts.Parallel.dup()
	check("duplicate parallel parameters", err)
	f.parallel = p
}

// Create creates a new file. The file starts in define mode.
func Create(path string, mode int, opts *Options) (f *File, err error) {
	defer thrower.RecoverError(&err)
	o := opts.withDefaults()
	mode = checkCreateMode(mode, o)
	f = newFile(path, mode, o)
	ok := false
	defer func() {
		if !ok {
			f.release()
			f = nil
		}
	}()
	f.dupParams(o)
	if o.InitialSize > 0 {
		logger.Info("ignoring initial size", o.InitialSize)
	}
	if mode&NoClobber != 0 && mode&Diskless == 0 && o.Backend.Exists(path) {
		failError(ErrExist, path+" exists")
	}
	fcpl := store.FileCreateProps{
		Exclusive:      mode&NoClobber != 0,
		TrackLinkOrder: true,
		IndexLinkOrder: true,
		TrackAttrOrder: true,
		IndexAttrOrder: true,
	}
	hf, err := o.Backend.Create(path, fcpl, f.accessProps())
	if errors.Is(err, store.ErrExists) {
		failError(ErrExist, path+" exists")
	}
	check("create "+path, err)
	f.hf = hf
	f.superblock = hf.SuperblockVersion()
	f.creationOrder = true
	f.openRoot()
	f.inDefine = true
	f.writeProvenance()
	ok = true
	logger.Info("created", path)
	return f, nil
}

// Open opens an existing file and reads its metadata.
func Open(path string, mode int, opts *Options) (f *File, err error) {
	defer thrower.RecoverError(&err)
	o := opts.withDefaults()
	mode = checkOpenMode(mode, o)
	f = newFile(path, mode, o)
	f.noWrite = mode&Write == 0
	ok := false
	defer func() {
		if !ok {
			f.release()
			f = nil
		}
	}()
	f.dupParams(o)
	hf, err := o.Backend.Open(path, !f.noWrite, f.accessProps())
	check("open "+path, err)
	f.hf = hf
	f.superblock = hf.SuperblockVersion()
	f.openRoot()
	f.creationOrder, err = f.root.handle.CreationOrderTracked()
	check("get link order", err)

	f.readGroup(f.root)
	f.checkClassicModel()
	f.readProvenance()
	f.matchDimscales(f.root)
	ok = true
	logger.Info("opened", path)
	return f, nil
}

func (f *File) openRoot() {
	h, err := f.hf.Root()
	check("open root group", err)
	f.root = f.newGroup(nil, "/")
	f.root.handle = h
}

func (f *File) checkClassicModel() {
	has, err := f.root.handle.AttrExists(Nc3StrictAttr)
	check("look for "+Nc3StrictAttr, err)
	if has {
		f.mode |= ClassicModel
	}
}

func (f *File) checkOpen() {
	assertError(!f.closed, ErrBadID, "file is closed")
}

// Root returns the root group.
func (f *File) Root() *Group {
	return f.root
}

// Mode returns the mode flags the file is operating under.
func (f *File) Mode() int {
	return f.mode
}

// InDefineMode reports whether the file is in define mode.
func (f *File) InDefineMode() bool {
	return f.inDefine
}

// Provenance returns the _NCProperties text and the superblock version.
func (f *File) Provenance() (string, int) {
	return f.provenance, f.superblock
}

// Redef puts the file into define mode.
func (f *File) Redef() (err error) {
	defer thrower.RecoverError(&err)
	f.checkOpen()
	assertError(!f.inDefine, ErrInDefine, "already in define mode")
	assertError(!f.noWrite, ErrPerm, "file is read-only")
	f.inDefine = true
	f.redef = true
	return nil
}

// Enddef leaves define mode and writes the metadata.
func (f *File) Enddef() (err error) {
	defer thrower.RecoverError(&err)
	f.checkOpen()
	assertError(f.inDefine, ErrNotInDefine, "not in define mode")
	f.inDefine = false
	f.redef = false
	f.sync()
	return nil
}

// Sync writes the metadata and flushes the container. Files that are not
// classic model leave define mode implicitly.
func (f *File) Sync() (err error) {
	defer thrower.RecoverError(&err)
	f.checkOpen()
	f.sync()
	return nil
}

func (f *File) sync() {
	if f.inDefine {
		assertError(f.mode&ClassicModel == 0, ErrInDefine,
			"classic model files must leave define mode explicitly")
		f.inDefine = false
		f.redef = false
	}
	if !f.noWrite {
		f.writeMetadata()
	}
	check("flush", f.hf.Flush())
}

// Abort closes the file without writing. A file still in the define mode
// it was created in is deleted.
func (f *File) Abort() (err error) {
	defer thrower.RecoverError(&err)
	f.checkOpen()
	deleteFile := f.inDefine && !f.redef
	relErr := f.release()
	if deleteFile && f.mode&Diskless == 0 && f.backend.Exists(f.Path) {
		if err := f.backend.Remove(f.Path); err != nil {
			failError(ErrCantRemove, fmt.Sprint("remove ", f.Path, ": ", err))
		}
	}
	check("close", relErr)
	return nil
}

// Close leaves define mode, writes the metadata of writable files and
// releases everything the file holds.
func (f *File) Close() (err error) {
	defer thrower.RecoverError(&err)
	f.checkOpen()
	f.inDefine = false
	f.redef = false
	var syncErr error
	if !f.noWrite {
		syncErr = func() (err error) {
			defer thrower.RecoverError(&err)
			f.sync()
			return nil
		}()
	}
	relErr := f.release()
	thrower.ThrowIfError(syncErr)
	check("close", relErr)
	return nil
}

// release closes every handle the file holds, frees the parallel
// parameters and closes the container. It is safe on a half-built file.
func (f *File) release() error {
	var errs []error
	keep := func(err error) {
		if err != nil {
			errs = append(errs, err)
		}
	}
	for i := len(f.groups) - 1; i >= 0; i-- {
		g := f.groups[i]
		for _, v := range g.vars.Values() {
			if v.dataset != nil {
				keep(v.dataset.Close())
				v.dataset = nil
			}
		}
		for _, d := range g.dims.Values() {
			if d.scale != nil {
				keep(d.scale.Close())
				d.scale = nil
			}
		}
		for _, t := range g.types.Values() {
			if t.handle != nil {
				keep(t.handle.Close())
				t.handle = nil
			}
		}
		if g.handle != nil {
			keep(g.handle.Close())
			g.handle = nil
		}
	}
	if f.parallel != nil {
		keep(f.parallel.free())
		f.parallel = nil
	}
	if f.hf != nil {
		keep(f.hf.Close())
		f.hf = nil
	}
	f.closed = true
	return errors.Join(errs...)
}

// SetFill sets the fill mode and returns the old one.
func (f *File) SetFill(mode int) (old int, err error) {
	defer thrower.RecoverError(&err)
	f.checkOpen()
	assertError(!f.noWrite, ErrPerm, "file is read-only")
	assertError(mode == Fill || mode == NoFill, ErrInvalid, fmt.Sprint("bad fill mode ", mode))
	old = f.fillMode
	f.fillMode = mode
	return old, nil
}

// Inq returns the number of dimensions, variables and global attributes
// of the root group and the id of its first unlimited dimension, or -1.
func (f *File) Inq() (ndims, nvars, natts, unlimdimid int, err error) {
	return f.root.Inq()
}

// Inq is like File.Inq for group g.
func (g *Group) Inq() (ndims, nvars, natts, unlimdimid int, err error) {
	defer thrower.RecoverError(&err)
	g.file.checkOpen()
	g.file.ensureGroupAtts(g)
	unlimdimid = -1
	for _, d := range g.dims.Values() {
		if d.Unlimited {
			unlimdimid = d.ID
			break
		}
	}
	return g.dims.Len(), g.vars.Len(), g.atts.Len(), unlimdimid, nil
}

func (f *File) provenanceText() string {
	return fmt.Sprintf("version=%d,%s=%s", NCPropsVersion, LibraryName, LibraryVersion)
}

func (f *File) writeProvenance() {
	f.provenance = f.provenanceText()
	f.writeAtt(f.root.handle, &Attribute{Name: NCPropertiesAttr, Type: Char,
		Len: uint64(len(f.provenance)), Data: []byte(f.provenance)})
	if f.mode&ClassicModel != 0 {
		f.writeAtt(f.root.handle, &Attribute{Name: Nc3StrictAttr, Type: Int, Len: 1,
			Data: encodeInts([]int{1})})
	}
}

func (f *File) readProvenance() {
	has, err := f.root.handle.AttrExists(NCPropertiesAttr)
	check("look for "+NCPropertiesAttr, err)
	if !has {
		return
	}
	ha, err := f.root.handle.OpenAttr(NCPropertiesAttr)
	check("open "+NCPropertiesAttr, err)
	defer closeOnExit(NCPropertiesAttr, ha)
	att := &Attribute{Name: NCPropertiesAttr}
	thrower.ThrowIfError(f.readAtt(ha, att))
	switch {
	case att.Type == Char:
		f.provenance = string(att.Data)
	case len(att.Strings) > 0:
		f.provenance = att.Strings[0]
	}
}
