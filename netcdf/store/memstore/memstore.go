// Package memstore is an in-process implementation of the object store.
// A container lives in memory while open and is persisted as a single
// checksummed, compressed snapshot file on flush and close.
package memstore

import (
	"encoding/binary"
	"os"
	"sort"

	"github.com/batchatco/go-nc4meta/internal"
	"github.com/batchatco/go-nc4meta/netcdf/store"
	"github.com/google/uuid"
)

var (
	logger = internal.NewLogger("memstore")
)

const superblockVersion = 2

// Backend creates and opens memstore containers.
type Backend struct {
	// Codec compresses snapshots written by this backend.
	Codec Codec
}

// New returns a backend that writes zstd-compressed snapshots.
func New() *Backend {
	return &Backend{Codec: CodecZstd}
}

type attr struct {
	Name    string
	Type    store.Datatype
	Space   store.Dataspace
	Raw     []byte
	Strings []string
	Vlen    [][]byte
}

type link struct {
	Name string
	Obj  uint64
}

type object struct {
	Num  uint64
	Kind store.ObjectType

	// groups
	Links      []link
	TrackOrder bool

	// datasets and named types
	Type       store.Datatype
	Space      store.Dataspace
	Settings   store.DatasetSettings
	FillStatus store.FillStatus
	// Cache is access state: it starts from the access properties of
	// the file the dataset was opened through.
	Cache      store.CacheConfig `cbor:"-"`
	cacheSet   bool

	Attrs          []*attr
	TrackAttrOrder bool
}

// container is the persisted state.
type container struct {
	ID         string
	Superblock int
	Root       uint64
	NextObj    uint64
	Objects    map[uint64]*object
	Props      store.FileCreateProps
}

func newContainer(fcpl store.FileCreateProps) *container {
	c := &container{
		ID:         uuid.NewString(),
		Superblock: superblockVersion,
		NextObj:    1,
		Objects:    map[uint64]*object{},
		Props:      fcpl,
	}
	root := c.newObject(store.ObjGroup)
	c.Root = root.Num
	return c
}

func (c *container) newObject(kind store.ObjectType) *object {
	o := &object{
		Num:            c.NextObj,
		Kind:           kind,
		TrackOrder:     c.Props.TrackLinkOrder,
		TrackAttrOrder: c.Props.TrackAttrOrder,
	}
	c.NextObj++
	c.Objects[o.Num] = o
	return o
}

// fileNo derives the container number from its identity.
func (c *container) fileNo() uint64 {
	id, err := uuid.Parse(c.ID)
	if err != nil {
		return 0
	}
	return binary.LittleEndian.Uint64(id[:8])
}

// Stats counts calls made against an open container.
type Stats struct {
	LinkIterations int
	AttrOpens      int
	AttrReads      int
	DatasetOpens   int
}

// File is an open container.
type File struct {
	b        *Backend
	c        *container
	path     string
	writable bool
	fapl     store.FileAccessProps
	fileNo   uint64
	open     int
	closed   bool
	stats    Stats
}

var _ store.File = (*File)(nil)

func (b *Backend) Create(path string, fcpl store.FileCreateProps, fapl store.FileAccessProps) (store.File, error) {
	if fcpl.Exclusive && !fapl.Diskless && b.Exists(path) {
		return nil, store.ErrExists
	}
	c := newContainer(fcpl)
	f := b.newFile(c, path, true, fapl)
	if !fapl.Diskless {
		if err := f.Flush(); err != nil {
			return nil, err
		}
	}
	logger.Info("created container", path, c.ID)
	return f, nil
}

func (b *Backend) Open(path string, writable bool, fapl store.FileAccessProps) (store.File, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c, err := decodeSnapshot(raw)
	if err != nil {
		return nil, err
	}
	return b.newFile(c, path, writable, fapl), nil
}

func (b *Backend) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func (b *Backend) Remove(path string) error {
	return os.Remove(path)
}

func (b *Backend) newFile(c *container, path string, writable bool, fapl store.FileAccessProps) *File {
	return &File{b: b, c: c, path: path, writable: writable, fapl: fapl, fileNo: c.fileNo()}
}

func (f *File) Root() (store.Group, error) {
	if f.closed {
		return nil, store.ErrClosed
	}
	return f.openGroup(f.c.Objects[f.c.Root]), nil
}

func (f *File) SuperblockVersion() int {
	return f.c.Superblock
}

// Flush writes the snapshot unless the container is diskless or read-only.
func (f *File) Flush() error {
	if f.closed {
		return store.ErrClosed
	}
	if !f.writable || f.fapl.Diskless {
		return nil
	}
	raw, err := encodeSnapshot(f.c, f.b.Codec)
	if err != nil {
		return err
	}
	return os.WriteFile(f.path, raw, 0o644)
}

func (f *File) OpenObjects() int {
	return f.open
}

func (f *File) Close() error {
	if f.closed {
		return store.ErrClosed
	}
	if f.open != 0 {
		logger.Warn("close with", f.open, "objects open")
		return store.ErrObjectsOpen
	}
	err := f.Flush()
	f.closed = true
	return err
}

// Stats returns the call counters of this container.
func (f *File) Stats() Stats {
	return f.stats
}

// ResetStats zeroes the call counters.
func (f *File) ResetStats() {
	f.stats = Stats{}
}

// AccessProps returns the access properties the container was opened with.
func (f *File) AccessProps() store.FileAccessProps {
	return f.fapl
}

// ContainerID is the identity stamped into the container at creation.
func (f *File) ContainerID() string {
	return f.c.ID
}

func (f *File) lookup(num uint64) (*object, error) {
	o, has := f.c.Objects[num]
	if !has {
		return nil, store.ErrNotFound
	}
	return o, nil
}

func (o *object) findLink(name string) (int, bool) {
	for i, l := range o.Links {
		if l.Name == name {
			return i, true
		}
	}
	return -1, false
}

func (o *object) sortedLinks(order store.IterOrder) []link {
	links := append([]link{}, o.Links...)
	if order == store.ByName {
		sort.Slice(links, func(i, j int) bool { return links[i].Name < links[j].Name })
	}
	return links
}
