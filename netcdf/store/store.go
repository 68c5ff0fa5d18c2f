package store

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound      = errors.New("object not found")
	ErrExists        = errors.New("object already exists")
	ErrClosed        = errors.New("handle already closed")
	ErrReadOnly      = errors.New("container opened read-only")
	ErrObjectsOpen   = errors.New("objects still open")
	ErrWrongShape    = errors.New("data does not match type and space")
	ErrNotScale      = errors.New("dataset is not a dimension scale")
	ErrBadContainer  = errors.New("not a container")
	ErrChecksum      = errors.New("container checksum mismatch")
	ErrUnknownCodec  = errors.New("unknown container codec")
	ErrInvalidParams = errors.New("invalid property list value")
)

// ObjectID identifies an object: a container number and an object number
// inside that container.
type ObjectID struct {
	FileNo uint64
	ObjNo  uint64
}

func (id ObjectID) IsZero() bool {
	return id == ObjectID{}
}

func (id ObjectID) String() string {
	return fmt.Sprintf("%x:%d", id.FileNo, id.ObjNo)
}

type ObjectType uint8

const (
	ObjGroup ObjectType = iota
	ObjDataset
	ObjNamedType
)

// IterOrder selects the index used when iterating links or attributes.
type IterOrder uint8

const (
	ByName IterOrder = iota
	ByCreationOrder
)

type LinkInfo struct {
	Name string
	Type ObjectType
}

// CacheConfig is a raw chunk cache setting.
type CacheConfig struct {
	Size       uint64
	NElems     uint64
	Preemption float64
}

type Layout uint8

const (
	LayoutCompact Layout = iota
	LayoutContiguous
	LayoutChunked
)

// Filter ids from the registered filter table.
const (
	FilterDeflate    = 1
	FilterShuffle    = 2
	FilterFletcher32 = 3
	FilterSZIP       = 4
)

// Filter is one step of a dataset filter pipeline.
type Filter struct {
	ID     int
	Flags  uint32
	Params []uint32
}

// FilterInfo is what a pipeline probe returns. NParams is the true number
// of parameters; Params holds at most as many as the caller asked for.
type FilterInfo struct {
	ID      int
	Flags   uint32
	NParams int
	Params  []uint32
}

type FillStatus uint8

const (
	FillUndefined FillStatus = iota
	FillDefault
	FillUserDefined
)

// DatasetSettings are the creation properties of a new dataset.
type DatasetSettings struct {
	Layout    Layout
	Chunk     []uint64
	Filters   []Filter
	FillValue []byte // nil: library default
	NoFill    bool
}

// FileCreateProps configure a new container.
type FileCreateProps struct {
	Exclusive      bool
	TrackLinkOrder bool
	IndexLinkOrder bool
	TrackAttrOrder bool
	IndexAttrOrder bool
}

// FileAccessProps configure how a container is opened.
type FileAccessProps struct {
	Cache                    CacheConfig
	CloseDegreeSemi          bool
	CollectiveMetadataReads  bool
	CollectiveMetadataWrites bool
	Diskless                 bool
}

// Backend creates, opens and removes containers.
type Backend interface {
	Create(path string, fcpl FileCreateProps, fapl FileAccessProps) (File, error)
	Open(path string, writable bool, fapl FileAccessProps) (File, error)
	Exists(path string) bool
	Remove(path string) error
}

// File is an open container.
type File interface {
	Root() (Group, error)
	SuperblockVersion() int
	Flush() error
	// OpenObjects counts handles that are still open.
	OpenObjects() int
	// Close fails with ErrObjectsOpen while handles remain open.
	Close() error
}

// Object is a reference-counted handle. Each IncRef must be balanced by a
// Close.
type Object interface {
	ID() ObjectID
	IncRef() error
	Close() error
}

// AttrLocation is anything that carries attributes.
type AttrLocation interface {
	NumAttrs() (int, error)
	AttrExists(name string) (bool, error)
	OpenAttr(name string) (Attribute, error)
	OpenAttrByIndex(idx int, order IterOrder) (Attribute, error)
	CreateAttr(name string, dt Datatype, space Dataspace) (Attribute, error)
	DeleteAttr(name string) error
}

type Group interface {
	Object
	AttrLocation
	// CreationOrderTracked reports whether links are indexed by creation order.
	CreationOrderTracked() (bool, error)
	IterateLinks(order IterOrder, fn func(LinkInfo) error) error
	OpenGroup(name string) (Group, error)
	OpenDataset(name string) (Dataset, error)
	OpenNamedType(name string) (NamedType, error)
	CreateGroup(name string) (Group, error)
	CreateDataset(name string, dt Datatype, space Dataspace, settings DatasetSettings) (Dataset, error)
	CommitType(name string, dt Datatype) (NamedType, error)
}

type Dataset interface {
	Object
	AttrLocation
	Datatype() (Datatype, error)
	Dataspace() (Dataspace, error)
	CreateProps() (DatasetCreateProps, error)
	AccessProps() (DatasetAccessProps, error)
	SetChunkCache(cfg CacheConfig) error
	SetExtent(dims []uint64) error

	IsScale() (bool, error)
	ScaleName() (string, error)
	SetScale(name string) error
	AttachScale(scale Dataset, axis int) error
	NumScales(axis int) (int, error)
	// IterateScales visits the scales attached to axis. The scale handle is
	// closed when fn returns.
	IterateScales(axis int, fn func(scale Dataset) error) error
}

type NamedType interface {
	Object
	Datatype() (Datatype, error)
}

// Attribute data is read in one of three shapes: raw fixed-size records,
// variable-length strings, or variable-length sequences.
type Attribute interface {
	Name() string
	Datatype() (Datatype, error)
	Dataspace() (Dataspace, error)
	// Read copies the raw records into buf converted to mem's byte order.
	Read(mem Datatype, buf []byte) error
	ReadStrings() ([]string, error)
	ReadVlen() ([][]byte, error)
	Write(raw []byte) error
	WriteStrings(s []string) error
	WriteVlen(v [][]byte) error
	Close() error
}

// DatasetCreateProps is an open creation property list.
type DatasetCreateProps interface {
	Layout() Layout
	Chunk() []uint64
	NumFilters() int
	Filter(idx int, maxParams int) (FilterInfo, error)
	FilterByID(id int, maxParams int) (FilterInfo, error)
	FillValueStatus() FillStatus
	FillValue() ([]byte, error)
	Close() error
}

// DatasetAccessProps is an open access property list.
type DatasetAccessProps interface {
	ChunkCache() CacheConfig
	Close() error
}
