package nc4

import "github.com/batchatco/go-nc4meta/internal"

// Mode flags for Create and Open.
const (
	NoWrite      = 0x0000
	Write        = 0x0001
	NoClobber    = 0x0004
	Diskless     = 0x0008
	MMap         = 0x0010
	CDF5         = 0x0020
	ClassicModel = 0x0100
	Offset64Bit  = 0x0200
	Share        = 0x0800
	NetCDF4      = 0x1000
	MPIIO        = 0x2000
	MPIPosix     = 0x4000
	InMemory     = 0x8000
)

const (
	illegalOpenFlags   = MMap | Offset64Bit
	illegalCreateFlags = NoWrite | MMap | Offset64Bit | CDF5
)

// Fill modes
const (
	Fill   = 0
	NoFill = 0x100
)

// Limits
const (
	MaxName         = internal.MaxNameLen
	MaxVarDims      = 1024
	MaxDeflateLevel = 9

	// Unlimited is the length passed to DefDim for a growable dimension.
	Unlimited = 0
)

// Chunk cache defaults
const (
	ChunkCacheSize        = 4194304
	ChunkCacheNElems      = 1009
	ChunkCachePreemption  = 0.75
	DefaultChunksInCache  = 10
	MaxDefaultCacheSize   = 67108864
	DefaultChunkSizeBytes = 4194304
)

// Naming conventions in the stored object graph.
const (
	// dimWithoutVariable prefixes the scale name of a dimension that has
	// no coordinate variable.
	dimWithoutVariable = "This is a netCDF dimension but not a netCDF variable."

	// nonCoordPrefix is prepended to a variable that shares a dimension's
	// name without being its coordinate variable.
	nonCoordPrefix = "_nc4_non_coord_"

	phonyDimPrefix = "phony_dim_"
)

// Provenance written to _NCProperties.
const (
	NCPropsVersion = 2
	LibraryName    = "nc4meta"
	LibraryVersion = "1.0.0"
)
