package nc4

import (
	"math"
	"sync"

	"github.com/batchatco/go-nc4meta/netcdf/store"
)

// Context holds the tuning state shared by the files opened through it:
// the default chunk cache and the native atomic type table. Settings only
// affect files created or opened after they change. A Context is not
// synchronized; configure it before files are used concurrently.
type Context struct {
	cache     store.CacheConfig
	sizeLimit uint64

	nativeOnce sync.Once
	natives    []nativeType
}

type nativeType struct {
	id TypeID
	dt store.Datatype
}

var defaultContext = NewContext()

// NewContext returns a context with the library defaults.
func NewContext() *Context {
	return &Context{
		cache: store.CacheConfig{
			Size:       ChunkCacheSize,
			NElems:     ChunkCacheNElems,
			Preemption: ChunkCachePreemption,
		},
		sizeLimit: uint64(math.MaxUint),
	}
}

// DefaultContext is the context used when none is given.
func DefaultContext() *Context {
	return defaultContext
}

// nativeTypes returns the platform-native numeric types in the order they
// are tried when resolving a storage type. The table is built once.
func (c *Context) nativeTypes() []nativeType {
	c.nativeOnce.Do(func() {
		for _, id := range []TypeID{Byte, Short, Int, Float, Double, UByte, UShort, UInt, Int64, UInt64} {
			c.natives = append(c.natives, nativeType{id, storeType(id, store.NativeOrder)})
		}
	})
	return c.natives
}

// SetSizeLimit sets the largest dimension length representable on this
// platform. Longer dimensions are clamped and flagged as too long.
func (c *Context) SetSizeLimit(limit uint64) {
	c.sizeLimit = limit
}

func (c *Context) SetChunkCache(size, nelems uint64, preemption float64) error {
	if preemption < 0 || preemption > 1 {
		logger.Error("chunk cache preemption out of range", preemption)
		return ErrInvalid
	}
	c.cache = store.CacheConfig{Size: size, NElems: nelems, Preemption: preemption}
	return nil
}

func (c *Context) ChunkCache() (size, nelems uint64, preemption float64) {
	return c.cache.Size, c.cache.NElems, c.cache.Preemption
}

// SetChunkCacheInts takes the preemption as a percentage.
func (c *Context) SetChunkCacheInts(size, nelems, preemption int) error {
	if size <= 0 || nelems <= 0 || preemption < 0 || preemption > 100 {
		return ErrInvalid
	}
	c.cache = store.CacheConfig{Size: uint64(size), NElems: uint64(nelems),
		Preemption: float64(preemption) / 100}
	return nil
}

func (c *Context) ChunkCacheInts() (size, nelems, preemption int) {
	return int(c.cache.Size), int(c.cache.NElems), int(math.Round(c.cache.Preemption * 100))
}

// SetChunkCache sets the default chunk cache of the default context.
func SetChunkCache(size, nelems uint64, preemption float64) error {
	return defaultContext.SetChunkCache(size, nelems, preemption)
}

// GetChunkCache returns the default chunk cache of the default context.
func GetChunkCache() (size, nelems uint64, preemption float64) {
	return defaultContext.ChunkCache()
}

func SetChunkCacheInts(size, nelems, preemption int) error {
	return defaultContext.SetChunkCacheInts(size, nelems, preemption)
}

func GetChunkCacheInts() (size, nelems, preemption int) {
	return defaultContext.ChunkCacheInts()
}
