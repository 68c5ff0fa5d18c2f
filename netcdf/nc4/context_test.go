package nc4

import (
	"errors"
	"testing"
)

func TestChunkCache(t *testing.T) {
	ctx := NewContext()
	size, nelems, preemption := ctx.ChunkCache()
	if size != ChunkCacheSize || nelems != ChunkCacheNElems || preemption != ChunkCachePreemption {
		t.Error("bad defaults", size, nelems, preemption)
	}
	if err := ctx.SetChunkCache(1024, 7, 1.5); !errors.Is(err, ErrInvalid) {
		t.Error("preemption above 1 should fail, got", err)
	}
	if err := ctx.SetChunkCache(1024, 7, -0.1); !errors.Is(err, ErrInvalid) {
		t.Error("negative preemption should fail, got", err)
	}
	must(t, ctx.SetChunkCache(1024, 7, 0.5))
	size, nelems, preemption = ctx.ChunkCache()
	if size != 1024 || nelems != 7 || preemption != 0.5 {
		t.Error("bad cache", size, nelems, preemption)
	}
}

func TestChunkCacheInts(t *testing.T) {
	ctx := NewContext()
	for _, bad := range [][3]int{{0, 1, 50}, {1, 0, 50}, {1, 1, -1}, {1, 1, 101}} {
		if err := ctx.SetChunkCacheInts(bad[0], bad[1], bad[2]); !errors.Is(err, ErrInvalid) {
			t.Error(bad, "should fail, got", err)
		}
	}
	must(t, ctx.SetChunkCacheInts(2048, 11, 30))
	if _, _, p := ctx.ChunkCache(); p != 0.3 {
		t.Error("bad preemption", p)
	}
	if size, nelems, p := ctx.ChunkCacheInts(); size != 2048 || nelems != 11 || p != 30 {
		t.Error("bad ints", size, nelems, p)
	}
}

func TestDefaultContext(t *testing.T) {
	size, nelems, preemption := GetChunkCache()
	defer SetChunkCache(size, nelems, preemption)
	must(t, SetChunkCache(4096, 3, 0.25))
	if s, n, p := DefaultContext().ChunkCache(); s != 4096 || n != 3 || p != 0.25 {
		t.Error("package functions should use the default context", s, n, p)
	}
	if _, _, p := GetChunkCacheInts(); p != 25 {
		t.Error("bad percentage", p)
	}
}

func TestVariableChunkCache(t *testing.T) {
	tf := newTestPath(t)
	f := tf.create(t, 0)
	d := mustID(t)(f.Root().DefDim("t", Unlimited))
	v := mustVar(t)(f.Root().DefVar("v", Int, []int{d}))
	if err := v.SetChunkCache(1, 1, 2); !errors.Is(err, ErrInvalid) {
		t.Error("bad preemption should fail, got", err)
	}
	must(t, v.SetChunkCache(8192, 5, 0.1))
	must(t, f.Enddef())
	if v.Cache.Size != 8192 {
		t.Error("explicit cache size should be kept", v.Cache)
	}
	must(t, v.SetChunkCache(16384, 5, 0.1))
	mustCloseFile(t, f)
}
