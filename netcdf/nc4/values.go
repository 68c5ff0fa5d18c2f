package nc4

import (
	"bytes"
	"math"

	"github.com/batchatco/go-nc4meta/netcdf/util"
)

// Values in memory are kept in host byte order.

func encodeInt(v int64, size uint64) []byte {
	var buf bytes.Buffer
	switch size {
	case 1:
		util.MustWrite(&buf, util.NativeByteOrder, int8(v))
	case 2:
		util.MustWrite(&buf, util.NativeByteOrder, int16(v))
	case 4:
		util.MustWrite(&buf, util.NativeByteOrder, int32(v))
	default:
		util.MustWrite(&buf, util.NativeByteOrder, v)
	}
	return buf.Bytes()
}

func decodeInt(b []byte, size uint64, signed bool) int64 {
	r := bytes.NewReader(b)
	switch size {
	case 1:
		if signed {
			var v int8
			util.MustRead(r, util.NativeByteOrder, &v)
			return int64(v)
		}
		return int64(util.MustRead8(r))
	case 2:
		if signed {
			var v int16
			util.MustRead(r, util.NativeByteOrder, &v)
			return int64(v)
		}
		var v uint16
		util.MustRead(r, util.NativeByteOrder, &v)
		return int64(v)
	case 4:
		if signed {
			var v int32
			util.MustRead(r, util.NativeByteOrder, &v)
			return int64(v)
		}
		var v uint32
		util.MustRead(r, util.NativeByteOrder, &v)
		return int64(v)
	}
	var v int64
	util.MustRead(r, util.NativeByteOrder, &v)
	return v
}

func encodeInts(vals []int) []byte {
	var buf bytes.Buffer
	for _, v := range vals {
		util.MustWrite(&buf, util.NativeByteOrder, int32(v))
	}
	return buf.Bytes()
}

func decodeInts(b []byte) []int {
	ret := make([]int, len(b)/4)
	r := bytes.NewReader(b)
	for i := range ret {
		var v int32
		util.MustRead(r, util.NativeByteOrder, &v)
		ret[i] = int(v)
	}
	return ret
}

// defaultFill returns the default fill value of an atomic type.
func defaultFill(id TypeID) []byte {
	var buf bytes.Buffer
	switch id {
	case Byte:
		util.MustWrite(&buf, util.NativeByteOrder, int8(-127))
	case Char:
		util.MustWriteByte(&buf, 0)
	case Short:
		util.MustWrite(&buf, util.NativeByteOrder, int16(-32767))
	case Int:
		util.MustWrite(&buf, util.NativeByteOrder, int32(-2147483647))
	case Float:
		util.MustWrite(&buf, util.NativeByteOrder, float32(9.9692099683868690e+36))
	case Double:
		util.MustWrite(&buf, util.NativeByteOrder, 9.9692099683868690e+36)
	case UByte:
		util.MustWriteByte(&buf, math.MaxUint8)
	case UShort:
		util.MustWrite(&buf, util.NativeByteOrder, uint16(math.MaxUint16))
	case UInt:
		util.MustWrite(&buf, util.NativeByteOrder, uint32(math.MaxUint32))
	case Int64:
		util.MustWrite(&buf, util.NativeByteOrder, int64(-9223372036854775806))
	case UInt64:
		util.MustWrite(&buf, util.NativeByteOrder, uint64(18446744073709551614))
	case String:
		return []byte{}
	default:
		return nil
	}
	return buf.Bytes()
}
