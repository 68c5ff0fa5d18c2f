package store

import "math"

type SpaceClass uint8

const (
	SpaceScalar SpaceClass = iota
	SpaceSimple
	SpaceNull
)

// Unlimited is the maximum extent of a growable axis.
const Unlimited = math.MaxUint64

// Dataspace is the shape of a dataset or attribute.
type Dataspace struct {
	Class   SpaceClass
	Dims    []uint64
	MaxDims []uint64
}

func Scalar() Dataspace {
	return Dataspace{Class: SpaceScalar}
}

func Null() Dataspace {
	return Dataspace{Class: SpaceNull}
}

// Simple returns a fixed-size space. A nil maxDims means maxDims == dims.
func Simple(dims []uint64, maxDims []uint64) Dataspace {
	if maxDims == nil {
		maxDims = append([]uint64{}, dims...)
	}
	return Dataspace{Class: SpaceSimple, Dims: dims, MaxDims: maxDims}
}

// Rank is zero for scalar and null spaces.
func (s Dataspace) Rank() int {
	if s.Class != SpaceSimple {
		return 0
	}
	return len(s.Dims)
}

func (s Dataspace) NumPoints() uint64 {
	switch s.Class {
	case SpaceNull:
		return 0
	case SpaceScalar:
		return 1
	}
	n := uint64(1)
	for _, d := range s.Dims {
		n *= d
	}
	return n
}
