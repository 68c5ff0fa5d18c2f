package nc4

import "sort"

// Reserved attribute flags
const (
	ReadOnlyFlag = 1 << iota // users may not write it
	DimScaleFlag             // bookkeeping of the dimension scale convention
	NameOnlyFlag             // hidden, never shown as a user attribute
)

// Reserved attribute names
const (
	NCPropertiesAttr      = "_NCProperties"
	IsNetcdf4Attr         = "_IsNetcdf4"
	SuperblockAttr        = "_SuperblockVersion"
	FormatAttr            = "_Format"
	Nc3StrictAttr         = "_nc3_strict"
	DimidAttr             = "_Netcdf4Dimid"
	CoordinatesAttr       = "_Netcdf4Coordinates"
	scaleClassAttr        = "CLASS"
	scaleNameAttr         = "NAME"
	scaleDimListAttr      = "DIMENSION_LIST"
	scaleReferenceListAtt = "REFERENCE_LIST"
)

// ReservedAtt is an entry of the reserved attribute table.
type ReservedAtt struct {
	Name  string
	Flags int
}

// reservedAtts must stay sorted by name (byte order).
var reservedAtts = []ReservedAtt{
	{scaleClassAttr, ReadOnlyFlag | DimScaleFlag},
	{scaleDimListAttr, ReadOnlyFlag | DimScaleFlag},
	{scaleNameAttr, ReadOnlyFlag | DimScaleFlag},
	{scaleReferenceListAtt, ReadOnlyFlag | DimScaleFlag},
	{FormatAttr, ReadOnlyFlag},
	{IsNetcdf4Attr, ReadOnlyFlag | NameOnlyFlag},
	{NCPropertiesAttr, ReadOnlyFlag | NameOnlyFlag},
	{CoordinatesAttr, ReadOnlyFlag | DimScaleFlag},
	{DimidAttr, ReadOnlyFlag | DimScaleFlag},
	{SuperblockAttr, ReadOnlyFlag | NameOnlyFlag},
	{Nc3StrictAttr, ReadOnlyFlag},
}

// FindReserved looks name up in the reserved attribute table.
func FindReserved(name string) (ReservedAtt, bool) {
	i := sort.Search(len(reservedAtts), func(i int) bool {
		return reservedAtts[i].Name >= name
	})
	if i < len(reservedAtts) && reservedAtts[i].Name == name {
		return reservedAtts[i], true
	}
	return ReservedAtt{}, false
}

// IsReserved reports whether name is a reserved attribute.
func IsReserved(name string) bool {
	_, has := FindReserved(name)
	return has
}
