// Package api is a read-only view of the metadata of a netCDF-4 file.
package api

type AttributeMap interface {
	// Ordered list of keys
	Keys() []string
	// Indexed lookup
	Get(key string) (val any, has bool)

	// GetType returns the CDL name of the attribute's type.
	GetType(key string) (string, bool)
}

// Variable describes a variable without its data.
type Variable struct {
	// Type is the base type in CDL format, not including dimensions.
	Type       string
	Dimensions []string
	// Shape is the current length of each dimension.
	Shape      []uint64
	Attributes AttributeMap
}

type Group interface {
	// Close closes the file the group belongs to. Other views of the same
	// file become unusable.
	Close()

	// Name is the full path of the group, "/" for the root.
	Name() string

	// Attributes returns the global attributes for this group.
	Attributes() (AttributeMap, error)

	// ListVariables lists the variables in this group.
	ListVariables() []string

	// GetVariable returns the named variable or sets the error if not found.
	GetVariable(name string) (*Variable, error)

	// ListSubgroups returns the names of the subgroups of this group
	ListSubgroups() []string

	// GetGroup gets the given group or returns an error if not found.
	// The group can start with "/" for absolute names, or relative.
	GetGroup(group string) (g Group, err error)

	// ListTypes returns the user-defined type names.
	ListTypes() []string

	// GetType gets the CDL description of the type and sets the bool to true if found.
	GetType(string) (string, bool)

	// ListDimensions lists the names of the dimensions in this group.
	ListDimensions() []string

	// GetDimension returns the size of the given dimension and sets
	// the bool to true if found.
	GetDimension(string) (uint64, bool)

	// IsUnlimited reports whether the named dimension can grow.
	IsUnlimited(string) bool
}
