package main

import (
	"fmt"
	"io"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/batchatco/go-nc4meta/netcdf/api"
)

// datasetName is the file name without directory or extension.
func datasetName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

type printer struct {
	w     io.Writer
	attrs bool
	err   error
}

func (p *printer) printf(depth int, format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, strings.Repeat("\t", depth)+format+"\n", args...)
}

func printHeader(w io.Writer, name string, root api.Group, attrs bool) error {
	p := &printer{w: w, attrs: attrs}
	p.printf(0, "netcdf %s {", name)
	if err := p.group(root, 0); err != nil {
		return err
	}
	p.printf(0, "}")
	return p.err
}

func (p *printer) group(g api.Group, depth int) error {
	if types := g.ListTypes(); len(types) > 0 {
		p.printf(depth, "types:")
		for _, name := range types {
			decl, _ := g.GetType(name)
			p.printf(depth+1, "%s ;", strings.ReplaceAll(decl, "\n", "\n"+strings.Repeat("\t", depth+1)))
		}
	}
	if dims := g.ListDimensions(); len(dims) > 0 {
		p.printf(depth, "dimensions:")
		for _, name := range dims {
			n, _ := g.GetDimension(name)
			if g.IsUnlimited(name) {
				p.printf(depth+1, "%s = UNLIMITED ; // (%d currently)", name, n)
			} else {
				p.printf(depth+1, "%s = %d ;", name, n)
			}
		}
	}
	if vars := g.ListVariables(); len(vars) > 0 {
		p.printf(depth, "variables:")
		for _, name := range vars {
			v, err := g.GetVariable(name)
			if err != nil {
				return err
			}
			shape := ""
			if len(v.Dimensions) > 0 {
				shape = "(" + strings.Join(v.Dimensions, ", ") + ")"
			}
			p.printf(depth+1, "%s %s%s ;", v.Type, name, shape)
			if p.attrs {
				p.attributes(v.Attributes, name, depth+2)
			}
		}
	}
	if p.attrs {
		atts, err := g.Attributes()
		if err != nil {
			return err
		}
		if len(atts.Keys()) > 0 {
			p.printf(0, "")
			p.printf(depth, "// global attributes:")
			p.attributes(atts, "", depth+2)
		}
	}
	for _, name := range g.ListSubgroups() {
		sub, err := g.GetGroup(name)
		if err != nil {
			return err
		}
		p.printf(0, "")
		p.printf(depth, "group: %s {", name)
		if err := p.group(sub, depth+1); err != nil {
			return err
		}
		p.printf(depth, "} // group %s", name)
	}
	return p.err
}

func (p *printer) attributes(atts api.AttributeMap, owner string, depth int) {
	for _, key := range atts.Keys() {
		val, _ := atts.Get(key)
		typ, _ := atts.GetType(key)
		switch val := val.(type) {
		case string:
			p.printf(depth, "%s:%s = %q ;", owner, key, val)
		default:
			p.printf(depth, "%s %s:%s = %s ;", typ, owner, key, formatValues(val))
		}
	}
}

// formatValues joins the elements of a slice with commas.
func formatValues(val any) string {
	rv := reflect.ValueOf(val)
	if rv.Kind() != reflect.Slice {
		return fmt.Sprint(val)
	}
	parts := make([]string, rv.Len())
	for i := range parts {
		e := rv.Index(i).Interface()
		switch e := e.(type) {
		case string:
			parts[i] = fmt.Sprintf("%q", e)
		case []byte:
			parts[i] = fmt.Sprintf("0X%X", e)
		default:
			parts[i] = fmt.Sprint(e)
		}
	}
	return strings.Join(parts, ", ")
}
