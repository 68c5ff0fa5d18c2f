package memstore

import (
	"github.com/batchatco/go-nc4meta/netcdf/store"
)

type datasetHandle struct {
	*handle
}

var _ store.Dataset = datasetHandle{}

func (f *File) openDataset(o *object) datasetHandle {
	if !o.cacheSet {
		o.Cache = f.fapl.Cache
		o.cacheSet = true
	}
	return datasetHandle{f.newHandle(o)}
}

func (d datasetHandle) Datatype() (store.Datatype, error) {
	if err := d.check(false); err != nil {
		return store.Datatype{}, err
	}
	return d.o.Type, nil
}

func (d datasetHandle) Dataspace() (store.Dataspace, error) {
	if err := d.check(false); err != nil {
		return store.Dataspace{}, err
	}
	sp := d.o.Space
	sp.Dims = append([]uint64(nil), sp.Dims...)
	sp.MaxDims = append([]uint64(nil), sp.MaxDims...)
	return sp, nil
}

func (d datasetHandle) SetExtent(dims []uint64) error {
	if err := d.check(true); err != nil {
		return err
	}
	sp := d.o.Space
	if len(dims) != sp.Rank() {
		return store.ErrWrongShape
	}
	for i := range dims {
		if dims[i] > sp.MaxDims[i] {
			return store.ErrWrongShape
		}
	}
	d.o.Space.Dims = append([]uint64{}, dims...)
	return nil
}

func (d datasetHandle) SetChunkCache(cfg store.CacheConfig) error {
	if err := d.check(false); err != nil {
		return err
	}
	if cfg.Preemption < 0 || cfg.Preemption > 1 {
		return store.ErrInvalidParams
	}
	d.o.Cache = cfg
	d.o.cacheSet = true
	return nil
}

func (d datasetHandle) CreateProps() (store.DatasetCreateProps, error) {
	if err := d.check(false); err != nil {
		return nil, err
	}
	d.f.open++
	return &createProps{f: d.f, o: d.o}, nil
}

func (d datasetHandle) AccessProps() (store.DatasetAccessProps, error) {
	if err := d.check(false); err != nil {
		return nil, err
	}
	d.f.open++
	return &accessProps{f: d.f, cache: d.o.Cache}, nil
}

// Property lists

type createProps struct {
	f      *File
	o      *object
	closed bool
}

func (p *createProps) Layout() store.Layout {
	return p.o.Settings.Layout
}

func (p *createProps) Chunk() []uint64 {
	return append([]uint64(nil), p.o.Settings.Chunk...)
}

func (p *createProps) NumFilters() int {
	return len(p.o.Settings.Filters)
}

func filterInfo(flt store.Filter, maxParams int) store.FilterInfo {
	n := len(flt.Params)
	if maxParams < n {
		n = maxParams
	}
	return store.FilterInfo{
		ID:      flt.ID,
		Flags:   flt.Flags,
		NParams: len(flt.Params),
		Params:  append([]uint32{}, flt.Params[:n]...),
	}
}

func (p *createProps) Filter(idx int, maxParams int) (store.FilterInfo, error) {
	if idx < 0 || idx >= len(p.o.Settings.Filters) {
		return store.FilterInfo{}, store.ErrNotFound
	}
	return filterInfo(p.o.Settings.Filters[idx], maxParams), nil
}

func (p *createProps) FilterByID(id int, maxParams int) (store.FilterInfo, error) {
	for _, flt := range p.o.Settings.Filters {
		if flt.ID == id {
			return filterInfo(flt, maxParams), nil
		}
	}
	return store.FilterInfo{}, store.ErrNotFound
}

func (p *createProps) FillValueStatus() store.FillStatus {
	return p.o.FillStatus
}

func (p *createProps) FillValue() ([]byte, error) {
	if p.o.FillStatus != store.FillUserDefined {
		return nil, store.ErrNotFound
	}
	return append([]byte{}, p.o.Settings.FillValue...), nil
}

func (p *createProps) Close() error {
	if p.closed {
		return store.ErrClosed
	}
	p.closed = true
	p.f.open--
	return nil
}

type accessProps struct {
	f      *File
	cache  store.CacheConfig
	closed bool
}

func (p *accessProps) ChunkCache() store.CacheConfig {
	return p.cache
}

func (p *accessProps) Close() error {
	if p.closed {
		return store.ErrClosed
	}
	p.closed = true
	p.f.open--
	return nil
}

// Attribute handles

type attrHandle struct {
	f      *File
	a      *attr
	closed bool
}

var _ store.Attribute = (*attrHandle)(nil)

func (f *File) newAttrHandle(a *attr) *attrHandle {
	f.open++
	return &attrHandle{f: f, a: a}
}

func (h *attrHandle) check(write bool) error {
	if h.closed {
		return store.ErrClosed
	}
	if write && !h.f.writable {
		return store.ErrReadOnly
	}
	return nil
}

func (h *attrHandle) Name() string {
	return h.a.Name
}

func (h *attrHandle) Datatype() (store.Datatype, error) {
	if err := h.check(false); err != nil {
		return store.Datatype{}, err
	}
	return h.a.Type, nil
}

func (h *attrHandle) Dataspace() (store.Dataspace, error) {
	if err := h.check(false); err != nil {
		return store.Dataspace{}, err
	}
	return h.a.Space, nil
}

func (h *attrHandle) Read(mem store.Datatype, buf []byte) error {
	if err := h.check(false); err != nil {
		return err
	}
	h.f.stats.AttrReads++
	if len(buf) != len(h.a.Raw) || mem.Size != h.a.Type.Size {
		return store.ErrWrongShape
	}
	copy(buf, h.a.Raw)
	store.Convert(&h.a.Type, &mem, buf)
	return nil
}

func (h *attrHandle) ReadStrings() ([]string, error) {
	if err := h.check(false); err != nil {
		return nil, err
	}
	h.f.stats.AttrReads++
	return append([]string{}, h.a.Strings...), nil
}

func (h *attrHandle) ReadVlen() ([][]byte, error) {
	if err := h.check(false); err != nil {
		return nil, err
	}
	h.f.stats.AttrReads++
	ret := make([][]byte, len(h.a.Vlen))
	for i := range h.a.Vlen {
		ret[i] = append([]byte{}, h.a.Vlen[i]...)
	}
	return ret, nil
}

func (h *attrHandle) Write(raw []byte) error {
	if err := h.check(true); err != nil {
		return err
	}
	if uint64(len(raw)) != h.a.Space.NumPoints()*h.a.Type.Size {
		return store.ErrWrongShape
	}
	h.a.Raw = append([]byte{}, raw...)
	return nil
}

func (h *attrHandle) WriteStrings(s []string) error {
	if err := h.check(true); err != nil {
		return err
	}
	if uint64(len(s)) != h.a.Space.NumPoints() {
		return store.ErrWrongShape
	}
	h.a.Strings = append([]string{}, s...)
	return nil
}

func (h *attrHandle) WriteVlen(v [][]byte) error {
	if err := h.check(true); err != nil {
		return err
	}
	if uint64(len(v)) != h.a.Space.NumPoints() {
		return store.ErrWrongShape
	}
	h.a.Vlen = make([][]byte, len(v))
	for i := range v {
		h.a.Vlen[i] = append([]byte{}, v[i]...)
	}
	return nil
}

func (h *attrHandle) Close() error {
	if h.closed {
		return store.ErrClosed
	}
	h.closed = true
	h.f.open--
	return nil
}
