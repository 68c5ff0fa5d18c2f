package nc4

import "errors"

// Communicator is a process group handle for cooperating-process mode.
type Communicator interface {
	Dup() (Communicator, error)
	Free() error
}

// Info carries hints that go with a Communicator.
type Info interface {
	Dup() (Info, error)
	Free() error
}

// Params are the parallel parameters given to Create or Open. The file
// keeps its own duplicates and frees them when it closes.
type Params struct {
	Comm Communicator
	Info Info
}

func (p *Params) dup() (*Params, error) {
	comm, err := p.Comm.Dup()
	if err != nil {
		return nil, err
	}
	ret := &Params{Comm: comm}
	if p.Info != nil {
		ret.Info, err = p.Info.Dup()
		if err != nil {
			return nil, errors.Join(err, comm.Free())
		}
	}
	return ret, nil
}

func (p *Params) free() error {
	var errs []error
	if p.Comm != nil {
		errs = append(errs, p.Comm.Free())
	}
	if p.Info != nil {
		errs = append(errs, p.Info.Free())
	}
	p.Comm, p.Info = nil, nil
	return errors.Join(errs...)
}
