package scratch

import (
	"slices"

	"github.com/rs/zerolog"
)

// Resource is anything a Scope can delete.
type Resource interface {
	Path() string
	Delete() error
}

// OrphanFunc is called for every scratch path that could not be deleted.
type OrphanFunc func(path string, err error)

// Scope owns the scratch resources created during one operation and
// deletes them on Release or Close, whichever comes first.
//
// Typical use:
//
//	scope := scratch.NewScope(store, log, nil)
//	defer scope.Close()
//	f, err := scope.Create("buffer")
//
// Deletion failures are logged at warn level and passed to the OrphanFunc;
// they are never returned, because the operation's outcome is already
// decided by the time cleanup runs.
type Scope struct {
	store    *Store
	log      zerolog.Logger
	onOrphan OrphanFunc
	held     []Resource
}

// NewScope creates a scope over store. A nil log disables logging and a nil
// onOrphan is ignored.
func NewScope(store *Store, log *zerolog.Logger, onOrphan OrphanFunc) *Scope {
	sc := &Scope{store: store, log: zerolog.Nop(), onOrphan: onOrphan}
	if log != nil {
		sc.log = *log
	}
	return sc
}

// Create creates a record file owned by the scope.
func (sc *Scope) Create(kind string) (*File, error) {
	f, err := sc.store.Create(kind)
	if err != nil {
		return nil, err
	}
	sc.held = append(sc.held, f)
	sc.log.Debug().Str("path", f.Path()).Str("kind", kind).Msg("scratch file created")
	return f, nil
}

// Reserve reserves a non-record scratch path owned by the scope.
func (sc *Scope) Reserve(kind, ext string, sidecars ...string) (*Reservation, error) {
	r, err := sc.store.Reserve(kind, ext, sidecars...)
	if err != nil {
		return nil, err
	}
	sc.held = append(sc.held, r)
	sc.log.Debug().Str("path", r.Path()).Str("kind", kind).Msg("scratch path reserved")
	return r, nil
}

// Held returns the paths the scope still owns.
func (sc *Scope) Held() []string {
	paths := make([]string, len(sc.held))
	for i, r := range sc.held {
		paths[i] = r.Path()
	}
	return paths
}

// Release deletes one resource early. Resources not owned by the scope
// are ignored.
func (sc *Scope) Release(r Resource) {
	i := slices.Index(sc.held, r)
	if i < 0 {
		return
	}
	sc.held = slices.Delete(sc.held, i, i+1)
	sc.delete(r)
}

// Close deletes every resource still owned, newest first.
func (sc *Scope) Close() {
	for i := len(sc.held) - 1; i >= 0; i-- {
		sc.delete(sc.held[i])
	}
	sc.held = nil
}

func (sc *Scope) delete(r Resource) {
	err := r.Delete()
	if err == nil {
		sc.log.Debug().Str("path", r.Path()).Msg("scratch file deleted")
		return
	}
	sc.log.Warn().Err(err).Str("path", r.Path()).Msg("failed to delete scratch file")
	if sc.onOrphan != nil {
		sc.onOrphan(r.Path(), err)
	}
}
