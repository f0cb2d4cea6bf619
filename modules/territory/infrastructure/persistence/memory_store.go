package persistence

import (
	"context"
	"fmt"
	"sync"
	"time"

	gerrors "github.com/go-faster/errors"

	"github.com/Olbrasoft/cr/modules/territory/domain/territory"
)

var errTxDone = gerrors.New("unit of work already committed or rolled back")

type memoryTables struct {
	regions        []territory.Region
	districts      []territory.District
	offices        []territory.Office
	municipalities []territory.Municipality
}

type slugKey struct {
	parentID int64
	slug     string
}

// memoryIndex mirrors the unique and foreign key constraints of the schema.
type memoryIndex struct {
	codes map[territory.Level]map[string]struct{}
	slugs map[territory.Level]map[slugKey]struct{}
	ids   map[territory.Level]map[int64]struct{}
}

func newMemoryIndex() memoryIndex {
	ix := memoryIndex{
		codes: make(map[territory.Level]map[string]struct{}),
		slugs: make(map[territory.Level]map[slugKey]struct{}),
		ids:   make(map[territory.Level]map[int64]struct{}),
	}
	for _, l := range territory.Levels() {
		ix.codes[l] = make(map[string]struct{})
		ix.slugs[l] = make(map[slugKey]struct{})
		ix.ids[l] = make(map[int64]struct{})
	}
	return ix
}

func (ix memoryIndex) add(l territory.Level, id int64, code string, sk slugKey) {
	ix.codes[l][code] = struct{}{}
	ix.slugs[l][sk] = struct{}{}
	ix.ids[l][id] = struct{}{}
}

func (ix memoryIndex) merge(other memoryIndex) {
	for _, l := range territory.Levels() {
		for k := range other.codes[l] {
			ix.codes[l][k] = struct{}{}
		}
		for k := range other.slugs[l] {
			ix.slugs[l][k] = struct{}{}
		}
		for k := range other.ids[l] {
			ix.ids[l][k] = struct{}{}
		}
	}
}

// MemoryStore keeps the hierarchy in process memory. It enforces the same
// constraints as the SQL schema and backs dry runs.
type MemoryStore struct {
	mu        sync.Mutex
	committed memoryTables
	index     memoryIndex
	// Sequences advance on rollback too, like SERIAL columns.
	seq map[territory.Level]int64
	now func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		index: newMemoryIndex(),
		seq:   make(map[territory.Level]int64),
		now:   time.Now,
	}
}

func (s *MemoryStore) Begin(ctx context.Context) (territory.UnitOfWork, error) {
	return &memoryUnitOfWork{store: s, index: newMemoryIndex()}, nil
}

func (s *MemoryStore) Regions() []territory.Region {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]territory.Region(nil), s.committed.regions...)
}

func (s *MemoryStore) Districts() []territory.District {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]territory.District(nil), s.committed.districts...)
}

func (s *MemoryStore) Offices() []territory.Office {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]territory.Office(nil), s.committed.offices...)
}

func (s *MemoryStore) Municipalities() []territory.Municipality {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]territory.Municipality(nil), s.committed.municipalities...)
}

type memoryUnitOfWork struct {
	store  *MemoryStore
	staged memoryTables
	index  memoryIndex
	done   bool
}

// reserve validates the constraints for a new row and allocates its id.
func (u *memoryUnitOfWork) reserve(l territory.Level, code string, sk slugKey, parentID int64) (int64, error) {
	if u.done {
		return 0, errTxDone
	}
	s := u.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.index.codes[l][code]; ok || hasKey(u.index.codes[l], code) {
		return 0, fmt.Errorf("%w: %s code %s", territory.ErrAlreadyExists, l, code)
	}
	if _, ok := s.index.slugs[l][sk]; ok || hasKey(u.index.slugs[l], sk) {
		return 0, fmt.Errorf("%w: %s slug %s", territory.ErrAlreadyExists, l, sk.slug)
	}
	if parent, ok := l.Parent(); ok {
		if _, ok := s.index.ids[parent][parentID]; !ok && !hasKey(u.index.ids[parent], parentID) {
			return 0, fmt.Errorf("%s %s: %s %d does not exist", l, code, parent, parentID)
		}
	}

	s.seq[l]++
	id := s.seq[l]
	u.index.add(l, id, code, sk)
	return id, nil
}

func (u *memoryUnitOfWork) InsertRegion(ctx context.Context, r territory.Region) (int64, error) {
	id, err := u.reserve(territory.LevelRegion, r.Code(), slugKey{slug: r.Slug()}, 0)
	if err != nil {
		return 0, err
	}
	u.staged.regions = append(u.staged.regions,
		territory.HydrateRegion(id, r.Name(), r.Slug(), r.Code(), r.NUTSCode(), u.store.now()))
	return id, nil
}

func (u *memoryUnitOfWork) InsertDistrict(ctx context.Context, d territory.District) (int64, error) {
	id, err := u.reserve(territory.LevelDistrict, d.Code(), slugKey{slug: d.Slug()}, d.RegionID())
	if err != nil {
		return 0, err
	}
	u.staged.districts = append(u.staged.districts,
		territory.HydrateDistrict(id, d.Name(), d.Slug(), d.Code(), d.RegionID(), u.store.now()))
	return id, nil
}

func (u *memoryUnitOfWork) InsertOffice(ctx context.Context, o territory.Office) (int64, error) {
	id, err := u.reserve(territory.LevelOffice, o.Code(), slugKey{slug: o.Slug()}, o.DistrictID())
	if err != nil {
		return 0, err
	}
	u.staged.offices = append(u.staged.offices,
		territory.HydrateOffice(id, o.Name(), o.Slug(), o.Code(), o.DistrictID(), u.store.now()))
	return id, nil
}

func (u *memoryUnitOfWork) InsertMunicipality(ctx context.Context, m territory.Municipality) (int64, error) {
	sk := slugKey{parentID: m.OfficeID(), slug: m.Slug()}
	id, err := u.reserve(territory.LevelMunicipality, m.Code(), sk, m.OfficeID())
	if err != nil {
		return 0, err
	}
	u.staged.municipalities = append(u.staged.municipalities,
		territory.HydrateMunicipality(id, m.Name(), m.Slug(), m.Code(), m.SubOfficeCode(), m.OfficeID(), u.store.now()))
	return id, nil
}

func (u *memoryUnitOfWork) Commit(ctx context.Context) error {
	if u.done {
		return errTxDone
	}
	s := u.store
	s.mu.Lock()
	defer s.mu.Unlock()

	s.committed.regions = append(s.committed.regions, u.staged.regions...)
	s.committed.districts = append(s.committed.districts, u.staged.districts...)
	s.committed.offices = append(s.committed.offices, u.staged.offices...)
	s.committed.municipalities = append(s.committed.municipalities, u.staged.municipalities...)
	s.index.merge(u.index)
	u.done = true
	return nil
}

func (u *memoryUnitOfWork) Rollback(ctx context.Context) error {
	if u.done {
		return nil
	}
	u.staged = memoryTables{}
	u.index = newMemoryIndex()
	u.done = true
	return nil
}

func hasKey[K comparable](m map[K]struct{}, k K) bool {
	_, ok := m[k]
	return ok
}
