package repository

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore объединённое in-memory хранилище dev-сервера
type MemoryStore struct {
	mu             sync.RWMutex
	medicinesByID  map[string]MedicineRecord
	pharmaciesByID map[string]PharmacyRecord
	usersByID      map[string]UserRecord
	settingsByID   map[string]SettingsRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		medicinesByID:  make(map[string]MedicineRecord),
		pharmaciesByID: make(map[string]PharmacyRecord),
		usersByID:      make(map[string]UserRecord),
		settingsByID:   make(map[string]SettingsRecord),
	}
}

// transaction-aware locking helpers
type txKey struct{}

func isTx(ctx context.Context) bool {
	v := ctx.Value(txKey{})
	if v == nil {
		return false
	}
	b, ok := v.(bool)
	return ok && b
}

func (m *MemoryStore) rlock(ctx context.Context) {
	if !isTx(ctx) {
		m.mu.RLock()
	}
}
func (m *MemoryStore) runlock(ctx context.Context) {
	if !isTx(ctx) {
		m.mu.RUnlock()
	}
}
func (m *MemoryStore) wlock(ctx context.Context) {
	if !isTx(ctx) {
		m.mu.Lock()
	}
}
func (m *MemoryStore) wunlock(ctx context.Context) {
	if !isTx(ctx) {
		m.mu.Unlock()
	}
}

// Ensure interfaces
var _ MedicineRepository = (*MemoryStore)(nil)

// MedicineRepository implementation
func (m *MemoryStore) Create(ctx context.Context, rec *MedicineRecord) error {
	m.wlock(ctx)
	defer m.wunlock(ctx)
	rec.ID = uuid.NewString()
	m.medicinesByID[rec.ID] = *rec
	return nil
}

func (m *MemoryStore) GetByID(ctx context.Context, id string) (*MedicineRecord, error) {
	m.rlock(ctx)
	defer m.runlock(ctx)
	rec, ok := m.medicinesByID[id]
	if !ok {
		return nil, ErrNotFound
	}
	// return copy
	cp := rec
	return &cp, nil
}

func (m *MemoryStore) Update(ctx context.Context, rec *MedicineRecord) error {
	m.wlock(ctx)
	defer m.wunlock(ctx)
	if _, ok := m.medicinesByID[rec.ID]; !ok {
		return ErrNotFound
	}
	m.medicinesByID[rec.ID] = *rec
	return nil
}

func (m *MemoryStore) Delete(ctx context.Context, id string) error {
	m.wlock(ctx)
	defer m.wunlock(ctx)
	if _, ok := m.medicinesByID[id]; !ok {
		return ErrNotFound
	}
	delete(m.medicinesByID, id)
	return nil
}

func (m *MemoryStore) ListByPharmacy(ctx context.Context, pharmacyID string) ([]MedicineRecord, error) {
	m.rlock(ctx)
	defer m.runlock(ctx)
	out := make([]MedicineRecord, 0)
	for _, rec := range m.medicinesByID {
		if rec.PharmacyID == pharmacyID {
			out = append(out, rec)
		}
	}
	return out, nil
}

// Search отбирает медикаменты по подстроке имени и по адресу аптеки:
// совпадает, если адрес содержит любую часть строки локации
func (m *MemoryStore) Search(ctx context.Context, f MedicineFilter) ([]MedicineRecord, error) {
	m.rlock(ctx)
	defer m.runlock(ctx)
	out := make([]MedicineRecord, 0)
	for _, rec := range m.medicinesByID {
		if !containsIgnoreCase(rec.Name, f.NameSubstring) {
			continue
		}
		if f.LocationSubstring != "" {
			ph, ok := m.pharmaciesByID[rec.PharmacyID]
			if !ok || !matchesLocation(ph.Address, f.LocationSubstring) {
				continue
			}
		}
		out = append(out, rec)
	}
	return out, nil
}

func matchesLocation(address, location string) bool {
	for _, part := range strings.Split(location, ",") {
		part = strings.TrimSpace(part)
		if part != "" && containsIgnoreCase(address, part) {
			return true
		}
	}
	return false
}

// PharmacyRepository implementation on wrapper type
type MemoryPharmacies struct{ store *MemoryStore }

func NewMemoryPharmacies(store *MemoryStore) *MemoryPharmacies {
	return &MemoryPharmacies{store: store}
}

var _ PharmacyRepository = (*MemoryPharmacies)(nil)

func (mp *MemoryPharmacies) Create(ctx context.Context, p *PharmacyRecord) error {
	mp.store.wlock(ctx)
	defer mp.store.wunlock(ctx)
	for _, existing := range mp.store.pharmaciesByID {
		if strings.EqualFold(existing.Email, p.Email) {
			return ErrDuplicateEmail
		}
	}
	p.ID = uuid.NewString()
	mp.store.pharmaciesByID[p.ID] = *p
	return nil
}

func (mp *MemoryPharmacies) GetByID(ctx context.Context, id string) (*PharmacyRecord, error) {
	mp.store.rlock(ctx)
	defer mp.store.runlock(ctx)
	p, ok := mp.store.pharmaciesByID[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := p
	return &cp, nil
}

func (mp *MemoryPharmacies) GetByEmail(ctx context.Context, email string) (*PharmacyRecord, error) {
	mp.store.rlock(ctx)
	defer mp.store.runlock(ctx)
	for _, p := range mp.store.pharmaciesByID {
		if strings.EqualFold(p.Email, email) {
			cp := p
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (mp *MemoryPharmacies) Update(ctx context.Context, p *PharmacyRecord) error {
	mp.store.wlock(ctx)
	defer mp.store.wunlock(ctx)
	if _, ok := mp.store.pharmaciesByID[p.ID]; !ok {
		return ErrNotFound
	}
	mp.store.pharmaciesByID[p.ID] = *p
	return nil
}

// UserRepository implementation on wrapper type
type MemoryUsers struct{ store *MemoryStore }

func NewMemoryUsers(store *MemoryStore) *MemoryUsers { return &MemoryUsers{store: store} }

var _ UserRepository = (*MemoryUsers)(nil)

func (mu *MemoryUsers) Create(ctx context.Context, u *UserRecord) error {
	mu.store.wlock(ctx)
	defer mu.store.wunlock(ctx)
	for _, existing := range mu.store.usersByID {
		if strings.EqualFold(existing.Email, u.Email) {
			return ErrDuplicateEmail
		}
	}
	u.ID = uuid.NewString()
	mu.store.usersByID[u.ID] = *u
	return nil
}

func (mu *MemoryUsers) GetByEmail(ctx context.Context, email string) (*UserRecord, error) {
	mu.store.rlock(ctx)
	defer mu.store.runlock(ctx)
	for _, u := range mu.store.usersByID {
		if strings.EqualFold(u.Email, email) {
			cp := u
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

// SettingsRepository implementation on wrapper type
type MemorySettings struct{ store *MemoryStore }

func NewMemorySettings(store *MemoryStore) *MemorySettings { return &MemorySettings{store: store} }

var _ SettingsRepository = (*MemorySettings)(nil)

func (ms *MemorySettings) Get(ctx context.Context, pharmacyID string) (*SettingsRecord, error) {
	ms.store.rlock(ctx)
	defer ms.store.runlock(ctx)
	s, ok := ms.store.settingsByID[pharmacyID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := s
	return &cp, nil
}

func (ms *MemorySettings) Put(ctx context.Context, pharmacyID string, s SettingsRecord) error {
	ms.store.wlock(ctx)
	defer ms.store.wunlock(ctx)
	ms.store.settingsByID[pharmacyID] = s
	return nil
}

// Tx manager using write lock to emulate transaction boundary
type MemoryTx struct{ store *MemoryStore }

func NewMemoryTx(store *MemoryStore) *MemoryTx { return &MemoryTx{store: store} }

func (tx *MemoryTx) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	// Для in-memory используем блокировку записи и помечаем контекст, чтобы репозитории пропускали внутренние локи
	tx.store.mu.Lock()
	defer tx.store.mu.Unlock()
	ctx = context.WithValue(ctx, txKey{}, true)
	return fn(ctx)
}
