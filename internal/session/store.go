package session

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"

	"medifind/internal/domain"
)

// ErrNoSession возвращается, когда сохранённой сессии нет
var ErrNoSession = errors.New("no session")

// Store держит не более одной сессии; срок жизни токена нигде не
// отслеживается — истечение обнаруживается только по ответу 401
type Store interface {
	Save(s domain.Session) error
	Load() (domain.Session, bool, error)
	Clear() error
}

// фиксированные имена ключей, совместимые с веб-клиентом
const (
	keyToken    = "authToken"
	keyUserType = "userType"
	keyUserID   = "userId"
)

// FileStore хранит три скалярных значения в JSON-файле
type FileStore struct {
	mu   sync.Mutex
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// DefaultPath файл сессии в пользовательском каталоге конфигурации
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "medifind", "session.json"), nil
}

var _ Store = (*FileStore)(nil)

func (f *FileStore) Save(s domain.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return err
	}
	data, err := json.Marshal(map[string]string{
		keyToken:    s.Token,
		keyUserType: string(s.UserType),
		keyUserID:   s.UserID,
	})
	if err != nil {
		return err
	}
	return os.WriteFile(f.path, data, 0o600)
}

func (f *FileStore) Load() (domain.Session, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return domain.Session{}, false, nil
		}
		return domain.Session{}, false, err
	}
	var kv map[string]string
	if err := json.Unmarshal(data, &kv); err != nil {
		return domain.Session{}, false, err
	}
	s := domain.Session{
		Token:    kv[keyToken],
		UserType: domain.UserType(kv[keyUserType]),
		UserID:   kv[keyUserID],
	}
	if !s.Valid() {
		return domain.Session{}, false, nil
	}
	return s, true, nil
}

func (f *FileStore) Clear() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := os.Remove(f.path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// MemStore хранилище в памяти для тестов и для внедрения в клиент
type MemStore struct {
	mu  sync.Mutex
	s   domain.Session
	set bool
}

func NewMemStore() *MemStore { return &MemStore{} }

var _ Store = (*MemStore)(nil)

func (m *MemStore) Save(s domain.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.s = s
	m.set = true
	return nil
}

func (m *MemStore) Load() (domain.Session, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.set || !m.s.Valid() {
		return domain.Session{}, false, nil
	}
	return m.s, true, nil
}

func (m *MemStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.s = domain.Session{}
	m.set = false
	return nil
}
