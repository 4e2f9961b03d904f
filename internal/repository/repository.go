package repository

import (
	"context"
	"errors"
	"strings"
)

// ErrNotFound возвращается, когда сущность не найдена
var ErrNotFound = errors.New("not found")

// ErrDuplicateEmail почта уже занята
var ErrDuplicateEmail = errors.New("email already registered")

// PharmacyRecord учётная запись аптеки в хранилище dev-сервера
type PharmacyRecord struct {
	ID            string
	Name          string
	Email         string
	PasswordHash  string
	Phone         string
	LicenseNumber string
	Address       string
	ProfileImage  string
	Description   string
}

// UserRecord учётная запись покупателя
type UserRecord struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Phone        string
}

// MedicineRecord медикамент на складе аптеки. Количество хранится как
// stock — клиент приводит его к stockQuantity на своей стороне
type MedicineRecord struct {
	ID          string
	PharmacyID  string
	Name        string
	Description string
	Category    string
	Price       float64
	Stock       int
	Status      string
	ImageURL    string
}

// SettingsRecord настройки аптеки
type SettingsRecord struct {
	EmailNotifications bool
	SMSNotifications   bool
	OpeningTime        string
	ClosingTime        string
}

// MedicineFilter параметры поиска медикаментов
type MedicineFilter struct {
	NameSubstring     string
	LocationSubstring string
}

// MedicineRepository интерфейс репозитория медикаментов
type MedicineRepository interface {
	Create(ctx context.Context, m *MedicineRecord) error
	GetByID(ctx context.Context, id string) (*MedicineRecord, error)
	Update(ctx context.Context, m *MedicineRecord) error
	Delete(ctx context.Context, id string) error
	ListByPharmacy(ctx context.Context, pharmacyID string) ([]MedicineRecord, error)
	Search(ctx context.Context, f MedicineFilter) ([]MedicineRecord, error)
}

// PharmacyRepository интерфейс репозитория аптек
type PharmacyRepository interface {
	Create(ctx context.Context, p *PharmacyRecord) error
	GetByID(ctx context.Context, id string) (*PharmacyRecord, error)
	GetByEmail(ctx context.Context, email string) (*PharmacyRecord, error)
	Update(ctx context.Context, p *PharmacyRecord) error
}

// UserRepository интерфейс репозитория покупателей
type UserRepository interface {
	Create(ctx context.Context, u *UserRecord) error
	GetByEmail(ctx context.Context, email string) (*UserRecord, error)
}

// SettingsRepository настройки по id аптеки
type SettingsRepository interface {
	Get(ctx context.Context, pharmacyID string) (*SettingsRecord, error)
	Put(ctx context.Context, pharmacyID string, s SettingsRecord) error
}

// GeographyRepository справочник страна → регион → город
type GeographyRepository interface {
	Countries(ctx context.Context) ([]string, error)
	States(ctx context.Context, country string) ([]string, error)
	Cities(ctx context.Context, country, state string) ([]string, error)
}

// TxManager абстракция транзакции. Для in-memory — глобальная блокировка записи.
type TxManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// helper: case-insensitive contains
func containsIgnoreCase(s, substr string) bool {
	if substr == "" {
		return true
	}
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
