package service

import (
	"context"
	"errors"
	"strings"

	"medifind/internal/auth"
	"medifind/internal/repository"
)

var ErrBadCredentials = errors.New("invalid email or password")

// TokenIssuer выпускает токен для учётной записи
type TokenIssuer interface {
	Issue(userID, userType string) (string, error)
}

// AuthService регистрация и вход аптек и покупателей
type AuthService struct {
	pharmacies repository.PharmacyRepository
	users      repository.UserRepository
	settings   repository.SettingsRepository
	tx         repository.TxManager
	tokens     TokenIssuer
}

func NewAuthService(pharmacies repository.PharmacyRepository, users repository.UserRepository, settings repository.SettingsRepository, tx repository.TxManager, tokens TokenIssuer) *AuthService {
	return &AuthService{pharmacies: pharmacies, users: users, settings: settings, tx: tx, tokens: tokens}
}

// AuthResult результат входа или регистрации
type AuthResult struct {
	Token    string
	UserID   string
	UserType string
}

// PharmacyRegistration данные регистрации аптеки
type PharmacyRegistration struct {
	Name          string
	Email         string
	Password      string
	Phone         string
	LicenseNumber string
	Address       string
}

// RegisterPharmacy атомарно создаёт учётную запись и настройки по умолчанию.
// Дубликат почты приводит к repository.ErrDuplicateEmail
func (s *AuthService) RegisterPharmacy(ctx context.Context, reg PharmacyRegistration) (*AuthResult, error) {
	if strings.TrimSpace(reg.Name) == "" || strings.TrimSpace(reg.Email) == "" || len(reg.Password) < 6 {
		return nil, ErrInvalidInput
	}
	hash, err := auth.HashPassword(reg.Password)
	if err != nil {
		return nil, err
	}

	var created repository.PharmacyRecord
	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		p := repository.PharmacyRecord{
			Name:          reg.Name,
			Email:         reg.Email,
			PasswordHash:  hash,
			Phone:         reg.Phone,
			LicenseNumber: reg.LicenseNumber,
			Address:       reg.Address,
		}
		if err := s.pharmacies.Create(ctx, &p); err != nil {
			return err
		}
		created = p
		return s.settings.Put(ctx, p.ID, repository.SettingsRecord{
			EmailNotifications: true,
			OpeningTime:        "08:00",
			ClosingTime:        "20:00",
		})
	})
	if err != nil {
		return nil, err
	}

	token, err := s.tokens.Issue(created.ID, "pharmacy")
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, UserID: created.ID, UserType: "pharmacy"}, nil
}

// LoginPharmacy вход аптеки по почте и паролю
func (s *AuthService) LoginPharmacy(ctx context.Context, email, password string) (*AuthResult, error) {
	if email == "" || password == "" {
		return nil, ErrInvalidInput
	}
	p, err := s.pharmacies.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrBadCredentials
		}
		return nil, err
	}
	if err := auth.CheckPassword(p.PasswordHash, password); err != nil {
		return nil, ErrBadCredentials
	}
	token, err := s.tokens.Issue(p.ID, "pharmacy")
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, UserID: p.ID, UserType: "pharmacy"}, nil
}

// RegisterUser регистрация покупателя
func (s *AuthService) RegisterUser(ctx context.Context, name, email, password, phone string) (*AuthResult, error) {
	if strings.TrimSpace(name) == "" || strings.TrimSpace(email) == "" || len(password) < 6 {
		return nil, ErrInvalidInput
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}
	u := repository.UserRecord{Name: name, Email: email, PasswordHash: hash, Phone: phone}
	if err := s.users.Create(ctx, &u); err != nil {
		return nil, err
	}
	token, err := s.tokens.Issue(u.ID, "user")
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, UserID: u.ID, UserType: "user"}, nil
}

// LoginUser вход покупателя
func (s *AuthService) LoginUser(ctx context.Context, email, password string) (*AuthResult, error) {
	if email == "" || password == "" {
		return nil, ErrInvalidInput
	}
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrBadCredentials
		}
		return nil, err
	}
	if err := auth.CheckPassword(u.PasswordHash, password); err != nil {
		return nil, ErrBadCredentials
	}
	token, err := s.tokens.Issue(u.ID, "user")
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, UserID: u.ID, UserType: "user"}, nil
}
