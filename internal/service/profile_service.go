package service

import (
	"context"
	"errors"
	"strings"

	"medifind/internal/repository"
)

var (
	ErrImageTooLarge    = errors.New("image is too large")
	ErrUnsupportedImage = errors.New("unsupported image format")
)

// ProfileService профиль и настройки аптеки
type ProfileService struct {
	pharmacies   repository.PharmacyRepository
	settings     repository.SettingsRepository
	maxImageSize int
}

func NewProfileService(pharmacies repository.PharmacyRepository, settings repository.SettingsRepository, maxImageSize int) *ProfileService {
	return &ProfileService{pharmacies: pharmacies, settings: settings, maxImageSize: maxImageSize}
}

// Get профиль по id
func (s *ProfileService) Get(ctx context.Context, pharmacyID string) (*repository.PharmacyRecord, error) {
	if pharmacyID == "" {
		return nil, ErrInvalidInput
	}
	return s.pharmacies.GetByID(ctx, pharmacyID)
}

// ProfileUpdate изменяемые поля; пустые не трогаются
type ProfileUpdate struct {
	Name          string
	Email         string
	Phone         string
	Address       string
	LicenseNumber string
	Description   string
}

// Update частично обновляет профиль
func (s *ProfileService) Update(ctx context.Context, pharmacyID string, u ProfileUpdate) (*repository.PharmacyRecord, error) {
	p, err := s.Get(ctx, pharmacyID)
	if err != nil {
		return nil, err
	}
	if u.Name != "" {
		p.Name = u.Name
	}
	if u.Email != "" {
		p.Email = u.Email
	}
	if u.Phone != "" {
		p.Phone = u.Phone
	}
	if u.Address != "" {
		p.Address = u.Address
	}
	if u.LicenseNumber != "" {
		p.LicenseNumber = u.LicenseNumber
	}
	if u.Description != "" {
		p.Description = u.Description
	}
	if err := s.pharmacies.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// SetProfileImage валидирует и сохраняет аватар (data URL)
func (s *ProfileService) SetProfileImage(ctx context.Context, pharmacyID, dataURL string) error {
	if err := s.ValidateImage(dataURL); err != nil {
		return err
	}
	p, err := s.Get(ctx, pharmacyID)
	if err != nil {
		return err
	}
	p.ProfileImage = dataURL
	return s.pharmacies.Update(ctx, p)
}

// ValidateImage проверяет data URL: тип и размер
func (s *ProfileService) ValidateImage(dataURL string) error {
	if dataURL == "" {
		return ErrInvalidInput
	}
	if !strings.HasPrefix(dataURL, "data:image/") {
		return ErrUnsupportedImage
	}
	rest := strings.TrimPrefix(dataURL, "data:image/")
	semi := strings.Index(rest, ";")
	if semi < 0 {
		return ErrUnsupportedImage
	}
	switch rest[:semi] {
	case "png", "jpeg", "jpg", "webp":
	default:
		return ErrUnsupportedImage
	}
	if s.maxImageSize > 0 && len(dataURL) > s.maxImageSize {
		return ErrImageTooLarge
	}
	return nil
}

// GetSettings настройки; при отсутствии — умолчания
func (s *ProfileService) GetSettings(ctx context.Context, pharmacyID string) (*repository.SettingsRecord, error) {
	if pharmacyID == "" {
		return nil, ErrInvalidInput
	}
	rec, err := s.settings.Get(ctx, pharmacyID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return &repository.SettingsRecord{
				EmailNotifications: true,
				OpeningTime:        "08:00",
				ClosingTime:        "20:00",
			}, nil
		}
		return nil, err
	}
	return rec, nil
}

// UpdateSettings сохраняет настройки
func (s *ProfileService) UpdateSettings(ctx context.Context, pharmacyID string, rec repository.SettingsRecord) error {
	if pharmacyID == "" {
		return ErrInvalidInput
	}
	return s.settings.Put(ctx, pharmacyID, rec)
}
