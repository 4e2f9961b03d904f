package service

import (
	"context"
	"errors"
	"strings"

	"medifind/internal/domain"
	"medifind/internal/repository"
)

// InventoryService инкапсулирует бизнес-логику вокруг медикаментов аптеки
type InventoryService struct {
	medicines repository.MedicineRepository
}

func NewInventoryService(medicines repository.MedicineRepository) *InventoryService {
	return &InventoryService{medicines: medicines}
}

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrForbidden    = errors.New("forbidden")
)

// Add создаёт медикамент; пустой статус вычисляется из остатка
func (s *InventoryService) Add(ctx context.Context, pharmacyID string, m repository.MedicineRecord) (*repository.MedicineRecord, error) {
	if pharmacyID == "" || strings.TrimSpace(m.Name) == "" || m.Price <= 0 || m.Stock < 0 {
		return nil, ErrInvalidInput
	}
	cp := m
	cp.PharmacyID = pharmacyID
	if cp.Status == "" {
		cp.Status = string(domain.DeriveStatus(cp.Stock))
	}
	if err := s.medicines.Create(ctx, &cp); err != nil {
		return nil, err
	}
	return &cp, nil
}

// Update обновляет медикамент; чужой медикамент трогать нельзя
func (s *InventoryService) Update(ctx context.Context, pharmacyID, id string, m repository.MedicineRecord) (*repository.MedicineRecord, error) {
	if pharmacyID == "" || id == "" || strings.TrimSpace(m.Name) == "" || m.Price <= 0 || m.Stock < 0 {
		return nil, ErrInvalidInput
	}
	existing, err := s.medicines.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing.PharmacyID != pharmacyID {
		return nil, ErrForbidden
	}
	cp := m
	cp.ID = id
	cp.PharmacyID = pharmacyID
	if cp.ImageURL == "" {
		cp.ImageURL = existing.ImageURL
	}
	if cp.Status == "" {
		cp.Status = string(domain.DeriveStatus(cp.Stock))
	}
	if err := s.medicines.Update(ctx, &cp); err != nil {
		return nil, err
	}
	return &cp, nil
}

// Delete удаляет медикамент аптеки
func (s *InventoryService) Delete(ctx context.Context, pharmacyID, id string) error {
	if pharmacyID == "" || id == "" {
		return ErrInvalidInput
	}
	existing, err := s.medicines.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if existing.PharmacyID != pharmacyID {
		return ErrForbidden
	}
	return s.medicines.Delete(ctx, id)
}

// List инвентарь одной аптеки
func (s *InventoryService) List(ctx context.Context, pharmacyID string) ([]repository.MedicineRecord, error) {
	if pharmacyID == "" {
		return nil, ErrInvalidInput
	}
	return s.medicines.ListByPharmacy(ctx, pharmacyID)
}

// AttachImage сохраняет URL изображения медикамента
func (s *InventoryService) AttachImage(ctx context.Context, pharmacyID, id, imageURL string) (*repository.MedicineRecord, error) {
	existing, err := s.medicines.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing.PharmacyID != pharmacyID {
		return nil, ErrForbidden
	}
	existing.ImageURL = imageURL
	if err := s.medicines.Update(ctx, existing); err != nil {
		return nil, err
	}
	return existing, nil
}
