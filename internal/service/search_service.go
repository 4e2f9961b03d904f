package service

import (
	"context"
	"strings"

	"medifind/internal/repository"
)

// SearchService публичный поиск медикаментов с привязкой к аптекам
type SearchService struct {
	medicines  repository.MedicineRepository
	pharmacies repository.PharmacyRepository
}

func NewSearchService(medicines repository.MedicineRepository, pharmacies repository.PharmacyRepository) *SearchService {
	return &SearchService{medicines: medicines, pharmacies: pharmacies}
}

// SearchResult медикамент с данными аптеки для выдачи
type SearchResult struct {
	Medicine        repository.MedicineRecord
	PharmacyName    string
	PharmacyPhone   string
	PharmacyAddress string
}

// Search возвращает совпадения как есть, без ранжирования
func (s *SearchService) Search(ctx context.Context, medicineName, location string) ([]SearchResult, error) {
	if strings.TrimSpace(medicineName) == "" {
		return nil, ErrInvalidInput
	}
	records, err := s.medicines.Search(ctx, repository.MedicineFilter{
		NameSubstring:     medicineName,
		LocationSubstring: location,
	})
	if err != nil {
		return nil, err
	}
	out := make([]SearchResult, 0, len(records))
	for _, rec := range records {
		res := SearchResult{Medicine: rec}
		if ph, err := s.pharmacies.GetByID(ctx, rec.PharmacyID); err == nil {
			res.PharmacyName = ph.Name
			res.PharmacyPhone = ph.Phone
			res.PharmacyAddress = ph.Address
		}
		out = append(out, res)
	}
	return out, nil
}
