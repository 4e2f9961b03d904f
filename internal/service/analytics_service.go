package service

import (
	"context"
	"sort"

	"medifind/internal/domain"
	"medifind/internal/repository"
)

// AnalyticsService сводка по инвентарю аптеки, считается на лету
type AnalyticsService struct {
	medicines repository.MedicineRepository
}

func NewAnalyticsService(medicines repository.MedicineRepository) *AnalyticsService {
	return &AnalyticsService{medicines: medicines}
}

// Compute агрегирует инвентарь: счётчики, стоимость, разбивка по категориям
func (s *AnalyticsService) Compute(ctx context.Context, pharmacyID string) (*domain.Analytics, error) {
	if pharmacyID == "" {
		return nil, ErrInvalidInput
	}
	records, err := s.medicines.ListByPharmacy(ctx, pharmacyID)
	if err != nil {
		return nil, err
	}

	out := &domain.Analytics{TotalMedicines: len(records)}
	byCategory := map[string]int{}
	for _, rec := range records {
		switch domain.DeriveStatus(rec.Stock) {
		case domain.StatusOutOfStock:
			out.OutOfStock++
		case domain.StatusLowStock:
			out.LowStock++
		}
		out.TotalInventoryValue += rec.Price * float64(rec.Stock)
		category := rec.Category
		if category == "" {
			category = "General"
		}
		byCategory[category]++
	}

	categories := make([]string, 0, len(byCategory))
	for c := range byCategory {
		categories = append(categories, c)
	}
	sort.Strings(categories)
	for _, c := range categories {
		out.CategoryBreakdown = append(out.CategoryBreakdown, domain.CategoryCount{Category: c, Count: byCategory[c]})
	}
	return out, nil
}
