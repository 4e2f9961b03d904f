package api

import "medifind/internal/domain"

// wireMedicine медикамент в том виде, в каком его отдаёт бэкенд:
// количество может прийти как stock или как stockQuantity,
// статус и категория могут отсутствовать
type wireMedicine struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Description   string  `json:"description"`
	Category      string  `json:"category"`
	Price         float64 `json:"price"`
	Stock         *int    `json:"stock"`
	StockQuantity *int    `json:"stockQuantity"`
	Status        string  `json:"status"`
	ImageURL      string  `json:"imageUrl"`
	Image         string  `json:"image_url"`
	Manufacturer  string  `json:"manufacturer"`
	ExpiryDate    string  `json:"expiry_date"`

	PharmacyID      string `json:"pharmacy_id"`
	PharmacyName    string `json:"pharmacy_name"`
	PharmacyPhone   string `json:"pharmacy_phone"`
	PharmacyAddress string `json:"pharmacy_address"`
}

// normalizeMedicine приводит ответ бэкенда к единой форме:
// stockQuantity заполняется из stock, категория получает умолчание,
// отсутствующий статус вычисляется из остатка
func normalizeMedicine(w wireMedicine) domain.Medicine {
	qty := 0
	switch {
	case w.Stock != nil:
		qty = *w.Stock
	case w.StockQuantity != nil:
		qty = *w.StockQuantity
	}
	status := domain.Status(w.Status)
	if status == "" {
		status = domain.DeriveStatus(qty)
	}
	category := w.Category
	if category == "" {
		category = "General"
	}
	imageURL := w.ImageURL
	if imageURL == "" {
		imageURL = w.Image
	}
	return domain.Medicine{
		ID:              w.ID,
		Name:            w.Name,
		Description:     w.Description,
		Category:        category,
		Price:           w.Price,
		StockQuantity:   qty,
		Status:          status,
		ImageURL:        imageURL,
		Manufacturer:    w.Manufacturer,
		ExpiryDate:      w.ExpiryDate,
		PharmacyID:      w.PharmacyID,
		PharmacyName:    w.PharmacyName,
		PharmacyPhone:   w.PharmacyPhone,
		PharmacyAddress: w.PharmacyAddress,
	}
}

func normalizeMedicines(ws []wireMedicine) []domain.Medicine {
	out := make([]domain.Medicine, 0, len(ws))
	for _, w := range ws {
		out = append(out, normalizeMedicine(w))
	}
	return out
}
