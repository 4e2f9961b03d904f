package domain

import "fmt"

// Status статус наличия медикамента
type Status string

const (
	StatusAvailable   Status = "available"
	StatusLowStock    Status = "low_stock"
	StatusOutOfStock  Status = "out_of_stock"
	StatusUnavailable Status = "unavailable"
)

// LowStockThreshold граница перехода available → low_stock
const LowStockThreshold = 30

// Medicine представляет медикамент в аптеке
type Medicine struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Description   string  `json:"description"`
	Category      string  `json:"category"`
	Price         float64 `json:"price"`
	StockQuantity int     `json:"stockQuantity"`
	Status        Status  `json:"status"`
	ImageURL      string  `json:"imageUrl,omitempty"`
	Manufacturer  string  `json:"manufacturer,omitempty"`
	ExpiryDate    string  `json:"expiry_date,omitempty"`

	// pharmacy reference fields, filled by search responses
	PharmacyID      string `json:"pharmacy_id,omitempty"`
	PharmacyName    string `json:"pharmacy_name,omitempty"`
	PharmacyPhone   string `json:"pharmacy_phone,omitempty"`
	PharmacyAddress string `json:"pharmacy_address,omitempty"`
}

// DeriveStatus вычисляет статус по остатку: 0 — нет в наличии,
// меньше порога — заканчивается, иначе — в наличии
func DeriveStatus(stockQuantity int) Status {
	switch {
	case stockQuantity <= 0:
		return StatusOutOfStock
	case stockQuantity < LowStockThreshold:
		return StatusLowStock
	default:
		return StatusAvailable
	}
}

// DisplayStatus статус для отображения: поле бэкенда имеет приоритет,
// вычисление по остатку — запасной вариант
func DisplayStatus(m Medicine) Status {
	if m.Status != "" {
		return m.Status
	}
	return DeriveStatus(m.StockQuantity)
}

// FormatPrice цена с двумя знаками после запятой
func FormatPrice(p float64) string {
	return fmt.Sprintf("$%.2f", p)
}

// UserType роль владельца сессии
type UserType string

const (
	UserTypePharmacy UserType = "pharmacy"
	UserTypeUser     UserType = "user"
)

// Session аутентифицированная сессия: токен и роль, сохраняемые между запусками
type Session struct {
	Token    string   `json:"token"`
	UserType UserType `json:"userType"`
	UserID   string   `json:"userId"`
}

// Valid сессия пригодна для авторизованных вызовов
func (s Session) Valid() bool {
	return s.Token != ""
}

// LocationSelection результат ручного выбора локации: страна → регион → город
type LocationSelection struct {
	Country string `json:"country"`
	State   string `json:"state"`
	City    string `json:"city"`
}

// Complete выбраны все три уровня
func (l LocationSelection) Complete() bool {
	return l.Country != "" && l.State != "" && l.City != ""
}

// String строка локации для поискового запроса
func (l LocationSelection) String() string {
	return fmt.Sprintf("%s, %s, %s", l.City, l.State, l.Country)
}

// Coordinates географические координаты
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// DetectedLocation результат автоматического определения локации
type DetectedLocation struct {
	Country        string       `json:"country"`
	State          string       `json:"state"`
	City           string       `json:"city"`
	DisplayAddress string       `json:"displayAddress"`
	Coordinates    *Coordinates `json:"coordinates,omitempty"`
}

// SearchQuery одноразовый поисковый запрос, нигде не сохраняется
type SearchQuery struct {
	MedicineName string `json:"medicineName"`
	Location     string `json:"location"`
}

// Pharmacy профиль аптеки
type Pharmacy struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	Address       string `json:"address"`
	LicenseNumber string `json:"license_number"`
	ProfileImage  string `json:"profile_image,omitempty"`
	Description   string `json:"description,omitempty"`
}

// Settings настройки аптеки
type Settings struct {
	EmailNotifications bool   `json:"email_notifications"`
	SMSNotifications   bool   `json:"sms_notifications"`
	OpeningTime        string `json:"opening_time"`
	ClosingTime        string `json:"closing_time"`
}

// CategoryCount счётчик медикаментов в категории
type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// Analytics сводка по инвентарю аптеки
type Analytics struct {
	TotalMedicines      int             `json:"totalMedicines"`
	LowStock            int             `json:"lowStock"`
	OutOfStock          int             `json:"outOfStock"`
	TotalInventoryValue float64         `json:"totalInventoryValue"`
	CategoryBreakdown   []CategoryCount `json:"categoryBreakdown,omitempty"`
}
