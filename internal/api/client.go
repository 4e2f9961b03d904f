// Package api содержит клиент REST-бэкенда: по одному методу на
// эндпоинт, без повторов и без кэширования — один вызов, один запрос.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"medifind/internal/domain"
	"medifind/internal/session"
)

const defaultTimeout = 30 * time.Second

// Config параметры клиента
type Config struct {
	BaseURL    string
	HTTPClient *http.Client
	Sessions   session.Store
	Logger     logrus.FieldLogger
}

// Client клиент бэкенда. Не хранит состояния между вызовами; сессия
// читается из внедрённого session.Store перед каждым авторизованным запросом
type Client struct {
	baseURL  string
	http     *http.Client
	sessions session.Store
	log      logrus.FieldLogger
}

func New(cfg Config) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	log := cfg.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Client{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		http:     httpClient,
		sessions: cfg.Sessions,
		log:      log,
	}
}

// AuthResponse ответ на вход или регистрацию
type AuthResponse struct {
	Token    string `json:"token"`
	UserID   string `json:"userId"`
	UserType string `json:"userType"`
	Message  string `json:"message"`
	Success  bool   `json:"success"`
}

// Session собирает доменную сессию из ответа аутентификации
func (a *AuthResponse) Session() domain.Session {
	return domain.Session{
		Token:    a.Token,
		UserType: domain.UserType(a.UserType),
		UserID:   a.UserID,
	}
}

// RegisterRequest данные регистрации аптеки
type RegisterRequest struct {
	Name          string
	Email         string
	Password      string
	Phone         string
	LicenseNumber string
	Address       string
}

// SearchResponse результат поиска медикаментов
type SearchResponse struct {
	Medicines  []domain.Medicine
	TotalCount int
	Message    string
}

// PharmacyUpdate изменяемые поля профиля; пустые не отправляются
type PharmacyUpdate struct {
	Name          string
	Email         string
	Phone         string
	Address       string
	LicenseNumber string
	Description   string
}

// Health проверка доступности бэкенда
func (c *Client) Health(ctx context.Context) (string, error) {
	var out struct {
		Status string `json:"status"`
	}
	if err := c.do(ctx, http.MethodGet, "/health", nil, &out, false); err != nil {
		return "", err
	}
	return out.Status, nil
}

// SearchMedicines поиск без авторизации; результаты нормализуются,
// порядок бэкенда сохраняется как есть
func (c *Client) SearchMedicines(ctx context.Context, q domain.SearchQuery) (*SearchResponse, error) {
	var out struct {
		Medicines  []wireMedicine `json:"medicines"`
		TotalCount int            `json:"totalCount"`
		Message    string         `json:"message"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/v1/search", q, &out, false); err != nil {
		return nil, err
	}
	return &SearchResponse{
		Medicines:  normalizeMedicines(out.Medicines),
		TotalCount: out.TotalCount,
		Message:    out.Message,
	}, nil
}

// ListMedicines инвентарь текущей аптеки
func (c *Client) ListMedicines(ctx context.Context) ([]domain.Medicine, error) {
	var out struct {
		Medicines []wireMedicine `json:"medicines"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/v1/medicines", nil, &out, true); err != nil {
		return nil, err
	}
	return normalizeMedicines(out.Medicines), nil
}

// AddMedicine создаёт медикамент; stockQuantity уходит на бэкенд как stock,
// статус при отсутствии вычисляется по остатку
func (c *Client) AddMedicine(ctx context.Context, m domain.Medicine) (*domain.Medicine, error) {
	status := m.Status
	if status == "" {
		status = domain.DeriveStatus(m.StockQuantity)
	}
	body := map[string]any{
		"name":        m.Name,
		"description": m.Description,
		"category":    m.Category,
		"price":       m.Price,
		"stock":       m.StockQuantity,
		"status":      string(status),
	}
	var out struct {
		Success  bool         `json:"success"`
		Medicine wireMedicine `json:"medicine"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/v1/medicines", body, &out, true); err != nil {
		return nil, err
	}
	created := normalizeMedicine(out.Medicine)
	return &created, nil
}

// UpdateMedicine обновляет медикамент по id
func (c *Client) UpdateMedicine(ctx context.Context, id string, m domain.Medicine) error {
	status := m.Status
	if status == "" {
		status = domain.DeriveStatus(m.StockQuantity)
	}
	body := map[string]any{
		"name":        m.Name,
		"description": m.Description,
		"category":    m.Category,
		"price":       m.Price,
		"stock":       m.StockQuantity,
		"status":      string(status),
	}
	var out struct {
		Success bool `json:"success"`
	}
	return c.do(ctx, http.MethodPut, "/api/v1/medicines/"+url.PathEscape(id), body, &out, true)
}

// DeleteMedicine удаляет медикамент по id
func (c *Client) DeleteMedicine(ctx context.Context, id string) error {
	var out struct {
		Success bool `json:"success"`
	}
	return c.do(ctx, http.MethodDelete, "/api/v1/medicines/"+url.PathEscape(id), nil, &out, true)
}

// PharmacyLogin вход аптеки; сохранение сессии — забота вызывающего
func (c *Client) PharmacyLogin(ctx context.Context, email, password string) (*AuthResponse, error) {
	body := map[string]string{"email": email, "password": password}
	var out AuthResponse
	if err := c.do(ctx, http.MethodPost, "/api/v1/pharmacyLogin", body, &out, false); err != nil {
		return nil, err
	}
	return &out, nil
}

// PharmacyRegister регистрация аптеки; дубликат почты приходит как 409
func (c *Client) PharmacyRegister(ctx context.Context, r RegisterRequest) (*AuthResponse, error) {
	// backend expects licenseNumber and location, not license_number/address
	body := map[string]string{
		"name":          r.Name,
		"email":         r.Email,
		"password":      r.Password,
		"phone":         r.Phone,
		"licenseNumber": r.LicenseNumber,
		"location":      r.Address,
	}
	var out AuthResponse
	if err := c.do(ctx, http.MethodPost, "/api/v1/pharmacyRegister", body, &out, false); err != nil {
		return nil, err
	}
	return &out, nil
}

// UserLogin вход обычного пользователя
func (c *Client) UserLogin(ctx context.Context, email, password string) (*AuthResponse, error) {
	body := map[string]string{"email": email, "password": password}
	var out AuthResponse
	if err := c.do(ctx, http.MethodPost, "/api/v1/userLogin", body, &out, false); err != nil {
		return nil, err
	}
	return &out, nil
}

// UserRegister регистрация обычного пользователя
func (c *Client) UserRegister(ctx context.Context, name, email, password, phone string) (*AuthResponse, error) {
	body := map[string]string{
		"name":     name,
		"email":    email,
		"password": password,
		"phone":    phone,
	}
	var out AuthResponse
	if err := c.do(ctx, http.MethodPost, "/api/v1/userRegister", body, &out, false); err != nil {
		return nil, err
	}
	return &out, nil
}

// Logout инвалидирует токен на бэкенде; локальную сессию чистит вызывающий
func (c *Client) Logout(ctx context.Context) error {
	var out struct {
		Success bool `json:"success"`
	}
	return c.do(ctx, http.MethodPost, "/api/v1/logout", nil, &out, true)
}

// GetPharmacyInfo профиль текущей аптеки
func (c *Client) GetPharmacyInfo(ctx context.Context) (*domain.Pharmacy, error) {
	var out struct {
		Pharmacy domain.Pharmacy `json:"pharmacy"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/v1/pharmacyInfo", nil, &out, true); err != nil {
		return nil, err
	}
	return &out.Pharmacy, nil
}

// UpdatePharmacyInfo частичное обновление профиля
func (c *Client) UpdatePharmacyInfo(ctx context.Context, u PharmacyUpdate) error {
	// address maps to the backend's location field
	body := map[string]string{}
	if u.Name != "" {
		body["name"] = u.Name
	}
	if u.Email != "" {
		body["email"] = u.Email
	}
	if u.Phone != "" {
		body["phone"] = u.Phone
	}
	if u.Address != "" {
		body["location"] = u.Address
	}
	if u.LicenseNumber != "" {
		body["license_number"] = u.LicenseNumber
	}
	if u.Description != "" {
		body["description"] = u.Description
	}
	var out struct {
		Success bool `json:"success"`
	}
	return c.do(ctx, http.MethodPut, "/api/v1/pharmacyInfo", body, &out, true)
}

// UploadProfileImage загружает аватар аптеки (data URL)
func (c *Client) UploadProfileImage(ctx context.Context, dataURL string) error {
	body := map[string]string{"profile_image": dataURL}
	var out struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	return c.do(ctx, http.MethodPost, "/api/v1/uploadProfileImage", body, &out, true)
}

// UploadMedicineImage загружает изображение медикамента, возвращает его URL
func (c *Client) UploadMedicineImage(ctx context.Context, medicineID, dataURL string) (string, error) {
	body := map[string]string{"image": dataURL}
	var out struct {
		Success  bool         `json:"success"`
		Medicine wireMedicine `json:"medicine"`
	}
	path := "/api/v1/medicines/" + url.PathEscape(medicineID) + "/image"
	if err := c.do(ctx, http.MethodPost, path, body, &out, true); err != nil {
		return "", err
	}
	return normalizeMedicine(out.Medicine).ImageURL, nil
}

// GetSettings настройки аптеки
func (c *Client) GetSettings(ctx context.Context) (*domain.Settings, error) {
	var out struct {
		Settings domain.Settings `json:"settings"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/v1/pharmacySettings", nil, &out, true); err != nil {
		return nil, err
	}
	return &out.Settings, nil
}

// UpdateSettings сохраняет настройки аптеки
func (c *Client) UpdateSettings(ctx context.Context, s domain.Settings) error {
	var out struct {
		Success bool `json:"success"`
	}
	return c.do(ctx, http.MethodPut, "/api/v1/pharmacySettings", s, &out, true)
}

// GetAnalytics сводка по инвентарю
func (c *Client) GetAnalytics(ctx context.Context) (*domain.Analytics, error) {
	var out domain.Analytics
	if err := c.do(ctx, http.MethodGet, "/api/v1/analytics", nil, &out, true); err != nil {
		return nil, err
	}
	return &out, nil
}

// Countries список стран для каскадного выбора
func (c *Client) Countries(ctx context.Context) ([]string, error) {
	var out []string
	if err := c.do(ctx, http.MethodGet, "/api/v1/countries", nil, &out, false); err != nil {
		return nil, err
	}
	return out, nil
}

// States регионы выбранной страны
func (c *Client) States(ctx context.Context, country string) ([]string, error) {
	path := "/api/v1/states?country=" + url.QueryEscape(country)
	var out []string
	if err := c.do(ctx, http.MethodGet, path, nil, &out, false); err != nil {
		return nil, err
	}
	return out, nil
}

// Cities города выбранной пары страна+регион
func (c *Client) Cities(ctx context.Context, country, state string) ([]string, error) {
	path := "/api/v1/cities?country=" + url.QueryEscape(country) + "&state=" + url.QueryEscape(state)
	var out []string
	if err := c.do(ctx, http.MethodGet, path, nil, &out, false); err != nil {
		return nil, err
	}
	return out, nil
}

// do выполняет один запрос: собирает URL, при необходимости подписывает
// bearer-токеном, транслирует статусы вне 2xx в *APIError
func (c *Client) do(ctx context.Context, method, path string, body, out any, authed bool) error {
	var token string
	if authed {
		if c.sessions == nil {
			return ErrNotAuthenticated
		}
		s, ok, err := c.sessions.Load()
		if err != nil {
			return fmt.Errorf("load session: %w", err)
		}
		if !ok {
			return ErrNotAuthenticated
		}
		token = s.Token
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.WithFields(logrus.Fields{"method": method, "path": path}).WithError(err).Warn("request failed")
		return fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnreachable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		serverMsg := extractMessage(data)
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: messageForStatus(resp.StatusCode, serverMsg)}
		c.log.WithFields(logrus.Fields{"method": method, "path": path, "status": resp.StatusCode}).Debug(apiErr.Message)
		return apiErr
	}

	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// extractMessage достаёт поле message (или error) из тела ошибки, если оно есть
func extractMessage(data []byte) string {
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return ""
	}
	if body.Message != "" {
		return body.Message
	}
	return body.Error
}
