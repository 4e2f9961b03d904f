package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"medifind/internal/auth"
	"medifind/internal/repository"
	"medifind/internal/service"
)

// Server dev-бэкенд с контрактом реального REST API локатора медикаментов
type Server struct {
	engine    *gin.Engine
	auth      *service.AuthService
	inventory *service.InventoryService
	search    *service.SearchService
	profile   *service.ProfileService
	analytics *service.AnalyticsService
	geography repository.GeographyRepository
	tokens    *auth.Manager
}

func NewServer(
	authSvc *service.AuthService,
	inventory *service.InventoryService,
	search *service.SearchService,
	profile *service.ProfileService,
	analytics *service.AnalyticsService,
	geography repository.GeographyRepository,
	tokens *auth.Manager,
) *Server {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	s := &Server{
		engine:    r,
		auth:      authSvc,
		inventory: inventory,
		search:    search,
		profile:   profile,
		analytics: analytics,
		geography: geography,
		tokens:    tokens,
	}
	s.registerRoutes()
	return s
}

func (s *Server) Engine() *gin.Engine { return s.engine }

func (s *Server) registerRoutes() {
	s.engine.GET("/health", s.health)

	v1 := s.engine.Group("/api/v1")
	{
		v1.POST("/search", s.searchMedicines)
		v1.POST("/pharmacyLogin", s.pharmacyLogin)
		v1.POST("/pharmacyRegister", s.pharmacyRegister)
		v1.POST("/userLogin", s.userLogin)
		v1.POST("/userRegister", s.userRegister)
		v1.GET("/countries", s.countries)
		v1.GET("/states", s.states)
		v1.GET("/cities", s.cities)

		authed := v1.Group("")
		authed.Use(s.requireAuth)
		{
			authed.POST("/logout", s.logout)
			authed.GET("/medicines", s.listMedicines)
			authed.POST("/medicines", s.addMedicine)
			authed.PUT("/medicines/:id", s.updateMedicine)
			authed.DELETE("/medicines/:id", s.deleteMedicine)
			authed.POST("/medicines/:id/image", s.uploadMedicineImage)
			authed.GET("/pharmacyInfo", s.getPharmacyInfo)
			authed.PUT("/pharmacyInfo", s.updatePharmacyInfo)
			authed.POST("/uploadProfileImage", s.uploadProfileImage)
			authed.GET("/pharmacySettings", s.getSettings)
			authed.PUT("/pharmacySettings", s.updateSettings)
			authed.GET("/analytics", s.getAnalytics)
		}
	}
}

const (
	ctxUserID   = "userID"
	ctxUserType = "userType"
)

// requireAuth требует валидный bearer-токен, иначе 401
func (s *Server) requireAuth(c *gin.Context) {
	header := c.GetHeader("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "session expired"})
		return
	}
	claims, err := s.tokens.Parse(token)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "session expired"})
		return
	}
	c.Set(ctxUserID, claims.UserID)
	c.Set(ctxUserType, claims.UserType)
	c.Next()
}

func currentPharmacyID(c *gin.Context) string {
	return c.GetString(ctxUserID)
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// medicineJSON медикамент в выдаче. Количество отдаётся под ключом stock,
// пустые статус и категория опускаются, как делает реальный бэкенд
type medicineJSON struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Description     string  `json:"description,omitempty"`
	Category        string  `json:"category,omitempty"`
	Price           float64 `json:"price"`
	Stock           int     `json:"stock"`
	Status          string  `json:"status,omitempty"`
	ImageURL        string  `json:"image_url,omitempty"`
	PharmacyID      string  `json:"pharmacy_id,omitempty"`
	PharmacyName    string  `json:"pharmacy_name,omitempty"`
	PharmacyPhone   string  `json:"pharmacy_phone,omitempty"`
	PharmacyAddress string  `json:"pharmacy_address,omitempty"`
}

func toMedicineJSON(m repository.MedicineRecord) medicineJSON {
	return medicineJSON{
		ID:          m.ID,
		Name:        m.Name,
		Description: m.Description,
		Category:    m.Category,
		Price:       m.Price,
		Stock:       m.Stock,
		Status:      m.Status,
		ImageURL:    m.ImageURL,
		PharmacyID:  m.PharmacyID,
	}
}

// Search
type searchReq struct {
	MedicineName string `json:"medicineName"`
	Location     string `json:"location"`
}

func (s *Server) searchMedicines(c *gin.Context) {
	var req searchReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid json"})
		return
	}
	results, err := s.search.Search(c, req.MedicineName, req.Location)
	if err != nil {
		c.JSON(mapErrorToStatus(err), gin.H{"message": err.Error()})
		return
	}
	medicines := make([]medicineJSON, 0, len(results))
	for _, r := range results {
		m := toMedicineJSON(r.Medicine)
		m.PharmacyName = r.PharmacyName
		m.PharmacyPhone = r.PharmacyPhone
		m.PharmacyAddress = r.PharmacyAddress
		medicines = append(medicines, m)
	}
	c.JSON(http.StatusOK, gin.H{
		"medicines":  medicines,
		"totalCount": len(medicines),
	})
}

// Auth handlers
type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func authJSON(res *service.AuthResult) gin.H {
	return gin.H{
		"token":    res.Token,
		"userId":   res.UserID,
		"userType": res.UserType,
		"success":  true,
	}
}

func (s *Server) pharmacyLogin(c *gin.Context) {
	var req loginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid json"})
		return
	}
	res, err := s.auth.LoginPharmacy(c, req.Email, req.Password)
	if err != nil {
		c.JSON(mapErrorToStatus(err), gin.H{"message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, authJSON(res))
}

type pharmacyRegisterReq struct {
	Name          string `json:"name"`
	Email         string `json:"email"`
	Password      string `json:"password"`
	Phone         string `json:"phone"`
	LicenseNumber string `json:"licenseNumber"`
	Location      string `json:"location"`
}

func (s *Server) pharmacyRegister(c *gin.Context) {
	var req pharmacyRegisterReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid json"})
		return
	}
	res, err := s.auth.RegisterPharmacy(c, service.PharmacyRegistration{
		Name:          req.Name,
		Email:         req.Email,
		Password:      req.Password,
		Phone:         req.Phone,
		LicenseNumber: req.LicenseNumber,
		Address:       req.Location,
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			c.JSON(http.StatusConflict, gin.H{"message": "a pharmacy with this email already exists"})
			return
		}
		c.JSON(mapErrorToStatus(err), gin.H{"message": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, authJSON(res))
}

func (s *Server) userLogin(c *gin.Context) {
	var req loginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid json"})
		return
	}
	res, err := s.auth.LoginUser(c, req.Email, req.Password)
	if err != nil {
		c.JSON(mapErrorToStatus(err), gin.H{"message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, authJSON(res))
}

type userRegisterReq struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
}

func (s *Server) userRegister(c *gin.Context) {
	var req userRegisterReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid json"})
		return
	}
	res, err := s.auth.RegisterUser(c, req.Name, req.Email, req.Password, req.Phone)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			c.JSON(http.StatusConflict, gin.H{"message": "a user with this email already exists"})
			return
		}
		c.JSON(mapErrorToStatus(err), gin.H{"message": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, authJSON(res))
}

func (s *Server) logout(c *gin.Context) {
	// tokens are stateless, logout is an acknowledgement
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Medicine handlers
func (s *Server) listMedicines(c *gin.Context) {
	records, err := s.inventory.List(c, currentPharmacyID(c))
	if err != nil {
		c.JSON(mapErrorToStatus(err), gin.H{"message": err.Error()})
		return
	}
	medicines := make([]medicineJSON, 0, len(records))
	for _, rec := range records {
		medicines = append(medicines, toMedicineJSON(rec))
	}
	c.JSON(http.StatusOK, gin.H{"medicines": medicines})
}

type medicineReq struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Price       float64 `json:"price"`
	Stock       int     `json:"stock"`
	Status      string  `json:"status"`
}

func (r medicineReq) record() repository.MedicineRecord {
	return repository.MedicineRecord{
		Name:        r.Name,
		Description: r.Description,
		Category:    r.Category,
		Price:       r.Price,
		Stock:       r.Stock,
		Status:      r.Status,
	}
}

func (s *Server) addMedicine(c *gin.Context) {
	var req medicineReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid json"})
		return
	}
	m, err := s.inventory.Add(c, currentPharmacyID(c), req.record())
	if err != nil {
		c.JSON(mapErrorToStatus(err), gin.H{"message": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "medicine": toMedicineJSON(*m)})
}

func (s *Server) updateMedicine(c *gin.Context) {
	var req medicineReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid json"})
		return
	}
	if _, err := s.inventory.Update(c, currentPharmacyID(c), c.Param("id"), req.record()); err != nil {
		c.JSON(mapErrorToStatus(err), gin.H{"message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) deleteMedicine(c *gin.Context) {
	if err := s.inventory.Delete(c, currentPharmacyID(c), c.Param("id")); err != nil {
		c.JSON(mapErrorToStatus(err), gin.H{"message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

type imageReq struct {
	Image string `json:"image"`
}

func (s *Server) uploadMedicineImage(c *gin.Context) {
	var req imageReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid json"})
		return
	}
	if err := s.profile.ValidateImage(req.Image); err != nil {
		c.JSON(mapErrorToStatus(err), gin.H{"message": err.Error()})
		return
	}
	m, err := s.inventory.AttachImage(c, currentPharmacyID(c), c.Param("id"), req.Image)
	if err != nil {
		c.JSON(mapErrorToStatus(err), gin.H{"message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "medicine": toMedicineJSON(*m)})
}

// Profile handlers
func (s *Server) getPharmacyInfo(c *gin.Context) {
	p, err := s.profile.Get(c, currentPharmacyID(c))
	if err != nil {
		c.JSON(mapErrorToStatus(err), gin.H{"message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"pharmacy": gin.H{
		"id":             p.ID,
		"name":           p.Name,
		"email":          p.Email,
		"phone":          p.Phone,
		"address":        p.Address,
		"license_number": p.LicenseNumber,
		"profile_image":  p.ProfileImage,
		"description":    p.Description,
	}})
}

type pharmacyUpdateReq struct {
	Name          string `json:"name"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	Location      string `json:"location"`
	LicenseNumber string `json:"license_number"`
	Description   string `json:"description"`
}

func (s *Server) updatePharmacyInfo(c *gin.Context) {
	var req pharmacyUpdateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid json"})
		return
	}
	_, err := s.profile.Update(c, currentPharmacyID(c), service.ProfileUpdate{
		Name:          req.Name,
		Email:         req.Email,
		Phone:         req.Phone,
		Address:       req.Location,
		LicenseNumber: req.LicenseNumber,
		Description:   req.Description,
	})
	if err != nil {
		c.JSON(mapErrorToStatus(err), gin.H{"message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

type profileImageReq struct {
	ProfileImage string `json:"profile_image"`
}

func (s *Server) uploadProfileImage(c *gin.Context) {
	var req profileImageReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid json"})
		return
	}
	if err := s.profile.SetProfileImage(c, currentPharmacyID(c), req.ProfileImage); err != nil {
		c.JSON(mapErrorToStatus(err), gin.H{"message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "profile image updated"})
}

// Settings handlers
func (s *Server) getSettings(c *gin.Context) {
	rec, err := s.profile.GetSettings(c, currentPharmacyID(c))
	if err != nil {
		c.JSON(mapErrorToStatus(err), gin.H{"message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"settings": gin.H{
		"email_notifications": rec.EmailNotifications,
		"sms_notifications":   rec.SMSNotifications,
		"opening_time":        rec.OpeningTime,
		"closing_time":        rec.ClosingTime,
	}})
}

type settingsReq struct {
	EmailNotifications bool   `json:"email_notifications"`
	SMSNotifications   bool   `json:"sms_notifications"`
	OpeningTime        string `json:"opening_time"`
	ClosingTime        string `json:"closing_time"`
}

func (s *Server) updateSettings(c *gin.Context) {
	var req settingsReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid json"})
		return
	}
	err := s.profile.UpdateSettings(c, currentPharmacyID(c), repository.SettingsRecord{
		EmailNotifications: req.EmailNotifications,
		SMSNotifications:   req.SMSNotifications,
		OpeningTime:        req.OpeningTime,
		ClosingTime:        req.ClosingTime,
	})
	if err != nil {
		c.JSON(mapErrorToStatus(err), gin.H{"message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Analytics
func (s *Server) getAnalytics(c *gin.Context) {
	a, err := s.analytics.Compute(c, currentPharmacyID(c))
	if err != nil {
		c.JSON(mapErrorToStatus(err), gin.H{"message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, a)
}

// Geography handlers
func (s *Server) countries(c *gin.Context) {
	out, err := s.geography.Countries(c)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) states(c *gin.Context) {
	out, err := s.geography.States(c, c.Query("country"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) cities(c *gin.Context) {
	out, err := s.geography.Cities(c, c.Query("country"), c.Query("state"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, out)
}

func mapErrorToStatus(err error) int {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrBadCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, repository.ErrDuplicateEmail):
		return http.StatusConflict
	case errors.Is(err, service.ErrImageTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, service.ErrUnsupportedImage):
		return http.StatusUnsupportedMediaType
	default:
		return http.StatusInternalServerError
	}
}
