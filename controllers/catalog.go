package controllers

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/servease/marketplace/cache"
	"github.com/servease/marketplace/middleware"
	"github.com/servease/marketplace/models"
)

// CatalogController serves the public service/provider catalog and the
// provider-side service management endpoints.
type CatalogController struct {
	DB    *gorm.DB
	Cache *cache.Cache
	Dev   bool
}

func NewCatalogController(db *gorm.DB, c *cache.Cache, dev bool) *CatalogController {
	return &CatalogController{DB: db, Cache: c, Dev: dev}
}

// sortColumn resolves the sortBy query parameter against the allowed set.
// Anything outside the set falls back to newest-first.
func sortColumn(sortBy string) string {
	switch sortBy {
	case "base_price", "title", "created_at":
		return "services." + sortBy
	case "rating":
		return "providers.rating"
	default:
		return "services.created_at"
	}
}

func sortDirection(order string) string {
	if strings.EqualFold(order, "asc") {
		return "asc"
	}
	return "desc"
}

func pageParams(c *fiber.Ctx) (page, limit int) {
	page, _ = strconv.Atoi(c.Query("page", "1"))
	if page < 1 {
		page = 1
	}
	limit, _ = strconv.Atoi(c.Query("limit", "10"))
	if limit < 1 || limit > 100 {
		limit = 10
	}
	return page, limit
}

type catalogPage struct {
	Services   []models.Service `json:"services"`
	Pagination fiber.Map        `json:"pagination"`
}

// ListServices is the public catalog: active services from approved providers,
// filtered, sorted and paginated. Responses are cached per URL.
func (ctl *CatalogController) ListServices(c *fiber.Ctx) error {
	cacheKey := "catalog:" + c.OriginalURL()
	var cached catalogPage
	if ctl.Cache.GetJSON(c.Context(), cacheKey, &cached) {
		return c.JSON(cached)
	}

	q := ctl.DB.Model(&models.Service{}).
		Joins("JOIN providers ON providers.id = services.provider_id").
		Joins("JOIN users ON users.id = providers.user_id").
		Where("services.is_active = ? AND providers.is_approved = ?", true, true)

	if category := c.Query("category"); category != "" {
		q = q.Where("services.category = ?", category)
	}
	if location := c.Query("location"); location != "" {
		q = q.Where("users.location ILIKE ?", "%"+location+"%")
	}
	if minPrice := c.Query("minPrice"); minPrice != "" {
		if v, err := strconv.ParseFloat(minPrice, 64); err == nil {
			q = q.Where("services.base_price >= ?", v)
		}
	}
	if maxPrice := c.Query("maxPrice"); maxPrice != "" {
		if v, err := strconv.ParseFloat(maxPrice, 64); err == nil {
			q = q.Where("services.base_price <= ?", v)
		}
	}
	if search := c.Query("search"); search != "" {
		pat := "%" + search + "%"
		q = q.Where("services.title ILIKE ? OR services.description ILIKE ? OR providers.service_type ILIKE ?", pat, pat, pat)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return respondStoreError(c, ctl.Dev, "Error fetching services", err)
	}

	page, limit := pageParams(c)
	var services []models.Service
	err := q.
		Preload("Provider.User").
		Preload("Images").
		Order(sortColumn(c.Query("sortBy")) + " " + sortDirection(c.Query("order"))).
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&services).Error
	if err != nil {
		return respondStoreError(c, ctl.Dev, "Error fetching services", err)
	}

	resp := catalogPage{
		Services: services,
		Pagination: fiber.Map{
			"page":       page,
			"limit":      limit,
			"total":      total,
			"totalPages": (total + int64(limit) - 1) / int64(limit),
		},
	}
	ctl.Cache.SetJSON(c.Context(), cacheKey, resp)
	return c.JSON(resp)
}

// GetService returns one active service with its provider, images and reviews.
func (ctl *CatalogController) GetService(c *fiber.Ctx) error {
	var svc models.Service
	err := ctl.DB.
		Preload("Provider.User").
		Preload("Images").
		First(&svc, "id = ? AND is_active = ?", c.Params("id"), true).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound(c, "Service not found")
		}
		return respondStoreError(c, ctl.Dev, "Error fetching service", err)
	}

	var reviews []models.Review
	err = ctl.DB.
		Preload("User").
		Where("provider_id = ?", svc.ProviderID).
		Order("created_at desc").
		Find(&reviews).Error
	if err != nil {
		return respondStoreError(c, ctl.Dev, "Error fetching service", err)
	}

	return c.JSON(fiber.Map{
		"service": svc,
		"reviews": reviews,
	})
}

type serviceImageInput struct {
	ImageURL  string `json:"imageUrl" validate:"required,url"`
	IsPrimary bool   `json:"isPrimary"`
}

type createServiceRequest struct {
	Title           string              `json:"title" validate:"required,min=3,max=120"`
	Description     string              `json:"description" validate:"required"`
	Category        string              `json:"category" validate:"required"`
	BasePrice       float64             `json:"basePrice" validate:"required,gt=0"`
	DurationMinutes *int                `json:"durationMinutes" validate:"omitempty,gt=0"`
	Images          []serviceImageInput `json:"images" validate:"omitempty,dive"`
}

// CreateService lets an approved provider publish a new service. Images are
// written in the same transaction, with at most one marked primary.
func (ctl *CatalogController) CreateService(c *fiber.Ctx) error {
	var req createServiceRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Cannot parse JSON")
	}
	if err := validate.Struct(req); err != nil {
		return badRequest(c, "Invalid service details: "+err.Error())
	}

	userID, _ := middleware.CallerID(c)
	var prov models.Provider
	if err := ctl.DB.First(&prov, "user_id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"message": "User is not a registered provider",
			})
		}
		return respondStoreError(c, ctl.Dev, "Error creating service", err)
	}
	if !prov.IsApproved {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"message": "Provider is not approved yet",
		})
	}

	svc := models.Service{
		ProviderID:      prov.ID,
		Title:           req.Title,
		Description:     req.Description,
		Category:        req.Category,
		BasePrice:       req.BasePrice,
		DurationMinutes: req.DurationMinutes,
		IsActive:        true,
	}

	err := ctl.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&svc).Error; err != nil {
			return err
		}
		primarySeen := false
		for _, in := range req.Images {
			img := models.ServiceImage{
				ServiceID: svc.ID,
				ImageURL:  in.ImageURL,
				IsPrimary: in.IsPrimary && !primarySeen,
			}
			if img.IsPrimary {
				primarySeen = true
			}
			if err := tx.Create(&img).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return respondStoreError(c, ctl.Dev, "Error creating service", err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":   "Service created successfully",
		"serviceId": svc.ID,
	})
}

type updateServiceRequest struct {
	Title           *string  `json:"title" validate:"omitempty,min=3,max=120"`
	Description     *string  `json:"description"`
	Category        *string  `json:"category"`
	BasePrice       *float64 `json:"basePrice" validate:"omitempty,gt=0"`
	DurationMinutes *int     `json:"durationMinutes" validate:"omitempty,gt=0"`
	IsActive        *bool    `json:"isActive"`
}

// UpdateService applies a partial update to a service owned by the caller.
// Setting isActive=false is the only way a service leaves the catalog.
func (ctl *CatalogController) UpdateService(c *fiber.Ctx) error {
	var req updateServiceRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Cannot parse JSON")
	}
	if err := validate.Struct(req); err != nil {
		return badRequest(c, "Invalid service details: "+err.Error())
	}

	userID, _ := middleware.CallerID(c)
	var prov models.Provider
	if err := ctl.DB.First(&prov, "user_id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"message": "User is not a registered provider",
			})
		}
		return respondStoreError(c, ctl.Dev, "Error updating service", err)
	}

	var svc models.Service
	if err := ctl.DB.First(&svc, "id = ?", c.Params("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound(c, "Service not found")
		}
		return respondStoreError(c, ctl.Dev, "Error updating service", err)
	}
	if svc.ProviderID != prov.ID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"message": "You can only modify your own services",
		})
	}

	updates := map[string]any{}
	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Category != nil {
		updates["category"] = *req.Category
	}
	if req.BasePrice != nil {
		updates["base_price"] = *req.BasePrice
	}
	if req.DurationMinutes != nil {
		updates["duration_minutes"] = *req.DurationMinutes
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if len(updates) == 0 {
		return badRequest(c, "No fields to update")
	}

	if err := ctl.DB.Model(&svc).Updates(updates).Error; err != nil {
		return respondStoreError(c, ctl.Dev, "Error updating service", err)
	}
	return c.JSON(fiber.Map{"message": "Service updated successfully"})
}

// DeactivateService hides a service from the catalog without deleting it.
// Existing bookings keep their service reference.
func (ctl *CatalogController) DeactivateService(c *fiber.Ctx) error {
	userID, _ := middleware.CallerID(c)
	var prov models.Provider
	if err := ctl.DB.First(&prov, "user_id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"message": "User is not a registered provider",
			})
		}
		return respondStoreError(c, ctl.Dev, "Error deactivating service", err)
	}

	res := ctl.DB.Model(&models.Service{}).
		Where("id = ? AND provider_id = ?", c.Params("id"), prov.ID).
		Update("is_active", false)
	if res.Error != nil {
		return respondStoreError(c, ctl.Dev, "Error deactivating service", res.Error)
	}
	if res.RowsAffected == 0 {
		return notFound(c, "Service not found")
	}
	return c.JSON(fiber.Map{"message": "Service deactivated successfully"})
}

// ListProviders is the public provider directory.
func (ctl *CatalogController) ListProviders(c *fiber.Ctx) error {
	q := ctl.DB.Model(&models.Provider{}).
		Preload("User").
		Preload("Services", "is_active = ?", true)

	if serviceType := c.Query("serviceType"); serviceType != "" {
		q = q.Where("service_type ILIKE ?", "%"+serviceType+"%")
	}
	if approved := c.Query("isApproved"); approved != "" {
		q = q.Where("is_approved = ?", approved == "true")
	} else {
		q = q.Where("is_approved = ?", true)
	}
	if minRating := c.Query("minRating"); minRating != "" {
		if v, err := strconv.ParseFloat(minRating, 64); err == nil {
			q = q.Where("rating >= ?", v)
		}
	}

	var providers []models.Provider
	if err := q.Order("rating desc").Find(&providers).Error; err != nil {
		return respondStoreError(c, ctl.Dev, "Error fetching providers", err)
	}
	return c.JSON(providers)
}

// GetProvider returns one provider with active services and reviews.
func (ctl *CatalogController) GetProvider(c *fiber.Ctx) error {
	var prov models.Provider
	err := ctl.DB.
		Preload("User").
		Preload("Services", "is_active = ?", true).
		Preload("Services.Images").
		First(&prov, "id = ?", c.Params("id")).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound(c, "Provider not found")
		}
		return respondStoreError(c, ctl.Dev, "Error fetching provider", err)
	}

	var reviews []models.Review
	err = ctl.DB.
		Preload("User").
		Where("provider_id = ?", prov.ID).
		Order("created_at desc").
		Find(&reviews).Error
	if err != nil {
		return respondStoreError(c, ctl.Dev, "Error fetching provider", err)
	}

	return c.JSON(fiber.Map{
		"provider": prov,
		"reviews":  reviews,
	})
}

type createProviderRequest struct {
	ServiceType     string `json:"serviceType" validate:"required"`
	Description     string `json:"description"`
	ExperienceYears *int   `json:"experienceYears" validate:"omitempty,gte=0"`
}

// CreateProvider registers a provider record for the calling user. Users hold
// at most one provider record, and only provider-role accounts qualify.
func (ctl *CatalogController) CreateProvider(c *fiber.Ctx) error {
	var req createProviderRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Cannot parse JSON")
	}
	if err := validate.Struct(req); err != nil {
		return badRequest(c, "Invalid provider details: "+err.Error())
	}

	userID, _ := middleware.CallerID(c)
	role, _ := middleware.CallerRole(c)
	if role != models.RoleProvider {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"message": "Only provider accounts can register a provider profile",
		})
	}

	var existing models.Provider
	err := ctl.DB.First(&existing, "user_id = ?", userID).Error
	if err == nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"message": "Provider profile already exists",
		})
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return respondStoreError(c, ctl.Dev, "Error creating provider", err)
	}

	prov := models.Provider{
		UserID:          userID,
		ServiceType:     req.ServiceType,
		Description:     req.Description,
		ExperienceYears: req.ExperienceYears,
	}
	if err := ctl.DB.Create(&prov).Error; err != nil {
		return respondStoreError(c, ctl.Dev, "Error creating provider", err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":    "Provider profile created, pending approval",
		"providerId": prov.ID,
	})
}

type updateProviderRequest struct {
	ServiceType     *string  `json:"serviceType"`
	Description     *string  `json:"description"`
	ExperienceYears *int     `json:"experienceYears" validate:"omitempty,gte=0"`
	Rating          *float64 `json:"rating" validate:"omitempty,gte=0,lte=5"`
}

// UpdateProvider is the admin-side partial update of a provider record.
func (ctl *CatalogController) UpdateProvider(c *fiber.Ctx) error {
	var req updateProviderRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Cannot parse JSON")
	}
	if err := validate.Struct(req); err != nil {
		return badRequest(c, "Invalid provider details: "+err.Error())
	}

	var prov models.Provider
	if err := ctl.DB.First(&prov, "id = ?", c.Params("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound(c, "Provider not found")
		}
		return respondStoreError(c, ctl.Dev, "Error updating provider", err)
	}

	updates := map[string]any{}
	if req.ServiceType != nil {
		updates["service_type"] = *req.ServiceType
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.ExperienceYears != nil {
		updates["experience_years"] = *req.ExperienceYears
	}
	if req.Rating != nil {
		updates["rating"] = *req.Rating
	}
	if len(updates) == 0 {
		return badRequest(c, "No fields to update")
	}

	if err := ctl.DB.Model(&prov).Updates(updates).Error; err != nil {
		return respondStoreError(c, ctl.Dev, "Error updating provider", err)
	}
	return c.JSON(fiber.Map{"message": "Provider updated successfully"})
}
