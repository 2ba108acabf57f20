package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/servease/marketplace/middleware"
	"github.com/servease/marketplace/models"
	"github.com/servease/marketplace/utils"
)

type AuthController struct {
	DB     *gorm.DB
	Secret string
	Dev    bool
}

func NewAuthController(db *gorm.DB, secret string, dev bool) *AuthController {
	return &AuthController{DB: db, Secret: secret, Dev: dev}
}

type registerRequest struct {
	Name            string  `json:"name" validate:"required"`
	Email           string  `json:"email" validate:"required,email"`
	Password        string  `json:"password" validate:"required,min=6"`
	Phone           *string `json:"phone"`
	Role            string  `json:"role"`
	ServiceType     string  `json:"serviceType"`
	Description     string  `json:"description"`
	ExperienceYears *int    `json:"experienceYears"`
	Location        *string `json:"location"`
}

// Register creates a user account, and for the provider role also the
// provider record, in one transaction.
func (ctl *AuthController) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Cannot parse JSON")
	}
	if err := validate.Struct(req); err != nil {
		return badRequest(c, "Name, email and password are required")
	}

	role := models.RoleUser
	if req.Role != "" {
		parsed, err := models.ParseRole(req.Role)
		if err != nil || parsed == models.RoleAdmin {
			return badRequest(c, "Role must be user or provider")
		}
		role = parsed
	}
	if role == models.RoleProvider && req.ServiceType == "" {
		return badRequest(c, "Service type is required for providers")
	}

	var existing models.User
	if err := ctl.DB.Select("id").First(&existing, "email = ?", req.Email).Error; err == nil {
		return c.Status(fiber.StatusConflict).JSON(utils.ErrorResponse{Message: "User with this email already exists"})
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return respondStoreError(c, ctl.Dev, "Error registering user", err)
	}

	user := models.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hashed),
		Phone:        req.Phone,
		Role:         role,
		Location:     req.Location,
	}

	err = ctl.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		if role != models.RoleProvider {
			return nil
		}
		provider := models.Provider{
			UserID:          user.ID,
			ServiceType:     req.ServiceType,
			Description:     req.Description,
			ExperienceYears: req.ExperienceYears,
		}
		return tx.Create(&provider).Error
	})
	if err != nil {
		return respondStoreError(c, ctl.Dev, "Error registering user", err)
	}

	token, err := utils.IssueToken(ctl.Secret, &user)
	if err != nil {
		return respondStoreError(c, ctl.Dev, "Failed to generate token", err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Registration successful",
		"token":   token,
		"user": fiber.Map{
			"id":             user.ID,
			"name":           user.Name,
			"email":          user.Email,
			"role":           user.Role,
			"profilePicture": user.ProfilePictureURL,
		},
	})
}

type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (ctl *AuthController) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Cannot parse JSON")
	}
	if err := validate.Struct(req); err != nil {
		return badRequest(c, "Email and password are required")
	}

	var user models.User
	if err := ctl.DB.First(&user, "email = ?", req.Email).Error; err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(utils.ErrorResponse{Message: "Invalid email or password"})
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(utils.ErrorResponse{Message: "Invalid email or password"})
	}

	var provider *models.Provider
	if user.Role == models.RoleProvider {
		var p models.Provider
		if err := ctl.DB.First(&p, "user_id = ?", user.ID).Error; err == nil {
			provider = &p
		}
	}

	token, err := utils.IssueToken(ctl.Secret, &user)
	if err != nil {
		return respondStoreError(c, ctl.Dev, "Failed to generate token", err)
	}

	return c.JSON(fiber.Map{
		"token": token,
		"user": fiber.Map{
			"id":             user.ID,
			"name":           user.Name,
			"email":          user.Email,
			"role":           user.Role,
			"profilePicture": user.ProfilePictureURL,
			"provider":       provider,
		},
	})
}

// GetProfile assembles the profile view: the user, the provider sub-profile
// with its services when present, and the booking history.
func (ctl *AuthController) GetProfile(c *fiber.Ctx) error {
	userID, _ := middleware.CallerID(c)

	var user models.User
	if err := ctl.DB.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound(c, "User not found")
		}
		return respondStoreError(c, ctl.Dev, "Error fetching user profile", err)
	}

	var provider *models.Provider
	if user.Role == models.RoleProvider {
		var p models.Provider
		err := ctl.DB.Preload("Services.Images").First(&p, "user_id = ?", user.ID).Error
		if err == nil {
			provider = &p
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return respondStoreError(c, ctl.Dev, "Error fetching user profile", err)
		}
	}

	var bookings []models.Booking
	err := ctl.DB.
		Preload("Service").
		Preload("Provider.User").
		Where("user_id = ?", user.ID).
		Order("booking_date desc").
		Find(&bookings).Error
	if err != nil {
		return respondStoreError(c, ctl.Dev, "Error fetching user profile", err)
	}

	return c.JSON(fiber.Map{
		"id":             user.ID,
		"name":           user.Name,
		"email":          user.Email,
		"phone":          user.Phone,
		"profilePicture": user.ProfilePictureURL,
		"role":           user.Role,
		"isVerified":     user.IsVerified,
		"location":       user.Location,
		"provider":       provider,
		"bookings":       bookings,
	})
}

type updateProfileRequest struct {
	Name     *string `json:"name"`
	Phone    *string `json:"phone"`
	Location *string `json:"location"`
}

func (ctl *AuthController) UpdateProfile(c *fiber.Ctx) error {
	userID, _ := middleware.CallerID(c)

	var req updateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Cannot parse JSON")
	}
	if req.Name == nil && req.Phone == nil && req.Location == nil {
		return badRequest(c, "At least one field must be provided for update")
	}

	updates := map[string]any{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Phone != nil {
		updates["phone"] = req.Phone
	}
	if req.Location != nil {
		updates["location"] = req.Location
	}

	res := ctl.DB.Model(&models.User{}).Where("id = ?", userID).Updates(updates)
	if res.Error != nil {
		return respondStoreError(c, ctl.Dev, "Error updating user profile", res.Error)
	}
	if res.RowsAffected == 0 {
		return notFound(c, "User not found")
	}

	var user models.User
	if err := ctl.DB.First(&user, "id = ?", userID).Error; err != nil {
		return respondStoreError(c, ctl.Dev, "Error updating user profile", err)
	}
	return c.JSON(user)
}
