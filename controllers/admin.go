package controllers

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/servease/marketplace/metrics"
	"github.com/servease/marketplace/models"
	"github.com/servease/marketplace/providers"
)

// AdminController covers user administration and the provider approval queue.
type AdminController struct {
	DB       *gorm.DB
	Workflow *providers.Workflow
	Dev      bool
}

func NewAdminController(db *gorm.DB, wf *providers.Workflow, dev bool) *AdminController {
	return &AdminController{DB: db, Workflow: wf, Dev: dev}
}

// ListUsers returns every account, newest first.
func (ctl *AdminController) ListUsers(c *fiber.Ctx) error {
	var users []models.User
	if err := ctl.DB.Order("created_at desc").Find(&users).Error; err != nil {
		return respondStoreError(c, ctl.Dev, "Error fetching users", err)
	}
	return c.JSON(users)
}

// PendingProviders returns unapproved providers, oldest application first.
func (ctl *AdminController) PendingProviders(c *fiber.Ctx) error {
	var pending []models.Provider
	err := ctl.DB.
		Preload("User").
		Where("is_approved = ?", false).
		Order("created_at asc").
		Find(&pending).Error
	if err != nil {
		return respondStoreError(c, ctl.Dev, "Error fetching pending providers", err)
	}
	return c.JSON(pending)
}

// ApproveProvider marks a provider as approved. Approving twice is a no-op.
func (ctl *AdminController) ApproveProvider(c *fiber.Ctx) error {
	if err := ctl.Workflow.Approve(c.Context(), c.Params("id")); err != nil {
		return respondEngineError(c, ctl.Dev, err)
	}
	metrics.ProviderDecisions.WithLabelValues("approved").Inc()
	return c.JSON(fiber.Map{"message": "Provider approved successfully"})
}

// RejectProvider removes the provider record and its user account.
func (ctl *AdminController) RejectProvider(c *fiber.Ctx) error {
	if err := ctl.Workflow.Reject(c.Context(), c.Params("id")); err != nil {
		return respondEngineError(c, ctl.Dev, err)
	}
	metrics.ProviderDecisions.WithLabelValues("rejected").Inc()
	return c.JSON(fiber.Map{"message": "Provider deleted successfully"})
}
