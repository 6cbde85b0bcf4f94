package ledger

import (
	"errors"
	"fmt"
	"time"

	"gradation-backend/internal/auth"
	"gradation-backend/internal/database"
	"gradation-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

// Shared plumbing for the ledger handlers: service-error translation,
// parameter parsing and the caller identity used for audit rows.

func toHTTPError(err error) error {
	var nf *NotFoundError
	if errors.As(err, &nf) {
		return fiber.NewError(fiber.StatusNotFound, nf.Error())
	}

	var or *OverReturnError
	var is *InvalidSplitError
	var oi *OverIssueError
	var hd *HasDependentsError
	if errors.As(err, &or) || errors.As(err, &is) || errors.As(err, &oi) || errors.As(err, &hd) {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	return fiber.NewError(fiber.StatusInternalServerError, "operation failed")
}

func parseIDParam(c *fiber.Ctx) (uint, error) {
	var id uint
	if _, err := fmt.Sscan(c.Params("id"), &id); err != nil || id == 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "invalid ID")
	}
	return id, nil
}

func parseDate(s string) (time.Time, error) {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fiber.NewError(fiber.StatusBadRequest, "date must be 'YYYY-MM-DD'")
	}
	return d, nil
}

func parseOptionalDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	d, err := parseDate(s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func currentUser(c *fiber.Ctx) (uint, string) {
	userID, ok := c.Locals(auth.CtxUserIDKey).(uint)
	if !ok {
		return 0, ""
	}
	var user models.User
	if err := database.DB.First(&user, "id = ?", userID).Error; err != nil {
		return userID, ""
	}
	return userID, user.Name
}

func fmtDate(t time.Time) string {
	return t.Format("2006-01-02")
}
