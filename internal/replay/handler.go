package replay

import (
	"fmt"

	"gradation-backend/internal/audit"
	"gradation-backend/internal/auth"
	"gradation-backend/internal/database"
	"gradation-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

// POST /api/replay
//
// Admin-only. Returns 200 with the run report either way; Committed
// tells the caller whether anything was written.
func RunReplayHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		result, err := Run(database.DB)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "replay run failed")
		}

		userID, _ := c.Locals(auth.CtxUserIDKey).(uint)
		var user models.User
		_ = database.DB.First(&user, "id = ?", userID).Error

		_ = audit.WriteLog(audit.LogOptions{
			UserID:      userID,
			UserName:    user.Name,
			EntityType:  "replay_run",
			EntityID:    0,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("Replay run: %d nodes emitted, %d failures, committed=%t", result.SuccessCount, result.ErrorCount, result.Committed),
			After:       result,
		})

		return c.JSON(result)
	}
}
