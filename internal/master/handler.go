package master

import (
	"gradation-backend/internal/database"
	"gradation-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type CodeResponse struct {
	Code int    `json:"code"`
	Name string `json:"name"`
}

// GET /api/codes?kind=GSPEC
//
// Dropdown choices for the spec and color code kinds. Disabled codes
// stay out of the list but remain valid on historical rows.
func ListCodesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		kind := models.CodeKind(c.Query("kind"))
		if kind != models.CodeKindSpec && kind != models.CodeKindColor {
			return fiber.NewError(fiber.StatusBadRequest, "kind must be GSPEC or GCOLOR")
		}

		var codes []models.CodeMaster
		if err := database.DB.
			Where("kind = ? AND disabled = ?", kind, false).
			Order("code ASC").
			Find(&codes).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "codes could not be listed")
		}

		resp := make([]CodeResponse, 0, len(codes))
		for _, code := range codes {
			resp = append(resp, CodeResponse{Code: code.Code, Name: code.Name})
		}

		return c.JSON(resp)
	}
}
