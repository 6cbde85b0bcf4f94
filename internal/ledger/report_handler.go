package ledger

import (
	"fmt"

	"gradation-backend/internal/database"

	"github.com/gofiber/fiber/v2"
)

// GET /api/reports/processing-matrix
func ProcessingMatrixHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		result, err := ProcessingMatrix(database.DB)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "processing matrix could not be computed")
		}
		return c.JSON(result)
	}
}

// GET /api/reports/final-shipments?ship_from=...&ship_to=...&order_from=...&order_to=...&flag=0
func FinalShipmentMatrixHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var f FinalShipmentFilter
		var err error

		if f.ShipDateFrom, err = parseOptionalDate(c.Query("ship_from")); err != nil {
			return err
		}
		if f.ShipDateTo, err = parseOptionalDate(c.Query("ship_to")); err != nil {
			return err
		}
		if f.OrderDateFrom, err = parseOptionalDate(c.Query("order_from")); err != nil {
			return err
		}
		if f.OrderDateTo, err = parseOptionalDate(c.Query("order_to")); err != nil {
			return err
		}
		if s := c.Query("flag"); s != "" {
			var flag int
			if _, err := fmt.Sscan(s, &flag); err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "invalid flag")
			}
			f.Flag = &flag
		}

		result, err := FinalShipmentMatrix(database.DB, f)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "final shipment report could not be computed")
		}
		return c.JSON(result)
	}
}
