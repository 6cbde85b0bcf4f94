package ledger

import (
	"fmt"

	"gradation-backend/internal/audit"
	"gradation-backend/internal/database"
	"gradation-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type WorkOrderRequest struct {
	SpecCode    int    `json:"spec_code"`
	ColorCode   int    `json:"color_code"`
	RequestDate string `json:"request_date"` // "2026-08-31"
	RequestQty  int    `json:"request_qty"`
}

type WorkOrderResponse struct {
	ID          uint   `json:"id"`
	SlipNo      string `json:"slip_no"`
	SpecCode    int    `json:"spec_code"`
	ColorCode   int    `json:"color_code"`
	Vendor      int    `json:"vendor"`
	RequestDate string `json:"request_date"`
	RequestQty  int    `json:"request_qty"`
	Remaining   int    `json:"remaining"`
	CreatedAt   string `json:"created_at"`
}

func workOrderResponse(wo *models.WorkOrder, remaining int) WorkOrderResponse {
	return WorkOrderResponse{
		ID:          wo.ID,
		SlipNo:      wo.SlipNo,
		SpecCode:    wo.SpecCode,
		ColorCode:   wo.ColorCode,
		Vendor:      wo.Vendor,
		RequestDate: fmtDate(wo.RequestDate),
		RequestQty:  wo.RequestQty,
		Remaining:   remaining,
		CreatedAt:   wo.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

func (r WorkOrderRequest) toInput() (WorkOrderInput, error) {
	if r.RequestQty <= 0 {
		return WorkOrderInput{}, fiber.NewError(fiber.StatusBadRequest, "request_qty must be greater than 0")
	}
	d, err := parseDate(r.RequestDate)
	if err != nil {
		return WorkOrderInput{}, err
	}
	return WorkOrderInput{
		SpecCode:    r.SpecCode,
		ColorCode:   r.ColorCode,
		RequestDate: d,
		RequestQty:  r.RequestQty,
	}, nil
}

// POST /api/work-orders
func CreateWorkOrderHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body WorkOrderRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}

		in, err := body.toInput()
		if err != nil {
			return err
		}

		wo, err := CreateWorkOrder(database.DB, in)
		if err != nil {
			return toHTTPError(err)
		}

		userID, userName := currentUser(c)
		_ = audit.WriteLog(audit.LogOptions{
			UserID:      userID,
			UserName:    userName,
			EntityType:  "work_order",
			EntityID:    wo.ID,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("Work order %s created: spec %d color %d qty %d", wo.SlipNo, wo.SpecCode, wo.ColorCode, wo.RequestQty),
			After:       wo,
		})

		return c.Status(fiber.StatusCreated).JSON(workOrderResponse(wo, wo.RequestQty))
	}
}

// GET /api/work-orders?spec=1&color=2&date_from=...&date_to=...&open=true
func ListWorkOrdersHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := database.DB.Model(&models.WorkOrder{})

		if s := c.Query("spec"); s != "" {
			dbq = dbq.Where("spec_code = ?", s)
		}
		if s := c.Query("color"); s != "" {
			dbq = dbq.Where("color_code = ?", s)
		}
		if s := c.Query("date_from"); s != "" {
			d, err := parseDate(s)
			if err != nil {
				return err
			}
			dbq = dbq.Where("request_date >= ?", d)
		}
		if s := c.Query("date_to"); s != "" {
			d, err := parseDate(s)
			if err != nil {
				return err
			}
			dbq = dbq.Where("request_date <= ?", d)
		}

		var orders []models.WorkOrder
		if err := dbq.Order("request_date DESC, id DESC").Find(&orders).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "work orders could not be listed")
		}

		openOnly := c.Query("open") == "true"

		resp := make([]WorkOrderResponse, 0, len(orders))
		for i := range orders {
			remaining, err := RemainingToProcess(database.DB, orders[i].ID)
			if err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "remaining quantity could not be computed")
			}
			if openOnly && remaining <= 0 {
				continue
			}
			resp = append(resp, workOrderResponse(&orders[i], remaining))
		}

		return c.JSON(resp)
	}
}

// GET /api/work-orders/:id
func GetWorkOrderHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseIDParam(c)
		if err != nil {
			return err
		}

		var wo models.WorkOrder
		if err := database.DB.Preload("ReturnBatches").First(&wo, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "work order not found")
		}

		remaining, err := RemainingToProcess(database.DB, wo.ID)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "remaining quantity could not be computed")
		}

		return c.JSON(workOrderResponse(&wo, remaining))
	}
}

// GET /api/work-orders/:id/remaining
func WorkOrderRemainingHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseIDParam(c)
		if err != nil {
			return err
		}

		var wo models.WorkOrder
		if err := database.DB.First(&wo, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "work order not found")
		}

		remaining, err := RemainingToProcess(database.DB, id)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "remaining quantity could not be computed")
		}

		return c.JSON(fiber.Map{
			"work_order_id": id,
			"request_qty":   wo.RequestQty,
			"remaining":     remaining,
		})
	}
}

// PUT /api/work-orders/:id
func UpdateWorkOrderHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseIDParam(c)
		if err != nil {
			return err
		}

		var body WorkOrderRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}

		in, err := body.toInput()
		if err != nil {
			return err
		}

		var before models.WorkOrder
		if err := database.DB.First(&before, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "work order not found")
		}

		wo, err := UpdateWorkOrder(database.DB, id, in)
		if err != nil {
			return toHTTPError(err)
		}

		userID, userName := currentUser(c)
		_ = audit.WriteLog(audit.LogOptions{
			UserID:      userID,
			UserName:    userName,
			EntityType:  "work_order",
			EntityID:    wo.ID,
			Action:      models.AuditActionUpdate,
			Description: fmt.Sprintf("Work order %s updated", wo.SlipNo),
			Before:      before,
			After:       wo,
		})

		remaining, err := RemainingToProcess(database.DB, wo.ID)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "remaining quantity could not be computed")
		}

		return c.JSON(workOrderResponse(wo, remaining))
	}
}

// DELETE /api/work-orders/:id
func DeleteWorkOrderHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseIDParam(c)
		if err != nil {
			return err
		}

		var before models.WorkOrder
		if err := database.DB.First(&before, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "work order not found")
		}

		if err := DeleteWorkOrder(database.DB, id); err != nil {
			return toHTTPError(err)
		}

		userID, userName := currentUser(c)
		_ = audit.WriteLog(audit.LogOptions{
			UserID:      userID,
			UserName:    userName,
			EntityType:  "work_order",
			EntityID:    id,
			Action:      models.AuditActionDelete,
			Description: fmt.Sprintf("Work order %s deleted", before.SlipNo),
			Before:      before,
		})

		return c.JSON(fiber.Map{"message": "work order deleted"})
	}
}
