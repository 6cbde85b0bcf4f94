package ledger

import (
	"fmt"

	"gradation-backend/internal/audit"
	"gradation-backend/internal/database"
	"gradation-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type ReturnBatchRequest struct {
	WorkOrderID      uint   `json:"work_order_id"`      // stage 1
	SourceTransferID uint   `json:"source_transfer_id"` // stage 2
	Stage            int    `json:"stage"`
	ReturnDate       string `json:"return_date"`
	ReturnedQty      int    `json:"returned_qty"`
	ReturnRejectQty  int    `json:"return_reject_qty"`
	InspectRejectQty int    `json:"inspect_reject_qty"`
	Status           int    `json:"status"`
}

type ReturnBatchResponse struct {
	ID               uint   `json:"id"`
	WorkOrderID      uint   `json:"work_order_id"`
	SourceTransferID *uint  `json:"source_transfer_id"`
	Stage            int    `json:"stage"`
	ReturnDate       string `json:"return_date"`
	ReturnedQty      int    `json:"returned_qty"`
	ReturnRejectQty  int    `json:"return_reject_qty"`
	InspectRejectQty int    `json:"inspect_reject_qty"`
	PassQty          int    `json:"pass_qty"`
	Status           int    `json:"status"`
	CreatedAt        string `json:"created_at"`
}

func returnBatchResponse(b *models.ReturnBatch) ReturnBatchResponse {
	return ReturnBatchResponse{
		ID:               b.ID,
		WorkOrderID:      b.WorkOrderID,
		SourceTransferID: b.SourceTransferID,
		Stage:            b.Stage,
		ReturnDate:       fmtDate(b.ReturnDate),
		ReturnedQty:      b.ReturnedQty,
		ReturnRejectQty:  b.ReturnRejectQty,
		InspectRejectQty: b.InspectRejectQty,
		PassQty:          b.PassQty,
		Status:           b.Status,
		CreatedAt:        b.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

func (r ReturnBatchRequest) toInput() (ReturnBatchInput, error) {
	if r.ReturnedQty <= 0 {
		return ReturnBatchInput{}, fiber.NewError(fiber.StatusBadRequest, "returned_qty must be greater than 0")
	}
	if r.ReturnRejectQty < 0 || r.InspectRejectQty < 0 {
		return ReturnBatchInput{}, fiber.NewError(fiber.StatusBadRequest, "reject quantities may not be negative")
	}
	if r.Status != models.StatusPreInspection && r.Status != models.StatusInspected {
		return ReturnBatchInput{}, fiber.NewError(fiber.StatusBadRequest, "status must be 0 (pre-inspection) or 1 (inspected)")
	}
	d, err := parseDate(r.ReturnDate)
	if err != nil {
		return ReturnBatchInput{}, err
	}
	return ReturnBatchInput{
		WorkOrderID:      r.WorkOrderID,
		SourceTransferID: r.SourceTransferID,
		Stage:            r.Stage,
		ReturnDate:       d,
		ReturnedQty:      r.ReturnedQty,
		ReturnRejectQty:  r.ReturnRejectQty,
		InspectRejectQty: r.InspectRejectQty,
		Status:           r.Status,
	}, nil
}

// POST /api/return-batches
func CreateReturnBatchHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body ReturnBatchRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}

		if body.Stage != models.StageFirst && body.Stage != models.StageSecond {
			return fiber.NewError(fiber.StatusBadRequest, "stage must be 1 or 2")
		}
		if body.Stage == models.StageFirst && body.WorkOrderID == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "work_order_id required for stage 1")
		}
		if body.Stage == models.StageSecond && body.SourceTransferID == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "source_transfer_id required for stage 2")
		}

		in, err := body.toInput()
		if err != nil {
			return err
		}

		batch, err := CreateReturnBatch(database.DB, in)
		if err != nil {
			return toHTTPError(err)
		}

		userID, userName := currentUser(c)
		_ = audit.WriteLog(audit.LogOptions{
			UserID:      userID,
			UserName:    userName,
			EntityType:  "return_batch",
			EntityID:    batch.ID,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("Stage-%d return recorded: %d returned, %d pass", batch.Stage, batch.ReturnedQty, batch.PassQty),
			After:       batch,
		})

		return c.Status(fiber.StatusCreated).JSON(returnBatchResponse(batch))
	}
}

// GET /api/return-batches?stage=1&work_order_id=3&status=0
func ListReturnBatchesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := database.DB.Model(&models.ReturnBatch{})

		if s := c.Query("stage"); s != "" {
			dbq = dbq.Where("stage = ?", s)
		}
		if s := c.Query("work_order_id"); s != "" {
			dbq = dbq.Where("work_order_id = ?", s)
		}
		if s := c.Query("source_transfer_id"); s != "" {
			dbq = dbq.Where("source_transfer_id = ?", s)
		}
		if s := c.Query("status"); s != "" {
			dbq = dbq.Where("status = ?", s)
		}

		var batches []models.ReturnBatch
		if err := dbq.Order("return_date DESC, id DESC").Find(&batches).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "return batches could not be listed")
		}

		resp := make([]ReturnBatchResponse, 0, len(batches))
		for i := range batches {
			resp = append(resp, returnBatchResponse(&batches[i]))
		}

		return c.JSON(resp)
	}
}

// GET /api/return-batches/:id
func GetReturnBatchHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseIDParam(c)
		if err != nil {
			return err
		}

		var batch models.ReturnBatch
		if err := database.DB.First(&batch, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "return batch not found")
		}

		return c.JSON(returnBatchResponse(&batch))
	}
}

// GET /api/return-batches/:id/available?destination=3
//
// Defaults to the destination class that matches the batch's stage:
// interim for stage 1, final for stage 2.
func ReturnBatchAvailableHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseIDParam(c)
		if err != nil {
			return err
		}

		var batch models.ReturnBatch
		if err := database.DB.First(&batch, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "return batch not found")
		}

		destination := models.DestInterim
		if batch.Stage == models.StageSecond {
			destination = models.DestFinal
		}
		if s := c.Query("destination"); s != "" {
			if _, err := fmt.Sscan(s, &destination); err != nil ||
				(destination != models.DestInterim && destination != models.DestFinal) {
				return fiber.NewError(fiber.StatusBadRequest, "destination must be 2 (interim) or 3 (final)")
			}
		}

		available, err := AvailableToTransfer(database.DB, id, destination)
		if err != nil {
			return toHTTPError(err)
		}

		return c.JSON(fiber.Map{
			"return_batch_id": id,
			"destination":     destination,
			"pass_qty":        batch.PassQty,
			"available":       available,
		})
	}
}

// PUT /api/return-batches/:id
func UpdateReturnBatchHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseIDParam(c)
		if err != nil {
			return err
		}

		var body ReturnBatchRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}

		in, err := body.toInput()
		if err != nil {
			return err
		}

		var before models.ReturnBatch
		if err := database.DB.First(&before, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "return batch not found")
		}

		batch, err := UpdateReturnBatch(database.DB, id, in)
		if err != nil {
			return toHTTPError(err)
		}

		userID, userName := currentUser(c)
		_ = audit.WriteLog(audit.LogOptions{
			UserID:      userID,
			UserName:    userName,
			EntityType:  "return_batch",
			EntityID:    batch.ID,
			Action:      models.AuditActionUpdate,
			Description: fmt.Sprintf("Stage-%d return updated", batch.Stage),
			Before:      before,
			After:       batch,
		})

		return c.JSON(returnBatchResponse(batch))
	}
}

// POST /api/return-batches/:id/inspect
func InspectReturnBatchHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseIDParam(c)
		if err != nil {
			return err
		}

		var body struct {
			InspectRejectQty int `json:"inspect_reject_qty"`
		}
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		if body.InspectRejectQty < 0 {
			return fiber.NewError(fiber.StatusBadRequest, "inspect_reject_qty may not be negative")
		}

		var before models.ReturnBatch
		if err := database.DB.First(&before, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "return batch not found")
		}

		batch, err := InspectReturnBatch(database.DB, id, body.InspectRejectQty)
		if err != nil {
			return toHTTPError(err)
		}

		userID, userName := currentUser(c)
		_ = audit.WriteLog(audit.LogOptions{
			UserID:      userID,
			UserName:    userName,
			EntityType:  "return_batch",
			EntityID:    batch.ID,
			Action:      models.AuditActionUpdate,
			Description: fmt.Sprintf("Inspection recorded: %d rejected, %d pass", batch.InspectRejectQty, batch.PassQty),
			Before:      before,
			After:       batch,
		})

		return c.JSON(returnBatchResponse(batch))
	}
}

// DELETE /api/return-batches/:id
func DeleteReturnBatchHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseIDParam(c)
		if err != nil {
			return err
		}

		var before models.ReturnBatch
		if err := database.DB.First(&before, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "return batch not found")
		}

		if err := DeleteReturnBatch(database.DB, id); err != nil {
			return toHTTPError(err)
		}

		userID, userName := currentUser(c)
		_ = audit.WriteLog(audit.LogOptions{
			UserID:      userID,
			UserName:    userName,
			EntityType:  "return_batch",
			EntityID:    id,
			Action:      models.AuditActionDelete,
			Description: fmt.Sprintf("Stage-%d return deleted", before.Stage),
			Before:      before,
		})

		return c.JSON(fiber.Map{"message": "return batch deleted"})
	}
}
