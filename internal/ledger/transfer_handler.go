package ledger

import (
	"fmt"

	"gradation-backend/internal/audit"
	"gradation-backend/internal/database"
	"gradation-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type TransferRequest struct {
	SourceBatchID uint   `json:"source_batch_id"`
	Destination   int    `json:"destination"`
	ShipDate      string `json:"ship_date"`
	OrderDate     string `json:"order_date"`
	Qty           int    `json:"qty"`
	Flag          int    `json:"flag"`
}

type TransferResponse struct {
	ID            uint   `json:"id"`
	SourceBatchID uint   `json:"source_batch_id"`
	WorkOrderID   uint   `json:"work_order_id"`
	Destination   int    `json:"destination"`
	ShipDate      string `json:"ship_date"`
	OrderDate     string `json:"order_date"`
	Qty           int    `json:"qty"`
	Flag          int    `json:"flag"`
	CreatedAt     string `json:"created_at"`
}

func transferResponse(t *models.Transfer) TransferResponse {
	return TransferResponse{
		ID:            t.ID,
		SourceBatchID: t.SourceBatchID,
		WorkOrderID:   t.WorkOrderID,
		Destination:   t.Destination,
		ShipDate:      fmtDate(t.ShipDate),
		OrderDate:     fmtDate(t.OrderDate),
		Qty:           t.Qty,
		Flag:          t.Flag,
		CreatedAt:     t.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

func (r TransferRequest) toInput() (TransferInput, error) {
	if r.Qty <= 0 {
		return TransferInput{}, fiber.NewError(fiber.StatusBadRequest, "qty must be greater than 0")
	}
	shipDate, err := parseDate(r.ShipDate)
	if err != nil {
		return TransferInput{}, err
	}
	orderDate, err := parseDate(r.OrderDate)
	if err != nil {
		return TransferInput{}, err
	}
	return TransferInput{
		SourceBatchID: r.SourceBatchID,
		Destination:   r.Destination,
		ShipDate:      shipDate,
		OrderDate:     orderDate,
		Qty:           r.Qty,
		Flag:          r.Flag,
	}, nil
}

// POST /api/transfers
func CreateTransferHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body TransferRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}

		if body.Destination != models.DestInterim && body.Destination != models.DestFinal {
			return fiber.NewError(fiber.StatusBadRequest, "destination must be 2 (interim) or 3 (final)")
		}
		if body.SourceBatchID == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "source_batch_id required")
		}

		in, err := body.toInput()
		if err != nil {
			return err
		}

		tr, err := CreateTransfer(database.DB, in)
		if err != nil {
			return toHTTPError(err)
		}

		userID, userName := currentUser(c)
		_ = audit.WriteLog(audit.LogOptions{
			UserID:      userID,
			UserName:    userName,
			EntityType:  "transfer",
			EntityID:    tr.ID,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("Transfer created: %d units to destination %d", tr.Qty, tr.Destination),
			After:       tr,
		})

		return c.Status(fiber.StatusCreated).JSON(transferResponse(tr))
	}
}

// GET /api/transfers?destination=2&source_batch_id=4&work_order_id=1
func ListTransfersHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := database.DB.Model(&models.Transfer{})

		if s := c.Query("destination"); s != "" {
			dbq = dbq.Where("destination = ?", s)
		}
		if s := c.Query("source_batch_id"); s != "" {
			dbq = dbq.Where("source_batch_id = ?", s)
		}
		if s := c.Query("work_order_id"); s != "" {
			dbq = dbq.Where("work_order_id = ?", s)
		}
		if s := c.Query("date_from"); s != "" {
			d, err := parseDate(s)
			if err != nil {
				return err
			}
			dbq = dbq.Where("ship_date >= ?", d)
		}
		if s := c.Query("date_to"); s != "" {
			d, err := parseDate(s)
			if err != nil {
				return err
			}
			dbq = dbq.Where("ship_date <= ?", d)
		}

		var transfers []models.Transfer
		if err := dbq.Order("ship_date DESC, id DESC").Find(&transfers).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "transfers could not be listed")
		}

		resp := make([]TransferResponse, 0, len(transfers))
		for i := range transfers {
			resp = append(resp, transferResponse(&transfers[i]))
		}

		return c.JSON(resp)
	}
}

// GET /api/transfers/:id
func GetTransferHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseIDParam(c)
		if err != nil {
			return err
		}

		var tr models.Transfer
		if err := database.DB.First(&tr, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "transfer not found")
		}

		return c.JSON(transferResponse(&tr))
	}
}

// GET /api/transfers/:id/diff
//
// Reconciliation figure for interim transfers: issued quantity minus
// what the second vendor has returned against it so far.
func TransferDiffHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseIDParam(c)
		if err != nil {
			return err
		}

		var tr models.Transfer
		if err := database.DB.First(&tr, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "transfer not found")
		}
		if tr.Destination != models.DestInterim {
			return fiber.NewError(fiber.StatusBadRequest, "diff only applies to interim transfers")
		}

		diff, err := TransferDiff(database.DB, id)
		if err != nil {
			return toHTTPError(err)
		}

		return c.JSON(fiber.Map{
			"transfer_id": id,
			"qty":         tr.Qty,
			"diff":        diff,
		})
	}
}

// PUT /api/transfers/:id
func UpdateTransferHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseIDParam(c)
		if err != nil {
			return err
		}

		var body TransferRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}

		in, err := body.toInput()
		if err != nil {
			return err
		}

		var before models.Transfer
		if err := database.DB.First(&before, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "transfer not found")
		}

		tr, err := UpdateTransfer(database.DB, id, in)
		if err != nil {
			return toHTTPError(err)
		}

		userID, userName := currentUser(c)
		_ = audit.WriteLog(audit.LogOptions{
			UserID:      userID,
			UserName:    userName,
			EntityType:  "transfer",
			EntityID:    tr.ID,
			Action:      models.AuditActionUpdate,
			Description: fmt.Sprintf("Transfer updated: %d units", tr.Qty),
			Before:      before,
			After:       tr,
		})

		return c.JSON(transferResponse(tr))
	}
}

// DELETE /api/transfers/:id
func DeleteTransferHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseIDParam(c)
		if err != nil {
			return err
		}

		var before models.Transfer
		if err := database.DB.First(&before, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "transfer not found")
		}

		if err := DeleteTransfer(database.DB, id); err != nil {
			return toHTTPError(err)
		}

		userID, userName := currentUser(c)
		_ = audit.WriteLog(audit.LogOptions{
			UserID:      userID,
			UserName:    userName,
			EntityType:  "transfer",
			EntityID:    id,
			Action:      models.AuditActionDelete,
			Description: fmt.Sprintf("Transfer deleted: %d units to destination %d", before.Qty, before.Destination),
			Before:      before,
		})

		return c.JSON(fiber.Map{"message": "transfer deleted"})
	}
}

type AutoTransferRequest struct {
	SpecCode  int    `json:"spec_code"`
	ColorCode int    `json:"color_code"`
	Qty       int    `json:"qty"`
	OrderDate string `json:"order_date"`
	ShipDate  string `json:"ship_date"`
}

// POST /api/transfers/auto
//
// Ships FIFO from inspected stage-2 stock. Partial fulfilment comes
// back with HTTP 200 and a non-zero remainder; zero stock is a 400.
func AutoTransferHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body AutoTransferRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		if body.Qty <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "qty must be greater than 0")
		}

		orderDate, err := parseDate(body.OrderDate)
		if err != nil {
			return err
		}
		shipDate, err := parseDate(body.ShipDate)
		if err != nil {
			return err
		}

		result, err := ExecuteAutoTransfer(database.DB, body.SpecCode, body.ColorCode, body.Qty, orderDate, shipDate)
		if err != nil {
			return toHTTPError(err)
		}
		if result.TotalShipped == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "no shippable stock for this spec and color")
		}

		userID, userName := currentUser(c)
		_ = audit.WriteLog(audit.LogOptions{
			UserID:      userID,
			UserName:    userName,
			EntityType:  "transfer",
			EntityID:    0,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("Auto transfer: %d of %d units shipped across %d batches", result.TotalShipped, body.Qty, len(result.Shipped)),
			After:       result,
		})

		return c.JSON(result)
	}
}

// GET /api/transfers/auto/available?spec=1&color=2
func AvailableShippingHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var spec, color int
		if _, err := fmt.Sscan(c.Query("spec"), &spec); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "spec query parameter required")
		}
		if _, err := fmt.Sscan(c.Query("color"), &color); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "color query parameter required")
		}

		total, batches, err := AvailableShippingQty(database.DB, spec, color)
		if err != nil {
			return toHTTPError(err)
		}

		return c.JSON(fiber.Map{
			"spec_code":  spec,
			"color_code": color,
			"available":  total,
			"batches":    batches,
		})
	}
}
