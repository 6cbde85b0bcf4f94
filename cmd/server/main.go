package main

import (
	"log"
	"strings"

	"gradation-backend/internal/audit"
	"gradation-backend/internal/auth"
	"gradation-backend/internal/config"
	"gradation-backend/internal/database"
	"gradation-backend/internal/ledger"
	"gradation-backend/internal/master"
	"gradation-backend/internal/models"
	"gradation-backend/internal/replay"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

func main() {
	cfg := config.Load()
	database.Init(cfg)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if e, ok := err.(*fiber.Error); ok {
				return c.Status(e.Code).JSON(fiber.Map{
					"error": e.Message,
				})
			}
			log.Println("Unexpected error:", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "unexpected server error",
			})
		},
	})

	corsOrigins := strings.Split(cfg.CORSOrigins, ",")
	for i := range corsOrigins {
		corsOrigins[i] = strings.TrimSpace(corsOrigins[i])
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(corsOrigins, ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
	}))

	api := app.Group("/api")

	// Public auth
	api.Post("/auth/register-admin", auth.RegisterAdminHandler(cfg))
	api.Post("/auth/login", auth.LoginHandler(cfg))

	// Protected
	protected := api.Group("")
	protected.Use(auth.JWTMiddleware(cfg))

	protected.Get("/auth/me", auth.MeHandler())

	// Master codes
	protected.Get("/codes", master.ListCodesHandler())

	// Work orders
	protected.Post("/work-orders", ledger.CreateWorkOrderHandler())
	protected.Get("/work-orders", ledger.ListWorkOrdersHandler())
	protected.Get("/work-orders/:id", ledger.GetWorkOrderHandler())
	protected.Get("/work-orders/:id/remaining", ledger.WorkOrderRemainingHandler())
	protected.Put("/work-orders/:id", ledger.UpdateWorkOrderHandler())
	protected.Delete("/work-orders/:id", ledger.DeleteWorkOrderHandler())

	// Return batches (both stages)
	protected.Post("/return-batches", ledger.CreateReturnBatchHandler())
	protected.Get("/return-batches", ledger.ListReturnBatchesHandler())
	protected.Get("/return-batches/:id", ledger.GetReturnBatchHandler())
	protected.Get("/return-batches/:id/available", ledger.ReturnBatchAvailableHandler())
	protected.Put("/return-batches/:id", ledger.UpdateReturnBatchHandler())
	protected.Post("/return-batches/:id/inspect", ledger.InspectReturnBatchHandler())
	protected.Delete("/return-batches/:id", ledger.DeleteReturnBatchHandler())

	// Transfers (interim and final)
	protected.Post("/transfers", ledger.CreateTransferHandler())
	protected.Get("/transfers", ledger.ListTransfersHandler())
	protected.Post("/transfers/auto", ledger.AutoTransferHandler())
	protected.Get("/transfers/auto/available", ledger.AvailableShippingHandler())
	protected.Get("/transfers/:id", ledger.GetTransferHandler())
	protected.Get("/transfers/:id/diff", ledger.TransferDiffHandler())
	protected.Put("/transfers/:id", ledger.UpdateTransferHandler())
	protected.Delete("/transfers/:id", ledger.DeleteTransferHandler())

	// Reports
	protected.Get("/reports/processing-matrix", ledger.ProcessingMatrixHandler())
	protected.Get("/reports/final-shipments", ledger.FinalShipmentMatrixHandler())

	// Replay into the generic ledger (admin only)
	adminRoutes := protected.Group("")
	adminRoutes.Use(auth.RequireRole(models.RoleAdmin))
	adminRoutes.Post("/replay", replay.RunReplayHandler())

	// Audit logs
	protected.Get("/audit-logs", audit.ListAuditLogsHandler())

	log.Println("Server listening on port:", cfg.HTTPPort)
	if err := app.Listen(":" + cfg.HTTPPort); err != nil {
		log.Fatal(err)
	}
}
