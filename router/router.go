package router

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/restoscan/resto-app/controllers"
	"github.com/restoscan/resto-app/middlewares"
	"github.com/restoscan/resto-app/models"
	"github.com/restoscan/resto-app/services"
	"github.com/restoscan/resto-app/session"
)

func SetupRouter(db *gorm.DB) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	// Uploaded dish photos are served straight from disk.
	workDir, _ := os.Getwd()
	uploadsPath := os.Getenv("UPLOAD_DIR")
	if uploadsPath == "" {
		uploadsPath = filepath.Join(workDir, "uploads")
	}
	r.Static("/uploads", uploadsPath)

	r.Use(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/uploads/") {
			lower := strings.ToLower(c.Request.URL.Path)
			if !strings.HasSuffix(lower, ".jpg") &&
				!strings.HasSuffix(lower, ".jpeg") &&
				!strings.HasSuffix(lower, ".png") &&
				!strings.HasSuffix(lower, ".webp") {
				c.AbortWithStatus(http.StatusForbidden)
				return
			}
		}
		c.Next()
	})

	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddlewares())
	r.Use(middlewares.LoggerMiddleware())

	// Shared per-process session state. These live for the process
	// lifetime; a restart drops carts and device refs but never orders.
	registry := session.NewScanRegistry()
	devices := services.NewDeviceStore()
	carts := services.NewCartStore()

	resolver := services.NewSessionResolver(db, registry, devices, carts)
	cartSvc := services.NewCartService(db, carts, devices)
	flowSvc := services.NewOrderFlowService(db)
	billingSvc := services.NewBillingService(db)
	reviewSvc := services.NewReviewService(db)

	authCtrl := controllers.NewAuthController(db)
	scanCtrl := controllers.NewScanController(resolver)
	cartCtrl := controllers.NewCartController(cartSvc, carts, devices)
	orderCtrl := controllers.NewOrderController(db, flowSvc)
	tableCtrl := controllers.NewTableController(db)
	menuCtrl := controllers.NewMenuController(db)
	categoryCtrl := controllers.NewMenuCategoryController(db)
	invoiceCtrl := controllers.NewInvoiceController(db, billingSvc)
	reviewCtrl := controllers.NewReviewController(db, billingSvc, reviewSvc)
	staffCtrl := controllers.NewStaffController(db)
	settingsCtrl := controllers.NewSettingsController(db)
	adminCtrl := controllers.NewAdminController(db)

	// ----------------------------------------------------------------
	//                      PUBLIC ROUTES
	// ----------------------------------------------------------------
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	// Anonymous session bootstrap and staff PIN pad, both throttled.
	public := r.Group("/auth")
	public.Use(middlewares.NewStrictRateLimiter())
	{
		public.POST("/anonymous", authCtrl.SignInAnonymously)
		public.POST("/login", authCtrl.Login)
	}
	r.GET("/auth/roster", staffCtrl.LoginRoster)

	// The menu is browsable before any token exists.
	r.GET("/menu", menuCtrl.PublicMenu)
	r.GET("/categories", categoryCtrl.ListCategories)

	// ----------------------------------------------------------------
	//                      CUSTOMER ROUTES (anonymous token)
	// ----------------------------------------------------------------
	customer := r.Group("/")
	customer.Use(middlewares.AuthMiddleware())
	{
		customer.POST("/scan", scanCtrl.Scan)
		customer.GET("/session/state", scanCtrl.SessionState)

		customer.GET("/cart", cartCtrl.GetCart)
		customer.POST("/cart/items", cartCtrl.AddItem)
		customer.PATCH("/cart/items/:index", cartCtrl.UpdateItem)
		customer.DELETE("/cart/items/:index", cartCtrl.RemoveItem)
		customer.DELETE("/cart", cartCtrl.ClearCart)

		customer.POST("/orders", cartCtrl.PlaceOrder)
		customer.GET("/orders/mine", cartCtrl.MyOrders)
		customer.GET("/orders/:id", orderCtrl.GetOrder)
		customer.POST("/orders/:id/cancel", orderCtrl.CancelOrder)

		customer.POST("/tables/:id/call-server", tableCtrl.CallServer)
		customer.POST("/tables/:id/request-bill", tableCtrl.RequestBill)

		customer.GET("/tables/:id/review-slots", reviewCtrl.Slots)
		customer.POST("/reviews", reviewCtrl.Submit)
	}

	// ----------------------------------------------------------------
	//                      STAFF ROUTES
	// ----------------------------------------------------------------
	staff := r.Group("/staff")
	staff.Use(middlewares.AuthMiddleware())
	staff.Use(middlewares.RequireRoles(models.RoleServer, models.RoleKitchen, models.RoleManager))
	{
		staff.GET("/profile", staffCtrl.Profile)
		staff.POST("/logout", authCtrl.Logout)

		staff.GET("/tables", tableCtrl.ListTables)
		staff.GET("/tables/:id", tableCtrl.GetTable)
		staff.POST("/tables/:id/accept-service", tableCtrl.AcceptService)

		staff.GET("/orders", orderCtrl.ListOrders)
		staff.GET("/orders/:id", orderCtrl.GetOrder)
		staff.PATCH("/orders/:id/status", orderCtrl.UpdateStatus)
		staff.GET("/kitchen/board", orderCtrl.KitchenBoard)

		staff.POST("/invoices/tables/:id", invoiceCtrl.ConsolidateTable)
		staff.POST("/invoices/takeaway", invoiceCtrl.ConsolidateTakeaway)
		staff.GET("/invoices", invoiceCtrl.ListInvoices)
		staff.GET("/invoices/:reference", invoiceCtrl.GetInvoice)

		ticketGroup := staff.Group("/invoices")
		ticketGroup.Use(middlewares.InvoiceLoggerMiddleware())
		{
			ticketGroup.GET("/:reference/pdf", invoiceCtrl.InvoicePDF)
		}

		staff.GET("/notifications", adminCtrl.Notifications)
	}

	// ----------------------------------------------------------------
	//                      ADMIN ROUTES
	// ----------------------------------------------------------------
	admin := r.Group("/admin")
	admin.Use(middlewares.AuthMiddleware())
	admin.Use(middlewares.RequireRoles(models.RoleManager))
	{
		admin.GET("/dashboard", adminCtrl.Dashboard)
		admin.GET("/dashboard/sales-chart", adminCtrl.SalesChart)
		admin.GET("/reports/invoices.csv", adminCtrl.ExportInvoicesCSV)

		admin.GET("/orders/board", orderCtrl.AdminBoard)

		admin.POST("/tables", tableCtrl.CreateTable)
		admin.PATCH("/tables/:id", tableCtrl.UpdateTable)
		admin.DELETE("/tables/:id", tableCtrl.DeleteTable)
		admin.POST("/tables/:id/reset", tableCtrl.ResetTable)
		admin.GET("/tables/:id/qr", tableCtrl.TableQR)

		admin.GET("/menus", menuCtrl.ListMenus)
		admin.GET("/menus/:id", menuCtrl.GetMenu)
		admin.POST("/menus", menuCtrl.CreateMenu)
		admin.PATCH("/menus/:id", menuCtrl.UpdateMenu)
		admin.DELETE("/menus/:id", menuCtrl.DeleteMenu)
		admin.PATCH("/menus/:id/availability", menuCtrl.SetAvailability)
		admin.PATCH("/menus/:id/promotion", menuCtrl.SetPromotion)
		admin.POST("/menus/images", menuCtrl.UploadImage)

		admin.POST("/categories", categoryCtrl.CreateCategory)
		admin.PATCH("/categories/:id", categoryCtrl.UpdateCategory)
		admin.DELETE("/categories/:id", categoryCtrl.DeleteCategory)

		admin.GET("/staff", staffCtrl.ListStaff)
		admin.POST("/staff", staffCtrl.CreateStaff)
		admin.PATCH("/staff/:id", staffCtrl.UpdateStaff)
		admin.DELETE("/staff/:id", staffCtrl.DeleteStaff)

		admin.GET("/settings", settingsCtrl.GetSettings)
		admin.PUT("/settings", settingsCtrl.UpdateSettings)

		admin.GET("/reviews", reviewCtrl.ListReviews)
	}

	// WebSocket subscription for boards and customer devices.
	wsGroup := r.Group("/ws")
	wsGroup.Use(middlewares.WebSocketAuthMiddleware())
	{
		wsGroup.GET("", controllers.WebSocketHandler)
	}

	return r
}
