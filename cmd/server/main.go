package main

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"tienda-backoffice/internal/auth"
	"tienda-backoffice/internal/config"
	"tienda-backoffice/internal/database"
	"tienda-backoffice/internal/handlers"
	"tienda-backoffice/internal/middleware"
	"tienda-backoffice/internal/orders"
	"tienda-backoffice/internal/returns"
	"tienda-backoffice/internal/sales"
	"tienda-backoffice/internal/shifts"
	"tienda-backoffice/internal/stock"
	"tienda-backoffice/internal/users"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("configuration error", zap.Error(err))
	}

	db, err := database.Connect(&cfg.Database, logger)
	if err != nil {
		logger.Fatal("database connection failed", zap.Error(err))
	}

	issuer := auth.NewTokenIssuer(cfg.Auth.JWTSecret)
	ledger := stock.NewLedger()

	userSvc := users.NewService(db, issuer, logger)
	saleSvc := sales.NewService(db, ledger, logger)
	returnSvc := returns.NewService(db, ledger, logger)
	orderSvc := orders.NewService(db, ledger, logger)
	shiftSvc := shifts.NewService(db, logger)

	authH := handlers.NewAuthHandler(userSvc, logger)
	userH := handlers.NewUserHandler(userSvc, logger)
	productH := handlers.NewProductHandler(db, ledger, logger, cfg.App.LowStockThreshold)
	clientH := handlers.NewClientHandler(db, logger)
	supplierH := handlers.NewSupplierHandler(db, logger)
	saleH := handlers.NewSaleHandler(saleSvc, logger)
	returnH := handlers.NewReturnHandler(returnSvc, logger)
	orderH := handlers.NewOrderHandler(orderSvc, logger)
	shiftH := handlers.NewShiftHandler(shiftSvc, logger)

	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.App.AllowedOrigin},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", func(c *gin.Context) { c.JSON(200, gin.H{"status": "online"}) })
	r.POST("/login", authH.Login)

	if cfg.App.AllowRegistration {
		r.POST("/register", authH.Register)
		logger.Warn("registration route is open; disable ALLOW_REGISTRATION in production")
	}

	api := r.Group("/api")
	api.Use(middleware.Authenticate(issuer))
	{
		products := api.Group("/products", middleware.RequireCapability(auth.CapProducts))
		{
			products.GET("", productH.List)
			products.GET("/low-stock", productH.LowStock)
			products.GET("/:id", productH.Get)
			products.POST("", productH.Create)
			products.PUT("/:id", productH.Update)
			products.PATCH("/:id/stock", productH.AdjustStock)
			products.DELETE("/:id", productH.Deactivate)
		}

		clients := api.Group("/clients", middleware.RequireCapability(auth.CapClients))
		{
			clients.GET("", clientH.List)
			clients.GET("/:id", clientH.Get)
			clients.POST("", clientH.Create)
			clients.PUT("/:id", clientH.Update)
			clients.DELETE("/:id", clientH.Delete)
		}

		suppliers := api.Group("/suppliers", middleware.RequireCapability(auth.CapSuppliers))
		{
			suppliers.GET("", supplierH.List)
			suppliers.GET("/:id", supplierH.Get)
			suppliers.POST("", supplierH.Create)
			suppliers.PUT("/:id", supplierH.Update)
			suppliers.DELETE("/:id", supplierH.Delete)
		}

		salesGrp := api.Group("/sales", middleware.RequireCapability(auth.CapSales))
		{
			salesGrp.GET("", saleH.List)
			salesGrp.GET("/stats", saleH.Stats)
			salesGrp.GET("/:id", saleH.Get)
			salesGrp.POST("", saleH.Create)
			salesGrp.PATCH("/:id/status", saleH.UpdateStatus)
		}

		returnsGrp := api.Group("/returns", middleware.RequireCapability(auth.CapReturns))
		{
			returnsGrp.GET("", returnH.List)
			returnsGrp.GET("/stats", returnH.Stats)
			returnsGrp.GET("/:id", returnH.Get)
			returnsGrp.POST("", returnH.Create)
			returnsGrp.PATCH("/:id/status", returnH.UpdateStatus)
		}

		ordersGrp := api.Group("/orders", middleware.RequireCapability(auth.CapOrders))
		{
			ordersGrp.GET("", orderH.List)
			ordersGrp.GET("/stats", orderH.Stats)
			ordersGrp.GET("/:id", orderH.Get)
			ordersGrp.POST("", orderH.Create)
			ordersGrp.PATCH("/:id/status", orderH.UpdateStatus)
		}

		shiftsGrp := api.Group("/shifts", middleware.RequireCapability(auth.CapShifts))
		{
			shiftsGrp.GET("", shiftH.ListShifts)
			shiftsGrp.POST("", shiftH.CreateShift)
			shiftsGrp.PUT("/:id", shiftH.UpdateShift)
			shiftsGrp.DELETE("/:id", shiftH.DeleteShift)
		}

		attendance := api.Group("/attendance", middleware.RequireCapability(auth.CapAttend))
		{
			attendance.GET("", shiftH.ListAttendance)
			attendance.POST("", shiftH.RecordAttendance)
			attendance.PUT("/:id", shiftH.UpdateAttendance)
		}

		usersGrp := api.Group("/users", middleware.RequireCapability(auth.CapUsers))
		{
			usersGrp.GET("", userH.List)
			usersGrp.GET("/:id", userH.Get)
			usersGrp.POST("", userH.Create)
			usersGrp.PUT("/:id", userH.Update)
			usersGrp.PATCH("/:id/active", userH.SetActive)
			usersGrp.POST("/:id/roles/:roleId", userH.AssignRole)
			usersGrp.DELETE("/:id/roles/:roleId", userH.RemoveRole)
		}

		roles := api.Group("/roles", middleware.RequireCapability(auth.CapUsers))
		{
			roles.GET("", userH.ListRoles)
			roles.POST("", userH.CreateRole)
			roles.PUT("/:id", userH.UpdateRole)
			roles.DELETE("/:id", userH.DeleteRole)
		}
	}

	logger.Info("server starting", zap.String("port", cfg.App.Port))
	if err := r.Run(":" + cfg.App.Port); err != nil {
		logger.Fatal("server failed", zap.Error(err))
	}
}
