package api

import (
	"log"
	"time"

	"github.com/Pridoh/Project-UKK-sub000/internal/api/handler"
	"github.com/Pridoh/Project-UKK-sub000/internal/api/middleware"
	"github.com/Pridoh/Project-UKK-sub000/internal/domain"
	"github.com/Pridoh/Project-UKK-sub000/internal/history"
	"github.com/Pridoh/Project-UKK-sub000/internal/service"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Dependencies are the services behind the HTTP API. History and Board may be
// nil: history routes are then not mounted and the board is read from the
// capacity ledger directly.
type Dependencies struct {
	Auth         *service.AuthService
	Transactions *service.TransactionService
	MasterData   *service.MasterDataService
	Tariffs      *service.TariffService
	Discounts    *service.DiscountService
	Capacity     *service.CapacityLedger
	LPR          *service.LPRService
	History      *history.Service
	Board        handler.CapacityBoard
	WebSockets   *handler.WebSocketManager

	Location       *time.Location
	AllowedOrigins []string
}

var plateValidator validator.Func = func(fl validator.FieldLevel) bool {
	plate, ok := fl.Field().Interface().(string)
	return ok && domain.ValidPlate(domain.NormalizePlate(plate))
}

// RegisterValidations adds the custom binding tags used by the request DTOs.
func RegisterValidations() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		if err := v.RegisterValidation("plate", plateValidator); err != nil {
			log.Printf("Router: could not register plate validation: %v", err)
		}
	}
}

func corsConfig(origins []string) cors.Config {
	cc := cors.DefaultConfig()
	cc.AllowHeaders = append(cc.AllowHeaders, "Authorization", "Cache-Control", "X-Requested-With")
	cc.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	if len(origins) == 0 {
		cc.AllowAllOrigins = true
		return cc
	}
	cc.AllowOrigins = origins
	cc.AllowCredentials = true
	return cc
}

func SetupRouter(deps Dependencies) *gin.Engine {
	RegisterValidations()

	r := gin.New()
	r.Use(gin.Logger())
	r.Use(gin.Recovery())
	r.Use(cors.New(corsConfig(deps.AllowedOrigins)))

	if deps.WebSockets != nil {
		wsHandler := handler.NewWebSocketHandler(deps.WebSockets)
		r.GET("/ws", wsHandler.HandleWebSocket)
	}

	v1 := r.Group("/api/v1")

	authHandler := handler.NewAuthHandler(deps.Auth)
	authRoutes := v1.Group("/auth")
	{
		authRoutes.POST("/register", authHandler.Register)
		authRoutes.POST("/login", authHandler.Login)
	}

	authMw := middleware.NewAuthMiddleware(deps.Auth)
	secured := v1.Group("")
	secured.Use(authMw.Authenticate())

	trxH := handler.NewTransactionHandler(deps.Transactions)
	trxRoutes := secured.Group("/transactions")
	{
		trxRoutes.POST("/check-in", trxH.CheckIn)
		trxRoutes.GET("/search", trxH.Search)
		trxRoutes.GET("/:id", trxH.Get)
		trxRoutes.GET("/:id/ticket", trxH.Ticket)
		trxRoutes.POST("/:id/check-out", trxH.CheckOut)
		trxRoutes.POST("/:id/cancel", trxH.Cancel)
	}

	if deps.History != nil {
		historyH := handler.NewHistoryHandler(deps.History, deps.Location)
		trxRoutes.GET("/active", historyH.ListActive)
		trxRoutes.GET("/history", historyH.ListHistory)
		secured.GET("/dashboard/stats", historyH.Stats)
	}

	board := deps.Board
	if board == nil {
		board = deps.Capacity
	}
	capH := handler.NewCapacityHandler(board, deps.Capacity)
	secured.GET("/capacity", capH.Board)
	secured.GET("/capacity/:area_id/:vehicle_type_id", capH.Available)

	areaH := handler.NewAreaHandler(deps.MasterData)
	areaRoutes := secured.Group("/areas")
	{
		areaRoutes.GET("", areaH.List)
		areaRoutes.POST("", areaH.Create)
		areaRoutes.GET("/:id", areaH.Get)
		areaRoutes.PUT("/:id", areaH.Update)
		areaRoutes.DELETE("/:id", areaH.Delete)
		areaRoutes.PUT("/:id/capacities", areaH.SetCapacities)
	}

	vtH := handler.NewVehicleTypeHandler(deps.MasterData)
	vtRoutes := secured.Group("/vehicle-types")
	{
		vtRoutes.GET("", vtH.List)
		vtRoutes.POST("", vtH.Create)
		vtRoutes.PUT("/:id", vtH.Update)
		vtRoutes.DELETE("/:id", vtH.Delete)
	}

	tariffH := handler.NewTariffHandler(deps.Tariffs)
	tariffRoutes := secured.Group("/tariffs")
	{
		tariffRoutes.GET("", tariffH.List)
		tariffRoutes.POST("", tariffH.Create)
		tariffRoutes.PUT("/:id", tariffH.Update)
		tariffRoutes.DELETE("/:id", tariffH.Delete)
	}

	memberH := handler.NewMemberHandler(deps.Discounts)
	secured.GET("/vehicles/:id/memberships", memberH.ListByVehicle)
	memberRoutes := secured.Group("/memberships")
	{
		memberRoutes.POST("", memberH.Create)
		memberRoutes.POST("/renew", memberH.Renew)
		memberRoutes.DELETE("/:id", memberH.Delete)
	}

	lprH := handler.NewLPRHandler(deps.LPR, deps.Transactions)
	secured.POST("/lpr/recognize", lprH.Recognize)

	return r
}
