package cli

import (
	"net/http"

	_ "invoicer/docs" // swagger docs
	"invoicer/internal/handler"
	"invoicer/internal/logger"
	"invoicer/internal/middleware"
	"invoicer/internal/websocket"
	"invoicer/web"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// NewRouter registers every HTTP route of the service on a fresh engine.
func NewRouter(app *App) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger(logger.WithComponent("http")))

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = app.Config.CORSOrigins
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", middleware.RequestIDHeader}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.ExposeHeaders = []string{"Content-Disposition", middleware.RequestIDHeader}
	router.Use(cors.New(corsConfig))

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK"})
	})

	router.GET("/", func(c *gin.Context) {
		c.Data(http.StatusOK, "text/html; charset=utf-8", web.Index)
	})

	var secret []byte
	if app.Config.WSJWTSecret != "" {
		secret = []byte(app.Config.WSJWTSecret)
	}
	router.GET("/ws", func(c *gin.Context) {
		websocket.ServeWs(app.Hub, c, secret)
	})

	api := router.Group("")
	handler.NewInvoiceHandler(app.Gateway, logger.WithComponent("invoice_handler")).RegisterRoutes(api)
	handler.NewCustomerHandler(app.Customers).RegisterRoutes(api)
	handler.NewTimeEntryHandler(app.Timesheets).RegisterRoutes(api)
	handler.NewNotificationHandler(app.Notifications).RegisterRoutes(api)
	handler.NewAuditHandler(app.Audit).RegisterRoutes(api)

	return router
}
