package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/finance_backend/middlewares"
	"github.com/mmdatafocus/finance_backend/models"
	"github.com/mmdatafocus/finance_backend/realtime"
)

const websocketPath = "/ws"

func customNotFoundHandler(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"error": "route not found"})
}

// Register installs authentication and every route on r. Transport concerns
// (correlation ids, readiness, CORS, rate limiting) are installed by the caller.
func Register(r *gin.Engine, hub *realtime.Hub) {
	r.Use(middlewares.WebSocketCredentials(websocketPath))
	r.Use(middlewares.SessionMiddleware())
	r.Use(middlewares.AuthMiddleware())
	r.Use(middlewares.CurrentUserMiddleware())
	r.Use(middlewares.LoaderMiddleware())

	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	r.POST("/pubsub", pubSubPushHandler())
	r.POST("/auth/login", loginHandler())

	user := r.Group("/", middlewares.RequireUser())
	user.POST("/auth/logout", logoutHandler())
	user.GET("/me", meHandler())
	user.GET("/me/bases", myBasesHandler())
	user.PUT("/me/default-base", setDefaultBaseHandler())
	user.GET(websocketPath, middlewares.BaseMiddleware(), realtimeHandler(hub))

	api := user.Group("/api", middlewares.BaseMiddleware())
	registerCatalog(api)
	registerTransactions(api)
	registerClosings(api)
	registerReports(api)

	admin := user.Group("/admin", middlewares.RequireAdmin())
	registerAdmin(admin)

	r.NoRoute(customNotFoundHandler)
}

func registerCatalog(api *gin.RouterGroup) {
	stores := api.Group("/stores")
	stores.GET("", listStoresHandler())
	stores.GET("/default", defaultStoreHandler())
	stores.GET("/all", listAllHandler(models.ListAllStore))
	stores.GET("/:id", getHandler(models.GetStore))
	stores.POST("", createHandler("store", models.CreateStore))
	stores.PUT("/:id", updateHandler("store", models.UpdateStore))
	stores.DELETE("/:id", deleteHandler("store", models.DeleteStore))
	stores.PATCH("/:id/active", toggleActiveHandler("store", models.ToggleActiveStore))
	stores.POST("/:id/icon", iconUploadHandler(models.ReferenceTypeStore))

	categories := api.Group("/categories")
	categories.GET("", listCategoriesHandler())
	categories.GET("/all", listAllHandler(models.ListAllCategory))
	categories.GET("/:id", getHandler(models.GetCategory))
	categories.POST("", createHandler("category", models.CreateCategory))
	categories.PUT("/:id", updateHandler("category", models.UpdateCategory))
	categories.DELETE("/:id", deleteHandler("category", models.DeleteCategory))
	categories.PATCH("/:id/active", toggleActiveHandler("category", models.ToggleActiveCategory))
	categories.POST("/:id/icon", iconUploadHandler(models.ReferenceTypeCategory))

	paymentMethods := api.Group("/payment-methods")
	paymentMethods.GET("", listPaymentMethodsHandler())
	paymentMethods.GET("/all", listAllHandler(models.ListAllPaymentMethod))
	paymentMethods.GET("/:id", getHandler(models.GetPaymentMethod))
	paymentMethods.POST("", createHandler("payment method", models.CreatePaymentMethod))
	paymentMethods.PUT("/:id", updateHandler("payment method", models.UpdatePaymentMethod))
	paymentMethods.DELETE("/:id", deleteHandler("payment method", models.DeletePaymentMethod))
	paymentMethods.PATCH("/:id/active", toggleActiveHandler("payment method", models.ToggleActivePaymentMethod))

	movementTypes := api.Group("/movement-types")
	movementTypes.GET("", listMovementTypesHandler())
	movementTypes.GET("/all", listAllHandler(models.ListAllMovementType))
	movementTypes.GET("/:id", getHandler(models.GetMovementType))
	movementTypes.POST("", createHandler("movement type", models.CreateMovementType))
	movementTypes.PUT("/:id", updateHandler("movement type", models.UpdateMovementType))
	movementTypes.DELETE("/:id", deleteHandler("movement type", models.DeleteMovementType))
	movementTypes.PATCH("/:id/active", toggleActiveHandler("movement type", models.ToggleActiveMovementType))

	contacts := api.Group("/clientes-fornecedores")
	contacts.GET("", listClientesFornecedoresHandler())
	contacts.GET("/all", listAllHandler(models.ListAllClienteFornecedor))
	contacts.GET("/:id", getHandler(models.GetClienteFornecedor))
	contacts.POST("", createHandler("cliente/fornecedor", models.CreateClienteFornecedor))
	contacts.PUT("/:id", updateHandler("cliente/fornecedor", models.UpdateClienteFornecedor))
	contacts.DELETE("/:id", deleteHandler("cliente/fornecedor", models.DeleteClienteFornecedor))
	contacts.PATCH("/:id/active", toggleActiveHandler("cliente/fornecedor", models.ToggleActiveClienteFornecedor))
}

func registerTransactions(api *gin.RouterGroup) {
	transactions := api.Group("/transactions")
	transactions.GET("", listTransactionsHandler())
	transactions.GET("/:id", getTransactionHandler())
	transactions.POST("", createHandler("transaction", models.CreateTransaction))
	transactions.PUT("/:id", updateHandler("transaction", models.UpdateTransaction))
	transactions.DELETE("/:id", deleteHandler("transaction", models.DeleteTransaction))
	transactions.POST("/bulk-delete", bulkDeleteTransactionsHandler())
	transactions.GET("/:id/documents", listDocumentsHandler(models.ReferenceTypeTransaction))
	transactions.POST("/:id/documents", documentUploadHandler(models.ReferenceTypeTransaction))
	transactions.POST("/:id/documents/url", documentAttachHandler(models.ReferenceTypeTransaction))

	api.DELETE("/documents/:id", deleteHandler("document", models.DeleteDocument))
	api.GET("/history", historyHandler())
}

func registerClosings(api *gin.RouterGroup) {
	closings := api.Group("/closings")
	closings.GET("", listClosingsHandler())
	closings.GET("/by-date", closingByDateHandler())
	closings.GET("/export", closingsExportHandler())
	closings.GET("/:id", getClosingHandler())
	closings.POST("", saveClosingHandler())
	closings.POST("/calculate", calculateClosingHandler())
	closings.DELETE("/:id", deleteHandler("closing", models.DeleteStoreClosing))
	closings.GET("/:id/documents", listDocumentsHandler(models.ReferenceTypeStoreClosing))
	closings.POST("/:id/documents", documentUploadHandler(models.ReferenceTypeStoreClosing))
	closings.POST("/:id/documents/url", documentAttachHandler(models.ReferenceTypeStoreClosing))
}

func registerReports(api *gin.RouterGroup) {
	rep := api.Group("/reports")
	rep.GET("/dre", dreHandler())
	rep.GET("/dre/export", dreExportHandler())
	rep.GET("/category-summary", categorySummaryHandler())
	rep.GET("/daily-summaries", dailySummariesHandler())
}

func registerAdmin(admin *gin.RouterGroup) {
	admin.GET("/bases", listBasesHandler())
	admin.POST("/bases", createBaseHandler())
	admin.GET("/bases/:baseId", getBaseHandler())
	admin.PUT("/bases/:baseId", updateBaseHandler())
	admin.PATCH("/bases/:baseId/active", toggleBaseHandler())
	admin.GET("/bases/:baseId/authorized-uids", listAuthorizedUidsHandler())
	admin.POST("/bases/:baseId/authorized-uids", addAuthorizedUidHandler())
	admin.DELETE("/bases/:baseId/authorized-uids/:uid", removeAuthorizedUidHandler())

	admin.GET("/users", listUsersHandler())
	admin.POST("/users/admin", createAdminUserHandler())
	admin.PATCH("/users/:uid/auth-status", toggleUserAuthStatusHandler())

	admin.GET("/outbox/unhealthy", unhealthyOutboxHandler())
	admin.POST("/outbox/:id/replay", outboxReplayHandler())
}
