package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Handlers bundles every route handler
type Handlers struct {
	Requests *RequestHandler
	Orders   *OrderHandler
	Chat     *ChatHandler
	Users    *UserHandler
}

// RegisterRoutes mounts the API under /api behind the given middleware chain.
// protect must reject unauthenticated callers.
func RegisterRoutes(r *gin.Engine, h Handlers, protect ...gin.HandlerFunc) {
	api := r.Group("/api", protect...)

	api.GET("/me", h.Users.Me)
	api.GET("/profiles/me", h.Users.GetProfile)
	api.PATCH("/profiles/me", h.Users.UpdateProfile)

	addresses := api.Group("/addresses")
	{
		addresses.GET("", h.Users.ListAddresses)
		addresses.POST("", h.Users.AddAddress)
		addresses.DELETE("/:id", h.Users.DeleteAddress)
	}

	requests := api.Group("/requests")
	{
		requests.POST("", h.Requests.CreateRequest)
		requests.GET("", h.Requests.ListRequests)
		requests.GET("/feed", h.Requests.HelperFeed)
		requests.GET("/:id", h.Requests.GetRequest)
		requests.GET("/:id/proposals", h.Requests.ListProposals)
		requests.POST("/:id/proposals", h.Requests.SubmitProposal)
		requests.POST("/:id/select-proposal", h.Requests.SelectProposal)
	}

	proposals := api.Group("/proposals")
	{
		proposals.POST("/:id/reject", h.Requests.RejectProposal)
		proposals.POST("/:id/withdraw", h.Requests.WithdrawProposal)
	}

	orders := api.Group("/orders")
	{
		orders.GET("", h.Orders.ListOrders)
		orders.GET("/:id", h.Orders.GetOrder)
		orders.PATCH("/:id/status", h.Orders.UpdateStatus)
		orders.GET("/:id/work-events", h.Orders.ListWorkEvents)
		orders.GET("/:id/checkout", h.Orders.Checkout)
		orders.GET("/:id/payments", h.Orders.ListPayments)
	}

	chat := api.Group("/chat/threads")
	{
		chat.POST("", h.Chat.CreateThread)
		chat.GET("/:id/messages", h.Chat.ListMessages)
		chat.POST("/:id/messages", h.Chat.SendMessage)
	}
}

// HealthCheck reports service and database health
func HealthCheck(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "database": "unreachable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
