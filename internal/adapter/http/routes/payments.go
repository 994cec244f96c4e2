package routes

import (
	"payment_service/internal/adapter/http/handlers"

	"github.com/gin-gonic/gin"
)

const (
	PathPayments = "/payments"
)

func addPaymentRoutes(rg *gin.RouterGroup, paymentHandler *handlers.PaymentHandler) {
	payments := rg.Group(PathPayments)
	{
		payments.POST("/validate", paymentHandler.ValidatePayment)
		payments.POST("", paymentHandler.CreatePayment)
		payments.POST("/refund", paymentHandler.RefundPayment)

		payments.GET("/:id", paymentHandler.GetPayment)
		payments.GET("/order/:order_id", paymentHandler.ListPaymentsByOrder)
		payments.GET("/user/:user_id", paymentHandler.ListPaymentsByUser)

		payments.PUT("/:id/status", paymentHandler.UpdatePaymentStatus)
		payments.PUT("/:id/capture", paymentHandler.CapturePayment)

		payments.DELETE("/:id/cancel", paymentHandler.CancelPayment)
		payments.DELETE("/:id", paymentHandler.DeletePayment)
	}
}
