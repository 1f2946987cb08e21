package httpx

import (
	"net/http"

	"github.com/Brijesh59/kite/domain"
	"github.com/Brijesh59/kite/internal/http/handlers"
	"github.com/Brijesh59/kite/internal/http/middleware"
	"github.com/Brijesh59/kite/internal/telemetry"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// RouterDeps are the handlers and middleware the router mounts
type RouterDeps struct {
	Auth     *handlers.AuthHandlers
	Admin    *handlers.AdminHandlers
	Policies *handlers.PolicyHandlers
	AuthMW   *middleware.AuthMW
	PolicyMW *middleware.PolicyMW
	Metrics  prometheus.Gatherer
	Logger   *zap.Logger
}

func BuildRouter(d RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(
		middleware.RequestID(),
		telemetry.TracingMiddleware(),
		middleware.Logger(d.Logger),
		gin.CustomRecovery(func(c *gin.Context, recovered any) {
			d.Logger.Error("panic recovered", zap.Any("panic", recovered), zap.String("path", c.Request.URL.Path))
			middleware.AbortWithError(c, domain.ErrInternal)
		}),
	)

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"statusCode": http.StatusNotFound, "message": "Route not found"})
	})

	api := r.Group("/api")
	api.GET("/health", handlers.Health)
	if d.Metrics != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Metrics, promhttp.HandlerOpts{})))
	}

	auth := api.Group("/auth")
	auth.POST("/register", d.Auth.Register)
	auth.POST("/login", d.Auth.Login)
	auth.POST("/send-otp", d.Auth.SendOTP)
	auth.POST("/verify-otp", d.Auth.VerifyOTP)
	auth.POST("/forgot-password", d.Auth.ForgotPassword)
	auth.POST("/reset-password", d.Auth.ResetPassword)
	auth.POST("/refresh-token", d.Auth.Refresh)
	auth.POST("/logout", d.Auth.Logout)
	auth.GET("/me", d.AuthMW.Authenticate(), d.Auth.Me)

	adm := api.Group("/admin", d.AuthMW.Authenticate(), middleware.RequireAdmin(), d.PolicyMW.Enforce())
	adm.GET("/users", d.Admin.ListUsers)
	adm.POST("/users", d.Admin.CreateUser)
	adm.GET("/users/:id", d.Admin.GetUser)
	adm.PUT("/users/:id", d.Admin.UpdateUser)
	adm.PATCH("/users/:id/deactivate", d.Admin.DeactivateUser)
	adm.DELETE("/users/:id", d.Admin.DeleteUser)

	adm.GET("/policies", d.Policies.List)
	adm.POST("/policies", d.Policies.Add)
	adm.DELETE("/policies", d.Policies.Remove)

	return r
}
