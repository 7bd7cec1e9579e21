package api

import (
	"github.com/gin-gonic/gin"

	"github.com/charlesng35/soiree/internal/handlers"
)

func registerGuestRoutes(api *gin.RouterGroup, svc *serviceSet) {
	dashboard := handlers.NewDashboardHandler(svc.dashboard, svc.guests)
	api.GET("/dashboard", dashboard.Show)
	api.PUT("/rsvp", dashboard.UpdateRSVP)

	invites := handlers.NewInviteHandler(svc.invites)
	group := api.Group("/invites")
	{
		group.GET("", invites.List)
		group.POST("", invites.Create)
		group.PUT("/:id", invites.Update)
		group.DELETE("/:id", invites.Delete)
		group.GET("/:id/qr", invites.QR)
	}
}
