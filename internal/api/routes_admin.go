package api

import (
	"github.com/gin-gonic/gin"

	"github.com/charlesng35/soiree/internal/handlers"
)

func registerAdminRoutes(admin *gin.RouterGroup, svc *serviceSet) {
	guests := handlers.NewGuestHandler(svc.guests)
	group := admin.Group("/guests")
	{
		group.GET("", guests.List)
		group.POST("", guests.Create)
		group.POST("/import", guests.Import)
		group.GET("/export", guests.Export)
		group.PUT("/:id", guests.Update)
		group.DELETE("/:id", guests.Delete)
	}
	admin.GET("/stats", guests.Stats)

	catalog := handlers.NewCatalogHandler(svc.catalog)
	events := admin.Group("/events")
	{
		events.GET("", catalog.ListEvents)
		events.POST("", catalog.CreateEvent)
		events.PUT("/:id", catalog.UpdateEvent)
		events.DELETE("/:id", catalog.DeleteEvent)
	}
	subs := admin.Group("/subevents")
	{
		subs.POST("", catalog.CreateSubEvent)
		subs.PUT("/:id", catalog.UpdateSubEvent)
		subs.DELETE("/:id", catalog.DeleteSubEvent)
	}
	timeline := admin.Group("/timeline")
	{
		timeline.GET("", catalog.ListTimeline)
		timeline.POST("", catalog.CreateTimelineItem)
		timeline.PUT("/:id", catalog.UpdateTimelineItem)
		timeline.DELETE("/:id", catalog.DeleteTimelineItem)
	}

	settings := handlers.NewSettingsHandler(svc.settings)
	admin.GET("/settings", settings.Get)
	admin.PUT("/settings", settings.Update)

	broadcast := handlers.NewBroadcastHandler(svc.broadcast)
	admin.POST("/broadcast", broadcast.Send)
}
