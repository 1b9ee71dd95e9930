package router

import (
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/yi-nology/stl_backend/biz/handler"
	"github.com/yi-nology/stl_backend/biz/handler/version"
)

// RegisterRoutes configures the /api/v1 routes of the plant configuration API.
func RegisterRoutes(r *server.Hertz, h *handler.Handler) {
	if h == nil {
		return
	}

	v1 := r.Group("/api/v1")
	v1.GET("/version", version.GetVersion)

	customers := v1.Group("/customers")
	customers.GET("", h.ListCustomers)
	customers.POST("", h.CreateCustomer)
	customers.GET("/:id", h.GetCustomer)
	customers.PUT("/:id", h.UpdateCustomer)
	customers.DELETE("/:id", h.DeleteCustomer)
	customers.GET("/:id/plants", h.ListCustomerPlants)
	customers.GET("/:id/can-delete", h.CanDeleteCustomer)

	plants := v1.Group("/plants")
	plants.GET("", h.ListPlants)
	plants.POST("", h.CreatePlant)
	plants.GET("/:id", h.GetPlant)
	plants.PUT("/:id", h.UpdatePlant)
	plants.DELETE("/:id", h.DeletePlant)
	plants.GET("/:id/revisions", h.ListPlantRevisions)
	plants.POST("/:id/revisions", h.CreatePlantRevision)
	plants.DELETE("/:id/revisions", h.DeletePlantRevision)
	plants.PUT("/:id/revisions/activate", h.ActivatePlantRevision)
	plants.PUT("/:id/revisions/archive", h.ArchivePlantRevision)
	plants.GET("/:id/active", h.GetActivePlantRevision)
	plants.POST("/:id/export", h.ExportPlantRevision)
	plants.GET("/:id/lines", h.ListPlantLines)
	plants.GET("/:id/lines/next-number", h.NextLineNumber)

	lines := v1.Group("/lines")
	lines.POST("", h.CreateLine)
	lines.GET("/:id", h.GetLine)
	lines.PUT("/:id", h.UpdateLine)
	lines.DELETE("/:id", h.DeleteLine)
	lines.GET("/:id/tanks", h.ListLineTanks)

	groups := v1.Group("/tank-groups")
	groups.GET("", h.ListTankGroups)
	groups.POST("", h.CreateTankGroup)
	groups.GET("/:id", h.GetTankGroup)
	groups.PUT("/:id", h.UpdateTankGroup)
	groups.DELETE("/:id", h.DeleteTankGroup)
	groups.GET("/:id/can-delete", h.CanDeleteTankGroup)

	tanks := v1.Group("/tanks")
	tanks.GET("", h.ListTanks)
	tanks.POST("", h.CreateTank)
	tanks.GET("/:id", h.GetTank)
	tanks.PUT("/:id", h.UpdateTank)
	tanks.DELETE("/:id", h.DeleteTank)
	tanks.GET("/:id/can-delete", h.CanDeleteTank)

	v1.GET("/exports/*key", h.DownloadExport)

	r.GET("/ping", handler.Ping)
}
