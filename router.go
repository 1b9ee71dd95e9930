package main

import (
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/yi-nology/stl_backend/biz/handler"
	"github.com/yi-nology/stl_backend/biz/router"
	"github.com/yi-nology/stl_backend/pkg/config"
	"gorm.io/gorm"
)

// register wires the API routes plus the operational endpoints.
func register(r *server.Hertz, cfg *config.Config, db *gorm.DB, h *handler.Handler) {
	router.RegisterRoutes(r, h)
	r.GET("/health", handler.Health(db))
	if cfg.Metrics.Enabled {
		r.GET(cfg.Metrics.Path, adaptor.HertzHandler(promhttp.Handler()))
	}
}
