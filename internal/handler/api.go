package handler

import (
	"github.com/geoattend/internal/config"
	"github.com/geoattend/internal/service"
	"gorm.io/gorm"
)

// API bundles shared dependencies for HTTP handlers.
type API struct {
	db         *gorm.DB
	attendance *service.AttendanceService
	exports    *service.ExportService
	auth       *service.AuthService
}

// NewAPI constructs a handler set with shared services.
func NewAPI(gdb *gorm.DB, cfg config.AppConfig) *API {
	locations := service.NewLocationService(cfg.GeoIPBaseURL)

	return &API{
		db:         gdb,
		attendance: service.NewAttendanceService(gdb, locations),
		exports:    service.NewExportService(),
		auth:       service.NewAuthService(cfg.AdminUsername, cfg.AdminPassword),
	}
}

// DB exposes the underlying gorm instance for legacy paths.
func (a *API) DB() *gorm.DB {
	return a.db
}
