package app

import (
	"database/sql"
	"net/http"

	transport "service-transport/internal/http"
	"service-transport/internal/http/handlers"
	"service-transport/internal/repository"
	"service-transport/internal/service"
)

type App struct {
	handler       http.Handler
	slotService   *service.SlotService
	reportService *service.ReportService
}

func New(db *sql.DB) *App {
	slotRepo := repository.NewSlotPostgresRepository(db)
	studentRepo := repository.NewStudentPostgresRepository(db)

	slotService := service.NewSlotService(slotRepo, studentRepo)
	reportService := service.NewReportService(slotRepo, studentRepo)

	slotHandler := handlers.NewSlotHandler(slotService)
	reportHandler := handlers.NewReportHandler(reportService)
	router := transport.NewRouter(slotHandler, reportHandler)

	return &App{
		handler:       router.Handler(),
		slotService:   slotService,
		reportService: reportService,
	}
}

func (a *App) Handler() http.Handler {
	return a.handler
}

func (a *App) Reports() *service.ReportService {
	return a.reportService
}
