package handlers

import (
	"net/http"

	"github.com/google/uuid"

	"service-transport/internal/domain"
	"service-transport/internal/service"
)

type ReportHandler struct {
	service *service.ReportService
}

func NewReportHandler(svc *service.ReportService) *ReportHandler {
	return &ReportHandler{service: svc}
}

func (h *ReportHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /students/{studentID}/schedule-matrix", h.handleStudentMatrix)
	mux.HandleFunc("GET /reports/route-occupancy", h.handleRouteOccupancy)
}

type matrixCellResponse struct {
	Time        string `json:"time"`
	RouteNumber string `json:"route_number,omitempty"`
	Note        string `json:"note,omitempty"`
}

func (h *ReportHandler) handleStudentMatrix(w http.ResponseWriter, r *http.Request) {
	studentID, err := uuid.Parse(r.PathValue("studentID"))
	if err != nil {
		writeError(w, http.StatusBadRequest)
		return
	}

	matrix, err := h.service.StudentMatrix(r.Context(), studentID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response := map[string]map[string]matrixCellResponse{}
	for _, day := range domain.Weekdays() {
		row := map[string]matrixCellResponse{}
		for _, period := range domain.Periods() {
			cell, ok := matrix.Cell(day, period)
			if !ok {
				continue
			}
			row[string(period)] = matrixCellResponse{
				Time:        cell.StopTime,
				RouteNumber: cell.RouteNumber,
				Note:        cell.Note,
			}
		}
		response[string(day)] = row
	}
	writeJSON(w, http.StatusOK, response)
}

type routeOccupancyResponse struct {
	Route string `json:"route"`
	AM    int    `json:"am"`
	MD    int    `json:"md"`
	PM    int    `json:"pm"`
	EX    int    `json:"ex"`
	Total int    `json:"total"`
}

func (h *ReportHandler) handleRouteOccupancy(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.RouteOccupancy(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response := make([]routeOccupancyResponse, 0, len(report))
	for _, row := range report {
		response = append(response, routeOccupancyResponse{
			Route: row.Route,
			AM:    row.Counts.AM,
			MD:    row.Counts.MD,
			PM:    row.Counts.PM,
			EX:    row.Counts.EX,
			Total: row.Counts.Total(),
		})
	}
	writeJSON(w, http.StatusOK, response)
}
