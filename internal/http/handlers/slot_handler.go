package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"service-transport/internal/domain"
	"service-transport/internal/service"
)

type SlotHandler struct {
	service  *service.SlotService
	validate *validator.Validate
}

func NewSlotHandler(svc *service.SlotService) *SlotHandler {
	return &SlotHandler{
		service:  svc,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (h *SlotHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /students/{studentID}/slots", h.handleList)
	mux.HandleFunc("POST /students/{studentID}/slots", h.handleCreate)
	mux.HandleFunc("PUT /students/{studentID}/slots/{slotID}/days/{day}", h.handleEditDay)
	mux.HandleFunc("DELETE /students/{studentID}/slots/{slotID}/days/{day}", h.handleRemoveDay)
	mux.HandleFunc("DELETE /students/{studentID}/slots/{slotID}", h.handleDelete)
}

// slotRequest is the write payload for create and edit-day. Legacy
// clients send time_slot instead of time and sometimes a JSON-wrapped
// note; both are normalized here, before the engine sees the record.
type slotRequest struct {
	Days           []string        `json:"days" validate:"required,min=1,dive,oneof=monday tuesday wednesday thursday friday"`
	Time           string          `json:"time" validate:"omitempty,datetime=15:04"`
	TimeSlot       string          `json:"time_slot" validate:"omitempty,datetime=15:04"`
	SchoolSchedule string          `json:"school_schedule" validate:"required"`
	RouteNumber    string          `json:"route_number"`
	Note           json.RawMessage `json:"note"`
}

func (r slotRequest) fields() domain.SlotFields {
	stopTime := r.Time
	if stopTime == "" {
		stopTime = r.TimeSlot
	}
	return domain.SlotFields{
		StopTime:       stopTime,
		SchoolSchedule: r.SchoolSchedule,
		RouteNumber:    strings.TrimSpace(r.RouteNumber),
		Note:           decodeNote(r.Note),
	}
}

func decodeNote(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return text
	}
	return strings.TrimSpace(string(raw))
}

type slotResponse struct {
	ID             string   `json:"id"`
	StudentID      *string  `json:"student_id"`
	FamilyID       string   `json:"family_id"`
	Days           []string `json:"days"`
	Time           string   `json:"time"`
	SchoolSchedule string   `json:"school_schedule"`
	RouteNumber    string   `json:"route_number,omitempty"`
	Note           string   `json:"note,omitempty"`
	Group          string   `json:"group"`
}

func toSlotResponse(slot domain.ScheduleSlot) slotResponse {
	days := slot.Days.Weekdays()
	tokens := make([]string, len(days))
	for i, day := range days {
		tokens[i] = string(day)
	}

	var studentID *string
	if slot.StudentID != nil {
		id := slot.StudentID.String()
		studentID = &id
	}

	return slotResponse{
		ID:             slot.ID.String(),
		StudentID:      studentID,
		FamilyID:       slot.FamilyID.String(),
		Days:           tokens,
		Time:           slot.StopTime,
		SchoolSchedule: slot.SchoolSchedule,
		RouteNumber:    slot.RouteNumber,
		Note:           slot.Note,
		Group:          domain.DisplayGroup(slot),
	}
}

func (h *SlotHandler) handleList(w http.ResponseWriter, r *http.Request) {
	studentID, err := uuid.Parse(r.PathValue("studentID"))
	if err != nil {
		writeError(w, http.StatusBadRequest)
		return
	}

	slots, err := h.service.StudentSlots(r.Context(), studentID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response := make([]slotResponse, 0, len(slots))
	for _, slot := range slots {
		response = append(response, toSlotResponse(slot))
	}
	writeJSON(w, http.StatusOK, response)
}

func (h *SlotHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	studentID, err := uuid.Parse(r.PathValue("studentID"))
	if err != nil {
		writeError(w, http.StatusBadRequest)
		return
	}

	req, ok := h.decodeSlotRequest(w, r)
	if !ok {
		return
	}

	days, err := domain.ParseDaySet(req.Days)
	if err != nil {
		writeError(w, http.StatusBadRequest)
		return
	}

	created, err := h.service.Create(r.Context(), studentID, req.fields(), days)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toSlotResponse(created))
}

func (h *SlotHandler) handleEditDay(w http.ResponseWriter, r *http.Request) {
	studentID, slotID, ok := parseSlotPath(w, r)
	if !ok {
		return
	}
	targetDay, err := domain.ParseWeekday(r.PathValue("day"))
	if err != nil {
		writeError(w, http.StatusBadRequest)
		return
	}

	req, ok := h.decodeSlotRequest(w, r)
	if !ok {
		return
	}
	newDays, err := domain.ParseDaySet(req.Days)
	if err != nil {
		writeError(w, http.StatusBadRequest)
		return
	}

	edited, err := h.service.EditDay(r.Context(), studentID, slotID, targetDay, req.fields(), newDays)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSlotResponse(edited))
}

func (h *SlotHandler) handleRemoveDay(w http.ResponseWriter, r *http.Request) {
	studentID, slotID, ok := parseSlotPath(w, r)
	if !ok {
		return
	}
	targetDay, err := domain.ParseWeekday(r.PathValue("day"))
	if err != nil {
		writeError(w, http.StatusBadRequest)
		return
	}

	if err := h.service.RemoveDay(r.Context(), studentID, slotID, targetDay); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *SlotHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	studentID, slotID, ok := parseSlotPath(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), studentID, slotID); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *SlotHandler) decodeSlotRequest(w http.ResponseWriter, r *http.Request) (slotRequest, bool) {
	var req slotRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest)
		return slotRequest{}, false
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest)
		return slotRequest{}, false
	}
	return req, true
}

func parseSlotPath(w http.ResponseWriter, r *http.Request) (uuid.UUID, uuid.UUID, bool) {
	studentID, err := uuid.Parse(r.PathValue("studentID"))
	if err != nil {
		writeError(w, http.StatusBadRequest)
		return uuid.Nil, uuid.Nil, false
	}
	slotID, err := uuid.Parse(r.PathValue("slotID"))
	if err != nil {
		writeError(w, http.StatusBadRequest)
		return uuid.Nil, uuid.Nil, false
	}
	return studentID, slotID, true
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		writeError(w, http.StatusBadRequest)
	case errors.Is(err, service.ErrNotFound):
		writeError(w, http.StatusNotFound)
	default:
		writeError(w, http.StatusInternalServerError)
	}
}

func writeError(w http.ResponseWriter, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte("{}"))
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
