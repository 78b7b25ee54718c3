package controller

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"otrabotki-service/internal/apperror"
	"otrabotki-service/internal/dateutil"
	"otrabotki-service/internal/render"
	"otrabotki-service/internal/service"
)

func (c *Controller) handleTeacherSlots(w http.ResponseWriter, r *http.Request) {
	auth, _ := authFrom(r.Context())
	slots, err := c.attendance.TeacherSlots(r.Context(), auth.UserID)
	if err != nil {
		writeError(w, c.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, slots)
}

func (c *Controller) handleRoster(w http.ResponseWriter, r *http.Request) {
	auth, _ := authFrom(r.Context())
	roster, err := c.attendance.Roster(r.Context(), auth.UserID, chi.URLParam(r, "slotID"))
	if err != nil {
		writeError(w, c.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, roster)
}

func (c *Controller) handleMarkAttendance(w http.ResponseWriter, r *http.Request) {
	auth, _ := authFrom(r.Context())
	var input service.MarkInput
	if err := decodeBody(r, &input); err != nil {
		writeError(w, c.logger, err)
		return
	}
	if err := c.validate.Struct(input); err != nil {
		writeError(w, c.logger, apperror.Validation("slotId and studentId are required"))
		return
	}
	record, err := c.attendance.Mark(r.Context(), auth.UserID, input)
	if err != nil {
		writeError(w, c.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (c *Controller) handleTeacherStats(w http.ResponseWriter, r *http.Request) {
	auth, _ := authFrom(r.Context())
	stats, err := c.attendance.Stats(r.Context(), auth.UserID)
	if err != nil {
		writeError(w, c.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// handleWeekImage отдаёт PNG с недельной сеткой слотов преподавателя.
// Неделя выбирается параметром ?date=YYYY-MM-DD, по умолчанию — текущая.
func (c *Controller) handleWeekImage(w http.ResponseWriter, r *http.Request) {
	auth, _ := authFrom(r.Context())

	anchor := time.Now()
	if raw := r.URL.Query().Get("date"); raw != "" {
		parsed, err := dateutil.ParseDate(raw)
		if err != nil {
			writeError(w, c.logger, apperror.Validation("date must be YYYY-MM-DD"))
			return
		}
		anchor = parsed
	}

	slots, err := c.attendance.TeacherSlots(r.Context(), auth.UserID)
	if err != nil {
		writeError(w, c.logger, err)
		return
	}

	png, err := render.WeekImage(anchor, slots)
	if err != nil {
		writeError(w, c.logger, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}
