package controller

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"otrabotki-service/internal/service"
)

func (c *Controller) handleAvailableSlots(w http.ResponseWriter, r *http.Request) {
	auth, _ := authFrom(r.Context())
	filter := service.AvailableFilter{
		Subject: r.URL.Query().Get("subject"),
		Date:    r.URL.Query().Get("date"),
	}
	views, err := c.booking.AvailableSlots(r.Context(), auth.UserID, filter)
	if err != nil {
		writeError(w, c.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, views)
}

func (c *Controller) handleMyBookings(w http.ResponseWriter, r *http.Request) {
	auth, _ := authFrom(r.Context())
	views, err := c.booking.MyBookings(r.Context(), auth.UserID)
	if err != nil {
		writeError(w, c.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, views)
}

func (c *Controller) handleBook(w http.ResponseWriter, r *http.Request) {
	auth, _ := authFrom(r.Context())
	slot, err := c.booking.Book(r.Context(), auth.UserID, chi.URLParam(r, "slotID"))
	if err != nil {
		writeError(w, c.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, slot)
}

func (c *Controller) handleCancel(w http.ResponseWriter, r *http.Request) {
	auth, _ := authFrom(r.Context())
	if err := c.booking.Cancel(r.Context(), auth.UserID, chi.URLParam(r, "slotID")); err != nil {
		writeError(w, c.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "canceled"})
}

func (c *Controller) handleMyLimits(w http.ResponseWriter, r *http.Request) {
	auth, _ := authFrom(r.Context())
	usage, err := c.limits.Usage(r.Context(), auth.UserID, time.Now())
	if err != nil {
		writeError(w, c.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, usage)
}
