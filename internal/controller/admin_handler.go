package controller

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"otrabotki-service/internal/apperror"
	"otrabotki-service/internal/model"
	"otrabotki-service/internal/service"
)

func (c *Controller) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := c.users.List(r.Context(), r.URL.Query().Get("role"))
	if err != nil {
		writeError(w, c.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

func (c *Controller) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var input service.CreateUserInput
	if err := decodeBody(r, &input); err != nil {
		writeError(w, c.logger, err)
		return
	}
	if err := c.validate.Struct(input); err != nil {
		writeError(w, c.logger, apperror.Validation("invalid user payload"))
		return
	}
	user, err := c.users.Create(r.Context(), input)
	if err != nil {
		writeError(w, c.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

func (c *Controller) handleGetUser(w http.ResponseWriter, r *http.Request) {
	user, err := c.users.Get(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		writeError(w, c.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (c *Controller) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	var input service.UpdateUserInput
	if err := decodeBody(r, &input); err != nil {
		writeError(w, c.logger, err)
		return
	}
	user, err := c.users.Update(r.Context(), chi.URLParam(r, "userID"), input)
	if err != nil {
		writeError(w, c.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (c *Controller) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	auth, _ := authFrom(r.Context())
	userID := chi.URLParam(r, "userID")
	if userID == auth.UserID {
		writeError(w, c.logger, apperror.Conflict("cannot delete your own account"))
		return
	}
	if err := c.users.Delete(r.Context(), userID); err != nil {
		writeError(w, c.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (c *Controller) handleGetLimits(w http.ResponseWriter, r *http.Request) {
	limits, err := c.catalog.GetLimits(r.Context())
	if err != nil {
		writeError(w, c.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, limits)
}

func (c *Controller) handleSetLimits(w http.ResponseWriter, r *http.Request) {
	var limits model.Limits
	if err := decodeBody(r, &limits); err != nil {
		writeError(w, c.logger, err)
		return
	}
	saved, err := c.catalog.SetLimits(r.Context(), limits)
	if err != nil {
		writeError(w, c.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

func (c *Controller) handleBookingRequests(w http.ResponseWriter, r *http.Request) {
	requests, err := c.analytics.BookingRequests(r.Context())
	if err != nil {
		writeError(w, c.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, requests)
}

func (c *Controller) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	report, err := c.analytics.BuildReport(r.Context())
	if err != nil {
		writeError(w, c.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}
