package controller

import (
	"net/http"

	"otrabotki-service/internal/apperror"
	"otrabotki-service/internal/service"
)

type loginRequest struct {
	Login    string `json:"login" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (c *Controller) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, c.logger, err)
		return
	}
	if err := c.validate.Struct(req); err != nil {
		writeError(w, c.logger, apperror.Validation("login and password are required"))
		return
	}

	result, err := c.auth.Login(r.Context(), req.Login, req.Password)
	if err != nil {
		writeError(w, c.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (c *Controller) handleRegister(w http.ResponseWriter, r *http.Request) {
	var input service.RegisterInput
	if err := decodeBody(r, &input); err != nil {
		writeError(w, c.logger, err)
		return
	}
	if err := c.validate.Struct(input); err != nil {
		writeError(w, c.logger, apperror.Validation("email, password (6+), fio, group, course and student card number are required"))
		return
	}

	result, err := c.auth.Register(r.Context(), input)
	if err != nil {
		writeError(w, c.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

func (c *Controller) handleMe(w http.ResponseWriter, r *http.Request) {
	auth, _ := authFrom(r.Context())
	user, err := c.auth.Me(r.Context(), auth.UserID)
	if err != nil {
		writeError(w, c.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (c *Controller) handleListCourses(w http.ResponseWriter, r *http.Request) {
	courses, err := c.catalog.ListCourses(r.Context())
	if err != nil {
		writeError(w, c.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, courses)
}

func (c *Controller) handleListSubjects(w http.ResponseWriter, r *http.Request) {
	subjects, err := c.catalog.ListSubjects(r.Context())
	if err != nil {
		writeError(w, c.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, subjects)
}
