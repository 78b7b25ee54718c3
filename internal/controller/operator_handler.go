package controller

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"otrabotki-service/internal/apperror"
	"otrabotki-service/internal/model"
	"otrabotki-service/internal/service"
)

func (c *Controller) handleCreateTeacher(w http.ResponseWriter, r *http.Request) {
	var input service.CreateTeacherInput
	if err := decodeBody(r, &input); err != nil {
		writeError(w, c.logger, err)
		return
	}
	if err := c.validate.Struct(input); err != nil {
		writeError(w, c.logger, apperror.Validation("fio and at least one subject are required"))
		return
	}
	teacher, err := c.users.CreateTeacher(r.Context(), input)
	if err != nil {
		writeError(w, c.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, teacher)
}

func (c *Controller) handleListTeachers(w http.ResponseWriter, r *http.Request) {
	teachers, err := c.users.List(r.Context(), model.RoleTeacher)
	if err != nil {
		writeError(w, c.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, teachers)
}

func (c *Controller) handleListSchedules(w http.ResponseWriter, r *http.Request) {
	schedules, err := c.slots.ListSchedules(r.Context())
	if err != nil {
		writeError(w, c.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, schedules)
}

func (c *Controller) handleCreateSchedule(w http.ResponseWriter, r *http.Request) {
	var input service.CreateScheduleInput
	if err := decodeBody(r, &input); err != nil {
		writeError(w, c.logger, err)
		return
	}
	if err := c.validate.Struct(input); err != nil {
		writeError(w, c.logger, apperror.Validation("invalid schedule payload"))
		return
	}
	schedule, err := c.slots.CreateSchedule(r.Context(), input)
	if err != nil {
		writeError(w, c.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, schedule)
}

func (c *Controller) handleDeleteSchedule(w http.ResponseWriter, r *http.Request) {
	if err := c.slots.DeleteSchedule(r.Context(), chi.URLParam(r, "scheduleID")); err != nil {
		writeError(w, c.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

type generateRequest struct {
	FirstSlotDate string `json:"firstSlotDate"`
	WeeksAhead    int    `json:"weeksAhead"`
}

func (c *Controller) handleGenerateForSchedule(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, c.logger, err)
		return
	}
	schedule, err := c.slots.GetSchedule(r.Context(), chi.URLParam(r, "scheduleID"))
	if err != nil {
		writeError(w, c.logger, err)
		return
	}
	created, err := c.slots.GenerateForSchedule(r.Context(), *schedule, req.FirstSlotDate, req.WeeksAhead)
	if err != nil {
		writeError(w, c.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, created)
}

func (c *Controller) handleGenerateAll(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, c.logger, err)
		return
	}
	created, err := c.slots.GenerateForAllSchedules(r.Context(), req.WeeksAhead)
	if err != nil {
		writeError(w, c.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, created)
}

func (c *Controller) handleAllSlots(w http.ResponseWriter, r *http.Request) {
	slots, err := c.slots.ListSlots(r.Context())
	if err != nil {
		writeError(w, c.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, slots)
}

func (c *Controller) handleEditSlot(w http.ResponseWriter, r *http.Request) {
	var patch service.SlotPatch
	if err := decodeBody(r, &patch); err != nil {
		writeError(w, c.logger, err)
		return
	}
	slot, err := c.slots.EditSlot(r.Context(), chi.URLParam(r, "slotID"), patch)
	if err != nil {
		writeError(w, c.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, slot)
}

type createCourseRequest struct {
	Name       string `json:"name" validate:"required"`
	SubjectIDs []int  `json:"subjectIds"`
}

func (c *Controller) handleCreateCourse(w http.ResponseWriter, r *http.Request) {
	var req createCourseRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, c.logger, err)
		return
	}
	if err := c.validate.Struct(req); err != nil {
		writeError(w, c.logger, apperror.Validation("course name is required"))
		return
	}
	course, err := c.catalog.CreateCourse(r.Context(), req.Name, req.SubjectIDs)
	if err != nil {
		writeError(w, c.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, course)
}

func (c *Controller) handleDeleteCourse(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "courseID"))
	if err != nil {
		writeError(w, c.logger, apperror.Validation("course id must be a number"))
		return
	}
	if err := c.catalog.DeleteCourse(r.Context(), id); err != nil {
		writeError(w, c.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

type createSubjectRequest struct {
	Name string `json:"name" validate:"required"`
}

func (c *Controller) handleCreateSubject(w http.ResponseWriter, r *http.Request) {
	var req createSubjectRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, c.logger, err)
		return
	}
	if err := c.validate.Struct(req); err != nil {
		writeError(w, c.logger, apperror.Validation("subject name is required"))
		return
	}
	subject, err := c.catalog.CreateSubject(r.Context(), req.Name)
	if err != nil {
		writeError(w, c.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, subject)
}

func (c *Controller) handleDeleteSubject(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "subjectID"))
	if err != nil {
		writeError(w, c.logger, apperror.Validation("subject id must be a number"))
		return
	}
	if err := c.catalog.DeleteSubject(r.Context(), id); err != nil {
		writeError(w, c.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
