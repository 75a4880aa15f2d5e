package handler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/uraniaedu/urania-api/internal/models"
	"github.com/uraniaedu/urania-api/internal/service"
	appErrors "github.com/uraniaedu/urania-api/pkg/errors"
	"github.com/uraniaedu/urania-api/pkg/response"
)

type timetableReader interface {
	GetDraft(ctx context.Context, id int64) (*models.TimetableDraft, error)
	ListLessons(ctx context.Context, draftID, classGroupID int64) ([]models.LessonAssignment, error)
	ExportCSV(ctx context.Context, draftID int64) ([]byte, error)
	ExportPDF(ctx context.Context, draftID int64) ([]byte, error)
}

// TimetableHandler exposes read and export endpoints for generated drafts.
type TimetableHandler struct {
	service timetableReader
}

// NewTimetableHandler constructs the handler.
func NewTimetableHandler(svc *service.TimetableService) *TimetableHandler {
	return &TimetableHandler{service: svc}
}

// GetDraft returns a draft with stats and pendencies.
func (h *TimetableHandler) GetDraft(c *gin.Context) {
	draftID, err := parseID(c.Param("id"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "draft id must be an integer"))
		return
	}
	draft, err := h.service.GetDraft(c.Request.Context(), draftID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, draft)
}

// ListLessons returns the draft's lessons, optionally for one class group.
func (h *TimetableHandler) ListLessons(c *gin.Context) {
	draftID, err := parseID(c.Param("id"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "draft id must be an integer"))
		return
	}
	var classGroupID int64
	if raw := c.Query("classGroupId"); raw != "" {
		classGroupID, err = strconv.ParseInt(raw, 10, 64)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "classGroupId must be an integer"))
			return
		}
	}
	lessons, err := h.service.ListLessons(c.Request.Context(), draftID, classGroupID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, lessons)
}

// ExportCSV streams the draft timetable as CSV.
func (h *TimetableHandler) ExportCSV(c *gin.Context) {
	draftID, err := parseID(c.Param("id"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "draft id must be an integer"))
		return
	}
	raw, err := h.service.ExportCSV(c.Request.Context(), draftID)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=timetable-%d.csv", draftID))
	c.Data(http.StatusOK, "text/csv", raw)
}

// ExportPDF streams the draft timetable as PDF.
func (h *TimetableHandler) ExportPDF(c *gin.Context) {
	draftID, err := parseID(c.Param("id"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "draft id must be an integer"))
		return
	}
	raw, err := h.service.ExportPDF(c.Request.Context(), draftID)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=timetable-%d.pdf", draftID))
	c.Data(http.StatusOK, "application/pdf", raw)
}
