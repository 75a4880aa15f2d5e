package handler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/uraniaedu/urania-api/internal/dto"
	"github.com/uraniaedu/urania-api/internal/service"
	appErrors "github.com/uraniaedu/urania-api/pkg/errors"
	"github.com/uraniaedu/urania-api/pkg/response"
)

type timetableGenerator interface {
	Generate(ctx context.Context, draftID int64, req dto.GenerateTimetableRequest) (*dto.GenerateTimetableResponse, error)
}

// GeneratorHandler exposes the timetable generation endpoint.
type GeneratorHandler struct {
	service timetableGenerator
}

// NewGeneratorHandler constructs the handler.
func NewGeneratorHandler(svc *service.GeneratorService) *GeneratorHandler {
	return &GeneratorHandler{service: svc}
}

// Generate runs the generator for a draft. The body is optional; an empty
// body uses the configured defaults.
func (h *GeneratorHandler) Generate(c *gin.Context) {
	draftID, err := parseID(c.Param("id"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "draft id must be an integer"))
		return
	}

	var req dto.GenerateTimetableRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid generation payload"))
		return
	}

	resp, err := h.service.Generate(c.Request.Context(), draftID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resp)
}

func parseID(raw string) (int64, error) {
	return strconv.ParseInt(raw, 10, 64)
}
