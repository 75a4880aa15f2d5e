package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uraniaedu/urania-api/internal/dto"
	appErrors "github.com/uraniaedu/urania-api/pkg/errors"
)

type generatorStub struct {
	resp    *dto.GenerateTimetableResponse
	err     error
	lastID  int64
	lastReq dto.GenerateTimetableRequest
}

func (s *generatorStub) Generate(ctx context.Context, draftID int64, req dto.GenerateTimetableRequest) (*dto.GenerateTimetableResponse, error) {
	s.lastID = draftID
	s.lastReq = req
	return s.resp, s.err
}

func newGeneratorRouter(stub *generatorStub) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := &GeneratorHandler{service: stub}
	r.POST("/drafts/:id/generate", h.Generate)
	return r
}

func TestGeneratorHandlerGenerate(t *testing.T) {
	stub := &generatorStub{resp: &dto.GenerateTimetableResponse{Success: true, Status: "OPTIMAL", DraftID: 7}}
	r := newGeneratorRouter(stub)

	body := strings.NewReader(`{"maxSeconds": 60, "limitGaps": false}`)
	req := httptest.NewRequest(http.MethodPost, "/drafts/7/generate", body)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(7), stub.lastID)
	assert.Equal(t, 60, stub.lastReq.MaxSeconds)
	require.NotNil(t, stub.lastReq.LimitGaps)
	assert.False(t, *stub.lastReq.LimitGaps)
	assert.Contains(t, w.Body.String(), `"status":"OPTIMAL"`)
}

func TestGeneratorHandlerGenerateEmptyBody(t *testing.T) {
	stub := &generatorStub{resp: &dto.GenerateTimetableResponse{Success: true, Status: "OPTIMAL"}}
	r := newGeneratorRouter(stub)

	req := httptest.NewRequest(http.MethodPost, "/drafts/7/generate", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGeneratorHandlerRejectsBadID(t *testing.T) {
	stub := &generatorStub{}
	r := newGeneratorRouter(stub)

	req := httptest.NewRequest(http.MethodPost, "/drafts/abc/generate", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGeneratorHandlerPropagatesNotFound(t *testing.T) {
	stub := &generatorStub{err: appErrors.Clone(appErrors.ErrNotFound, "timetable draft not found")}
	r := newGeneratorRouter(stub)

	req := httptest.NewRequest(http.MethodPost, "/drafts/7/generate", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "NOT_FOUND")
}
