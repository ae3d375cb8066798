package handler

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/AlexanderRomeroBasetis/jira-test-generator/internal/http/dto"
	"github.com/AlexanderRomeroBasetis/jira-test-generator/internal/model"
	"github.com/AlexanderRomeroBasetis/jira-test-generator/internal/service"
	"github.com/gin-gonic/gin"
)

type TestCaseHandler struct {
	testCaseService service.TestCaseService
}

func NewTestCaseHandler(testCaseService service.TestCaseService) *TestCaseHandler {
	return &TestCaseHandler{testCaseService: testCaseService}
}

func (h *TestCaseHandler) GetIssue(c *gin.Context) {
	ctx := c.Request.Context()

	issue, err := h.testCaseService.GetIssue(ctx, c.Param("key"))
	if err != nil {
		h.abort(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToIssueResponse(issue))
}

func (h *TestCaseHandler) ListProjectIssues(c *gin.Context) {
	ctx := c.Request.Context()

	issues, err := h.testCaseService.ListProjectIssues(ctx, c.Param("key"))
	if err != nil {
		h.abort(c, err)
		return
	}

	projectKey, _ := service.NormalizeProjectKey(c.Param("key"))
	c.JSON(http.StatusOK, dto.ToProjectIssuesResponse(projectKey, issues))
}

func (h *TestCaseHandler) Generate(c *gin.Context) {
	ctx := c.Request.Context()

	// The body is optional; an absent one means no hint.
	var req dto.GenerateTestCasesRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			slog.WarnContext(ctx, "invalid request body", "error", err)
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	_, result, err := h.testCaseService.Generate(ctx, c.Param("key"), model.ParseHint(req.Type))
	if err != nil {
		h.abort(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToGenerateTestCasesResponse(result))
}

func (h *TestCaseHandler) PostComment(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.PostCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.WarnContext(ctx, "invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.testCaseService.PostComment(ctx, c.Param("key"), req.ToModel()); err != nil {
		h.abort(c, err)
		return
	}

	key, _ := service.NormalizeIssueKey(c.Param("key"))
	c.JSON(http.StatusCreated, dto.PostCommentResponse{IssueKey: key, Posted: len(req.Cases)})
}

func (h *TestCaseHandler) ProviderStatus(c *gin.Context) {
	ctx := c.Request.Context()

	kind, err := h.testCaseService.CheckProvider(ctx)
	if err != nil {
		status, msg := errorStatus(err)
		c.JSON(status, dto.ProviderStatusResponse{Provider: string(kind), Available: false, Error: msg})
		return
	}

	c.JSON(http.StatusOK, dto.ProviderStatusResponse{Provider: string(kind), Available: true})
}

func (h *TestCaseHandler) abort(c *gin.Context, err error) {
	status, msg := errorStatus(err)
	_ = c.Error(err)
	c.JSON(status, gin.H{"error": msg})
}
