package router

import (
	"github.com/AlexanderRomeroBasetis/jira-test-generator/internal/http/handler"
	"github.com/gin-gonic/gin"
)

func IssueRouter(rg *gin.RouterGroup, h *handler.TestCaseHandler) {
	rg.GET("/:key", h.GetIssue)
	rg.POST("/:key/test-cases", h.Generate)
	rg.POST("/:key/comments", h.PostComment)
}

func ProjectRouter(rg *gin.RouterGroup, h *handler.TestCaseHandler) {
	rg.GET("/:key/issues", h.ListProjectIssues)
}

func PageRouter(rg *gin.RouterGroup, h *handler.TestCaseHandler) {
	rg.GET("/:key", h.IssuePage)
}
