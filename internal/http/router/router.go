package router

import (
	"github.com/AlexanderRomeroBasetis/jira-test-generator/internal/http/handler"
	"github.com/AlexanderRomeroBasetis/jira-test-generator/internal/service"
	"github.com/gin-gonic/gin"
)

func SetupRoutes(router *gin.Engine, services *service.Services) {
	router.SetHTMLTemplate(handler.Templates())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	if m := services.Metrics(); m != nil {
		router.GET("/metrics", gin.WrapH(m.Handler()))
	}

	testCaseHandler := handler.NewTestCaseHandler(services.TestCases())
	PageRouter(router.Group("/issues"), testCaseHandler)

	v1 := router.Group("/api/v1")
	{
		IssueRouter(v1.Group("/issues"), testCaseHandler)
		ProjectRouter(v1.Group("/projects"), testCaseHandler)
		v1.GET("/provider", testCaseHandler.ProviderStatus)
	}
}
