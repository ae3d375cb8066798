package handler

import (
	"embed"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/AlexanderRomeroBasetis/jira-test-generator/internal/model"
	"github.com/gin-gonic/gin"
)

//go:embed templates/*.html
var templateFS embed.FS

const issuePageTemplate = "issue.html"

// Templates parses the HTML pages served by PageHandler.
func Templates() *template.Template {
	return template.Must(template.New("").Funcs(template.FuncMap{
		"inc": func(i int) int { return i + 1 },
		"datetime": func(t time.Time) string {
			if t.IsZero() {
				return "-"
			}
			return t.Format("02/01/2006 15:04")
		},
	}).ParseFS(templateFS, "templates/*.html"))
}

type issuePage struct {
	Issue    *model.Issue
	Result   *model.GenerationResult
	Hint     model.TestTypeHint
	Error    string
	Degraded bool
}

// IssuePage renders an issue together with freshly generated test cases.
// A failed generation still renders the issue, with the error in place of
// the cases.
func (h *TestCaseHandler) IssuePage(c *gin.Context) {
	ctx := c.Request.Context()
	hint := model.ParseHint(c.Query("type"))

	issue, result, err := h.testCaseService.Generate(ctx, c.Param("key"), hint)
	if issue == nil {
		status, msg := errorStatus(err)
		_ = c.Error(err)
		c.HTML(status, issuePageTemplate, issuePage{Error: msg, Hint: hint})
		return
	}

	page := issuePage{Issue: issue, Result: result, Hint: hint}
	if err != nil {
		_, page.Error = errorStatus(err)
		slog.WarnContext(ctx, "rendering issue page without test cases", "error", err)
	}
	if result != nil {
		page.Degraded = result.Degraded
	}

	c.HTML(http.StatusOK, issuePageTemplate, page)
}
