// Package tui renders issues and generated test cases for the terminal and
// lets the user pick which cases to post back to Jira.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/AlexanderRomeroBasetis/jira-test-generator/internal/model"
)

const dateLayout = "02/01/2006 15:04"

// RenderIssue renders the issue header and fields.
func RenderIssue(issue *model.Issue) string {
	var sb strings.Builder

	sb.WriteString(keyStyle.Render(issue.Key) + " " + titleStyle.Render(issue.Summary) + "\n")
	sb.WriteString(labelStyle.Render(fmt.Sprintf("Proyecto: %s (%s)", issue.Project.Name, issue.Project.Key)) + "\n\n")

	field(&sb, "Estado", issue.Status.Name)
	field(&sb, "Tipo", issue.IssueType)
	field(&sb, "Prioridad", issue.Priority)
	field(&sb, "Reportado por", issue.Reporter.DisplayName)
	if issue.Assignee != nil {
		field(&sb, "Asignado a", issue.Assignee.DisplayName)
	}
	if !issue.Created.IsZero() {
		field(&sb, "Creado", issue.Created.Format(dateLayout))
	}
	if !issue.Updated.IsZero() {
		field(&sb, "Actualizado", issue.Updated.Format(dateLayout))
	}

	if issue.HasDescription() {
		sb.WriteString("\n" + labelStyle.Render("Descripción:") + "\n")
		sb.WriteString(strings.TrimSpace(issue.Description) + "\n")
	}

	return sb.String()
}

func field(sb *strings.Builder, label, value string) {
	sb.WriteString(labelStyle.Render(label+":") + " " + value + "\n")
}

// RenderResult renders generated test cases. Degraded results carry a
// warning and placeholder cases are marked so they are not mistaken for
// real output.
func RenderResult(result *model.GenerationResult) string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render("Test Cases Generados") + "\n")

	if result.Empty() {
		sb.WriteString(warningStyle.Render("No se pudieron generar test cases para esta issue.") + "\n")
		return sb.String()
	}

	if result.Degraded {
		sb.WriteString(warningStyle.Render("! La respuesta de AI no siguió el formato esperado; los casos provisionales no se pueden publicar.") + "\n")
	}

	for i, tc := range result.Cases {
		sb.WriteString(RenderTestCase(i+1, tc) + "\n")
	}

	sb.WriteString(labelStyle.Render(fmt.Sprintf("%d test cases · proveedor %s · %s", len(result.Cases), result.Provider, result.Duration.Round(time.Millisecond))) + "\n")
	return sb.String()
}

// RenderTestCase renders one numbered test case inside a panel.
func RenderTestCase(n int, tc model.TestCase) string {
	header := titleStyle.Render(fmt.Sprintf("Test Case %d: %s", n, tc.Title)) + " " + categoryBadge(string(tc.Category))
	if tc.Placeholder {
		header += " " + warningStyle.Render("(provisional)")
	}

	body := strings.Join([]string{
		header,
		labelStyle.Render("Descripción:"),
		tc.Description,
		labelStyle.Render("Resultado esperado:"),
		tc.ExpectedResult,
	}, "\n")

	if tc.Placeholder {
		return placeholderPanelStyle.Render(body)
	}
	return panelStyle.Render(body)
}

// RenderIssueList renders one line per issue.
func RenderIssueList(issues []model.Issue) string {
	if len(issues) == 0 {
		return labelStyle.Render("No hay issues en este proyecto.") + "\n"
	}

	var sb strings.Builder
	for _, issue := range issues {
		sb.WriteString(fmt.Sprintf("%s  %s %s\n",
			keyStyle.Render(issue.Key),
			issue.Summary,
			labelStyle.Render(fmt.Sprintf("(%s · %s)", issue.Status.Name, issue.IssueType)),
		))
	}
	return sb.String()
}

// RenderError renders a single human-readable error line.
func RenderError(err error) string {
	return errorStyle.Render("Error:") + " " + err.Error()
}

// RenderSuccess renders a confirmation line.
func RenderSuccess(msg string) string {
	return successStyle.Render("✓") + " " + msg
}
