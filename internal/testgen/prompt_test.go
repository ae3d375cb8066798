package testgen_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/AlexanderRomeroBasetis/jira-test-generator/internal/model"
	"github.com/AlexanderRomeroBasetis/jira-test-generator/internal/testgen"
)

func loginIssue() model.Issue {
	return model.Issue{
		Key:         "PROJ-1",
		Summary:     "Login fails",
		IssueType:   "Bug",
		Status:      model.Status{Name: "Open"},
		Priority:    "High",
		Project:     model.Project{Key: "PROJ", Name: "Project"},
		Description: "Login returns 500",
	}
}

var _ = Describe("BuildPrompt", func() {
	It("is deterministic", func() {
		issue := loginIssue()
		Expect(testgen.BuildPrompt(issue, model.HintApi)).To(Equal(testgen.BuildPrompt(issue, model.HintApi)))
		Expect(testgen.BuildPrompt(issue, model.HintNone)).To(Equal(testgen.BuildPrompt(issue, model.HintNone)))
	})

	It("serializes every issue field", func() {
		prompt := testgen.BuildPrompt(loginIssue(), model.HintNone)

		Expect(prompt).To(ContainSubstring("Key: PROJ-1"))
		Expect(prompt).To(ContainSubstring("Título: Login fails"))
		Expect(prompt).To(ContainSubstring("Tipo: Bug"))
		Expect(prompt).To(ContainSubstring("Estado: Open"))
		Expect(prompt).To(ContainSubstring("Prioridad: High"))
		Expect(prompt).To(ContainSubstring("Proyecto: Project (PROJ)"))
		Expect(prompt).To(ContainSubstring("Descripción: Login returns 500"))
	})

	It("declares the persona, grammar and case-count heuristic", func() {
		prompt := testgen.BuildPrompt(loginIssue(), model.HintNone)

		Expect(prompt).To(ContainSubstring("experto en QA"))
		Expect(prompt).To(ContainSubstring("TITULO:"))
		Expect(prompt).To(ContainSubstring("TIPO: [Web|Api|Error]"))
		Expect(prompt).To(ContainSubstring("DESCRIPCIÓN:"))
		Expect(prompt).To(ContainSubstring("RESULTADO:"))
		Expect(prompt).To(ContainSubstring("---"))
		Expect(prompt).To(ContainSubstring("1-2 test cases"))
		Expect(prompt).To(ContainSubstring("3-4 test cases"))
		Expect(prompt).To(ContainSubstring("5-6 test cases"))
	})

	It("omits the description line when the issue has none", func() {
		issue := loginIssue()
		issue.Description = "   "
		Expect(testgen.BuildPrompt(issue, model.HintNone)).NotTo(ContainSubstring("Descripción: "))
	})

	DescribeTable("hint guidance",
		func(hint model.TestTypeHint, present, absent string) {
			prompt := testgen.BuildPrompt(loginIssue(), hint)
			if present != "" {
				Expect(prompt).To(ContainSubstring(present))
			}
			Expect(prompt).NotTo(ContainSubstring(absent))
		},
		Entry("web hint adds frontend guidance", model.HintWeb, "## Enfoque: Web", "## Enfoque: Api"),
		Entry("api hint adds backend guidance", model.HintApi, "## Enfoque: Api", "## Enfoque: Web"),
		Entry("no hint adds neither", model.HintNone, "", "## Enfoque"),
	)

	It("places the guidance before the issue block", func() {
		prompt := testgen.BuildPrompt(loginIssue(), model.HintWeb)
		Expect(prompt).To(MatchRegexp(`(?s)## Enfoque: Web.*Issue de Jira:`))
	})
})
