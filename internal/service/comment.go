package service

import (
	"fmt"
	"strings"

	"github.com/AlexanderRomeroBasetis/jira-test-generator/internal/model"
)

const commentHeading = "Test Cases Generados"

// FormatComment renders selected test cases as the plain-text Jira comment.
// Placeholder cases are refused so synthetic text never reaches Jira.
func FormatComment(cases []model.TestCase) (string, error) {
	if len(cases) == 0 {
		return "", ErrNoTestCases
	}

	var sb strings.Builder
	sb.WriteString(commentHeading)
	sb.WriteString("\n")

	for i, tc := range cases {
		if tc.Placeholder {
			return "", fmt.Errorf("%w: test case %d", ErrPlaceholderCase, i+1)
		}
		if !tc.Valid() {
			return "", fmt.Errorf("%w: test case %d needs a title, description, expected result and category", ErrInvalidTestCase, i+1)
		}

		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("Test Case %d: %s\n", i+1, tc.Title))
		sb.WriteString(fmt.Sprintf("Tipo: %s\n", tc.Category))
		sb.WriteString(fmt.Sprintf("Descripción: %s\n", tc.Description))
		sb.WriteString(fmt.Sprintf("Resultado esperado: %s\n", tc.ExpectedResult))
	}

	return strings.TrimRight(sb.String(), "\n"), nil
}
