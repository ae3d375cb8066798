package mapper

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

var blankLines = regexp.MustCompile(`\n\s*\n`)

// HTMLToText flattens Jira's rendered description: <br> and </p> become line
// breaks, every other tag is dropped, entities are decoded and runs of blank
// lines collapse to one break.
func HTMLToText(s string) string {
	var sb strings.Builder
	z := html.NewTokenizer(strings.NewReader(s))

	for {
		switch z.Next() {
		case html.ErrorToken:
			return strings.TrimSpace(blankLines.ReplaceAllString(sb.String(), "\n"))
		case html.TextToken:
			sb.Write(z.Text())
		case html.StartTagToken, html.SelfClosingTagToken:
			if name, _ := z.TagName(); string(name) == "br" {
				sb.WriteString("\n")
			}
		case html.EndTagToken:
			if name, _ := z.TagName(); string(name) == "p" {
				sb.WriteString("\n")
			}
		}
	}
}

// ADFText concatenates the text of every text node, depth first, each
// followed by a space.
func ADFText(node ADFNode) string {
	if node.Type == "text" {
		return node.Text + " "
	}

	var sb strings.Builder
	for _, child := range node.Content {
		sb.WriteString(ADFText(child))
	}
	return sb.String()
}
