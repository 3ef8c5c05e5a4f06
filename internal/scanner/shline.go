package scanner

import (
	"regexp"
	"strings"

	"mvdan.cc/sh/v3/syntax"
)

// reMarkerComment matches the body of a comment token that is exactly a
// suppression marker.
var reMarkerComment = regexp.MustCompile(`(?i)^\s*(audit|oxidized-skills):ignore\s*$`)

// shellCommentSuppression re-judges a textual suppression match by lexing
// line as shell. The marker only counts when it survives as a real comment
// token; markers living inside string literals or glued onto a word, as in
// echo '# audit:ignore', suppress nothing. Lines that do not parse in
// isolation (say, the body of an unclosed heredoc) keep the textual
// verdict.
func shellCommentSuppression(line string) bool {
	parser := syntax.NewParser(syntax.KeepComments(true))
	prog, err := parser.Parse(strings.NewReader(line), "")
	if err != nil {
		return true
	}
	found := false
	syntax.Walk(prog, func(node syntax.Node) bool {
		if c, ok := node.(*syntax.Comment); ok && reMarkerComment.MatchString(c.Text) {
			found = true
		}
		return true
	})
	return found
}
