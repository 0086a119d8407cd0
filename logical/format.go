package logical

import (
	"strings"
)

// Format renders a plan tree as indented text, one node per line with
// children indented beneath their parent. It is a pure function of the
// plan and writes to no sink itself.
func Format(plan LogicalPlan) string {
	var sb strings.Builder
	format(&sb, plan, 0)
	return sb.String()
}

func format(sb *strings.Builder, plan LogicalPlan, depth int) {
	sb.WriteString(strings.Repeat("  ", depth))
	sb.WriteString(plan.String())
	sb.WriteString("\n")
	for _, child := range plan.Children() {
		format(sb, child, depth+1)
	}
}
