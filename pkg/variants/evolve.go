package variants

import (
	"fmt"
	"strings"

	"github.com/XiaoConstantine/promptopt-go/pkg/core"
)

// evolvedMarker tags variants whose render function has been wrapped at
// least once.
const evolvedMarker = " (evolved)"

// Evolve builds the next round's population from a decisive verdict. The
// winning slot is carried forward as-is (same pointer, same render function)
// so a working strategy never regresses; every other slot is replaced with a
// new variant that renders its base prompt and then appends guidance
// distilled from the verdict. The input slice and its variants are never
// mutated.
func Evolve(current []*core.Variant, verdict core.Verdict) []*core.Variant {
	if len(current) == 0 {
		return []*core.Variant{}
	}

	best := verdict.BestIndex
	if best < 0 || best >= len(current) {
		best = 0
	}

	guidance := buildGuidance(verdict, current[best].Name)

	next := make([]*core.Variant, len(current))
	for i, v := range current {
		if i == best {
			next[i] = v
			continue
		}
		base := v.Render
		next[i] = core.NewVariant(markEvolved(v.Name), func(task, context string) string {
			return base(task, context) + guidance
		})
	}
	return next
}

// markEvolved appends the marker once; repeated evolution never stacks it.
func markEvolved(name string) string {
	if strings.HasSuffix(name, evolvedMarker) {
		return name
	}
	return name + evolvedMarker
}

func buildGuidance(verdict core.Verdict, winnerName string) string {
	var b strings.Builder
	b.WriteString("\n\n## Guidance from earlier rounds\n")
	for _, item := range verdict.Improvements {
		b.WriteString("- ")
		b.WriteString(item)
		b.WriteString("\n")
	}
	for _, item := range verdict.Suggestions {
		b.WriteString("- ")
		b.WriteString(item)
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "\nTake inspiration from the %q approach, which produced the best result in the previous round.\n", winnerName)
	return b.String()
}
