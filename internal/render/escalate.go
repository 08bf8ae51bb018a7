package render

// Escalate builds the action block a skill embeds when content it must serve
// is unavailable (a convention document, a plan file, a dispatch target). The
// block instructs the orchestrator to halt and surface the gap instead of
// improvising replacement content. Detail lines, when given, render before
// the standing instructions.
func Escalate(reason string, detail ...string) []string {
	lines := append([]string(nil), detail...)
	lines = append(lines,
		"Stop here. Report the reason above to your caller verbatim.",
		"Do not invent substitute content and do not continue past this step.",
	)
	el := Element{
		Name:  "escalate",
		Attrs: []Attr{{Key: "reason", Value: reason}},
		Lines: lines,
	}
	return el.BlockLines()
}
