package agent

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"repolens/internal/gateway"
	"repolens/internal/tool"
)

const plannerPreamble = `You are a repository analysis assistant. Decide which tools must be called to answer the user's question about a source-code repository.

Available tools:
`

const plannerInstructions = `
Respond with a single JSON object and nothing else, shaped exactly like:
{"tools_to_use": [{"tool": "<tool name>", "arguments": {...}}], "processing_strategy": "<how the results should be combined>", "response_format": "<how the final answer should be presented>"}

Only use tool names from the list above and supply every required argument.
Use an empty "tools_to_use" list when the question needs no repository data.`

const synthesizerPreamble = `You are a repository analysis assistant. Answer the user's question using only the tool results below. Format the answer in Markdown. If a tool failed, say what could not be retrieved instead of guessing.`

const noResultsNote = "No tool data was gathered for this query."

func buildPlannerPrompt(specs []tool.Spec) string {
	var b strings.Builder
	b.WriteString(plannerPreamble)
	for _, s := range specs {
		fmt.Fprintf(&b, "- %s: %s\n", s.Name, s.Description)
		if len(s.Parameters) > 0 {
			fmt.Fprintf(&b, "  arguments schema: %s\n", s.Parameters)
		}
	}
	b.WriteString(plannerInstructions)
	return b.String()
}

func buildSynthesizerPrompt(plan Plan, toolResults string) string {
	var b strings.Builder
	b.WriteString(synthesizerPreamble)
	if plan.Strategy != "" {
		fmt.Fprintf(&b, "\n\nProcessing strategy: %s", plan.Strategy)
	}
	if plan.FormatHint != "" {
		fmt.Fprintf(&b, "\nResponse format: %s", plan.FormatHint)
	}
	b.WriteString("\n\nTool results:\n")
	b.WriteString(toolResults)
	return b.String()
}

// buildContext renders results as a numbered block. invocations may be
// shorter than results; missing names are left out.
func buildContext(invocations []tool.Invocation, results []gateway.Result) string {
	if len(results) == 0 {
		return noResultsNote
	}

	var b strings.Builder
	for i, r := range results {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "Result %d", i+1)
		if i < len(invocations) {
			fmt.Fprintf(&b, " (%s)", invocations[i].Tool)
		}
		b.WriteString(":\n")
		if r.Success {
			b.WriteString(prettyJSON(r.Data))
		} else {
			b.WriteString("Error: " + r.Error)
		}
	}
	return b.String()
}

func prettyJSON(data json.RawMessage) string {
	if len(data) == 0 {
		return "null"
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, data, "", "  "); err != nil {
		return string(data)
	}
	return buf.String()
}
