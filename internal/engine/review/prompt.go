package review

import (
	"fmt"
	"strings"

	"github.com/irahardianto/prreview/internal/engine/llm"
)

// PromptVersion is stamped onto every result. Bump it whenever the
// instructions below change.
const PromptVersion = "v1.0.0"

const systemInstruction = "You are a senior software engineer performing a PR review. " +
	"Use only the provided diff and context. " +
	"Do not invent files, behavior, or requirements. " +
	"If something is unclear, mark it as unknown or omit it."

const schemaDescription = `{
  "summary": { "overview": string, "keyChanges": string[] },
  "risk": { "level": "low"|"medium"|"high", "rationale": string[] },
  "findings": Array<{
    "id": string,
    "severity": "low"|"medium"|"high",
    "category": "bug"|"security"|"performance"|"maintainability"|"style",
    "file"?: string,
    "lineHint"?: string,
    "message": string,
    "recommendation": string
  }>,
  "suggestions": Array<{ "title": string, "detail": string, "example"?: string }>,
  "checklist": Array<{ "item": string, "status": "missing"|"ok"|"unknown" }>,
  "meta": { "model": string, "promptVersion": string }
}`

// developerInstruction describes the exact output contract to the model.
func developerInstruction() string {
	return "Return STRICT JSON only. Do not include markdown or extra text. " +
		"The JSON must exactly match this TypeScript type:\n" +
		schemaDescription + "\n" +
		fmt.Sprintf("Set meta.promptVersion to %q. ", PromptVersion) +
		"If there are no findings or suggestions, return empty arrays."
}

// BuildPrompt assembles the three-part prompt for a normalized request.
func BuildPrompt(req Request) llm.Prompt {
	user := strings.Join([]string{
		"Title: " + orNA(req.Title),
		"Repo Context: " + orNA(req.RepoContext),
		"Language: " + req.Language,
		"Review Profile: " + string(req.ReviewProfile),
		"Diff:",
		req.Diff,
	}, "\n")

	return llm.Prompt{
		System:    systemInstruction,
		Developer: developerInstruction(),
		User:      user,
	}
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
