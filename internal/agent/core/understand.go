package core

import (
	"context"
	"fmt"
)

// Understand analyzes the student's argument before any rebuttal is written.
// It identifies the core claims and key supporting points without arguing.
func Understand(ctx context.Context, llm LLMProvider, model string, policy RetryPolicy, sub Submission) (UnderstoodArguments, structuredUsage, error) {
	system := `You are a world-class debate analyst. Your job is to accurately understand the student's argument. Do not argue yet. Identify the core claims and key supporting points succinctly.
Return ONLY strict JSON with keys:
{"summary": string, "key_points": [string], "detected_claims": [string]}`

	prompt := fmt.Sprintf("Motion: %s\nStudent side: %s\nStudent argument:\n%s",
		sub.Motion, sub.StudentSide, sub.ArgumentText)

	understood, usage, err := generateStructured[UnderstoodArguments](
		ctx, llm, model, "understand_arguments",
		system, prompt,
		map[string]interface{}{"temperature": 0.2, "max_tokens": 800},
		policy,
		func(u *UnderstoodArguments) error {
			if u.Summary == "" {
				return fmt.Errorf("summary is empty")
			}
			return nil
		},
	)
	if err != nil {
		return UnderstoodArguments{}, usage, err
	}
	return understood, usage, nil
}
