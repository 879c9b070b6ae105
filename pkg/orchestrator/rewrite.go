package orchestrator

import (
	"context"
	"fmt"
	"strings"

	"github.com/medsync-ai/orchestrator/pkg/llmprovider"
	"github.com/medsync-ai/orchestrator/pkg/models"
)

// rewrite implements spec.md §4.7's "Rewrite" step: normalize the raw query
// using the last historyWindow conversation turns for pronoun/substitution/
// addition/removal resolution. Returns the rewritten query and an optional
// explicit source filter list the query names (e.g. "only from vector
// store guidelines").
func (o *Orchestrator) rewrite(ctx context.Context, st *requestState) (string, []string, error) {
	model, err := o.Models.Resolve("rewrite")
	if err != nil {
		return "", nil, err
	}
	system, err := o.Prompts.Load("rewrite")
	if err != nil {
		return "", nil, err
	}

	history := recentTurns(st.sess.ConversationHistory, historyWindow)
	messages := make([]llmprovider.Message, 0, len(history)+1)
	for _, t := range history {
		role := llmprovider.RoleUser
		if t.Role == models.TurnRoleAssistant {
			role = llmprovider.RoleAssistant
		}
		messages = append(messages, llmprovider.Message{Role: role, Content: t.Content})
	}
	messages = append(messages, llmprovider.Message{Role: llmprovider.RoleUser, Content: st.req.RawQuery})

	result, err := o.LLM.CallJSON(ctx, system, messages, model)
	if err != nil {
		return "", nil, fmt.Errorf("rewrite call: %w", err)
	}
	st.accumulate(llmprovider.Usage{InputTokens: result.InputTokens, OutputTokens: result.OutputTokens})

	normalized, _ := result.Content["normalized_query"].(string)
	if strings.TrimSpace(normalized) == "" {
		normalized = st.req.RawQuery
	}
	return normalized, stringSlice(result.Content["source_filter"]), nil
}

// recentTurns returns up to n trailing turns, in original order.
func recentTurns(history []models.Turn, n int) []models.Turn {
	if len(history) <= n {
		return history
	}
	return history[len(history)-n:]
}
