package notify

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"lbs-connect/internal/llm"
	"lbs-connect/internal/shared/telemetry"
)

const (
	DefaultMessageModel = "gpt-4o-mini"
	draftTemperature    = 0.8
	draftMaxTokens      = 200
	draftConcurrency    = 4
	draftSystemPrompt   = "You are a professional networking coach helping craft warm, authentic LinkedIn messages."
)

type sender struct {
	Name string
	Goal string
}

func draftPrompt(from sender, to Entry) string {
	recipient := to.FirstName
	if recipient == "" {
		recipient = "there"
	}
	program := to.programOrNil()
	if program == "" {
		program = "LBS network member"
	}
	role := ""
	if to.CurrentRole != "" {
		role = " working as " + to.CurrentRole
	}
	reason := to.Reason
	if strings.TrimSpace(reason) == "" {
		reason = "Shared LBS background and complementary professional interests"
	}
	goal := from.Goal
	if strings.TrimSpace(goal) == "" {
		goal = "Expanding professional network"
	}
	return fmt.Sprintf(`Generate a professional, warm LinkedIn connection message from %s to %s, a %s%s.

Context: %s
Sender's goal: %s

Requirements:
- Keep it SHORT (3-4 sentences, under 100 words)
- Mention their LBS connection
- Reference why you're reaching out, based on the context
- Be genuine and professional, not salesy
- End with a simple call to action such as a coffee chat or a quick call
- Avoid overly formal language

Return ONLY the message text, with no subject line or additional formatting.`, from.Name, recipient, program, role, reason, goal)
}

// fallbackMessage is used when drafting fails.
func fallbackMessage(senderName, recipientName string) string {
	if recipientName == "" {
		recipientName = "there"
	}
	return fmt.Sprintf("Hi %s,\n\nI noticed we're both part of the LBS community and thought it would be great to connect. I'd love to learn more about your experience and share insights.\n\nWould you be open to a quick coffee chat?\n\nBest,\n%s", recipientName, senderName)
}

// draftMessages writes one outreach message per entry, in entry order. A
// failed draft falls back to a template and never fails the batch.
func draftMessages(ctx context.Context, client llm.Client, model string, from sender, entries []Entry) []string {
	out := make([]string, len(entries))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(draftConcurrency)
	for i, e := range entries {
		g.Go(func() error {
			msg, err := client.Complete(gctx, llm.Request{
				Operation:   llm.OpOutreach,
				System:      draftSystemPrompt,
				Prompt:      draftPrompt(from, e),
				Model:       model,
				Temperature: draftTemperature,
				MaxTokens:   draftMaxTokens,
			})
			msg = strings.TrimSpace(msg)
			if err != nil || msg == "" {
				telemetry.Warn("notify.draft.fallback", map[string]any{
					"matched_user_id": e.MatchedUserID,
					"err":             err,
				})
				msg = fallbackMessage(from.Name, e.FirstName)
			}
			out[i] = msg
			return nil
		})
	}
	_ = g.Wait()
	return out
}
