package app

import (
	"fmt"

	"transcripthub/pkg/ai"
	"transcripthub/pkg/domain"
)

const groundingTemplate = `You are an assistant answering questions about a video. Answer using only the transcript below. Cite the relevant [MM:SS] timestamps when you point at a specific moment. If the transcript does not contain the answer, say that it does not.

Transcript:
%s`

const summaryInstruction = "You summarize video transcripts. Reply with a short plain-text summary, no preamble."

// summaryPlaceholder stands in when summarization fails; extraction itself
// still succeeds.
const summaryPlaceholder = "Summary unavailable."

// buildChatContext assembles the gateway request for one reply: a single
// system turn embedding the full transcript verbatim, then every stored
// message in ascending creation order with roles carried through unchanged.
// The current user turn is persisted before assembly, so it arrives here as
// the tail of history.
func buildChatContext(transcript domain.Transcript, history []domain.Message) []ai.ChatMessage {
	messages := make([]ai.ChatMessage, 0, len(history)+1)
	messages = append(messages, ai.ChatMessage{
		Role:    "system",
		Content: fmt.Sprintf(groundingTemplate, transcript.Content),
	})
	for _, msg := range history {
		messages = append(messages, ai.ChatMessage{Role: msg.Role, Content: msg.Content})
	}
	return messages
}

// buildSummaryContext assembles the single-shot summarization request issued
// right after an extraction.
func buildSummaryContext(transcript domain.Transcript) []ai.ChatMessage {
	return []ai.ChatMessage{
		{Role: "system", Content: summaryInstruction},
		{Role: domain.RoleUser, Content: "Summarize this transcript:\n\n" + transcript.Content},
	}
}
