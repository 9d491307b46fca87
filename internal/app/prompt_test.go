package app

import (
	"strings"
	"testing"

	"transcripthub/pkg/domain"
)

func TestBuildChatContext(t *testing.T) {
	transcript := domain.Transcript{Content: "[00:00] a\n[01:05] b"}
	history := []domain.Message{
		{Role: domain.RoleUser, Content: "what is said first?"},
		{Role: domain.RoleAssistant, Content: "At [00:00] the speaker says \"a\"."},
		{Role: domain.RoleUser, Content: "and then?"},
	}

	messages := buildChatContext(transcript, history)
	if len(messages) != 4 {
		t.Fatalf("len(messages) = %d, want 4", len(messages))
	}
	if messages[0].Role != "system" {
		t.Fatalf("messages[0].Role = %q, want system", messages[0].Role)
	}
	if !strings.Contains(messages[0].Content, transcript.Content) {
		t.Fatalf("grounding turn must embed the transcript verbatim:\n%s", messages[0].Content)
	}
	for i, msg := range history {
		got := messages[i+1]
		if got.Role != msg.Role || got.Content != msg.Content {
			t.Fatalf("messages[%d] = %+v, want %+v", i+1, got, msg)
		}
	}
}

func TestBuildChatContextEmptyHistory(t *testing.T) {
	messages := buildChatContext(domain.Transcript{Content: "[00:00] a"}, nil)
	if len(messages) != 1 || messages[0].Role != "system" {
		t.Fatalf("unexpected context: %+v", messages)
	}
}

func TestBuildSummaryContext(t *testing.T) {
	transcript := domain.Transcript{Content: "[00:00] a"}
	messages := buildSummaryContext(transcript)
	if len(messages) != 2 {
		t.Fatalf("len(messages) = %d, want 2", len(messages))
	}
	if messages[0].Role != "system" || messages[1].Role != domain.RoleUser {
		t.Fatalf("unexpected roles: %+v", messages)
	}
	if !strings.Contains(messages[1].Content, transcript.Content) {
		t.Fatalf("summary request must carry the transcript")
	}
}
