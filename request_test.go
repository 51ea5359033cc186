package lettastream

import (
	"testing"
)

// TestFormatMessages_RoleMapping tests that system stays system and other roles become user
func TestFormatMessages_RoleMapping(t *testing.T) {
	formatted := formatMessages([]Message{
		{Role: RoleSystem, Content: "You are helpful."},
		{Role: RoleUser, Content: "Hi"},
		{Role: RoleAssistant, Content: "Hello!"},
	})

	if len(formatted) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(formatted))
	}
	if formatted[0].Role != "system" {
		t.Errorf("expected role 'system', got %q", formatted[0].Role)
	}
	if formatted[1].Role != "user" {
		t.Errorf("expected role 'user', got %q", formatted[1].Role)
	}
	if formatted[2].Role != "user" {
		t.Errorf("expected assistant mapped to 'user', got %q", formatted[2].Role)
	}
}

// TestFormatMessages_DropsUnsupportedRoles tests that unknown roles are skipped
func TestFormatMessages_DropsUnsupportedRoles(t *testing.T) {
	formatted := formatMessages([]Message{
		{Role: "tool", Content: "ignored"},
		{Role: RoleUser, Content: "Hi"},
	})

	if len(formatted) != 1 {
		t.Fatalf("expected 1 message, got %d", len(formatted))
	}
	if formatted[0].Content != "Hi" {
		t.Errorf("expected content 'Hi', got %q", formatted[0].Content)
	}
}

// TestFormatMessages_FallbackGreeting tests the empty-result fallback
func TestFormatMessages_FallbackGreeting(t *testing.T) {
	formatted := formatMessages([]Message{{Role: "weird", Content: "x"}})

	if len(formatted) != 1 {
		t.Fatalf("expected fallback message, got %d messages", len(formatted))
	}
	if formatted[0].Role != "user" || formatted[0].Content != "Hello" {
		t.Errorf("unexpected fallback message: %+v", formatted[0])
	}
}

// TestBuildPayload_SendsOnlyLatestMessage tests that conversation history is not resent
func TestBuildPayload_SendsOnlyLatestMessage(t *testing.T) {
	payload := buildPayload([]Message{
		{Role: RoleUser, Content: "first"},
		{Role: RoleAssistant, Content: "answer"},
		{Role: RoleUser, Content: "second"},
	})

	if len(payload.Messages) != 1 {
		t.Fatalf("expected only the latest message, got %d", len(payload.Messages))
	}
	if payload.Messages[0].Content != "second" {
		t.Errorf("expected latest message 'second', got %q", payload.Messages[0].Content)
	}
	if !payload.StreamSteps || !payload.StreamTokens {
		t.Error("expected stream_steps and stream_tokens to be enabled")
	}
}
