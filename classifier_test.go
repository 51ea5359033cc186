package lettastream

import (
	"testing"
)

// TestClassifyFrame_AssistantMessage tests classification of visible answer content
func TestClassifyFrame_AssistantMessage(t *testing.T) {
	ev := ClassifyFrame([]byte(`{"message_type":"assistant_message","content":"Hi"}`))

	if ev.Kind != EventAssistantText {
		t.Fatalf("expected kind %q, got %q", EventAssistantText, ev.Kind)
	}
	if ev.Content != "Hi" {
		t.Errorf("expected content 'Hi', got %q", ev.Content)
	}
	if ev.Err != nil {
		t.Errorf("unexpected error: %v", ev.Err)
	}
}

// TestClassifyFrame_EmptyContent tests that empty content is still a valid payload
func TestClassifyFrame_EmptyContent(t *testing.T) {
	ev := ClassifyFrame([]byte(`{"message_type":"assistant_message","content":""}`))

	if ev.Kind != EventAssistantText {
		t.Fatalf("expected kind %q, got %q", EventAssistantText, ev.Kind)
	}
	if ev.Content != "" {
		t.Errorf("expected empty content, got %q", ev.Content)
	}
}

// TestClassifyFrame_UsageStatistics tests the usage discriminator
func TestClassifyFrame_UsageStatistics(t *testing.T) {
	ev := ClassifyFrame([]byte(`{"message_type":"usage_statistics","completion_tokens":12,"total_tokens":40}`))

	if ev.Kind != EventUsageStatistics {
		t.Fatalf("expected kind %q, got %q", EventUsageStatistics, ev.Kind)
	}
	if ev.Fields["completion_tokens"] != float64(12) {
		t.Errorf("expected completion_tokens 12, got %v", ev.Fields["completion_tokens"])
	}
}

// TestClassifyFrame_ReasoningStep tests reasoning classification with an explicit step
func TestClassifyFrame_ReasoningStep(t *testing.T) {
	ev := ClassifyFrame([]byte(`{"message_type":"reasoning_message","step":"planning","content":"thinking"}`))

	if ev.Kind != EventReasoningStep {
		t.Fatalf("expected kind %q, got %q", EventReasoningStep, ev.Kind)
	}
	if ev.Step != "planning" {
		t.Errorf("expected step 'planning', got %q", ev.Step)
	}
	if ev.Content != "thinking" {
		t.Errorf("expected content 'thinking', got %q", ev.Content)
	}
}

// TestClassifyFrame_ReasoningStepDefaultsToUnknown tests the missing-step default
func TestClassifyFrame_ReasoningStepDefaultsToUnknown(t *testing.T) {
	ev := ClassifyFrame([]byte(`{"message_type":"reasoning_message","content":"thinking"}`))

	if ev.Step != "unknown" {
		t.Errorf("expected step 'unknown', got %q", ev.Step)
	}
}

// TestClassifyFrame_Unrecognized tests unknown discriminator handling
func TestClassifyFrame_Unrecognized(t *testing.T) {
	ev := ClassifyFrame([]byte(`{"message_type":"tool_call_message","content":"x"}`))

	if ev.Kind != EventUnrecognized {
		t.Fatalf("expected kind %q, got %q", EventUnrecognized, ev.Kind)
	}
}

// TestClassifyFrame_MissingDiscriminator tests a record without message_type
func TestClassifyFrame_MissingDiscriminator(t *testing.T) {
	ev := ClassifyFrame([]byte(`{"content":"x"}`))

	if ev.Kind != EventUnrecognized {
		t.Fatalf("expected kind %q, got %q", EventUnrecognized, ev.Kind)
	}
}

// TestClassifyFrame_MalformedJSON tests that malformed payloads never abort classification
func TestClassifyFrame_MalformedJSON(t *testing.T) {
	raw := `{"message_type": "assistant_message", "content": `
	ev := ClassifyFrame([]byte(raw))

	if ev.Kind != EventParseError {
		t.Fatalf("expected kind %q, got %q", EventParseError, ev.Kind)
	}
	if ev.Err == nil {
		t.Error("expected a decode error")
	}
	if ev.Raw != raw {
		t.Errorf("expected raw payload to be preserved, got %q", ev.Raw)
	}
}

// TestClassifyFrame_NonObjectJSON tests valid JSON that is not an object
func TestClassifyFrame_NonObjectJSON(t *testing.T) {
	ev := ClassifyFrame([]byte(`[1,2,3]`))

	if ev.Kind != EventParseError {
		t.Fatalf("expected kind %q, got %q", EventParseError, ev.Kind)
	}
}
