package podcast

import "testing"

func TestAudioKeyStablePerChat(t *testing.T) {
	if a, b := audioKey("chat-1"), audioKey("chat-1"); a != b {
		t.Errorf("regenerating must reuse the same object key, got %q then %q", a, b)
	}
	if a, b := audioKey("chat-1"), audioKey("chat-2"); a == b {
		t.Errorf("distinct chats share the object key %q", a)
	}
	if got, want := audioKey("chat-1"), "podcasts/chat-1.mp3"; got != want {
		t.Errorf("audioKey = %q, want %q", got, want)
	}
}
