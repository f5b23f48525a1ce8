package config

import "testing"

func TestPushEndpointWithToken(t *testing.T) {
	t.Setenv("PUBSUB_PUSH_TOKEN", "")
	got, err := PushEndpointWithToken("https://api.example.com/pubsub")
	if err != nil || got != "https://api.example.com/pubsub" {
		t.Fatalf("without token: %q, %v", got, err)
	}

	t.Setenv("PUBSUB_PUSH_TOKEN", "s3cr3t")
	got, err = PushEndpointWithToken("https://api.example.com/pubsub?env=prod")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "https://api.example.com/pubsub?env=prod&token=s3cr3t" {
		t.Fatalf("with token: %q", got)
	}

	if got, _ := PushEndpointWithToken(""); got != "" {
		t.Fatalf("empty endpoint must stay empty, got %q", got)
	}
}
