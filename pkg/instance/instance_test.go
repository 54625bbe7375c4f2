package instance

import "testing"

func TestGetIDPrecedence(t *testing.T) {
	t.Setenv("WORKER_ID", "")
	t.Setenv("DYNO", "")
	t.Setenv("HOSTNAME", "")
	if got := GetID(); got != "local" {
		t.Fatalf("expected local, got %q", got)
	}

	t.Setenv("HOSTNAME", "mia-api-7f9c")
	if got := GetID(); got != "mia-api-7f9c" {
		t.Fatalf("expected hostname, got %q", got)
	}

	t.Setenv("DYNO", "web.1")
	if got := GetID(); got != "web.1" {
		t.Fatalf("expected dyno, got %q", got)
	}

	t.Setenv("WORKER_ID", "cron-0")
	if got := GetID(); got != "cron-0" {
		t.Fatalf("expected worker id, got %q", got)
	}
}
