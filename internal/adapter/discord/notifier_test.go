package discord

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bytespace-io/bytespace/internal/port/notifier"
)

func TestSend_UsesDefaultURL(t *testing.T) {
	var got discordWebhook
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatal(err)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	n := NewNotifier(srv.URL)
	err := n.Send(context.Background(), notifier.Notification{
		Title:   "Byte published",
		Message: "Intro to Go is live",
		Level:   "success",
		Source:  "acme",
	})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if len(got.Embeds) != 1 {
		t.Fatalf("embeds = %d, want 1", len(got.Embeds))
	}
	if got.Embeds[0].Title != "Byte published" {
		t.Errorf("title = %q", got.Embeds[0].Title)
	}
	if got.Embeds[0].Footer == nil || got.Embeds[0].Footer.Text != "Source: acme" {
		t.Errorf("footer = %+v", got.Embeds[0].Footer)
	}
}

func TestSend_PerSpaceOverrideWins(t *testing.T) {
	overrideHit := false
	override := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		overrideHit = true
		w.WriteHeader(http.StatusNoContent)
	}))
	defer override.Close()

	n := NewNotifier("http://127.0.0.1:1/unreachable-default")
	err := n.Send(context.Background(), notifier.Notification{
		Title:      "t",
		WebhookURL: override.URL,
	})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if !overrideHit {
		t.Error("expected override webhook to be used")
	}
}

func TestSend_Unconfigured(t *testing.T) {
	n := NewNotifier("")
	err := n.Send(context.Background(), notifier.Notification{Title: "t"})
	if !errors.Is(err, notifier.ErrNotConfigured) {
		t.Errorf("err = %v, want ErrNotConfigured", err)
	}
}
