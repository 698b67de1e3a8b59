package ws

import "testing"

func TestHubAddAndRemoveClient(t *testing.T) {
	hub := NewHub()

	hub.AddClient("user-a", nil, ConnInfo{})
	if len(hub.feeds) != 1 {
		t.Fatalf("expected feed to be created")
	}

	hub.RemoveClient("user-a", nil)
	if len(hub.feeds) != 0 {
		t.Fatalf("expected feed to be removed")
	}
}

func TestHubRemoveUnknownClient(t *testing.T) {
	hub := NewHub()

	hub.RemoveClient("user-b", nil)
	if len(hub.feeds) != 0 {
		t.Fatalf("expected hub to stay empty")
	}
}
