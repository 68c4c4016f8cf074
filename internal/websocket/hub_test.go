package chatws

import (
	"encoding/json"
	"testing"
	"time"
)

func TestWriteErrorDeliversToResponsiveClient(t *testing.T) {
	hub := NewHub()
	client := NewClient(hub, nil, "42")

	writeError(client, "invalid message payload")

	select {
	case payload := <-client.send:
		var message Message
		if err := json.Unmarshal(payload, &message); err != nil {
			t.Fatalf("decode error frame: %v", err)
		}
		if message.Type != "error" || message.Content != "invalid message payload" {
			t.Fatalf("unexpected error frame %+v", message)
		}
	default:
		t.Fatal("expected an error frame on the send buffer")
	}
}

func TestWriteErrorEvictsClientWithFullBuffer(t *testing.T) {
	hub := NewHub()
	client := NewClient(hub, nil, "42")
	for i := 0; i < cap(client.send); i++ {
		client.send <- []byte("backlog")
	}

	done := make(chan struct{})
	go func() {
		writeError(client, "slow consumer")
		close(done)
	}()

	select {
	case evicted := <-hub.unregister:
		if evicted != client {
			t.Fatal("expected the blocked client to be handed to the hub")
		}
	case <-time.After(time.Second):
		t.Fatal("blocked client was never unregistered")
	}
	<-done
}
