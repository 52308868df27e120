package server

import (
	"fmt"
	"net/http"
	"testing"
)

type roomSummaryBody struct {
	ID        uint `json:"id"`
	OtherUser struct {
		ID   uint   `json:"id"`
		Name string `json:"name"`
	} `json:"other_user"`
	LastMessage *struct {
		Content string `json:"content"`
	} `json:"last_message"`
}

func TestRoomLifecycle(t *testing.T) {
	t.Parallel()
	app, _ := setupTestServer(t)

	alice := signUp(t, app, "roomalice")
	bob := signUp(t, app, "roombob")
	eve := signUp(t, app, "roomeve")

	resp := alice.do(http.MethodPost, fmt.Sprintf("/api/v1/users/%d/rooms", bob.UserID), nil)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("open room: status %d", resp.StatusCode)
	}
	var room struct {
		ID uint `json:"id"`
	}
	decodeBody(t, resp, &room)
	if room.ID == 0 {
		t.Fatal("expected a room id")
	}

	// Opening again from either side lands in the same room.
	resp = bob.do(http.MethodPost, fmt.Sprintf("/api/v1/users/%d/rooms", alice.UserID), nil)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("reopen room: status %d", resp.StatusCode)
	}
	var again struct {
		ID uint `json:"id"`
	}
	decodeBody(t, resp, &again)
	if again.ID != room.ID {
		t.Fatalf("expected the existing room %d, got %d", room.ID, again.ID)
	}

	// Messages flow in order; outsiders are shut out.
	for _, m := range []struct {
		s       *session
		content string
	}{
		{alice, "hi bob"},
		{bob, "hi alice"},
	} {
		resp = m.s.do(http.MethodPost, fmt.Sprintf("/api/v1/rooms/%d/messages", room.ID), map[string]string{"content": m.content})
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("send %q: status %d", m.content, resp.StatusCode)
		}
	}

	resp = eve.do(http.MethodPost, fmt.Sprintf("/api/v1/rooms/%d/messages", room.ID), map[string]string{"content": "let me in"})
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 messaging a foreign room, got %d", resp.StatusCode)
	}
	resp = eve.do(http.MethodGet, fmt.Sprintf("/api/v1/rooms/%d", room.ID), nil)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 reading a foreign room, got %d", resp.StatusCode)
	}

	resp = alice.do(http.MethodGet, fmt.Sprintf("/api/v1/rooms/%d", room.ID), nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get room: status %d", resp.StatusCode)
	}
	var detail struct {
		ID        uint `json:"id"`
		OtherUser struct {
			ID uint `json:"id"`
		} `json:"other_user"`
		Messages []struct {
			Content string `json:"content"`
			UserID  uint   `json:"user_id"`
		} `json:"messages"`
	}
	decodeBody(t, resp, &detail)
	if detail.OtherUser.ID != bob.UserID {
		t.Fatalf("expected bob as the counterpart, got %+v", detail.OtherUser)
	}
	if len(detail.Messages) != 2 || detail.Messages[0].Content != "hi bob" || detail.Messages[1].Content != "hi alice" {
		t.Fatalf("unexpected history: %+v", detail.Messages)
	}
}

func TestRoomListOrdering(t *testing.T) {
	t.Parallel()
	app, _ := setupTestServer(t)

	hub := signUp(t, app, "roomhub")
	first := signUp(t, app, "roomfirst")
	second := signUp(t, app, "roomsecond")
	silent := signUp(t, app, "roomsilent")

	openRoom := func(target *session) uint {
		resp := hub.do(http.MethodPost, fmt.Sprintf("/api/v1/users/%d/rooms", target.UserID), nil)
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("open room with %d: status %d", target.UserID, resp.StatusCode)
		}
		var room struct {
			ID uint `json:"id"`
		}
		decodeBody(t, resp, &room)
		return room.ID
	}

	firstRoom := openRoom(first)
	secondRoom := openRoom(second)
	openRoom(silent)

	hub.do(http.MethodPost, fmt.Sprintf("/api/v1/rooms/%d/messages", firstRoom), map[string]string{"content": "older"})
	hub.do(http.MethodPost, fmt.Sprintf("/api/v1/rooms/%d/messages", secondRoom), map[string]string{"content": "newer"})

	resp := hub.do(http.MethodGet, "/api/v1/rooms/", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list rooms: status %d", resp.StatusCode)
	}
	var rooms []roomSummaryBody
	decodeBody(t, resp, &rooms)
	if len(rooms) != 3 {
		t.Fatalf("expected 3 rooms, got %d", len(rooms))
	}
	if rooms[0].ID != secondRoom || rooms[0].LastMessage == nil || rooms[0].LastMessage.Content != "newer" {
		t.Fatalf("expected the freshest conversation first, got %+v", rooms[0])
	}
	if rooms[1].ID != firstRoom {
		t.Fatalf("expected the older conversation second, got %+v", rooms[1])
	}
	if rooms[2].LastMessage != nil {
		t.Fatalf("expected the silent room last with no message, got %+v", rooms[2])
	}
	if rooms[0].OtherUser.Name != "roomsecond" {
		t.Fatalf("expected the counterpart, not the caller, got %+v", rooms[0].OtherUser)
	}
}

func TestOpenRoomEdgeCases(t *testing.T) {
	t.Parallel()
	app, _ := setupTestServer(t)

	s := signUp(t, app, "roomself")

	resp := s.do(http.MethodPost, fmt.Sprintf("/api/v1/users/%d/rooms", s.UserID), nil)
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 opening a room with yourself, got %d", resp.StatusCode)
	}

	resp = s.do(http.MethodPost, "/api/v1/users/424242/rooms", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 opening a room with a missing user, got %d", resp.StatusCode)
	}
}
