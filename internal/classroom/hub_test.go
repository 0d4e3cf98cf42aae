package classroom

import (
	"encoding/json"
	"testing"
	"time"

	"chesscoach/internal/models"
)

const testFEN = "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 1"

func newTestClient(classID int64, name, role string) *Client {
	return &Client{
		send:    make(chan []byte, 16),
		UserID:  1,
		Name:    name,
		Role:    role,
		ClassID: classID,
	}
}

func receive(t *testing.T, c *Client) BoardUpdate {
	t.Helper()
	select {
	case data := <-c.send:
		var update BoardUpdate
		if err := json.Unmarshal(data, &update); err != nil {
			t.Fatalf("failed to unmarshal update: %v", err)
		}
		return update
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for update")
		return BoardUpdate{}
	}
}

func expectNothing(t *testing.T, c *Client) {
	t.Helper()
	select {
	case data := <-c.send:
		t.Fatalf("unexpected message: %s", data)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestHubBroadcastsToRoom(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	coach := newTestClient(1, "Coach", models.RoleCoach)
	student := newTestClient(1, "Student", models.RoleStudent)
	other := newTestClient(2, "Elsewhere", models.RoleStudent)

	hub.Join(coach)
	hub.Join(student)
	hub.Join(other)

	// coach sees student's join; drain it
	receive(t, coach)

	hub.PushBoard(1, testFEN, "Coach")

	for _, c := range []*Client{coach, student} {
		update := receive(t, c)
		if update.Type != MessageBoard {
			t.Errorf("Type = %q, want board", update.Type)
		}
		if update.FEN != testFEN {
			t.Errorf("FEN = %q, want %q", update.FEN, testFEN)
		}
		if update.By != "Coach" {
			t.Errorf("By = %q, want Coach", update.By)
		}
	}

	// Other room never sees it
	expectNothing(t, other)
}

func TestHubReplaysLastPositionToLateJoiner(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	coach := newTestClient(5, "Coach", models.RoleCoach)
	hub.Join(coach)
	hub.PushBoard(5, testFEN, "Coach")
	receive(t, coach) // own broadcast

	late := newTestClient(5, "Latecomer", models.RoleStudent)
	hub.Join(late)

	update := receive(t, late)
	if update.Type != MessageBoard || update.FEN != testFEN {
		t.Errorf("late joiner got %+v, want current board %q", update, testFEN)
	}
}

func TestHubLastWriteWins(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	coach := newTestClient(3, "Coach", models.RoleCoach)
	hub.Join(coach)

	first := "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 1"
	second := "rnbqkbnr/pppp1ppp/8/4p3/4P3/8/PPPP1PPP/RNBQKBNR w KQkq e6 0 2"

	hub.PushBoard(3, first, "Coach")
	receive(t, coach)
	hub.PushBoard(3, second, "Coach")
	receive(t, coach)

	late := newTestClient(3, "Latecomer", models.RoleStudent)
	hub.Join(late)

	update := receive(t, late)
	if update.FEN != second {
		t.Errorf("late joiner got %q, want last written %q", update.FEN, second)
	}
}

func TestHubDropsUpdateForEmptyRoom(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	// No clients in room 9; must not panic or block
	hub.PushBoard(9, testFEN, "Coach")

	// Joining afterwards gets no replay: the write was dropped
	late := newTestClient(9, "Latecomer", models.RoleStudent)
	hub.Join(late)
	expectNothing(t, late)
}

func TestHubLeaveNotifiesRoom(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	coach := newTestClient(4, "Coach", models.RoleCoach)
	student := newTestClient(4, "Student", models.RoleStudent)
	hub.Join(coach)
	hub.Join(student)
	receive(t, coach) // student's join

	hub.Leave(student)

	update := receive(t, coach)
	if update.Type != MessageLeft || update.By != "Student" {
		t.Errorf("got %+v, want left notification for Student", update)
	}
}
