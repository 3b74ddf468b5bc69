package gateway

import "testing"

func TestRoomIndexJoinLeave(t *testing.T) {
	idx := newRoomIndex()
	c1, c2 := &Connection{id: "c1"}, &Connection{id: "c2"}

	idx.join(RoomGlobal, c1)
	idx.join(RoomGlobal, c2)
	if got := len(idx.members(RoomGlobal)); got != 2 {
		t.Fatalf("members = %d, want 2", got)
	}

	idx.leave(RoomGlobal, c1)
	members := idx.members(RoomGlobal)
	if len(members) != 1 || members[0] != c2 {
		t.Fatalf("expected only c2 to remain, got %+v", members)
	}
}

func TestRoomIndexLeaveAllRemovesFromEveryRoom(t *testing.T) {
	idx := newRoomIndex()
	c := &Connection{id: "c1"}
	idx.join(QuestionRoom("q1"), c)
	idx.join(RoomLeaderboard, c)
	idx.join(RoomGlobal, c)

	idx.leaveAll(c)

	if idx.roomCount() != 0 {
		t.Errorf("expected every room vacated by its sole member to be pruned, got %d rooms", idx.roomCount())
	}
}

func TestRoomIndexEmptyRoomIsPruned(t *testing.T) {
	idx := newRoomIndex()
	c := &Connection{id: "c1"}
	idx.join(RoomGlobal, c)
	idx.leave(RoomGlobal, c)
	if idx.roomCount() != 0 {
		t.Errorf("expected the room to be pruned once empty, got %d rooms", idx.roomCount())
	}
}

func TestRoomNameConstructors(t *testing.T) {
	if got := QuestionRoom("q1"); got != "question:q1" {
		t.Errorf("QuestionRoom = %q", got)
	}
	if got := AgentRoom("a1"); got != "agent:a1" {
		t.Errorf("AgentRoom = %q", got)
	}
}
