package scheduler

import (
	"testing"
	"time"
)

func at(hour, minute int) time.Time {
	return time.Date(2024, time.March, 4, hour, minute, 0, 0, time.UTC)
}

func window(startH, startM, endH, endM int) Interval {
	return Interval{Start: at(startH, startM), End: at(endH, endM)}
}

func TestIntervalOverlaps(t *testing.T) {
	t.Parallel()

	base := window(10, 0, 11, 0)
	cases := []struct {
		name  string
		other Interval
		want  bool
	}{
		{"identical", window(10, 0, 11, 0), true},
		{"starts inside", window(10, 30, 11, 30), true},
		{"ends inside", window(9, 30, 10, 30), true},
		{"contains", window(9, 0, 12, 0), true},
		{"contained", window(10, 15, 10, 45), true},
		{"back to back after", window(11, 0, 12, 0), false},
		{"back to back before", window(9, 0, 10, 0), false},
		{"disjoint", window(13, 0, 14, 0), false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := base.Overlaps(tc.other); got != tc.want {
				t.Fatalf("Overlaps(%v) = %v, want %v", tc.other, got, tc.want)
			}
			if got := tc.other.Overlaps(base); got != tc.want {
				t.Fatalf("overlap must be symmetric for %s", tc.name)
			}
		})
	}
}

func TestNewInterval(t *testing.T) {
	t.Parallel()

	if _, err := NewInterval(at(10, 0), at(10, 0)); err != ErrInvalidInterval {
		t.Fatalf("expected ErrInvalidInterval for empty range, got %v", err)
	}
	if _, err := NewInterval(at(11, 0), at(10, 0)); err != ErrInvalidInterval {
		t.Fatalf("expected ErrInvalidInterval for inverted range, got %v", err)
	}
	if _, err := NewInterval(time.Time{}, at(10, 0)); err != ErrInvalidInterval {
		t.Fatalf("expected ErrInvalidInterval for zero start, got %v", err)
	}
	iv, err := NewInterval(at(10, 0), at(10, 30))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if iv.Duration() != 30*time.Minute {
		t.Fatalf("unexpected duration %v", iv.Duration())
	}
}

func TestRoomAndOrganizerConflicts(t *testing.T) {
	t.Parallel()

	existing := []Booking{
		{ID: "m1", RoomID: "room-a", OrganizerID: "u1", Status: StatusScheduled, Interval: window(10, 0, 11, 0)},
		{ID: "m2", RoomID: "room-b", OrganizerID: "u2", Status: StatusCancelled, Interval: window(10, 0, 11, 0)},
		{ID: "m3", RoomID: "room-c", OrganizerID: "u3", Status: StatusCompleted, Interval: window(14, 0, 15, 0)},
	}

	t.Run("room overlap is a conflict", func(t *testing.T) {
		t.Parallel()
		if !RoomHasConflict(existing, "room-a", window(10, 30, 11, 30), "") {
			t.Fatalf("expected room conflict")
		}
	})

	t.Run("excluded meeting does not conflict with itself", func(t *testing.T) {
		t.Parallel()
		if RoomHasConflict(existing, "room-a", window(10, 30, 11, 30), "m1") {
			t.Fatalf("expected no conflict when excluding m1")
		}
	})

	t.Run("cancelled meetings release the room", func(t *testing.T) {
		t.Parallel()
		if RoomHasConflict(existing, "room-b", window(10, 0, 11, 0), "") {
			t.Fatalf("cancelled meeting must not block the room")
		}
		if OrganizerHasConflict(existing, "u2", window(10, 0, 11, 0), "") {
			t.Fatalf("cancelled meeting must not block the organizer")
		}
	})

	t.Run("completed meetings still occupy their slot", func(t *testing.T) {
		t.Parallel()
		if !RoomHasConflict(existing, "room-c", window(14, 30, 15, 30), "") {
			t.Fatalf("completed meeting should still count as a booking")
		}
	})

	t.Run("organizer overlap in another room is a conflict", func(t *testing.T) {
		t.Parallel()
		if !OrganizerHasConflict(existing, "u1", window(10, 45, 12, 0), "") {
			t.Fatalf("expected organizer conflict")
		}
		if RoomHasConflict(existing, "room-z", window(10, 45, 12, 0), "") {
			t.Fatalf("unrelated room should be free")
		}
	})

	t.Run("touching intervals are free", func(t *testing.T) {
		t.Parallel()
		if RoomHasConflict(existing, "room-a", window(11, 0, 12, 0), "") {
			t.Fatalf("back-to-back booking must be allowed")
		}
	})
}

func TestCapacityExceeded(t *testing.T) {
	t.Parallel()

	cases := []struct {
		capacity, current, adding int
		want                      bool
	}{
		{2, 1, 1, false},
		{2, 1, 2, true},
		{2, 0, 0, false},
		{0, 0, 1, true},
		{10, 10, 0, false},
	}
	for _, tc := range cases {
		if got := CapacityExceeded(tc.capacity, tc.current, tc.adding); got != tc.want {
			t.Fatalf("CapacityExceeded(%d, %d, %d) = %v, want %v", tc.capacity, tc.current, tc.adding, got, tc.want)
		}
	}
}

func TestDetectConflicts(t *testing.T) {
	t.Parallel()

	existing := []Booking{
		{ID: "m1", RoomID: "room-a", OrganizerID: "u9", Status: StatusScheduled, Interval: window(9, 0, 10, 0)},
		{ID: "m2", RoomID: "room-b", OrganizerID: "u1", Status: StatusRescheduled, Interval: window(9, 30, 10, 30)},
		{ID: "m3", RoomID: "room-a", OrganizerID: "u1", Status: StatusCancelled, Interval: window(9, 0, 10, 0)},
	}
	candidate := Booking{ID: "new", RoomID: "room-a", OrganizerID: "u1", Interval: window(9, 45, 10, 15)}

	got := DetectConflicts(existing, candidate)
	if len(got) != 2 {
		t.Fatalf("expected 2 conflicts, got %#v", got)
	}
	if got[0].Type != ConflictTypeRoom || got[0].WithMeetingID != "m1" {
		t.Fatalf("expected room conflict with m1 first, got %#v", got[0])
	}
	if got[1].Type != ConflictTypeOrganizer || got[1].WithMeetingID != "m2" {
		t.Fatalf("expected organizer conflict with m2, got %#v", got[1])
	}

	if conflicts := DetectConflicts(existing, Booking{ID: "new", RoomID: "room-c", OrganizerID: "u7", Interval: window(9, 0, 10, 0)}); len(conflicts) != 0 {
		t.Fatalf("non-overlapping resources should yield no conflicts, got %#v", conflicts)
	}
}
