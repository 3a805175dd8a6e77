package scheduler

// Booking is the slice of a meeting the conflict predicates need.
type Booking struct {
	ID          string
	RoomID      string
	OrganizerID string
	Status      Status
	Interval    Interval
}

// blocks reports whether the booking still occupies its room and organizer.
func (b Booking) blocks() bool {
	return b.Status != StatusCancelled
}

// ConflictType describes which shared resource is double-booked.
type ConflictType string

const (
	// ConflictTypeRoom indicates the room is already booked.
	ConflictTypeRoom ConflictType = "room"
	// ConflictTypeOrganizer indicates the organizer already has a meeting.
	ConflictTypeOrganizer ConflictType = "organizer"
)

// Conflict details an existing booking that collides with a candidate.
type Conflict struct {
	WithMeetingID string
	Type          ConflictType
	RoomID        string
	OrganizerID   string
}

// RoomHasConflict reports whether a non-cancelled booking other than excludeID
// occupies roomID during window. An empty excludeID excludes nothing.
func RoomHasConflict(existing []Booking, roomID string, window Interval, excludeID string) bool {
	for _, b := range existing {
		if b.RoomID == roomID && collides(b, window, excludeID) {
			return true
		}
	}
	return false
}

// OrganizerHasConflict is RoomHasConflict keyed by organizer.
func OrganizerHasConflict(existing []Booking, organizerID string, window Interval, excludeID string) bool {
	for _, b := range existing {
		if b.OrganizerID == organizerID && collides(b, window, excludeID) {
			return true
		}
	}
	return false
}

// CapacityExceeded reports whether adding attendees would overflow the room.
func CapacityExceeded(capacity, currentCount, addingCount int) bool {
	return currentCount+addingCount > capacity
}

// DetectConflicts lists every room and organizer collision for the candidate,
// room conflicts first, each group in the order of existing.
func DetectConflicts(existing []Booking, candidate Booking) []Conflict {
	var rooms, organizers []Conflict
	for _, b := range existing {
		if !collides(b, candidate.Interval, candidate.ID) {
			continue
		}
		if candidate.RoomID != "" && b.RoomID == candidate.RoomID {
			rooms = append(rooms, Conflict{
				WithMeetingID: b.ID,
				Type:          ConflictTypeRoom,
				RoomID:        b.RoomID,
			})
		}
		if candidate.OrganizerID != "" && b.OrganizerID == candidate.OrganizerID {
			organizers = append(organizers, Conflict{
				WithMeetingID: b.ID,
				Type:          ConflictTypeOrganizer,
				OrganizerID:   b.OrganizerID,
			})
		}
	}
	return append(rooms, organizers...)
}

func collides(b Booking, window Interval, excludeID string) bool {
	if excludeID != "" && b.ID == excludeID {
		return false
	}
	return b.blocks() && b.Interval.Overlaps(window)
}
