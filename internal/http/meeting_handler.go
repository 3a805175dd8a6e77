package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/example/meeting-reservations/internal/application"
)

type meetingService interface {
	CreateMeeting(ctx context.Context, params application.CreateMeetingParams) (application.Meeting, error)
	GetMeeting(ctx context.Context, id string) (application.Meeting, error)
	ListMeetings(ctx context.Context, params application.ListMeetingsParams) ([]application.Meeting, error)
	UpdateMeeting(ctx context.Context, params application.UpdateMeetingParams) (application.Meeting, error)
	RescheduleMeeting(ctx context.Context, params application.RescheduleMeetingParams) (application.Meeting, error)
	CancelMeeting(ctx context.Context, id string) (application.Meeting, error)
	CompleteMeeting(ctx context.Context, id string) (application.Meeting, error)
	DeleteMeeting(ctx context.Context, id string) (application.Meeting, error)
	AddAttendees(ctx context.Context, params application.AddAttendeesParams) (application.Meeting, error)
}

type MeetingHandler struct {
	service   meetingService
	responder responder
	logger    *slog.Logger
}

func NewMeetingHandler(service meetingService, logger *slog.Logger) *MeetingHandler {
	base := defaultLogger(logger)
	return &MeetingHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *MeetingHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "MeetingHandler", operation, attrs...)
}

func (h *MeetingHandler) ready(w http.ResponseWriter) bool {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return false
	}
	return true
}

// meetingID resolves the path id or answers 400.
func (h *MeetingHandler) meetingID(w http.ResponseWriter, r *http.Request, operation string) (string, bool) {
	id, ok := MeetingIDFromContext(r.Context())
	if !ok || strings.TrimSpace(id) == "" {
		h.log(r.Context(), operation, "error_kind", "bad_request").WarnContext(r.Context(), "missing meeting id")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidMeetingID)
		return "", false
	}
	return id, true
}

func (h *MeetingHandler) decode(w http.ResponseWriter, r *http.Request, operation string, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.log(r.Context(), operation, "error_kind", "bad_request").WarnContext(r.Context(), "failed to decode meeting request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return false
	}
	return true
}

func (h *MeetingHandler) Create(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}

	var req createMeetingRequest
	if !h.decode(w, r, "Create", &req) {
		return
	}

	meeting, err := h.service.CreateMeeting(r.Context(), application.CreateMeetingParams{
		Title:       req.Title,
		Start:       req.Start,
		End:         req.End,
		OrganizerID: req.OrganizerID,
		RoomID:      req.RoomID,
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusCreated, meetingResponse{Meeting: toMeetingDTO(meeting)})
}

func (h *MeetingHandler) Get(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	id, ok := h.meetingID(w, r, "Get")
	if !ok {
		return
	}

	meeting, err := h.service.GetMeeting(r.Context(), id)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, meetingResponse{Meeting: toMeetingDTO(meeting)})
}

func (h *MeetingHandler) List(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}

	params, err := listMeetingsParams(r)
	if err != nil {
		h.log(r.Context(), "List", "error_kind", "bad_request").WarnContext(r.Context(), "invalid meeting query", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadQuery)
		return
	}

	meetings, err := h.service.ListMeetings(r.Context(), params)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listMeetingsResponse{Meetings: toMeetingDTOs(meetings)})
}

func (h *MeetingHandler) Update(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	id, ok := h.meetingID(w, r, "Update")
	if !ok {
		return
	}

	var req updateMeetingRequest
	if !h.decode(w, r, "Update", &req) {
		return
	}

	meeting, err := h.service.UpdateMeeting(r.Context(), application.UpdateMeetingParams{
		MeetingID: id,
		Title:     req.Title,
		Start:     req.Start,
		End:       req.End,
		RoomID:    req.RoomID,
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, meetingResponse{Meeting: toMeetingDTO(meeting)})
}

func (h *MeetingHandler) Reschedule(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	id, ok := h.meetingID(w, r, "Reschedule")
	if !ok {
		return
	}

	var req rescheduleRequest
	if !h.decode(w, r, "Reschedule", &req) {
		return
	}

	meeting, err := h.service.RescheduleMeeting(r.Context(), application.RescheduleMeetingParams{
		MeetingID: id,
		Start:     req.Start,
		End:       req.End,
		RoomID:    req.RoomID,
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, meetingResponse{Meeting: toMeetingDTO(meeting)})
}

// Cancel answers 200 even when the meeting was already terminal, flagging the
// no-op in the body.
func (h *MeetingHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	id, ok := h.meetingID(w, r, "Cancel")
	if !ok {
		return
	}

	meeting, err := h.service.CancelMeeting(r.Context(), id)
	switch {
	case errors.Is(err, application.ErrAlreadyTerminal):
		h.responder.writeJSON(r.Context(), w, http.StatusOK, meetingResponse{Meeting: toMeetingDTO(meeting), AlreadyTerminal: true})
	case err != nil:
		h.responder.handleServiceError(r.Context(), w, err)
	default:
		h.responder.writeJSON(r.Context(), w, http.StatusOK, meetingResponse{Meeting: toMeetingDTO(meeting)})
	}
}

func (h *MeetingHandler) Complete(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	id, ok := h.meetingID(w, r, "Complete")
	if !ok {
		return
	}

	meeting, err := h.service.CompleteMeeting(r.Context(), id)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, meetingResponse{Meeting: toMeetingDTO(meeting)})
}

func (h *MeetingHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	id, ok := h.meetingID(w, r, "Delete")
	if !ok {
		return
	}

	meeting, err := h.service.DeleteMeeting(r.Context(), id)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, meetingResponse{Meeting: toMeetingDTO(meeting)})
}

func (h *MeetingHandler) AddAttendees(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	id, ok := h.meetingID(w, r, "AddAttendees")
	if !ok {
		return
	}

	var req addAttendeesRequest
	if !h.decode(w, r, "AddAttendees", &req) {
		return
	}

	meeting, err := h.service.AddAttendees(r.Context(), application.AddAttendeesParams{MeetingID: id, UserIDs: req.UserIDs})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, meetingResponse{Meeting: toMeetingDTO(meeting)})
}

func listMeetingsParams(r *http.Request) (application.ListMeetingsParams, error) {
	q := r.URL.Query()
	params := application.ListMeetingsParams{
		RoomID:      strings.TrimSpace(q.Get("room_id")),
		OrganizerID: strings.TrimSpace(q.Get("organizer_id")),
	}

	var err error
	if params.From, err = optionalTime(q.Get("from")); err != nil {
		return params, err
	}
	if params.Until, err = optionalTime(q.Get("until")); err != nil {
		return params, err
	}
	if raw := q.Get("include_cancelled"); raw != "" {
		if params.IncludeCancelled, err = strconv.ParseBool(raw); err != nil {
			return params, err
		}
	}
	return params, nil
}

func optionalTime(raw string) (*time.Time, error) {
	if raw = strings.TrimSpace(raw); raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

type createMeetingRequest struct {
	Title       string    `json:"title"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	OrganizerID string    `json:"organizer_id"`
	RoomID      string    `json:"room_id"`
}

type updateMeetingRequest struct {
	Title  *string    `json:"title"`
	Start  *time.Time `json:"start"`
	End    *time.Time `json:"end"`
	RoomID *string    `json:"room_id"`
}

type rescheduleRequest struct {
	Start  time.Time `json:"start"`
	End    time.Time `json:"end"`
	RoomID *string   `json:"room_id"`
}

type addAttendeesRequest struct {
	UserIDs []string `json:"user_ids"`
}

type meetingResponse struct {
	Meeting         meetingDTO `json:"meeting"`
	AlreadyTerminal bool       `json:"already_terminal,omitempty"`
}

type listMeetingsResponse struct {
	Meetings []meetingDTO `json:"meetings"`
}

type meetingDTO struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	Start       string        `json:"start"`
	End         string        `json:"end"`
	Status      string        `json:"status"`
	OrganizerID string        `json:"organizer_id"`
	RoomID      string        `json:"room_id"`
	Attendees   []attendeeDTO `json:"attendees,omitempty"`
	CreatedAt   string        `json:"created_at"`
	UpdatedAt   string        `json:"updated_at"`
}

type attendeeDTO struct {
	UserID   string `json:"user_id"`
	Role     string `json:"role"`
	Attended bool   `json:"attended"`
	AddedAt  string `json:"added_at"`
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func toMeetingDTO(m application.Meeting) meetingDTO {
	dto := meetingDTO{
		ID:          m.ID,
		Title:       m.Title,
		Start:       formatTime(m.Start),
		End:         formatTime(m.End),
		Status:      m.Status.String(),
		OrganizerID: m.OrganizerID,
		RoomID:      m.RoomID,
		CreatedAt:   formatTime(m.CreatedAt),
		UpdatedAt:   formatTime(m.UpdatedAt),
	}
	for _, a := range m.Attendees {
		dto.Attendees = append(dto.Attendees, attendeeDTO{
			UserID:   a.UserID,
			Role:     string(a.Role),
			Attended: a.Attended,
			AddedAt:  formatTime(a.AddedAt),
		})
	}
	return dto
}

func toMeetingDTOs(meetings []application.Meeting) []meetingDTO {
	out := make([]meetingDTO, 0, len(meetings))
	for _, m := range meetings {
		out = append(out, toMeetingDTO(m))
	}
	return out
}
