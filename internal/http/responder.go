package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/meeting-reservations/internal/application"
)

var (
	errBadRequestBody   = errors.New("request body is not valid JSON")
	errBadQuery         = errors.New("query parameters are malformed")
	errInvalidMeetingID = errors.New("invalid meeting id")
	errInvalidRoomID    = errors.New("invalid room id")
	errInvalidUserID    = errors.New("invalid user id")
)

type responder struct {
	logger *slog.Logger
}

func newResponder(logger *slog.Logger) responder {
	if logger == nil {
		logger = slog.Default()
	}
	return responder{logger: logger}
}

func (r responder) writeJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	if w == nil {
		return
	}

	if status == http.StatusNoContent || payload == nil {
		w.WriteHeader(status)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		r.loggerFor(ctx).ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

func (r responder) writeError(ctx context.Context, w http.ResponseWriter, status int, err error) {
	message := http.StatusText(status)
	if err != nil {
		if msg := strings.TrimSpace(err.Error()); msg != "" {
			message = msg
		}
		r.loggerFor(ctx).WarnContext(ctx, "request rejected", "status", status, "error", err)
	}

	r.writeJSON(ctx, w, status, errorResponse{ErrorCode: "BAD_REQUEST", Message: message})
}

// handleServiceError maps the application error taxonomy onto HTTP statuses.
func (r responder) handleServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	if err == nil {
		r.writeError(ctx, w, http.StatusInternalServerError, errors.New("unknown error"))
		return
	}

	switch application.ErrorKind(err) {
	case "invalid_input":
		var vErr *application.ValidationError
		errors.As(err, &vErr)
		r.writeJSON(ctx, w, http.StatusUnprocessableEntity, errorResponse{
			ErrorCode: "INVALID_INPUT",
			Message:   "input is invalid",
			Errors:    vErr.FieldErrors,
		})
	case "not_found":
		r.writeJSON(ctx, w, http.StatusNotFound, errorResponse{ErrorCode: "NOT_FOUND", Message: err.Error()})
	case "conflict":
		resp := errorResponse{ErrorCode: "CONFLICT", Message: err.Error()}
		var cErr *application.ConflictError
		if errors.As(err, &cErr) {
			resp.Message = cErr.Reason
			resp.Conflicts = toConflictDTOs(cErr)
		}
		r.writeJSON(ctx, w, http.StatusConflict, resp)
	case "already_terminal":
		r.writeJSON(ctx, w, http.StatusConflict, errorResponse{ErrorCode: "ALREADY_TERMINAL", Message: err.Error()})
	case "already_exists":
		r.writeJSON(ctx, w, http.StatusConflict, errorResponse{ErrorCode: "ALREADY_EXISTS", Message: err.Error()})
	default:
		r.loggerFor(ctx).ErrorContext(ctx, "unexpected service error", "error", err)
		r.writeJSON(ctx, w, http.StatusInternalServerError, errorResponse{ErrorCode: "INTERNAL", Message: "internal server error"})
	}
}

func (r responder) loggerFor(ctx context.Context) *slog.Logger {
	if logger := LoggerFromContext(ctx); logger != nil {
		return logger
	}
	return r.logger
}

type errorResponse struct {
	ErrorCode string            `json:"error_code,omitempty"`
	Message   string            `json:"message"`
	Errors    map[string]string `json:"errors,omitempty"`
	Conflicts []conflictDTO     `json:"conflicts,omitempty"`
}

type conflictDTO struct {
	MeetingID   string `json:"meeting_id"`
	Type        string `json:"type"`
	RoomID      string `json:"room_id,omitempty"`
	OrganizerID string `json:"organizer_id,omitempty"`
}

func toConflictDTOs(cErr *application.ConflictError) []conflictDTO {
	if cErr == nil || len(cErr.Conflicts) == 0 {
		return nil
	}
	out := make([]conflictDTO, 0, len(cErr.Conflicts))
	for _, c := range cErr.Conflicts {
		out = append(out, conflictDTO{
			MeetingID:   c.WithMeetingID,
			Type:        string(c.Type),
			RoomID:      c.RoomID,
			OrganizerID: c.OrganizerID,
		})
	}
	return out
}
