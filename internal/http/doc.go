// Package http exposes the reservation services over JSON.
//
// The router serves the following endpoints:
//   - GET /meetings?room_id&organizer_id&from&until&include_cancelled, POST /meetings:
//     list and book meetings. from and until are RFC 3339 and must be given together.
//   - GET /meetings/{id}, PUT /meetings/{id}, DELETE /meetings/{id}: read, edit and
//     hard-delete a meeting. PUT takes any subset of title, start, end and room_id.
//   - POST /meetings/{id}/cancel, /reschedule, /complete, /attendees: lifecycle and
//     attendee operations. Cancelling an already cancelled or completed meeting answers
//     200 with "already_terminal": true.
//   - GET /rooms, POST /rooms, GET /rooms/{id}: room catalog.
//   - GET /rooms/available?start&end&min_capacity&exclude_meeting_id: free rooms.
//   - GET /users, POST /users, GET /users/{id}: user directory.
//
// Errors are returned as {"error_code","message","errors","conflicts"}. Invalid
// input answers 422, unknown ids 404, overlaps and capacity problems 409 with
// error_code CONFLICT, mutations of terminal meetings 409 with ALREADY_TERMINAL.
//
// Request/response DTOs live alongside their respective handlers so tests and
// documentation share the same ground truth.
package http
