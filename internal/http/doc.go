// Package http provides HTTP handlers and middleware for the room booking API.
//
// The router exposes the following endpoints under /api:
//   - POST /api/auth/register: creates an account. Body: {"email","display_name",
//     "password","role"}. Role defaults to "student".
//   - POST /api/auth/login: issues a session token. Body: {"email","password"}.
//     Response: {"token","expires_at","user"} with the token also surfaced via the
//     `X-Session-Token` header and a `session_token` cookie.
//   - POST /api/auth/logout: revokes the current session token extracted from the
//     Authorization header or session cookie. Returns 204 No Content.
//   - GET /api/auth/profile: returns the authenticated account.
//   - GET /api/rooms/buildings, GET /api/rooms/areas/{building},
//     GET /api/rooms/rooms/{area}: catalog drill-down endpoints.
//   - POST /api/rooms: creates a room. Staff only.
//   - GET /api/bookings: lists bookings, filterable by room_id, building, area,
//     status (repeatable), from, and to query parameters.
//   - POST /api/bookings: submits a booking request, recorded as Pending.
//   - PUT /api/bookings/{id}: decides a pending booking. Body: {"status"} with
//     "Approved" or "Rejected". Staff only. Approval that loses a race over an
//     interval returns 409 Conflict and leaves the request pending.
//   - DELETE /api/bookings/{id}: cancels a booking. Requester or staff.
//
// Request/response DTOs live alongside their respective handlers so tests and
// documentation share the same ground truth.
package http
