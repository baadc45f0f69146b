// Package errors provides structured error handling with error codes for the
// user switcher.
//
// Every failure that reaches an HTTP caller is an *Error carrying one of the
// codes below. The code decides the HTTP status; the message is shown to the
// caller as-is, so it must never contain pairing secrets, access tokens or
// forwarded credential headers. Details are for logs only.
//
// Error code to HTTP status mapping:
//   - ErrCodeInvalidInput, ErrCodeInvalidCode → 400 Bad Request
//   - ErrCodeUnauthorized → 401 Unauthorized
//   - ErrCodeForbidden → 403 Forbidden
//   - ErrCodeUpstreamUnavailable, ErrCodeUpstreamRejected,
//     ErrCodeProtocolViolation, ErrCodeInternal → 500 Internal Server Error
//
// # Usage
//
//	user, err := hostClient.CurrentUser(ctx, creds)
//	if err != nil {
//		if errors.IsCode(err, errors.ErrCodeUpstreamRejected) {
//			return errors.Unauthorized("credentials rejected by host")
//		}
//		return err
//	}
//
// In handlers:
//
//	if err != nil {
//		errors.Render(w, r, err)
//		return
//	}
package errors
