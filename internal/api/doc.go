// Package api exposes the message board over an HTTP JSON API and serves the
// embedded browser client. It maps wire requests onto the board service and
// translates service errors into status codes: validation and missing-token
// failures are 400, authorization failures are 403, everything else is a 500
// logged server-side.
package api
