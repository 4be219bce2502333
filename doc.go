// Package gradauth implements graduated authentication: a four-level
// identity model (anonymous, preview, oauth, full) with per-request
// resolution, pure guard decisions, and graduation of externally verified
// identities into durable accounts.
//
// Resolution:
//   - Resolver inspects a request's bearer token and cookies in fixed order
//     and produces an immutable Context wrapping one of the four AuthState
//     variants. Broken credentials never fail a request; they fall through
//     to the next source and bottom out at anonymous.
//
// Graduation:
//   - Graduator converts provider-verified identities (id tokens or stored
//     lightweight OAuth sessions) into accounts and durable sessions through
//     the Authority interface. External tokens are never auto-linked to an
//     existing account by email match; that collision is surfaced as
//     ErrAccountConflict and the email gate (ErrEmailNotVerified) applies to
//     the token path only. Linking is idempotent, so repeated graduations of
//     the same identity converge on one account.
//
// Enforcement:
//   - Guard turns a resolved Context plus a required level (and optional
//     roles) into an allow or a Denial with 401/403 semantics and a recovery
//     URL. Guards do no I/O; the middleware/authware package wires them into
//     go-router routes.
//
// Activity sinks:
//   - ActivitySink is a light-weight audit emitter describing preview
//     issuance and graduation outcomes. Sinks run best-effort (errors are
//     logged) so you can forward to a database or queue without blocking
//     authentication.
package gradauth
