// Package relay implements the outbound-call pipeline shared by every route:
// a single bounded HTTP call to one upstream, response-shape normalization,
// and a uniform error taxonomy.
//
// The package consists of three pieces:
//
//   - Client: issues exactly one HTTP call per invocation with a per-call
//     timeout. The in-flight call is cancelled when the timeout fires, and
//     failures are classified (configuration, timeout, transport) before
//     anything reaches a route handler.
//
//   - Normalize: reduces a raw upstream response to a Payload that is either
//     structured (parsed JSON) or opaque text. Upstreams, especially low-code
//     automation platforms, return HTML or plain text on failure; parse
//     errors here are never fatal to the caller.
//
//   - Error: the one error type all handlers translate through, carrying a
//     Kind plus a human-readable message and optional upstream detail.
//
// There is no retry policy: a single upstream failure is terminal for the
// request and the frontend decides whether to try again.
package relay
