// Package auth guards the health report endpoint.
//
// Two credential kinds are accepted: static API keys in a header and HS256
// bearer tokens, the same kind the webhook backend signs. Middleware rejects
// unauthenticated requests with 401 and stores the caller's Identity in the
// request context.
package auth
