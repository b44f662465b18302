// Package server provides HTTP routing, middleware and the songcart web handlers.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] method patterns, so a wrong method yields a 405.
//
// # Handlers
//
// [SongHandler] serves the catalog, cart and history pages and their form posts:
//
//	GET  /                    catalog of a genre (page size)
//	POST /sign                submit a song
//	GET  /display             catalog of a genre (display size)
//	GET  /search              catalog filtered by artist
//	POST /addSong2Cart        add checked songs to the cart
//	POST /removeSongFromCart  remove checked songs from the cart
//	POST /checkout            move the cart into history
//	GET  /view_cart           cart contents
//	GET  /preview_checkout    what a checkout would move
//	GET  /view_history        purchase history
//
// POSTs redirect to the catalog with the user and genre preserved. Storage failures map to 503 and rejected
// submissions (only possible when validation is enabled) to 400.
//
// # Identity
//
// Authentication happens upstream. An [IdentityProvider] reads its result from each request, by default
// the X-Forwarded-User and X-Forwarded-Email headers set by an authenticating proxy ([HeaderIdentity]).
// [IdentityMiddleware] stores the identity in the request context; handlers pass the user id explicitly
// into every engine call and fall back to the userId form parameter for anonymous requests.
//
// # Observability
//
// [Metrics] exposes request and domain counters on GET /metrics; GET /healthz pings the store.
package server
