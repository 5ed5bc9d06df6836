// Package server provides HTTP routing, middleware, the song and custom list actions, and browser login.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses gorilla/mux internally for path variables and method matching.
//
// # Actions
//
// Song routes are [Action] functions over an explicit [Request]. They return a [Result] and never
// write to the response. The adapter negotiates JSON or HTML before the action runs, then hands the
// result to the matching [Serializer]:
//
//	GET    /songs(.json)           list, ETag + If-None-Match
//	GET    /songs/{id}(.json)      show
//	POST   /songs(.json)           create          (token)
//	POST   /songs/batch(.json)     batch upsert    (token)
//	PATCH  /songs/{id}(.json)      update          (token)
//	PUT    /songs/{id}(.json)      update          (token)
//	DELETE /songs/{id}(.json)      destroy         (token)
//	GET    /images/songs/{image}   cover file
//	GET    /health
//	GET    /custom/lists(.json)                   list names
//	GET    /custom/list/{list}(.json)             song hashes on a list
//	PUT    /custom/list/{list}/{song_hash}(.json) add       (session, owner)
//	DELETE /custom/list/{list}/{song_hash}(.json) remove    (session, owner)
//	GET    /me(.json)                             signed-in user (session)
//
// Validation failures map to 422 with a field → message object. A batch with any failing item
// answers 422 with one object per input item, empty for items that were persisted.
//
// # Authentication
//
// [RequireToken] accepts "Authorization: Bearer <token>" or `Authorization: Token token="<token>"`
// and answers 401 with a Token challenge before the body is read.
//
// Browser users sign in through [LoginHandler] (/login, /login/redirect, /logout), an OAuth2
// authorization-code flow that ends in a session cookie. [LoadSession] resolves the cookie on
// every request; [RequireSession] guards the list edits. A custom list belongs to the user whose
// cid is its name.
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
package server
