// Package api routes LabLink calls to their handlers.
//
// Every call is a (method, path, body, headers) tuple. The router matches the
// path exactly first, then by the longest registered prefix followed by one
// identifier segment. Routes:
//
//	POST   /auth/login                 public, {email|username, password}
//	POST   /auth/logout                revokes the caller's token
//	POST   /user                       public, registers an account
//	GET    /user/me
//	GET    /laboratories               POST /laboratories
//	GET    /laboratories/{id}          PATCH, DELETE
//	GET    /resources                  POST /resources
//	GET    /resources/{id}             PATCH, DELETE
//	GET    /reservations               POST /reservations
//	GET    /reservations/conflicts
//	GET    /reservations/user/{userId}
//	GET    /reservations/{id}          PATCH, DELETE
//
// Handlers return application errors untouched; callers normalize them with
// package apierror.
package api
