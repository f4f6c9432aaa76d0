// Package http implements the HTTP handlers of the analytics web
// service. Handlers are a thin layer between transport and the service
// layer: they parse and validate requests, call the service, and render
// JSON responses.
//
// # Request Flow
//
//	HTTP Request → Chi Router → Middleware → Handler → Service
//	                                             ↓
//	HTTP Response ← render.JSON ← Service Response
//
// Service errors are transformed into structured API errors at this
// boundary; handlers never leak raw error strings into responses with a
// non-error status.
package http
