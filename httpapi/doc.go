// Package httpapi serves the cookie session endpoints over gin.
//
// Login and register answer 200 with an empty body and a "tokens" cookie.
// Every failure is a {statusCode, statusMessage} JSON body whose status code
// matches the HTTP status.
package httpapi
