package common

// AuthorizationHeaderName is the HTTP header and gRPC metadata key carrying
// the bearer token on protected requests.
const AuthorizationHeaderName = "authorization"

// BearerScheme prefixes the token inside the authorization header.
const BearerScheme = "Bearer"

// RequestIDHeaderName is echoed on every HTTP response.
const RequestIDHeaderName = "X-Request-ID"
