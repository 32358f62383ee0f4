// Package jwt derives bearer values from stored session tokens and inspects or
// verifies the JWT carried inside them.
//
// # Token convention
//
// Session tokens are stored verbatim as the remote endpoint returns them. Some
// deployments prefix the credential with a scheme kind ("jwt:<value>"). The bearer
// value sent in Authorization headers is the text after that prefix, or the whole
// token when no prefix is present. [BearerValue] is the only place this rule lives.
//
// # What this package must NOT do
//
//   - Perform network I/O.
//   - Hold session state; callers pass the token on every call.
package jwt
