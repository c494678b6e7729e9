// Package service implements the credential registry: the server-wide
// mapping from bearer tokens to administrator records, with creation,
// rotation, revocation, and the authorization check the handshake gate
// relies on.
package service
