// Package gateserver implements the administrator authentication
// gateway: a TCP listener that hands every connection a fresh RSA key
// pair, authenticates the peer by encrypted bearer token, and then
// dispatches opcode-framed administrative commands.
//
// The protocol is deliberately silent toward the peer. Rejected
// credentials, unknown opcodes, and malformed frames produce no
// response; outcomes are visible only in server logs and metrics.
package gateserver
