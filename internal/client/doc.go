// Package client implements the gate protocol's peer side: dialing,
// the encrypted credential handshake, and the administrative command
// senders used by admingate-cli.
package client
