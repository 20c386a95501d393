// Package reactions implements MeshCore's compact emoji-reaction wire
// format: a short ASCII header carrying a Crockford-base32 hash of the
// target message, immediately followed by the reaction emoji.
package reactions
