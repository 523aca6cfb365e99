package utils

import "crypto/rand"

// Unambiguous alphabet: no 0/O, 1/I/L.
const inviteAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

// InviteCodeLength is the length of generated invite codes.
const InviteCodeLength = 10

// GenerateInviteCode returns a random invite code. Uniqueness is enforced
// by the unique index on the invites table; the caller retries on conflict.
func GenerateInviteCode() string {
	buf := make([]byte, InviteCodeLength)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand only fails when the OS entropy source is broken
		panic(err)
	}
	for i, b := range buf {
		buf[i] = inviteAlphabet[int(b)%len(inviteAlphabet)]
	}
	return string(buf)
}
