// Package shared holds small helpers used by both the server and the
// admin tooling.
package shared

// WipeBytes overwrites b with zeros. Used on plaintext passwords read from
// the terminal once they have been hashed.
func WipeBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
