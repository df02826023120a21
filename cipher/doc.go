// Package cipher seals short strings (sign-in link credentials) with a passphrase.
//
// Each message derives its own key with Argon2id from a random salt and is sealed with
// XChaCha20-Poly1305. The wire form is unpadded base64url of
// version|salt|nonce|ciphertext. Decrypt fails closed: any malformed, truncated or
// tampered input returns [ErrMalformed].
package cipher
