// Package bkdf implements BKDF, a versioned password hashing and key
// derivation scheme built from bcrypt and HKDF.
//
// # Architecture
//
// Every BKDF round is HKDF-Extract over the input followed by the bcrypt
// key stretch keyed with the extracted PRK. Four components build on it:
//
//   - [Hasher] produces single-stage hashes ([HashData]).
//   - [Verifier] checks a password against either stored format.
//   - [Upgrader] raises the cost of a stored hash without the password by
//     chaining more rounds onto it ([CompoundHashData]).
//   - [KDF] stretches once and expands any number of independent keys.
//
// Protocol variants are closed and identified by a one-byte [Version] code.
//
// # Quick start
//
//	h, _ := bkdf.NewHasher(bkdf.HasherOptions{})
//	stored, _ := h.Hash("my-secret-password", bkdf.DefaultCost)
//
//	v, _ := bkdf.NewVerifier(bkdf.VerifierOptions{})
//	ok, _ := v.Verify("my-secret-password", stored) // true
//
// # Upgrading without the password
//
// Call [NeedsUpgrade] when policy changes and upgrade offline:
//
//	if needs, _ := bkdf.NeedsUpgrade(stored, 14); needs {
//	    up, _ := u.UpgradeTo(14, stored)
//	    stored, _ = up.EncodeToString()
//	    persist(userID, stored)
//	}
//
// The upgraded value verifies with the original password through the same
// [Verifier].
//
// # Wire formats
//
// Both formats are stored as padded Base64-URL text:
//
//	single-stage  [version][cost][salt:16][hash:23|24]
//	compound      [0xFE][count][(version, cost) × count][salt:16][hash:23|24]
//
// [IsCompound] tells them apart from the leading byte.
package bkdf
