// Package hashing is a named driver registry for password hashes, with BKDF
// as the default driver and bcrypt kept for hashes created before the switch.
//
// # Architecture
//
// The central abstraction is the [Hasher] interface. Two drivers ship with
// this package:
//
//   - [BKDFHasher]: BKDF single-stage and compound hashes (default)
//   - [BcryptHasher]: standard bcrypt, for checking and migrating old hashes
//
// The [Manager] dispatches to a registered driver, either the default one or
// the one [DetectDriver] recognises from the stored value.
//
// # Quick start
//
//	m, err := hashing.NewDefaultManager(bkdf.DefaultConfig())
//	if err != nil { log.Fatal(err) }
//
//	hash, _ := m.Make("my-secret-password")
//	ok, _ := m.Check("my-secret-password", hash) // true
//
// # Raising the cost
//
// A BKDF hash below the configured cost can be raised without the password
// through [Manager.Upgrade]. A bcrypt hash cannot; it is replaced with a
// fresh BKDF hash on the next successful login:
//
//	ok, _ := m.CheckWithDetect(password, stored)
//	if ok {
//	    if needs, _ := m.NeedsRehash(stored); needs {
//	        stored, _ = m.Make(password)
//	        persist(userID, stored)
//	    }
//	}
package hashing
