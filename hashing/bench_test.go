package hashing_test

import (
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/hasbyte1/go-bkdf/bkdf"
)

func BenchmarkManager_Make(b *testing.B) {
	m := newTestManager(b)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = m.Make("bench-password")
	}
}

func BenchmarkManager_CheckWithDetect_BKDF(b *testing.B) {
	m := newTestManager(b)
	hash, _ := m.Make("bench-password")
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = m.CheckWithDetect("bench-password", hash)
	}
}

func BenchmarkManager_CheckWithDetect_Bcrypt(b *testing.B) {
	m := newTestManager(b)
	hash := legacyBcrypt(b, "bench-password", bcrypt.MinCost)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = m.CheckWithDetect("bench-password", hash)
	}
}

func BenchmarkBKDFHasher_Upgrade(b *testing.B) {
	h := newTestBKDFHasher(b, bkdf.MinCost+3)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = h.Upgrade(bkdfSecretCost4)
	}
}
