package password

import (
	"errors"
	"strings"

	"github.com/alexedwards/argon2id"
	"golang.org/x/crypto/bcrypt"
)

// Hasher creates argon2id PHC hashes and still accepts bcrypt hashes from older accounts.
type Hasher struct {
	p Params
}

func NewHasher(p Params) *Hasher { return &Hasher{p: p} }

// Hash returns a PHC string like `$argon2id$v=19$m=131072,t=3,p=1$...`
func (h *Hasher) Hash(plain string) (string, error) {
	return argon2id.CreateHash(plain, &argon2id.Params{
		Memory:      h.p.Memory,
		Iterations:  h.p.Iterations,
		Parallelism: h.p.Parallelism,
		SaltLength:  h.p.SaltLength,
		KeyLength:   h.p.KeyLength,
	})
}

// Verify checks password vs stored hash and also indicates if a rehash is recommended.
// bcrypt hashes always need a rehash.
func (h *Hasher) Verify(plain, stored string) (ok bool, needsRehash bool, err error) {
	if isBcrypt(stored) {
		err = bcrypt.CompareHashAndPassword([]byte(stored), []byte(plain))
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return false, false, nil
		}
		if err != nil {
			return false, false, err
		}
		return true, true, nil
	}

	ok, err = argon2id.ComparePasswordAndHash(plain, stored)
	if err != nil || !ok {
		return ok, false, err
	}
	return ok, h.NeedsRehash(stored), nil
}

func (h *Hasher) NeedsRehash(stored string) bool {
	if isBcrypt(stored) {
		return true
	}
	p, _, _, err := argon2id.DecodeHash(stored)
	if err != nil {
		return true
	}
	return p.Memory < h.p.Memory ||
		p.Iterations < h.p.Iterations ||
		p.Parallelism < h.p.Parallelism ||
		p.SaltLength < h.p.SaltLength ||
		p.KeyLength < h.p.KeyLength
}

func isBcrypt(s string) bool {
	return strings.HasPrefix(s, "$2a$") || strings.HasPrefix(s, "$2b$") || strings.HasPrefix(s, "$2y$")
}
