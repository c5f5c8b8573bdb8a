package password

import "strconv"

type Params struct {
	Memory      uint32 // kibibytes
	Iterations  uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// DefaultParams is ~128MiB, t=3.
func DefaultParams() Params {
	return Params{Memory: 131072, Iterations: 3, Parallelism: 1, SaltLength: 16, KeyLength: 32}
}

// ParamsFromEnv overrides the defaults with ARGON2_MEMORY / ARGON2_ITER / ARGON2_PAR.
func ParamsFromEnv(getenv func(string) string) Params {
	p := DefaultParams()
	if n, err := strconv.ParseUint(getenv("ARGON2_MEMORY"), 10, 32); err == nil && n > 0 {
		p.Memory = uint32(n)
	}
	if n, err := strconv.ParseUint(getenv("ARGON2_ITER"), 10, 32); err == nil && n > 0 {
		p.Iterations = uint32(n)
	}
	if n, err := strconv.ParseUint(getenv("ARGON2_PAR"), 10, 8); err == nil && n > 0 {
		p.Parallelism = uint8(n)
	}
	return p
}
