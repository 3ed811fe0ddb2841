package password

import "golang.org/x/crypto/bcrypt"

// Cost is the bcrypt work factor for new hashes.
const Cost = bcrypt.DefaultCost

// MaxBytes is the longest password bcrypt accepts, counted in bytes.
const MaxBytes = 72

// TooLong reports whether plain exceeds what Hash can process.
func TooLong(plain string) bool {
	return len(plain) > MaxBytes
}

func Hash(plain string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), Cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// Compare returns nil when plain matches hash.
func Compare(hash, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))
}
