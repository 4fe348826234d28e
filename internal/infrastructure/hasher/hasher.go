package hasher

import "golang.org/x/crypto/bcrypt"

type bcryptHasher struct {
	cost int
}

// New создаёт hasher на bcrypt. cost <= 0 означает bcrypt.DefaultCost.
func New(cost int) Hasher {
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}
	return &bcryptHasher{cost: cost}
}

func (h *bcryptHasher) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func (h *bcryptHasher) Compare(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
