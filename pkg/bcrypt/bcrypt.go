package bcrypt

import "golang.org/x/crypto/bcrypt"

type IBcrypt interface {
	HashPassword(password string) (string, error)
	Matches(hashPassword string, password string) bool
}

type bcryptService struct {
	cost int
}

func New() IBcrypt {
	return &bcryptService{cost: bcrypt.DefaultCost}
}

// NewWithCost is for tests, where the default cost makes hashing slow.
func NewWithCost(cost int) IBcrypt {
	return &bcryptService{cost: cost}
}

func (b *bcryptService) HashPassword(password string) (string, error) {
	result, err := bcrypt.GenerateFromPassword([]byte(password), b.cost)
	if err != nil {
		return "", err
	}
	return string(result), nil
}

// Matches is false for an empty or malformed hash, never an error.
func (b *bcryptService) Matches(hashPassword string, password string) bool {
	if hashPassword == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hashPassword), []byte(password)) == nil
}
