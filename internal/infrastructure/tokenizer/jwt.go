package tokenizer

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"trouvemamission-service/internal/domain"
	"trouvemamission-service/internal/infrastructure/nower"
)

// ErrInvalidToken токен не подписан нашим ключом, просрочен или повреждён.
var ErrInvalidToken = errors.New("invalid token")

type claims struct {
	Email string      `json:"email"`
	Role  domain.Role `json:"role"`
	jwt.RegisteredClaims
}

type jwtTokenizer struct {
	secret []byte
	issuer string
	ttl    time.Duration
	nower  nower.Nower
}

// NewJWT создаёт tokenizer на HS256.
func NewJWT(secret, issuer string, ttl time.Duration, n nower.Nower) Tokenizer {
	return &jwtTokenizer{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
		nower:  n,
	}
}

// Issue подписывает токен с ID, email и ролью пользователя.
func (t *jwtTokenizer) Issue(user domain.User) (string, error) {
	now := t.nower.Now()
	c := claims{
		Email: user.Email,
		Role:  user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(user.ID, 10),
			Issuer:    t.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(t.secret)
}

// Parse проверяет подпись и сроки токена и собирает сессию.
func (t *jwtTokenizer) Parse(token string) (domain.Session, error) {
	var c claims
	parsed, err := jwt.ParseWithClaims(token, &c, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return t.secret, nil
	},
		jwt.WithIssuer(t.issuer),
		jwt.WithTimeFunc(t.nower.Now),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil || !parsed.Valid {
		return domain.Session{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil {
		return domain.Session{}, fmt.Errorf("%w: bad subject", ErrInvalidToken)
	}
	role, ok := domain.ParseRole(string(c.Role))
	if !ok {
		return domain.Session{}, fmt.Errorf("%w: unknown role", ErrInvalidToken)
	}
	return domain.Session{UserID: id, Email: c.Email, Role: role}, nil
}
