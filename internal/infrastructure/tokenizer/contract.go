package tokenizer

import "trouvemamission-service/internal/domain"

// Tokenizer выпускает и проверяет токены сессии.
type Tokenizer interface {
	Issue(user domain.User) (string, error)
	Parse(token string) (domain.Session, error)
}
