package common

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
)

const maxBodyBytes = 1 << 20

// DecodeJSON читает тело запроса в dst. Неизвестные поля допускаются.
func DecodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return NewBadRequestError(CodeInvalidBody, "тело запроса пустое")
		}
		return NewBadRequestError(CodeInvalidBody, "не удалось прочитать тело запроса")
	}
	return nil
}

// PathID читает положительный целочисленный параметр пути.
func PathID(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, NewBadRequestError(CodeValidation, name+" должен быть положительным числом")
	}
	return id, nil
}

// QueryBool читает необязательный булев параметр запроса.
func QueryBool(r *http.Request, name string) (*bool, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, NewBadRequestError(CodeValidation, name+" должен быть true или false")
	}
	return &v, nil
}

// QueryList читает список через запятую, допускает повтор параметра.
func QueryList(r *http.Request, name string) []string {
	var out []string
	for _, raw := range r.URL.Query()[name] {
		for _, item := range strings.Split(raw, ",") {
			if item = strings.TrimSpace(item); item != "" {
				out = append(out, item)
			}
		}
	}
	return out
}
