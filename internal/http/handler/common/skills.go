package common

import (
	"bytes"
	"encoding/json"
	"errors"
	"slices"

	"trouvemamission-service/internal/domain"
)

// Skills принимает навыки в любом из форматов клиентов:
// ["Go"], [{"name":"Go"}], {"Go":true} или смесь строк и объектов.
// Наружу всегда уходит массив строк.
type Skills domain.SkillSet

type skillObject struct {
	Name string `json:"name"`
	Nom  string `json:"nom"`
}

func (s *Skills) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*s = nil
		return nil
	}

	if len(data) > 0 && data[0] == '{' {
		var set map[string]bool
		if err := json.Unmarshal(data, &set); err != nil {
			return errors.New("skills: expected array or object of booleans")
		}
		names := make([]string, 0, len(set))
		for name, present := range set {
			if present {
				names = append(names, name)
			}
		}
		// Порядок ключей объекта не определён, сортируем для стабильности
		slices.Sort(names)
		*s = Skills(domain.NewSkillSet(names...))
		return nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return errors.New("skills: expected array")
	}
	names := make([]string, 0, len(items))
	for _, item := range items {
		var name string
		if err := json.Unmarshal(item, &name); err == nil {
			names = append(names, name)
			continue
		}
		var obj skillObject
		if err := json.Unmarshal(item, &obj); err != nil {
			return errors.New("skills: item must be a string or an object with name")
		}
		if obj.Name == "" {
			obj.Name = obj.Nom
		}
		names = append(names, obj.Name)
	}
	*s = Skills(domain.NewSkillSet(names...))
	return nil
}

func (s Skills) MarshalJSON() ([]byte, error) {
	return json.Marshal(domain.SkillSet(s).Strings())
}

// Domain возвращает каноничное множество навыков.
func (s Skills) Domain() domain.SkillSet {
	return domain.NewSkillSet(s...)
}
