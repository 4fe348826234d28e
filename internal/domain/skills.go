package domain

import "strings"

// SkillSet упорядоченное множество названий навыков.
// Порядок первого появления сохраняется, дубликаты сравниваются без учёта регистра.
type SkillSet []string

// NewSkillSet нормализует список навыков: обрезает пробелы, выкидывает пустые и повторы.
func NewSkillSet(names ...string) SkillSet {
	seen := make(map[string]struct{}, len(names))
	set := make(SkillSet, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		key := strings.ToLower(name)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		set = append(set, name)
	}
	return set
}

// Contains проверяет наличие навыка без учёта регистра.
func (s SkillSet) Contains(name string) bool {
	name = strings.TrimSpace(name)
	for _, skill := range s {
		if strings.EqualFold(skill, name) {
			return true
		}
	}
	return false
}

// ContainsAny сообщает, есть ли хотя бы один из навыков. Пустой запрос совпадает со всем.
func (s SkillSet) ContainsAny(names []string) bool {
	if len(names) == 0 {
		return true
	}
	for _, name := range names {
		if s.Contains(name) {
			return true
		}
	}
	return false
}

// Strings возвращает навыки как обычный срез (никогда не nil).
func (s SkillSet) Strings() []string {
	if s == nil {
		return []string{}
	}
	return []string(s)
}
