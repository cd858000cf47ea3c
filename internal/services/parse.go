package services

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	datePattern = regexp.MustCompile(`^\d{2}\.\d{2}\.\d{4}$`)
	timePattern = regexp.MustCompile(`^\d{2}:\d{2}$`)
)

const (
	DateLayout = "02.01.2006"
	TimeLayout = "15:04"
)

// ParseDate accepts a strict DD.MM.YYYY calendar date.
func ParseDate(field, s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if !datePattern.MatchString(s) {
		return time.Time{}, invalid(field, "Неверный формат даты. Используй ДД.ММ.ГГГГ")
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, invalid(field, "Такой даты не существует")
	}
	return t, nil
}

// ParseClock accepts a strict HH:MM time of day.
func ParseClock(field, s string) (string, error) {
	s = strings.TrimSpace(s)
	if !timePattern.MatchString(s) {
		return "", invalid(field, "Неверный формат времени. Используй ЧЧ:ММ")
	}
	if _, err := time.Parse(TimeLayout, s); err != nil {
		return "", invalid(field, "Такого времени не существует")
	}
	return s, nil
}

// ParseInt parses a whole number within [min, max].
func ParseInt(field, s string, min, max int64) (int64, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, invalid(field, "Нужно ввести целое число")
	}
	if n < min || n > max {
		return 0, invalid(field, "Число должно быть от "+strconv.FormatInt(min, 10)+" до "+strconv.FormatInt(max, 10))
	}
	return n, nil
}

// ParsePositiveFloat accepts "1500", "1500.50" or "1500,50" up to max.
// NaN and infinities are rejected.
func ParsePositiveFloat(field, s string, max float64) (float64, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return 0, invalid(field, "Нужно ввести положительное число")
	}
	if v > max {
		return 0, invalid(field, "Число должно быть не больше "+strconv.FormatFloat(max, 'f', -1, 64))
	}
	return v, nil
}

// ParseIndex turns a 1-based list position into a 0-based index.
func ParseIndex(field, s string, length int) (int, error) {
	if length == 0 {
		return 0, invalid(field, "Список пуст")
	}
	n, err := ParseInt(field, s, 1, int64(length))
	if err != nil {
		return 0, err
	}
	return int(n - 1), nil
}

func requireText(field, s string, maxRunes int) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", invalid(field, "Поле не может быть пустым")
	}
	if maxRunes > 0 && len([]rune(s)) > maxRunes {
		return "", invalid(field, "Слишком длинный текст (максимум "+strconv.Itoa(maxRunes)+" символов)")
	}
	return s, nil
}
