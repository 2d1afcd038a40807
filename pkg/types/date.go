package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// DateLayout формат календарной даты без времени
const DateLayout = "2006-01-02"

// Date календарная дата без времени и часового пояса (UTC-полночь)
// Используется для дат заезда/выезда и ключей журнала вместимости
type Date struct {
	t time.Time
}

// NewDate создает дату из года, месяца и дня
func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf усекает time.Time до календарной даты
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, m, d)
}

// ParseDate парсит дату в формате YYYY-MM-DD
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: expected format %s", s, DateLayout)
	}
	return DateOf(t), nil
}

// String возвращает дату в формате YYYY-MM-DD
func (d Date) String() string {
	return d.t.Format(DateLayout)
}

// IsZero возвращает true для нулевой даты
func (d Date) IsZero() bool {
	return d.t.IsZero()
}

// Time возвращает UTC-полночь этой даты
func (d Date) Time() time.Time {
	return d.t
}

// Before возвращает true, если d раньше other
func (d Date) Before(other Date) bool {
	return d.t.Before(other.t)
}

// After возвращает true, если d позже other
func (d Date) After(other Date) bool {
	return d.t.After(other.t)
}

// Equal возвращает true, если даты совпадают
func (d Date) Equal(other Date) bool {
	return d.t.Equal(other.t)
}

// AddDays возвращает дату, смещенную на n дней
func (d Date) AddDays(n int) Date {
	return Date{t: d.t.AddDate(0, 0, n)}
}

// DaysUntil возвращает количество целых дней от d до other
// Отрицательное значение означает, что other раньше d
func (d Date) DaysUntil(other Date) int {
	return int(other.t.Sub(d.t) / (24 * time.Hour))
}

// DatesUntil возвращает все даты полуинтервала [d, end)
// Если end не позже d, возвращает пустой слайс
func (d Date) DatesUntil(end Date) []Date {
	if !end.After(d) {
		return []Date{}
	}
	dates := make([]Date, 0, d.DaysUntil(end))
	for cur := d; cur.Before(end); cur = cur.AddDays(1) {
		dates = append(dates, cur)
	}
	return dates
}

// Value реализует driver.Valuer для записи в БД
func (d Date) Value() (driver.Value, error) {
	return d.t, nil
}

// Scan реализует sql.Scanner для чтения из БД
func (d *Date) Scan(src interface{}) error {
	switch v := src.(type) {
	case time.Time:
		*d = DateOf(v)
		return nil
	case string:
		parsed, err := ParseDate(v)
		if err != nil {
			return err
		}
		*d = parsed
		return nil
	case []byte:
		parsed, err := ParseDate(string(v))
		if err != nil {
			return err
		}
		*d = parsed
		return nil
	default:
		return fmt.Errorf("cannot scan %T into types.Date", src)
	}
}

// MarshalJSON сериализует дату как строку YYYY-MM-DD
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON парсит дату из строки YYYY-MM-DD
func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
