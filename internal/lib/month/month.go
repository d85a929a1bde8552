// Package month содержит календарную арифметику периодов продления подписок.
package month

import (
	"time"
)

// AddMonths прибавляет n месяцев к t. Если в целевом месяце нет такого дня,
// берётся последний день месяца: 31 января + 1 месяц = 29 февраля (в високосный год).
// time.AddDate в таком случае переносит дату на начало следующего месяца, что
// сдвигало бы все последующие периоды.
func AddMonths(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	hh, mm, ss := t.Clock()
	first := time.Date(y, m+time.Month(n), 1, hh, mm, ss, t.Nanosecond(), t.Location())
	if last := DaysIn(first.Year(), first.Month()); d > last {
		d = last
	}
	return time.Date(first.Year(), first.Month(), d, hh, mm, ss, t.Nanosecond(), t.Location())
}

// DaysIn возвращает количество дней в месяце.
func DaysIn(year int, m time.Month) int {
	return time.Date(year, m+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Period описывает текущий расчётный период подписки.
type Period struct {
	NextDue   time.Time // Начало периода, дата очередного платежа
	End       time.Time // Конец периода (не включительно)
	WindowEnd time.Time // Конец окна оплаты: End + льготные дни
}

// Current считает границы периода для подписки, у которой уже записано
// paid платежей: NextDue = start + paid*period месяцев.
func Current(start time.Time, periodMonths, paid, graceDays int) Period {
	nextDue := AddMonths(start, paid*periodMonths)
	end := AddMonths(nextDue, periodMonths)
	return Period{
		NextDue:   nextDue,
		End:       end,
		WindowEnd: end.AddDate(0, 0, graceDays),
	}
}

// InWindow сообщает, попадает ли момент в окно оплаты [NextDue, WindowEnd].
func (p Period) InWindow(at time.Time) bool {
	return !at.Before(p.NextDue) && !at.After(p.WindowEnd)
}

// Covers сообщает, относится ли момент платежа к периоду [NextDue, End).
func (p Period) Covers(at time.Time) bool {
	return !at.Before(p.NextDue) && at.Before(p.End)
}
