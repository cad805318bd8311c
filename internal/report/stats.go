package report

import "math"

// round1 округляет до одного знака после запятой.
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// percent возвращает round(100 × part / total), 0 при total == 0.
func percent(part, total float64) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(100 * part / total))
}

// mean: среднее арифметическое; ok=false для пустой выборки.
type mean struct {
	sum   float64
	count int
}

func (m *mean) add(v float64) {
	m.sum += v
	m.count++
}

func (m mean) value() (float64, bool) {
	if m.count == 0 {
		return 0, false
	}
	return m.sum / float64(m.count), true
}
