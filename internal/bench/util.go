package bench

import (
	"math/rand"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// ParsePairs разбирает список вида "15x5,50x10" (задачи x машины).
// Сид экземпляра фиксирован для конфигурации и зависит от её позиции.
func ParsePairs(s string, baseInstanceSeed int64) ([]Case, error) {
	parts := SplitCSV(s)
	cases := make([]Case, 0, len(parts))

	for i, p := range parts {
		tu := strings.Split(p, "x")
		if len(tu) != 2 {
			return nil, errors.Errorf("пара %q невалидной схемы, пример: 50x10", p)
		}
		tasks, err := strconv.Atoi(strings.TrimSpace(tu[0]))
		if err != nil {
			return nil, errors.Wrapf(err, "пара %q: ошибка парсинга количества задач", p)
		}
		units, err := strconv.Atoi(strings.TrimSpace(tu[1]))
		if err != nil {
			return nil, errors.Wrapf(err, "пара %q: ошибка парсинга количества машин", p)
		}
		if tasks <= 0 || units <= 0 {
			return nil, errors.Errorf("пара %q: количество задач и машин должно быть > 0", p)
		}

		cases = append(cases, Case{
			Tasks:        tasks,
			Units:        units,
			InstanceSeed: baseInstanceSeed + int64(i)*10_000 + int64(tasks)*100 + int64(units),
		})
	}

	return cases, nil
}

// SplitCSV делит строку по запятым, отбрасывая пустые элементы.
func SplitCSV(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func randForSeed(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

func dirOf(path string) string {
	d := filepath.Dir(path)
	if d == "." {
		return ""
	}
	return d
}

func itoa(v int) string { return strconv.Itoa(v) }

func ftoa(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}
