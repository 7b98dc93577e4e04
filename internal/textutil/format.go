package textutil

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// FormatTime renders d as m:ss, or h:mm:ss from one hour up. Fractions of
// a second are dropped and negative durations render as 0:00.
func FormatTime(d time.Duration) string {
	secs := int64(d / time.Second)
	if secs < 0 {
		secs = 0
	}
	h, m, s := secs/3600, (secs/60)%60, secs%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

// FormatCount abbreviates large counts: 950, 1.2k, 3.4m, 2b.
func FormatCount(n int64) string {
	sign := ""
	if n < 0 {
		sign, n = "-", -n
	}
	units := []struct {
		div    float64
		suffix string
	}{
		{1e9, "b"},
		{1e6, "m"},
		{1e3, "k"},
	}
	for _, u := range units {
		if float64(n) >= u.div {
			v := strconv.FormatFloat(float64(n)/u.div, 'f', 1, 64)
			return sign + strings.TrimSuffix(v, ".0") + u.suffix
		}
	}
	return sign + strconv.FormatInt(n, 10)
}

// FormatInt renders n with thousands separators.
func FormatInt(n int64) string {
	return printer.Sprintf("%d", n)
}

// Title title-cases a free-form label such as a genre or tag.
func Title(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if s == "" {
		return ""
	}
	return cases.Title(language.Und).String(s)
}
