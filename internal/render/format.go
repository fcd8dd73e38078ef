package render

import (
	"math"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/zjrosen/propdesk/internal/domain"
)

// NotSpecified is shown for blank optional values.
const NotSpecified = "Not specified"

// TBD is shown for a possession date that is not yet set.
const TBD = "TBD"

// DateLayout renders dates as "05 Mar 2025".
const DateLayout = "02 Jan 2006"

// FormatDate renders t in DateLayout, or NotSpecified for the zero time.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return NotSpecified
	}
	return t.Format(DateLayout)
}

// FormatINR renders a rupee amount with Indian digit grouping and no
// decimals, e.g. ₹12,34,567.
func FormatINR(amount domain.Amount) string {
	rounded := math.Round(float64(amount))
	neg := rounded < 0
	digits := strconv.FormatFloat(math.Abs(rounded), 'f', 0, 64)

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	b.WriteString("₹")
	b.WriteString(groupIndian(digits))
	return b.String()
}

// groupIndian inserts separators after the last three digits and then
// every two.
func groupIndian(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	head, tail := digits[:len(digits)-3], digits[len(digits)-3:]
	var groups []string
	for len(head) > 2 {
		groups = append([]string{head[len(head)-2:]}, groups...)
		head = head[:len(head)-2]
	}
	if head != "" {
		groups = append([]string{head}, groups...)
	}
	return strings.Join(groups, ",") + "," + tail
}

// Humanize turns an enum value such as "semi_furnished" into
// "Semi Furnished". Blank input yields NotSpecified.
func Humanize(value string) string {
	value = strings.TrimSpace(strings.NewReplacer("_", " ", "-", " ").Replace(value))
	if value == "" {
		return NotSpecified
	}
	return cases.Title(language.English).String(value)
}

// OrNotSpecified returns s, or NotSpecified when s is blank.
func OrNotSpecified(s string) string {
	if strings.TrimSpace(s) == "" {
		return NotSpecified
	}
	return s
}

// Possession renders a month and year as "March 2025", or TBD when either
// is missing.
func Possession(month, year int) string {
	if month < 1 || month > 12 || year <= 0 {
		return TBD
	}
	return time.Month(month).String() + " " + strconv.Itoa(year)
}
