package printer

import "strings"

// ContinuationMarker ends any column value cut short to fit its width.
const ContinuationMarker = ".."

// FourColumnWidths returns the fixed name/qty/rate/amount widths for a line
// budget. The four widths always sum to chars.
func FourColumnWidths(chars int) [4]int {
	switch chars {
	case int(Paper80mm):
		return [4]int{24, 6, 8, 10}
	case int(Paper76mm):
		return [4]int{20, 5, 8, 9}
	default:
		return [4]int{14, 4, 6, 8}
	}
}

// Truncate shortens s to at most n columns, ending it with ".." when cut.
// Control characters are flattened first.
func Truncate(s string, n int) string {
	r := []rune(glyphReplacer.Replace(SingleLine(s)))
	if n <= 0 {
		return ""
	}
	if len(r) <= n {
		return string(r)
	}
	if n <= len(ContinuationMarker) {
		return string(r[:n])
	}
	return string(r[:n-len(ContinuationMarker)]) + ContinuationMarker
}

// PadRight left-aligns s in a field of n columns, truncating when needed.
func PadRight(s string, n int) string {
	s = Truncate(s, n)
	return s + strings.Repeat(" ", n-TextWidth(s))
}

// PadLeft right-aligns s in a field of n columns, truncating when needed.
func PadLeft(s string, n int) string {
	s = Truncate(s, n)
	return strings.Repeat(" ", n-TextWidth(s)) + s
}

// Center centers s in a field of n columns.
func Center(s string, n int) string {
	s = Truncate(s, n)
	gap := n - TextWidth(s)
	return strings.Repeat(" ", gap/2) + s + strings.Repeat(" ", gap-gap/2)
}

// TwoColumnLine lays out left and right across width columns. The right
// value keeps its full text when it fits; the left one is cut first.
func TwoColumnLine(width int, left, right string) string {
	right = Truncate(right, width)
	budget := width - TextWidth(right) - 1
	if budget < 0 {
		budget = 0
	}
	left = Truncate(left, budget)
	gap := width - TextWidth(left) - TextWidth(right)
	return left + strings.Repeat(" ", gap) + right
}

// ThreeColumnLine lays out a left column and two right-aligned columns of a
// quarter width each.
func ThreeColumnLine(width int, left, middle, right string) string {
	side := width / 4
	main := width - 2*side
	return PadRight(Truncate(left, main-1), main) + PadLeft(middle, side) + PadLeft(right, side)
}

// MinNameColumn is the narrowest name column an item row keeps. Below it
// the name moves to a line of its own.
const MinNameColumn = 6

// FitFourColumns returns column widths for item rows given as
// {qty, rate, amount}. Those values are never cut: each column grows to hold
// its widest value plus one leading space, and the extra comes out of the
// name column. The first width may drop below MinNameColumn, or under zero,
// when the numbers alone fill the line.
func FitFourColumns(width int, rows ...[3]string) [4]int {
	w := FourColumnWidths(width)
	if w[0]+w[1]+w[2]+w[3] != width {
		w = scaleWidths(w, width)
	}
	for _, row := range rows {
		for i, v := range row {
			if need := TextWidth(v) + 1; w[i+1] < need {
				w[0] -= need - w[i+1]
				w[i+1] = need
			}
		}
	}
	return w
}

// FourColumnRow lays out one item row in widths w from FitFourColumns. It is
// one line when the name column keeps at least MinNameColumn; otherwise the
// name is printed on its own line above the numbers.
func FourColumnRow(w [4]int, width int, name, qty, rate, amount string) []string {
	nums := numberColumns(w, qty, rate, amount)
	if w[0] >= MinNameColumn {
		return []string{PadRight(Truncate(name, w[0]-1), w[0]) + nums}
	}
	if TextWidth(nums) > width {
		nums = strings.TrimLeft(nums, " ")
	}
	if gap := width - TextWidth(nums); gap > 0 {
		nums = strings.Repeat(" ", gap) + nums
	}
	return []string{Truncate(name, width), nums}
}

// FourColumnLines lays out a single item row sized to its own values.
func FourColumnLines(width int, name, qty, rate, amount string) []string {
	return FourColumnRow(FitFourColumns(width, [3]string{qty, rate, amount}), width, name, qty, rate, amount)
}

func numberColumns(w [4]int, qty, rate, amount string) string {
	return padNumber(qty, w[1]) + padNumber(rate, w[2]) + padNumber(amount, w[3])
}

// padNumber right-aligns v in n columns and never cuts it.
func padNumber(v string, n int) string {
	v = Normalize(SingleLine(v))
	if gap := n - TextWidth(v); gap > 0 {
		return strings.Repeat(" ", gap) + v
	}
	return v
}

func scaleWidths(base [4]int, width int) [4]int {
	total := base[0] + base[1] + base[2] + base[3]
	var out [4]int
	sum := 0
	for i := 1; i < 4; i++ {
		out[i] = base[i] * width / total
		sum += out[i]
	}
	out[0] = width - sum
	return out
}
