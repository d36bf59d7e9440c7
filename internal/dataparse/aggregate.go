package dataparse

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/abhisek/quizsolver/internal/quiz"
)

// Op is an aggregation.
type Op string

const (
	OpSum   Op = "sum"
	OpMean  Op = "mean"
	OpCount Op = "count"
	OpMax   Op = "max"
	OpMin   Op = "min"
)

var (
	ErrUnknownOp  = errors.New("unknown aggregation")
	ErrNotNumeric = errors.New("column is not numeric")
	ErrNoValues   = errors.New("no values to aggregate")
)

// Aggregate reduces one column, or the whole table when column is empty.
//
// With a column: sum and mean are floats over the numeric cells and fail
// if the column holds text; count is the number of non-empty cells; max
// and min compare numerically when every cell is a number (an int result
// when they are all integers) and as text otherwise.
//
// Without a column only numeric columns take part: sum is the grand
// total, mean is the mean of the column means, count is the row count,
// max and min range over every numeric cell.
func Aggregate(t *Table, op Op, column string) (quiz.Answer, error) {
	if column != "" {
		cells, err := t.Column(column)
		if err != nil {
			return quiz.Answer{}, err
		}
		return aggregateCells(nonEmpty(cells), op)
	}
	return aggregateTable(t, op)
}

func aggregateCells(cells []string, op Op) (quiz.Answer, error) {
	if op == OpCount {
		return quiz.Int(int64(len(cells))), nil
	}
	nums, allInts, numeric := numbers(cells)

	switch op {
	case OpSum:
		if !numeric {
			return quiz.Answer{}, ErrNotNumeric
		}
		return quiz.Float(sum(nums)), nil
	case OpMean:
		if !numeric {
			return quiz.Answer{}, ErrNotNumeric
		}
		if len(nums) == 0 {
			return quiz.Answer{}, ErrNoValues
		}
		return quiz.Float(sum(nums) / float64(len(nums))), nil
	case OpMax, OpMin:
		if len(cells) == 0 {
			return quiz.Answer{}, ErrNoValues
		}
		if !numeric {
			return quiz.Text(extremeText(cells, op == OpMax)), nil
		}
		v := extreme(nums, op == OpMax)
		if allInts {
			return quiz.Int(int64(v)), nil
		}
		return quiz.Float(v), nil
	}
	return quiz.Answer{}, fmt.Errorf("%w: %q", ErrUnknownOp, op)
}

func aggregateTable(t *Table, op Op) (quiz.Answer, error) {
	if op == OpCount {
		return quiz.Int(int64(len(t.Rows))), nil
	}

	var (
		all     []float64
		means   []float64
		allInts = true
	)
	for i := range t.Columns {
		cells := make([]string, len(t.Rows))
		for r, row := range t.Rows {
			cells[r] = row[i]
		}
		nums, ints, numeric := numbers(nonEmpty(cells))
		if !numeric || len(nums) == 0 {
			continue
		}
		all = append(all, nums...)
		means = append(means, sum(nums)/float64(len(nums)))
		allInts = allInts && ints
	}

	switch op {
	case OpSum:
		return quiz.Float(sum(all)), nil
	case OpMean:
		if len(means) == 0 {
			return quiz.Answer{}, ErrNoValues
		}
		return quiz.Float(sum(means) / float64(len(means))), nil
	case OpMax, OpMin:
		if len(all) == 0 {
			return quiz.Answer{}, ErrNoValues
		}
		v := extreme(all, op == OpMax)
		if allInts {
			return quiz.Int(int64(v)), nil
		}
		return quiz.Float(v), nil
	}
	return quiz.Answer{}, fmt.Errorf("%w: %q", ErrUnknownOp, op)
}

// Group is one bucket of a GroupBy.
type Group struct {
	Key   string
	Value quiz.Answer
}

// GroupBy aggregates column within each distinct value of by, in order of
// first appearance.
func GroupBy(t *Table, by, column string, op Op) ([]Group, error) {
	bi := t.Index(by)
	if bi < 0 {
		return nil, fmt.Errorf("%w: %q", ErrNoColumn, by)
	}
	ci := t.Index(column)
	if ci < 0 {
		return nil, fmt.Errorf("%w: %q", ErrNoColumn, column)
	}

	var keys []string
	buckets := make(map[string][]string)
	for _, row := range t.Rows {
		k := row[bi]
		if _, ok := buckets[k]; !ok {
			keys = append(keys, k)
		}
		if row[ci] != "" {
			buckets[k] = append(buckets[k], row[ci])
		} else if buckets[k] == nil {
			buckets[k] = []string{}
		}
	}

	out := make([]Group, 0, len(keys))
	for _, k := range keys {
		v, err := aggregateCells(buckets[k], op)
		if err != nil {
			return nil, fmt.Errorf("group %q: %w", k, err)
		}
		out = append(out, Group{Key: k, Value: v})
	}
	return out, nil
}

// parseNumber accepts plain numbers and thousands separators ("1,200").
func parseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// numbers parses every cell. numeric is false if any cell is not a number.
func numbers(cells []string) (nums []float64, allInts, numeric bool) {
	allInts = true
	for _, c := range cells {
		f, ok := parseNumber(c)
		if !ok {
			return nil, false, false
		}
		if f != math.Trunc(f) || strings.ContainsAny(c, ".eE") {
			allInts = false
		}
		nums = append(nums, f)
	}
	return nums, allInts, true
}

func nonEmpty(cells []string) []string {
	out := make([]string, 0, len(cells))
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			out = append(out, c)
		}
	}
	return out
}

func sum(nums []float64) float64 {
	var s float64
	for _, n := range nums {
		s += n
	}
	return s
}

func extreme(nums []float64, largest bool) float64 {
	v := nums[0]
	for _, n := range nums[1:] {
		if (largest && n > v) || (!largest && n < v) {
			v = n
		}
	}
	return v
}

func extremeText(cells []string, largest bool) string {
	v := cells[0]
	for _, c := range cells[1:] {
		if (largest && c > v) || (!largest && c < v) {
			v = c
		}
	}
	return v
}
