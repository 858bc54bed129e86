package util

import (
	"math"
	"strconv"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
	// MaxPage keeps the offset inside int32 for every allowed page size.
	MaxPage = math.MaxInt32 / MaxPageSize
)

// Calculate turns 1-based page/size into an offset and limit. Out-of-range
// values fall back to page 1 and the default size; pages past MaxPage are
// clamped to it.
func Calculate(page, size int) (from, limit int) {
	if page < 1 {
		page = 1
	}
	if page > MaxPage {
		page = MaxPage
	}
	if size <= 0 || size > MaxPageSize {
		size = DefaultPageSize
	}
	from = (page - 1) * size
	return from, size
}

func ParseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return def
}
