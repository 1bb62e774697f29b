package util

import "strconv"

const (
	ProductPageSize = 12
	// MaxPage bounds page numbers so offsets stay well inside int range.
	MaxPage     = 1 << 20
	MaxPageSize = 100
)

// ParsePage turns a query value into a 1-based page number; anything unusable is page 1.
func ParsePage(s string) int {
	page, err := strconv.Atoi(s)
	if err != nil || page < 1 {
		return 1
	}
	return min(page, MaxPage)
}

func Calculate(page, size int) (offset, limit int) {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = ProductPageSize
	}
	page = min(page, MaxPage)
	size = min(size, MaxPageSize)
	return (page - 1) * size, size
}

func Pages(total int64, size int) int {
	if size < 1 {
		return 0
	}
	return int((total + int64(size) - 1) / int64(size))
}
