package db

import "gorm.io/gorm"

// ForUpdateSuffix returns the raw SQL suffix for a row lock on the active
// dialect. SQLite has no row-level locking and serializes writers itself.
func ForUpdateSuffix(tx *gorm.DB) string {
	if tx.Dialector != nil && tx.Dialector.Name() == "sqlite" {
		return ""
	}
	return " FOR UPDATE"
}

// Chunk splits n items into [start, end) ranges of at most size.
func Chunk(n, size int) [][2]int {
	if size <= 0 {
		size = n
	}
	var out [][2]int
	for start := 0; start < n; start += size {
		end := start + size
		if end > n {
			end = n
		}
		out = append(out, [2]int{start, end})
	}
	return out
}
