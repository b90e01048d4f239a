package repository

import (
	"os"
	"strconv"

	"pagamentos_xpto/internal/domain/entities"
)

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func formatInt64(v int64) string {
	return strconv.FormatInt(v, 10)
}

func paginate(items []entities.Payment, limit, offset int) []entities.Payment {
	if offset > 0 {
		if offset >= len(items) {
			return []entities.Payment{}
		}
		items = items[offset:]
	}
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
