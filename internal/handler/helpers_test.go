package handler_test

import (
	"strconv"
)

func itoa(i int) string { return strconv.Itoa(i) }

// jsonNumber formats an id decoded from JSON into a map
func jsonNumber(v any) string {
	return strconv.Itoa(int(v.(float64)))
}
