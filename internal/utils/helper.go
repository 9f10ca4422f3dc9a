package utils

import (
	"encoding/json"
	"net/http"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var vnd = message.NewPrinter(language.Vietnamese)

// FormatVND renders an amount of dong with Vietnamese digit grouping, e.g. "130.000 ₫".
func FormatVND(amount int64) string {
	return vnd.Sprintf("%d ₫", amount)
}

// Clean trims surrounding whitespace and collapses internal runs of whitespace.
func Clean(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func WriteJSONError(w http.ResponseWriter, message string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
