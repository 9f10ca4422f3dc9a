package utils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatVND(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0 ₫"},
		{850, "850 ₫"},
		{130000, "130.000 ₫"},
		{1234567, "1.234.567 ₫"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatVND(tt.in))
	}
}

func TestDisplayID(t *testing.T) {
	t.Run("LastEightDigits", func(t *testing.T) {
		assert.Equal(t, "DH00012345", DisplayID(time.UnixMilli(1718000012345)))
		assert.Equal(t, "DH87654321", DisplayID(time.UnixMilli(1787654321)))
	})

	t.Run("Format", func(t *testing.T) {
		id := DisplayID(time.Now())
		assert.Len(t, id, 10)
		assert.Equal(t, "DH", id[:2])
	})
}

func TestClean(t *testing.T) {
	assert.Equal(t, "Nguyễn Văn A", Clean("  Nguyễn   Văn\tA \n"))
	assert.Equal(t, "", Clean("   "))
}

func TestWriteJSONError(t *testing.T) {
	w := httptest.NewRecorder()
	WriteJSONError(w, "bad", http.StatusBadRequest)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var body map[string]string
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "bad", body["error"])
}
