package models

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"
)

type PageInfo struct {
	StartCursor string `json:"startCursor"`
	EndCursor   string `json:"endCursor"`
	HasNextPage bool   `json:"hasNextPage"`
}

// DecodeCompositeCursor splits "value|id". Invalid cursors decode to ("", 0), meaning first page.
func DecodeCompositeCursor(cursor *string) (string, int) {
	if cursor == nil || *cursor == "" {
		return "", 0
	}

	decoded, err := base64.StdEncoding.DecodeString(*cursor)
	if err != nil {
		return "", 0
	}

	idx := strings.LastIndex(string(decoded), "|")
	if idx < 0 {
		return "", 0
	}
	id, err := strconv.Atoi(string(decoded[idx+1:]))
	if err != nil {
		return "", 0
	}
	return string(decoded[:idx]), id
}

func EncodeCompositeCursor(value string, id int) string {
	return base64.StdEncoding.EncodeToString([]byte(fmt.Sprintf("%s|%d", value, id)))
}

// cursorArg turns a cursor value back into a typed query argument so
// time columns compare as times on every driver.
func cursorArg(value string) interface{} {
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t
	}
	return value
}
