package idgen

import (
	"crypto/rand"
	"encoding/hex"
	"strings"

	"github.com/google/uuid"
)

func NewFileID() string {
	return uuid.NewString()
}

func NewSessionID() string {
	return "doc_" + randomHex(6)
}

func NewOutputKey() string {
	return "exam_" + uuid.NewString() + ".pdf"
}

func NewRequestID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

func randomHex(size int) string {
	if size <= 0 {
		return ""
	}
	buf := make([]byte, size)
	_, _ = rand.Read(buf)
	return hex.EncodeToString(buf)
}
