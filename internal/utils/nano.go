package utils

import gonanoid "github.com/matoous/go-nanoid/v2"

const (
	idAlphabet    = "0123456789abcdefghijklmnopqrstuvwxyz"
	requestIDSize = 20
)

// RequestID returns an id for correlating the log lines of one request.
func RequestID() string {
	return ShortID(requestIDSize)
}

// ShortID returns size random lowercase alphanumerics.
func ShortID(size int) string {
	if size <= 0 {
		size = requestIDSize
	}
	return gonanoid.MustGenerate(idAlphabet, size)
}
