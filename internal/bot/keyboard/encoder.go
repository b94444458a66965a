package keyboard

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// CallbackDataSeparator splits the handler prefix from its payload, e.g.
	// "city:2114" carries a region id to the city choice handler.
	CallbackDataSeparator = ":"
	// CallbackDataLimitBytes is Telegram's hard cap on callback data.
	CallbackDataLimitBytes = 64
)

// EncodeCallback joins a handler prefix and its payload into callback data,
// rejecting anything over the Telegram limit.
func EncodeCallback(unique, data string) (string, error) {
	payload := unique
	if data != "" {
		payload = unique + CallbackDataSeparator + data
	}

	if len(payload) > CallbackDataLimitBytes {
		return "", fmt.Errorf("callback data exceeds %d byte limit: got %d", CallbackDataLimitBytes, len(payload))
	}
	return payload, nil
}

// DecodeCallback splits callback data into the handler prefix and payload.
// Data without a separator is a bare prefix.
func DecodeCallback(callbackData string) (unique, data string, err error) {
	if callbackData == "" {
		return "", "", errors.New("callback data is empty")
	}

	unique, data, _ = strings.Cut(callbackData, CallbackDataSeparator)
	return unique, data, nil
}
