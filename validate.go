package proofread

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// DefaultMaxWords is the input limit used when none is configured.
const DefaultMaxWords = 300

// CountWords returns the number of whitespace-separated words in text.
func CountWords(text string) int {
	return len(strings.Fields(text))
}

// ValidateInput checks user text before a run is started. maxWords <= 0
// disables the upper bound.
func ValidateInput(text string, maxWords int) error {
	n := CountWords(text)
	if n == 0 {
		return fmt.Errorf("%w: %w", ErrValidation, ErrEmptyInput)
	}
	if maxWords > 0 && n > maxWords {
		return fmt.Errorf("%d words, limit is %d: %w: %w", n, maxWords, ErrValidation, ErrTooManyWords)
	}
	return nil
}

// InputErrorText returns the localized message for an error returned by
// ValidateInput. A "{max}" placeholder in the too_long message is replaced
// with maxWords.
func InputErrorText(catalog Catalog, lang Language, err error, maxWords int) string {
	if errors.Is(err, ErrTooManyWords) {
		msg := catalog.Message(lang, MessageTooLong)
		return strings.ReplaceAll(msg, "{max}", strconv.Itoa(maxWords))
	}
	return catalog.Message(lang, MessageEmptyInput)
}
