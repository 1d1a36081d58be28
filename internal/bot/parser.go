package bot

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	ErrInvalidAmount = errors.New("amount must be a positive whole number")
	ErrMissingField  = errors.New("required field is empty")
)

var (
	reMention = regexp.MustCompile(`^<@([UW][A-Z0-9]+)(?:\|[^>]*)?>$`)
	reUserID  = regexp.MustCompile(`^[UW][A-Z0-9]{2,}$`)
)

// ParseAmount accepts a positive base-10 integer, surrounding space allowed.
func ParseAmount(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: amount", ErrMissingField)
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	if n <= 0 {
		return 0, fmt.Errorf("%w: %d", ErrInvalidAmount, n)
	}
	return n, nil
}

// ParseUserRef reads a user from command text: "<@U123>", "<@U123|ada>" or
// a bare "U123".
func ParseUserRef(text string) (string, bool) {
	text = strings.TrimSpace(text)
	if m := reMention.FindStringSubmatch(text); m != nil {
		return m[1], true
	}
	if reUserID.MatchString(text) {
		return text, true
	}
	return "", false
}
