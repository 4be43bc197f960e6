// Package sku builds and parses date-scoped sequential item identifiers of the
// form PREFIX-YYYYMMDD-NNNN.
//
// The serial restarts at 0001 each day and is derived from the greatest SKU
// already issued for that date. Callers that need uniqueness across
// concurrent writers must run Allocate inside the same write transaction as
// the insert (see inventory.Store.CreateItem).
package sku

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	stampLayout = "20060102"
	serialWidth = 4
	// MaxSerial is the last serial available on a single day.
	MaxSerial = 9999
)

var (
	// ErrExhausted is returned once MaxSerial has been issued for a date.
	ErrExhausted = errors.New("sku serials exhausted for date")
	// ErrMalformed is returned when an existing SKU cannot be parsed.
	ErrMalformed = errors.New("malformed sku")
)

// GreatestSource reports the lexicographically greatest existing SKU matching
// a GLOB pattern, or "" when none matches.
type GreatestSource interface {
	GreatestSKU(ctx context.Context, pattern string) (string, error)
}

// Stamp returns the YYYYMMDD date stamp for date.
func Stamp(date time.Time) string {
	return date.Format(stampLayout)
}

// Format renders a SKU. Serials are zero-padded to four digits.
func Format(prefix string, date time.Time, serial int) string {
	return fmt.Sprintf("%s-%s-%0*d", prefix, Stamp(date), serialWidth, serial)
}

// Pattern returns the SQLite GLOB pattern matching every well-formed SKU for
// prefix on date.
func Pattern(prefix string, date time.Time) string {
	return prefix + "-" + Stamp(date) + "-" + strings.Repeat("[0-9]", serialWidth)
}

// Parse splits a SKU into prefix, date stamp, and serial.
func Parse(value string) (prefix, stamp string, serial int, ok bool) {
	value = strings.TrimSpace(value)
	serialAt := strings.LastIndexByte(value, '-')
	if serialAt <= 0 || len(value)-serialAt-1 != serialWidth {
		return "", "", 0, false
	}
	stampAt := strings.LastIndexByte(value[:serialAt], '-')
	if stampAt <= 0 || serialAt-stampAt-1 != len(stampLayout) {
		return "", "", 0, false
	}
	stamp = value[stampAt+1 : serialAt]
	if _, err := time.Parse(stampLayout, stamp); err != nil {
		return "", "", 0, false
	}
	digits := value[serialAt+1:]
	for _, r := range digits {
		if r < '0' || r > '9' {
			return "", "", 0, false
		}
	}
	serial, err := strconv.Atoi(digits)
	if err != nil {
		return "", "", 0, false
	}
	return value[:stampAt], stamp, serial, true
}

// Next returns the SKU following greatest for prefix on date. An empty
// greatest starts the day at serial 1.
func Next(prefix string, date time.Time, greatest string) (string, error) {
	greatest = strings.TrimSpace(greatest)
	if greatest == "" {
		return Format(prefix, date, 1), nil
	}
	gotPrefix, stamp, serial, ok := Parse(greatest)
	if !ok || gotPrefix != prefix || stamp != Stamp(date) {
		return "", fmt.Errorf("%w: %q does not match %s", ErrMalformed, greatest, Pattern(prefix, date))
	}
	if serial >= MaxSerial {
		return "", fmt.Errorf("%w: %s", ErrExhausted, Stamp(date))
	}
	return Format(prefix, date, serial+1), nil
}

// Allocate reads the greatest SKU for the day from src and returns the next one.
func Allocate(ctx context.Context, src GreatestSource, prefix string, date time.Time) (string, error) {
	if src == nil {
		return "", errors.New("sku source is nil")
	}
	greatest, err := src.GreatestSKU(ctx, Pattern(prefix, date))
	if err != nil {
		return "", fmt.Errorf("lookup greatest sku: %w", err)
	}
	return Next(prefix, date, greatest)
}
