package sku_test

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"pgregory.net/rapid"

	"byebye/internal/sku"
)

type fixedSource struct {
	value   string
	pattern string
	err     error
}

func (f *fixedSource) GreatestSKU(_ context.Context, pattern string) (string, error) {
	f.pattern = pattern
	return f.value, f.err
}

var day = time.Date(2026, 10, 16, 9, 30, 0, 0, time.Local)

func TestFormatAndParse(t *testing.T) {
	got := sku.Format("BB", day, 7)
	if got != "BB-20261016-0007" {
		t.Fatalf("Format = %q", got)
	}
	prefix, stamp, serial, ok := sku.Parse(got)
	if !ok || prefix != "BB" || stamp != "20261016" || serial != 7 {
		t.Fatalf("Parse(%q) = %q %q %d %v", got, prefix, stamp, serial, ok)
	}
}

func TestParseRejectsMalformed(t *testing.T) {
	for _, value := range []string{"", "BB", "BB-20261016", "BB-20261016-01", "BB-2026101-0001", "BB-20261316-0001", "BB-20261016-00a1", "-20261016-0001"} {
		if _, _, _, ok := sku.Parse(value); ok {
			t.Fatalf("expected Parse(%q) to fail", value)
		}
	}
}

func TestAllocateFirstOfDay(t *testing.T) {
	src := &fixedSource{}
	got, err := sku.Allocate(context.Background(), src, "BB", day)
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	if got != "BB-20261016-0001" {
		t.Fatalf("Allocate = %q", got)
	}
	if src.pattern != "BB-20261016-[0-9][0-9][0-9][0-9]" {
		t.Fatalf("unexpected pattern %q", src.pattern)
	}
	if ok, _ := filepath.Match(src.pattern, got); !ok {
		t.Fatalf("pattern %q should match %q", src.pattern, got)
	}
}

func TestAllocateIncrementsGreatest(t *testing.T) {
	got, err := sku.Allocate(context.Background(), &fixedSource{value: "BB-20261016-0041"}, "BB", day)
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	if got != "BB-20261016-0042" {
		t.Fatalf("Allocate = %q", got)
	}
}

func TestAllocatePropagatesSourceError(t *testing.T) {
	boom := errors.New("boom")
	if _, err := sku.Allocate(context.Background(), &fixedSource{err: boom}, "BB", day); !errors.Is(err, boom) {
		t.Fatalf("expected source error, got %v", err)
	}
}

func TestNextExhausted(t *testing.T) {
	if _, err := sku.Next("BB", day, "BB-20261016-9999"); !errors.Is(err, sku.ErrExhausted) {
		t.Fatalf("expected ErrExhausted, got %v", err)
	}
}

func TestNextRejectsOtherDay(t *testing.T) {
	if _, err := sku.Next("BB", day, "BB-20261015-0003"); !errors.Is(err, sku.ErrMalformed) {
		t.Fatalf("expected ErrMalformed, got %v", err)
	}
}

func genPrefix(t *rapid.T) string {
	return rapid.StringMatching(`[A-Z][A-Z0-9]{0,5}`).Draw(t, "prefix")
}

func genDate(t *rapid.T) time.Time {
	offset := rapid.IntRange(0, 365*30).Draw(t, "days")
	return time.Date(2000, 1, 1, 12, 0, 0, 0, time.UTC).AddDate(0, 0, offset)
}

func TestPropertyFirstSerialIsOne(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		prefix := genPrefix(t)
		date := genDate(t)
		got, err := sku.Next(prefix, date, "")
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		want := fmt.Sprintf("%s-%s-0001", prefix, date.Format("20060102"))
		if got != want {
			t.Fatalf("Next = %q, want %q", got, want)
		}
	})
}

func TestPropertyNextIsSuccessor(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		prefix := genPrefix(t)
		date := genDate(t)
		serial := rapid.IntRange(1, sku.MaxSerial-1).Draw(t, "serial")
		got, err := sku.Next(prefix, date, sku.Format(prefix, date, serial))
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		_, _, next, ok := sku.Parse(got)
		if !ok {
			t.Fatalf("Next produced unparsable %q", got)
		}
		if next != serial+1 {
			t.Fatalf("serial = %d, want %d", next, serial+1)
		}
		if len(got) != len(prefix)+1+8+1+4 {
			t.Fatalf("unexpected width for %q", got)
		}
	})
}
