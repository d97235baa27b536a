package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Pridoh/Project-UKK-sub000/internal/repository"
)

const codeSequenceWidth = 4

// CodePrefix is the per-day part of a transaction code, e.g. "TRX-20240301-".
// The date is taken in loc.
func CodePrefix(t time.Time, loc *time.Location) string {
	if loc != nil {
		t = t.In(loc)
	}
	return "TRX-" + t.Format("20060102") + "-"
}

// FormatCode zero-pads seq to four digits. Larger sequences keep all digits.
func FormatCode(prefix string, seq int) string {
	return fmt.Sprintf("%s%0*d", prefix, codeSequenceWidth, seq)
}

// nextCode must run inside the unit of work that holds the prefix lock.
func nextCode(ctx context.Context, trxRepo repository.TransactionRepository, prefix string) (string, error) {
	latest, err := trxRepo.FindLatestCodeWithPrefix(ctx, prefix)
	if err != nil {
		return "", fmt.Errorf("generate transaction code: %w", err)
	}
	seq, err := nextSequence(latest, prefix)
	if err != nil {
		return "", err
	}
	return FormatCode(prefix, seq), nil
}

func nextSequence(latest, prefix string) (int, error) {
	if latest == "" {
		return 1, nil
	}
	n, err := strconv.Atoi(strings.TrimPrefix(latest, prefix))
	if err != nil || n < 0 {
		return 0, fmt.Errorf("generate transaction code: malformed existing code %q", latest)
	}
	return n + 1, nil
}
