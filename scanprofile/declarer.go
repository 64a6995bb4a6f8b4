// Package scanprofile declares scan levels on objects.
package scanprofile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/zero-day-ai/inventory/ooi"
)

// ErrInvalidLevel is returned for negative or non-integer levels. The upper
// bound is enforced by the graph service.
var ErrInvalidLevel = errors.New("scan level must be a non-negative integer")

// Saver persists scan profiles. connector.Connector satisfies it.
type Saver interface {
	SaveScanProfile(ctx context.Context, profile ooi.ScanProfile, validTime time.Time) error
}

// Declarer writes declared scan profiles.
type Declarer struct {
	saver  Saver
	now    func() time.Time
	logger *slog.Logger
}

// Option configures a Declarer.
type Option func(*Declarer)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(d *Declarer) {
		if now != nil {
			d.now = now
		}
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Declarer) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// New returns a declarer writing through saver.
func New(saver Saver, opts ...Option) *Declarer {
	d := &Declarer{saver: saver, now: time.Now, logger: slog.Default()}
	for _, opt := range opts {
		opt(d)
	}
	d.logger = d.logger.With("component", "scanprofile")
	return d
}

// Declare sets a declared scan level on ref, effective now (UTC).
// The returned profile is the one that was written. Levels the graph service
// does not accept come back as its error.
func (d *Declarer) Declare(ctx context.Context, ref ooi.Reference, level ooi.ScanLevel) (ooi.ScanProfile, error) {
	if level < ooi.L0 {
		return ooi.ScanProfile{}, fmt.Errorf("%w: got %d", ErrInvalidLevel, int(level))
	}

	now := d.now().UTC()
	profile := ooi.NewDeclaredScanProfile(ref, level, now)
	if err := d.saver.SaveScanProfile(ctx, profile, now); err != nil {
		return ooi.ScanProfile{}, fmt.Errorf("declare %s on %s: %w", level, ref, err)
	}

	d.logger.Info("scan level declared", "reference", ref.String(), "level", level.String())
	return profile, nil
}

// ParseLevel accepts "2" as well as "L2". Any non-negative integer is
// accepted.
func ParseLevel(s string) (ooi.ScanLevel, error) {
	trimmed := strings.TrimPrefix(strings.ToUpper(strings.TrimSpace(s)), "L")
	n, err := strconv.Atoi(trimmed)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidLevel, s)
	}
	if n < 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidLevel, s)
	}
	return ooi.ScanLevel(n), nil
}
