package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/aristath/market-sessions/internal/modules/calendar"
	"github.com/aristath/market-sessions/internal/modules/rules"
	"github.com/aristath/market-sessions/internal/modules/schedule"
)

// CachedSchedule is one exchange's persisted session table with its build
// metadata. Fingerprint ties the rows to the definition that produced them.
type CachedSchedule struct {
	Exchange    string
	Fingerprint string
	BuildID     uuid.UUID
	Start       rules.Date
	End         rules.Date
	BuiltAt     time.Time
	Sessions    []schedule.Session
}

// Repository reads and writes cached session tables.
type Repository struct {
	db  *DB
	log zerolog.Logger
}

// NewRepository creates a schedule cache repository.
func NewRepository(db *DB, log zerolog.Logger) *Repository {
	return &Repository{db: db, log: log.With().Str("component", "storage").Logger()}
}

// Save replaces the cached table for one exchange with the given build. The
// whole table is swapped in one transaction so readers never see a mix of
// two builds.
func (r *Repository) Save(ctx context.Context, def calendar.Definition, b *calendar.Built) error {
	tx, err := r.db.Conn().BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin save transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM sessions WHERE exchange = ?`, def.Code); err != nil {
		return fmt.Errorf("failed to clear sessions for %s: %w", def.Code, err)
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO schedules (exchange, fingerprint, build_id, range_start, range_end, built_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(exchange) DO UPDATE SET
			fingerprint = excluded.fingerprint,
			build_id    = excluded.build_id,
			range_start = excluded.range_start,
			range_end   = excluded.range_end,
			built_at    = excluded.built_at`,
		def.Code, def.Fingerprint(), b.BuildID.String(),
		b.Start.String(), b.End.String(), b.BuiltAt.Format(time.RFC3339Nano),
	); err != nil {
		return fmt.Errorf("failed to upsert schedule for %s: %w", def.Code, err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO sessions (exchange, label, market_open, market_close, break_start, break_end, early_close, late_open)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare session insert: %w", err)
	}
	defer stmt.Close()

	for _, s := range b.Sessions {
		var breakStart, breakEnd interface{}
		if s.HasBreak() {
			breakStart = s.BreakStart.Format(time.RFC3339Nano)
			breakEnd = s.BreakEnd.Format(time.RFC3339Nano)
		}
		if _, err := stmt.ExecContext(ctx,
			def.Code, s.Label.String(),
			s.MarketOpen.Format(time.RFC3339Nano), s.MarketClose.Format(time.RFC3339Nano),
			breakStart, breakEnd,
			boolToInt(s.IsEarlyClose), boolToInt(s.IsLateOpen),
		); err != nil {
			return fmt.Errorf("failed to insert session %s/%s: %w", def.Code, s.Label, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit save for %s: %w", def.Code, err)
	}
	r.log.Debug().
		Str("exchange", def.Code).
		Str("build_id", b.BuildID.String()).
		Int("sessions", len(b.Sessions)).
		Msg("Schedule cached")
	return nil
}

// Load returns the cached table for the exchange, or ok=false when no cache
// exists or the cached fingerprint does not match the definition. A
// mismatched fingerprint means the definition changed since the cache was
// written, so the rows are stale.
func (r *Repository) Load(ctx context.Context, def calendar.Definition) (*CachedSchedule, bool, error) {
	var (
		fingerprint, buildID, rangeStart, rangeEnd, builtAt string
	)
	err := r.db.Conn().QueryRowContext(ctx, `
		SELECT fingerprint, build_id, range_start, range_end, built_at
		FROM schedules WHERE exchange = ?`, def.Code,
	).Scan(&fingerprint, &buildID, &rangeStart, &rangeEnd, &builtAt)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to load schedule row for %s: %w", def.Code, err)
	}

	if fingerprint != def.Fingerprint() {
		r.log.Info().
			Str("exchange", def.Code).
			Msg("Cached schedule fingerprint mismatch, cache is stale")
		return nil, false, nil
	}

	cached := &CachedSchedule{Exchange: def.Code, Fingerprint: fingerprint}
	if cached.BuildID, err = uuid.Parse(buildID); err != nil {
		return nil, false, fmt.Errorf("failed to parse cached build id for %s: %w", def.Code, err)
	}
	if cached.Start, err = rules.ParseDate(rangeStart); err != nil {
		return nil, false, fmt.Errorf("failed to parse cached range start for %s: %w", def.Code, err)
	}
	if cached.End, err = rules.ParseDate(rangeEnd); err != nil {
		return nil, false, fmt.Errorf("failed to parse cached range end for %s: %w", def.Code, err)
	}
	if cached.BuiltAt, err = time.Parse(time.RFC3339Nano, builtAt); err != nil {
		return nil, false, fmt.Errorf("failed to parse cached built-at for %s: %w", def.Code, err)
	}

	rows, err := r.db.Conn().QueryContext(ctx, `
		SELECT label, market_open, market_close, break_start, break_end, early_close, late_open
		FROM sessions WHERE exchange = ? ORDER BY label`, def.Code)
	if err != nil {
		return nil, false, fmt.Errorf("failed to load sessions for %s: %w", def.Code, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			label, open, closeStr string
			breakStart, breakEnd  sql.NullString
			earlyClose, lateOpen  int
		)
		if err := rows.Scan(&label, &open, &closeStr, &breakStart, &breakEnd, &earlyClose, &lateOpen); err != nil {
			return nil, false, fmt.Errorf("failed to scan session row for %s: %w", def.Code, err)
		}
		s := schedule.Session{
			IsEarlyClose: earlyClose != 0,
			IsLateOpen:   lateOpen != 0,
		}
		if s.Label, err = rules.ParseDate(label); err != nil {
			return nil, false, fmt.Errorf("failed to parse session label for %s: %w", def.Code, err)
		}
		if s.MarketOpen, err = parseUTC(open); err != nil {
			return nil, false, fmt.Errorf("failed to parse open for %s/%s: %w", def.Code, label, err)
		}
		if s.MarketClose, err = parseUTC(closeStr); err != nil {
			return nil, false, fmt.Errorf("failed to parse close for %s/%s: %w", def.Code, label, err)
		}
		if breakStart.Valid && breakEnd.Valid {
			bs, err := parseUTC(breakStart.String)
			if err != nil {
				return nil, false, fmt.Errorf("failed to parse break start for %s/%s: %w", def.Code, label, err)
			}
			be, err := parseUTC(breakEnd.String)
			if err != nil {
				return nil, false, fmt.Errorf("failed to parse break end for %s/%s: %w", def.Code, label, err)
			}
			s.BreakStart, s.BreakEnd = &bs, &be
		}
		cached.Sessions = append(cached.Sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("failed to iterate sessions for %s: %w", def.Code, err)
	}
	return cached, true, nil
}

// Delete drops the cached table for one exchange.
func (r *Repository) Delete(ctx context.Context, exchange string) error {
	if _, err := r.db.Conn().ExecContext(ctx, `DELETE FROM schedules WHERE exchange = ?`, exchange); err != nil {
		return fmt.Errorf("failed to delete cached schedule for %s: %w", exchange, err)
	}
	return nil
}

func parseUTC(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
