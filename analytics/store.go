package analytics

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// sqlTimeLayout is how timestamps are stored: UTC text that sorts
// lexicographically and that sqlite's strftime can bucket directly.
const sqlTimeLayout = "2006-01-02 15:04:05"

func sqlTime(t time.Time) string {
	return t.UTC().Format(sqlTimeLayout)
}

// Store persists visits in a sqlite database separate from the site
// content. All aggregation happens in UTC.
type Store struct {
	db *sql.DB
}

// NewStore opens (creating if needed) the analytics database.
func NewStore(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("analytics db dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open analytics db: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("analytics db pragma: %w", err)
		}
	}
	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

const schemaVersion = "1"

func (s *Store) ensureSchema() error {
	const schema = `
CREATE TABLE IF NOT EXISTS visits (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	visitor_id TEXT NOT NULL,
	session_id TEXT NOT NULL,
	ip_hash TEXT NOT NULL,
	browser TEXT NOT NULL,
	os TEXT NOT NULL,
	device TEXT NOT NULL,
	path TEXT NOT NULL,
	referrer TEXT NOT NULL,
	screen_size TEXT NOT NULL,
	timestamp TEXT NOT NULL,
	duration_sec INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_visits_timestamp ON visits(timestamp);
CREATE INDEX IF NOT EXISTS idx_visits_visitor ON visits(visitor_id, path, timestamp);
CREATE INDEX IF NOT EXISTS idx_visits_path ON visits(path);

CREATE TABLE IF NOT EXISTS bot_visits (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	bot_name TEXT NOT NULL,
	ip_hash TEXT NOT NULL,
	user_agent TEXT NOT NULL,
	path TEXT NOT NULL,
	timestamp TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_bot_visits_timestamp ON bot_visits(timestamp);
CREATE INDEX IF NOT EXISTS idx_bot_visits_name ON bot_visits(bot_name);

CREATE TABLE IF NOT EXISTS settings (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL
);`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("analytics schema: %w", err)
	}
	v, err := s.GetSetting("schema_version")
	if err != nil {
		return err
	}
	if v == "" {
		return s.SetSetting("schema_version", schemaVersion)
	}
	// Future migrations branch on v here.
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// GetSetting returns the stored value for key, or "" when unset.
func (s *Store) GetSetting(key string) (string, error) {
	var v string
	err := s.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&v)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get setting %s: %w", key, err)
	}
	return v, nil
}

// SetSetting stores a value under key, replacing any previous one.
func (s *Store) SetSetting(key, value string) error {
	_, err := s.db.Exec(`
INSERT INTO settings (key, value) VALUES (?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	if err != nil {
		return fmt.Errorf("set setting %s: %w", key, err)
	}
	return nil
}

// SaveVisit records one human page view.
func (s *Store) SaveVisit(v Visit) error {
	ts := v.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	_, err := s.db.Exec(`
INSERT INTO visits (visitor_id, session_id, ip_hash, browser, os, device, path, referrer, screen_size, timestamp, duration_sec)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		v.VisitorID, v.SessionID, v.IPHash, v.Browser, v.OS, v.Device,
		v.Path, v.Referrer, v.ScreenSize, sqlTime(ts), v.DurationSec)
	if err != nil {
		return fmt.Errorf("save visit: %w", err)
	}
	return nil
}

// SaveBotVisit records one crawler page view.
func (s *Store) SaveBotVisit(b BotVisit) error {
	ts := b.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	_, err := s.db.Exec(`
INSERT INTO bot_visits (bot_name, ip_hash, user_agent, path, timestamp)
VALUES (?, ?, ?, ?, ?)`,
		b.BotName, b.IPHash, b.UserAgent, b.Path, sqlTime(ts))
	if err != nil {
		return fmt.Errorf("save bot visit: %w", err)
	}
	return nil
}

// UpdateVisitDuration sets the time-on-page for the visitor's most
// recent view of path. The unload beacon arrives after the pageview, so
// the latest matching row is the one it belongs to.
func (s *Store) UpdateVisitDuration(visitorID, path string, seconds int) error {
	_, err := s.db.Exec(`
UPDATE visits SET duration_sec = ?
WHERE id = (
	SELECT id FROM visits
	WHERE visitor_id = ? AND path = ?
	ORDER BY timestamp DESC, id DESC LIMIT 1
)`, seconds, visitorID, path)
	if err != nil {
		return fmt.Errorf("update visit duration: %w", err)
	}
	return nil
}

// span is an aggregation window: how many days back and which strftime
// format buckets the view series.
type span struct {
	days   int
	bucket string
}

const (
	bucketHourly  = "%H:00"
	bucketDaily   = "%Y-%m-%d"
	bucketMonthly = "%Y-%m"
)

func parsePeriod(period string) span {
	switch period {
	case "today":
		return span{days: 1, bucket: bucketHourly}
	case "month":
		return span{days: 30, bucket: bucketDaily}
	case "year":
		return span{days: 365, bucket: bucketMonthly}
	default: // week
		return span{days: 7, bucket: bucketDaily}
	}
}

// timeRange returns the half-open [from, to) window for the span.
// Hourly spans cover the last 24 hours including the current one;
// daily and monthly spans cover whole UTC days ending today.
func (sp span) timeRange(now time.Time) (from, to time.Time) {
	now = now.UTC()
	if sp.bucket == bucketHourly {
		hour := now.Truncate(time.Hour)
		return hour.Add(-23 * time.Hour), hour.Add(time.Hour)
	}
	y, m, d := now.Date()
	dayStart := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return dayStart.AddDate(0, 0, -(sp.days - 1)), dayStart.AddDate(0, 0, 1)
}

// StatsForPeriod aggregates human visits for "today", "week", "month" or
// "year". Unknown periods fall back to a week.
func (s *Store) StatsForPeriod(period string) (*Stats, error) {
	sp := parsePeriod(period)
	from, to := sp.timeRange(time.Now())
	fromS, toS := sqlTime(from), sqlTime(to)

	st := &Stats{Period: period}
	row := s.db.QueryRow(`
SELECT COUNT(*), COUNT(DISTINCT visitor_id),
	CAST(COALESCE(AVG(CASE WHEN duration_sec > 0 THEN duration_sec END), 0) AS INTEGER)
FROM visits WHERE timestamp >= ? AND timestamp < ?`, fromS, toS)
	if err := row.Scan(&st.TotalViews, &st.UniqueVisitors, &st.AvgDuration); err != nil {
		return nil, fmt.Errorf("visit totals: %w", err)
	}

	var err error
	if st.TopPages, err = s.topPages("visits", fromS, toS, 10); err != nil {
		return nil, err
	}
	if st.Browsers, err = s.dimension("browser", fromS, toS, 10); err != nil {
		return nil, err
	}
	if st.Devices, err = s.dimension("device", fromS, toS, 10); err != nil {
		return nil, err
	}
	if st.Referrers, err = s.dimension("referrer", fromS, toS, 10); err != nil {
		return nil, err
	}
	if st.DailyViews, err = s.viewSeries("visits", sp.bucket, from, to); err != nil {
		return nil, err
	}
	return st, nil
}

// BotStatsForPeriod aggregates crawler visits the same way.
func (s *Store) BotStatsForPeriod(period string) (*BotStats, error) {
	sp := parsePeriod(period)
	from, to := sp.timeRange(time.Now())
	fromS, toS := sqlTime(from), sqlTime(to)

	st := &BotStats{Period: period}
	row := s.db.QueryRow(`
SELECT COUNT(*) FROM bot_visits WHERE timestamp >= ? AND timestamp < ?`, fromS, toS)
	if err := row.Scan(&st.TotalVisits); err != nil {
		return nil, fmt.Errorf("bot totals: %w", err)
	}

	rows, err := s.db.Query(`
SELECT bot_name, COUNT(*) AS n FROM bot_visits
WHERE timestamp >= ? AND timestamp < ?
GROUP BY bot_name ORDER BY n DESC LIMIT 15`, fromS, toS)
	if err != nil {
		return nil, fmt.Errorf("top bots: %w", err)
	}
	st.TopBots, err = scanDimensions(rows)
	if err != nil {
		return nil, err
	}

	if st.TopPages, err = s.topPages("bot_visits", fromS, toS, 10); err != nil {
		return nil, err
	}
	if st.DailyVisits, err = s.viewSeries("bot_visits", sp.bucket, from, to); err != nil {
		return nil, err
	}
	return st, nil
}

// topPages counts views per path in one of the two visit tables.
// table is always a literal, never user input.
func (s *Store) topPages(table, from, to string, limit int) ([]PageStat, error) {
	rows, err := s.db.Query(fmt.Sprintf(`
SELECT path, COUNT(*) AS n FROM %s
WHERE timestamp >= ? AND timestamp < ?
GROUP BY path ORDER BY n DESC LIMIT ?`, table), from, to, limit)
	if err != nil {
		return nil, fmt.Errorf("top pages: %w", err)
	}
	defer rows.Close()
	var out []PageStat
	for rows.Next() {
		var p PageStat
		if err := rows.Scan(&p.Path, &p.Views); err != nil {
			return nil, fmt.Errorf("top pages: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// dimension breaks visits down by one column of the visits table.
// col is always a literal, never user input.
func (s *Store) dimension(col, from, to string, limit int) ([]DimensionStat, error) {
	rows, err := s.db.Query(fmt.Sprintf(`
SELECT %s, COUNT(*) AS n FROM visits
WHERE timestamp >= ? AND timestamp < ?
GROUP BY %s ORDER BY n DESC LIMIT ?`, col, col), from, to, limit)
	if err != nil {
		return nil, fmt.Errorf("%s breakdown: %w", col, err)
	}
	return scanDimensions(rows)
}

func scanDimensions(rows *sql.Rows) ([]DimensionStat, error) {
	defer rows.Close()
	var out []DimensionStat
	for rows.Next() {
		var d DimensionStat
		if err := rows.Scan(&d.Name, &d.Count); err != nil {
			return nil, fmt.Errorf("scan breakdown: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// viewSeries buckets views by hour, day or month and fills the gaps with
// zeroes so charts get a continuous series.
func (s *Store) viewSeries(table string, bucket string, from, to time.Time) ([]DailyView, error) {
	rows, err := s.db.Query(fmt.Sprintf(`
SELECT strftime('%s', timestamp) AS b, COUNT(*) FROM %s
WHERE timestamp >= ? AND timestamp < ?
GROUP BY b ORDER BY b`, bucket, table), sqlTime(from), sqlTime(to))
	if err != nil {
		return nil, fmt.Errorf("view series: %w", err)
	}
	defer rows.Close()
	counts := make(map[string]int)
	for rows.Next() {
		var b string
		var n int
		if err := rows.Scan(&b, &n); err != nil {
			return nil, fmt.Errorf("view series: %w", err)
		}
		counts[b] = n
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return fillSeries(bucket, from, to, counts), nil
}

// fillSeries walks the [from, to) window bucket by bucket, pulling counts
// from the query result and zero-filling the rest.
func fillSeries(bucket string, from, to time.Time, counts map[string]int) []DailyView {
	var layout string
	var step func(time.Time) time.Time
	switch bucket {
	case bucketHourly:
		layout = "15:00"
		step = func(t time.Time) time.Time { return t.Add(time.Hour) }
	case bucketMonthly:
		layout = "2006-01"
		step = func(t time.Time) time.Time { return t.AddDate(0, 1, 0) }
		y, m, _ := from.Date()
		from = time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
	default:
		layout = "2006-01-02"
		step = func(t time.Time) time.Time { return t.AddDate(0, 0, 1) }
	}
	var out []DailyView
	for t := from; t.Before(to); t = step(t) {
		key := t.Format(layout)
		out = append(out, DailyView{Date: key, Views: counts[key]})
	}
	return out
}

// RealtimeVisitors counts distinct visitors seen in the last five minutes.
func (s *Store) RealtimeVisitors() (int, error) {
	var n int
	cutoff := sqlTime(time.Now().Add(-5 * time.Minute))
	err := s.db.QueryRow(`
SELECT COUNT(DISTINCT visitor_id) FROM visits WHERE timestamp >= ?`, cutoff).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("realtime visitors: %w", err)
	}
	return n, nil
}

// CleanupOldVisits deletes visits older than retentionDays and returns
// how many rows went away.
func (s *Store) CleanupOldVisits(retentionDays int) (int64, error) {
	cutoff := sqlTime(time.Now().AddDate(0, 0, -retentionDays))
	var total int64
	for _, table := range []string{"visits", "bot_visits"} {
		res, err := s.db.Exec(fmt.Sprintf(`DELETE FROM %s WHERE timestamp < ?`, table), cutoff)
		if err != nil {
			return total, fmt.Errorf("cleanup %s: %w", table, err)
		}
		n, _ := res.RowsAffected()
		total += n
	}
	return total, nil
}

// StartCleanupScheduler prunes old visits on an interval until the
// returned stop function is called. The first run happens immediately.
func (s *Store) StartCleanupScheduler(retentionDays int, interval time.Duration) (stop func()) {
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			if n, err := s.CleanupOldVisits(retentionDays); err != nil {
				slog.Error("analytics cleanup", "err", err)
			} else if n > 0 {
				slog.Info("analytics cleanup", "deleted", n)
			}
			select {
			case <-done:
				return
			case <-ticker.C:
			}
		}
	}()
	return func() { close(done) }
}
