package main

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// Timestamps are stored as UTC text so they compare lexically.
const timeLayout = "2006-01-02 15:04:05"

type VisitorMetric struct {
	ID        int       `json:"id"`
	HashedIP  string    `json:"hashed_ip"` // never the raw address
	UserAgent string    `json:"user_agent"`
	Path      string    `json:"path"`
	Timestamp time.Time `json:"timestamp"`
}

type ProjectStat struct {
	ProjectID  int    `json:"project_id"`
	Title      string `json:"title"`
	DemoClicks int64  `json:"demo_clicks"`
	CodeClicks int64  `json:"code_clicks"`
}

func (p ProjectStat) Clicks() int64 {
	return p.DemoClicks + p.CodeClicks
}

type AdminStats struct {
	TotalVisitors    int64           `json:"total_visitors"`
	UniqueVisitors   int64           `json:"unique_visitors"`
	VisitorsToday    int64           `json:"visitors_today"`
	VisitorsThisWeek int64           `json:"visitors_this_week"`
	TotalClicks      int64           `json:"total_clicks"`
	TopProjects      []ProjectStat   `json:"top_projects"`
	RecentVisitors   []VisitorMetric `json:"recent_visitors"`
}

// migrations are applied in order; PRAGMA user_version records how many ran.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS visitors (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		hashed_ip TEXT NOT NULL,
		user_agent TEXT NOT NULL DEFAULT '',
		path TEXT NOT NULL DEFAULT '',
		timestamp TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS visitors_timestamp ON visitors (timestamp)`,

	`CREATE TABLE IF NOT EXISTS project_clicks (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		project_id INTEGER NOT NULL,
		link TEXT NOT NULL CHECK (link IN ('demo', 'code')),
		hashed_ip TEXT NOT NULL,
		timestamp TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS project_clicks_project ON project_clicks (project_id)`,
}

type store struct {
	db     *sql.DB
	clk    clock.Clock
	logger *zap.SugaredLogger
}

func openStore(ctx context.Context, path string, clk clock.Clock, logger *zap.SugaredLogger) (*store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to open database %s", path)
	}
	// sqlite allows a single writer
	db.SetMaxOpenConns(1)

	s := &store{db: db, clk: clk, logger: logger}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *store) migrate(ctx context.Context) error {
	var version int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return errors.Wrap(err, "unable to read schema version")
	}

	for i := version; i < len(migrations); i++ {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return errors.Wrap(err, "unable to begin migration")
		}
		if _, err := tx.ExecContext(ctx, migrations[i]); err != nil {
			tx.Rollback()
			return errors.Wrapf(err, "migration %d failed", i+1)
		}
		if _, err := tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", i+1)); err != nil {
			tx.Rollback()
			return errors.Wrapf(err, "unable to record migration %d", i+1)
		}
		if err := tx.Commit(); err != nil {
			return errors.Wrapf(err, "unable to commit migration %d", i+1)
		}
		s.logger.Infow("applied migration", "version", i+1)
	}
	return nil
}

func (s *store) now() string {
	return s.clk.Now().UTC().Format(timeLayout)
}

func (s *store) RecordVisit(ctx context.Context, hashedIP, userAgent, path string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO visitors (hashed_ip, user_agent, path, timestamp)
		VALUES (?, ?, ?, ?)
	`, hashedIP, userAgent, path, s.now())
	return errors.Wrap(err, "unable to record visit")
}

func (s *store) RecordClick(ctx context.Context, projectID int, link, hashedIP string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO project_clicks (project_id, link, hashed_ip, timestamp)
		VALUES (?, ?, ?, ?)
	`, projectID, link, hashedIP, s.now())
	return errors.Wrap(err, "unable to record click")
}

// Stats gathers the dashboard numbers. Project titles are left empty.
func (s *store) Stats(ctx context.Context) (*AdminStats, error) {
	now := s.clk.Now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).Format(timeLayout)
	weekAgo := now.Add(-7 * 24 * time.Hour).Format(timeLayout)

	stats := &AdminStats{}
	counts := []struct {
		dst   *int64
		query string
		args  []any
	}{
		{&stats.TotalVisitors, "SELECT COUNT(*) FROM visitors", nil},
		{&stats.UniqueVisitors, "SELECT COUNT(DISTINCT hashed_ip) FROM visitors", nil},
		{&stats.VisitorsToday, "SELECT COUNT(*) FROM visitors WHERE timestamp >= ?", []any{today}},
		{&stats.VisitorsThisWeek, "SELECT COUNT(*) FROM visitors WHERE timestamp >= ?", []any{weekAgo}},
		{&stats.TotalClicks, "SELECT COUNT(*) FROM project_clicks", nil},
	}
	for _, c := range counts {
		if err := s.db.QueryRowContext(ctx, c.query, c.args...).Scan(c.dst); err != nil {
			return nil, errors.Wrapf(err, "query %q", c.query)
		}
	}

	var err error
	if stats.TopProjects, err = s.topProjects(ctx, 10); err != nil {
		return nil, err
	}
	if stats.RecentVisitors, err = s.RecentVisitors(ctx, 50); err != nil {
		return nil, err
	}
	return stats, nil
}

func (s *store) topProjects(ctx context.Context, limit int) ([]ProjectStat, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT project_id,
			SUM(CASE WHEN link = 'demo' THEN 1 ELSE 0 END) AS demo,
			SUM(CASE WHEN link = 'code' THEN 1 ELSE 0 END) AS code
		FROM project_clicks
		GROUP BY project_id
		ORDER BY COUNT(*) DESC, project_id ASC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, errors.Wrap(err, "unable to load project clicks")
	}
	defer rows.Close()

	var out []ProjectStat
	for rows.Next() {
		var p ProjectStat
		if err := rows.Scan(&p.ProjectID, &p.DemoClicks, &p.CodeClicks); err != nil {
			return nil, errors.Wrap(err, "unable to scan project clicks")
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *store) RecentVisitors(ctx context.Context, limit int) ([]VisitorMetric, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, hashed_ip, user_agent, path, timestamp
		FROM visitors
		ORDER BY timestamp DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, errors.Wrap(err, "unable to load visitors")
	}
	defer rows.Close()

	var out []VisitorMetric
	for rows.Next() {
		var (
			v  VisitorMetric
			ts string
		)
		if err := rows.Scan(&v.ID, &v.HashedIP, &v.UserAgent, &v.Path, &ts); err != nil {
			return nil, errors.Wrap(err, "unable to scan visitor")
		}
		if v.Timestamp, err = time.Parse(timeLayout, ts); err != nil {
			s.logger.Warnw("bad visitor timestamp", "id", v.ID, "timestamp", ts)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// Cleanup deletes visitor and click records older than retention.
func (s *store) Cleanup(ctx context.Context, retention time.Duration) (int64, error) {
	if retention <= 0 {
		return 0, errors.Errorf("retention must be positive, got %v", retention)
	}
	cutoff := s.clk.Now().UTC().Add(-retention).Format(timeLayout)

	var total int64
	for _, table := range []string{"visitors", "project_clicks"} {
		res, err := s.db.ExecContext(ctx, "DELETE FROM "+table+" WHERE timestamp < ?", cutoff)
		if err != nil {
			return total, errors.Wrapf(err, "unable to clean up %s", table)
		}
		n, _ := res.RowsAffected()
		total += n
	}
	if total > 0 {
		s.logger.Infow("privacy cleanup", "removed", total, "older_than", cutoff)
	}
	return total, nil
}

func (s *store) Close() error {
	return s.db.Close()
}
