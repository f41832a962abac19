package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sw33tLie/groupgen/pkg/generator"
	"github.com/sw33tLie/groupgen/pkg/group"
	_ "modernc.org/sqlite"
)

type DB struct {
	sql *sql.DB
}

func Open(path string) (*DB, error) {
	dsn := "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}
	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS groups (
  id                       INTEGER PRIMARY KEY,
  name                     TEXT NOT NULL,
  timestamp                INTEGER NOT NULL,
  generated_by             TEXT NOT NULL DEFAULT '',
  value_type               TEXT NOT NULL,
  account_sources          TEXT NOT NULL,
  tags                     TEXT NOT NULL,
  properties               TEXT,
  data                     TEXT NOT NULL,
  resolved_identifier_data TEXT NOT NULL,
  saved_at                 DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
  UNIQUE(name, timestamp)
);
CREATE INDEX IF NOT EXISTS idx_groups_name_time ON groups(name, timestamp);
CREATE INDEX IF NOT EXISTS idx_groups_generated_by ON groups(generated_by);
CREATE TABLE IF NOT EXISTS group_generations (
  id             INTEGER PRIMARY KEY,
  generator_name TEXT NOT NULL,
  timestamp      INTEGER NOT NULL,
  recorded_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_generations_name_time ON group_generations(generator_name, timestamp);
    `); err != nil {
		return nil, err
	}
	return &DB{sql: db}, nil
}

func (d *DB) Close() error {
	if d == nil || d.sql == nil {
		return nil
	}
	return d.sql.Close()
}

// Groups returns the group.Store view of the database.
func (d *DB) Groups() group.Store { return groupStore{d} }

// Generations returns the generator.Store view of the database.
func (d *DB) Generations() generator.Store { return generationStore{d} }

type groupStore struct{ db *DB }

func (s groupStore) Save(ctx context.Context, g group.ResolvedGroupWithData) error {
	return s.db.SaveGroup(ctx, g)
}

func (s groupStore) Search(ctx context.Context, q group.Search) ([]group.ResolvedGroupWithData, error) {
	return s.db.SearchGroups(ctx, q)
}

type generationStore struct{ db *DB }

func (s generationStore) Save(ctx context.Context, r generator.Record) error {
	return s.db.SaveGeneration(ctx, r)
}

func (s generationStore) Search(ctx context.Context, q generator.Search) ([]generator.Record, error) {
	return s.db.SearchGenerations(ctx, q)
}

// SaveGroup stores one version of a group. Saving the same name and
// timestamp again replaces that version.
func (d *DB) SaveGroup(ctx context.Context, g group.ResolvedGroupWithData) error {
	if g.Name == "" {
		return fmt.Errorf("cannot save a group without a name")
	}

	columns, err := encodeColumns(g)
	if err != nil {
		return fmt.Errorf("encoding group %s: %w", g.Name, err)
	}

	_, err = d.sql.ExecContext(ctx, `
INSERT INTO groups(name, timestamp, generated_by, value_type, account_sources, tags, properties, data, resolved_identifier_data, saved_at)
VALUES(?,?,?,?,?,?,?,?,?,CURRENT_TIMESTAMP)
ON CONFLICT(name, timestamp) DO UPDATE SET
  generated_by = excluded.generated_by,
  value_type = excluded.value_type,
  account_sources = excluded.account_sources,
  tags = excluded.tags,
  properties = excluded.properties,
  data = excluded.data,
  resolved_identifier_data = excluded.resolved_identifier_data,
  saved_at = CURRENT_TIMESTAMP`,
		g.Name, g.Timestamp, g.GeneratedBy, string(g.ValueType),
		columns.accountSources, columns.tags, columns.properties, columns.data, columns.resolved)
	return err
}

type encodedColumns struct {
	accountSources, tags, data, resolved string
	properties                           interface{}
}

func encodeColumns(g group.ResolvedGroupWithData) (encodedColumns, error) {
	var c encodedColumns
	var err error
	if c.accountSources, err = marshalText(nonNil(g.AccountSources)); err != nil {
		return c, err
	}
	if c.tags, err = marshalText(nonNil(g.Tags)); err != nil {
		return c, err
	}
	if c.data, err = marshalText(nonNilMap(g.Data)); err != nil {
		return c, err
	}
	if c.resolved, err = marshalText(nonNilMap(g.ResolvedIdentifierData)); err != nil {
		return c, err
	}
	if g.Properties != nil {
		p, err := marshalText(g.Properties)
		if err != nil {
			return c, err
		}
		c.properties = p
	}
	return c, nil
}

func marshalText(v interface{}) (string, error) {
	b, err := json.Marshal(v)
	return string(b), err
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func nonNilMap(m group.FetchedData) group.FetchedData {
	if m == nil {
		return group.FetchedData{}
	}
	return m
}

const groupColumns = "name, timestamp, generated_by, value_type, account_sources, tags, properties, data, resolved_identifier_data"

// SearchGroups returns stored group versions, most recent first. An empty
// GroupName matches every group; with Latest set only the most recent
// version of each matching group is returned.
func (d *DB) SearchGroups(ctx context.Context, q group.Search) ([]group.ResolvedGroupWithData, error) {
	var where []string
	var args []interface{}
	if q.GroupName != "" {
		where = append(where, "g.name = ?")
		args = append(args, q.GroupName)
	}
	if q.Timestamp != 0 {
		where = append(where, "g.timestamp = ?")
		args = append(args, q.Timestamp)
	}
	if q.Latest {
		where = append(where, "g.timestamp = (SELECT MAX(m.timestamp) FROM groups m WHERE m.name = g.name)")
	}

	query := "SELECT " + groupColumns + " FROM groups g"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY g.timestamp DESC, g.name"

	rows, err := d.sql.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []group.ResolvedGroupWithData
	for rows.Next() {
		g, err := scanGroup(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func scanGroup(rows *sql.Rows) (group.ResolvedGroupWithData, error) {
	var (
		g                                        group.ResolvedGroupWithData
		valueType, sources, tags, data, resolved string
		properties                               sql.NullString
	)
	if err := rows.Scan(&g.Name, &g.Timestamp, &g.GeneratedBy, &valueType, &sources, &tags, &properties, &data, &resolved); err != nil {
		return g, err
	}
	g.ValueType = group.ValueType(valueType)

	if err := json.Unmarshal([]byte(sources), &g.AccountSources); err != nil {
		return g, fmt.Errorf("decoding account sources of %s: %w", g.Name, err)
	}
	if err := json.Unmarshal([]byte(tags), &g.Tags); err != nil {
		return g, fmt.Errorf("decoding tags of %s: %w", g.Name, err)
	}
	if err := json.Unmarshal([]byte(data), &g.Data); err != nil {
		return g, fmt.Errorf("decoding data of %s: %w", g.Name, err)
	}
	if err := json.Unmarshal([]byte(resolved), &g.ResolvedIdentifierData); err != nil {
		return g, fmt.Errorf("decoding resolved data of %s: %w", g.Name, err)
	}
	if properties.Valid {
		g.Properties = &group.Properties{}
		if err := json.Unmarshal([]byte(properties.String), g.Properties); err != nil {
			return g, fmt.Errorf("decoding properties of %s: %w", g.Name, err)
		}
	}
	return g, nil
}

func (d *DB) SaveGeneration(ctx context.Context, r generator.Record) error {
	_, err := d.sql.ExecContext(ctx, "INSERT INTO group_generations(generator_name, timestamp) VALUES(?, ?)", r.Name, r.Timestamp)
	return err
}

// SearchGenerations returns generation records, most recent first.
func (d *DB) SearchGenerations(ctx context.Context, q generator.Search) ([]generator.Record, error) {
	query := "SELECT generator_name, timestamp FROM group_generations"
	var args []interface{}
	if q.GeneratorName != "" {
		query += " WHERE generator_name = ?"
		args = append(args, q.GeneratorName)
	}
	query += " ORDER BY timestamp DESC, id DESC"
	if q.Latest {
		query += " LIMIT 1"
	}

	rows, err := d.sql.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []generator.Record
	for rows.Next() {
		var r generator.Record
		if err := rows.Scan(&r.Name, &r.Timestamp); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// ListLatestGroups summarizes the latest version of every stored group,
// ordered by name.
func (d *DB) ListLatestGroups(ctx context.Context) ([]GroupSummary, error) {
	query := `
		SELECT
			g.name,
			g.timestamp,
			g.generated_by,
			g.value_type,
			g.properties,
			(SELECT COUNT(*) FROM groups c WHERE c.name = g.name)
		FROM
			groups g
		WHERE
			g.timestamp = (SELECT MAX(m.timestamp) FROM groups m WHERE m.name = g.name)
		ORDER BY
			g.name;
	`
	rows, err := d.sql.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []GroupSummary
	for rows.Next() {
		var s GroupSummary
		var valueType string
		var properties sql.NullString
		if err := rows.Scan(&s.Name, &s.Timestamp, &s.GeneratedBy, &valueType, &properties, &s.Versions); err != nil {
			return nil, err
		}
		s.ValueType = group.ValueType(valueType)
		if properties.Valid {
			var p group.Properties
			if err := json.Unmarshal([]byte(properties.String), &p); err != nil {
				return nil, fmt.Errorf("decoding properties of %s: %w", s.Name, err)
			}
			s.AccountsNumber = p.AccountsNumber
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ListRecentGenerations returns the most recent N generation records.
func (d *DB) ListRecentGenerations(ctx context.Context, limit int) ([]generator.Record, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := d.sql.QueryContext(ctx, "SELECT generator_name, timestamp FROM group_generations ORDER BY timestamp DESC, id DESC LIMIT ?", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := []generator.Record{}
	for rows.Next() {
		var r generator.Record
		if err := rows.Scan(&r.Name, &r.Timestamp); err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

func (d *DB) GetStats(ctx context.Context) ([]GeneratorStats, error) {
	query := `
		SELECT
			generated_by,
			COUNT(DISTINCT name),
			COUNT(*),
			MAX(timestamp)
		FROM
			groups
		GROUP BY
			generated_by
		ORDER BY
			generated_by;
	`
	rows, err := d.sql.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stats []GeneratorStats
	for rows.Next() {
		var s GeneratorStats
		if err := rows.Scan(&s.Generator, &s.GroupCount, &s.VersionCount, &s.LastTimestamp); err != nil {
			return nil, err
		}
		stats = append(stats, s)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return stats, nil
}
