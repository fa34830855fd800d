package storage

import (
	"fieldlens/internal/errors"
)

// RunInfo is one row of the runs table.
type RunInfo struct {
	RunID      string `json:"runId"`
	InputRoot  string `json:"inputRoot"`
	StartedAt  string `json:"startedAt"`
	FinishedAt string `json:"finishedAt"`

	TotalFields  int `json:"totalFields"`
	Referenced   int `json:"referenced"`
	Unreferenced int `json:"unreferenced"`
	Reads        int `json:"reads"`
	Writes       int `json:"writes"`
	Entries      int `json:"entries"`
}

// ProfileRow is one persisted field profile.
type ProfileRow struct {
	RecordType string `json:"recordType"`
	APIName    string `json:"apiName"`
	Label      string `json:"label"`
	ColumnName string `json:"columnName"`
	FieldID    string `json:"fieldId"`
	DataType   string `json:"dataType"`
	Referenced bool   `json:"referenced"`
	Summary    string `json:"summary"`
}

// ListRuns returns every persisted run, most recent first.
func (db *DB) ListRuns() ([]RunInfo, error) {
	rows, err := db.conn.Query(
		`SELECT run_id, input_root, started_at, finished_at,
		        total_fields, referenced, unreferenced, reads, writes, entries
		 FROM runs ORDER BY started_at DESC`)
	if err != nil {
		return nil, errors.New(errors.SnapshotStoreFailed, "query runs", err)
	}
	defer rows.Close()

	runs := make([]RunInfo, 0)
	for rows.Next() {
		var r RunInfo
		if err := rows.Scan(&r.RunID, &r.InputRoot, &r.StartedAt, &r.FinishedAt,
			&r.TotalFields, &r.Referenced, &r.Unreferenced,
			&r.Reads, &r.Writes, &r.Entries); err != nil {
			return nil, errors.New(errors.SnapshotStoreFailed, "scan run", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// RunProfiles returns the persisted profiles of one run, optionally only
// those never referenced by automation.
func (db *DB) RunProfiles(runID string, onlyUnreferenced bool) ([]ProfileRow, error) {
	query := `SELECT record_type, api_name, label, column_name, field_id,
	                 data_type, referenced, summary
	          FROM profiles WHERE run_id = ?`
	if onlyUnreferenced {
		query += ` AND referenced = 0`
	}
	query += ` ORDER BY record_type, lower(label)`

	rows, err := db.conn.Query(query, runID)
	if err != nil {
		return nil, errors.New(errors.SnapshotStoreFailed, "query profiles", err)
	}
	defer rows.Close()

	profiles := make([]ProfileRow, 0)
	for rows.Next() {
		var p ProfileRow
		var referenced int
		if err := rows.Scan(&p.RecordType, &p.APIName, &p.Label, &p.ColumnName,
			&p.FieldID, &p.DataType, &referenced, &p.Summary); err != nil {
			return nil, errors.New(errors.SnapshotStoreFailed, "scan profile", err)
		}
		p.Referenced = referenced != 0
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}
