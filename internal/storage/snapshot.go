package storage

import (
	"database/sql"
	"encoding/json"
	"time"

	"fieldlens/internal/errors"
	"fieldlens/internal/pipeline"
	"fieldlens/internal/usage"
)

// SaveSnapshot writes one run's profiles, events and audit entries in a
// single transaction. Re-saving the same run id replaces the prior rows.
func (db *DB) SaveSnapshot(snap *pipeline.Snapshot) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return errors.New(errors.SnapshotStoreFailed, "begin transaction", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`DELETE FROM runs WHERE run_id = ?`, snap.RunID); err != nil {
		return errors.New(errors.SnapshotStoreFailed, "clear previous snapshot", err)
	}

	st := snap.FieldStats
	if _, err := tx.Exec(
		`INSERT INTO runs (run_id, input_root, started_at, finished_at,
		    total_fields, referenced, unreferenced, reads, writes, entries)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		snap.RunID, snap.InputRoot,
		snap.StartedAt.Format(time.RFC3339), snap.FinishedAt.Format(time.RFC3339),
		st.TotalFields, st.ReferencedFields, st.UnreferencedFields,
		st.TotalReads, st.TotalWrites, st.TotalEntries,
	); err != nil {
		return errors.New(errors.SnapshotStoreFailed, "insert run", err)
	}

	for _, profiles := range snap.Profiles {
		for _, p := range profiles {
			if err := insertProfile(tx, snap.RunID, p); err != nil {
				return err
			}
		}
	}

	for _, u := range snap.UnresolvedFlowFields {
		if _, err := tx.Exec(
			`INSERT INTO unresolved (run_id, record_type, label, field_id, origin, context)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			snap.RunID, u.RecordType, u.Label, u.FieldID, u.Origin, u.Context,
		); err != nil {
			return errors.New(errors.SnapshotStoreFailed, "insert unresolved entry", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.New(errors.SnapshotStoreFailed, "commit snapshot", err)
	}

	db.logger.Info("snapshot persisted", map[string]interface{}{
		"runId": snap.RunID,
		"path":  db.dbPath,
	})
	return nil
}

func insertProfile(tx *sql.Tx, runID string, p *usage.Profile) error {
	referenced := 0
	if p.IsReferenced() {
		referenced = 1
	}
	if _, err := tx.Exec(
		`INSERT INTO profiles (run_id, record_type, api_name, label,
		    column_name, field_id, data_type, referenced, summary)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, p.RecordType, p.APIName, p.Label,
		p.ColumnName, p.FieldID, p.DataType, referenced, p.Summary(),
	); err != nil {
		return errors.New(errors.SnapshotStoreFailed, "insert profile", err)
	}

	for _, events := range [][]usage.Event{p.Reads, p.Writes, p.Entries} {
		for _, e := range events {
			detail, err := json.Marshal(e.Detail)
			if err != nil {
				detail = []byte("{}")
			}
			if _, err := tx.Exec(
				`INSERT INTO events (run_id, record_type, api_name, kind,
				    origin, origin_label, origin_id, detail)
				 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
				runID, p.RecordType, p.APIName, string(e.Kind),
				string(e.Origin), e.OriginLabel, e.OriginID, string(detail),
			); err != nil {
				return errors.New(errors.SnapshotStoreFailed, "insert event", err)
			}
		}
	}
	return nil
}
