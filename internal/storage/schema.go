package storage

const schemaSQL = `
CREATE TABLE IF NOT EXISTS runs (
    run_id       TEXT PRIMARY KEY,
    input_root   TEXT NOT NULL,
    started_at   TEXT NOT NULL,
    finished_at  TEXT NOT NULL,
    total_fields INTEGER NOT NULL,
    referenced   INTEGER NOT NULL,
    unreferenced INTEGER NOT NULL,
    reads        INTEGER NOT NULL,
    writes       INTEGER NOT NULL,
    entries      INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS profiles (
    run_id      TEXT NOT NULL REFERENCES runs(run_id) ON DELETE CASCADE,
    record_type TEXT NOT NULL,
    api_name    TEXT NOT NULL,
    label       TEXT NOT NULL,
    column_name TEXT NOT NULL,
    field_id    TEXT NOT NULL,
    data_type   TEXT NOT NULL,
    referenced  INTEGER NOT NULL,
    summary     TEXT NOT NULL,
    PRIMARY KEY (run_id, record_type, api_name)
);

CREATE TABLE IF NOT EXISTS events (
    run_id       TEXT NOT NULL REFERENCES runs(run_id) ON DELETE CASCADE,
    record_type  TEXT NOT NULL,
    api_name     TEXT NOT NULL,
    kind         TEXT NOT NULL,
    origin       TEXT NOT NULL,
    origin_label TEXT NOT NULL,
    origin_id    TEXT NOT NULL,
    detail       TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_events_field
    ON events(run_id, record_type, api_name);

CREATE TABLE IF NOT EXISTS unresolved (
    run_id      TEXT NOT NULL REFERENCES runs(run_id) ON DELETE CASCADE,
    record_type TEXT NOT NULL,
    label       TEXT NOT NULL,
    field_id    TEXT NOT NULL,
    origin      TEXT NOT NULL,
    context     TEXT NOT NULL
);
`
