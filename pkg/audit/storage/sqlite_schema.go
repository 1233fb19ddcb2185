package storage

// SchemaVersion is the current database schema version.
const SchemaVersion = 1

// Schema creates the audit tables. Timestamps are Unix nanoseconds so that
// ordering is exact; the summary, requirement and readiness blocks are JSON.
const Schema = `
CREATE TABLE IF NOT EXISTS audits (
    id TEXT PRIMARY KEY,
    plan_id TEXT NOT NULL,
    requirement_set_id TEXT NOT NULL,
    program_version TEXT NOT NULL DEFAULT '',
    computed_at INTEGER NOT NULL,

    ready INTEGER NOT NULL DEFAULT 0,
    has_unsupported_rules INTEGER NOT NULL DEFAULT 0,

    summary TEXT NOT NULL,
    requirements TEXT NOT NULL,
    readiness TEXT
);

CREATE INDEX IF NOT EXISTS idx_audits_plan ON audits(plan_id, computed_at DESC);
CREATE INDEX IF NOT EXISTS idx_audits_set ON audits(requirement_set_id, computed_at DESC);
CREATE INDEX IF NOT EXISTS idx_audits_computed_at ON audits(computed_at DESC);

CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY,
    applied_at INTEGER NOT NULL
);
`

// InsertSchemaVersion records the schema version once.
const InsertSchemaVersion = `
INSERT INTO schema_version (version, applied_at)
VALUES (?, ?)
ON CONFLICT(version) DO NOTHING;
`

// GetSchemaVersion retrieves the current schema version.
const GetSchemaVersion = `
SELECT version FROM schema_version ORDER BY version DESC LIMIT 1;
`

const selectColumns = `id, plan_id, requirement_set_id, program_version, computed_at,
    has_unsupported_rules, summary, requirements, readiness`

const insertAudit = `
INSERT INTO audits (
    id, plan_id, requirement_set_id, program_version, computed_at,
    ready, has_unsupported_rules, summary, requirements, readiness
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
    plan_id = excluded.plan_id,
    requirement_set_id = excluded.requirement_set_id,
    program_version = excluded.program_version,
    computed_at = excluded.computed_at,
    ready = excluded.ready,
    has_unsupported_rules = excluded.has_unsupported_rules,
    summary = excluded.summary,
    requirements = excluded.requirements,
    readiness = excluded.readiness;
`

const deleteOldest = `
DELETE FROM audits WHERE id NOT IN (
    SELECT id FROM audits ORDER BY computed_at DESC, id DESC LIMIT ?
);
`
