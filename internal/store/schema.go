package store

// schema is applied idempotently by Migrate. Money is stored as TEXT so
// decimals round-trip exactly.
const schema = `
CREATE TABLE IF NOT EXISTS member_rows (
	id                 INTEGER PRIMARY KEY AUTOINCREMENT,
	badge              INTEGER NOT NULL,
	ssn                INTEGER NOT NULL,
	name               TEXT    NOT NULL DEFAULT '',
	points             INTEGER NOT NULL DEFAULT 0,
	beginning_balance  TEXT    NOT NULL DEFAULT '0',
	prior_etva         TEXT    NOT NULL DEFAULT '0',
	years_in_plan      INTEGER NOT NULL DEFAULT 0,
	employee_type      INTEGER NOT NULL DEFAULT 0,
	enrolled           INTEGER NOT NULL DEFAULT 0,
	prior_contribution TEXT    NOT NULL DEFAULT '0',
	prior_forfeiture   TEXT    NOT NULL DEFAULT '0'
);
CREATE INDEX IF NOT EXISTS idx_member_rows_ssn ON member_rows (ssn);

CREATE TABLE IF NOT EXISTS beneficiary_rows (
	id                INTEGER PRIMARY KEY AUTOINCREMENT,
	psn               INTEGER NOT NULL,
	ssn               INTEGER NOT NULL,
	name              TEXT    NOT NULL DEFAULT '',
	beginning_balance TEXT    NOT NULL DEFAULT '0'
);
CREATE INDEX IF NOT EXISTS idx_beneficiary_rows_psn ON beneficiary_rows (psn);

CREATE TABLE IF NOT EXISTS ledgers (
	ssn  INTEGER NOT NULL,
	kind TEXT    NOT NULL CHECK (kind IN ('member', 'beneficiary')),
	PRIMARY KEY (ssn, kind)
);

CREATE TABLE IF NOT EXISTS profit_detail (
	id             INTEGER PRIMARY KEY AUTOINCREMENT,
	ssn            INTEGER NOT NULL,
	kind           TEXT    NOT NULL,
	profit_year    INTEGER NOT NULL,
	year_extension INTEGER NOT NULL DEFAULT 0,
	code           TEXT    NOT NULL DEFAULT '',
	contribution   TEXT    NOT NULL DEFAULT '0',
	earnings       TEXT    NOT NULL DEFAULT '0',
	forfeiture     TEXT    NOT NULL DEFAULT '0',
	remark         TEXT    NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_profit_detail_ssn ON profit_detail (kind, ssn);

CREATE TABLE IF NOT EXISTS allocation_runs (
	run_id         TEXT    PRIMARY KEY,
	effective_year INTEGER NOT NULL,
	state          TEXT    NOT NULL,
	committed_at   TEXT    NOT NULL,
	record_count   INTEGER NOT NULL,
	invalid_count  INTEGER NOT NULL,
	totals_json    TEXT    NOT NULL
);

CREATE TABLE IF NOT EXISTS allocations (
	run_id                  TEXT    NOT NULL REFERENCES allocation_runs (run_id),
	kind                    TEXT    NOT NULL,
	badge                   INTEGER NOT NULL,
	psn                     INTEGER NOT NULL,
	name                    TEXT    NOT NULL,
	contribution            TEXT    NOT NULL,
	forfeiture              TEXT    NOT NULL,
	earnings                TEXT    NOT NULL,
	etva_earnings           TEXT    NOT NULL,
	secondary_earnings      TEXT    NOT NULL,
	secondary_etva_earnings TEXT    NOT NULL,
	earn_points             INTEGER NOT NULL,
	ending_balance          TEXT    NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_allocations_run ON allocations (run_id);
`
