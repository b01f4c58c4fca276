package store

// Schema is the DDL for the SQLite backend. Amounts are stored as decimal
// strings to avoid binary floating point; dates as RFC 3339 text.
const Schema = `
CREATE TABLE IF NOT EXISTS groups (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	currency   TEXT NOT NULL,
	owner_id   TEXT NOT NULL,
	created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS members (
	id              TEXT PRIMARY KEY,
	group_id        TEXT NOT NULL REFERENCES groups(id) ON DELETE CASCADE,
	user_id         TEXT,
	name            TEXT NOT NULL,
	role            TEXT NOT NULL,
	initial_balance TEXT NOT NULL,
	created_at      TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS accounts (
	id                    TEXT PRIMARY KEY,
	group_id              TEXT NOT NULL REFERENCES groups(id) ON DELETE CASCADE,
	name                  TEXT NOT NULL,
	type                  TEXT NOT NULL,
	responsible_member_id TEXT,
	balance               TEXT NOT NULL,
	is_default            INTEGER NOT NULL DEFAULT 0,
	created_at            TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS account_managers (
	account_id TEXT NOT NULL REFERENCES accounts(id) ON DELETE CASCADE,
	member_id  TEXT NOT NULL REFERENCES members(id) ON DELETE CASCADE,
	PRIMARY KEY (account_id, member_id)
);

CREATE TABLE IF NOT EXISTS categories (
	id       TEXT PRIMARY KEY,
	group_id TEXT NOT NULL REFERENCES groups(id) ON DELETE CASCADE,
	name     TEXT NOT NULL,
	is_loan  INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS transactions (
	id                    TEXT PRIMARY KEY,
	group_id              TEXT NOT NULL REFERENCES groups(id) ON DELETE CASCADE,
	account_id            TEXT NOT NULL REFERENCES accounts(id),
	date                  TEXT NOT NULL,
	amount                TEXT NOT NULL,
	description           TEXT NOT NULL,
	notes                 TEXT,
	category_id           TEXT,
	type                  TEXT NOT NULL,
	payment_source        TEXT NOT NULL,
	payer_member_id       TEXT,
	approval_status       TEXT NOT NULL,
	reimbursement_status  TEXT NOT NULL,
	parent_transaction_id TEXT,
	transfer_account_id   TEXT,
	is_provision          INTEGER NOT NULL DEFAULT 0,
	import_id             TEXT,
	created_by            TEXT NOT NULL,
	created_at            TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_transactions_account ON transactions(account_id);
CREATE INDEX IF NOT EXISTS idx_transactions_import ON transactions(import_id);
CREATE INDEX IF NOT EXISTS idx_transactions_parent ON transactions(parent_transaction_id);

CREATE TABLE IF NOT EXISTS allocations (
	transaction_id TEXT NOT NULL REFERENCES transactions(id) ON DELETE CASCADE,
	member_id      TEXT NOT NULL,
	amount         TEXT NOT NULL,
	PRIMARY KEY (transaction_id, member_id)
);

CREATE TABLE IF NOT EXISTS split_templates (
	id          TEXT PRIMARY KEY,
	group_id    TEXT NOT NULL REFERENCES groups(id) ON DELETE CASCADE,
	name        TEXT NOT NULL,
	description TEXT
);

CREATE TABLE IF NOT EXISTS split_template_members (
	template_id TEXT NOT NULL REFERENCES split_templates(id) ON DELETE CASCADE,
	member_id   TEXT NOT NULL,
	shares      TEXT NOT NULL,
	position    INTEGER NOT NULL,
	PRIMARY KEY (template_id, member_id)
);

CREATE TABLE IF NOT EXISTS import_batches (
	id         TEXT PRIMARY KEY,
	group_id   TEXT NOT NULL REFERENCES groups(id) ON DELETE CASCADE,
	label      TEXT NOT NULL,
	row_count  INTEGER NOT NULL,
	created_by TEXT NOT NULL,
	created_at TEXT NOT NULL
);
`
