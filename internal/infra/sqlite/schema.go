package sqlite

// Amounts are INTEGER cents, dates TEXT YYYY-MM-DD, timestamps TEXT RFC3339.
const schemaSQL = `
CREATE TABLE IF NOT EXISTS users (
    id                   TEXT PRIMARY KEY,
    email                TEXT NOT NULL UNIQUE,
    password_hash        TEXT NOT NULL,
    created_at           TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS debts (
    id                   TEXT PRIMARY KEY,
    user_id              TEXT NOT NULL,
    name                 TEXT NOT NULL,
    balance              INTEGER NOT NULL,
    interest_rate        REAL NOT NULL,
    minimum_payment      INTEGER NOT NULL DEFAULT 0,
    due_day              INTEGER NOT NULL DEFAULT 0,
    status               TEXT NOT NULL,
    mode                 TEXT NOT NULL CHECK (mode IN ('PF','PJ')),
    created_at           TEXT NOT NULL,
    updated_at           TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS transactions (
    id                   TEXT PRIMARY KEY,
    user_id              TEXT NOT NULL,
    description          TEXT NOT NULL,
    amount               INTEGER NOT NULL,
    type                 TEXT NOT NULL,
    status               TEXT NOT NULL,
    date                 TEXT NOT NULL,
    category_id          TEXT NOT NULL DEFAULT '',
    mode                 TEXT NOT NULL CHECK (mode IN ('PF','PJ')),
    project_id           TEXT NOT NULL DEFAULT '',
    client_id            TEXT NOT NULL DEFAULT '',
    recurrence_id        TEXT NOT NULL DEFAULT '',
    import_batch_id      TEXT NOT NULL DEFAULT '',
    created_at           TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS categorization_rules (
    id                   TEXT PRIMARY KEY,
    user_id              TEXT NOT NULL,
    ledger_type          TEXT NOT NULL CHECK (ledger_type IN ('PF','PJ')),
    match_type           TEXT NOT NULL,
    pattern              TEXT NOT NULL,
    category_id          TEXT NOT NULL,
    priority             INTEGER NOT NULL DEFAULT 0,
    is_active            INTEGER NOT NULL DEFAULT 1,
    created_at           TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS import_files (
    id                   TEXT PRIMARY KEY,
    user_id              TEXT NOT NULL,
    storage_path         TEXT NOT NULL,
    original_name        TEXT NOT NULL,
    content_type         TEXT NOT NULL,
    size_bytes           INTEGER NOT NULL,
    ledger_type          TEXT NOT NULL,
    created_at           TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS file_blobs (
    path                 TEXT PRIMARY KEY,
    content_type         TEXT NOT NULL,
    data                 BLOB NOT NULL
);

CREATE TABLE IF NOT EXISTS import_batches (
    id                   TEXT PRIMARY KEY,
    user_id              TEXT NOT NULL,
    file_id              TEXT NOT NULL REFERENCES import_files(id),
    ledger_type          TEXT NOT NULL,
    source_type          TEXT NOT NULL,
    status               TEXT NOT NULL,
    total_incoming       INTEGER NOT NULL DEFAULT 0,
    total_outgoing       INTEGER NOT NULL DEFAULT 0,
    row_count            INTEGER NOT NULL DEFAULT 0,
    date_from            TEXT,
    date_to              TEXT,
    created_at           TEXT NOT NULL,
    updated_at           TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS import_rows (
    id                          TEXT PRIMARY KEY,
    batch_id                    TEXT NOT NULL REFERENCES import_batches(id) ON DELETE CASCADE,
    user_id                     TEXT NOT NULL,
    line_number                 INTEGER NOT NULL,
    date                        TEXT NOT NULL,
    raw_description             TEXT NOT NULL,
    normalized_description      TEXT NOT NULL,
    amount                      INTEGER NOT NULL,
    direction                   TEXT NOT NULL,
    suggested_category_id       TEXT NOT NULL DEFAULT '',
    final_category_id           TEXT NOT NULL DEFAULT '',
    confidence                  TEXT NOT NULL,
    status                      TEXT NOT NULL,
    duplicate_of_transaction_id TEXT NOT NULL DEFAULT '',
    imported_transaction_id     TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS budgets (
    id                   TEXT PRIMARY KEY,
    user_id              TEXT NOT NULL,
    category_id          TEXT NOT NULL,
    mode                 TEXT NOT NULL CHECK (mode IN ('PF','PJ')),
    monthly_limit        INTEGER NOT NULL,
    alert_threshold_pct  REAL NOT NULL,
    is_active            INTEGER NOT NULL DEFAULT 1,
    created_at           TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS recurrences (
    id                   TEXT PRIMARY KEY,
    user_id              TEXT NOT NULL,
    description          TEXT NOT NULL,
    amount               INTEGER NOT NULL,
    type                 TEXT NOT NULL,
    category_id          TEXT NOT NULL DEFAULT '',
    mode                 TEXT NOT NULL CHECK (mode IN ('PF','PJ')),
    day_of_month         INTEGER NOT NULL,
    installments         INTEGER NOT NULL DEFAULT 0,
    start_date           TEXT NOT NULL,
    created_at           TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_debts_user ON debts(user_id, mode);
CREATE INDEX IF NOT EXISTS idx_transactions_user_date ON transactions(user_id, date);
CREATE INDEX IF NOT EXISTS idx_transactions_batch ON transactions(import_batch_id);
CREATE INDEX IF NOT EXISTS idx_rules_user ON categorization_rules(user_id, ledger_type);
CREATE INDEX IF NOT EXISTS idx_import_rows_batch ON import_rows(batch_id, line_number);
`
