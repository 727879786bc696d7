package sqlite

// Schema DDL. Every statement is IF NOT EXISTS so Attach is safe to run
// on every startup; the database file is the durable store.
const (
	createAccounts = `CREATE TABLE IF NOT EXISTS accounts (
    account_id TEXT PRIMARY KEY,
    email TEXT NOT NULL,
    password_hash TEXT NOT NULL,
    display_name TEXT,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);`

	createPortfolios = `CREATE TABLE IF NOT EXISTS portfolios (
    snapshot_id TEXT PRIMARY KEY,
    owner_email TEXT NOT NULL,
    payload TEXT NOT NULL,
    last_updated TEXT NOT NULL
);`
)

// Index DDL. The unique email index carries the account uniqueness
// invariant; the portfolio indexes serve the two lookup shapes
// (by owner, newest first).
const (
	idxAccountsEmail        = `CREATE UNIQUE INDEX IF NOT EXISTS idx_accounts_email ON accounts(email);`
	idxPortfoliosOwner      = `CREATE INDEX IF NOT EXISTS idx_portfolios_owner ON portfolios(owner_email);`
	idxPortfoliosLastUpdate = `CREATE INDEX IF NOT EXISTS idx_portfolios_last_updated ON portfolios(last_updated);`
)

// schemaDDL lists all CREATE TABLE statements in dependency order.
var schemaDDL = []string{
	createAccounts,
	createPortfolios,
}

// indexDDL lists all CREATE INDEX statements.
var indexDDL = []string{
	idxAccountsEmail,
	idxPortfoliosOwner,
	idxPortfoliosLastUpdate,
}
