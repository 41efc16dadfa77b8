package history

// migrations is the ordered list of SQL migration statements.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS queries (
		id TEXT PRIMARY KEY,
		query TEXT NOT NULL,
		strategy TEXT NOT NULL,
		invocations TEXT NOT NULL,
		results TEXT NOT NULL,
		answer TEXT NOT NULL,
		degraded INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_queries_created_at ON queries(created_at)`,
}
