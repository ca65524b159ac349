package store

// schema returns the DDL for d. Timestamps are TIMESTAMPTZ on Postgres and
// RFC 3339 text on SQLite. Restrictions are stored as JSON.
func schema(d Dialect) []string {
	if d == Postgres {
		return []string{
			`CREATE TABLE IF NOT EXISTS membership_plans (
				id                TEXT PRIMARY KEY,
				organization_id   BIGINT NOT NULL,
				name              TEXT NOT NULL,
				description       TEXT NOT NULL DEFAULT '',
				benefit_type      TEXT NOT NULL,
				benefit_value     INTEGER NOT NULL,
				valid_for_days    INTEGER NOT NULL,
				price             BIGINT NOT NULL,
				is_active         BOOLEAN NOT NULL DEFAULT TRUE,
				time_restrictions JSONB,
				created_at        TIMESTAMPTZ NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS client_memberships (
				seq                 BIGSERIAL UNIQUE,
				id                  UUID PRIMARY KEY,
				client_id           TEXT NOT NULL,
				plan_id             TEXT NOT NULL,
				organization_id     BIGINT NOT NULL,
				name                TEXT NOT NULL,
				benefit_type        TEXT NOT NULL,
				remaining_sessions  INTEGER CHECK (remaining_sessions >= 0),
				original_sessions   INTEGER,
				discount_percentage INTEGER,
				purchase_price      BIGINT NOT NULL,
				purchased_date      DATE NOT NULL,
				expires_date        DATE NOT NULL,
				status              TEXT NOT NULL,
				time_restrictions   JSONB,
				version             INTEGER NOT NULL,
				created_at          TIMESTAMPTZ NOT NULL,
				updated_at          TIMESTAMPTZ NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS idx_client_memberships_client ON client_memberships (client_id, seq)`,
			`CREATE UNIQUE INDEX IF NOT EXISTS idx_client_memberships_one_active
				ON client_memberships (client_id) WHERE status = 'active'`,
			`CREATE TABLE IF NOT EXISTS membership_transactions (
				seq                BIGSERIAL PRIMARY KEY,
				id                 UUID NOT NULL UNIQUE,
				membership_id      UUID NOT NULL REFERENCES client_memberships (id),
				client_id          TEXT NOT NULL,
				transaction_type   TEXT NOT NULL,
				booking_id         TEXT,
				admin_id           TEXT,
				sessions_before    INTEGER,
				sessions_after     INTEGER,
				amount             BIGINT NOT NULL DEFAULT 0,
				membership_version INTEGER NOT NULL,
				created_at         TIMESTAMPTZ NOT NULL,
				notes              TEXT NOT NULL DEFAULT '',
				UNIQUE (membership_id, membership_version)
			)`,
			`CREATE INDEX IF NOT EXISTS idx_membership_transactions_client ON membership_transactions (client_id, seq)`,
		}
	}

	return []string{
		`CREATE TABLE IF NOT EXISTS membership_plans (
			id                TEXT PRIMARY KEY,
			organization_id   INTEGER NOT NULL,
			name              TEXT NOT NULL,
			description       TEXT NOT NULL DEFAULT '',
			benefit_type      TEXT NOT NULL,
			benefit_value     INTEGER NOT NULL,
			valid_for_days    INTEGER NOT NULL,
			price             INTEGER NOT NULL,
			is_active         INTEGER NOT NULL DEFAULT 1,
			time_restrictions TEXT,
			created_at        TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS client_memberships (
			seq                 INTEGER PRIMARY KEY AUTOINCREMENT,
			id                  TEXT NOT NULL UNIQUE,
			client_id           TEXT NOT NULL,
			plan_id             TEXT NOT NULL,
			organization_id     INTEGER NOT NULL,
			name                TEXT NOT NULL,
			benefit_type        TEXT NOT NULL,
			remaining_sessions  INTEGER CHECK (remaining_sessions >= 0),
			original_sessions   INTEGER,
			discount_percentage INTEGER,
			purchase_price      INTEGER NOT NULL,
			purchased_date      TEXT NOT NULL,
			expires_date        TEXT NOT NULL,
			status              TEXT NOT NULL,
			time_restrictions   TEXT,
			version             INTEGER NOT NULL,
			created_at          TEXT NOT NULL,
			updated_at          TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_client_memberships_client ON client_memberships (client_id, seq)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_client_memberships_one_active
			ON client_memberships (client_id) WHERE status = 'active'`,
		`CREATE TABLE IF NOT EXISTS membership_transactions (
			seq                INTEGER PRIMARY KEY AUTOINCREMENT,
			id                 TEXT NOT NULL UNIQUE,
			membership_id      TEXT NOT NULL REFERENCES client_memberships (id),
			client_id          TEXT NOT NULL,
			transaction_type   TEXT NOT NULL,
			booking_id         TEXT,
			admin_id           TEXT,
			sessions_before    INTEGER,
			sessions_after     INTEGER,
			amount             INTEGER NOT NULL DEFAULT 0,
			membership_version INTEGER NOT NULL,
			created_at         TEXT NOT NULL,
			notes              TEXT NOT NULL DEFAULT '',
			UNIQUE (membership_id, membership_version)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_membership_transactions_client ON membership_transactions (client_id, seq)`,
	}
}
