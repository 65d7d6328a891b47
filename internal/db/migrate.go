package db

import (
	"context"

	"github.com/jmoiron/sqlx"
)

func RunMigrations(db *sqlx.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS users (
    id TEXT PRIMARY KEY,
    email TEXT NOT NULL,
    email_blind_index TEXT UNIQUE NOT NULL,
    password_hash TEXT NOT NULL,
    display_name TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS profiles (
    user_id TEXT PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
    display_name TEXT NOT NULL DEFAULT '',
    companion_name TEXT NOT NULL DEFAULT '',
    tasks JSONB NOT NULL DEFAULT '[]',
    goals JSONB NOT NULL DEFAULT '[]',
    health_metrics JSONB NOT NULL DEFAULT '[]',
    cycle_info JSONB NOT NULL DEFAULT '{}',
    symptoms JSONB NOT NULL DEFAULT '[]',
    partner_reflection JSONB NOT NULL DEFAULT '{}',
    diary_entries TEXT NOT NULL DEFAULT '',
    chat_history TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`
	_, err := db.ExecContext(context.Background(), schema)
	if err != nil {
		return err
	}

	// diary_entries and chat_history hold ciphertext, not JSONB; earlier
	// deployments created them as JSONB before at-rest encryption landed.
	alters := `
DO $$ BEGIN
    IF EXISTS (
        SELECT 1 FROM information_schema.columns
        WHERE table_name='profiles' AND column_name='diary_entries' AND data_type='jsonb'
    ) THEN
        ALTER TABLE profiles ALTER COLUMN diary_entries TYPE TEXT USING diary_entries::text;
        ALTER TABLE profiles ALTER COLUMN diary_entries SET DEFAULT '';
    END IF;
    IF EXISTS (
        SELECT 1 FROM information_schema.columns
        WHERE table_name='profiles' AND column_name='chat_history' AND data_type='jsonb'
    ) THEN
        ALTER TABLE profiles ALTER COLUMN chat_history TYPE TEXT USING chat_history::text;
        ALTER TABLE profiles ALTER COLUMN chat_history SET DEFAULT '';
    END IF;
    IF NOT EXISTS (
        SELECT 1 FROM information_schema.columns
        WHERE table_name='users' AND column_name='display_name'
    ) THEN
        ALTER TABLE users ADD COLUMN display_name TEXT NOT NULL DEFAULT '';
    END IF;
END $$;`
	_, err = db.ExecContext(context.Background(), alters)
	return err
}
