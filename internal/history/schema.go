package history

const schema = `
CREATE TABLE IF NOT EXISTS events (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    package TEXT NOT NULL,
    version TEXT,
    action TEXT NOT NULL,
    occurred_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_events_package ON events(package);
CREATE INDEX IF NOT EXISTS idx_events_occurred ON events(occurred_at);
`
