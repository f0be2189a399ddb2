package store

const schema = `
-- Performance and reliability settings
PRAGMA journal_mode = WAL;
PRAGMA synchronous = NORMAL;
PRAGMA foreign_keys = ON;
PRAGMA temp_store = MEMORY;

-- Subscriptions: products the user opted into recurring reminders for.
CREATE TABLE IF NOT EXISTS subscriptions (
    subscription_id INTEGER PRIMARY KEY AUTOINCREMENT,
    product_name TEXT NOT NULL UNIQUE COLLATE NOCASE,
    retailer TEXT,
    price REAL,
    frequency_days INTEGER NOT NULL DEFAULT 30,
    active BOOLEAN NOT NULL DEFAULT 1,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    last_reminded_at TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_subscriptions_active ON subscriptions(active) WHERE active = 1;
CREATE INDEX IF NOT EXISTS idx_subscriptions_retailer ON subscriptions(retailer);

-- Detections: one row per pipeline run, for diagnostics and replay.
CREATE TABLE IF NOT EXISTS detections (
    detection_id INTEGER PRIMARY KEY AUTOINCREMENT,
    url TEXT NOT NULL,
    domain TEXT,
    is_order_confirmation BOOLEAN NOT NULL DEFAULT 0,
    confidence REAL NOT NULL DEFAULT 0,
    product_count INTEGER NOT NULL DEFAULT 0,
    retailer TEXT,
    order_number TEXT,
    triggers TEXT,          -- JSON array of trigger names
    skip_reason TEXT,
    detected_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_detections_url ON detections(url);
CREATE INDEX IF NOT EXISTS idx_detections_time ON detections(detected_at);
CREATE INDEX IF NOT EXISTS idx_detections_confirmed ON detections(is_order_confirmation) WHERE is_order_confirmation = 1;
`
