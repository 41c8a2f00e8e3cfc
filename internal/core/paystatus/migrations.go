package paystatus

// schema is shared by the SQL backends. paid_on is NULL for the legacy
// undated status.
const schema = `
CREATE TABLE IF NOT EXISTS payment_status (
    id TEXT PRIMARY KEY,
    paid_on TEXT
);
`
