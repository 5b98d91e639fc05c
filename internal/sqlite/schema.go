// Package sqlite implements the SQLite backend for the resource cache.
// SQLite serves as the query engine; JSONL files in DataDir are the source
// of truth and are loaded into a fresh database on every Attach.
package sqlite

// Schema DDL for the three cache slices.
const (
	createEntities = `CREATE TABLE entities (
    type TEXT NOT NULL,
    id TEXT NOT NULL,
    attributes TEXT,
    relationships TEXT,
    PRIMARY KEY (type, id)
);`

	createRefs = `CREATE TABLE refs (
    data_key TEXT NOT NULL PRIMARY KEY,
    entities TEXT,
    is_collection INTEGER DEFAULT 0,
    generic INTEGER DEFAULT 0,
    links TEXT,
    meta TEXT,
    raw TEXT
);`

	createRequests = `CREATE TABLE requests (
    data_key TEXT NOT NULL PRIMARY KEY,
    status TEXT NOT NULL,
    is_loading INTEGER DEFAULT 0,
    is_loaded INTEGER DEFAULT 0,
    is_error INTEGER DEFAULT 0,
    pending TEXT,
    request_id TEXT,
    fetched_at TEXT,
    name TEXT,
    errors TEXT
);`
)

// Index DDL for common queries.
const (
	idxEntitiesType   = `CREATE INDEX idx_entities_type ON entities(type);`
	idxRequestsStatus = `CREATE INDEX idx_requests_status ON requests(status);`
)

// schemaDDL lists all CREATE TABLE statements.
var schemaDDL = []string{
	createEntities,
	createRefs,
	createRequests,
}

// indexDDL lists all CREATE INDEX statements.
var indexDDL = []string{
	idxEntitiesType,
	idxRequestsStatus,
}
