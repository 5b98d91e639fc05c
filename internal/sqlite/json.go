// JSON record structures for SQLite backend persistence.
// These structures define the JSONL record format for data files.
package sqlite

// JSONL file names in DataDir.
const (
	entitiesJSONL = "entities.jsonl"
	refsJSONL     = "refs.jsonl"
	requestsJSONL = "requests.jsonl"
)

// entityJSON represents an entity in entities.jsonl.
type entityJSON struct {
	Type          string         `json:"type"`
	ID            string         `json:"id"`
	Attributes    map[string]any `json:"attributes"`
	Relationships map[string]any `json:"relationships"`
}

// refJSON represents a data key's ref in refs.jsonl.
type refJSON struct {
	DataKey      string         `json:"data_key"`
	Entities     []entityKey    `json:"entities"`
	IsCollection bool           `json:"is_collection"`
	Generic      bool           `json:"generic"`
	Links        map[string]any `json:"links"`
	Meta         map[string]any `json:"meta"`
	Raw          any            `json:"raw"`
}

// entityKey is one (type, id) pointer inside refJSON.
type entityKey struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

// requestJSON represents a data key's request status in requests.jsonl.
type requestJSON struct {
	DataKey   string   `json:"data_key"`
	Status    string   `json:"status"`
	IsLoading bool     `json:"is_loading"`
	IsLoaded  bool     `json:"is_loaded"`
	IsError   bool     `json:"is_error"`
	Pending   string   `json:"pending"`
	RequestID string   `json:"request_id"`
	FetchedAt *string  `json:"fetched_at"`
	Name      string   `json:"name"`
	Errors    []string `json:"errors"`
}
