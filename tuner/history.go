package tuner

import (
	"database/sql"

	"github.com/pingcap/errors"

	"github.com/dbrainlab/autoindex/utils"
	"github.com/dbrainlab/autoindex/workload"
)

// ErrCatalogUnavailable is reported when the query history or the schema
// catalog cannot be read. It is fatal to the current tuning pass.
var ErrCatalogUnavailable = errors.New("catalog unavailable")

// QueryRecord is one row of the query-history table.
type QueryRecord struct {
	Timestamp   int64
	Fingerprint string
	SQLText     string
}

// QueryHistory reads the statements the query logger recorded.
type QueryHistory interface {
	// QueriesAfter returns all records strictly newer than ts, ascending by
	// timestamp.
	QueriesAfter(ts int64) ([]QueryRecord, error)
}

type sqlQueryHistory struct {
	db *sql.DB
}

// NewQueryHistory reads `pg_query_history(timestamp, fingerprint, sql_text)`
// through the given connection. The table is written by the query logger; the
// tuner only reads it.
func NewQueryHistory(db *sql.DB) QueryHistory {
	return &sqlQueryHistory{db: db}
}

func (h *sqlQueryHistory) QueriesAfter(ts int64) ([]QueryRecord, error) {
	rows, err := h.db.Query(
		"select `timestamp`, fingerprint, sql_text from pg_query_history where `timestamp` > ? order by `timestamp`", ts)
	if err != nil {
		return nil, errors.Annotatef(ErrCatalogUnavailable, "read query history: %v", err)
	}
	defer rows.Close()

	var records []QueryRecord
	for rows.Next() {
		var r QueryRecord
		if err := rows.Scan(&r.Timestamp, &r.Fingerprint, &r.SQLText); err != nil {
			return nil, errors.Annotatef(ErrCatalogUnavailable, "scan query history: %v", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Annotatef(ErrCatalogUnavailable, "read query history: %v", err)
	}
	return records, nil
}

// buildWorkload turns history records into a bound workload. Records with the
// same fingerprint collapse into one query with summed frequency; statements
// that fail to parse are skipped with a warning.
func buildWorkload(defaultSchema string, records []QueryRecord) *workload.Workload {
	w := workload.NewWorkload()
	byFingerprint := make(map[string]*workload.Query)
	for _, r := range records {
		fingerprint := r.Fingerprint
		if fingerprint == "" {
			_, fingerprint = utils.NormalizeDigest(r.SQLText)
		}
		if q, ok := byFingerprint[fingerprint]; ok {
			q.Frequency++
			continue
		}
		q, err := workload.ParseQuery(defaultSchema, r.SQLText)
		if err != nil {
			utils.Warningf("skip unparseable history entry %q: %v", r.SQLText, err)
			continue
		}
		byFingerprint[fingerprint] = q
		w.Add(q)
	}
	return w
}
