package advisor

import (
	"github.com/pingcap/errors"

	"github.com/dbrainlab/autoindex/workload"
)

var (
	// ErrUnsupportedExpression is reported for WHERE/GROUP BY/ORDER BY nodes
	// outside the accepted set. The statement is skipped.
	ErrUnsupportedExpression = errors.New("unsupported expression")

	// ErrUnsupportedStatement is reported for statement kinds the extractor
	// cannot handle (DDL and friends). The statement is skipped.
	ErrUnsupportedStatement = errors.New("unsupported statement kind")
)

// isStatementError reports whether err is local to a single statement, in
// which case the statement is skipped with a warning and the run continues.
func isStatementError(err error) bool {
	switch errors.Cause(err) {
	case workload.ErrUnboundColumn, ErrUnsupportedExpression, ErrUnsupportedStatement:
		return true
	}
	return false
}
