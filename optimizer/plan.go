package optimizer

import (
	"strconv"
	"strings"

	"github.com/pingcap/errors"
)

// Plan is the row-by-row output of `explain format = 'verbose'`:
// | id | estRows | estCost | task | access object | operator info |
type Plan [][]string

// RootCost returns the estimated cost of the plan.
func (p Plan) RootCost() (float64, error) {
	if len(p) == 0 {
		return 0, errors.New("empty plan")
	}
	rootCost, err := strconv.ParseFloat(p[0][2], 64)
	if err != nil {
		return 0, errors.Annotatef(err, "parse plan cost %q", p[0][2])
	}

	/* handle CTE costs: currently
	| HashJoin_37                 | 100.00 | 8255.40  | root | | CARTESIAN inner join |
	...
	| CTE_0                       | 10.00  | 14.97    | root | | Non-Recursive CTE    |
	| └─IndexLookUp_31(Seed Part) | 10.00  | 19530.45 | root | |                      |
	*/
	cteTotCost := 0.0
	for i, row := range p {
		if strings.Contains(row[0], "CTE_") && i+1 < len(p) {
			cost, err := strconv.ParseFloat(p[i+1][2], 64)
			if err != nil {
				return 0, errors.Annotatef(err, "parse CTE cost %q", p[i+1][2])
			}
			cteTotCost += cost
		}
	}
	return rootCost + cteTotCost, nil
}

// UsedIndexNames returns the names of all indexes the plan accesses, parsed
// from the access-object column, e.g. `table:t, index:idx_ab(a, b)`.
func (p Plan) UsedIndexNames() []string {
	var names []string
	seen := make(map[string]struct{})
	for _, row := range p {
		if len(row) < 5 {
			continue
		}
		accessObject := row[4]
		for _, part := range strings.Split(accessObject, ",") {
			part = strings.TrimSpace(part)
			if !strings.HasPrefix(part, "index:") {
				continue
			}
			name := strings.TrimPrefix(part, "index:")
			if i := strings.Index(name, "("); i >= 0 {
				name = name[:i]
			}
			name = strings.ToLower(strings.TrimSpace(name))
			if name == "" {
				continue
			}
			if _, ok := seen[name]; !ok {
				seen[name] = struct{}{}
				names = append(names, name)
			}
		}
	}
	return names
}

// Format renders the plan as an aligned table.
func (p Plan) Format() string {
	if len(p) == 0 {
		return ""
	}
	blank := strings.Repeat(" ", 4)
	nRows, nCols := len(p), len(p[0])
	lines := make([]string, nRows)
	for c := 0; c < nCols; c++ {
		maxLen := 0
		for r := 0; r < nRows; r++ {
			lines[r] += p[r][c] + blank
			if len(lines[r]) > maxLen {
				maxLen = len(lines[r])
			}
		}
		for r := 0; r < nRows; r++ {
			lines[r] += strings.Repeat(" ", maxLen-len(lines[r]))
		}
	}
	return strings.Join(lines, "\n")
}
