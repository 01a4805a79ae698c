package repository

import "fmt"

// appendPageClause adds LIMIT and OFFSET placeholders independently. A zero limit
// means no limit; a zero offset is omitted.
func appendPageClause(args []any, limit, offset int) ([]any, string) {
	clause := ""
	if limit > 0 {
		args = append(args, limit)
		clause = fmt.Sprintf("LIMIT $%d", len(args))
	}
	if offset > 0 {
		args = append(args, offset)
		if clause != "" {
			clause += " "
		}
		clause += fmt.Sprintf("OFFSET $%d", len(args))
	}
	return args, clause
}
