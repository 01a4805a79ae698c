package repository

import "testing"

func TestAppendPageClause(t *testing.T) {
	cases := []struct {
		name       string
		limit      int
		offset     int
		wantClause string
		wantArgs   []any
	}{
		{"none", 0, 0, "", []any{"x"}},
		{"limit only", 10, 0, "LIMIT $2", []any{"x", 10}},
		{"offset without limit", 0, 5, "OFFSET $2", []any{"x", 5}},
		{"both", 10, 5, "LIMIT $2 OFFSET $3", []any{"x", 10, 5}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			args, clause := appendPageClause([]any{"x"}, tc.limit, tc.offset)
			if clause != tc.wantClause {
				t.Fatalf("clause = %q, want %q", clause, tc.wantClause)
			}
			if len(args) != len(tc.wantArgs) {
				t.Fatalf("args = %v, want %v", args, tc.wantArgs)
			}
			for i := range args {
				if args[i] != tc.wantArgs[i] {
					t.Fatalf("args = %v, want %v", args, tc.wantArgs)
				}
			}
		})
	}
}
