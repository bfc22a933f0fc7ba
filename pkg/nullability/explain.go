package nullability

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/pgguard/pgguard/pkg/describe"
)

// rawPlanNode mirrors the subset of EXPLAIN (FORMAT JSON)'s plan-node shape
// this walk cares about. PostgreSQL's JSON keys are capitalized strings;
// unmarshaling directly into them avoids hand-rolled parsing.
type rawPlanNode struct {
	JoinType       string        `json:"Join Type"`
	ParentRelation string        `json:"Parent Relationship"`
	Output         []string      `json:"Output"`
	Plans          []rawPlanNode `json:"Plans"`
}

// visitPlan implements the reference implementation's documented
// under-approximation verbatim: a node's output columns are marked
// nullable when the node is a full join, or sits on the inner side of a
// parent join, and the walk only ever descends into the children of
// left/right join nodes. A node on the inner side of a nested-loop join that
// is itself neither Left nor Right typed will not propagate nullability to
// its own children — this is a known limitation of the EXPLAIN-based
// approach, not a bug to fix here. The tree is walked with an explicit stack
// rather than recursive calls, so deeply nested plans cannot exhaust the
// goroutine stack.
func visitPlan(root rawPlanNode, rootOutputs []string, nullables []bool) {
	stack := []rawPlanNode{root}
	for len(stack) > 0 {
		plan := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if plan.JoinType == "Full" || plan.ParentRelation == "Inner" {
			for _, col := range plan.Output {
				for i, root := range rootOutputs {
					if root == col {
						nullables[i] = true
					}
				}
			}
		}

		if plan.JoinType == "Left" || plan.JoinType == "Right" {
			stack = append(stack, plan.Plans...)
		}
	}
}

// ExplainOverride is a column whose nullability EXPLAIN's plan-tree walk
// determined must be true. It never asserts false: absence from the
// returned slice means "EXPLAIN found no reason to override the catalog
// base," not "EXPLAIN confirmed not-null."
type ExplainOverride struct {
	Name     string
	Nullable bool
}

// Explain runs EXPLAIN (VERBOSE, FORMAT JSON) EXECUTE against the named
// prepared statement and walks the resulting plan tree for outer-join
// nullability. cols supplies the column names in statement output order.
func Explain(ctx context.Context, conn *pgx.Conn, stmtName string, cols []describe.UnresolvedColumn) ([]ExplainOverride, error) {
	var paramCount int
	err := conn.QueryRow(ctx,
		"SELECT coalesce(array_length(parameter_types, 1), 0) FROM pg_prepared_statements WHERE name = $1",
		stmtName,
	).Scan(&paramCount)
	if err != nil {
		return nil, fmt.Errorf("pg_prepared_statements lookup for %q: %w", stmtName, err)
	}

	nulls := make([]string, paramCount)
	for i := range nulls {
		nulls[i] = "NULL"
	}
	paramsClause := ""
	if paramCount > 0 {
		paramsClause = "(" + strings.Join(nulls, ", ") + ")"
	}

	var planJSON []byte
	err = conn.QueryRow(ctx, fmt.Sprintf("EXPLAIN (VERBOSE, FORMAT JSON) EXECUTE %s%s", stmtName, paramsClause)).Scan(&planJSON)
	if err != nil {
		return nil, fmt.Errorf("explain execute %q: %w", stmtName, err)
	}

	var wrapper []struct {
		Plan rawPlanNode `json:"Plan"`
	}
	if err := json.Unmarshal(planJSON, &wrapper); err != nil {
		return nil, fmt.Errorf("unmarshal explain output: %w", err)
	}
	if len(wrapper) == 0 {
		return nil, fmt.Errorf("explain returned no plan")
	}

	root := wrapper[0].Plan
	nullables := make([]bool, len(root.Output))
	visitPlan(root, root.Output, nullables)

	var overrides []ExplainOverride
	for i, isNullable := range nullables {
		if isNullable && i < len(cols) {
			overrides = append(overrides, ExplainOverride{Name: cols[i].Name, Nullable: true})
		}
	}
	return overrides, nil
}
