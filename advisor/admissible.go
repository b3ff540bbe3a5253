package advisor

import (
	"github.com/pingcap/errors"
	"github.com/pingcap/parser/ast"
	"github.com/pingcap/parser/opcode"
	_ "github.com/pingcap/tidb/types/parser_driver"

	"github.com/dbrainlab/autoindex/utils"
	"github.com/dbrainlab/autoindex/workload"
)

// admissibleExtractor walks a bound statement and collects the single-column
// indexes derivable from it:
//  1. WHERE comparisons `col OP expr` with OP in {=, !=, <, >, <=, >=, LIKE,
//     NOT LIKE, IN}; AND/OR recurse into both children.
//  2. every GROUP BY and ORDER BY term,
//  3. every updated column of an UPDATE,
//  4. the inner SELECT's WHERE of an INSERT ... SELECT.
type admissibleExtractor struct {
	catalog *workload.Catalog
	pool    *IndexObjectPool
}

// extractAdmissibleIndexes returns the admissible single-column indexes of
// one query, interned through the pool.
func extractAdmissibleIndexes(q *workload.Query, catalog *workload.Catalog, pool *IndexObjectPool) (*IndexConfiguration, error) {
	e := &admissibleExtractor{catalog: catalog, pool: pool}
	cfg := NewIndexConfiguration()
	if err := e.statement(q, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// scopeOf resolves the tables a clause may reference. A nil FROM clause
// yields an empty scope.
func (e *admissibleExtractor) scopeOf(schemaName string, refs *ast.TableRefsClause) *workload.Scope {
	if refs == nil {
		return workload.NewScope(e.catalog, schemaName, nil)
	}
	return workload.NewScope(e.catalog, schemaName, refs)
}

func (e *admissibleExtractor) statement(q *workload.Query, cfg *IndexConfiguration) error {
	switch x := q.Stmt.(type) {
	case *ast.SelectStmt:
		scope := e.scopeOf(q.SchemaName, x.From)
		if err := e.where(scope, x.Where, cfg); err != nil {
			return err
		}
		if x.GroupBy != nil {
			if err := e.byItems(scope, x.GroupBy.Items, cfg); err != nil {
				return err
			}
		}
		if x.OrderBy != nil {
			if err := e.byItems(scope, x.OrderBy.Items, cfg); err != nil {
				return err
			}
		}
	case *ast.UpdateStmt:
		scope := e.scopeOf(q.SchemaName, x.TableRefs)
		if err := e.where(scope, x.Where, cfg); err != nil {
			return err
		}
		for _, assign := range x.List {
			if err := e.emit(scope, assign.Column, cfg); err != nil {
				return err
			}
		}
	case *ast.DeleteStmt:
		scope := e.scopeOf(q.SchemaName, x.TableRefs)
		if err := e.where(scope, x.Where, cfg); err != nil {
			return err
		}
	case *ast.InsertStmt:
		if x.Select == nil {
			return nil // plain INSERT ... VALUES contributes nothing
		}
		inner, ok := x.Select.(*ast.SelectStmt)
		if !ok {
			return errors.Annotatef(ErrUnsupportedStatement, "insert source %T", x.Select)
		}
		scope := e.scopeOf(q.SchemaName, inner.From)
		if err := e.where(scope, inner.Where, cfg); err != nil {
			return err
		}
	default:
		return errors.Annotatef(ErrUnsupportedStatement, "%T", q.Stmt)
	}
	return nil
}

func (e *admissibleExtractor) where(scope *workload.Scope, expr ast.ExprNode, cfg *IndexConfiguration) error {
	if expr == nil {
		return nil
	}
	switch x := expr.(type) {
	case *ast.ParenthesesExpr:
		return e.where(scope, x.Expr, cfg)
	case *ast.BinaryOperationExpr:
		switch x.Op {
		case opcode.LogicAnd, opcode.LogicOr:
			if err := e.where(scope, x.L, cfg); err != nil {
				return err
			}
			return e.where(scope, x.R, cfg)
		case opcode.EQ, opcode.NE, opcode.LT, opcode.LE, opcode.GT, opcode.GE:
			return e.comparison(scope, x.L, x.R, cfg)
		default:
			return errors.Annotatef(ErrUnsupportedExpression, "operator %v", x.Op)
		}
	case *ast.PatternLikeExpr: // {col} [NOT] LIKE ?
		col := columnName(x.Expr)
		if col == nil {
			return errors.Annotatef(ErrUnsupportedExpression, "LIKE over a non-column expression")
		}
		return e.emit(scope, col, cfg)
	case *ast.PatternInExpr: // {col} IN (?, ...)
		col := columnName(x.Expr)
		if col == nil {
			return errors.Annotatef(ErrUnsupportedExpression, "IN over a non-column expression")
		}
		return e.emit(scope, col, cfg)
	default:
		return errors.Annotatef(ErrUnsupportedExpression, "%T", expr)
	}
}

// comparison handles `col OP expr`: exactly one side must be a column.
func (e *admissibleExtractor) comparison(scope *workload.Scope, l, r ast.ExprNode, cfg *IndexConfiguration) error {
	lCol, rCol := columnName(l), columnName(r)
	if (lCol == nil) == (rCol == nil) {
		return errors.Annotatef(ErrUnsupportedExpression, "comparison needs exactly one column side")
	}
	if lCol != nil {
		return e.emit(scope, lCol, cfg)
	}
	return e.emit(scope, rCol, cfg)
}

func (e *admissibleExtractor) byItems(scope *workload.Scope, items []*ast.ByItem, cfg *IndexConfiguration) error {
	for _, item := range items {
		col := columnName(item.Expr)
		if col == nil {
			return errors.Annotatef(ErrUnsupportedExpression, "group/order term %T is not a column", item.Expr)
		}
		if err := e.emit(scope, col, cfg); err != nil {
			return err
		}
	}
	return nil
}

func (e *admissibleExtractor) emit(scope *workload.Scope, name *ast.ColumnName, cfg *IndexConfiguration) error {
	ref, err := scope.ResolveColumn(name)
	if err != nil {
		return err
	}
	if !ref.Indexable() {
		utils.Debugf("skip non-indexable column %v.%v.%v", ref.SchemaName, ref.TableName, ref.ColumnName)
		return nil
	}
	cfg.Add(e.pool.Put(NewIndexObject(ref)))
	return nil
}

// columnName unwraps parentheses and returns the column reference, or nil.
func columnName(expr ast.ExprNode) *ast.ColumnName {
	for {
		p, ok := expr.(*ast.ParenthesesExpr)
		if !ok {
			break
		}
		expr = p.Expr
	}
	if c, ok := expr.(*ast.ColumnNameExpr); ok {
		return c.Name
	}
	return nil
}
