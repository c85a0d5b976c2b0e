// Package db exposes SQL connections as call/iterate-capable core
// values: call runs a query asynchronously and completes a task with
// an iterable rows value, or an error of kind QueryError.
package db

import (
	"database/sql"
	"fmt"

	_ "github.com/denisenkom/go-mssqldb"
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"sentracore/internal/container"
	"sentracore/internal/schedule"
	"sentracore/internal/task"
	"sentracore/internal/types"
)

// DBType wraps *sql.DB. Connect picks the driver the same way the
// teacher's db_manager.Connect dispatches on a connection-type string.
var DBType = &types.TypeDescriptor{Name: "db"}

type DB struct {
	sched *schedule.Scheduler
	sql   *sql.DB
}

func (*DB) Type() *types.TypeDescriptor { return DBType }

// Connect opens a connection for one of "sqlite", "postgres", "mysql"
// or "sqlserver" and pings it before returning.
func Connect(sched *schedule.Scheduler, driver, dsn string) (*DB, error) {
	var driverName string
	switch driver {
	case "sqlite", "sqlite3":
		driverName = "sqlite"
	case "postgres", "postgresql":
		driverName = "postgres"
	case "mysql":
		driverName = "mysql"
	case "sqlserver", "mssql":
		driverName = "sqlserver"
	default:
		return nil, fmt.Errorf("unsupported database type: %s", driver)
	}
	sqlDB, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return &DB{sched: sched, sql: sqlDB}, nil
}

func (d *DB) Close() error { return d.sql.Close() }

// RowsType is the iterable result of a query: each Next yields one row
// as a map keyed by column name.
var RowsType = &types.TypeDescriptor{Name: "db.rows"}

type Rows struct {
	cols []string
	rows *sql.Rows
}

func (*Rows) Type() *types.TypeDescriptor { return RowsType }

func init() {
	// call(db, query, args...): runs query off a goroutine, rejoining
	// the cooperative scheduler exactly once with the result (§5).
	DBType.Call = func(caller types.State, self types.Value, args []types.Value) (types.State, types.Value) {
		d := self.(*DB)
		if len(args) == 0 {
			return caller, types.NewError(types.TypeError, "db call requires a query string")
		}
		queryArg, ok := types.Deref(args[0]).(types.String)
		if !ok {
			return caller, types.NewError(types.TypeError, "db query must be a string")
		}
		queryArgs := make([]any, 0, len(args)-1)
		for _, a := range args[1:] {
			queryArgs = append(queryArgs, goValue(types.Deref(a)))
		}

		t := task.New(d.sched)
		go func() {
			rows, err := d.sql.Query(queryArg.V, queryArgs...)
			result := types.Value(types.NewError(types.QueryError, errString(err)))
			if err == nil {
				cols, colErr := rows.Columns()
				if colErr != nil {
					result = types.NewError(types.QueryError, colErr.Error())
				} else {
					result = &Rows{cols: cols, rows: rows}
				}
			}
			d.sched.Schedule(&completeTask{t: t}, result)
		}()
		return caller, t
	}

	RowsType.Iterate = func(caller types.State, self types.Value) (types.State, types.Value) {
		return rowsNext(caller, self.(*Rows))
	}
	RowsType.Next = func(caller types.State, self types.Value) (types.State, types.Value) {
		return rowsNext(caller, self.(*Rows))
	}
}

type completeTask struct{ t *task.Task }

func (c *completeTask) Run(result types.Value) (types.State, types.Value) {
	c.t.Done(result)
	return nil, types.Nil
}

func rowsNext(caller types.State, r *Rows) (types.State, types.Value) {
	if !r.rows.Next() {
		r.rows.Close()
		return caller, types.Nil
	}
	dest := make([]any, len(r.cols))
	ptrs := make([]any, len(r.cols))
	for i := range dest {
		ptrs[i] = &dest[i]
	}
	if err := r.rows.Scan(ptrs...); err != nil {
		return caller, types.NewError(types.QueryError, err.Error())
	}
	m := container.NewMap()
	for i, col := range r.cols {
		m.Insert(types.String{V: col}, coreValue(dest[i]))
	}
	return caller, m
}

func Register(reg *types.Registry) {
	reg.RegisterType(DBType)
	reg.RegisterType(RowsType)
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

func goValue(v types.Value) any {
	switch x := v.(type) {
	case types.Int:
		return x.V
	case types.String:
		return x.V
	case types.Real:
		return x.V
	default:
		return nil
	}
}

func coreValue(v any) types.Value {
	switch x := v.(type) {
	case nil:
		return types.Nil
	case int64:
		return types.Int{V: x}
	case float64:
		return types.Real{V: x}
	case string:
		return types.String{V: x}
	case []byte:
		return types.String{V: string(x)}
	case bool:
		if x {
			return types.Int{V: 1}
		}
		return types.Int{V: 0}
	default:
		return types.String{V: fmt.Sprint(x)}
	}
}
