package postgres

import (
	"database/sql"
)

// Queryer é satisfeito por *sql.DB e por *sql.Tx, permitindo que os
// repositórios executem as mesmas consultas dentro ou fora de uma transação.
type Queryer interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
	Query(query string, args ...interface{}) (*sql.Rows, error)
	QueryRow(query string, args ...interface{}) *sql.Row
}
