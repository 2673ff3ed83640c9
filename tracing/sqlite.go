package tracing

import (
	"database/sql"
	"fmt"
	"os"

	// Need to use SQLite connections.
	_ "github.com/mattn/go-sqlite3"

	"github.com/rs/xid"
	"github.com/tebeka/atexit"

	"github.com/sarchlab/ssdctrl/sim"
)

// SQLiteWriter is a writer that writes records to a SQLite database.
type SQLiteWriter struct {
	*sql.DB
	statement *sql.Stmt

	dbName    string
	toWrite   []Record
	batchSize int
}

// NewSQLiteWriter creates a new SQLiteWriter. The database is created at
// path with a .sqlite3 suffix. An empty path picks a unique name.
func NewSQLiteWriter(path string) *SQLiteWriter {
	w := &SQLiteWriter{
		dbName:    path,
		batchSize: 10000,
	}

	atexit.Register(func() { w.Flush() })

	return w
}

// FileName returns the database file.
func (w *SQLiteWriter) FileName() string {
	return w.dbName + ".sqlite3"
}

// Init creates the database and its table.
func (w *SQLiteWriter) Init() {
	if w.dbName == "" {
		w.dbName = "ssdctrl_trace_" + xid.New().String()
	}

	w.createDatabase()
	w.createTable()
	w.prepareStatement()
}

// Write buffers a record.
func (w *SQLiteWriter) Write(r Record) {
	w.toWrite = append(w.toWrite, r)
	if len(w.toWrite) >= w.batchSize {
		w.Flush()
	}
}

// Flush writes all the buffered records to the database.
func (w *SQLiteWriter) Flush() {
	if len(w.toWrite) == 0 {
		return
	}

	w.mustExecute("BEGIN TRANSACTION")
	defer w.mustExecute("COMMIT TRANSACTION")

	for _, r := range w.toWrite {
		_, err := w.statement.Exec(r.ID, float64(r.Time), r.Where, r.Kind, r.What)
		if err != nil {
			panic(err)
		}
	}

	w.toWrite = nil
}

func (w *SQLiteWriter) createDatabase() {
	filename := w.FileName()

	_, err := os.Stat(filename)
	if err == nil {
		panic(fmt.Errorf("file %s already exists", filename))
	}

	fmt.Fprintf(os.Stderr, "Trace is collected in database: %s\n", filename)

	db, err := sql.Open("sqlite3", filename)
	if err != nil {
		panic(err)
	}

	w.DB = db
}

func (w *SQLiteWriter) createTable() {
	w.mustExecute(`
		create table trace
		(
			record_id varchar(200) not null,
			time      float        not null,
			location  varchar(100) not null,
			kind      varchar(100) not null,
			what      varchar(200) not null
		);
	`)

	w.mustExecute(`
		create index trace_time_index
			on trace (time);
	`)

	w.mustExecute(`
		create index trace_kind_index
			on trace (kind);
	`)
}

func (w *SQLiteWriter) prepareStatement() {
	stmt, err := w.Prepare(`INSERT INTO trace VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		panic(err)
	}

	w.statement = stmt
}

func (w *SQLiteWriter) mustExecute(query string) sql.Result {
	res, err := w.Exec(query)
	if err != nil {
		fmt.Printf("Failed to execute: %s\n", query)
		panic(err)
	}

	return res
}

// SQLiteReader reads records from a trace database.
type SQLiteReader struct {
	*sql.DB

	filename string
}

// NewSQLiteReader creates a new SQLiteReader.
func NewSQLiteReader(filename string) *SQLiteReader {
	return &SQLiteReader{filename: filename}
}

// Init establishes a connection to the database.
func (r *SQLiteReader) Init() {
	db, err := sql.Open("sqlite3", r.filename)
	if err != nil {
		panic(err)
	}

	r.DB = db
}

// ListRecords returns the records of a kind in time order. An empty kind
// returns every record.
func (r *SQLiteReader) ListRecords(kind string) ([]Record, error) {
	query := "SELECT record_id, time, location, kind, what FROM trace"
	args := []any{}

	if kind != "" {
		query += " WHERE kind = ?"
		args = append(args, kind)
	}

	query += " ORDER BY time, rowid"

	rows, err := r.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var (
			rec  Record
			time float64
		)

		err := rows.Scan(&rec.ID, &time, &rec.Where, &rec.Kind, &rec.What)
		if err != nil {
			return nil, err
		}

		rec.Time = sim.VTimeInSec(time)
		records = append(records, rec)
	}

	return records, rows.Err()
}
