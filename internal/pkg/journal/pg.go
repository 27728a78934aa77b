package journal

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"
	//
	_ "github.com/lib/pq"
)

const (
	timeout = 4
)

const (
	createTable = `create table if not exists echo_sessions (
	id serial primary key,
	role text not null,
	peer text not null,
	bytes_in bigint not null,
	bytes_out bigint not null,
	error text not null,
	started_at timestamptz not null,
	finished_at timestamptz not null
)`
	insertSession = `insert into echo_sessions (role, peer, bytes_in, bytes_out, error, started_at, finished_at)
values ($1, $2, $3, $4, $5, $6, $7)`
	selectRecent = `select role, peer, bytes_in, bytes_out, error, started_at, finished_at
from echo_sessions order by id desc limit $1`
)

// Session is one finished client or server flow.
type Session struct {
	Role     string
	Peer     string
	BytesIn  int
	BytesOut int
	Err      string
	Started  time.Time
	Finished time.Time
}

// PG ...
type PG struct {
	conn string
	db   *sql.DB
}

// NewPG ...
func NewPG(conn string) *PG {
	return &PG{conn: conn}
}

// Open ...
func (s *PG) Open() error {
	if s.db != nil {
		return nil
	}
	db, err := sql.Open("postgres", s.conn)
	if err != nil {
		return errors.Wrap(err, "journal open")
	}
	s.db = db
	return nil
}

// Close ...
func (s *PG) Close() {
	if s.db != nil {
		s.db.Close()
		s.db = nil
	}
}

// Init ...
func (s *PG) Init() error {
	if err := s.Open(); err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*timeout)
	defer cancel()
	_, err := s.db.ExecContext(ctx, createTable)
	return errors.Wrap(err, "journal init")
}

// Record ...
func (s *PG) Record(ss Session) error {
	if err := s.Open(); err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*timeout)
	defer cancel()
	_, err := s.db.ExecContext(ctx, insertSession,
		ss.Role, ss.Peer, ss.BytesIn, ss.BytesOut, ss.Err, ss.Started, ss.Finished)
	return errors.Wrap(err, "journal record")
}

// Recent returns the last n sessions, newest first.
func (s *PG) Recent(n int) ([]Session, error) {
	if err := s.Open(); err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*timeout)
	defer cancel()
	rows, err := s.db.QueryContext(ctx, selectRecent, n)
	if err != nil {
		return nil, errors.Wrap(err, "journal recent")
	}
	defer rows.Close()

	var ret []Session
	for rows.Next() {
		var ss Session
		if err := rows.Scan(&ss.Role, &ss.Peer, &ss.BytesIn, &ss.BytesOut, &ss.Err, &ss.Started, &ss.Finished); err != nil {
			return nil, errors.Wrap(err, "journal recent")
		}
		ret = append(ret, ss)
	}
	return ret, errors.Wrap(rows.Err(), "journal recent")
}
