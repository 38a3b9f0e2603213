// Copyright (c) 2023 The Frok developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb

import (
	"context"
	"database/sql"
	"fmt"
	"math/big"

	sqlite3 "github.com/mattn/go-sqlite3"

	"github.com/johnnyonline/frok-vickrey-auction/frok"
)

const eventTableSchema = `CREATE TABLE IF NOT EXISTS auction_event (
	seq INTEGER PRIMARY KEY AUTOINCREMENT,
	ts INTEGER NOT NULL,
	name TEXT NOT NULL,
	nftID INTEGER NOT NULL,
	addr BLOB,
	amount TEXT,
	price TEXT,
	endTime INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS auction_event_name ON auction_event(name);
CREATE INDEX IF NOT EXISTS auction_event_addr ON auction_event(addr);`

// LogDB is the append-only sqlite log of auction events.
type LogDB struct {
	path          string
	db            *sql.DB
	driverVersion string
}

// New create or open log db at given path.
func New(path string) (logDB *LogDB, err error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if logDB == nil {
			if err := db.Close(); err != nil {
				fmt.Println("could not close logdb error:", err)
			}
		}
	}()
	if _, err := db.Exec(eventTableSchema); err != nil {
		return nil, err
	}

	driverVer, _, _ := sqlite3.Version()
	return &LogDB{
		path,
		db,
		driverVer,
	}, nil
}

// NewMem create a log db in ram.
func NewMem() (*LogDB, error) {
	return New(":memory:")
}

// Close closes the log db.
func (db *LogDB) Close() error {
	return db.db.Close()
}

// Path returns the path to the log db file.
func (db *LogDB) Path() string {
	return db.path
}

func amountString(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}

// Insert appends an event. The Seq field is assigned by the database and
// ignored on input.
func (db *LogDB) Insert(ev *Event) error {
	_, err := db.db.Exec(
		"INSERT INTO auction_event(ts, name, nftID, addr, amount, price, endTime) VALUES(?,?,?,?,?,?,?)",
		ev.Time, ev.Name, ev.NFTID, ev.Address.Bytes(), amountString(ev.Amount), amountString(ev.Price), ev.EndTime,
	)
	return err
}

// FilterEvents returns events matching the given filter. A nil filter
// returns everything in ascending order.
func (db *LogDB) FilterEvents(ctx context.Context, filter *EventFilter) ([]*Event, error) {
	stmt := "SELECT seq, ts, name, nftID, addr, amount, price, endTime FROM auction_event"
	var args []interface{}
	var conds []string

	if filter != nil {
		if filter.Name != "" {
			conds = append(conds, "name = ?")
			args = append(args, filter.Name)
		}
		if filter.Address != nil {
			conds = append(conds, "addr = ?")
			args = append(args, filter.Address.Bytes())
		}
		if filter.Range != nil {
			conds = append(conds, "seq >= ?", "seq <= ?")
			args = append(args, filter.Range.From, filter.Range.To)
		}
	}
	for i, c := range conds {
		if i == 0 {
			stmt += " WHERE " + c
		} else {
			stmt += " AND " + c
		}
	}
	if filter != nil && filter.Order == DESC {
		stmt += " ORDER BY seq DESC"
	} else {
		stmt += " ORDER BY seq ASC"
	}
	if filter != nil && filter.Options != nil {
		stmt += " LIMIT ? OFFSET ?"
		args = append(args, filter.Options.Limit, filter.Options.Offset)
	}

	rows, err := db.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*Event
	for rows.Next() {
		var (
			ev        Event
			addrBytes []byte
			amountStr string
			priceStr  string
		)
		if err := rows.Scan(&ev.Seq, &ev.Time, &ev.Name, &ev.NFTID, &addrBytes, &amountStr, &priceStr, &ev.EndTime); err != nil {
			return nil, err
		}
		ev.Address = frok.BytesToAddress(addrBytes)
		amount, ok := new(big.Int).SetString(amountStr, 10)
		if !ok {
			return nil, fmt.Errorf("corrupted amount %q at seq %d", amountStr, ev.Seq)
		}
		price, ok := new(big.Int).SetString(priceStr, 10)
		if !ok {
			return nil, fmt.Errorf("corrupted price %q at seq %d", priceStr, ev.Seq)
		}
		ev.Amount = amount
		ev.Price = price
		events = append(events, &ev)
	}
	return events, rows.Err()
}
