package monitor

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DayRow is the persisted form of one DayRecord. Headline numbers get real
// columns so external tools can query them; bucket stats and the open
// correlation state travel as JSON text columns. New nullable columns keep
// old rows forward-readable across upgrades.
type DayRow struct {
	Date           string `gorm:"primaryKey;size:10"`
	FramesCreated  int
	Transactions   int
	LandingRate    float64
	Earnings       float64
	EarningsSource string `gorm:"size:16"`
	TransactionSum float64
	BalanceDelta   *float64
	Balance        *float64
	CreationJSON   string `gorm:"type:text"`
	SubmissionJSON string `gorm:"type:text"`
	CPUJSON        string `gorm:"type:text"`
	// StateJSON holds the in-progress day's correlation state so later runs
	// merge new samples instead of recomputing from scratch. Empty once the
	// day is closed.
	StateJSON string `gorm:"type:text"`
	UpdatedAt time.Time
}

// Watermark is a single-row table carrying lastProcessedTimestamp.
type Watermark struct {
	ID                uint `gorm:"primaryKey"`
	LastProcessedUnix int64
	UpdatedAt         time.Time
}

type Store struct {
	db   *gorm.DB
	path string
	// Reinitialized reports that the previous database was unreadable and was
	// moved aside: historical aggregates before this run are gone.
	Reinitialized bool
}

// OpenStore opens (or creates) the checkpoint database. A corrupt or
// unreadable database is moved aside and replaced with a fresh empty one;
// corruption is never fatal, only the loss of history it implies.
func OpenStore(path string) (*Store, error) {
	db, err := openAndMigrate(path)
	if err == nil {
		return &Store{db: db, path: path}, nil
	}

	aside := fmt.Sprintf("%s.corrupt-%d", path, time.Now().UnixNano())
	if mvErr := os.Rename(path, aside); mvErr != nil {
		return nil, fmt.Errorf("open checkpoint db %s: %w", path, err)
	}
	log.Printf("checkpoint db unreadable, moved aside to %s: %v", aside, err)
	db, err = openAndMigrate(path)
	if err != nil {
		return nil, fmt.Errorf("reinitialize checkpoint db %s: %w", path, err)
	}
	return &Store{db: db, path: path, Reinitialized: true}, nil
}

func openAndMigrate(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&DayRow{}, &Watermark{}); err != nil {
		closeDB(db)
		return nil, err
	}
	return db, nil
}

func closeDB(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	err = sqlDB.Close()
	s.db = nil
	return err
}

// Load materializes the full checkpoint. Unreadable rows degrade to an empty
// checkpoint rather than failing the load; the run proceeds and re-derives
// the current day.
func (s *Store) Load() (*Checkpoint, error) {
	cp := NewCheckpoint()

	var wm Watermark
	if err := s.db.First(&wm).Error; err == nil {
		if wm.LastProcessedUnix > 0 {
			cp.LastProcessed = time.Unix(0, wm.LastProcessedUnix).UTC()
		}
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Printf("checkpoint watermark unreadable, starting empty: %v", err)
		return NewCheckpoint(), nil
	}

	var rows []DayRow
	if err := s.db.Find(&rows).Error; err != nil {
		log.Printf("checkpoint day rows unreadable, starting empty: %v", err)
		return NewCheckpoint(), nil
	}
	for _, row := range rows {
		cp.Days[row.Date] = rowToRecord(row)
		if row.StateJSON != "" {
			st := new(DayState)
			if err := json.Unmarshal([]byte(row.StateJSON), st); err != nil {
				log.Printf("checkpoint state for %s unreadable, re-deriving: %v", row.Date, err)
				continue
			}
			cp.States[row.Date] = st
		}
	}
	return cp, nil
}

// Save persists the checkpoint in one transaction. Past-day rows that already
// exist are left untouched unless force, and the watermark row never moves
// backward, so even a confused caller cannot rewrite history. An interrupted
// save leaves the previously committed state intact.
func (s *Store) Save(cp *Checkpoint, today string, force bool) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var wm Watermark
		err := tx.First(&wm).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			wm = Watermark{ID: 1}
		case err != nil:
			return err
		}
		if ts := cp.LastProcessed.UnixNano(); !cp.LastProcessed.IsZero() && ts > wm.LastProcessedUnix {
			wm.LastProcessedUnix = ts
			wm.UpdatedAt = time.Now().UTC()
			if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&wm).Error; err != nil {
				return err
			}
		}

		for date, rec := range cp.Days {
			if date < today && !force {
				var n int64
				if err := tx.Model(&DayRow{}).Where("date = ?", date).Count(&n).Error; err != nil {
					return err
				}
				if n > 0 {
					continue
				}
			}
			row, err := recordToRow(rec, cp.States[date])
			if err != nil {
				return err
			}
			if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&row).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// Prune deletes day rows strictly older than the horizon date.
func (s *Store) Prune(before string) error {
	return s.db.Where("date < ?", before).Delete(&DayRow{}).Error
}

func recordToRow(rec DayRecord, state *DayState) (DayRow, error) {
	row := DayRow{
		Date:           rec.Date,
		FramesCreated:  rec.FramesCreated,
		Transactions:   rec.Transactions,
		LandingRate:    rec.LandingRate,
		Earnings:       rec.Earnings,
		EarningsSource: rec.EarningsSource,
		TransactionSum: rec.TransactionSum,
		BalanceDelta:   rec.BalanceDelta,
		Balance:        rec.Balance,
		UpdatedAt:      time.Now().UTC(),
	}
	var err error
	if row.CreationJSON, err = marshalStats(rec.Creation); err != nil {
		return DayRow{}, err
	}
	if row.SubmissionJSON, err = marshalStats(rec.Submission); err != nil {
		return DayRow{}, err
	}
	if row.CPUJSON, err = marshalStats(rec.CPU); err != nil {
		return DayRow{}, err
	}
	if state != nil {
		b, err := json.Marshal(state)
		if err != nil {
			return DayRow{}, err
		}
		row.StateJSON = string(b)
	}
	return row, nil
}

func rowToRecord(row DayRow) DayRecord {
	rec := DayRecord{
		Date:           row.Date,
		FramesCreated:  row.FramesCreated,
		Transactions:   row.Transactions,
		LandingRate:    row.LandingRate,
		Earnings:       row.Earnings,
		EarningsSource: row.EarningsSource,
		TransactionSum: row.TransactionSum,
		BalanceDelta:   row.BalanceDelta,
		Balance:        row.Balance,
	}
	rec.Creation = unmarshalStats(row.CreationJSON)
	rec.Submission = unmarshalStats(row.SubmissionJSON)
	rec.CPU = unmarshalStats(row.CPUJSON)
	return rec
}

func marshalStats(st BucketStats) (string, error) {
	b, err := json.Marshal(st)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func unmarshalStats(doc string) BucketStats {
	var st BucketStats
	if doc == "" {
		return st
	}
	if err := json.Unmarshal([]byte(doc), &st); err != nil {
		return BucketStats{}
	}
	return st
}
