package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/fioncat/txtcrawl/types"
	bolt "go.etcd.io/bbolt"
)

var ErrReportNotFound = errors.New("could not find the crawl report")

const boltReportBucketName = "report"

type boltReportHistory struct {
	db *bolt.DB

	bucket []byte
}

type ReportHistory interface {
	types.ReportHistory
	Close() error
}

func OpenBolt(cfg *types.Config) (ReportHistory, error) {
	path := filepath.Join(cfg.BaseDir, "history.db")
	db, err := bolt.Open(path, 0644, &bolt.Options{
		Timeout: cfg.OpenBoltTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("open boltdb: %w", err)
	}

	bucket := []byte(boltReportBucketName)
	err = ensureBoltBucket(db, bucket)
	if err != nil {
		db.Close()
		return nil, err
	}

	return &boltReportHistory{
		db:     db,
		bucket: bucket,
	}, nil
}

func ensureBoltBucket(db *bolt.DB, bucket []byte) error {
	err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucket)
		return err
	})
	if err != nil {
		return fmt.Errorf("ensure bolt bucket %q: %v", string(bucket), err)
	}
	return nil
}

func (b *boltReportHistory) Put(report *types.CrawlReport) error {
	if report.ID == "" {
		return errors.New("crawl report id could not be empty")
	}
	key := []byte(report.ID)
	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("encode crawl report to json: %w", err)
	}

	err = b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(b.bucket)
		return bucket.Put(key, data)
	})
	if err != nil {
		return fmt.Errorf("boltdb put: %w", err)
	}

	return nil
}

func (b *boltReportHistory) Get(id string) (*types.CrawlReport, error) {
	key := []byte(id)

	var data []byte
	err := b.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(b.bucket)
		// The value is only valid inside the transaction.
		if value := bucket.Get(key); value != nil {
			data = make([]byte, len(value))
			copy(data, value)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("boltdb get: %w", err)
	}

	if len(data) == 0 {
		return nil, ErrReportNotFound
	}

	return b.decodeData(data)
}

func (b *boltReportHistory) List() ([]*types.CrawlReport, error) {
	var reports []*types.CrawlReport
	err := b.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(b.bucket)
		cursor := bucket.Cursor()
		for key, data := cursor.First(); key != nil; key, data = cursor.Next() {
			report, err := b.decodeData(data)
			if err != nil {
				return fmt.Errorf("decode crawl report %q: %w", string(key), err)
			}
			reports = append(reports, report)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(reports, func(i, j int) bool {
		return reports[i].StartTime < reports[j].StartTime
	})
	return reports, nil
}

func (b *boltReportHistory) Remove(id string) error {
	key := []byte(id)
	err := b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(b.bucket)
		if bucket.Get(key) == nil {
			return ErrReportNotFound
		}
		return bucket.Delete(key)
	})
	if err != nil {
		return fmt.Errorf("delete boltdb: %w", err)
	}

	return nil
}

func (b *boltReportHistory) Close() error {
	return b.db.Close()
}

func (b *boltReportHistory) decodeData(data []byte) (*types.CrawlReport, error) {
	var report types.CrawlReport
	err := json.Unmarshal(data, &report)
	if err != nil {
		return nil, fmt.Errorf("decode crawl report json in history: %w", err)
	}

	if report.ID == "" {
		return nil, errors.New("crawl report in history has no id")
	}

	return &report, nil
}
