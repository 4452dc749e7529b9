package store

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mmcdole/lorascan/internal/domain"
	bolt "go.etcd.io/bbolt"
)

// Bucket names
var (
	bucketResults = []byte("results")
)

// historyNamespace scopes result keys so they never collide with other UUIDv5 users
var historyNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("lorascan:history"))

// resultRecord is the on-disk form of a scan result
type resultRecord struct {
	BackendID  string    `json:"backend_id"`
	Timestamp  time.Time `json:"timestamp"`
	ModelID    int64     `json:"model_id"`
	ModelName  string    `json:"model_name"`
	Author     string    `json:"author"`
	FoundItems int       `json:"found_items"`
	Status     string    `json:"status"`
	SeenAt     time.Time `json:"seen_at"`
}

func toRecord(r domain.ScanResult, seen time.Time) resultRecord {
	return resultRecord{
		BackendID:  r.ID,
		Timestamp:  r.Timestamp,
		ModelID:    r.ModelID,
		ModelName:  r.ModelName,
		Author:     r.Author,
		FoundItems: r.FoundItems,
		Status:     string(r.Status),
		SeenAt:     seen,
	}
}

func (rec resultRecord) toDomain() domain.ScanResult {
	return domain.ScanResult{
		ID:         rec.BackendID,
		Timestamp:  rec.Timestamp,
		ModelID:    rec.ModelID,
		ModelName:  rec.ModelName,
		Author:     rec.Author,
		FoundItems: rec.FoundItems,
		Status:     domain.ResultStatus(rec.Status),
	}
}

// HistoryKey returns the stable key of a result. The backend renumbers its
// IDs after a restart, so identity is (model, timestamp) instead.
func HistoryKey(r domain.ScanResult) string {
	name := strconv.FormatInt(r.ModelID, 10) + "@" + r.Timestamp.UTC().Format(time.RFC3339Nano)
	return uuid.NewSHA1(historyNamespace, []byte(name)).String()
}

// HistoryStore implements domain.HistoryStore using BoltDB.
type HistoryStore struct {
	db *bolt.DB
	mu sync.RWMutex // Protects memory cache

	// Every record by key; filled on open and kept in sync with writes
	cache map[string]resultRecord
	now   func() time.Time
}

// NewHistoryStore opens the history database for one backend.
// An empty baseCacheDir keeps history in memory only.
func NewHistoryStore(baseCacheDir, serverURL string) (*HistoryStore, error) {
	s := &HistoryStore{cache: make(map[string]resultRecord), now: time.Now}
	if baseCacheDir == "" {
		return s, nil
	}

	dir := baseCacheDir
	if serverURL != "" {
		dir = filepath.Join(baseCacheDir, hashServerURL(serverURL))
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	dbPath := filepath.Join(dir, "history.db")
	db, err := bolt.Open(dbPath, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketResults)
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	s.db = db
	if err := s.load(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func hashServerURL(serverURL string) string {
	normalized := strings.TrimRight(strings.ToLower(serverURL), "/")
	hash := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(hash[:6])
}

// load warms the memory cache from disk; undecodable entries are skipped
func (s *HistoryStore) load() error {
	return s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketResults)
		return b.ForEach(func(k, v []byte) error {
			var rec resultRecord
			if json.Unmarshal(v, &rec) != nil {
				return nil
			}
			s.cache[string(k)] = rec
			return nil
		})
	})
}

func (s *HistoryStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveResults records results not seen before
func (s *HistoryStore) SaveResults(results []domain.ScanResult) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fresh := make(map[string]resultRecord)
	seen := s.now()
	for _, r := range results {
		key := HistoryKey(r)
		if _, ok := s.cache[key]; ok {
			continue
		}
		if _, ok := fresh[key]; ok {
			continue
		}
		fresh[key] = toRecord(r, seen)
	}
	if len(fresh) == 0 {
		return 0, nil
	}

	if s.db != nil {
		err := s.db.Update(func(tx *bolt.Tx) error {
			b := tx.Bucket(bucketResults)
			for key, rec := range fresh {
				data, err := json.Marshal(rec)
				if err != nil {
					return err
				}
				if err := b.Put([]byte(key), data); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return 0, fmt.Errorf("failed to save history: %w", err)
		}
	}

	for key, rec := range fresh {
		s.cache[key] = rec
	}
	return len(fresh), nil
}

// History returns up to limit results, newest first
func (s *HistoryStore) History(limit int) ([]domain.ScanResult, error) {
	s.mu.RLock()
	records := make([]resultRecord, 0, len(s.cache))
	for _, rec := range s.cache {
		records = append(records, rec)
	}
	s.mu.RUnlock()

	sort.Slice(records, func(i, j int) bool {
		if !records[i].Timestamp.Equal(records[j].Timestamp) {
			return records[i].Timestamp.After(records[j].Timestamp)
		}
		return records[i].ModelID > records[j].ModelID
	})

	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}

	results := make([]domain.ScanResult, len(records))
	for i, rec := range records {
		results[i] = rec.toDomain()
	}
	return results, nil
}

// Clear wipes the local history
func (s *HistoryStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db != nil {
		err := s.db.Update(func(tx *bolt.Tx) error {
			if err := tx.DeleteBucket(bucketResults); err != nil && err != bolt.ErrBucketNotFound {
				return err
			}
			_, err := tx.CreateBucket(bucketResults)
			return err
		})
		if err != nil {
			return fmt.Errorf("failed to clear history: %w", err)
		}
	}

	s.cache = make(map[string]resultRecord)
	return nil
}
