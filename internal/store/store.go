// Package store 用 SQLite 记录转换历史，供 UI 展示最近的转换。
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/iabetor/tingwen/internal/logger"
	_ "modernc.org/sqlite"
)

// Store 转换历史存储。
type Store struct {
	db   *sql.DB
	path string
}

// Conversion 一次转换的记录。
type Conversion struct {
	ID         int64
	SourceType string // text、pdf 或 url
	SourceName string
	Voice      string
	Rate       float64
	Optimized  bool
	Chunks     int
	Characters int
	SessionDir string // 相对输出目录的会话子目录名
	CreatedAt  time.Time
}

// Open 打开或创建历史数据库。
// dbPath 为空则使用默认路径 ~/.tingwen/tingwen.db。
func Open(dbPath string) (*Store, error) {
	if dbPath == "" {
		home, _ := os.UserHomeDir()
		if home != "" {
			dbPath = filepath.Join(home, ".tingwen", "tingwen.db")
		} else {
			dbPath = "./tingwen.db"
		}
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("创建数据库目录失败: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("打开数据库失败: %w", err)
	}

	// WAL 模式提升并发读性能
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("设置 WAL 模式失败: %w", err)
	}

	s := &Store{db: db, path: dbPath}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Infof("[store] 历史数据库已打开: %s", dbPath)
	return s, nil
}

// migrate 创建表结构。
func (s *Store) migrate() error {
	const schema = `
CREATE TABLE IF NOT EXISTS conversions (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	source_type TEXT NOT NULL,
	source_name TEXT NOT NULL DEFAULT '',
	voice       TEXT NOT NULL,
	rate        REAL NOT NULL DEFAULT 1.0,
	optimized   INTEGER NOT NULL DEFAULT 0,
	chunks      INTEGER NOT NULL DEFAULT 0,
	characters  INTEGER NOT NULL DEFAULT 0,
	session_dir TEXT NOT NULL,
	created_at  TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_conversions_created_at ON conversions(created_at);`

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("初始化表结构失败: %w", err)
	}
	return nil
}

// Add 写入一条转换记录并回填 ID 和创建时间。
func (s *Store) Add(c *Conversion) error {
	c.CreatedAt = time.Now()
	res, err := s.db.Exec(
		`INSERT INTO conversions (source_type, source_name, voice, rate, optimized, chunks, characters, session_dir, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.SourceType, c.SourceName, c.Voice, c.Rate, boolToInt(c.Optimized),
		c.Chunks, c.Characters, c.SessionDir, c.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("写入转换记录失败: %w", err)
	}
	c.ID, _ = res.LastInsertId()
	return nil
}

// Recent 返回最近的 limit 条转换记录，按时间倒序。
func (s *Store) Recent(limit int) ([]Conversion, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(
		`SELECT id, source_type, source_name, voice, rate, optimized, chunks, characters, session_dir, created_at
		 FROM conversions ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("查询转换记录失败: %w", err)
	}
	defer rows.Close()

	var out []Conversion
	for rows.Next() {
		var c Conversion
		var optimized int
		var createdAt string
		if err := rows.Scan(&c.ID, &c.SourceType, &c.SourceName, &c.Voice, &c.Rate,
			&optimized, &c.Chunks, &c.Characters, &c.SessionDir, &createdAt); err != nil {
			return nil, fmt.Errorf("读取转换记录失败: %w", err)
		}
		c.Optimized = optimized != 0
		c.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		out = append(out, c)
	}
	return out, rows.Err()
}

// Path 返回数据库文件路径。
func (s *Store) Path() string {
	return s.path
}

// Close 关闭数据库连接。
func (s *Store) Close() error {
	return s.db.Close()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
