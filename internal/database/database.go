// Package database provides SQLite database operations for the application
package database

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"playlist-downloader/pkg/models"

	_ "modernc.org/sqlite"
)

// DB wraps the SQLite database connection
type DB struct {
	conn *sql.DB
}

// New creates a new database connection and initializes the schema
func New(dbPath string) (*DB, error) {
	// Add connection parameters to help with concurrent access
	connString := dbPath
	if dbPath != ":memory:" {
		connString = dbPath + "?_busy_timeout=30000&_journal_mode=WAL&_synchronous=NORMAL"
	}

	conn, err := sql.Open("sqlite", connString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Set connection pool settings
	conn.SetMaxOpenConns(1) // SQLite doesn't handle concurrent writes well
	conn.SetMaxIdleConns(1)

	db := &DB{conn: conn}

	if err := db.initSchema(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return db, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}

// initSchema creates the database tables if they don't exist
func (db *DB) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS downloads (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		filename TEXT NOT NULL,
		artist TEXT NOT NULL DEFAULT '',
		track_name TEXT NOT NULL DEFAULT '',
		source_url TEXT NOT NULL,
		source_type TEXT NOT NULL,
		status TEXT NOT NULL,
		file_path TEXT NOT NULL DEFAULT '',
		file_size INTEGER NOT NULL DEFAULT 0,
		search_query TEXT NOT NULL DEFAULT '',
		playlist_item_id TEXT NOT NULL DEFAULT '',
		error_message TEXT NOT NULL DEFAULT '',
		created_at DATETIME NOT NULL,
		completed_at DATETIME
	);

	CREATE INDEX IF NOT EXISTS idx_downloads_status ON downloads(status);
	CREATE INDEX IF NOT EXISTS idx_downloads_source_type ON downloads(source_type);
	CREATE INDEX IF NOT EXISTS idx_downloads_created_at ON downloads(created_at);
	`

	if _, err := db.conn.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// CreateDownload inserts a new download record and sets its ID
func (db *DB) CreateDownload(download *models.Download) error {
	query := `
	INSERT INTO downloads (
		filename, artist, track_name, source_url, source_type, status,
		file_path, file_size, search_query, playlist_item_id, error_message,
		created_at, completed_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := db.conn.Exec(query,
		download.Filename, download.Artist, download.TrackName,
		download.SourceURL, download.SourceType, download.Status,
		download.FilePath, download.FileSize, download.SearchQuery,
		download.PlaylistItemID, download.ErrorMessage,
		download.CreatedAt, download.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create download: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert ID: %w", err)
	}

	download.ID = id

	return nil
}

// GetDownload retrieves a download by ID
func (db *DB) GetDownload(id int64) (*models.Download, error) {
	query := `
	SELECT id, filename, artist, track_name, source_url, source_type, status,
		   file_path, file_size, search_query, playlist_item_id, error_message,
		   created_at, completed_at
	FROM downloads
	WHERE id = ?
	`

	var download models.Download
	err := db.conn.QueryRow(query, id).Scan(
		&download.ID, &download.Filename, &download.Artist, &download.TrackName,
		&download.SourceURL, &download.SourceType, &download.Status,
		&download.FilePath, &download.FileSize, &download.SearchQuery,
		&download.PlaylistItemID, &download.ErrorMessage,
		&download.CreatedAt, &download.CompletedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("download not found: %d", id)
		}
		return nil, fmt.Errorf("failed to get download: %w", err)
	}

	return &download, nil
}

// UpdateDownload updates an existing download record
func (db *DB) UpdateDownload(download *models.Download) error {
	query := `
	UPDATE downloads SET
		filename = ?, artist = ?, track_name = ?, source_url = ?, source_type = ?,
		status = ?, file_path = ?, file_size = ?, search_query = ?,
		playlist_item_id = ?, error_message = ?, completed_at = ?
	WHERE id = ?
	`

	_, err := db.conn.Exec(query,
		download.Filename, download.Artist, download.TrackName,
		download.SourceURL, download.SourceType, download.Status,
		download.FilePath, download.FileSize, download.SearchQuery,
		download.PlaylistItemID, download.ErrorMessage,
		download.CompletedAt, download.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update download: %w", err)
	}

	return nil
}

// QueryDownloads returns one page of downloads matching the filter, newest
// first, along with the total number of matches before pagination
func (db *DB) QueryDownloads(filter models.DownloadFilter) ([]*models.Download, int, error) {
	where := "WHERE 1=1"
	args := []any{}

	if filter.Status != "" {
		where += " AND status = ?"
		args = append(args, filter.Status)
	}

	if filter.Source != "" {
		where += " AND source_type = ?"
		args = append(args, filter.Source)
	}

	if filter.Search != "" {
		pattern := "%" + strings.ToLower(filter.Search) + "%"
		where += " AND (LOWER(filename) LIKE ? OR LOWER(artist) LIKE ? OR LOWER(track_name) LIKE ? OR LOWER(source_url) LIKE ?)"
		args = append(args, pattern, pattern, pattern, pattern)
	}

	var total int
	countQuery := "SELECT COUNT(*) FROM downloads " + where
	if err := db.conn.QueryRow(countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count downloads: %w", err)
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}

	limit := filter.Limit
	if limit < 1 {
		limit = 20
	}

	query := `
	SELECT id, filename, artist, track_name, source_url, source_type, status,
		   file_path, file_size, search_query, playlist_item_id, error_message,
		   created_at, completed_at
	FROM downloads
	` + where + `
	ORDER BY created_at DESC, id DESC
	LIMIT ? OFFSET ?
	`
	args = append(args, limit, (page-1)*limit)

	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query downloads: %w", err)
	}
	defer rows.Close()

	var downloads []*models.Download
	for rows.Next() {
		var download models.Download
		err := rows.Scan(
			&download.ID, &download.Filename, &download.Artist, &download.TrackName,
			&download.SourceURL, &download.SourceType, &download.Status,
			&download.FilePath, &download.FileSize, &download.SearchQuery,
			&download.PlaylistItemID, &download.ErrorMessage,
			&download.CreatedAt, &download.CompletedAt,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan download: %w", err)
		}
		downloads = append(downloads, &download)
	}

	return downloads, total, nil
}

// GetDownloadStats computes aggregate counters across all download records
func (db *DB) GetDownloadStats() (*models.DownloadStats, error) {
	stats := &models.DownloadStats{BySource: make(map[string]int64)}

	query := `
	SELECT
		COUNT(*),
		COALESCE(SUM(CASE WHEN status = 'completed' THEN 1 ELSE 0 END), 0),
		COALESCE(SUM(CASE WHEN status = 'failed' THEN 1 ELSE 0 END), 0),
		COALESCE(SUM(CASE WHEN status = 'processing' THEN 1 ELSE 0 END), 0),
		COALESCE(SUM(CASE WHEN status = 'completed' THEN file_size ELSE 0 END), 0)
	FROM downloads
	`

	err := db.conn.QueryRow(query).Scan(
		&stats.Total, &stats.Completed, &stats.Failed, &stats.Processing, &stats.TotalSize,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get download stats: %w", err)
	}

	rows, err := db.conn.Query(`SELECT source_type, COUNT(*) FROM downloads GROUP BY source_type`)
	if err != nil {
		return nil, fmt.Errorf("failed to get source breakdown: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var source string
		var count int64
		if err := rows.Scan(&source, &count); err != nil {
			return nil, fmt.Errorf("failed to scan source breakdown: %w", err)
		}
		stats.BySource[source] = count
	}

	if stats.Total > 0 {
		stats.SuccessRate = float64(stats.Completed) / float64(stats.Total) * 100
	}

	return stats, nil
}

// MarkStaleProcessing fails any records left in processing state by a previous
// run and returns the number of records updated
func (db *DB) MarkStaleProcessing(reason string) (int64, error) {
	query := `
	UPDATE downloads
	SET status = ?, error_message = ?, completed_at = ?
	WHERE status = ?
	`

	result, err := db.conn.Exec(query, models.StatusFailed, reason, time.Now(), models.StatusProcessing)
	if err != nil {
		return 0, fmt.Errorf("failed to mark stale downloads: %w", err)
	}

	count, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get affected rows: %w", err)
	}

	return count, nil
}

// DeleteOldDownloads removes terminal downloads created before the retention
// cutoff and returns the number of records removed
func (db *DB) DeleteOldDownloads(olderThan time.Duration) (int64, error) {
	cutoff := time.Now().Add(-olderThan)

	query := `DELETE FROM downloads WHERE created_at < ? AND status IN (?, ?)`

	result, err := db.conn.Exec(query, cutoff, models.StatusCompleted, models.StatusFailed)
	if err != nil {
		return 0, fmt.Errorf("failed to delete old downloads: %w", err)
	}

	count, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get affected rows: %w", err)
	}

	return count, nil
}
