package database

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// FileMetadata is the queryable handle for a blob stored in S3. The
// object itself lives under S3Key; DownloadURL is a presigned link.
type FileMetadata struct {
	ID              uuid.UUID `json:"id"`
	RequestID       uuid.UUID `json:"request_id"`
	UserID          int       `json:"user_id"`
	UserDisplayName string    `json:"user_display_name"`
	FileName        string    `json:"file_name"`
	FileType        string    `json:"file_type"`
	FileSize        int64     `json:"file_size"`
	FileHash        string    `json:"file_hash"`
	S3Key           string    `json:"-"`
	DownloadURL     string    `json:"download_url"`
	CreatedAt       time.Time `json:"created_at"`
}

// CreateFileMetadata records an uploaded blob's handle.
func (s *service) CreateFileMetadata(f *FileMetadata) error {
	query := `
		INSERT INTO files (request_id, user_id, user_display_name, file_name, file_type,
			file_size, file_hash, s3_key, download_url, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())
		RETURNING id, created_at`

	err := s.db.QueryRow(query,
		f.RequestID, f.UserID, f.UserDisplayName, f.FileName, f.FileType,
		f.FileSize, f.FileHash, f.S3Key, f.DownloadURL,
	).Scan(&f.ID, &f.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create file metadata: %w", err)
	}
	return nil
}

const fileColumns = `id, request_id, user_id, user_display_name, file_name, file_type, file_size, file_hash, s3_key, download_url, created_at`

func scanFile(row interface{ Scan(...any) error }) (*FileMetadata, error) {
	f := &FileMetadata{}
	err := row.Scan(&f.ID, &f.RequestID, &f.UserID, &f.UserDisplayName, &f.FileName,
		&f.FileType, &f.FileSize, &f.FileHash, &f.S3Key, &f.DownloadURL, &f.CreatedAt)
	if err != nil {
		return nil, err
	}
	return f, nil
}

// GetFileByID retrieves a file's metadata row.
func (s *service) GetFileByID(id uuid.UUID) (*FileMetadata, error) {
	query := `SELECT ` + fileColumns + ` FROM files WHERE id = $1`
	return scanFile(s.db.QueryRow(query, id))
}

// ListFiles returns a request's files, newest first.
func (s *service) ListFiles(requestID uuid.UUID) ([]*FileMetadata, error) {
	query := `SELECT ` + fileColumns + ` FROM files WHERE request_id = $1 ORDER BY created_at DESC`

	rows, err := s.db.Query(query, requestID)
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}
	defer rows.Close()

	var files []*FileMetadata
	for rows.Next() {
		f, err := scanFile(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan file: %w", err)
		}
		files = append(files, f)
	}
	return files, rows.Err()
}

// DeleteFileMetadata removes the metadata row. Callers delete the blob
// first so a failure here cannot leave a row pointing at nothing.
func (s *service) DeleteFileMetadata(id uuid.UUID) error {
	result, err := s.db.Exec(`DELETE FROM files WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete file metadata: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("file not found")
	}
	return nil
}
