package storage

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"
)

// S3Service stores request file blobs. MinIO is supported through the
// AWS_ENDPOINT_URL override with path-style addressing.
type S3Service struct {
	client     *s3.Client
	uploader   *manager.Uploader
	downloader *manager.Downloader
	bucket     string
	region     string
}

type UploadResult struct {
	S3Key       string
	S3Bucket    string
	FileHash    string // SHA-256 of the uploaded content
	FileSize    int64
	MimeType    string
	DownloadURL string
	UploadedAt  time.Time
}

// DownloadURLTTL is how long presigned download links stay valid.
const DownloadURLTTL = 24 * time.Hour

// NewS3Service creates a new S3 service instance with MinIO support
func NewS3Service() (*S3Service, error) {
	bucket := os.Getenv("AWS_S3_BUCKET")
	if bucket == "" {
		return nil, fmt.Errorf("AWS_S3_BUCKET environment variable is required")
	}

	region := os.Getenv("AWS_REGION")
	if region == "" {
		region = "us-east-1" // default region
	}

	cfg, err := config.LoadDefaultConfig(context.TODO(),
		config.WithRegion(region),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		endpointURL := os.Getenv("AWS_ENDPOINT_URL")
		if endpointURL != "" {
			o.BaseEndpoint = aws.String(endpointURL)
			o.UsePathStyle = true // MinIO requires path-style addressing
		}
	})

	return &S3Service{
		client:     client,
		uploader:   manager.NewUploader(client),
		downloader: manager.NewDownloader(client),
		bucket:     bucket,
		region:     region,
	}, nil
}

// UploadRequestFile stores one uploaded file under the request's prefix
// and returns its handle, including a presigned download URL.
func (s *S3Service) UploadRequestFile(ctx context.Context, file multipart.File, header *multipart.FileHeader, requestID uuid.UUID, userID int) (*UploadResult, error) {
	fileData, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	if seeker, ok := file.(io.Seeker); ok {
		seeker.Seek(0, io.SeekStart)
	}

	hash := sha256.Sum256(fileData)
	fileHash := hex.EncodeToString(hash[:])

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	fileID := uuid.New()
	s3Key := fmt.Sprintf("requests/%s/%s-%s", requestID.String(), fileID.String(), header.Filename)

	uploadInput := &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s3Key),
		Body:        bytes.NewReader(fileData),
		ContentType: aws.String(mimeType),
		Metadata: map[string]string{
			"original-filename": header.Filename,
			"user-id":           fmt.Sprintf("%d", userID),
			"request-id":        requestID.String(),
			"content-hash":      fileHash,
		},
		ServerSideEncryption: types.ServerSideEncryptionAes256,
	}

	_, err = s.uploader.Upload(ctx, uploadInput)
	if err != nil {
		return nil, fmt.Errorf("failed to upload to S3: %w", err)
	}

	downloadURL, err := s.GeneratePresignedURL(ctx, s3Key, DownloadURLTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to presign download URL: %w", err)
	}

	return &UploadResult{
		S3Key:       s3Key,
		S3Bucket:    s.bucket,
		FileHash:    fileHash,
		FileSize:    int64(len(fileData)),
		MimeType:    mimeType,
		DownloadURL: downloadURL,
		UploadedAt:  time.Now().UTC(),
	}, nil
}

// DownloadFile fetches a blob's content.
func (s *S3Service) DownloadFile(ctx context.Context, s3Key string) ([]byte, error) {
	buf := manager.NewWriteAtBuffer([]byte{})

	_, err := s.downloader.Download(ctx, buf, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s3Key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to download from S3: %w", err)
	}

	return buf.Bytes(), nil
}

// GeneratePresignedURL generates a presigned URL for temporary access.
func (s *S3Service) GeneratePresignedURL(ctx context.Context, s3Key string, expiration time.Duration) (string, error) {
	presignClient := s3.NewPresignClient(s.client)

	request, err := presignClient.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s3Key),
	}, func(opts *s3.PresignOptions) {
		opts.Expires = expiration
	})

	if err != nil {
		return "", fmt.Errorf("failed to generate presigned URL: %w", err)
	}

	return request.URL, nil
}

// DeleteFile deletes a blob. File deletion removes the blob before the
// metadata row so a failure cannot strand metadata pointing at nothing.
func (s *S3Service) DeleteFile(ctx context.Context, s3Key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s3Key),
	})

	if err != nil {
		return fmt.Errorf("failed to delete file from S3: %w", err)
	}

	return nil
}

// CheckFileExists checks if a blob exists.
func (s *S3Service) CheckFileExists(ctx context.Context, s3Key string) (bool, error) {
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s3Key),
	})

	if err != nil {
		var notFound *types.NotFound
		if errors.As(err, &notFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check file existence: %w", err)
	}

	return true, nil
}

// ValidateFileIntegrity validates content against its stored hash.
func (s *S3Service) ValidateFileIntegrity(data []byte, expectedHash string) error {
	hash := sha256.Sum256(data)
	actualHash := hex.EncodeToString(hash[:])

	if actualHash != expectedHash {
		return fmt.Errorf("file integrity check failed: expected %s, got %s", expectedHash, actualHash)
	}

	return nil
}
