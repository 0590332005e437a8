package storage

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
)

// ArchiveConfig holds the S3-compatible endpoint used for clip archiving.
// Cloudflare R2 fills Endpoint from AccountID when only the latter is set.
type ArchiveConfig struct {
	AccessKey string
	SecretKey string
	AccountID string
	Bucket    string
	Endpoint  string
	Region    string
	BaseURL   string // public URL prefix, falls back to endpoint/bucket
	Prefix    string // key prefix inside the bucket, e.g. "dashcam"
}

const archiveUploadAttempts = 3

// Archiver uploads merged clips to the configured bucket.
type Archiver struct {
	config   ArchiveConfig
	uploader *s3manager.Uploader
}

// NewArchiver creates an Archiver for the given endpoint.
func NewArchiver(config ArchiveConfig) (*Archiver, error) {
	if config.Region == "" {
		config.Region = "auto"
	}
	if config.Endpoint == "" && config.AccountID != "" {
		config.Endpoint = fmt.Sprintf("https://%s.r2.cloudflarestorage.com", config.AccountID)
	}

	sess, err := session.NewSession(&aws.Config{
		Credentials:      credentials.NewStaticCredentials(config.AccessKey, config.SecretKey, ""),
		Endpoint:         aws.String(config.Endpoint),
		Region:           aws.String(config.Region),
		S3ForcePathStyle: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}

	// Sequential 10MB parts: one HTTP connection at a time keeps uplink
	// bandwidth predictable on home connections.
	uploader := s3manager.NewUploader(sess, func(u *s3manager.Uploader) {
		u.PartSize = 10 * 1024 * 1024
		u.Concurrency = 1
	})

	return &Archiver{config: config, uploader: uploader}, nil
}

// UploadClip uploads localPath under the configured prefix and returns the
// public URL. Transient failures are retried with exponential backoff.
func (a *Archiver) UploadClip(localPath string) (string, error) {
	file, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", localPath, err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return "", fmt.Errorf("failed to stat %s: %w", localPath, err)
	}

	key := filepath.Base(localPath)
	if a.config.Prefix != "" {
		key = strings.TrimSuffix(a.config.Prefix, "/") + "/" + key
	}

	log.Printf("Uploading clip (%.2f MB): %s", float64(info.Size())/1024/1024, localPath)

	var lastErr error
	for attempt := 1; attempt <= archiveUploadAttempts; attempt++ {
		if _, err := file.Seek(0, 0); err != nil {
			return "", fmt.Errorf("failed to rewind %s: %w", localPath, err)
		}

		_, lastErr = a.uploader.Upload(&s3manager.UploadInput{
			Bucket:      aws.String(a.config.Bucket),
			Key:         aws.String(key),
			Body:        file,
			ContentType: aws.String(contentTypeFor(localPath)),
			Metadata: map[string]*string{
				"OriginalFileName": aws.String(filepath.Base(localPath)),
				"UploadedAt":       aws.String(time.Now().Format(time.RFC3339)),
				"FileSize":         aws.String(fmt.Sprintf("%d", info.Size())),
			},
		})
		if lastErr == nil {
			break
		}

		log.Printf("Upload attempt %d/%d failed for %s: %v", attempt, archiveUploadAttempts, localPath, lastErr)
		time.Sleep(time.Duration(1<<uint(attempt)) * time.Second)
	}
	if lastErr != nil {
		return "", fmt.Errorf("failed to upload %s after %d attempts: %w", localPath, archiveUploadAttempts, lastErr)
	}

	publicURL := fmt.Sprintf("%s/%s", a.baseURL(), key)
	log.Printf("Clip archived: %s", publicURL)
	return publicURL, nil
}

func (a *Archiver) baseURL() string {
	if a.config.BaseURL != "" {
		return a.config.BaseURL
	}
	return fmt.Sprintf("%s/%s", a.config.Endpoint, a.config.Bucket)
}

func contentTypeFor(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp4":
		return "video/mp4"
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	default:
		return "application/octet-stream"
	}
}
