package storage

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"beatsensei/config"
	"beatsensei/logger"
)

// MaxSampleFileSize caps uploaded sample files at 50 MB.
const MaxSampleFileSize = 50 << 20

// Audio formats accepted for sample objects, keyed by extension.
var audioContentTypes = map[string]string{
	".wav":  "audio/wav",
	".mp3":  "audio/mpeg",
	".flac": "audio/flac",
	".aiff": "audio/aiff",
	".ogg":  "audio/ogg",
	".m4a":  "audio/mp4",
}

var (
	minioClient *minio.Client
	bucket      string
	publicBase  string
)

// InitMinio connects to the object store and makes sure the sample
// bucket exists.
func InitMinio(cfg *config.Config) error {
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessKey, cfg.MinioSecretKey, ""),
		Secure: cfg.MinioUseSSL,
		Region: cfg.MinioRegion,
	})
	if err != nil {
		return fmt.Errorf("failed to create minio client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	exists, err := client.BucketExists(ctx, cfg.MinioBucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket %s: %w", cfg.MinioBucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.MinioBucket, minio.MakeBucketOptions{Region: cfg.MinioRegion}); err != nil {
			return fmt.Errorf("failed to create bucket %s: %w", cfg.MinioBucket, err)
		}
		logger.Info("created sample bucket", logger.String("bucket", cfg.MinioBucket))
	}

	minioClient = client
	bucket = cfg.MinioBucket
	publicBase = cfg.PublicBaseURL
	if publicBase == "" {
		scheme := "http"
		if cfg.MinioUseSSL {
			scheme = "https"
		}
		publicBase = fmt.Sprintf("%s://%s/%s", scheme, cfg.MinioEndpoint, cfg.MinioBucket)
	}
	publicBase = strings.TrimRight(publicBase, "/")

	logger.Info("minio client initialized",
		logger.String("endpoint", cfg.MinioEndpoint),
		logger.String("bucket", cfg.MinioBucket))
	return nil
}

// GetMinioClient returns the shared client instance.
func GetMinioClient() *minio.Client {
	return minioClient
}

// PublicURL builds the externally reachable URL for a stored object.
func PublicURL(objectName string) string {
	return publicBase + "/" + strings.TrimLeft(objectName, "/")
}

// ContentTypeForObject maps an object name to its audio content type.
// Unknown extensions serve as a generic byte stream.
func ContentTypeForObject(objectName string) string {
	name := strings.ToLower(objectName)
	for ext, ct := range audioContentTypes {
		if strings.HasSuffix(name, ext) {
			return ct
		}
	}
	return "application/octet-stream"
}

// IsAllowedAudioObject reports whether the object name carries a
// recognized audio extension.
func IsAllowedAudioObject(objectName string) bool {
	name := strings.ToLower(objectName)
	for ext := range audioContentTypes {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}

// UploadSample stores a sample object and returns its public URL.
func UploadSample(ctx context.Context, objectName string, reader io.Reader, size int64) (string, error) {
	if size > MaxSampleFileSize {
		return "", fmt.Errorf("file size %d exceeds limit %d", size, MaxSampleFileSize)
	}
	if !IsAllowedAudioObject(objectName) {
		return "", fmt.Errorf("unsupported audio format: %s", objectName)
	}
	if minioClient == nil {
		return "", fmt.Errorf("minio client not initialized")
	}

	_, err := minioClient.PutObject(ctx, bucket, objectName, reader, size, minio.PutObjectOptions{
		ContentType: ContentTypeForObject(objectName),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload object %s: %w", objectName, err)
	}
	return PublicURL(objectName), nil
}

// OpenSample opens a stored object for streaming along with its size.
func OpenSample(ctx context.Context, objectName string) (io.ReadCloser, int64, error) {
	if minioClient == nil {
		return nil, 0, fmt.Errorf("minio client not initialized")
	}

	obj, err := minioClient.GetObject(ctx, bucket, objectName, minio.GetObjectOptions{})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get object %s: %w", objectName, err)
	}
	stat, err := obj.Stat()
	if err != nil {
		obj.Close()
		return nil, 0, fmt.Errorf("failed to stat object %s: %w", objectName, err)
	}
	return obj, stat.Size, nil
}
