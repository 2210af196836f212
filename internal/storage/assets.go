package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"eventdesk/internal/utils"
)

const maxAssetBytes = 5 << 20

// ObjectAPI is the part of the S3 client used for branding assets.
type ObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// AssetStore uploads branding assets picked on the email template step.
type AssetStore struct {
	client ObjectAPI
	bucket string
}

func NewAssetStore(client ObjectAPI, bucket string) *AssetStore {
	return &AssetStore{client: client, bucket: bucket}
}

// UploadFile stores the file under branding/<userID>/ and returns its key.
func (s *AssetStore) UploadFile(ctx context.Context, userID int64, filename string, file io.Reader, contentType string) (string, error) {
	data, err := io.ReadAll(io.LimitReader(file, maxAssetBytes+1))
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}
	if len(data) > maxAssetBytes {
		return "", fmt.Errorf("file exceeds %d bytes", maxAssetBytes)
	}

	key := AssetKey(userID, filename)
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload file: %w", err)
	}

	return key, nil
}

func (s *AssetStore) DeleteFile(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

func (s *AssetStore) PublicURL(key string) string {
	return fmt.Sprintf("https://%s.s3.amazonaws.com/%s", s.bucket, key)
}

// AssetKey builds a collision free key that keeps the base of the original
// filename.
func AssetKey(userID int64, filename string) string {
	base := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			return r
		}
		return '_'
	}, base)
	if base == "" || base == "." || base == "/" {
		base = "asset"
	}
	return fmt.Sprintf("branding/%d/%s-%s", userID, utils.ShortID(12), base)
}
