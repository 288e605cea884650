package minio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"luxlife-studio/pkg/config"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

// TokenMetadataKey is the object metadata entry holding the download token.
const TokenMetadataKey = "download-token"

var ErrInvalidToken = errors.New("invalid download token")

type Uploaded struct {
	Path  string
	Token string
	URL   string
}

// Storage is the order asset bucket.
type Storage struct {
	client        *minio.Client
	bucket        string
	publicBaseURL string
}

func NewStorage(client *minio.Client, cfg *config.Config) *Storage {
	return &Storage{
		client:        client,
		bucket:        cfg.Minio.BucketName,
		publicBaseURL: strings.TrimRight(cfg.Minio.PublicBaseURL, "/"),
	}
}

func (s *Storage) Exists(ctx context.Context, path string) (bool, error) {
	_, err := s.client.StatObject(ctx, s.bucket, path, minio.StatObjectOptions{})
	if err == nil {
		return true, nil
	}
	if IsNotFound(err) {
		return false, nil
	}
	return false, fmt.Errorf("stat %s: %w", path, err)
}

// Upload copies the local file to path, tagging it with a fresh download
// token, and returns its token URL.
func (s *Storage) Upload(ctx context.Context, localPath, path, contentType string) (*Uploaded, error) {
	token := uuid.NewString()

	_, err := s.client.FPutObject(ctx, s.bucket, path, localPath, minio.PutObjectOptions{
		ContentType:  contentType,
		UserMetadata: map[string]string{TokenMetadataKey: token},
	})
	if err != nil {
		return nil, fmt.Errorf("upload %s: %w", path, err)
	}

	zap.L().Info("object uploaded", zap.String("path", path))
	return &Uploaded{Path: path, Token: token, URL: TokenURL(s.publicBaseURL, path, token)}, nil
}

// SignedURL returns a presigned GET URL valid for ttl.
func (s *Storage) SignedURL(ctx context.Context, path string, ttl time.Duration) (string, error) {
	u, err := s.client.PresignedGetObject(ctx, s.bucket, path, ttl, nil)
	if err != nil {
		return "", fmt.Errorf("presign %s: %w", path, err)
	}
	return u.String(), nil
}

// Open returns the object at path when token matches its download token.
func (s *Storage) Open(ctx context.Context, path, token string) (io.ReadCloser, minio.ObjectInfo, error) {
	info, err := s.client.StatObject(ctx, s.bucket, path, minio.StatObjectOptions{})
	if err != nil {
		return nil, minio.ObjectInfo{}, err
	}
	if token == "" || MetadataToken(info.UserMetadata) != token {
		return nil, minio.ObjectInfo{}, ErrInvalidToken
	}

	obj, err := s.client.GetObject(ctx, s.bucket, path, minio.GetObjectOptions{})
	if err != nil {
		return nil, minio.ObjectInfo{}, err
	}
	return obj, info, nil
}

// MetadataToken finds the download token in user metadata, whose keys come
// back canonicalized by the server.
func MetadataToken(meta map[string]string) string {
	for k, v := range meta {
		if strings.EqualFold(k, TokenMetadataKey) || strings.EqualFold(k, "X-Amz-Meta-"+TokenMetadataKey) {
			return v
		}
	}
	return ""
}

func TokenURL(base, path, token string) string {
	segments := strings.Split(strings.TrimLeft(path, "/"), "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return base + "/media/" + strings.Join(segments, "/") + "?token=" + url.QueryEscape(token)
}

func IsNotFound(err error) bool {
	return minio.ToErrorResponse(err).Code == "NoSuchKey"
}
