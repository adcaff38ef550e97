package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	domain "github.com/bryanwahyu/agentcy/internal/domain/tactical"
)

type Store struct {
	client     *minio.Client
	bucketName string
	region     string
}

// New buat koneksi MinIO
func New(ctx context.Context, endpoint, region, bucket, accessKey, secretKey string, useSSL bool) (*Store, error) {
	cli, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
		Region: region,
	})
	if err != nil {
		return nil, err
	}

	// pastikan bucket ada
	exists, err := cli.BucketExists(ctx, bucket)
	if err != nil {
		return nil, err
	}
	if !exists {
		if err := cli.MakeBucket(ctx, bucket, minio.MakeBucketOptions{Region: region}); err != nil {
			return nil, err
		}
	}

	return &Store{client: cli, bucketName: bucket, region: region}, nil
}

// ObjectKey is "<category>/<id>.md", category lower-cased.
func ObjectKey(rec domain.Record) string {
	return fmt.Sprintf("%s/%s.md", strings.ToLower(string(rec.Category())), rec.Meta().ID)
}

// Briefing renders the markdown document stored for a record.
func Briefing(rec domain.Record) []byte {
	h := rec.Meta()
	var b bytes.Buffer
	fmt.Fprintf(&b, "# %s\n\n", h.ID)
	fmt.Fprintf(&b, "- Classification: %s\n", h.Classification)
	fmt.Fprintf(&b, "- Status: %s\n", h.Status)
	fmt.Fprintf(&b, "- Created: %s\n\n", h.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"))
	fmt.Fprintf(&b, "## Request\n\n%s\n\n", rec.Subject())
	fmt.Fprintf(&b, "## Analysis\n\n%s\n", h.AIAnalysis)
	return b.Bytes()
}

// Archive implementasi BriefingArchive
func (s *Store) Archive(ctx context.Context, rec domain.Record) (string, error) {
	key := ObjectKey(rec)
	body := Briefing(rec)
	_, err := s.client.PutObject(ctx, s.bucketName, key, bytes.NewReader(body), int64(len(body)), minio.PutObjectOptions{
		ContentType: "text/markdown; charset=utf-8",
	})
	if err != nil {
		return "", err
	}

	// URL publik (jika bucket public), kalau private harus generate presigned URL
	url := fmt.Sprintf("%s/%s/%s", s.client.EndpointURL().String(), s.bucketName, key)
	return url, nil
}

// Check pings the bucket; used as a health checker.
func (s *Store) Check(ctx context.Context) error {
	ok, err := s.client.BucketExists(ctx, s.bucketName)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("bucket %s missing", s.bucketName)
	}
	return nil
}
