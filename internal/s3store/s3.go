package s3store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awscreds "github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"b2backup/internal/backup"
	"b2backup/internal/credentials"
)

// S3Store implements backup.ObjectStore against any S3-compatible endpoint
// (Backblaze B2, MinIO, AWS itself). Retry and timeout policy comes from the
// SDK's defaults; the engine adds none of its own.
type S3Store struct {
	client   *s3.Client
	uploader *manager.Uploader
}

// Option configures the store at construction time.
type Option func(*s3.Options)

// WithPathStyle forces path-style addressing. Local test servers generally
// require it; virtual-hosted style is the default otherwise.
func WithPathStyle() Option {
	return func(o *s3.Options) { o.UsePathStyle = true }
}

// New creates a store from explicit credentials. The endpoint may be a bare
// host, in which case https is assumed.
func New(ctx context.Context, creds *credentials.Credentials, opts ...Option) (*S3Store, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(creds.Region),
		awsconfig.WithCredentialsProvider(awscreds.NewStaticCredentialsProvider(
			creds.AccessKey,
			creds.SecretKey,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(normalizeEndpoint(creds.Endpoint))
		for _, opt := range opts {
			opt(o)
		}
	})

	return &S3Store{
		client:   client,
		uploader: manager.NewUploader(client),
	}, nil
}

// normalizeEndpoint prepends https:// to endpoints given as a bare host.
func normalizeEndpoint(endpoint string) string {
	if strings.Contains(endpoint, "://") {
		return endpoint
	}
	return "https://" + endpoint
}

// Head probes metadata for the exact key.
func (s *S3Store) Head(ctx context.Context, bucket, key string) (*backup.ObjectMetadata, error) {
	out, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, backup.ErrNotFound
		}
		return nil, fmt.Errorf("head %s/%s: %w", bucket, key, err)
	}

	return &backup.ObjectMetadata{
		Key:          key,
		Size:         aws.ToInt64(out.ContentLength),
		ETag:         stripQuotes(aws.ToString(out.ETag)),
		UserMetadata: lowercaseKeys(out.Metadata),
	}, nil
}

// List streams the bucket's full object listing page by page.
func (s *S3Store) List(ctx context.Context, bucket string, fn func(backup.ObjectMetadata) error) error {
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(bucket),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return fmt.Errorf("listing bucket %s: %w", bucket, err)
		}
		for _, obj := range page.Contents {
			meta := backup.ObjectMetadata{
				Key:  aws.ToString(obj.Key),
				Size: aws.ToInt64(obj.Size),
				ETag: stripQuotes(aws.ToString(obj.ETag)),
			}
			if err := fn(meta); err != nil {
				return err
			}
		}
	}
	return nil
}

// Put uploads size bytes from r to the key. The upload manager splits large
// bodies into multipart uploads transparently.
func (s *S3Store) Put(ctx context.Context, bucket, key string, r io.Reader, size int64, metadata map[string]string) error {
	_, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(bucket),
		Key:           aws.String(key),
		Body:          r,
		ContentLength: aws.Int64(size),
		Metadata:      metadata,
	})
	if err != nil {
		return fmt.Errorf("put %s/%s: %w", bucket, key, err)
	}
	return nil
}

// ListBuckets returns the bucket names visible to the credentials.
func (s *S3Store) ListBuckets(ctx context.Context) ([]string, error) {
	out, err := s.client.ListBuckets(ctx, &s3.ListBucketsInput{})
	if err != nil {
		return nil, fmt.Errorf("listing buckets: %w", err)
	}
	names := make([]string, 0, len(out.Buckets))
	for _, b := range out.Buckets {
		names = append(names, aws.ToString(b.Name))
	}
	return names, nil
}

// isNotFound reports whether err is the store saying "no such object".
// HeadObject surfaces it as types.NotFound; some S3-compatible stores only
// return a bare 404 API error.
func isNotFound(err error) bool {
	var nf *types.NotFound
	if errors.As(err, &nf) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		code := apiErr.ErrorCode()
		return code == "NotFound" || code == "NoSuchKey"
	}
	return false
}

func stripQuotes(etag string) string {
	return strings.Trim(etag, "\"")
}

func lowercaseKeys(m map[string]string) map[string]string {
	if len(m) == 0 {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[strings.ToLower(k)] = v
	}
	return out
}

var _ backup.ObjectStore = (*S3Store)(nil)
