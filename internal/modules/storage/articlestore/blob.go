package articlestore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/nadi-health/core/internal/config"
	"github.com/nadi-health/core/internal/modules/content/article"
	"github.com/nadi-health/core/internal/pkg/apperr"
	"go.uber.org/zap"
)

const defaultBlobPrefix = "articles/"

// objectAPI is the subset of *s3.Client the blob store needs.
type objectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// Blob keeps one JSON object per article at {prefix}{slug}.json in an
// S3-compatible bucket.
type Blob struct {
	client objectAPI
	bucket string
	prefix string
	logger *zap.Logger
}

// NewS3Client builds an S3 client from static credentials. A custom endpoint
// targets S3-compatible services such as MinIO or R2.
func NewS3Client(cfg config.S3Config) *s3.Client {
	awsCfg := aws.Config{
		Region:      cfg.Region,
		Credentials: credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
	}
	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.PathStyle
	})
}

func NewBlob(client objectAPI, bucket, prefix string, logger *zap.Logger) (*Blob, error) {
	if client == nil {
		return nil, errors.New("s3 client is required")
	}
	if bucket == "" {
		return nil, errors.New("s3 bucket is required")
	}
	if prefix == "" {
		prefix = defaultBlobPrefix
	}
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return &Blob{client: client, bucket: bucket, prefix: prefix, logger: orNop(logger)}, nil
}

func (b *Blob) key(slug string) string {
	return b.prefix + slug + ".json"
}

// GetAll walks every object under the prefix. Objects that cannot be
// fetched or parsed are logged and skipped.
func (b *Blob) GetAll(ctx context.Context) ([]article.Article, error) {
	paginator := s3.NewListObjectsV2Paginator(b.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(b.bucket),
		Prefix: aws.String(b.prefix),
	})

	var out []article.Article
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, apperr.Storage("list articles", err)
		}
		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			name := strings.TrimPrefix(key, b.prefix)
			if strings.Contains(name, "/") || !isArticleFile(name) {
				continue
			}
			a, err := b.fetch(ctx, key, strings.TrimSuffix(name, ".json"))
			if err != nil {
				b.logger.Warn("skip unreadable article object", zap.String("key", key), zap.Error(err))
				continue
			}
			out = append(out, *a)
		}
	}
	if out == nil {
		out = []article.Article{}
	}
	return out, nil
}

func (b *Blob) fetch(ctx context.Context, key, slug string) (*article.Article, error) {
	obj, err := b.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, err
	}
	defer obj.Body.Close()

	data, err := io.ReadAll(obj.Body)
	if err != nil {
		return nil, fmt.Errorf("read object body: %w", err)
	}
	return decodeArticle(data, slug)
}

func (b *Blob) GetBySlug(ctx context.Context, slug string) (*article.Article, error) {
	if !article.ValidSlug(slug) {
		return nil, apperr.NotFound("article", slug)
	}
	a, err := b.fetch(ctx, b.key(slug), slug)
	if err != nil {
		switch {
		case isNotFound(err):
			return nil, apperr.NotFound("article", slug)
		case errors.Is(err, apperr.ErrSchemaViolation):
			return nil, err
		default:
			return nil, apperr.Storage("get article", err)
		}
	}
	return a, nil
}

func (b *Blob) Save(ctx context.Context, a *article.Article) error {
	if !article.ValidSlug(a.Slug) {
		return apperr.Validation("slug", "is not a valid slug")
	}
	data, err := encodeArticle(a)
	if err != nil {
		return err
	}
	_, err = b.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(b.bucket),
		Key:           aws.String(b.key(a.Slug)),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String("application/json"),
	})
	if err != nil {
		return apperr.Storage("put article", err)
	}
	return nil
}

// Delete checks existence first since S3 deletes are silent on missing keys.
func (b *Blob) Delete(ctx context.Context, slug string) error {
	exists, err := b.Exists(ctx, slug)
	if err != nil {
		return err
	}
	if !exists {
		return apperr.NotFound("article", slug)
	}
	_, err = b.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(b.key(slug)),
	})
	if err != nil {
		return apperr.Storage("delete article", err)
	}
	return nil
}

func (b *Blob) Exists(ctx context.Context, slug string) (bool, error) {
	if !article.ValidSlug(slug) {
		return false, nil
	}
	_, err := b.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(b.key(slug)),
	})
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, apperr.Storage("head article", err)
	}
	return true, nil
}

func isNotFound(err error) bool {
	var noSuchKey *types.NoSuchKey
	if errors.As(err, &noSuchKey) {
		return true
	}
	var notFound *types.NotFound
	if errors.As(err, &notFound) {
		return true
	}
	var respErr *awshttp.ResponseError
	return errors.As(err, &respErr) && respErr.HTTPStatusCode() == 404
}
