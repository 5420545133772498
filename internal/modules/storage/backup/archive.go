// Package backup writes and reads BSON zip archives of the article
// collection.
package backup

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/nadi-health/core/internal/models"
	"github.com/nadi-health/core/internal/modules/content/article"
	"github.com/nadi-health/core/internal/pkg/apperr"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Uploader is the part of the S3 client used to ship archives.
type Uploader interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Service exports every article (and topic, when a database is present)
// into a zip of BSON streams.
type Service struct {
	store    article.Store
	db       *gorm.DB
	dir      string
	uploader Uploader
	bucket   string
	keyTpl   string
	logger   *zap.Logger
	now      func() time.Time
}

type Option func(*Service)

// WithDB adds the topics table to archives.
func WithDB(db *gorm.DB) Option {
	return func(s *Service) { s.db = db }
}

// WithS3 uploads each archive to bucket under keyTemplate.
func WithS3(uploader Uploader, bucket, keyTemplate string) Option {
	return func(s *Service) {
		s.uploader = uploader
		s.bucket = bucket
		s.keyTpl = keyTemplate
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

func NewService(store article.Store, dir string, opts ...Option) *Service {
	s := &Service{store: store, dir: dir, logger: zap.NewNop(), now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) CanUpload() bool { return s.uploader != nil && s.bucket != "" }

// Export writes a new archive into the backup directory and, when upload is
// set, copies it to S3.
func (s *Service) Export(ctx context.Context, upload bool) (*Artifact, error) {
	now := s.now()
	buf, counts, err := s.buildArchive(ctx, now)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return nil, apperr.Storage("create backup dir", err)
	}
	filename := fmt.Sprintf("backup-%s.zip", now.Format("2006-01-02T15-04-05"))
	filePath := filepath.Join(s.dir, filename)
	if err := os.WriteFile(filePath, buf.Bytes(), 0o644); err != nil {
		return nil, apperr.Storage("write backup", err)
	}

	artifact := &Artifact{Filename: filename, Path: filePath, Counts: counts, Buffer: buf}
	if upload {
		if !s.CanUpload() {
			return nil, apperr.Validation("upload", "s3 is not configured")
		}
		key := renderBackupObjectKey(s.keyTpl, filename, now)
		_, err := s.uploader.PutObject(ctx, &s3.PutObjectInput{
			Bucket:      aws.String(s.bucket),
			Key:         aws.String(key),
			Body:        bytes.NewReader(buf.Bytes()),
			ContentType: aws.String("application/zip"),
		})
		if err != nil {
			return nil, apperr.Storage("upload backup", err)
		}
		artifact.S3Key = key
	}

	s.logger.Info("backup written", zap.String("file", filename), zap.Any("counts", counts))
	return artifact, nil
}

func (s *Service) buildArchive(ctx context.Context, now time.Time) (*bytes.Buffer, map[string]int, error) {
	articles, err := s.store.GetAll(ctx)
	if err != nil {
		return nil, nil, err
	}
	article.SortByDate(articles)

	rows := make([]map[string]interface{}, 0, len(articles))
	for i := range articles {
		doc, err := toDocument(&articles[i])
		if err != nil {
			return nil, nil, err
		}
		rows = append(rows, doc)
	}

	collections := map[string][]map[string]interface{}{collectionArticles: rows}
	if s.db != nil {
		var topics []models.TopicModel
		if err := s.db.WithContext(ctx).Order("created_at ASC").Find(&topics).Error; err != nil {
			return nil, nil, apperr.Storage("read topics", err)
		}
		topicRows := make([]map[string]interface{}, 0, len(topics))
		for i := range topics {
			doc, err := toDocument(&topics[i])
			if err != nil {
				return nil, nil, err
			}
			topicRows = append(topicRows, doc)
		}
		collections[collectionTopics] = topicRows
	}

	buf := &bytes.Buffer{}
	w := zip.NewWriter(buf)
	names := make([]string, 0, len(collections))
	counts := make(map[string]int, len(collections))
	for _, name := range []string{collectionArticles, collectionTopics} {
		docs, ok := collections[name]
		if !ok {
			continue
		}
		payload, err := encodeBSONRows(docs)
		if err != nil {
			return nil, nil, err
		}
		f, err := w.Create(path.Join(archiveDBDir, name+".bson"))
		if err != nil {
			return nil, nil, err
		}
		if _, err := f.Write(payload); err != nil {
			return nil, nil, err
		}
		names = append(names, name)
		counts[name] = len(docs)
	}

	manifest := archiveManifest{
		Format:      archiveFormat,
		Version:     archiveVersion,
		CreatedAt:   now.UTC(),
		Collections: names,
		Counts:      counts,
	}
	manifestData, err := json.Marshal(manifest)
	if err != nil {
		return nil, nil, err
	}
	mf, err := w.Create(archiveManifestFile)
	if err != nil {
		return nil, nil, err
	}
	if _, err := mf.Write(manifestData); err != nil {
		return nil, nil, err
	}

	if err := w.Close(); err != nil {
		return nil, nil, err
	}
	return buf, counts, nil
}

// ReadArticles decodes and validates the articles of an archive.
func ReadArticles(data []byte) ([]article.Article, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, apperr.Validation("file", "not a zip archive")
	}

	var manifest *archiveManifest
	var payload []byte
	for _, f := range zr.File {
		switch f.Name {
		case archiveManifestFile:
			raw, err := readZipFile(f)
			if err != nil {
				return nil, err
			}
			manifest = &archiveManifest{}
			if err := json.Unmarshal(raw, manifest); err != nil {
				return nil, apperr.Validation("file", "unreadable manifest")
			}
		case path.Join(archiveDBDir, collectionArticles+".bson"):
			if payload, err = readZipFile(f); err != nil {
				return nil, err
			}
		}
	}
	if manifest == nil || manifest.Format != archiveFormat {
		return nil, apperr.Validation("file", "not a "+archiveFormat+" archive")
	}

	docs, err := splitBSONDocuments(payload)
	if err != nil {
		return nil, apperr.Validation("file", err.Error())
	}
	out := make([]article.Article, 0, len(docs))
	for i, doc := range docs {
		data, err := bson.MarshalExtJSON(doc, false, false)
		if err != nil {
			return nil, apperr.Validation("file", err.Error())
		}
		var a article.Article
		if err := json.Unmarshal(data, &a); err != nil {
			if errors.Is(err, apperr.ErrSchemaViolation) {
				return nil, fmt.Errorf("article %d: %w", i, err)
			}
			return nil, apperr.Validation("file", fmt.Sprintf("article %d: %v", i, err))
		}
		out = append(out, a)
	}
	return out, nil
}

// Import restores every article of an archive into the store, replacing
// articles with the same slug.
func (s *Service) Import(ctx context.Context, data []byte) (int, error) {
	articles, err := ReadArticles(data)
	if err != nil {
		return 0, err
	}
	for i := range articles {
		a := &articles[i]
		a.Slug = strings.TrimSpace(a.Slug)
		if err := article.Validate(a); err != nil {
			return 0, fmt.Errorf("article %q: %w", a.Slug, err)
		}
	}
	for i := range articles {
		if err := s.store.Save(ctx, &articles[i]); err != nil {
			return i, err
		}
	}
	s.logger.Info("backup imported", zap.Int("articles", len(articles)))
	return len(articles), nil
}

// List returns the archives in the backup directory.
func (s *Service) List() []backupItem {
	items := []backupItem{}
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return items
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".zip") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		items = append(items, backupItem{Filename: e.Name(), Size: formatSize(info.Size())})
	}
	return items
}

// Open reads a stored archive by file name.
func (s *Service) Open(filename string) ([]byte, error) {
	filename = filepath.Base(filename)
	if !strings.HasSuffix(filename, ".zip") {
		return nil, apperr.Validation("filename", "must name a .zip archive")
	}
	data, err := os.ReadFile(filepath.Join(s.dir, filename))
	if os.IsNotExist(err) {
		return nil, apperr.NotFound("backup", filename)
	}
	if err != nil {
		return nil, apperr.Storage("read backup", err)
	}
	return data, nil
}

func readZipFile(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, apperr.Validation("file", err.Error())
	}
	defer rc.Close()
	return io.ReadAll(rc)
}
