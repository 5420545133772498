package backup

import (
	"bytes"
	"time"
)

const (
	archiveRootDir      = "nadi-core"
	archiveDBDir        = archiveRootDir + "/db"
	archiveManifestFile = archiveRootDir + "/manifest.json"
	archiveFormat       = "nadi-core-bson"
	archiveVersion      = 1

	collectionArticles = "articles"
	collectionTopics   = "topics"

	defaultS3PathTemplate = "backups/{Y}/{m}/{filename}"
)

type archiveManifest struct {
	Format      string         `json:"format"`
	Version     int            `json:"version"`
	CreatedAt   time.Time      `json:"created_at"`
	Collections []string       `json:"collections"`
	Counts      map[string]int `json:"counts"`
}

type backupItem struct {
	Filename string `json:"filename"`
	Size     string `json:"size"`
}

// Artifact is a written archive.
type Artifact struct {
	Filename string         `json:"filename"`
	Path     string         `json:"path"`
	Counts   map[string]int `json:"counts"`
	S3Key    string         `json:"s3Key,omitempty"`
	Buffer   *bytes.Buffer  `json:"-"`
}
