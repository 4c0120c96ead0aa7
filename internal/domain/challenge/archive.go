package challenge

import (
	"context"
	"encoding/json"

	"github.com/questx-lab/persuade-agent/config"
	"github.com/questx-lab/persuade-agent/internal/entity"
	"github.com/questx-lab/persuade-agent/internal/repository"
	"github.com/questx-lab/persuade-agent/pkg/storage"
	"github.com/questx-lab/persuade-agent/pkg/xcontext"
)

// Archiver uploads the final snapshot of a completed challenge.
type Archiver struct {
	storage storage.Storage
	cfg     config.S3Configs
}

func NewArchiver(storage storage.Storage, cfg config.S3Configs) *Archiver {
	return &Archiver{storage: storage, cfg: cfg}
}

// Archive returns the url of the uploaded snapshot, or an empty string when
// archiving is disabled or fails.
func (a *Archiver) Archive(ctx context.Context, challenge *entity.Challenge) string {
	if a == nil || a.storage == nil || a.cfg.Bucket == "" {
		return ""
	}

	b, err := json.MarshalIndent(challenge, "", "  ")
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot marshal challenge %q: %v", challenge.Topic, err)
		return ""
	}

	resp, err := a.storage.Upload(ctx, &storage.UploadObject{
		Bucket:   a.cfg.Bucket,
		Prefix:   a.cfg.Prefix,
		FileName: repository.SnapshotFileName(challenge.CreatedAt),
		Mime:     "application/json",
		Data:     b,
	})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot archive challenge %q: %v", challenge.Topic, err)
		return ""
	}

	xcontext.Logger(ctx).Infof("Archived challenge %q at %s", challenge.Topic, resp.Url)
	return resp.Url
}
