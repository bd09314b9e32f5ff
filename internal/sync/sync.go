// Package sync backs up stories to an S3 compatible bucket and restores them.
package sync

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/rs/zerolog"

	"github.com/Paintersrp/jottr/internal/config"
	"github.com/Paintersrp/jottr/internal/store"
	"github.com/Paintersrp/jottr/internal/story"
)

var ErrNoBucket = errors.New("sync bucket is not configured")

const contentType = "text/markdown; charset=utf-8"

// ObjectAPI is the part of the S3 client used for backups.
type ObjectAPI interface {
	manager.UploadAPIClient
	manager.DownloadAPIClient
	s3.ListObjectsV2APIClient
}

type Syncer struct {
	api        ObjectAPI
	uploader   *manager.Uploader
	downloader *manager.Downloader
	bucket     string
	prefix     string
	log        zerolog.Logger
}

// Report summarises a push or pull.
type Report struct {
	Transferred int
	Skipped     int
}

// NewClient builds an S3 client from the sync configuration. Static keys and a
// custom endpoint are optional; without them the default AWS chain is used.
func NewClient(ctx context.Context, cfg config.SyncConfig) (*s3.Client, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	}), nil
}

func New(api ObjectAPI, bucket, prefix string, logger zerolog.Logger) (*Syncer, error) {
	if strings.TrimSpace(bucket) == "" {
		return nil, ErrNoBucket
	}

	return &Syncer{
		api:        api,
		uploader:   manager.NewUploader(api),
		downloader: manager.NewDownloader(api),
		bucket:     bucket,
		prefix:     strings.Trim(prefix, "/"),
		log:        logger.With().Str("component", "sync").Str("bucket", bucket).Logger(),
	}, nil
}

// Key is the object key holding the story with the given id.
func (s *Syncer) Key(r story.Story) string {
	return path.Join(s.prefix, r.ID.String()+".md")
}

// Push uploads every story, discarded ones included.
func (s *Syncer) Push(ctx context.Context, st store.Store) (Report, error) {
	records, err := st.ListAll(ctx)
	if err != nil {
		return Report{}, err
	}

	var report Report
	for _, r := range records {
		data, err := story.Marshal(r)
		if err != nil {
			return report, fmt.Errorf("encode %s: %w", r.ShortID(), err)
		}

		_, err = s.uploader.Upload(ctx, &s3.PutObjectInput{
			Bucket:      aws.String(s.bucket),
			Key:         aws.String(s.Key(r)),
			Body:        bytes.NewReader(data),
			ContentType: aws.String(contentType),
		})
		if err != nil {
			return report, fmt.Errorf("upload %s: %w", r.ShortID(), err)
		}
		report.Transferred++
		s.log.Debug().Str("id", r.ShortID()).Msg("uploaded story")
	}

	return report, nil
}

// Pull downloads every story under the prefix. Stories missing locally are
// added; local stories are replaced only when the remote copy was updated more
// recently.
func (s *Syncer) Pull(ctx context.Context, st store.Store) (Report, error) {
	objects, err := s.list(ctx)
	if err != nil {
		return Report{}, err
	}

	var report Report
	for _, obj := range objects {
		remote, ok, err := s.fetch(ctx, obj)
		if err != nil {
			return report, err
		}
		if !ok {
			report.Skipped++
			continue
		}

		local, err := st.Get(ctx, remote.ID)
		switch {
		case errors.Is(err, store.ErrNotFound):
		case err != nil:
			return report, err
		case !remote.UpdatedAt.After(local.UpdatedAt):
			report.Skipped++
			continue
		}

		if err := st.Put(ctx, remote); err != nil {
			return report, err
		}
		report.Transferred++
	}

	if report.Transferred > 0 {
		if err := st.Persist(ctx); err != nil {
			return report, err
		}
	}
	return report, nil
}

func (s *Syncer) list(ctx context.Context) ([]types.Object, error) {
	input := &s3.ListObjectsV2Input{Bucket: aws.String(s.bucket)}
	if s.prefix != "" {
		input.Prefix = aws.String(s.prefix + "/")
	}

	var objects []types.Object
	p := s3.NewListObjectsV2Paginator(s.api, input)
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list %s: %w", s.bucket, err)
		}
		for _, obj := range page.Contents {
			if strings.HasSuffix(aws.ToString(obj.Key), ".md") {
				objects = append(objects, obj)
			}
		}
	}
	return objects, nil
}

func (s *Syncer) fetch(ctx context.Context, obj types.Object) (story.Story, bool, error) {
	key := aws.ToString(obj.Key)
	buf := manager.NewWriteAtBuffer(nil)
	_, err := s.downloader.Download(ctx, buf, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return story.Story{}, false, fmt.Errorf("download %s: %w", key, err)
	}

	data := buf.Bytes()
	if !story.HasFrontMatter(data) {
		s.log.Warn().Str("key", key).Msg("skipping object without front matter")
		return story.Story{}, false, nil
	}

	r, err := story.Unmarshal(data, aws.ToTime(obj.LastModified))
	if err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("skipping unreadable object")
		return story.Story{}, false, nil
	}
	return r, true, nil
}
