package sync

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Paintersrp/jottr/internal/store/memory"
	"github.com/Paintersrp/jottr/internal/story"
)

var now = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

type fakeBucket struct {
	ObjectAPI
	objects map[string][]byte
}

func newFakeBucket() *fakeBucket {
	return &fakeBucket{objects: make(map[string][]byte)}
}

func (f *fakeBucket) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.objects[aws.ToString(in.Key)] = data
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeBucket) GetObject(ctx context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	data, ok := f.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, fmt.Errorf("no such key %s", aws.ToString(in.Key))
	}
	return &s3.GetObjectOutput{
		Body:          io.NopCloser(bytes.NewReader(data)),
		ContentLength: aws.Int64(int64(len(data))),
	}, nil
}

func (f *fakeBucket) ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	out := &s3.ListObjectsV2Output{}
	for key := range f.objects {
		if strings.HasPrefix(key, aws.ToString(in.Prefix)) {
			out.Contents = append(out.Contents, types.Object{
				Key:          aws.String(key),
				LastModified: aws.Time(now),
			})
		}
	}
	return out, nil
}

func TestNewRequiresBucket(t *testing.T) {
	_, err := New(newFakeBucket(), " ", "jottr", zerolog.Nop())
	assert.ErrorIs(t, err, ErrNoBucket)
}

func TestPushUploadsEveryStory(t *testing.T) {
	bucket := newFakeBucket()
	s, err := New(bucket, "backups", "/jottr/", zerolog.Nop())
	require.NoError(t, err)

	active := story.New("active", now)
	trashed := story.New("trashed", now)
	at := now
	trashed.DiscardedAt = &at
	st := memory.New(active, trashed)

	report, err := s.Push(context.Background(), st)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Transferred)

	data, ok := bucket.objects["jottr/"+active.ID.String()+".md"]
	require.True(t, ok)
	got, err := story.Unmarshal(data, now)
	require.NoError(t, err)
	assert.Equal(t, "active", got.Text)
	assert.Contains(t, bucket.objects, s.Key(trashed))
}

func TestPullAddsMissingAndNewerStories(t *testing.T) {
	bucket := newFakeBucket()
	s, err := New(bucket, "backups", "jottr", zerolog.Nop())
	require.NoError(t, err)

	missing := story.New("only remote", now)
	stale := story.New("old text", now)
	newer := stale.WithText("new text", now.Add(time.Hour))
	unchanged := story.New("same", now)

	for _, r := range []story.Story{missing, newer, unchanged} {
		data, err := story.Marshal(r)
		require.NoError(t, err)
		bucket.objects[s.Key(r)] = data
	}
	bucket.objects["jottr/readme.md"] = []byte("no front matter")
	bucket.objects["jottr/ignored.txt"] = []byte("x")

	st := memory.New(stale, unchanged)
	report, err := s.Pull(context.Background(), st)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Transferred)
	assert.Equal(t, 2, report.Skipped)
	assert.False(t, st.Dirty())

	got, err := st.Get(context.Background(), stale.ID)
	require.NoError(t, err)
	assert.Equal(t, "new text", got.Text)

	_, err = st.Get(context.Background(), missing.ID)
	require.NoError(t, err)
}

func TestPullKeepsNewerLocalCopy(t *testing.T) {
	bucket := newFakeBucket()
	s, err := New(bucket, "backups", "", zerolog.Nop())
	require.NoError(t, err)

	remote := story.New("remote", now)
	local := remote.WithText("local edit", now.Add(time.Hour))

	data, err := story.Marshal(remote)
	require.NoError(t, err)
	bucket.objects[s.Key(remote)] = data

	st := memory.New(local)
	report, err := s.Pull(context.Background(), st)
	require.NoError(t, err)
	assert.Zero(t, report.Transferred)

	got, err := st.Get(context.Background(), local.ID)
	require.NoError(t, err)
	assert.Equal(t, "local edit", got.Text)
}

func TestPullCarriesDiscardAndRestore(t *testing.T) {
	ctx := context.Background()
	bucket := newFakeBucket()
	s, err := New(bucket, "backups", "jottr", zerolog.Nop())
	require.NoError(t, err)

	original := story.New("shared", now)
	laptop := memory.New(original)
	desktop := memory.New(original)

	require.NoError(t, laptop.MarkDiscarded(ctx, original.ID, now.Add(time.Hour)))
	require.NoError(t, laptop.Persist(ctx))
	_, err = s.Push(ctx, laptop)
	require.NoError(t, err)

	report, err := s.Pull(ctx, desktop)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Transferred)
	got, err := desktop.Get(ctx, original.ID)
	require.NoError(t, err)
	assert.True(t, got.IsDiscarded())

	require.NoError(t, laptop.Restore(ctx, original.ID, now.Add(2*time.Hour)))
	require.NoError(t, laptop.Persist(ctx))
	_, err = s.Push(ctx, laptop)
	require.NoError(t, err)

	report, err = s.Pull(ctx, desktop)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Transferred)
	got, err = desktop.Get(ctx, original.ID)
	require.NoError(t, err)
	assert.False(t, got.IsDiscarded())
}
