package trigger

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"convert-json-to-parquet/internal/columnar"
	"convert-json-to-parquet/internal/converter"
	"convert-json-to-parquet/internal/job"
	"convert-json-to-parquet/internal/jobargs"
	"convert-json-to-parquet/internal/location"
	"convert-json-to-parquet/internal/storage"
	"convert-json-to-parquet/pkg/types"
)

func s3Event(bucket string, keys ...string) events.S3Event {
	var ev events.S3Event
	for _, k := range keys {
		ev.Records = append(ev.Records, events.S3EventRecord{
			EventName: "ObjectCreated:Put",
			S3: events.S3Entity{
				Bucket: events.S3Bucket{Name: bucket},
				Object: events.S3Object{Key: k},
			},
		})
	}
	return ev
}

func newHandler(t *testing.T, store *storage.MemoryStore, env map[string]string, ledger job.Ledger) (*Handler, *[]string) {
	t.Helper()
	var inputs []string
	h := &Handler{
		Base:   types.JobConfig{Output: types.OutputOptions{StagingDir: t.TempDir()}},
		Lookup: jobargs.FromMap(env),
		NewConverter: func(ctx context.Context, cfg types.JobConfig) (*converter.Converter, error) {
			inputs = append(inputs, cfg.InputLoc)
			return converter.New(cfg, store, store, nil)
		},
		Ledger: ledger,
		Log:    zaptest.NewLogger(t).Sugar(),
	}
	return h, &inputs
}

func TestHandle(t *testing.T) {
	store := storage.NewMemoryStore()
	store.Set(location.MustParse("s3://raw-bucket/events/day=1/a b.json"), []byte(`{"a":1}{"a":2}`))
	store.Set(location.MustParse("s3://raw-bucket/events/b.json"), []byte(`{"a":3}`))

	ledger, err := job.OpenSQLiteLedger(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	defer ledger.Close()

	h, inputs := newHandler(t, store, map[string]string{
		jobargs.JobName:   "events-trigger",
		jobargs.OutputLoc: "s3://lake-bucket/events/",
	}, ledger)

	err = h.Handle(context.Background(), s3Event("raw-bucket", "events/day%3D1/a+b.json", "events/b.json"))
	require.NoError(t, err)

	assert.Equal(t, []string{
		"s3://raw-bucket/events/day=1/a b.json",
		"s3://raw-bucket/events/b.json",
	}, *inputs)

	objects, err := store.List(context.Background(), location.MustParse("s3://lake-bucket/events/"))
	require.NoError(t, err)
	require.Len(t, objects, 2)

	var total int
	for _, obj := range objects {
		data, _ := store.Get(obj.Location)
		recs, _, err := columnar.ReadParquet(context.Background(), bytes.NewReader(data), 0)
		require.NoError(t, err)
		total += len(recs)
	}
	assert.Equal(t, 3, total)

	runs, err := ledger.Runs(context.Background(), "events-trigger", 0)
	require.NoError(t, err)
	assert.Len(t, runs, 2)
}

func TestHandle_MissingEnvironment(t *testing.T) {
	store := storage.NewMemoryStore()
	h, inputs := newHandler(t, store, map[string]string{jobargs.JobName: "x"}, nil)

	err := h.Handle(context.Background(), s3Event("raw-bucket", "a.json"))
	require.ErrorIs(t, err, jobargs.ErrMissing)
	assert.Contains(t, err.Error(), "OUTPUT_LOC")
	assert.Empty(t, *inputs)
}

func TestHandle_StopsAtFirstFailure(t *testing.T) {
	store := storage.NewMemoryStore()
	store.Set(location.MustParse("s3://raw-bucket/bad.json"), []byte(`[1]`))
	store.Set(location.MustParse("s3://raw-bucket/good.json"), []byte(`{"a":1}`))

	h, inputs := newHandler(t, store, map[string]string{
		jobargs.JobName:   "x",
		jobargs.OutputLoc: "s3://lake-bucket/out/",
	}, nil)

	err := h.Handle(context.Background(), s3Event("raw-bucket", "bad.json", "good.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "s3://raw-bucket/bad.json")
	assert.Len(t, *inputs, 1)
}

func TestHandle_KeysDecodedOnce(t *testing.T) {
	store := storage.NewMemoryStore()
	store.Set(location.MustParse("s3://raw-bucket/data/100%.json"), []byte(`{"a":1}`))
	store.Set(location.MustParse("s3://raw-bucket/data/a%20b#1.json"), []byte(`{"a":2}`))

	h, inputs := newHandler(t, store, map[string]string{
		jobargs.JobName:   "x",
		jobargs.OutputLoc: "s3://lake-bucket/out/",
	}, nil)

	err := h.Handle(context.Background(), s3Event("raw-bucket", "data/100%25.json", "data/a%2520b%231.json"))
	require.NoError(t, err)
	assert.Equal(t, []string{
		"s3://raw-bucket/data/100%.json",
		"s3://raw-bucket/data/a%20b#1.json",
	}, *inputs)

	objects, err := store.List(context.Background(), location.MustParse("s3://lake-bucket/out/"))
	require.NoError(t, err)
	assert.Len(t, objects, 2)
}
