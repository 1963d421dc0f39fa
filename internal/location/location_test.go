package location

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		raw     string
		want    Location
		wantErr bool
	}{
		{raw: "s3://bucket/in/data.json", want: Location{Scheme: SchemeS3, Bucket: "bucket", Path: "in/data.json"}},
		{raw: "s3://bucket/prefix/", want: Location{Scheme: SchemeS3, Bucket: "bucket", Path: "prefix/"}},
		{raw: "s3://bucket", want: Location{Scheme: SchemeS3, Bucket: "bucket", Path: ""}},
		{raw: "s3a://bucket/k", want: Location{Scheme: SchemeS3, Bucket: "bucket", Path: "k"}},
		{raw: "S3N://bucket/k", want: Location{Scheme: SchemeS3, Bucket: "bucket", Path: "k"}},
		{raw: "s3://b/data/a%20b.json", want: Location{Scheme: SchemeS3, Bucket: "b", Path: "data/a%20b.json"}},
		{raw: "s3://b/data/file#1.json", want: Location{Scheme: SchemeS3, Bucket: "b", Path: "data/file#1.json"}},
		{raw: "s3://b/data/q?x.json", want: Location{Scheme: SchemeS3, Bucket: "b", Path: "data/q?x.json"}},
		{raw: "s3://b/data/100%.json", want: Location{Scheme: SchemeS3, Bucket: "b", Path: "data/100%.json"}},
		{raw: "s3://b/events/day=1/a b.json", want: Location{Scheme: SchemeS3, Bucket: "b", Path: "events/day=1/a b.json"}},
		{raw: "file:///tmp/in", want: Location{Scheme: SchemeFile, Path: "/tmp/in"}},
		{raw: "data/in/", want: Location{Scheme: SchemeFile, Path: "data/in"}},
		{raw: "", wantErr: true},
		{raw: "s3:///nobucket", wantErr: true},
		{raw: "gs://bucket/k", wantErr: true},
		{raw: "file://", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := Parse(tt.raw)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalid)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLocation_JoinAndString(t *testing.T) {
	s3 := MustParse("s3://out/parquet/")
	assert.Equal(t, "s3://out/parquet/part-00000.parquet", s3.Join("part-00000.parquet").String())
	assert.Equal(t, "part-00000.parquet", s3.Join("part-00000.parquet").Base())

	root := MustParse("s3://out")
	assert.Equal(t, "s3://out/a.parquet", root.Join("a.parquet").String())

	local := MustParse("/tmp/out")
	assert.Equal(t, "file:///tmp/out/a.parquet", local.Join("a.parquet").String())
}

func TestParse_KeyRoundTrip(t *testing.T) {
	for _, raw := range []string{
		"s3://b/data/100%.json",
		"s3://b/data/file#1.json",
		"s3://b/data/q?x.json",
		"s3://b/data/a%20b.json",
	} {
		assert.Equal(t, raw, MustParse(raw).String())
	}
}

func TestMustParse_Panics(t *testing.T) {
	assert.Panics(t, func() { MustParse("") })
}
