package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"convert-json-to-parquet/internal/location"
	"convert-json-to-parquet/pkg/types"
)

// S3API is the subset of the S3 client the store uses.
type S3API interface {
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

var (
	_ S3API = (*s3.Client)(nil)
	_ Store = (*S3Store)(nil)
)

// NewS3Client loads the default AWS configuration and creates an S3 client.
func NewS3Client(ctx context.Context, cfg types.S3Config) (*s3.Client, error) {
	var opts []func(*config.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, config.WithRegion(cfg.Region))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	}), nil
}

// S3Store serves s3:// locations.
type S3Store struct {
	client S3API
}

// NewS3Store wraps an S3 client.
func NewS3Store(client S3API) *S3Store {
	return &S3Store{client: client}
}

func (s *S3Store) List(ctx context.Context, loc location.Location) ([]Object, error) {
	p := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(loc.Bucket),
		Prefix: aws.String(loc.Path),
	})

	var objects []Object
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("listing %s: %w", loc, err)
		}
		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			if !underPrefix(key, loc.Path) || hidden(key) {
				continue
			}
			objects = append(objects, Object{
				Location: location.Location{Scheme: location.SchemeS3, Bucket: loc.Bucket, Path: key},
				Size:     aws.ToInt64(obj.Size),
			})
		}
	}

	sort.Slice(objects, func(i, j int) bool { return objects[i].Location.Path < objects[j].Location.Path })
	return objects, nil
}

func (s *S3Store) Open(ctx context.Context, loc location.Location) (io.ReadCloser, error) {
	result, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(loc.Bucket),
		Key:    aws.String(loc.Path),
	})
	if err != nil {
		var nsk *s3types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, loc)
		}
		return nil, fmt.Errorf("getting %s: %w", loc, err)
	}
	return result.Body, nil
}

func (s *S3Store) Put(ctx context.Context, loc location.Location, body io.Reader) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(loc.Bucket),
		Key:         aws.String(loc.Path),
		Body:        body,
		ContentType: aws.String("application/octet-stream"),
	})
	if err != nil {
		return fmt.Errorf("putting %s: %w", loc, err)
	}
	return nil
}

func (s *S3Store) Delete(ctx context.Context, loc location.Location) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(loc.Bucket),
		Key:    aws.String(loc.Path),
	})
	if err != nil {
		return fmt.Errorf("deleting %s: %w", loc, err)
	}
	return nil
}
