/*
 * Galileo Network Analytics (GNA) Toolkit
 *
 * Copyright 2024-2025 Fidelis Farm & Technologies, LLC
 * All Rights Reserved.
 * See license information in LICENSE.
 */

// Package store implements the store stage's destinations: a local hive
// partitioned filesystem layout and an S3-compatible object store,
// selected by the output URI's scheme. Grounded on
// pkg/archive/parquet/target.go's ParquetTarget abstraction and
// original_source/gnat/src/pipeline/store.rs's get_storage_type /
// upload_to_s3 / local_storage.
package store

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Target abstracts the destination for a store stage output file.
type Target interface {
	WriteFile(name string, data []byte) error
}

// Scheme identifies the storage family an output URI names.
type Scheme int

const (
	SchemeLocal Scheme = iota
	SchemeS3
)

// DetectScheme classifies an output target's URI the way
// StoreProcessor::get_storage_type does: "s3://" is S3; a "file:"
// prefix, an absolute path ("/...") or a dot-relative path ("./...")
// is local. Anything else, including a bare relative path, is
// rejected as a configuration error; this module carries no remote
// catalog (motherduck) client, so "md:" targets are unsupported here.
func DetectScheme(output string) (Scheme, error) {
	switch {
	case strings.HasPrefix(output, "s3://"):
		return SchemeS3, nil
	case strings.HasPrefix(output, "file:"), strings.HasPrefix(output, "/"), strings.HasPrefix(output, "."):
		return SchemeLocal, nil
	default:
		return 0, fmt.Errorf("unsupported storage URI scheme: %q", output)
	}
}

// FileTarget writes files to a local filesystem directory.
type FileTarget struct {
	path string
}

func NewFileTarget(path string) (*FileTarget, error) {
	path = strings.TrimPrefix(path, "file:")
	if err := os.MkdirAll(path, 0o750); err != nil {
		return nil, fmt.Errorf("create target directory: %w", err)
	}
	return &FileTarget{path: path}, nil
}

func (ft *FileTarget) WriteFile(name string, data []byte) error {
	dir := filepath.Join(ft.path, filepath.Dir(name))
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("create partition directory %q: %w", dir, err)
	}
	return os.WriteFile(filepath.Join(ft.path, name), data, 0o640)
}

// S3TargetConfig holds the environment-sourced configuration for an S3
// target: endpoint, bucket, credentials, region, and URL style, read
// from the same s3_* variable names store.rs's get_storage_type/new
// require.
type S3TargetConfig struct {
	Endpoint     string
	Bucket       string
	AccessKey    string
	SecretKey    string
	Region       string
	UsePathStyle bool
}

// S3ConfigFromEnv reads an S3TargetConfig from the process environment,
// failing with one error per variable store.rs's get_storage_type checks
// with env::var(...).expect(...).
func S3ConfigFromEnv() (S3TargetConfig, error) {
	get := func(key string) (string, error) {
		v, ok := os.LookupEnv(key)
		if !ok || v == "" {
			return "", fmt.Errorf("missing %s", key)
		}
		return v, nil
	}

	bucket, err := get("s3_bucket")
	if err != nil {
		return S3TargetConfig{}, err
	}
	region, err := get("s3_region")
	if err != nil {
		return S3TargetConfig{}, err
	}
	endpoint, err := get("s3_endpoint")
	if err != nil {
		return S3TargetConfig{}, err
	}
	accessKey, err := get("s3_access_key_id")
	if err != nil {
		return S3TargetConfig{}, err
	}
	secretKey, err := get("s3_secret_access_key")
	if err != nil {
		return S3TargetConfig{}, err
	}
	urlStyle := os.Getenv("s3_url_style")

	return S3TargetConfig{
		Endpoint:     endpoint,
		Bucket:       bucket,
		AccessKey:    accessKey,
		SecretKey:    secretKey,
		Region:       region,
		UsePathStyle: urlStyle == "" || urlStyle == "path",
	}, nil
}

// S3Target writes files to an S3-compatible object store.
type S3Target struct {
	client *s3.Client
	bucket string
}

func NewS3Target(cfg S3TargetConfig) (*S3Target, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("S3 target: empty bucket name")
	}

	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("S3 target: load AWS config: %w", err)
	}

	opts := func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	}

	client := s3.NewFromConfig(awsCfg, opts)
	return &S3Target{client: client, bucket: cfg.Bucket}, nil
}

func (st *S3Target) WriteFile(name string, data []byte) error {
	_, err := st.client.PutObject(context.Background(), &s3.PutObjectInput{
		Bucket:      aws.String(st.bucket),
		Key:         aws.String(name),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/vnd.apache.parquet"),
	})
	if err != nil {
		return fmt.Errorf("S3 target: put object %q: %w", name, err)
	}
	return nil
}

// New builds the Target an output URI names, reading S3 credentials
// from the environment when the scheme is S3.
func New(output string) (Target, error) {
	scheme, err := DetectScheme(output)
	if err != nil {
		return nil, err
	}
	switch scheme {
	case SchemeS3:
		cfg, err := S3ConfigFromEnv()
		if err != nil {
			return nil, fmt.Errorf("S3 target configuration: %w", err)
		}
		return NewS3Target(cfg)
	default:
		return NewFileTarget(output)
	}
}
