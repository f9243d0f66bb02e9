// Copyright 2024 Factorial GmbH. All rights reserved.
//
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package result

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type S3Config struct {
	Bucket       string
	Prefix       string
	Endpoint     string
	Region       string
	UsePathStyle bool
}

// LogFormat returns a string representation of the config suitable for logging
func (c S3Config) LogFormat() string {
	return fmt.Sprintf("s3(bucket=%s, prefix=%s, endpoint=%s, region=%s, usePathStyle=%v)",
		c.Bucket, c.Prefix, c.Endpoint, c.Region, c.UsePathStyle)
}

// NewS3ConfigFromDSN parses a DSN and returns a S3Config.
// The DSN is expected to be in the format:
//
//	s3://<bucket>/<prefix>?endpoint=<endpoint>&region=<region>&usePathStyle=<true|false>
//
// If the endpoint is not provided, the default endpoint for the region will be used.
func NewS3ConfigFromDSN(dsn string) (S3Config, error) {
	config := S3Config{}

	u, err := url.Parse(dsn)
	if err != nil {
		return config, fmt.Errorf("invalid s3 result reporter DSN: %w", err)
	}

	config.Bucket = u.Host
	config.Prefix = strings.Trim(u.Path, "/")

	if config.Bucket == "" {
		return config, fmt.Errorf("bucket name is required in S3 DSN")
	}

	q := u.Query()
	config.Endpoint = q.Get("endpoint")
	config.Region = q.Get("region")
	config.UsePathStyle = q.Get("usePathStyle") == "true"

	return config, nil
}

// s3Key returns the object key of a report:
//
//	<prefix>/<app>/<import_uuid>.json
func s3Key(config S3Config, r *Report) string {
	return strings.TrimLeft(path.Join(config.Prefix, appDirName(r.App), r.Import+".json"), "/")
}

// ReportToS3 stores reports in S3 as JSON files, grouped by app.
func ReportToS3(ctx context.Context, config S3Config, r *Report) error {
	logger := slog.With("import", r.Import, "app", r.App)
	logger.Debug("Result reporter: Saving report to S3...")

	var options []func(*awsconfig.LoadOptions) error

	if config.Region != "" {
		options = append(options, awsconfig.WithRegion(config.Region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, options...)
	if err != nil {
		return err
	}

	s3Client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = config.UsePathStyle
		if config.Endpoint != "" {
			o.BaseEndpoint = aws.String(config.Endpoint)
		}
	})

	jsonData, err := json.MarshalIndent(r, "", " ")
	if err != nil {
		return err
	}

	_, err = s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(config.Bucket),
		Key:         aws.String(s3Key(config, r)),
		Body:        bytes.NewReader(jsonData),
		ContentType: aws.String("application/json"),
		Metadata: map[string]string{
			"import": r.Import,
			"app":    r.App,
		},
	})
	return err
}
