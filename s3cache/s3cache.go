/* Copyright (c) 2013 The s3cache AUTHORS. All rights reserved.
 * Copyright (c) 2025 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file in the current directory for license terms
 *
 * Package s3cache provides an implementation of httpcache.Cache that stores
 * downloaded rating lists in Amazon S3 so that repeated refreshes across
 * machines do not hammer federation servers.
 */
package s3cache

import (
	"bytes"
	"compress/gzip"
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	"github.com/sirupsen/logrus"
)

const pathPrefix = "ratingcache"

// Cache objects store and retrieve data using Amazon S3.
type Cache struct {
	// Config is the Amazon S3 configuration, loaded in Init().
	Config aws.Config

	// Client is the s3 client used by the cache. Init() creates one from
	// Config unless the caller already set it.
	Client *s3.Client

	bucketName string

	// gzip indicates whether cache entries are compressed. Compressed entry
	// keys carry a ".gz" suffix.
	gzip bool

	// log is nil when errors should not be logged
	log *logrus.Entry

	ctx context.Context
}

// Option configures a Cache.
type Option func(*Cache)

// WithGzip compresses cache entries.
func WithGzip(enabled bool) Option {
	return func(c *Cache) { c.gzip = enabled }
}

// WithLogger logs S3 failures to log. Without it failures are silent and
// simply surface as cache misses.
func WithLogger(log *logrus.Entry) Option {
	return func(c *Cache) { c.log = log }
}

// WithClient supplies a preconfigured S3 client.
func WithClient(client *s3.Client) Option {
	return func(c *Cache) { c.Client = client }
}

// New returns a new Cache with underlying storage in the specified bucket.
// Callers should invoke Init() on the returned Cache before use.
func New(ctx context.Context, bucketName string, opts ...Option) *Cache {
	c := &Cache{
		ctx:        ctx,
		bucketName: bucketName,
	}
	for _, opt := range opts {
		opt(c)
	}

	return c
}

func (c *Cache) logf(format string, args ...any) {
	if c.log != nil {
		c.log.Warnf(format, args...)
	}
}

// Get returns the cached response body stored under key.
func (c *Cache) Get(key string) ([]byte, bool) {
	input := &s3.GetObjectInput{
		Bucket: aws.String(c.bucketName),
		Key:    aws.String(c.objectKey(key)),
	}

	resp, err := c.Client.GetObject(c.ctx, input)
	if err != nil {
		var apiErr smithy.APIError
		// no such key just indicates a cache miss
		if !(errors.As(err, &apiErr) && apiErr.ErrorCode() == "NoSuchKey") {
			c.logf("s3cache.get: failed to get object %v%v: %v", c.bucketName,
				*input.Key, err)
		}
		return nil, false
	}
	defer resp.Body.Close()

	var rdr io.Reader = resp.Body
	if c.gzip {
		gr, err := gzip.NewReader(resp.Body)
		if err != nil {
			c.logf("s3cache.get: failed to open compressed object %v%v: %v",
				c.bucketName, *input.Key, err)
			return nil, false
		}
		defer gr.Close()
		rdr = gr
	}
	data, err := io.ReadAll(rdr)
	if err != nil {
		c.logf("s3cache.get: failed to read object %v%v: %v", c.bucketName,
			*input.Key, err)
		return nil, false
	}

	return data, true
}

// Set stores the provided data in the cache under the given key.
func (c *Cache) Set(key string, data []byte) {
	input := &s3.PutObjectInput{
		Bucket: aws.String(c.bucketName),
		Key:    aws.String(c.objectKey(key)),
		Body:   bytes.NewReader(data),
	}

	if c.gzip {
		body, err := compress(data)
		if err != nil {
			c.logf("s3cache.set: failed to gzip data for %v%v: %v",
				c.bucketName, *input.Key, err)
			return
		}
		input.Body = body
		input.ContentEncoding = aws.String("gzip")
	}

	if _, err := c.Client.PutObject(c.ctx, input); err != nil {
		c.logf("s3cache.set: put failed for %v%v: %v", c.bucketName,
			*input.Key, err)
	}
}

// Delete removes the entry stored under key.
func (c *Cache) Delete(key string) {
	input := &s3.DeleteObjectInput{
		Bucket: aws.String(c.bucketName),
		Key:    aws.String(c.objectKey(key)),
	}

	if _, err := c.Client.DeleteObject(c.ctx, input); err != nil {
		c.logf("s3cache.delete: delete failed for %v%v: %v", c.bucketName,
			*input.Key, err)
	}
}

func compress(data []byte) (*bytes.Buffer, error) {
	var buf bytes.Buffer
	gw := gzip.NewWriter(&buf)
	if _, err := gw.Write(data); err != nil {
		return nil, err
	}
	if err := gw.Close(); err != nil {
		return nil, err
	}

	return &buf, nil
}

// objectKey maps an httpcache key (a URL) to an S3 object key.
func (c *Cache) objectKey(key string) string {
	sum := md5.Sum([]byte(key))
	objKey := fmt.Sprintf("/%v/%v", pathPrefix, hex.EncodeToString(sum[:]))
	if c.gzip {
		objKey += ".gz"
	}

	return objKey
}

// Init loads the default AWS configuration (environment variables, then
// shared config and credentials files) and verifies the bucket is reachable
// and listable.
func (c *Cache) Init() error {
	if c.Client == nil {
		var err error
		c.Config, err = config.LoadDefaultConfig(c.ctx)
		if err != nil {
			return fmt.Errorf("s3cache.init: failed to load AWS config: %w", err)
		}
		c.Client = s3.NewFromConfig(c.Config)
	}

	if _, err := c.Client.HeadBucket(c.ctx, &s3.HeadBucketInput{
		Bucket: aws.String(c.bucketName),
	}); err != nil {
		return fmt.Errorf("s3cache.init: head bucket failed for %s: %w", c.bucketName, err)
	}

	if _, err := c.Client.ListObjectsV2(c.ctx, &s3.ListObjectsV2Input{
		Bucket:  aws.String(c.bucketName),
		MaxKeys: aws.Int32(1),
	}); err != nil {
		return fmt.Errorf("s3cache.init: list objects failed for %s: %w", c.bucketName, err)
	}

	return nil
}
