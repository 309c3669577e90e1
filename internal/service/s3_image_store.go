package service

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/rs/zerolog/log"

	"github.com/GTDGit/gtd_catalog/internal/config"
)

// emptyPayloadHash is the SHA-256 of an empty body.
const emptyPayloadHash = "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"

// S3ImageStore stores images as objects in an S3 bucket. Requests are signed
// with SigV4 using credentials resolved by the AWS SDK.
type S3ImageStore struct {
	bucket      string
	region      string
	endpoint    string
	credentials aws.CredentialsProvider
	signer      *v4.Signer
	client      *http.Client
}

// NewS3ImageStore creates a new S3ImageStore. Static keys from cfg take
// precedence; otherwise the SDK's default credential chain is used.
func NewS3ImageStore(ctx context.Context, cfg *config.S3Config) (*S3ImageStore, error) {
	if cfg == nil {
		return nil, fmt.Errorf("S3 config is nil")
	}

	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	if awsCfg.Credentials == nil {
		return nil, fmt.Errorf("no AWS credentials available for S3 image store")
	}

	return &S3ImageStore{
		bucket:      cfg.Bucket,
		region:      cfg.Region,
		endpoint:    strings.TrimSuffix(cfg.Endpoint, "/"),
		credentials: awsCfg.Credentials,
		signer:      v4.NewSigner(),
		client:      &http.Client{Timeout: 60 * time.Second},
	}, nil
}

// Save uploads data under images/ and returns the object key.
func (s *S3ImageStore) Save(ctx context.Context, data []byte, contentType, ext string) (string, error) {
	key := "images/" + imageFileName(ext)

	sum := sha256.Sum256(data)
	resp, err := s.do(ctx, http.MethodPut, key, data, contentType, hex.EncodeToString(sum[:]))
	if err != nil {
		log.Error().Err(err).Str("key", key).Msg("Failed to upload image to S3")
		return "", fmt.Errorf("failed to upload: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		log.Error().
			Str("key", key).
			Int("status", resp.StatusCode).
			Str("response", string(body)).
			Msg("S3 upload failed")
		return "", fmt.Errorf("S3 upload failed with status %d", resp.StatusCode)
	}

	log.Info().Str("key", key).Msg("Uploaded image to S3")
	return key, nil
}

// Delete removes the object stored under key.
func (s *S3ImageStore) Delete(ctx context.Context, key string) error {
	resp, err := s.do(ctx, http.MethodDelete, key, nil, "", emptyPayloadHash)
	if err != nil {
		return fmt.Errorf("failed to delete: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusOK {
		return fmt.Errorf("S3 delete failed with status %d", resp.StatusCode)
	}
	return nil
}

// ObjectURL returns the URL of key. A configured endpoint uses path-style addressing.
func (s *S3ImageStore) ObjectURL(key string) string {
	if s.endpoint != "" {
		return fmt.Sprintf("%s/%s/%s", s.endpoint, s.bucket, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key)
}

func (s *S3ImageStore) do(ctx context.Context, method, key string, body []byte, contentType, payloadHash string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, s.ObjectURL(key), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("X-Amz-Content-Sha256", payloadHash)

	creds, err := s.credentials.Retrieve(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve AWS credentials: %w", err)
	}
	if err := s.signer.SignHTTP(ctx, creds, req, payloadHash, "s3", s.region, time.Now().UTC()); err != nil {
		return nil, fmt.Errorf("failed to sign request: %w", err)
	}

	return s.client.Do(req)
}
