package certstore

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"

	"github.com/sitewarden/sitecloner/cryptoutils"
	"github.com/sitewarden/sitecloner/interfaces"
)

// S3Store implements a certificate store using Amazon S3 or compatible
// services. Each certificate lives in one PEM bundle object named after its
// thumbprint. The store never writes.
type S3Store struct {
	client      *s3.S3
	bucketName  string
	prefix      string
	log         *slog.Logger
	locationURI string
}

// NewS3Store creates a new S3 certificate store.
// If accessKey and secretKey are provided they are used as static
// credentials; otherwise the default AWS credential chain applies.
func NewS3Store(bucketName, prefix, region, endpoint, accessKey, secretKey string, log *slog.Logger) (*S3Store, error) {
	uri := fmt.Sprintf("s3://%s/%s?region=%s", bucketName, prefix, region)
	if endpoint != "" {
		uri += fmt.Sprintf("&endpoint=%s", endpoint)
	}

	cfg := aws.Config{
		Region: aws.String(region),
	}
	if endpoint != "" {
		cfg.Endpoint = aws.String(endpoint)
	}
	if accessKey != "" && secretKey != "" {
		cfg.Credentials = credentials.NewStaticCredentials(accessKey, secretKey, "")
	}

	sess, err := session.NewSession(&cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}

	return &S3Store{
		client:      s3.New(sess),
		bucketName:  bucketName,
		prefix:      strings.TrimSuffix(prefix, "/"),
		log:         log,
		locationURI: uri,
	}, nil
}

// Lookup fetches the PEM bundle object for the thumbprint.
// Returns ErrCertificateNotFound if the object doesn't exist.
func (s *S3Store) Lookup(ctx context.Context, thumbprint interfaces.Thumbprint) (*interfaces.ClientCertificate, error) {
	start := time.Now()
	key := s.objectKey(thumbprint)

	result, err := s.client.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(key),
	})
	if err != nil {
		if strings.Contains(err.Error(), "NoSuchKey") || strings.Contains(err.Error(), "404") {
			s.log.Debug("Certificate not found in S3",
				slog.String("bucket", s.bucketName),
				slog.String("key", key),
				slog.Duration("duration", time.Since(start)))
			return nil, fmt.Errorf("%w: no S3 object for thumbprint %s", interfaces.ErrCertificateNotFound, thumbprint)
		}

		s.log.Error("Failed to get object from S3",
			slog.String("bucket", s.bucketName),
			slog.String("key", key),
			"err", err,
			slog.Duration("duration", time.Since(start)))
		return nil, fmt.Errorf("failed to get object from S3: %w", err)
	}
	defer result.Body.Close()

	data, err := io.ReadAll(result.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read object body: %w", err)
	}

	cert, privKey, err := cryptoutils.ParseBundlePEM(data)
	if err != nil {
		return nil, fmt.Errorf("invalid bundle in S3 object %s: %w", key, err)
	}

	// The object is named after the thumbprint; verify the content agrees
	if computed := interfaces.ComputeThumbprint(cert.Raw); !computed.Equal(thumbprint) {
		s.log.Warn("S3 object thumbprint mismatch",
			slog.String("key", key),
			slog.String("expected", thumbprint.String()),
			slog.String("actual", computed.String()))
		return nil, fmt.Errorf("s3 object %s holds certificate with thumbprint %s, expected %s", key, computed, thumbprint)
	}

	s.log.Debug("Resolved certificate from S3",
		slog.String("bucket", s.bucketName),
		slog.String("key", key),
		slog.Duration("duration", time.Since(start)))

	return &interfaces.ClientCertificate{Leaf: cert, PrivateKey: privKey}, nil
}

// Available checks if the S3 store is accessible by attempting to head the bucket.
func (s *S3Store) Available(ctx context.Context) bool {
	start := time.Now()

	_, err := s.client.HeadBucketWithContext(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(s.bucketName),
	})
	if err != nil {
		s.log.Warn("S3 store unavailable",
			slog.String("bucket", s.bucketName),
			"err", err,
			slog.Duration("duration", time.Since(start)))
		return false
	}

	return true
}

// Name returns a unique identifier for this store.
func (s *S3Store) Name() string {
	return fmt.Sprintf("s3-%s", s.bucketName)
}

// LocationURI returns the URI that identifies this store.
func (s *S3Store) LocationURI() string {
	return s.locationURI
}

// objectKey generates the S3 object key for a thumbprint.
func (s *S3Store) objectKey(thumbprint interfaces.Thumbprint) string {
	name := thumbprint.String() + ".pem"
	if s.prefix == "" {
		return name
	}
	return path.Join(s.prefix, name)
}
