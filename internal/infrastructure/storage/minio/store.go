package minio

import (
	"bytes"
	"context"
	"io"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/precedex/precedex/internal/config"
	"github.com/precedex/precedex/internal/infrastructure/monitoring/logging"
	"github.com/precedex/precedex/pkg/errors"
)

const snapshotContentType = "application/json"

// ObjectAPI is the subset of the minio client used by the snapshot store.
// *minio.Client satisfies it.
type ObjectAPI interface {
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	GetObject(ctx context.Context, bucketName, objectName string, opts minio.GetObjectOptions) (*minio.Object, error)
	StatObject(ctx context.Context, bucketName, objectName string, opts minio.StatObjectOptions) (minio.ObjectInfo, error)
}

// Store persists graph snapshots as a single object in an S3-compatible
// bucket. It implements graph.Store.
type Store struct {
	api    ObjectAPI
	bucket string
	object string
	log    logging.Logger
}

// NewStore connects to the configured endpoint and ensures the snapshot
// bucket exists.
func NewStore(ctx context.Context, cfg config.MinIOConfig, object string, log logging.Logger) (*Store, error) {
	if log == nil {
		log = logging.NewNopLogger()
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeStorageError, "failed to create object storage client")
	}

	s := newStoreWithAPI(client, cfg.Bucket, object, log)

	ensureCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := s.ensureBucket(ensureCtx); err != nil {
		return nil, err
	}

	log.Info("object storage connected",
		logging.String("endpoint", cfg.Endpoint),
		logging.String("bucket", cfg.Bucket),
		logging.String("object", object),
		logging.Bool("ssl", cfg.UseSSL))
	return s, nil
}

func newStoreWithAPI(api ObjectAPI, bucket, object string, log logging.Logger) *Store {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Store{api: api, bucket: bucket, object: object, log: log}
}

func (s *Store) ensureBucket(ctx context.Context) error {
	exists, err := s.api.BucketExists(ctx, s.bucket)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeServiceUnavailable, "failed to check snapshot bucket")
	}
	if !exists {
		if err := s.api.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
			return errors.Wrap(err, errors.ErrCodeStorageError, "failed to create snapshot bucket")
		}
		s.log.Info("created snapshot bucket", logging.String("bucket", s.bucket))
	}
	return nil
}

// Save uploads the encoded snapshot, replacing any previous version.
func (s *Store) Save(ctx context.Context, data []byte) error {
	opts := minio.PutObjectOptions{ContentType: snapshotContentType}
	info, err := s.api.PutObject(ctx, s.bucket, s.object, bytes.NewReader(data), int64(len(data)), opts)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeStorageError, "failed to upload snapshot")
	}
	s.log.Info("snapshot uploaded",
		logging.String("bucket", s.bucket),
		logging.String("object", s.object),
		logging.Int("bytes", int(info.Size)))
	return nil
}

// Load downloads the stored snapshot bytes.
func (s *Store) Load(ctx context.Context) ([]byte, error) {
	if _, err := s.api.StatObject(ctx, s.bucket, s.object, minio.StatObjectOptions{}); err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, errors.New(errors.ErrCodeSnapshotNotFound, "no snapshot object found").
				WithDetail(s.bucket + "/" + s.object)
		}
		return nil, errors.Wrap(err, errors.ErrCodeStorageError, "failed to stat snapshot")
	}

	obj, err := s.api.GetObject(ctx, s.bucket, s.object, minio.GetObjectOptions{})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeStorageError, "failed to fetch snapshot")
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeStorageError, "failed to read snapshot")
	}
	return data, nil
}
