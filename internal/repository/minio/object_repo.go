package minio

import (
	"bytes"
	"context"

	"github.com/DRSN-tech/inventory-backend/internal/cfg"
	"github.com/DRSN-tech/inventory-backend/internal/domain"
	"github.com/DRSN-tech/inventory-backend/pkg/e"
	"github.com/jimlawless/whereami"
	"github.com/minio/minio-go/v7"
)

// ObjectRepo реализует хранилище выгрузок поверх MinIO.
type ObjectRepo struct {
	mc  *minio.Client
	cfg *cfg.MinIOCfg
}

func NewObjectRepo(mc *minio.Client, cfg *cfg.MinIOCfg) *ObjectRepo {
	return &ObjectRepo{
		mc:  mc,
		cfg: cfg,
	}
}

// Upload загружает объект в MinIO и возвращает его ключ.
func (o *ObjectRepo) Upload(ctx context.Context, object *domain.Object) (string, error) {
	reader := bytes.NewReader(object.Bytes)

	bucket := object.Bucket
	if bucket == "" {
		bucket = o.cfg.BucketName
	}

	info, err := o.mc.PutObject(ctx, bucket, object.ObjectKey, reader, object.Size, minio.PutObjectOptions{
		ContentType: object.ContentType,
	})
	if err != nil {
		return "", e.Wrap(whereami.WhereAmI(), err)
	}

	return info.Key, nil
}

// Delete удаляет объект из MinIO по указанному ключу.
func (o *ObjectRepo) Delete(ctx context.Context, key string) error {
	if err := o.mc.RemoveObject(ctx, o.cfg.BucketName, key, minio.RemoveObjectOptions{}); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}
