package domain

// Object описывает файл, который хранится в S3
type Object struct {
	Bucket      string
	ObjectKey   string
	Bytes       []byte
	Size        int64
	ContentType string // Example: "text/csv"
}

func NewObject(bucket string, objectKey string, data []byte, contentType string) *Object {
	return &Object{
		Bucket:      bucket,
		ObjectKey:   objectKey,
		Bytes:       data,
		Size:        int64(len(data)),
		ContentType: contentType,
	}
}
