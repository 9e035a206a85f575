package notify

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type ArchiveConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Prefix    string
}

type objectPutter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// ReceiptArchive keeps a copy of every receipt in an S3 compatible bucket
// (Cloudflare R2 in production).
type ReceiptArchive struct {
	client objectPutter
	bucket string
	prefix string
}

func NewReceiptArchive(ctx context.Context, cfg ArchiveConfig) (*ReceiptArchive, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(
		ctx,
		awsconfig.WithRegion("auto"),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("load r2 config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.Endpoint)
		o.UsePathStyle = true
	})
	return newReceiptArchive(client, cfg.Bucket, cfg.Prefix), nil
}

func newReceiptArchive(client objectPutter, bucket, prefix string) *ReceiptArchive {
	return &ReceiptArchive{client: client, bucket: bucket, prefix: strings.Trim(prefix, "/")}
}

func (a *ReceiptArchive) Key(orderID string) string {
	return path.Join(a.prefix, orderID+".txt")
}

func (a *ReceiptArchive) Print(ctx context.Context, r Receipt) error {
	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(a.Key(r.OrderID)),
		Body:        strings.NewReader(r.Text),
		ContentType: aws.String("text/plain; charset=utf-8"),
	})
	if err != nil {
		return fmt.Errorf("archive receipt %s: %w", r.OrderID, err)
	}
	return nil
}
