package storage

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"time"

	gcs "cloud.google.com/go/storage"
)

// ClientUploader stores uploaded and generated images in a GCS bucket and
// hands back public URLs.
type ClientUploader struct {
	cl         *gcs.Client
	projectID  string
	bucketName string
	uploadPath string
}

func NewClientUploader(ctx context.Context, projectID, bucketName string) (*ClientUploader, error) {
	client, err := gcs.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}

	return &ClientUploader{
		cl:         client,
		projectID:  projectID,
		bucketName: bucketName,
		uploadPath: "images/",
	}, nil
}

func (c *ClientUploader) write(ctx context.Context, objectPath string, file io.Reader) error {
	wc := c.cl.Bucket(c.bucketName).Object(objectPath).NewWriter(ctx)
	if _, err := io.Copy(wc, file); err != nil {
		return fmt.Errorf("io.Copy: %v", err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("Writer.Close: %v", err)
	}
	return nil
}

func (c *ClientUploader) publicURL(objectPath string) string {
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", c.bucketName, objectPath)
}

// UploadProcessedFile stores generated image bytes under a unique object name.
func (c *ClientUploader) UploadProcessedFile(file io.Reader, object string) (string, string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*50)
	defer cancel()

	timestamp := strconv.FormatInt(time.Now().UnixNano(), 10)
	objectPath := c.uploadPath + timestamp + "_" + object

	if err := c.write(ctx, objectPath, file); err != nil {
		return "", "", err
	}

	return c.publicURL(objectPath), object, nil
}

// UploadFile stores an uploaded file and returns the public URL along with
// the original filename.
func (c *ClientUploader) UploadFile(file io.Reader, originalFilename string) (string, string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*50)
	defer cancel()

	timestamp := strconv.FormatInt(time.Now().UnixNano(), 10)
	objectPath := c.uploadPath + timestamp + "_" + originalFilename

	if err := c.write(ctx, objectPath, file); err != nil {
		return "", "", err
	}

	return c.publicURL(objectPath), originalFilename, nil
}

// MakeBucketPublic grants allUsers read access; call once at setup.
func (c *ClientUploader) MakeBucketPublic() error {
	ctx := context.Background()
	bucket := c.cl.Bucket(c.bucketName)

	policy, err := bucket.IAM().Policy(ctx)
	if err != nil {
		return err
	}

	policy.Add("allUsers", "roles/storage.objectViewer")

	return bucket.IAM().SetPolicy(ctx, policy)
}
