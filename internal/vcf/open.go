package vcf

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"cloud.google.com/go/storage"
	"github.com/carbocation/pfx"
)

const gcsScheme = "gs://"

// Opener opens inputs from local paths, stdin ("-") and Google Cloud Storage
// ("gs://bucket/object"). The storage client is created on first use.
type Opener struct {
	mu        sync.Mutex
	client    *storage.Client
	newClient func(ctx context.Context) (*storage.Client, error)
}

// NewOpener returns an Opener that uses default Google credentials for
// gs:// paths.
func NewOpener() *Opener {
	return &Opener{
		newClient: func(ctx context.Context) (*storage.Client, error) {
			return storage.NewClient(ctx)
		},
	}
}

// IsRemote reports whether path names a Google Cloud Storage object.
func IsRemote(path string) bool {
	return strings.HasPrefix(path, gcsScheme)
}

// Open opens path and parses its VCF header.
func (o *Opener) Open(ctx context.Context, path string) (*Parser, error) {
	rc, err := o.OpenRaw(ctx, path)
	if err != nil {
		return nil, err
	}
	return newParser(path, rc)
}

// OpenRaw opens path as a byte stream without decompressing it.
func (o *Opener) OpenRaw(ctx context.Context, path string) (io.ReadCloser, error) {
	switch {
	case path == "-":
		return io.NopCloser(os.Stdin), nil
	case IsRemote(path):
		return o.openGCS(ctx, path)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return f, nil
}

func (o *Opener) openGCS(ctx context.Context, path string) (io.ReadCloser, error) {
	// Detect the bucket and the path to the actual file
	parts := strings.SplitN(strings.TrimPrefix(path, gcsScheme), "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return nil, pfx.Err(fmt.Errorf("%s: expected gs://bucket/object", path))
	}

	client, err := o.storageClient(ctx)
	if err != nil {
		return nil, pfx.Err(fmt.Errorf("%s: %w", path, err))
	}

	r, err := client.Bucket(parts[0]).Object(parts[1]).NewReader(ctx)
	if err != nil {
		return nil, pfx.Err(fmt.Errorf("%s: %w", path, err))
	}
	return r, nil
}

func (o *Opener) storageClient(ctx context.Context) (*storage.Client, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.client != nil {
		return o.client, nil
	}
	client, err := o.newClient(ctx)
	if err != nil {
		return nil, err
	}
	o.client = client
	return client, nil
}

// Close releases the storage client, if one was created.
func (o *Opener) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.client == nil {
		return nil
	}
	err := o.client.Close()
	o.client = nil
	return err
}
